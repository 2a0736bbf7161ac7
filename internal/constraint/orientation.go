package constraint

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// ConstantOrientationGeometry locks the orientation of FollowerFrame, fixed
// in the second constrained body, to BaseFrame, fixed in the first, leaving
// translation free.
type ConstantOrientationGeometry struct {
	BaseFrame, FollowerFrame spatial.Rotation
}

// orientationPairs selects the three independent perpendicularity
// conditions: follower axis a against base axis c, with a x c spanning all
// of space at the aligned configuration.
var orientationPairs = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

type constantOrientationEquations struct{}

func (constantOrientationEquations) validateGeometry(geom any) error {
	if _, ok := geom.(ConstantOrientationGeometry); !ok {
		return fmt.Errorf("%w: expected ConstantOrientationGeometry, got %T", ErrKind, geom)
	}
	return nil
}

// frameAxesInG returns the base and follower frame axes reexpressed in
// Ground, indexed by column.
func orientationAxesInG(ev *Evaluation, base, follower spatial.Rotation) (b, f [3]spatial.Vec3, err error) {
	x1, err := ev.Transform(0)
	if err != nil {
		return
	}
	x2, err := ev.Transform(1)
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		b[i] = x1.R.Apply(base.Col(i))
		f[i] = x2.R.Apply(follower.Col(i))
	}
	return
}

// orientationPositionErrors fills three perpendicularity dots; zero exactly
// when the frames are aligned.
func orientationPositionErrors(ev *Evaluation, base, follower spatial.Rotation, perr []float64) error {
	b, f, err := orientationAxesInG(ev, base, follower)
	if err != nil {
		return err
	}
	for i, pair := range orientationPairs {
		perr[i] = f[pair[0]].Dot(b[pair[1]])
	}
	return nil
}

// orientationVelocityErrors is d/dt of the dots: the relative angular
// velocity projected on each pair's cross product.
func orientationVelocityErrors(ev *Evaluation, base, follower spatial.Rotation, verr []float64) error {
	b, f, err := orientationAxesInG(ev, base, follower)
	if err != nil {
		return err
	}
	wRel := ev.SpatialVelocity(1).W.Sub(ev.SpatialVelocity(0).W)
	for i, pair := range orientationPairs {
		verr[i] = wRel.Dot(f[pair[0]].Cross(b[pair[1]]))
	}
	return nil
}

// orientationApplyForces is a torque couple: the multiplier-weighted sum of
// the pair cross products on the follower body, negated on the base body.
func orientationApplyForces(ev *Evaluation, base, follower spatial.Rotation, lambda []float64, bodyForcesInG []spatial.SpatialVec) error {
	b, f, err := orientationAxesInG(ev, base, follower)
	if err != nil {
		return err
	}
	var t spatial.Vec3
	for i, pair := range orientationPairs {
		t = t.Add(f[pair[0]].Cross(b[pair[1]]).Scale(lambda[i]))
	}
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{W: t})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{W: t})
	return nil
}

func (constantOrientationEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(ConstantOrientationGeometry)
	return orientationPositionErrors(ev, g.BaseFrame, g.FollowerFrame, perr)
}

func (constantOrientationEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(ConstantOrientationGeometry)
	return orientationVelocityErrors(ev, g.BaseFrame, g.FollowerFrame, verr)
}

func (constantOrientationEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	return fmt.Errorf("%w: constant-orientation acceleration errors", multibody.ErrNotImplemented)
}

func (constantOrientationEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(ConstantOrientationGeometry)
	return orientationApplyForces(ev, g.BaseFrame, g.FollowerFrame, lambda, bodyForcesInG)
}
