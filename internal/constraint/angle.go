package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// ConstantAngleGeometry keeps the angle between BaseAxis, a unit vector
// fixed in the first constrained body, and FollowerAxis, fixed in the
// second, at Angle radians.
type ConstantAngleGeometry struct {
	BaseAxis, FollowerAxis spatial.Vec3
	Angle                  float64
}

type constantAngleEquations struct{}

func (constantAngleEquations) validateGeometry(geom any) error {
	g, ok := geom.(ConstantAngleGeometry)
	if !ok {
		return fmt.Errorf("%w: expected ConstantAngleGeometry, got %T", ErrKind, geom)
	}
	if math.Abs(g.BaseAxis.Norm()-1) > 1e-9 || math.Abs(g.FollowerAxis.Norm()-1) > 1e-9 {
		return fmt.Errorf("%w: constant-angle axes must be unit vectors", ErrGeometry)
	}
	if g.Angle <= 0 || g.Angle >= math.Pi {
		return fmt.Errorf("%w: target angle %v is at the singular ends of [0, pi]", ErrGeometry, g.Angle)
	}
	return nil
}

// axesInG returns both axes reexpressed in Ground.
func (constantAngleEquations) axesInG(ev *Evaluation, g ConstantAngleGeometry) (b, f spatial.Vec3, err error) {
	x1, err := ev.Transform(0)
	if err != nil {
		return
	}
	x2, err := ev.Transform(1)
	if err != nil {
		return
	}
	return x1.R.Apply(g.BaseAxis), x2.R.Apply(g.FollowerAxis), nil
}

func (e constantAngleEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(ConstantAngleGeometry)
	b, f, err := e.axesInG(ev, g)
	if err != nil {
		return err
	}
	perr[0] = math.Atan2(b.Cross(f).Norm(), b.Dot(f)) - g.Angle
	return nil
}

// velocityErrors is the angle rate: the relative angular velocity projected
// on the unit normal of the plane the axes span. At the singular parallel
// configuration the normal is undefined and the rate is reported as zero.
func (e constantAngleEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(ConstantAngleGeometry)
	b, f, err := e.axesInG(ev, g)
	if err != nil {
		return err
	}
	n := b.Cross(f)
	sin := n.Norm()
	if sin < 1e-12 {
		verr[0] = 0
		return nil
	}
	wRel := ev.SpatialVelocity(1).W.Sub(ev.SpatialVelocity(0).W)
	verr[0] = wRel.Dot(n.Scale(1 / sin))
	return nil
}

func (constantAngleEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	return fmt.Errorf("%w: constant-angle acceleration errors", multibody.ErrNotImplemented)
}

// applyForces is a pure torque couple about the axes' common normal.
func (e constantAngleEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(ConstantAngleGeometry)
	b, f, err := e.axesInG(ev, g)
	if err != nil {
		return err
	}
	n := b.Cross(f)
	sin := n.Norm()
	if sin < 1e-12 {
		return nil
	}
	t := n.Scale(lambda[0] / sin)
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{W: t})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{W: t})
	return nil
}
