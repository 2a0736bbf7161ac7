package constraint

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/spatial"
)

// BallGeometry pins Point1 on the first constrained body to Point2 on the
// second; stations in their bodies' frames.
type BallGeometry struct {
	Point1, Point2 spatial.Vec3
}

type ballEquations struct{}

func (ballEquations) validateGeometry(geom any) error {
	if _, ok := geom.(BallGeometry); !ok {
		return fmt.Errorf("%w: expected BallGeometry, got %T", ErrKind, geom)
	}
	return nil
}

func (ballEquations) stations(ev *Evaluation, g BallGeometry) (p1, p2 spatial.Vec3, err error) {
	p1, err = ev.StationLocation(0, g.Point1)
	if err != nil {
		return
	}
	p2, err = ev.StationLocation(1, g.Point2)
	return
}

// positionErrors is the separation vector expressed in the ancestor frame.
func (e ballEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(BallGeometry)
	p1, p2, err := e.stations(ev, g)
	if err != nil {
		return err
	}
	xGA, err := ev.AncestorTransform()
	if err != nil {
		return err
	}
	r := xGA.R.InvApply(p2.Sub(p1))
	perr[0], perr[1], perr[2] = r[0], r[1], r[2]
	return nil
}

// velocityErrors is the separation's derivative taken in the ancestor
// frame; the ancestor's own angular velocity is subtracted out so bodies
// riding rigidly with a moving ancestor produce zero error.
func (e ballEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(BallGeometry)
	p1, p2, err := e.stations(ev, g)
	if err != nil {
		return err
	}
	v1, err := ev.StationVelocity(0, g.Point1)
	if err != nil {
		return err
	}
	v2, err := ev.StationVelocity(1, g.Point2)
	if err != nil {
		return err
	}
	xGA, err := ev.AncestorTransform()
	if err != nil {
		return err
	}
	rel := ev.relativeInAncestor(p2.Sub(p1), v2.Sub(v1), xGA.R)
	verr[0], verr[1], verr[2] = rel[0], rel[1], rel[2]
	return nil
}

// accelerationErrors is the separation's second derivative in the ancestor
// frame: rddot - bA x r - 2 wA x rdot + wA x (wA x r), reexpressed in A.
func (e ballEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	g := geom.(BallGeometry)
	p1, p2, err := e.stations(ev, g)
	if err != nil {
		return err
	}
	v1, err := ev.StationVelocity(0, g.Point1)
	if err != nil {
		return err
	}
	v2, err := ev.StationVelocity(1, g.Point2)
	if err != nil {
		return err
	}
	a1, err := ev.StationAcceleration(0, g.Point1)
	if err != nil {
		return err
	}
	a2, err := ev.StationAcceleration(1, g.Point2)
	if err != nil {
		return err
	}
	xGA, err := ev.AncestorTransform()
	if err != nil {
		return err
	}

	r := p2.Sub(p1)
	rdot := v2.Sub(v1)
	rddot := a2.Sub(a1)
	wA := ev.AncestorVelocity().W
	bA := ev.AncestorAcceleration().W

	inA := xGA.R.InvApply(
		rddot.
			Sub(bA.Cross(r)).
			Sub(wA.Cross(rdot).Scale(2)).
			Add(wA.Cross(wA.Cross(r))))
	aerr[0], aerr[1], aerr[2] = inA[0], inA[1], inA[2]
	return nil
}

// applyForces reexpresses the ancestor-frame multiplier vector in Ground
// and applies it at station 2, with the exact negative at station 1.
func (e ballEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(BallGeometry)
	p1, p2, err := e.stations(ev, g)
	if err != nil {
		return err
	}
	xGA, err := ev.AncestorTransform()
	if err != nil {
		return err
	}
	f := xGA.R.Apply(spatial.Vec3{lambda[0], lambda[1], lambda[2]})

	x1, err := ev.Transform(0)
	if err != nil {
		return err
	}
	x2, err := ev.Transform(1)
	if err != nil {
		return err
	}
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{W: p2.Sub(x2.P).Cross(f), V: f})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{W: p1.Sub(x1.P).Cross(f), V: f})
	return nil
}
