package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetree/internal/spatial"
)

// RodGeometry fixes the distance between Point1 on the first constrained
// body and Point2 on the second; stations in their bodies' frames.
type RodGeometry struct {
	Point1, Point2 spatial.Vec3
	Length         float64
}

type rodEquations struct{}

func (rodEquations) validateGeometry(geom any) error {
	g, ok := geom.(RodGeometry)
	if !ok {
		return fmt.Errorf("%w: expected RodGeometry, got %T", ErrKind, geom)
	}
	if g.Length <= 0 || math.IsNaN(g.Length) {
		return fmt.Errorf("%w: rod length %v", ErrGeometry, g.Length)
	}
	return nil
}

// separation returns the two station locations in Ground and the vector
// from station 1 to station 2.
func (rodEquations) separation(ev *Evaluation, g RodGeometry) (p1, p2, r spatial.Vec3, err error) {
	p1, err = ev.StationLocation(0, g.Point1)
	if err != nil {
		return
	}
	p2, err = ev.StationLocation(1, g.Point2)
	if err != nil {
		return
	}
	r = p2.Sub(p1)
	return
}

func (e rodEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(RodGeometry)
	_, _, r, err := e.separation(ev, g)
	if err != nil {
		return err
	}
	perr[0] = r.Norm() - g.Length
	return nil
}

// velocityErrors is d/dt of the distance, with the coincident-station
// branch from the distance-rate utilities: at zero separation the rate is
// the relative speed magnitude.
func (e rodEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(RodGeometry)
	_, _, r, err := e.separation(ev, g)
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
	v := v2.Sub(v1)
	d := r.Norm()
	if d == 0 {
		verr[0] = v.Norm()
		return nil
	}
	verr[0] = v.Dot(r.Scale(1 / d))
	return nil
}

// accelerationErrors is d^2/dt^2 of the distance: the along-axis relative
// acceleration plus the perpendicular-velocity term.
func (e rodEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	g := geom.(RodGeometry)
	_, _, r, err := e.separation(ev, g)
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
	v := v2.Sub(v1)
	acc := a2.Sub(a1)
	d := r.Norm()
	if d == 0 {
		speed := v.Norm()
		if speed == 0 {
			aerr[0] = acc.Norm()
			return nil
		}
		aerr[0] = acc.Dot(v.Scale(1 / speed))
		return nil
	}
	u := r.Scale(1 / d)
	vp := v.Sub(u.Scale(v.Dot(u)))
	aerr[0] = acc.Dot(u) + vp.Dot(v)/d
	return nil
}

// applyForces places lambda along the rod axis: +lambda*u at station 2 and
// -lambda*u at station 1, so positive multipliers pull the stations apart.
func (e rodEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(RodGeometry)
	p1, p2, r, err := e.separation(ev, g)
	if err != nil {
		return err
	}
	d := r.Norm()
	if d == 0 {
		// direction undefined; no force can be attributed
		return nil
	}
	f := r.Scale(lambda[0] / d)

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
