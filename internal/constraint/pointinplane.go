package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// PointInPlaneGeometry keeps FollowerPoint, a station on the second
// constrained body, in the plane {x : Normal . x = Height} fixed in the
// first constrained body's frame. Normal is a unit vector in the plane
// body's frame.
type PointInPlaneGeometry struct {
	Normal        spatial.Vec3
	Height        float64
	FollowerPoint spatial.Vec3
}

type pointInPlaneEquations struct{}

func (pointInPlaneEquations) validateGeometry(geom any) error {
	g, ok := geom.(PointInPlaneGeometry)
	if !ok {
		return fmt.Errorf("%w: expected PointInPlaneGeometry, got %T", ErrKind, geom)
	}
	if math.Abs(g.Normal.Norm()-1) > 1e-9 {
		return fmt.Errorf("%w: plane normal %v is not unit length", ErrGeometry, g.Normal)
	}
	return nil
}

// positionErrors is the signed out-of-plane distance: the follower station
// expressed in the plane body's frame, dotted with the normal, minus the
// plane height.
func (pointInPlaneEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(PointInPlaneGeometry)
	pF, err := ev.StationLocation(1, g.FollowerPoint)
	if err != nil {
		return err
	}
	x1, err := ev.Transform(0)
	if err != nil {
		return err
	}
	perr[0] = g.Normal.Dot(x1.InvApply(pF)) - g.Height
	return nil
}

// velocityErrors is d/dt of the out-of-plane distance: the follower's
// velocity relative to the plane-body point it currently coincides with,
// projected on the normal.
func (pointInPlaneEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(PointInPlaneGeometry)
	pF, err := ev.StationLocation(1, g.FollowerPoint)
	if err != nil {
		return err
	}
	vF, err := ev.StationVelocity(1, g.FollowerPoint)
	if err != nil {
		return err
	}
	x1, err := ev.Transform(0)
	if err != nil {
		return err
	}
	v1 := ev.SpatialVelocity(0)
	vCoincident := v1.V.Add(v1.W.Cross(pF.Sub(x1.P)))
	nG := x1.R.Apply(g.Normal)
	verr[0] = nG.Dot(vF.Sub(vCoincident))
	return nil
}

func (pointInPlaneEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	return fmt.Errorf("%w: point-in-plane acceleration errors", multibody.ErrNotImplemented)
}

// applyForces presses the follower along the plane normal: +lambda*n at the
// follower station and the reaction at the coincident plane-body point.
func (pointInPlaneEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(PointInPlaneGeometry)
	pF, err := ev.StationLocation(1, g.FollowerPoint)
	if err != nil {
		return err
	}
	x1, err := ev.Transform(0)
	if err != nil {
		return err
	}
	x2, err := ev.Transform(1)
	if err != nil {
		return err
	}
	f := x1.R.Apply(g.Normal).Scale(lambda[0])
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{W: pF.Sub(x2.P).Cross(f), V: f})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{W: pF.Sub(x1.P).Cross(f), V: f})
	return nil
}
