package constraint

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// WeldGeometry locks the pose of Frame2, fixed in the second constrained
// body, to Frame1, fixed in the first: orientation and origin together.
type WeldGeometry struct {
	Frame1, Frame2 spatial.Transform
}

// weldEquations packs six rows: the three constant-orientation
// perpendicularity equations first, then the three ball equations pinning
// the frame origins.
type weldEquations struct{}

func (weldEquations) validateGeometry(geom any) error {
	if _, ok := geom.(WeldGeometry); !ok {
		return fmt.Errorf("%w: expected WeldGeometry, got %T", ErrKind, geom)
	}
	return nil
}

func (weldEquations) ball(g WeldGeometry) BallGeometry {
	return BallGeometry{Point1: g.Frame1.P, Point2: g.Frame2.P}
}

func (e weldEquations) positionErrors(ev *Evaluation, geom any, perr []float64) error {
	g := geom.(WeldGeometry)
	if err := orientationPositionErrors(ev, g.Frame1.R, g.Frame2.R, perr[:3]); err != nil {
		return err
	}
	return ballEquations{}.positionErrors(ev, e.ball(g), perr[3:])
}

func (e weldEquations) velocityErrors(ev *Evaluation, geom any, verr []float64) error {
	g := geom.(WeldGeometry)
	if err := orientationVelocityErrors(ev, g.Frame1.R, g.Frame2.R, verr[:3]); err != nil {
		return err
	}
	return ballEquations{}.velocityErrors(ev, e.ball(g), verr[3:])
}

func (weldEquations) accelerationErrors(ev *Evaluation, geom any, aerr []float64) error {
	return fmt.Errorf("%w: weld acceleration errors", multibody.ErrNotImplemented)
}

func (e weldEquations) applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	g := geom.(WeldGeometry)
	if err := orientationApplyForces(ev, g.Frame1.R, g.Frame2.R, lambda[:3], bodyForcesInG); err != nil {
		return err
	}
	return ballEquations{}.applyForces(ev, e.ball(g), lambda[3:], bodyForcesInG, mobilityForces)
}
