package constraint

import (
	"github.com/san-kum/kinetree/internal/spatial"
)

// CustomConstraint is the open extension point: a user-defined constraint
// supplies its equation counts and the error and force callbacks, evaluated
// against the same Evaluation context the built-in kinds use. Counts is
// reread every time the Model stage is realized, so an implementation may
// change its equation counts between realizations; slice sizes follow on
// the next realize.
//
// Callbacks fill caller-allocated slices sized from Counts: perr has MP
// entries, verr MP+MV, aerr MP+MV+MA. ApplyForces receives the packed
// multiplier vector and adds into per-local-body spatial forces expressed
// in Ground and packed per-constrained-mobility generalized forces; to
// satisfy virtual-work consistency the work of the added forces under any
// participating virtual speeds must equal lambda times the velocity errors
// those speeds produce. Force mapping requires Position stage only: the
// evaluation handed to ApplyForces carries body velocities and
// accelerations exactly when the state is realized through those stages,
// and the corresponding accessors must not be used below them.
type CustomConstraint interface {
	Counts() Counts
	PositionErrors(ev *Evaluation, perr []float64) error
	VelocityErrors(ev *Evaluation, verr []float64) error
	AccelerationErrors(ev *Evaluation, aerr []float64) error
	ApplyForces(ev *Evaluation, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error
}

// customEquations adapts a CustomConstraint to the internal dispatch
// contract; the geometry slot is unused because custom constraints own
// their parameters.
type customEquations struct {
	impl CustomConstraint
}

func (c customEquations) validateGeometry(any) error { return nil }

func (c customEquations) positionErrors(ev *Evaluation, _ any, perr []float64) error {
	return c.impl.PositionErrors(ev, perr)
}

func (c customEquations) velocityErrors(ev *Evaluation, _ any, verr []float64) error {
	return c.impl.VelocityErrors(ev, verr)
}

func (c customEquations) accelerationErrors(ev *Evaluation, _ any, aerr []float64) error {
	return c.impl.AccelerationErrors(ev, aerr)
}

func (c customEquations) applyForces(ev *Evaluation, _ any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	return c.impl.ApplyForces(ev, lambda, bodyForcesInG, mobilityForces)
}
