package constraint

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// equations is the per-kind contract: error functions over an Evaluation and
// the mapping from multipliers back to forces. Built-in kinds are stateless
// values dispatching on the geometry they are handed; the custom path wraps
// user callbacks.
type equations interface {
	positionErrors(ev *Evaluation, geom any, perr []float64) error
	velocityErrors(ev *Evaluation, geom any, verr []float64) error
	accelerationErrors(ev *Evaluation, geom any, aerr []float64) error
	// applyForces adds the forces for lambda into per-local-body spatial
	// forces expressed in Ground and packed per-constrained-mobility
	// generalized forces.
	applyForces(ev *Evaluation, geom any, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error
	validateGeometry(geom any) error
}

// Constraint is one algebraic restriction on the tree's motion. Its body
// set, ancestor, and equation counts are fixed at topology realization;
// geometry and the enable flag live in the State.
type Constraint struct {
	set    *Set
	index  Index
	kind   Kind
	bodies []multibody.BodyIndex
	counts Counts
	geom   any // construction-time default
	eqs    equations

	// assigned at topology realization
	ancestor      multibody.BodyIndex
	participating []int
	enabledVar    multibody.DiscreteIndex
	geomVar       multibody.DiscreteIndex
}

func (c *Constraint) Index() Index { return c.index }
func (c *Constraint) Kind() Kind   { return c.kind }

// NumEquations reports the holonomic, nonholonomic, and acceleration-only
// equation counts.
func (c *Constraint) NumEquations() (mp, mv, ma int) {
	return c.counts.MP, c.counts.MV, c.counts.MA
}

// ConstrainedBodies returns the tree indices of the constrained bodies in
// local-index order.
func (c *Constraint) ConstrainedBodies() []multibody.BodyIndex { return c.bodies }

// Ancestor is the frame cross-constraint quantities are expressed in; valid
// after topology realization.
func (c *Constraint) Ancestor() multibody.BodyIndex { return c.ancestor }

// ParticipatingMobilities returns the sorted generalized-speed indices the
// constraint's Jacobians can touch.
func (c *Constraint) ParticipatingMobilities() []int { return c.participating }

// NumConstrainedMobilities is the packed length of the per-mobility force
// output: the sum of the constrained bodies' mobilizer degrees of freedom.
func (c *Constraint) NumConstrainedMobilities() int {
	n := 0
	for _, ix := range c.bodies {
		n += c.set.sys.Body(ix).NumU()
	}
	return n
}

// Enabled reads the enable flag from the state.
func (c *Constraint) Enabled(s *multibody.State) bool {
	return s.Discrete(c.enabledVar).(bool)
}

// SetEnabled flips the enable flag, invalidating Model stage and above.
func (c *Constraint) SetEnabled(s *multibody.State, on bool) {
	s.SetDiscrete(c.enabledVar, on)
}

// Geometry reads the instance-stage geometry; one of the *Geometry structs,
// or nil for a custom constraint.
func (c *Constraint) Geometry(s *multibody.State) any {
	return s.Discrete(c.geomVar)
}

// SetGeometry replaces the instance-stage geometry, invalidating Instance
// stage and above. The value must be the same kind's geometry struct.
func (c *Constraint) SetGeometry(s *multibody.State, geom any) error {
	if err := c.eqs.validateGeometry(geom); err != nil {
		return err
	}
	s.SetDiscrete(c.geomVar, geom)
	return nil
}

func (c *Constraint) validateGeometry(s *multibody.State) error {
	return c.eqs.validateGeometry(c.Geometry(s))
}

// forceEvaluation builds the context for a force mapping: Position stage
// is the floor, but body velocities and accelerations are included when
// the state has realized them, for custom force callbacks that read them.
func (c *Constraint) forceEvaluation(s *multibody.State) *Evaluation {
	v, _ := c.set.sys.BodyVelocities(s)
	a, _ := c.set.sys.BodyAccelerations(s)
	return c.evaluation(s, v, a)
}

func (c *Constraint) evaluation(s *multibody.State, v, a []spatial.SpatialVec) *Evaluation {
	return &Evaluation{
		sys:      c.set.sys,
		s:        s,
		bodies:   c.bodies,
		ancestor: c.ancestor,
		v:        v,
		a:        a,
	}
}

// PositionErrors returns the mp holonomic constraint violations; Position
// stage. A disabled constraint produces no equations.
func (c *Constraint) PositionErrors(s *multibody.State) ([]float64, error) {
	if !c.Enabled(s) {
		return nil, nil
	}
	perr := make([]float64, c.counts.MP)
	if c.counts.MP == 0 {
		return perr, nil
	}
	if err := c.eqs.positionErrors(c.evaluation(s, nil, nil), c.Geometry(s), perr); err != nil {
		return nil, err
	}
	return perr, nil
}

// VelocityErrors returns mp+mv values: the time derivatives of the position
// errors followed by the nonholonomic velocity errors; Velocity stage.
func (c *Constraint) VelocityErrors(s *multibody.State) ([]float64, error) {
	if !c.Enabled(s) {
		return nil, nil
	}
	v, err := c.set.sys.BodyVelocities(s)
	if err != nil {
		return nil, err
	}
	return c.velocityErrorsFor(s, v)
}

func (c *Constraint) velocityErrorsFor(s *multibody.State, v []spatial.SpatialVec) ([]float64, error) {
	verr := make([]float64, c.counts.MP+c.counts.MV)
	if len(verr) == 0 {
		return verr, nil
	}
	if err := c.eqs.velocityErrors(c.evaluation(s, v, nil), c.Geometry(s), verr); err != nil {
		return nil, err
	}
	return verr, nil
}

// AccelerationErrors returns mp+mv+ma values: the second derivatives of the
// position errors, the first derivatives of the nonholonomic errors, and the
// acceleration-only errors; Acceleration stage. Kinds whose acceleration
// path is not wired up report ErrNotImplemented rather than zeros.
func (c *Constraint) AccelerationErrors(s *multibody.State) ([]float64, error) {
	if !c.Enabled(s) {
		return nil, nil
	}
	a, err := c.set.sys.BodyAccelerations(s)
	if err != nil {
		return nil, err
	}
	v, err := c.set.sys.BodyVelocities(s)
	if err != nil {
		return nil, err
	}
	return c.accelerationErrorsFor(s, v, a)
}

func (c *Constraint) accelerationErrorsFor(s *multibody.State, v, a []spatial.SpatialVec) ([]float64, error) {
	aerr := make([]float64, c.counts.Total())
	if len(aerr) == 0 {
		return aerr, nil
	}
	if err := c.eqs.accelerationErrors(c.evaluation(s, v, a), c.Geometry(s), aerr); err != nil {
		return nil, err
	}
	return aerr, nil
}

// MatrixP returns the mp x nu Jacobian of the holonomic velocity errors with
// respect to the generalized speeds; Position stage. Column j is the
// velocity error evaluated against the body velocities a unit speed vector
// e_j produces, exact because the velocity errors are linear in u. Columns
// outside the participating mobilities are left zero without evaluation.
func (c *Constraint) MatrixP(s *multibody.State) (Matrix, error) {
	return c.velocityJacobian(s, 0, c.counts.MP)
}

// MatrixPt is the exact transpose of MatrixP.
func (c *Constraint) MatrixPt(s *multibody.State) (Matrix, error) {
	p, err := c.MatrixP(s)
	if err != nil {
		return Matrix{}, err
	}
	return p.Transpose(), nil
}

// MatrixV returns the mv x nu Jacobian of the nonholonomic velocity errors;
// Position stage.
func (c *Constraint) MatrixV(s *multibody.State) (Matrix, error) {
	return c.velocityJacobian(s, c.counts.MP, c.counts.MV)
}

// MatrixVt is the exact transpose of MatrixV.
func (c *Constraint) MatrixVt(s *multibody.State) (Matrix, error) {
	v, err := c.MatrixV(s)
	if err != nil {
		return Matrix{}, err
	}
	return v.Transpose(), nil
}

func (c *Constraint) velocityJacobian(s *multibody.State, rowStart, rows int) (Matrix, error) {
	nu := c.set.sys.NumU()
	m := NewMatrix(rows, nu)
	if rows == 0 || !c.Enabled(s) {
		return m, nil
	}
	ulike := make([]float64, nu)
	for _, j := range c.participating {
		ulike[j] = 1
		v, err := c.set.sys.CalcBodyVelocitiesFromU(s, ulike)
		ulike[j] = 0
		if err != nil {
			return Matrix{}, err
		}
		verr, err := c.velocityErrorsFor(s, v)
		if err != nil {
			return Matrix{}, err
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, verr[rowStart+i])
		}
	}
	return m, nil
}

// MatrixA returns the ma x nu Jacobian of the acceleration-only errors with
// respect to the generalized accelerations; Velocity stage. The errors are
// affine in udot, so column j is aerr(e_j) - aerr(0).
func (c *Constraint) MatrixA(s *multibody.State) (Matrix, error) {
	nu := c.set.sys.NumU()
	rows := c.counts.MA
	rowStart := c.counts.MP + c.counts.MV
	m := NewMatrix(rows, nu)
	if rows == 0 || !c.Enabled(s) {
		return m, nil
	}
	v, err := c.set.sys.BodyVelocities(s)
	if err != nil {
		return Matrix{}, err
	}

	udotlike := make([]float64, nu)
	a0, err := c.set.sys.CalcBodyAccelerationsFromUDot(s, udotlike)
	if err != nil {
		return Matrix{}, err
	}
	aerr0, err := c.accelerationErrorsFor(s, v, a0)
	if err != nil {
		return Matrix{}, err
	}

	for _, j := range c.participating {
		udotlike[j] = 1
		a, err := c.set.sys.CalcBodyAccelerationsFromUDot(s, udotlike)
		udotlike[j] = 0
		if err != nil {
			return Matrix{}, err
		}
		aerr, err := c.accelerationErrorsFor(s, v, a)
		if err != nil {
			return Matrix{}, err
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, aerr[rowStart+i]-aerr0[rowStart+i])
		}
	}
	return m, nil
}

// MatrixAt is the exact transpose of MatrixA.
func (c *Constraint) MatrixAt(s *multibody.State) (Matrix, error) {
	a, err := c.MatrixA(s)
	if err != nil {
		return Matrix{}, err
	}
	return a.Transpose(), nil
}

// ForcesFromMultipliers maps a packed multiplier vector, ordered
// [holonomic | nonholonomic | acceleration-only], to per-constrained-body
// spatial forces expressed in the ancestor frame and packed generalized
// forces on the constrained mobilities. The mapping is virtual-work
// consistent with the Jacobians over the participating mobilities, and for
// two-body constraints the body forces transported to a common point are
// exact negatives of each other. Position stage.
func (c *Constraint) ForcesFromMultipliers(s *multibody.State, lambda []float64) ([]spatial.SpatialVec, []float64, error) {
	if len(lambda) != c.counts.Total() {
		return nil, nil, fmt.Errorf("%w: %d multipliers for %d equations", ErrDimension, len(lambda), c.counts.Total())
	}
	bodyForcesInG := make([]spatial.SpatialVec, len(c.bodies))
	mobilityForces := make([]float64, c.NumConstrainedMobilities())
	if !c.Enabled(s) {
		return bodyForcesInG, mobilityForces, nil
	}
	ev := c.forceEvaluation(s)
	if err := c.eqs.applyForces(ev, c.Geometry(s), lambda, bodyForcesInG, mobilityForces); err != nil {
		return nil, nil, err
	}

	xGA, err := ev.AncestorTransform()
	if err != nil {
		return nil, nil, err
	}
	rAG := xGA.R.Inv()
	for i, f := range bodyForcesInG {
		bodyForcesInG[i] = f.Reexpress(rAG)
	}
	return bodyForcesInG, mobilityForces, nil
}

// AccumulateForces adds the multiplier-mapped forces into tree-wide
// accumulators: per-body spatial forces in Ground and system-wide mobility
// forces, the shapes the tree's force appliers use. Position stage.
func (c *Constraint) AccumulateForces(s *multibody.State, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	if len(bodyForcesInG) != c.set.sys.NumBodies() || len(mobilityForces) != c.set.sys.NumU() {
		return ErrDimension
	}
	if len(lambda) != c.counts.Total() {
		return fmt.Errorf("%w: %d multipliers for %d equations", ErrDimension, len(lambda), c.counts.Total())
	}
	if !c.Enabled(s) {
		return nil
	}
	localForces := make([]spatial.SpatialVec, len(c.bodies))
	localMobility := make([]float64, c.NumConstrainedMobilities())
	ev := c.forceEvaluation(s)
	if err := c.eqs.applyForces(ev, c.Geometry(s), lambda, localForces, localMobility); err != nil {
		return err
	}
	for local, ix := range c.bodies {
		bodyForcesInG[ix] = bodyForcesInG[ix].Add(localForces[local])
	}
	off := 0
	for _, ix := range c.bodies {
		b := c.set.sys.Body(ix)
		for k := 0; k < b.NumU(); k++ {
			mobilityForces[b.UStart()+k] += localMobility[off]
			off++
		}
	}
	return nil
}
