package constraint

import (
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// noSlip is a genuinely nonholonomic test constraint: the two bodies'
// origins may not move relative to each other along the ground x axis.
type noSlip struct{}

func (noSlip) Counts() Counts { return Counts{MV: 1} }

func (noSlip) PositionErrors(ev *Evaluation, perr []float64) error { return nil }

func (noSlip) VelocityErrors(ev *Evaluation, verr []float64) error {
	rel := ev.SpatialVelocity(1).V.Sub(ev.SpatialVelocity(0).V)
	verr[0] = rel[0]
	return nil
}

func (noSlip) AccelerationErrors(ev *Evaluation, aerr []float64) error {
	rel := ev.SpatialAcceleration(1).V.Sub(ev.SpatialAcceleration(0).V)
	aerr[0] = rel[0]
	return nil
}

func (noSlip) ApplyForces(ev *Evaluation, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	f := spatial.Vec3{lambda[0], 0, 0}
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{V: f})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{V: f})
	return nil
}

// axisLock locks a settable number of relative translation axes between
// two bodies, one velocity equation per axis.
type axisLock struct{ axes int }

func (a *axisLock) Counts() Counts { return Counts{MV: a.axes} }

func (a *axisLock) PositionErrors(ev *Evaluation, perr []float64) error { return nil }

func (a *axisLock) VelocityErrors(ev *Evaluation, verr []float64) error {
	rel := ev.SpatialVelocity(1).V.Sub(ev.SpatialVelocity(0).V)
	for i := range verr {
		verr[i] = rel[i]
	}
	return nil
}

func (a *axisLock) AccelerationErrors(ev *Evaluation, aerr []float64) error {
	rel := ev.SpatialAcceleration(1).V.Sub(ev.SpatialAcceleration(0).V)
	for i := range aerr {
		aerr[i] = rel[i]
	}
	return nil
}

func (a *axisLock) ApplyForces(ev *Evaluation, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	var f spatial.Vec3
	for i, l := range lambda {
		f[i] = l
	}
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{V: f})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{V: f})
	return nil
}

// dragBrake pushes against the bodies' relative velocity: its force
// callback reads the evaluation's velocities.
type dragBrake struct{}

func (dragBrake) Counts() Counts { return Counts{MV: 1} }

func (dragBrake) PositionErrors(ev *Evaluation, perr []float64) error { return nil }

func (dragBrake) VelocityErrors(ev *Evaluation, verr []float64) error {
	verr[0] = ev.SpatialVelocity(1).V.Sub(ev.SpatialVelocity(0).V).Norm()
	return nil
}

func (dragBrake) AccelerationErrors(ev *Evaluation, aerr []float64) error { return nil }

func (dragBrake) ApplyForces(ev *Evaluation, lambda []float64, bodyForcesInG []spatial.SpatialVec, mobilityForces []float64) error {
	rel := ev.SpatialVelocity(1).V.Sub(ev.SpatialVelocity(0).V)
	f := rel.Scale(-lambda[0])
	bodyForcesInG[1] = bodyForcesInG[1].Add(spatial.SpatialVec{V: f})
	bodyForcesInG[0] = bodyForcesInG[0].Sub(spatial.SpatialVec{V: f})
	return nil
}

func TestCustomNonholonomicConstraint(t *testing.T) {
	sys := multibody.NewSystem()
	b1, _ := sys.AddBody(multibody.Ground, "cart1", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	b2, _ := sys.AddBody(multibody.Ground, "cart2", spatial.PointMass(1),
		spatial.TranslationTransform(spatial.Vec3{0, 1, 0}), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	set, err := NewSet(sys)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := set.AddCustom([]multibody.BodyIndex{b1, b2}, noSlip{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}

	u := []float64{0.4, 0.1, -0.2, 0.9, 0.3, 0.5}
	if err := s.SetU(u); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Velocity); err != nil {
		t.Fatal(err)
	}

	c := set.Constraint(ix)
	mp, mv, ma := c.NumEquations()
	if mp != 0 || mv != 1 || ma != 0 {
		t.Fatalf("counts: got (%d,%d,%d), want (0,1,0)", mp, mv, ma)
	}

	// no holonomic part
	perr, err := c.PositionErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(perr) != 0 {
		t.Errorf("nonholonomic constraint produced position errors: %v", perr)
	}

	verr, err := c.VelocityErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(verr[0]-0.5) > tol {
		t.Errorf("relative x speed: got %v, want 0.5", verr[0])
	}

	// V*u reproduces the velocity error; P is empty
	v, err := c.MatrixV(s)
	if err != nil {
		t.Fatal(err)
	}
	vu, err := v.MulVec(u)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(vu[0]-verr[0]) > tol {
		t.Errorf("V*u = %v, verr = %v", vu[0], verr[0])
	}
	p, err := c.MatrixP(s)
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows() != 0 {
		t.Errorf("holonomic Jacobian has %d rows for a nonholonomic constraint", p.Rows())
	}

	// force mapping pushes the carts together along x, equal and opposite
	bf, mf, err := c.ForcesFromMultipliers(s, []float64{2.0})
	if err != nil {
		t.Fatal(err)
	}
	if got := bf[1].V[0]; math.Abs(got-2.0) > tol {
		t.Errorf("force on cart2: got %v, want 2.0", got)
	}
	if got := bf[0].V.Add(bf[1].V); got.Norm() > tol {
		t.Errorf("forces are not equal and opposite: %v", got)
	}
	for _, f := range mf {
		if f != 0 {
			t.Errorf("unexpected mobility force %v", mf)
			break
		}
	}
}

func cartPair(t *testing.T, impl CustomConstraint) (*multibody.System, *Set, Index, *multibody.State) {
	t.Helper()
	sys := multibody.NewSystem()
	b1, _ := sys.AddBody(multibody.Ground, "cart1", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	b2, _ := sys.AddBody(multibody.Ground, "cart2", spatial.PointMass(1),
		spatial.TranslationTransform(spatial.Vec3{0, 1, 0}), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	set, err := NewSet(sys)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := set.AddCustom([]multibody.BodyIndex{b1, b2}, impl)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	return sys, set, ix, s
}

func TestCustomCountsRereadAtModelStage(t *testing.T) {
	lock := &axisLock{axes: 1}
	sys, set, ix, s := cartPair(t, lock)
	c := set.Constraint(ix)

	// relative velocity (0.5, 0.2, 0.7)
	if err := s.SetU([]float64{0.4, 0.1, -0.2, 0.9, 0.3, 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Velocity); err != nil {
		t.Fatal(err)
	}
	verr, err := c.VelocityErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(verr) != 1 || math.Abs(verr[0]-0.5) > tol {
		t.Fatalf("one-axis lock: got %v", verr)
	}

	// grow to two axes; a Model-stage variable write forces the counts to
	// be reread on the next realization
	lock.axes = 2
	c.SetEnabled(s, true)
	if err := sys.Realize(s, stage.Velocity); err != nil {
		t.Fatal(err)
	}
	mp, mv, ma := c.NumEquations()
	if mp != 0 || mv != 2 || ma != 0 {
		t.Fatalf("counts after growth: got (%d,%d,%d), want (0,2,0)", mp, mv, ma)
	}
	verr, err = c.VelocityErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(verr) != 2 || math.Abs(verr[1]-0.2) > tol {
		t.Fatalf("two-axis lock: got %v", verr)
	}

	lock.axes = 0
	c.SetEnabled(s, true)
	if err := sys.Realize(s, stage.Model); err == nil {
		t.Error("expected an error for zero equation counts")
	}
}

func TestCustomForceMappingSeesVelocities(t *testing.T) {
	sys, set, ix, s := cartPair(t, dragBrake{})

	// relative velocity (0.5, 0.2, 0.7)
	if err := s.SetU([]float64{0.4, 0.1, -0.2, 0.9, 0.3, 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Velocity); err != nil {
		t.Fatal(err)
	}

	bf, _, err := set.Constraint(ix).ForcesFromMultipliers(s, []float64{2.0})
	if err != nil {
		t.Fatal(err)
	}
	want := spatial.Vec3{-1.0, -0.4, -1.4}
	for i := 0; i < 3; i++ {
		if math.Abs(bf[1].V[i]-want[i]) > tol {
			t.Errorf("braking force component %d: got %v, want %v", i, bf[1].V[i], want[i])
		}
		if math.Abs(bf[0].V[i]+want[i]) > tol {
			t.Errorf("reaction component %d: got %v, want %v", i, bf[0].V[i], -want[i])
		}
	}
}
