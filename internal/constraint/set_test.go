package constraint

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

const tol = 1e-10

func TestRodScenario(t *testing.T) {
	sys := multibody.NewSystem()
	b, err := sys.AddBody(multibody.Ground, "block", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})
	if err != nil {
		t.Fatal(err)
	}
	set, err := NewSet(sys)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := set.AddRod(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}

	// at rest at distance 1.2 along the slider axis
	if err := s.SetQ([]float64{1.2}); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Velocity); err != nil {
		t.Fatal(err)
	}

	c := set.Constraint(ix)
	perr, err := c.PositionErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(perr) != 1 || math.Abs(perr[0]-0.2) > tol {
		t.Errorf("expected position error 0.2, got %v", perr)
	}

	verr, err := c.VelocityErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(verr) != 1 || math.Abs(verr[0]) > tol {
		t.Errorf("expected zero velocity error at rest, got %v", verr)
	}
}

func TestBallCoincidentScenario(t *testing.T) {
	sys := multibody.NewSystem()
	b1, _ := sys.AddBody(multibody.Ground, "free1", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	b2, _ := sys.AddBody(multibody.Ground, "free2", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.CartesianMobilizer{})
	set, err := NewSet(sys)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := set.AddBall(b1, spatial.Vec3{}, b2, spatial.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}

	perr, err := set.Constraint(ix).PositionErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(perr) != 3 {
		t.Fatalf("expected three ball equations, got %d", len(perr))
	}
	for i, v := range perr {
		if math.Abs(v) > tol {
			t.Errorf("perr[%d] = %v at the default coincident configuration", i, v)
		}
	}
}

func TestStageGuardsOnErrorAccessors(t *testing.T) {
	sys := multibody.NewSystem()
	b, _ := sys.AddBody(multibody.Ground, "block", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})
	set, _ := NewSet(sys)
	ix, _ := set.AddRod(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}, 1.0)
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}

	c := set.Constraint(ix)
	if _, err := c.PositionErrors(s); !errors.Is(err, multibody.ErrStageNotRealized) {
		t.Errorf("position errors before Position: %v", err)
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}
	if _, err := c.VelocityErrors(s); !errors.Is(err, multibody.ErrStageNotRealized) {
		t.Errorf("velocity errors before Velocity: %v", err)
	}
	// MatrixP only needs Position
	if _, err := c.MatrixP(s); err != nil {
		t.Errorf("MatrixP at Position: %v", err)
	}
}

func TestDisabledConstraintProducesNoEquations(t *testing.T) {
	sys := multibody.NewSystem()
	b, _ := sys.AddBody(multibody.Ground, "block", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})
	set, _ := NewSet(sys)
	ix, _ := set.AddRod(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}, 1.0)
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetQ([]float64{1.2}); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}

	c := set.Constraint(ix)
	c.SetEnabled(s, false)
	if s.Stage() >= stage.Model {
		t.Fatalf("disabling should invalidate Model stage, state still at %s", s.Stage())
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}
	perr, err := c.PositionErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(perr) != 0 {
		t.Errorf("disabled constraint produced equations: %v", perr)
	}
	p, err := c.MatrixP(s)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < p.Cols(); j++ {
		if p.At(0, j) != 0 {
			t.Errorf("disabled constraint has nonzero Jacobian column %d", j)
		}
	}
}

func TestConstructionValidation(t *testing.T) {
	sys := multibody.NewSystem()
	b, _ := sys.AddBody(multibody.Ground, "block", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})
	set, _ := NewSet(sys)

	if _, err := set.AddRod(multibody.Ground, spatial.Vec3{}, multibody.BodyIndex(99), spatial.Vec3{}, 1.0); !errors.Is(err, multibody.ErrTopologyMismatch) {
		t.Errorf("out-of-range body: %v", err)
	}
	if _, err := set.AddRod(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}, 0); !errors.Is(err, ErrGeometry) {
		t.Errorf("zero rod length: %v", err)
	}
	if _, err := set.AddPointInPlane(multibody.Ground, spatial.Vec3{}, 0, b, spatial.Vec3{}); !errors.Is(err, ErrGeometry) {
		t.Errorf("zero plane normal: %v", err)
	}

	if _, err := sys.RealizeTopology(); err != nil {
		t.Fatal(err)
	}
	if _, err := set.AddBall(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}); !errors.Is(err, multibody.ErrTopologyFrozen) {
		t.Errorf("add after realize: %v", err)
	}
}

func TestGeometryOverrideInvalidatesInstance(t *testing.T) {
	sys := multibody.NewSystem()
	b, _ := sys.AddBody(multibody.Ground, "block", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})
	set, _ := NewSet(sys)
	ix, _ := set.AddRod(multibody.Ground, spatial.Vec3{}, b, spatial.Vec3{}, 1.0)
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetQ([]float64{1.2}); err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}

	c := set.Constraint(ix)
	if err := c.SetGeometry(s, RodGeometry{Length: 1.1}); err != nil {
		t.Fatal(err)
	}
	if s.Stage() >= stage.Instance {
		t.Fatalf("geometry override should invalidate Instance, state at %s", s.Stage())
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}
	perr, err := c.PositionErrors(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(perr[0]-0.1) > tol {
		t.Errorf("expected position error 0.1 after new length, got %v", perr)
	}

	if err := c.SetGeometry(s, BallGeometry{}); !errors.Is(err, ErrKind) {
		t.Errorf("wrong geometry kind accepted: %v", err)
	}
}

func TestAccelerationErrorsNotImplementedKinds(t *testing.T) {
	sys := multibody.NewSystem()
	b1, _ := sys.AddBody(multibody.Ground, "g1", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.GimbalMobilizer{})
	b2, _ := sys.AddBody(multibody.Ground, "g2", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.GimbalMobilizer{})
	set, _ := NewSet(sys)
	wx, err := set.AddWeld(b1, spatial.IdentityTransform(), b2, spatial.IdentityTransform())
	if err != nil {
		t.Fatal(err)
	}
	ax, err := set.AddConstantAngle(b1, spatial.Vec3{0, 0, 1}, b2, spatial.Vec3{1, 0, 0}, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.Realize(s, stage.Acceleration); err != nil {
		t.Fatal(err)
	}

	if _, err := set.Constraint(wx).AccelerationErrors(s); !errors.Is(err, multibody.ErrNotImplemented) {
		t.Errorf("weld acceleration errors: %v", err)
	}
	if _, err := set.Constraint(ax).AccelerationErrors(s); !errors.Is(err, multibody.ErrNotImplemented) {
		t.Errorf("constant-angle acceleration errors: %v", err)
	}
}

func TestAncestorResolution(t *testing.T) {
	sys := multibody.NewSystem()
	trunk, _ := sys.AddBody(multibody.Ground, "trunk", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.PinMobilizer{})
	left, _ := sys.AddBody(trunk, "left", spatial.PointMass(1),
		spatial.TranslationTransform(spatial.Vec3{1, 0, 0}), spatial.IdentityTransform(), multibody.PinMobilizer{})
	right, _ := sys.AddBody(trunk, "right", spatial.PointMass(1),
		spatial.TranslationTransform(spatial.Vec3{-1, 0, 0}), spatial.IdentityTransform(), multibody.PinMobilizer{})
	other, _ := sys.AddBody(multibody.Ground, "other", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.SliderMobilizer{})

	set, _ := NewSet(sys)
	siblings, _ := set.AddBall(left, spatial.Vec3{}, right, spatial.Vec3{})
	crossTree, _ := set.AddBall(left, spatial.Vec3{}, other, spatial.Vec3{})
	if _, err := sys.RealizeTopology(); err != nil {
		t.Fatal(err)
	}

	if got := set.Constraint(siblings).Ancestor(); got != trunk {
		t.Errorf("sibling ancestor: got %d, want %d", got, trunk)
	}
	if got := set.Constraint(crossTree).Ancestor(); got != multibody.Ground {
		t.Errorf("cross-branch ancestor: got %d, want Ground", got)
	}

	// siblings: participation covers both pins below the trunk, not the
	// trunk's own mobility
	part := set.Constraint(siblings).ParticipatingMobilities()
	want := []int{sys.Body(left).UStart(), sys.Body(right).UStart()}
	if len(part) != 2 || part[0] != want[0] || part[1] != want[1] {
		t.Errorf("participating mobilities: got %v, want %v", part, want)
	}
}
