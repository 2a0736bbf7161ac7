package scene

import (
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/stage"
)

func TestBuildPendulumPreset(t *testing.T) {
	sc, err := Build(config.GetPreset("pendulum"))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Sys.NumQ() != 1 || sc.Sys.NumU() != 1 {
		t.Errorf("pendulum dimensions: nq=%d nu=%d", sc.Sys.NumQ(), sc.Sys.NumU())
	}
	q, err := sc.State.Q()
	if err != nil {
		t.Fatal(err)
	}
	if q[0] != 0.5 {
		t.Errorf("initial angle: got %v, want 0.5", q[0])
	}

	// the bob hangs below the hinge by the outboard offset
	if err := sc.Sys.Realize(sc.State, stage.Position); err != nil {
		t.Fatal(err)
	}
	bob, ok := sc.Body("bob")
	if !ok {
		t.Fatal("bob not resolvable by name")
	}
	p, err := bob.OriginLocation(sc.State)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Norm()-1.0) > 1e-12 {
		t.Errorf("bob should sit one unit from the hinge, got %v", p)
	}
}

func TestBuildFourbarClosesLoop(t *testing.T) {
	sc, err := Build(config.GetPreset("fourbar"))
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Sys.Realize(sc.State, stage.Position); err != nil {
		t.Fatal(err)
	}
	// crank and rocker both at angle zero satisfies the coupler rod exactly
	c := sc.Set.Constraint(0)
	perr, err := c.PositionErrors(sc.State)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(perr[0]) > 1e-12 {
		t.Errorf("fourbar reference configuration violates the coupler: %v", perr)
	}
}

func TestBuildValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*config.Config)
	}{
		{"unknown parent", func(c *config.Config) { c.Bodies[0].Parent = "nope" }},
		{"unknown mobilizer", func(c *config.Config) { c.Bodies[0].Mobilizer = "screw" }},
		{"duplicate name", func(c *config.Config) { c.Bodies = append(c.Bodies, c.Bodies[0]) }},
		{"reserved name", func(c *config.Config) { c.Bodies[0].Name = "ground" }},
		{"wrong q length", func(c *config.Config) { c.Bodies[0].Q = []float64{1, 2, 3} }},
		{"unknown constraint kind", func(c *config.Config) {
			c.Constraints = append(c.Constraints, config.ConstraintConfig{Kind: "gear", Body1: "bob"})
		}},
		{"constraint on unknown body", func(c *config.Config) {
			c.Constraints = append(c.Constraints, config.ConstraintConfig{Kind: "ball", Body1: "bob", Body2: "nope"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mut(cfg)
			if _, err := Build(cfg); err == nil {
				t.Error("expected a build error")
			}
		})
	}
}

func TestGimbalTopInitialSpeeds(t *testing.T) {
	sc, err := Build(config.GetPreset("gimbal-top"))
	if err != nil {
		t.Fatal(err)
	}
	u, err := sc.State.U()
	if err != nil {
		t.Fatal(err)
	}
	if u[2] != 12.0 {
		t.Errorf("spin speed: got %v, want 12", u[2])
	}
}
