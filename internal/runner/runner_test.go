package runner

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/metrics"
	"github.com/san-kum/kinetree/internal/scene"
)

func buildPreset(t *testing.T, name string) (*scene.Scene, config.RunConfig) {
	t.Helper()
	cfg := config.GetPreset(name)
	if cfg == nil {
		t.Fatalf("no preset %q", name)
	}
	sc, err := scene.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sc, cfg.Run
}

func TestRunPendulumConstantDrive(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	rc.Duration = 1.0
	rc.Dt = 0.01

	r, err := New(sc, rc, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := r.Run(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 100 {
		t.Errorf("steps: got %d, want 100", result.StepsTaken)
	}
	if len(result.Samples) != 101 {
		t.Errorf("samples: got %d, want 101", len(result.Samples))
	}

	// a constant-rate pin advances linearly from the configured angle
	last := result.Samples[len(result.Samples)-1]
	if math.Abs(last.Q[0]-1.5) > 1e-12 {
		t.Errorf("final angle: got %v, want 1.5", last.Q[0])
	}
	if math.Abs(last.T-1.0) > 1e-12 {
		t.Errorf("final time: got %v, want 1.0", last.T)
	}
	if result.MaxPerr != 0 {
		t.Errorf("unconstrained scene reported perr %v", result.MaxPerr)
	}
}

func TestRunFourbarRecordsViolation(t *testing.T) {
	sc, rc := buildPreset(t, "fourbar")
	rc.Duration = 0.5

	r, err := New(sc, rc, nil)
	if err != nil {
		t.Fatal(err)
	}
	drift := metrics.NewConstraintDrift(sc.Set)
	r.AddMetric(drift)

	result, err := r.Run(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	// driving the crank without a loop solver must leave a violation trail
	if result.MaxPerr == 0 {
		t.Error("driven closed loop produced no coupler violation")
	}
	if result.Samples[0].PerrNorm != 0 {
		t.Errorf("reference configuration violated: %v", result.Samples[0].PerrNorm)
	}
	got, ok := result.Metrics["constraint_drift"]
	if !ok {
		t.Fatal("constraint_drift metric missing from result")
	}
	if math.Abs(got-result.MaxPerr) > 1e-12 {
		t.Errorf("metric %v disagrees with recorded max %v", got, result.MaxPerr)
	}
}

func TestRunValidation(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	r, err := New(sc, rc, nil)
	if err != nil {
		t.Fatal(err)
	}
	rc.Dt = 0
	if _, err := r.Run(context.Background(), rc); err == nil {
		t.Error("expected error for zero dt")
	}
	rc.Dt = 0.01
	rc.Duration = -1
	if _, err := r.Run(context.Background(), rc); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestRunContextCancel(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	r, err := New(sc, rc, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, rc); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	r, err := New(sc, rc, nil)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	err = r.RunWithCallback(context.Background(), rc, func(s Sample) bool {
		count++
		return count < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("callback ran %d times, want 3", count)
	}
}

func TestUnknownIntegratorRejected(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	rc.Integrator = "verlet"
	if _, err := New(sc, rc, nil); err == nil {
		t.Error("expected unknown integrator error")
	}
}
