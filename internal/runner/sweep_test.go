package runner

import (
	"context"
	"math"
	"testing"
)

func TestSweepIndependentVariations(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	rc.Duration = 1.0
	rc.Dt = 0.01

	initialQ := [][]float64{{0.0}, {0.5}, {-1.0}}
	results, err := Sweep(context.Background(), sc, rc, initialQ, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// constant drive at 1.0 rad/s for one second: each variation ends at
	// its own start plus one radian
	for i, res := range results {
		last := res.Samples[len(res.Samples)-1]
		want := initialQ[i][0] + 1.0
		if math.Abs(last.Q[0]-want) > 1e-12 {
			t.Errorf("variation %d: final angle %v, want %v", i, last.Q[0], want)
		}
	}

	// the scene's own state must not have been advanced
	q, err := sc.State.Q()
	if err != nil {
		t.Fatal(err)
	}
	if q[0] != 0.5 {
		t.Errorf("sweep mutated the scene state: q=%v", q)
	}
}

func TestSweepBadOverride(t *testing.T) {
	sc, rc := buildPreset(t, "pendulum")
	if _, err := Sweep(context.Background(), sc, rc, [][]float64{{1, 2, 3}}, nil); err == nil {
		t.Error("expected dimension error")
	}
}
