package stage

import "testing"

func TestTotalOrder(t *testing.T) {
	order := []Stage{Empty, Topology, Model, Instance, Position, Velocity, Dynamics, Acceleration}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Errorf("expected %s < %s", order[i-1], order[i])
		}
	}
}

func TestPrev(t *testing.T) {
	if Position.Prev() != Instance {
		t.Errorf("Prev(Position) = %s", Position.Prev())
	}
	if Empty.Prev() != Empty {
		t.Errorf("Prev(Empty) = %s", Empty.Prev())
	}
}

func TestString(t *testing.T) {
	if Velocity.String() != "Velocity" {
		t.Errorf("got %q", Velocity.String())
	}
	if Stage(99).String() != "Invalid" {
		t.Errorf("got %q", Stage(99).String())
	}
}
