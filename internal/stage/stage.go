// Package stage defines the realization levels that order every derived
// quantity in the multibody core. Stages form a total order; a cached value
// computed at stage S is readable only while the owning state's stage
// marker is at least S.
package stage

// Stage is a realization level. Higher stages depend on everything below
// them; mutating an input at stage S invalidates all cached results at S
// and above.
type Stage int8

const (
	Empty Stage = iota
	Topology
	Model
	Instance
	Position
	Velocity
	Dynamics
	Acceleration
)

var names = [...]string{
	"Empty", "Topology", "Model", "Instance",
	"Position", "Velocity", "Dynamics", "Acceleration",
}

func (s Stage) String() string {
	if s < Empty || s > Acceleration {
		return "Invalid"
	}
	return names[s]
}

// Prev returns the stage immediately below s. Prev of Empty is Empty.
func (s Stage) Prev() Stage {
	if s <= Empty {
		return Empty
	}
	return s - 1
}

// Min returns the lower of two stages.
func Min(a, b Stage) Stage {
	if a < b {
		return a
	}
	return b
}
