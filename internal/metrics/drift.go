package metrics

import (
	"math"

	"github.com/san-kum/kinetree/internal/constraint"
	"github.com/san-kum/kinetree/internal/multibody"
)

// ConstraintDrift tracks the worst position-level constraint violation seen
// during a run: the infinity norm over every equation of every enabled
// constraint in the set.
type ConstraintDrift struct {
	set      *constraint.Set
	maxDrift float64
	samples  int
}

func NewConstraintDrift(set *constraint.Set) *ConstraintDrift {
	return &ConstraintDrift{set: set}
}

func (c *ConstraintDrift) Name() string { return "constraint_drift" }

func (c *ConstraintDrift) Observe(s *multibody.State, t float64) {
	for ix := 0; ix < c.set.NumConstraints(); ix++ {
		perr, err := c.set.Constraint(constraint.Index(ix)).PositionErrors(s)
		if err != nil {
			continue
		}
		for _, e := range perr {
			c.maxDrift = math.Max(c.maxDrift, math.Abs(e))
		}
	}
	c.samples++
}

func (c *ConstraintDrift) Value() float64 { return c.maxDrift }

func (c *ConstraintDrift) Reset() {
	c.maxDrift = 0
	c.samples = 0
}
