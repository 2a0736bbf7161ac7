// Package metrics accumulates scalar summaries over a kinematic run. Each
// metric observes the state once per recorded sample and reduces the run to
// a single value for storage alongside the trajectory.
package metrics

import "github.com/san-kum/kinetree/internal/multibody"

type Metric interface {
	Name() string
	Observe(s *multibody.State, t float64)
	Value() float64
	Reset()
}
