package metrics

import (
	"math"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/stage"
)

// MomentumPeak records the largest linear momentum magnitude one body
// reaches during a run.
type MomentumPeak struct {
	sys  *multibody.System
	body multibody.BodyIndex
	peak float64
}

func NewMomentumPeak(sys *multibody.System, body multibody.BodyIndex) *MomentumPeak {
	return &MomentumPeak{sys: sys, body: body}
}

func (m *MomentumPeak) Name() string { return "momentum_peak" }

func (m *MomentumPeak) Observe(s *multibody.State, t float64) {
	// momentum needs mass properties in Ground, one stage past velocity
	if err := m.sys.Realize(s, stage.Dynamics); err != nil {
		return
	}
	h, err := m.sys.Body(m.body).MomentumInGround(s)
	if err != nil {
		return
	}
	m.peak = math.Max(m.peak, h.V.Norm())
}

func (m *MomentumPeak) Value() float64 { return m.peak }

func (m *MomentumPeak) Reset() { m.peak = 0 }
