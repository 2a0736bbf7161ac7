package metrics

import (
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// PathLength accumulates the arc length a body station traces through
// Ground over the observed samples.
type PathLength struct {
	sys     *multibody.System
	body    multibody.BodyIndex
	station spatial.Vec3
	length  float64
	prev    spatial.Vec3
	started bool
}

func NewPathLength(sys *multibody.System, body multibody.BodyIndex, station spatial.Vec3) *PathLength {
	return &PathLength{sys: sys, body: body, station: station}
}

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(s *multibody.State, t float64) {
	loc, err := p.sys.Body(p.body).LocatePointOnGround(s, p.station)
	if err != nil {
		return
	}
	if p.started {
		p.length += loc.Sub(p.prev).Norm()
	}
	p.prev = loc
	p.started = true
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.started = false
}
