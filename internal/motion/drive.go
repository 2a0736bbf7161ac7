// Package motion advances a scene kinematically: a drive prescribes the
// generalized speeds over time and an integrator propagates the coordinates
// through qdot, so constrained configurations can be swept without solving
// dynamics.
package motion

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetree/internal/config"
)

// A Drive overwrites prescribed entries of the generalized speed vector at
// time t; entries it does not own are left alone.
type Drive interface {
	Apply(t float64, u []float64)
}

// Coast prescribes nothing; the speeds keep their current values.
type Coast struct{}

func (Coast) Apply(t float64, u []float64) {}

// Constant holds one mobility at a fixed speed.
type Constant struct {
	Mobility int
	Speed    float64
}

func (d Constant) Apply(t float64, u []float64) { u[d.Mobility] = d.Speed }

// Sine oscillates one mobility's speed: u = A*sin(2*pi*f*t).
type Sine struct {
	Mobility  int
	Amplitude float64
	Frequency float64
}

func (d Sine) Apply(t float64, u []float64) {
	u[d.Mobility] = d.Amplitude * math.Sin(2*math.Pi*d.Frequency*t)
}

// DriveFromConfig maps a drive description to its implementation. nu bounds
// the mobility index.
func DriveFromConfig(dc config.DriveConfig, nu int) (Drive, error) {
	if dc.Shape == "" {
		return Coast{}, nil
	}
	if dc.Mobility < 0 || dc.Mobility >= nu {
		return nil, fmt.Errorf("motion: drive mobility %d out of range [0,%d)", dc.Mobility, nu)
	}
	switch dc.Shape {
	case "constant":
		return Constant{Mobility: dc.Mobility, Speed: dc.Amplitude}, nil
	case "sine":
		return Sine{Mobility: dc.Mobility, Amplitude: dc.Amplitude, Frequency: dc.Frequency}, nil
	default:
		return nil, fmt.Errorf("motion: unknown drive shape %q", dc.Shape)
	}
}
