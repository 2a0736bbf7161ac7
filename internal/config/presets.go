package config

import "sort"

var Presets = map[string]*Config{
	"pendulum": {
		Name:    "pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "bob", Mobilizer: "pin", Outboard: [3]float64{0, 1, 0}, Mass: 1.0, Q: []float64{0.5}},
		},
		Run: RunConfig{Dt: 0.01, Duration: 20.0, Integrator: "rk4",
			Drive: DriveConfig{Shape: "constant", Mobility: 0, Amplitude: 1.0}},
	},
	"double-pendulum": {
		Name:    "double-pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "link1", Mobilizer: "pin", Outboard: [3]float64{0, 1, 0}, Mass: 1.0, Q: []float64{0.3}},
			{Name: "link2", Parent: "link1", Mobilizer: "pin", Outboard: [3]float64{0, 1, 0}, Mass: 1.0, Q: []float64{0.3}},
		},
		Run: RunConfig{Dt: 0.005, Duration: 30.0, Integrator: "rk4",
			Drive: DriveConfig{Shape: "sine", Mobility: 0, Amplitude: 2.0, Frequency: 0.5}},
	},
	// crank and rocker both pinned to ground, closed by a coupler rod
	"fourbar": {
		Name:    "fourbar",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "crank", Mobilizer: "pin", Mass: 1.0},
			{Name: "rocker", Mobilizer: "pin", Inboard: [3]float64{3, 0, 0}, Mass: 1.0},
		},
		Constraints: []ConstraintConfig{
			{Kind: "rod", Body1: "crank", Point1: [3]float64{1, 0, 0},
				Body2: "rocker", Point2: [3]float64{1, 0, 0}, Length: 3.0},
		},
		Run: RunConfig{Dt: 0.01, Duration: 15.0, Integrator: "rk4",
			Drive: DriveConfig{Shape: "constant", Mobility: 0, Amplitude: 1.5}},
	},
	"slider-crank": {
		Name:    "slider-crank",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "crank", Mobilizer: "pin", Mass: 1.0},
			{Name: "piston", Mobilizer: "slider", Mass: 2.0, Q: []float64{2.0}},
		},
		Constraints: []ConstraintConfig{
			{Kind: "rod", Body1: "crank", Point1: [3]float64{0.5, 0, 0},
				Body2: "piston", Length: 1.5},
		},
		Run: RunConfig{Dt: 0.005, Duration: 10.0, Integrator: "rk4",
			Drive: DriveConfig{Shape: "constant", Mobility: 0, Amplitude: 3.0}},
	},
	"gimbal-top": {
		Name:    "gimbal-top",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{Name: "rotor", Mobilizer: "gimbal", Mass: 1.0,
				Inertia: [3]float64{0.02, 0.02, 0.04},
				Q:       []float64{0.3, 0, 0}, U: []float64{0, 0, 12.0}},
		},
		Run: RunConfig{Dt: 0.002, Duration: 8.0, Integrator: "rk4"},
	},
}

// GetPreset returns a copy of the named preset, so callers can apply
// overrides without mutating the shared table; nil for unknown names.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Bodies = append([]BodyConfig(nil), cfg.Bodies...)
	for i := range out.Bodies {
		out.Bodies[i].Q = append([]float64(nil), out.Bodies[i].Q...)
		out.Bodies[i].U = append([]float64(nil), out.Bodies[i].U...)
	}
	out.Constraints = append([]ConstraintConfig(nil), cfg.Constraints...)
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
