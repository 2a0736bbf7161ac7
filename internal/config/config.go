package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultGravity  = -9.81
)

// Config describes a complete scene: the multibody tree, the constraints
// closing it, and how a run should advance it.
type Config struct {
	Name        string             `yaml:"name"`
	Gravity     [3]float64         `yaml:"gravity"`
	Bodies      []BodyConfig       `yaml:"bodies"`
	Constraints []ConstraintConfig `yaml:"constraints"`
	Run         RunConfig          `yaml:"run"`
}

// BodyConfig adds one body to the tree. Parent is another body's name, or
// empty for ground. Frames are given as a translation plus body-fixed XYZ
// rotation angles.
type BodyConfig struct {
	Name             string     `yaml:"name"`
	Parent           string     `yaml:"parent"`
	Mobilizer        string     `yaml:"mobilizer"`
	Inboard          [3]float64 `yaml:"inboard"`
	InboardRotation  [3]float64 `yaml:"inboard_rotation"`
	Outboard         [3]float64 `yaml:"outboard"`
	OutboardRotation [3]float64 `yaml:"outboard_rotation"`
	Mass             float64    `yaml:"mass"`
	COM              [3]float64 `yaml:"com"`
	Inertia          [3]float64 `yaml:"inertia"`
	Q                []float64  `yaml:"q"`
	U                []float64  `yaml:"u"`
}

// ConstraintConfig adds one constraint between two named bodies. Which
// fields matter depends on the kind: rod uses points and length, ball uses
// points, weld uses frames, point_in_plane uses normal/height/point2,
// constant_angle uses axes and angle, constant_orientation uses axis frames.
type ConstraintConfig struct {
	Kind   string     `yaml:"kind"`
	Body1  string     `yaml:"body1"`
	Body2  string     `yaml:"body2"`
	Point1 [3]float64 `yaml:"point1"`
	Point2 [3]float64 `yaml:"point2"`
	Length float64    `yaml:"length"`
	Normal [3]float64 `yaml:"normal"`
	Height float64    `yaml:"height"`
	Axis1  [3]float64 `yaml:"axis1"`
	Axis2  [3]float64 `yaml:"axis2"`
	Angle  float64    `yaml:"angle"`
	Frame1 [3]float64 `yaml:"frame1"`
	Frame2 [3]float64 `yaml:"frame2"`
}

// DriveConfig prescribes one generalized speed during a run. An empty shape
// leaves all speeds at their configured initial values.
type DriveConfig struct {
	Shape     string  `yaml:"shape"`
	Mobility  int     `yaml:"mobility"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

type RunConfig struct {
	Dt         float64     `yaml:"dt"`
	Duration   float64     `yaml:"duration"`
	Integrator string      `yaml:"integrator"`
	Drive      DriveConfig `yaml:"drive"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:    "pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []BodyConfig{
			{
				Name:      "bob",
				Mobilizer: "pin",
				Outboard:  [3]float64{0, 1, 0},
				Mass:      1.0,
				Q:         []float64{0.5},
			},
		},
		Run: RunConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: "rk4",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	cfg.Constraints = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
