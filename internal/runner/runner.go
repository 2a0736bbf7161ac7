// Package runner executes kinematic runs over a built scene: it steps the
// integrator under the configured drive, records the trajectory and the
// constraint violations, and reduces any attached metrics.
package runner

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/constraint"
	"github.com/san-kum/kinetree/internal/metrics"
	"github.com/san-kum/kinetree/internal/motion"
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/scene"
	"github.com/san-kum/kinetree/internal/stage"
)

// Sample is one recorded trajectory point.
type Sample struct {
	T        float64
	Q        []float64
	U        []float64
	PerrNorm float64
}

// Result holds a completed run's trajectory and metric reductions.
type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	MaxPerr    float64
	StepsTaken int
}

type Runner struct {
	sc      *scene.Scene
	integ   motion.Integrator
	drive   motion.Drive
	metrics []metrics.Metric
	log     *zap.Logger
}

// New prepares a runner for one scene. The integrator and drive come from
// the run configuration.
func New(sc *scene.Scene, rc config.RunConfig, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	integ, err := motion.IntegratorFromConfig(rc.Integrator)
	if err != nil {
		return nil, err
	}
	drive, err := motion.DriveFromConfig(rc.Drive, sc.Sys.NumU())
	if err != nil {
		return nil, err
	}
	return &Runner{sc: sc, integ: integ, drive: drive, log: log}, nil
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }

func validateRunConfig(rc config.RunConfig) error {
	if rc.Dt <= 0 {
		return fmt.Errorf("runner: dt must be positive, got %f", rc.Dt)
	}
	if rc.Duration <= 0 {
		return fmt.Errorf("runner: duration must be positive, got %f", rc.Duration)
	}
	return nil
}

// Run advances the scene's state from its current configuration through the
// configured duration, sampling after every step. The scene state is
// mutated in place.
func (r *Runner) Run(ctx context.Context, rc config.RunConfig) (*Result, error) {
	return r.run(ctx, rc, r.sc.State)
}

func (r *Runner) run(ctx context.Context, rc config.RunConfig, s *multibody.State) (*Result, error) {
	if err := validateRunConfig(rc); err != nil {
		return nil, err
	}
	steps := int(rc.Duration / rc.Dt)
	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	if err := r.sc.Sys.Realize(s, stage.Velocity); err != nil {
		return nil, err
	}
	if err := r.record(result, s, 0); err != nil {
		return nil, err
	}

	r.log.Info("run started",
		zap.Int("steps", steps),
		zap.Float64("dt", rc.Dt),
		zap.String("integrator", r.integ.Name()),
		zap.Int("nq", s.NumQ()),
		zap.Int("nu", s.NumU()))

	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := r.integ.Step(r.sc.Sys, s, r.drive, t, rc.Dt); err != nil {
			return result, err
		}
		t += rc.Dt
		result.StepsTaken++

		if !coordinatesFinite(s) {
			return result, fmt.Errorf("runner: non-finite coordinates at t=%.4f", t)
		}
		if err := r.record(result, s, t); err != nil {
			return result, err
		}
		for _, m := range r.metrics {
			m.Observe(s, t)
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	r.log.Info("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Float64("max_perr", result.MaxPerr))
	return result, nil
}

// RunWithCallback streams samples instead of collecting them; the callback
// returns false to stop early.
func (r *Runner) RunWithCallback(ctx context.Context, rc config.RunConfig, callback func(Sample) bool) error {
	if err := validateRunConfig(rc); err != nil {
		return err
	}
	s := r.sc.State
	if err := r.sc.Sys.Realize(s, stage.Velocity); err != nil {
		return err
	}
	t := 0.0
	for t < rc.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sample, err := r.sample(s, t)
		if err != nil {
			return err
		}
		if !callback(sample) {
			return nil
		}
		if err := r.integ.Step(r.sc.Sys, s, r.drive, t, rc.Dt); err != nil {
			return err
		}
		t += rc.Dt
		if !coordinatesFinite(s) {
			return fmt.Errorf("runner: non-finite coordinates at t=%.4f", t)
		}
	}
	return nil
}

func (r *Runner) record(result *Result, s *multibody.State, t float64) error {
	sample, err := r.sample(s, t)
	if err != nil {
		return err
	}
	result.Samples = append(result.Samples, sample)
	result.MaxPerr = math.Max(result.MaxPerr, sample.PerrNorm)
	return nil
}

func (r *Runner) sample(s *multibody.State, t float64) (Sample, error) {
	q, err := s.Q()
	if err != nil {
		return Sample{}, err
	}
	u, err := s.U()
	if err != nil {
		return Sample{}, err
	}
	perr, err := r.positionErrorNorm(s)
	if err != nil {
		return Sample{}, err
	}
	sample := Sample{
		T:        t,
		Q:        append([]float64(nil), q...),
		U:        append([]float64(nil), u...),
		PerrNorm: perr,
	}
	return sample, nil
}

// positionErrorNorm is the 2-norm over every enabled constraint equation.
func (r *Runner) positionErrorNorm(s *multibody.State) (float64, error) {
	var sum float64
	for ix := 0; ix < r.sc.Set.NumConstraints(); ix++ {
		perr, err := r.sc.Set.Constraint(constraint.Index(ix)).PositionErrors(s)
		if err != nil {
			return 0, err
		}
		for _, e := range perr {
			sum += e * e
		}
	}
	return math.Sqrt(sum), nil
}

func coordinatesFinite(s *multibody.State) bool {
	q, err := s.Q()
	if err != nil {
		return false
	}
	for _, v := range q {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
