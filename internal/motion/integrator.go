package motion

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/stage"
)

// An Integrator advances the state's coordinates from t to t+dt with the
// generalized speeds prescribed by the drive. The state is left realized
// through the velocity stage at the new time.
type Integrator interface {
	Name() string
	Step(sys *multibody.System, s *multibody.State, drive Drive, t, dt float64) error
}

// IntegratorFromConfig maps an integrator name to its implementation.
func IntegratorFromConfig(name string) (Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "", "rk4":
		return NewRK4(), nil
	default:
		return nil, fmt.Errorf("motion: unknown integrator %q", name)
	}
}

// qdotAt evaluates the coordinate rates at (q, t): the speeds are refreshed
// from the drive, the tree realized through velocity, and qdot copied out.
func qdotAt(sys *multibody.System, s *multibody.State, drive Drive, q, u []float64, t float64, out []float64) error {
	if err := s.SetQ(q); err != nil {
		return err
	}
	drive.Apply(t, u)
	if err := s.SetU(u); err != nil {
		return err
	}
	if err := sys.Realize(s, stage.Velocity); err != nil {
		return err
	}
	qdot, err := s.QDot()
	if err != nil {
		return err
	}
	copy(out, qdot)
	return nil
}

type Euler struct {
	q, u, k1 []float64
}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Name() string { return "euler" }

func (e *Euler) ensureScratch(s *multibody.State) error {
	if len(e.q) == s.NumQ() && len(e.u) == s.NumU() {
		return e.capture(s)
	}
	e.q = make([]float64, s.NumQ())
	e.u = make([]float64, s.NumU())
	e.k1 = make([]float64, s.NumQ())
	return e.capture(s)
}

func (e *Euler) capture(s *multibody.State) error {
	q, err := s.Q()
	if err != nil {
		return err
	}
	u, err := s.U()
	if err != nil {
		return err
	}
	copy(e.q, q)
	copy(e.u, u)
	return nil
}

func (e *Euler) Step(sys *multibody.System, s *multibody.State, drive Drive, t, dt float64) error {
	if err := e.ensureScratch(s); err != nil {
		return err
	}
	if err := qdotAt(sys, s, drive, e.q, e.u, t, e.k1); err != nil {
		return err
	}
	for i := range e.q {
		e.q[i] += dt * e.k1[i]
	}
	return finishStep(sys, s, drive, e.q, e.u, t+dt)
}

type RK4 struct {
	q0, q, u       []float64
	k1, k2, k3, k4 []float64
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(s *multibody.State) error {
	if len(r.q0) != s.NumQ() || len(r.u) != s.NumU() {
		n := s.NumQ()
		r.q0 = make([]float64, n)
		r.q = make([]float64, n)
		r.u = make([]float64, s.NumU())
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
	}
	q, err := s.Q()
	if err != nil {
		return err
	}
	u, err := s.U()
	if err != nil {
		return err
	}
	copy(r.q0, q)
	copy(r.u, u)
	return nil
}

func (r *RK4) Step(sys *multibody.System, s *multibody.State, drive Drive, t, dt float64) error {
	if err := r.ensureScratch(s); err != nil {
		return err
	}
	if err := qdotAt(sys, s, drive, r.q0, r.u, t, r.k1); err != nil {
		return err
	}
	for i := range r.q {
		r.q[i] = r.q0[i] + dt*0.5*r.k1[i]
	}
	if err := qdotAt(sys, s, drive, r.q, r.u, t+dt*0.5, r.k2); err != nil {
		return err
	}
	for i := range r.q {
		r.q[i] = r.q0[i] + dt*0.5*r.k2[i]
	}
	if err := qdotAt(sys, s, drive, r.q, r.u, t+dt*0.5, r.k3); err != nil {
		return err
	}
	for i := range r.q {
		r.q[i] = r.q0[i] + dt*r.k3[i]
	}
	if err := qdotAt(sys, s, drive, r.q, r.u, t+dt, r.k4); err != nil {
		return err
	}
	dt6 := dt / 6.0
	for i := range r.q {
		r.q[i] = r.q0[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return finishStep(sys, s, drive, r.q, r.u, t+dt)
}

// finishStep installs the advanced coordinates and the drive's speeds at
// the new time, realized through velocity.
func finishStep(sys *multibody.System, s *multibody.State, drive Drive, q, u []float64, t float64) error {
	if err := s.SetQ(q); err != nil {
		return err
	}
	drive.Apply(t, u)
	if err := s.SetU(u); err != nil {
		return err
	}
	return sys.Realize(s, stage.Velocity)
}
