package motion

import (
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

func pinScene(t *testing.T) (*multibody.System, *multibody.State) {
	t.Helper()
	sys := multibody.NewSystem()
	_, err := sys.AddBody(multibody.Ground, "bob", spatial.PointMass(1),
		spatial.IdentityTransform(), spatial.TranslationTransform(spatial.Vec3{0, 1, 0}), multibody.PinMobilizer{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	return sys, s
}

func TestDriveFromConfig(t *testing.T) {
	d, err := DriveFromConfig(config.DriveConfig{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(Coast); !ok {
		t.Errorf("empty shape should coast, got %T", d)
	}

	d, err = DriveFromConfig(config.DriveConfig{Shape: "sine", Mobility: 1, Amplitude: 2, Frequency: 0.25}, 3)
	if err != nil {
		t.Fatal(err)
	}
	u := []float64{9, 9, 9}
	d.Apply(1.0, u) // sin(pi/2) = 1
	if math.Abs(u[1]-2.0) > 1e-12 || u[0] != 9 || u[2] != 9 {
		t.Errorf("sine drive applied wrong: %v", u)
	}

	if _, err := DriveFromConfig(config.DriveConfig{Shape: "constant", Mobility: 5}, 3); err == nil {
		t.Error("expected range error")
	}
	if _, err := DriveFromConfig(config.DriveConfig{Shape: "square"}, 3); err == nil {
		t.Error("expected unknown shape error")
	}
}

func TestEulerConstantSpeedPinIsExact(t *testing.T) {
	sys, s := pinScene(t)
	drive := Constant{Mobility: 0, Speed: 1.5}
	integ := NewEuler()

	dt, steps := 0.01, 200
	for i := 0; i < steps; i++ {
		if err := integ.Step(sys, s, drive, float64(i)*dt, dt); err != nil {
			t.Fatal(err)
		}
	}
	q, err := s.Q()
	if err != nil {
		t.Fatal(err)
	}
	want := 1.5 * dt * float64(steps)
	if math.Abs(q[0]-want) > 1e-12 {
		t.Errorf("constant-rate pin: got %v, want %v", q[0], want)
	}
}

func TestRK4SineDriveMatchesClosedForm(t *testing.T) {
	sys, s := pinScene(t)
	drive := Sine{Mobility: 0, Amplitude: 2.0, Frequency: 0.5}
	integ := NewRK4()

	dt, steps := 0.01, 100
	for i := 0; i < steps; i++ {
		if err := integ.Step(sys, s, drive, float64(i)*dt, dt); err != nil {
			t.Fatal(err)
		}
	}
	q, err := s.Q()
	if err != nil {
		t.Fatal(err)
	}
	// integral of A*sin(2*pi*f*t)
	tf := dt * float64(steps)
	w := 2 * math.Pi * 0.5
	want := 2.0 / w * (1 - math.Cos(w*tf))
	if math.Abs(q[0]-want) > 1e-8 {
		t.Errorf("sine-driven pin: got %v, want %v", q[0], want)
	}
}

// A gimbal at constant generalized speeds has genuinely nonlinear qdot; the
// two integrators must converge to the same trajectory.
func TestRK4GimbalMatchesFineEuler(t *testing.T) {
	build := func() (*multibody.System, *multibody.State) {
		sys := multibody.NewSystem()
		if _, err := sys.AddBody(multibody.Ground, "rotor", spatial.PointMass(1),
			spatial.IdentityTransform(), spatial.IdentityTransform(), multibody.GimbalMobilizer{}); err != nil {
			t.Fatal(err)
		}
		s, err := sys.RealizeTopology()
		if err != nil {
			t.Fatal(err)
		}
		if err := s.SetU([]float64{0.7, 0.4, -0.3}); err != nil {
			t.Fatal(err)
		}
		return sys, s
	}

	sysA, sA := build()
	rk4 := NewRK4()
	for i := 0; i < 100; i++ {
		if err := rk4.Step(sysA, sA, Coast{}, float64(i)*0.01, 0.01); err != nil {
			t.Fatal(err)
		}
	}

	sysB, sB := build()
	euler := NewEuler()
	for i := 0; i < 100000; i++ {
		if err := euler.Step(sysB, sB, Coast{}, float64(i)*1e-5, 1e-5); err != nil {
			t.Fatal(err)
		}
	}

	qa, err := sA.Q()
	if err != nil {
		t.Fatal(err)
	}
	qb, err := sB.Q()
	if err != nil {
		t.Fatal(err)
	}
	for i := range qa {
		if math.Abs(qa[i]-qb[i]) > 1e-3 {
			t.Errorf("q[%d]: rk4 %v vs fine euler %v", i, qa[i], qb[i])
		}
	}
}

func TestIntegratorFromConfig(t *testing.T) {
	for name, want := range map[string]string{"": "rk4", "rk4": "rk4", "euler": "euler"} {
		integ, err := IntegratorFromConfig(name)
		if err != nil {
			t.Fatal(err)
		}
		if integ.Name() != want {
			t.Errorf("%q: got %s, want %s", name, integ.Name(), want)
		}
	}
	if _, err := IntegratorFromConfig("verlet"); err == nil {
		t.Error("expected unknown integrator error")
	}
}
