package multibody

import (
	"math"
	"testing"

	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

func TestGimbalQDotConsistentWithAngularVelocity(t *testing.T) {
	mob := GimbalMobilizer{}
	q := []float64{0.3, 0.5, -0.4}
	u := []float64{0.9, -0.2, 0.6}

	qdot := make([]float64, 3)
	mob.QDot(q, u, qdot)

	// Rdot*R^T must be the skew matrix of the angular velocity in F.
	const h = 1e-7
	q2 := []float64{q[0] + h*qdot[0], q[1] + h*qdot[1], q[2] + h*qdot[2]}
	r1 := mob.Transform(q).R.Mat()
	r2 := mob.Transform(q2).R.Mat()

	var rdot spatial.Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rdot[i][j] = (r2[i][j] - r1[i][j]) / h
		}
	}
	skew := rdot.Mul(r1.Transpose())
	wfd := spatial.Vec3{skew[2][1], skew[0][2], skew[1][0]}

	for i := 0; i < 3; i++ {
		if math.Abs(wfd[i]-u[i]) > 1e-5 {
			t.Errorf("angular velocity from qdot: fd %v, want %v", wfd, u)
			return
		}
	}
}

func TestGimbalQDotAtLockStaysFinite(t *testing.T) {
	mob := GimbalMobilizer{}
	q := []float64{0.2, math.Pi / 2, -0.1}
	u := []float64{1, 1, 1}
	qdot := make([]float64, 3)
	mob.QDot(q, u, qdot)
	for i, v := range qdot {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("qdot[%d] not finite at gimbal lock: %v", i, qdot)
		}
	}
	if qdot[2] != 0 {
		t.Errorf("locked rate should be pinned to zero, got %v", qdot[2])
	}
}

func TestFitTransformRoundTrips(t *testing.T) {
	cases := []struct {
		name string
		mob  Mobilizer
		q    []float64
	}{
		{"pin", PinMobilizer{}, []float64{0.7}},
		{"pin negative", PinMobilizer{}, []float64{-2.1}},
		{"slider", SliderMobilizer{}, []float64{-1.4}},
		{"cartesian", CartesianMobilizer{}, []float64{0.3, -0.8, 2.2}},
		{"gimbal", GimbalMobilizer{}, []float64{0.3, 0.5, -0.4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := tc.mob.Transform(tc.q)
			got := make([]float64, tc.mob.NumQ())
			tc.mob.FitTransform(x, got)
			for i := range tc.q {
				if math.Abs(got[i]-tc.q[i]) > tol {
					t.Errorf("q[%d]: got %v, want %v", i, got[i], tc.q[i])
				}
			}
		})
	}
}

func TestFitVelocityRoundTrips(t *testing.T) {
	cases := []struct {
		name string
		mob  Mobilizer
		q    []float64
		u    []float64
	}{
		{"pin", PinMobilizer{}, []float64{0.7}, []float64{1.3}},
		{"slider", SliderMobilizer{}, []float64{-1.4}, []float64{-0.2}},
		{"cartesian", CartesianMobilizer{}, []float64{0.3, -0.8, 2.2}, []float64{1, 2, 3}},
		{"gimbal", GimbalMobilizer{}, []float64{0.3, 0.5, -0.4}, []float64{0.9, -0.2, 0.6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.mob.Velocity(tc.q, tc.u)
			got := make([]float64, tc.mob.NumU())
			tc.mob.FitVelocity(tc.q, v, got)
			for i := range tc.u {
				if math.Abs(got[i]-tc.u[i]) > tol {
					t.Errorf("u[%d]: got %v, want %v", i, got[i], tc.u[i])
				}
			}
		})
	}
}

func TestWeldCarriesNoMobility(t *testing.T) {
	sys := NewSystem()
	a, err := sys.AddBody(Ground, "bracket", spatial.PointMass(2),
		spatial.TranslationTransform(spatial.Vec3{0, 2, 0}),
		spatial.IdentityTransform(), WeldMobilizer{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := sys.RealizeTopology()
	if err != nil {
		t.Fatal(err)
	}
	q, err := s.Q()
	if err != nil {
		t.Fatal(err)
	}
	if len(q) != 0 {
		t.Fatalf("weld-only system should have nq 0, got %d", len(q))
	}
	if err := sys.Realize(s, stage.Position); err != nil {
		t.Fatal(err)
	}
	p, err := sys.Body(a).OriginLocation(s)
	if err != nil {
		t.Fatal(err)
	}
	close3(t, p, spatial.Vec3{0, 2, 0}, "welded origin")
}
