package multibody

import (
	"math"

	"github.com/san-kum/kinetree/internal/spatial"
)

// WeldMobilizer rigidly attaches a body to its parent: zero mobilities.
type WeldMobilizer struct{}

func (WeldMobilizer) Name() string { return "weld" }
func (WeldMobilizer) NumQ() int    { return 0 }
func (WeldMobilizer) NumU() int    { return 0 }

func (WeldMobilizer) Transform(q []float64) spatial.Transform { return spatial.IdentityTransform() }
func (WeldMobilizer) Velocity(q, u []float64) spatial.SpatialVec {
	return spatial.SpatialVec{}
}
func (WeldMobilizer) Acceleration(q, u, udot []float64) spatial.SpatialVec {
	return spatial.SpatialVec{}
}
func (WeldMobilizer) QDot(q, u, qdot []float64) {}

func (WeldMobilizer) FitTransform(x spatial.Transform, q []float64)                {}
func (WeldMobilizer) FitVelocity(q []float64, v spatial.SpatialVec, u []float64)   {}

// PinMobilizer rotates about the common z axis of F and M: one coordinate
// (the angle) and one speed (its rate).
type PinMobilizer struct{}

func (PinMobilizer) Name() string { return "pin" }
func (PinMobilizer) NumQ() int    { return 1 }
func (PinMobilizer) NumU() int    { return 1 }

func (PinMobilizer) Transform(q []float64) spatial.Transform {
	return spatial.NewTransform(spatial.RotationAboutZ(q[0]), spatial.Vec3{})
}

func (PinMobilizer) Velocity(q, u []float64) spatial.SpatialVec {
	return spatial.SpatialVec{W: spatial.Vec3{0, 0, u[0]}}
}

func (PinMobilizer) Acceleration(q, u, udot []float64) spatial.SpatialVec {
	return spatial.SpatialVec{W: spatial.Vec3{0, 0, udot[0]}}
}

func (PinMobilizer) QDot(q, u, qdot []float64) { qdot[0] = u[0] }

func (PinMobilizer) FitTransform(x spatial.Transform, q []float64) {
	// project onto a z rotation
	m := x.R.Mat()
	q[0] = math.Atan2(m[1][0], m[0][0])
}

func (PinMobilizer) FitVelocity(q []float64, v spatial.SpatialVec, u []float64) {
	u[0] = v.W[2]
}

// SliderMobilizer translates along the common x axis of F and M.
type SliderMobilizer struct{}

func (SliderMobilizer) Name() string { return "slider" }
func (SliderMobilizer) NumQ() int    { return 1 }
func (SliderMobilizer) NumU() int    { return 1 }

func (SliderMobilizer) Transform(q []float64) spatial.Transform {
	return spatial.TranslationTransform(spatial.Vec3{q[0], 0, 0})
}

func (SliderMobilizer) Velocity(q, u []float64) spatial.SpatialVec {
	return spatial.SpatialVec{V: spatial.Vec3{u[0], 0, 0}}
}

func (SliderMobilizer) Acceleration(q, u, udot []float64) spatial.SpatialVec {
	return spatial.SpatialVec{V: spatial.Vec3{udot[0], 0, 0}}
}

func (SliderMobilizer) QDot(q, u, qdot []float64) { qdot[0] = u[0] }

func (SliderMobilizer) FitTransform(x spatial.Transform, q []float64) { q[0] = x.P[0] }

func (SliderMobilizer) FitVelocity(q []float64, v spatial.SpatialVec, u []float64) {
	u[0] = v.V[0]
}

// CartesianMobilizer translates freely in three dimensions with no
// rotation; q and u are the translation and its rate, expressed in F.
type CartesianMobilizer struct{}

func (CartesianMobilizer) Name() string { return "cartesian" }
func (CartesianMobilizer) NumQ() int    { return 3 }
func (CartesianMobilizer) NumU() int    { return 3 }

func (CartesianMobilizer) Transform(q []float64) spatial.Transform {
	return spatial.TranslationTransform(spatial.Vec3{q[0], q[1], q[2]})
}

func (CartesianMobilizer) Velocity(q, u []float64) spatial.SpatialVec {
	return spatial.SpatialVec{V: spatial.Vec3{u[0], u[1], u[2]}}
}

func (CartesianMobilizer) Acceleration(q, u, udot []float64) spatial.SpatialVec {
	return spatial.SpatialVec{V: spatial.Vec3{udot[0], udot[1], udot[2]}}
}

func (CartesianMobilizer) QDot(q, u, qdot []float64) { copy(qdot, u) }

func (CartesianMobilizer) FitTransform(x spatial.Transform, q []float64) {
	q[0], q[1], q[2] = x.P[0], x.P[1], x.P[2]
}

func (CartesianMobilizer) FitVelocity(q []float64, v spatial.SpatialVec, u []float64) {
	u[0], u[1], u[2] = v.V[0], v.V[1], v.V[2]
}

// GimbalMobilizer rotates freely using a body-fixed x-y-z Euler sequence
// for q. The speeds u are the angular velocity of M in F, expressed in F,
// so Velocity and Acceleration are trivial while QDot runs the angular
// velocity through the inverse Euler-rate matrix. That matrix is singular
// at the gimbal-lock angle q1 = +-pi/2; QDot pins the degenerate rate to
// zero there rather than dividing by zero.
type GimbalMobilizer struct{}

func (GimbalMobilizer) Name() string { return "gimbal" }
func (GimbalMobilizer) NumQ() int    { return 3 }
func (GimbalMobilizer) NumU() int    { return 3 }

func (GimbalMobilizer) Transform(q []float64) spatial.Transform {
	return spatial.NewTransform(spatial.RotationFromBodyXYZ(spatial.Vec3{q[0], q[1], q[2]}), spatial.Vec3{})
}

func (GimbalMobilizer) Velocity(q, u []float64) spatial.SpatialVec {
	return spatial.SpatialVec{W: spatial.Vec3{u[0], u[1], u[2]}}
}

func (GimbalMobilizer) Acceleration(q, u, udot []float64) spatial.SpatialVec {
	return spatial.SpatialVec{W: spatial.Vec3{udot[0], udot[1], udot[2]}}
}

func (GimbalMobilizer) QDot(q, u, qdot []float64) {
	s0, c0 := math.Sin(q[0]), math.Cos(q[0])
	s1, c1 := math.Sin(q[1]), math.Cos(q[1])

	// w_F = E(q)*qdot with columns x, Rx*y, Rx*Ry*z; invert analytically.
	qdot[1] = c0*u[1] + s0*u[2]
	if math.Abs(c1) < 1e-12 {
		qdot[2] = 0
	} else {
		qdot[2] = (c0*u[2] - s0*u[1]) / c1
	}
	qdot[0] = u[0] - s1*qdot[2]
}

func (GimbalMobilizer) FitTransform(x spatial.Transform, q []float64) {
	e := x.R.ToBodyXYZ()
	q[0], q[1], q[2] = e[0], e[1], e[2]
}

func (GimbalMobilizer) FitVelocity(q []float64, v spatial.SpatialVec, u []float64) {
	u[0], u[1], u[2] = v.W[0], v.W[1], v.W[2]
}
