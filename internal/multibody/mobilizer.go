package multibody

import "github.com/san-kum/kinetree/internal/spatial"

// Mobilizer is the joint model connecting a body to its parent. It maps the
// body's own slice of generalized coordinates q and speeds u to the
// cross-mobilizer transform X_FM (outboard frame M in inboard frame F) and
// its time derivatives.
//
// Contract:
//   - Transform depends only on q.
//   - Velocity is exactly linear in u for fixed q; its result is the
//     spatial velocity of M in F, expressed in F.
//   - Acceleration is exactly linear in udot for fixed (q, u), carrying any
//     internal Coriolis terms in the u-dependent remainder.
//   - QDot maps (q, u) to the time derivatives of q.
//
// All slices have the mobilizer's own lengths (NumQ or NumU); callers pass
// subslices of the system-wide vectors.
type Mobilizer interface {
	Name() string
	NumQ() int
	NumU() int

	Transform(q []float64) spatial.Transform
	Velocity(q, u []float64) spatial.SpatialVec
	Acceleration(q, u, udot []float64) spatial.SpatialVec
	QDot(q, u []float64, qdot []float64)

	// FitTransform chooses q to reproduce the given X_FM as well as the
	// mobilizer can; FitVelocity chooses u to reproduce V_FM given q.
	// Unrepresentable parts are ignored, as for a slider asked to rotate.
	FitTransform(x spatial.Transform, q []float64)
	FitVelocity(q []float64, v spatial.SpatialVec, u []float64)
}
