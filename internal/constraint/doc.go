// Package constraint turns geometric restrictions on a multibody tree into
// the ingredients a multiplier solver consumes:
//
//   - [Set]: a collection of constraints over one tree, registered as a
//     system component so topology realization resolves each constraint's
//     ancestor body and participating mobilities
//   - built-in kinds: Rod, Ball, Weld, PointInPlane, ConstantAngle,
//     ConstantOrientation, dispatched on a closed tag
//   - [CustomConstraint]: the open extension point for user-defined
//     equations
//
// Each constraint produces position/velocity/acceleration error vectors,
// the Jacobians P, V, A of those errors with respect to the generalized
// speeds (with exact transposed forms), and the mapping from Lagrange
// multipliers back to body and mobility forces. Jacobian columns come from
// re-running the velocity errors against unit-speed kinematic sweeps, so
// they are exact rather than finite-difference approximations, and they
// are nonzero only in the participating mobilities between the ancestor
// and the constrained bodies.
//
// The package computes nothing during the kinematic stages; every
// evaluation is an operator over a state the caller has realized far
// enough, and fails with the tree's stage errors otherwise.
package constraint
