// Package spatial provides the frame algebra used by the multibody core:
//
//   - [Vec3], [Mat33]: fixed-size vector and matrix primitives
//   - [Rotation]: orthonormal rotation matrices with cheap inverse (transpose)
//   - [Transform]: rigid transforms (rotation plus translation)
//   - [SpatialVec]: paired angular/linear quantities (velocity, acceleration, force)
//   - [Inertia], [MassProperties]: rigid-body mass distribution with
//     shifting and reexpression
//
// All quantities are double precision. Spatial pairs are ordered
// (angular, linear) throughout.
//
// The package is pure math and holds no state; every operation is a value
// computation safe for concurrent use.
package spatial
