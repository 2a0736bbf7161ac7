package multibody

import (
	"github.com/san-kum/kinetree/internal/spatial"
)

// Force accumulation utilities. All of these add into caller-owned
// accumulators, so accumulators must be zeroed before a set of calls.

// ApplyMobilityForce adds a scalar generalized force into the slot of this
// body's mobility number `which` within a u-like accumulator.
func (b *Body) ApplyMobilityForce(which int, f float64, mobilityForces []float64) {
	mobilityForces[b.uStart+which] += f
}

// ApplyBodyForce adds a spatial force (torque about the body origin plus a
// force at the body origin, both expressed in Ground) into the per-body
// accumulator.
func (b *Body) ApplyBodyForce(spatialForceInG spatial.SpatialVec, bodyForcesInG []spatial.SpatialVec) {
	bodyForcesInG[b.index] = bodyForcesInG[b.index].Add(spatialForceInG)
}

// ApplyBodyTorque adds a pure torque expressed in Ground.
func (b *Body) ApplyBodyTorque(torqueInG spatial.Vec3, bodyForcesInG []spatial.SpatialVec) {
	bodyForcesInG[b.index] = bodyForcesInG[b.index].Add(spatial.SpatialVec{W: torqueInG})
}

// ApplyForceToBodyPoint adds a force applied at a station of this body.
// The station is given in the body frame; the force and the resulting
// accumulated spatial force are expressed in Ground. Position stage.
func (b *Body) ApplyForceToBodyPoint(s *State, pointInB, forceInG spatial.Vec3, bodyForcesInG []spatial.SpatialVec) error {
	r, err := b.ExpressVectorInGround(s, pointInB)
	if err != nil {
		return err
	}
	b.ApplyBodyForce(spatial.SpatialVec{W: r.Cross(forceInG), V: forceInG}, bodyForcesInG)
	return nil
}
