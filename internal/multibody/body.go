package multibody

import (
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// Body is one node of the multibody tree. It owns its default mass
// properties, the inboard mobilizer frame F fixed on the parent (X_PF), the
// outboard mobilizer frame M fixed on itself (X_BM), and the mobilizer
// connecting M to F. Bodies are created during topology construction and
// immutable in count and connectivity afterwards.
type Body struct {
	sys    *System
	index  BodyIndex
	parent BodyIndex
	name   string

	mass     spatial.MassProperties
	inboard  spatial.Transform // X_PF
	outboard spatial.Transform // X_BM

	mob Mobilizer

	// assigned at topology realization
	qStart, uStart int
	level          int
	children       []BodyIndex
}

func (b *Body) Index() BodyIndex  { return b.index }
func (b *Body) Parent() BodyIndex { return b.parent }
func (b *Body) Name() string      { return b.name }
func (b *Body) IsGround() bool    { return b.index == Ground }

func (b *Body) IsSame(other *Body) bool {
	return b.sys == other.sys && b.index == other.index
}

func (b *Body) Mobilizer() Mobilizer { return b.mob }

// DefaultMassProperties returns the construction-time mass properties;
// the instance-stage values live in the State.
func (b *Body) DefaultMassProperties() spatial.MassProperties { return b.mass }

// InboardFrame returns X_PF, the default fixed frame on the parent.
func (b *Body) InboardFrame() spatial.Transform { return b.inboard }

// OutboardFrame returns X_BM, the default fixed frame on this body.
func (b *Body) OutboardFrame() spatial.Transform { return b.outboard }

// QStart, NumQ, UStart, NumU describe this body's contiguous slice of the
// system-wide q and u vectors. Valid after topology realization.
func (b *Body) QStart() int { return b.qStart }
func (b *Body) UStart() int { return b.uStart }
func (b *Body) NumQ() int {
	if b.mob == nil {
		return 0
	}
	return b.mob.NumQ()
}
func (b *Body) NumU() int {
	if b.mob == nil {
		return 0
	}
	return b.mob.NumU()
}

// qSlice and uSlice view this body's partitions of state vectors.
func (b *Body) qSlice(q []float64) []float64 { return q[b.qStart : b.qStart+b.NumQ()] }
func (b *Body) uSlice(u []float64) []float64 { return u[b.uStart : b.uStart+b.NumU()] }

// FromQPartition selects this body's coordinate number `which` from a
// q-like vector (one with the system-wide q length).
func (b *Body) FromQPartition(qlike []float64, which int) float64 {
	return qlike[b.qStart+which]
}

// FromUPartition selects this body's speed number `which` from a u-like
// vector.
func (b *Body) FromUPartition(ulike []float64, which int) float64 {
	return ulike[b.uStart+which]
}

// MassProperties returns this body's instance-stage mass properties.
func (b *Body) MassProperties(s *State) (spatial.MassProperties, error) {
	if err := s.checkStage(stage.Instance, "MassProperties"); err != nil {
		return spatial.MassProperties{}, err
	}
	return b.sys.instanceMass(s, b.index), nil
}

// Transform returns X_GB, this body's frame in Ground; Position stage.
func (b *Body) Transform(s *State) (spatial.Transform, error) {
	if err := s.checkStage(stage.Position, "Transform"); err != nil {
		return spatial.Transform{}, err
	}
	return s.xGB[b.index], nil
}

// Rotation returns R_GB; Position stage.
func (b *Body) Rotation(s *State) (spatial.Rotation, error) {
	x, err := b.Transform(s)
	return x.R, err
}

// OriginLocation returns this body's origin measured from the Ground
// origin, expressed in Ground; Position stage.
func (b *Body) OriginLocation(s *State) (spatial.Vec3, error) {
	x, err := b.Transform(s)
	return x.P, err
}

// MobilizerTransform returns X_FM across this body's own mobilizer;
// Position stage.
func (b *Body) MobilizerTransform(s *State) (spatial.Transform, error) {
	if err := s.checkStage(stage.Position, "MobilizerTransform"); err != nil {
		return spatial.Transform{}, err
	}
	return s.xFM[b.index], nil
}

// Velocity returns V_GB, the spatial velocity of this body in Ground;
// Velocity stage.
func (b *Body) Velocity(s *State) (spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Velocity, "Velocity"); err != nil {
		return spatial.SpatialVec{}, err
	}
	return s.vGB[b.index], nil
}

// AngularVelocity returns w_GB; Velocity stage.
func (b *Body) AngularVelocity(s *State) (spatial.Vec3, error) {
	v, err := b.Velocity(s)
	return v.W, err
}

// OriginVelocity returns the body origin's velocity in Ground; Velocity
// stage.
func (b *Body) OriginVelocity(s *State) (spatial.Vec3, error) {
	v, err := b.Velocity(s)
	return v.V, err
}

// Acceleration returns A_GB; Acceleration stage.
func (b *Body) Acceleration(s *State) (spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Acceleration, "Acceleration"); err != nil {
		return spatial.SpatialVec{}, err
	}
	return s.aGB[b.index], nil
}

// SpatialInertiaInGround returns the body's mass properties reexpressed in
// Ground (about the body origin, unshifted); Dynamics stage.
func (b *Body) SpatialInertiaInGround(s *State) (spatial.MassProperties, error) {
	if err := s.checkStage(stage.Dynamics, "SpatialInertiaInGround"); err != nil {
		return spatial.MassProperties{}, err
	}
	return s.massG[b.index], nil
}

// MomentumInGround returns the body's spatial momentum about its origin,
// expressed in Ground; Dynamics stage.
func (b *Body) MomentumInGround(s *State) (spatial.SpatialVec, error) {
	mg, err := b.SpatialInertiaInGround(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	return mg.SpatialMomentum(s.vGB[b.index]), nil
}

// SetQToFitTransform asks the mobilizer to choose its coordinates so that
// X_FM approximates the given transform; unrepresentable parts are
// ignored. Valid once the state exists (Topology stage).
func (b *Body) SetQToFitTransform(s *State, x spatial.Transform) error {
	if err := s.checkStage(stage.Topology, "SetQToFitTransform"); err != nil {
		return err
	}
	if b.NumQ() == 0 {
		return nil
	}
	b.mob.FitTransform(x, b.qSlice(s.q))
	s.invalidate(stage.Position)
	return nil
}

// SetUToFitVelocity asks the mobilizer to choose its speeds so that V_FM
// approximates the given spatial velocity, given the current q.
func (b *Body) SetUToFitVelocity(s *State, v spatial.SpatialVec) error {
	if err := s.checkStage(stage.Topology, "SetUToFitVelocity"); err != nil {
		return err
	}
	if b.NumU() == 0 {
		return nil
	}
	b.mob.FitVelocity(b.qSlice(s.q), v, b.uSlice(s.u))
	s.invalidate(stage.Velocity)
	return nil
}
