package multibody

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/spatial"
)

// Operators compute quantities between two arbitrary bodies A and B ("this"
// body is B). Each special-cases A == B, A == Ground, and B == Ground, but
// the result always agrees with the general composed form
// X_AB = inv(X_GA) * X_GB.

// LocatePointOnGround maps a station of B (measured from OB, expressed in
// B) to its Ground-frame location; Position stage.
func (b *Body) LocatePointOnGround(s *State, locationOnB spatial.Vec3) (spatial.Vec3, error) {
	x, err := b.Transform(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.Apply(locationOnB), nil
}

// LocateGroundPointOnBody maps a Ground-frame point into B's frame;
// Position stage.
func (b *Body) LocateGroundPointOnBody(s *State, locationOnG spatial.Vec3) (spatial.Vec3, error) {
	x, err := b.Transform(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.InvApply(locationOnG), nil
}

// ExpressVectorInGround reexpresses a B-frame vector in Ground; Position
// stage.
func (b *Body) ExpressVectorInGround(s *State, vectorInB spatial.Vec3) (spatial.Vec3, error) {
	x, err := b.Transform(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.R.Apply(vectorInB), nil
}

// ExpressGroundVectorInBody reexpresses a Ground-frame vector in B;
// Position stage.
func (b *Body) ExpressGroundVectorInBody(s *State, vectorInG spatial.Vec3) (spatial.Vec3, error) {
	x, err := b.Transform(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.R.InvApply(vectorInG), nil
}

// TransformFromBody returns X_AB, body B's frame in body A's frame. When A
// and B are the same body the identity is returned without touching the
// state.
func (b *Body) TransformFromBody(s *State, a *Body) (spatial.Transform, error) {
	if b.IsSame(a) {
		return spatial.IdentityTransform(), nil
	}
	if a.IsGround() {
		return b.Transform(s)
	}
	xGA, err := a.Transform(s)
	if err != nil {
		return spatial.Transform{}, err
	}
	if b.IsGround() {
		return xGA.Inv(), nil
	}
	xGB, err := b.Transform(s)
	if err != nil {
		return spatial.Transform{}, err
	}
	return xGA.Inv().Mul(xGB), nil
}

// RotationFromBody returns R_AB.
func (b *Body) RotationFromBody(s *State, a *Body) (spatial.Rotation, error) {
	x, err := b.TransformFromBody(s, a)
	return x.R, err
}

// PointLocationInBody maps a station of B to a location measured from A's
// origin and expressed in A.
func (b *Body) PointLocationInBody(s *State, locationOnB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	if b.IsSame(a) {
		return locationOnB, nil
	}
	x, err := b.TransformFromBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.Apply(locationOnB), nil
}

// VectorInBody reexpresses a B-frame vector in A.
func (b *Body) VectorInBody(s *State, vectorInB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	if b.IsSame(a) {
		return vectorInB, nil
	}
	r, err := b.RotationFromBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return r.Apply(vectorInB), nil
}

// FixedPointVelocityInGround returns the Ground-frame velocity of a station
// fixed on B; Velocity stage.
func (b *Body) FixedPointVelocityInGround(s *State, stationOnB spatial.Vec3) (spatial.Vec3, error) {
	v, err := b.Velocity(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	r, err := b.ExpressVectorInGround(s, stationOnB)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return v.V.Add(v.W.Cross(r)), nil
}

// FixedPointAccelerationInGround returns the Ground-frame acceleration of a
// station fixed on B, including the centripetal term; Acceleration stage.
func (b *Body) FixedPointAccelerationInGround(s *State, stationOnB spatial.Vec3) (spatial.Vec3, error) {
	a, err := b.Acceleration(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	v, err := b.Velocity(s)
	if err != nil {
		return spatial.Vec3{}, err
	}
	r, err := b.ExpressVectorInGround(s, stationOnB)
	if err != nil {
		return spatial.Vec3{}, err
	}
	wXr := v.W.Cross(r)
	return a.V.Add(a.W.Cross(r)).Add(v.W.Cross(wXr)), nil
}

// SpatialVelocityInBody returns the angular and linear velocity of B's
// frame in A's frame, expressed in A.
func (b *Body) SpatialVelocityInBody(s *State, a *Body) (spatial.SpatialVec, error) {
	vGB, err := b.Velocity(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	if a.IsGround() {
		return vGB, nil
	}
	vGA, err := a.Velocity(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	xGB, err := b.Transform(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	xGA, err := a.Transform(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}

	wABG := vGB.W.Sub(vGA.W)
	pAB := xGB.P.Sub(xGA.P)
	pABdot := vGB.V.Sub(vGA.V)
	vABG := pABdot.Sub(vGA.W.Cross(pAB)) // derivative taken in A, expressed in G

	return spatial.SpatialVec{W: wABG, V: vABG}.Reexpress(xGA.R.Inv()), nil
}

// AngularVelocityInBody returns w_AB expressed in A.
func (b *Body) AngularVelocityInBody(s *State, a *Body) (spatial.Vec3, error) {
	v, err := b.SpatialVelocityInBody(s, a)
	return v.W, err
}

// FixedPointVelocityInBody returns the velocity of a station of B relative
// to body A, expressed in A.
func (b *Body) FixedPointVelocityInBody(s *State, stationOnB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	rAB, err := b.RotationFromBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	vAB, err := b.SpatialVelocityInBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	p := rAB.Apply(stationOnB)
	return vAB.V.Add(vAB.W.Cross(p)), nil
}

// MovingPointVelocityInBody would account for a station moving within B;
// the composition algebra is not wired up for moving stations, so this
// reports ErrNotImplemented rather than a plausible wrong answer.
func (b *Body) MovingPointVelocityInBody(s *State, locationOnB, velocityOnB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	return spatial.Vec3{}, fmt.Errorf("%w: MovingPointVelocityInBody", ErrNotImplemented)
}

// SpatialAccelerationInBody returns the angular and linear acceleration of
// B's frame in A's frame, expressed in A; Acceleration stage.
func (b *Body) SpatialAccelerationInBody(s *State, a *Body) (spatial.SpatialVec, error) {
	aGB, err := b.Acceleration(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	if a.IsGround() {
		return aGB, nil
	}
	xGB, err := b.Transform(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	xGA, err := a.Transform(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	vGB, err := b.Velocity(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	vGA, err := a.Velocity(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}
	aGA, err := a.Acceleration(s)
	if err != nil {
		return spatial.SpatialVec{}, err
	}

	pAB := xGB.P.Sub(xGA.P)
	pABdot := vGB.V.Sub(vGA.V)
	pABddot := aGB.V.Sub(aGA.V)

	wABG := vGB.W.Sub(vGA.W)
	vABG := pABdot.Sub(vGA.W.Cross(pAB))

	wABGdot := aGB.W.Sub(aGA.W)
	vABGdot := pABddot.Sub(aGA.W.Cross(pAB).Add(vGA.W.Cross(pABdot)))

	// change the derivative frame from G to A
	bAB := wABGdot.Sub(vGA.W.Cross(wABG))
	aAB := vABGdot.Sub(vGA.W.Cross(vABG))

	return spatial.SpatialVec{W: bAB, V: aAB}.Reexpress(xGA.R.Inv()), nil
}

// FixedPointAccelerationInBody returns the acceleration of a station of B
// relative to body A, expressed in A.
func (b *Body) FixedPointAccelerationInBody(s *State, stationOnB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	rAB, err := b.RotationFromBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	wAB, err := b.AngularVelocityInBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	aAB, err := b.SpatialAccelerationInBody(s, a)
	if err != nil {
		return spatial.Vec3{}, err
	}
	p := rAB.Apply(stationOnB)
	return aAB.V.Add(aAB.W.Cross(p)).Add(wAB.Cross(wAB.Cross(p))), nil
}

// MovingPointAccelerationInBody reports ErrNotImplemented, matching
// MovingPointVelocityInBody.
func (b *Body) MovingPointAccelerationInBody(s *State, locationOnB, velocityOnB, accelerationOnB spatial.Vec3, a *Body) (spatial.Vec3, error) {
	return spatial.Vec3{}, fmt.Errorf("%w: MovingPointAccelerationInBody", ErrNotImplemented)
}

// PointToPointDistance returns the separation between a station of B and a
// station of A; Position stage (no state needed when A == B).
func (b *Body) PointToPointDistance(s *State, locationOnB spatial.Vec3, a *Body, locationOnA spatial.Vec3) (float64, error) {
	if b.IsSame(a) {
		return locationOnA.Sub(locationOnB).Norm(), nil
	}
	pB, err := b.LocatePointOnGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	pA, err := a.LocatePointOnGround(s, locationOnA)
	if err != nil {
		return 0, err
	}
	return pA.Sub(pB).Norm(), nil
}

// FixedPointToPointDistanceRate returns d/dt of the separation between two
// fixed stations. When the points coincide the rate of change of distance
// is their relative speed; otherwise it is the speed along the separation
// direction. Velocity stage.
func (b *Body) FixedPointToPointDistanceRate(s *State, locationOnB spatial.Vec3, a *Body, locationOnA spatial.Vec3) (float64, error) {
	if b.IsSame(a) {
		return 0, nil
	}
	pB, err := b.LocatePointOnGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	pA, err := a.LocatePointOnGround(s, locationOnA)
	if err != nil {
		return 0, err
	}
	vB, err := b.FixedPointVelocityInGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	vA, err := a.FixedPointVelocityInGround(s, locationOnA)
	if err != nil {
		return 0, err
	}
	r := pA.Sub(pB)
	v := vA.Sub(vB)
	d := r.Norm()
	if d == 0 {
		return v.Norm(), nil
	}
	return v.Dot(r.Scale(1 / d)), nil
}

// FixedPointToPointDistance2ndRate returns d^2/dt^2 of the separation
// between two fixed stations. It is the time derivative of
// FixedPointToPointDistanceRate and follows the same branches: at
// coincidence it is d/dt of the relative speed, which itself branches on
// zero relative velocity. Acceleration stage.
func (b *Body) FixedPointToPointDistance2ndRate(s *State, locationOnB spatial.Vec3, a *Body, locationOnA spatial.Vec3) (float64, error) {
	if b.IsSame(a) {
		return 0, nil
	}
	pB, err := b.LocatePointOnGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	pA, err := a.LocatePointOnGround(s, locationOnA)
	if err != nil {
		return 0, err
	}
	vB, err := b.FixedPointVelocityInGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	vA, err := a.FixedPointVelocityInGround(s, locationOnA)
	if err != nil {
		return 0, err
	}
	aB, err := b.FixedPointAccelerationInGround(s, locationOnB)
	if err != nil {
		return 0, err
	}
	aA, err := a.FixedPointAccelerationInGround(s, locationOnA)
	if err != nil {
		return 0, err
	}

	r := pA.Sub(pB)
	v := vA.Sub(vB)
	acc := aA.Sub(aB)
	d := r.Norm()

	if d == 0 {
		speed := v.Norm()
		if speed == 0 {
			return acc.Norm(), nil
		}
		return acc.Dot(v.Scale(1 / speed)), nil
	}

	u := r.Scale(1 / d)
	vp := v.Sub(u.Scale(v.Dot(u)))
	return acc.Dot(u) + vp.Dot(v)/d, nil
}

// MovingPointToPointDistanceRate and its second derivative are declared
// for parity with the fixed-station utilities but not implemented.
func (b *Body) MovingPointToPointDistanceRate(s *State, locationOnB, velocityOnB spatial.Vec3, a *Body, locationOnA, velocityOnA spatial.Vec3) (float64, error) {
	return 0, fmt.Errorf("%w: MovingPointToPointDistanceRate", ErrNotImplemented)
}

func (b *Body) MovingPointToPointDistance2ndRate(s *State, locationOnB, velocityOnB, accelerationOnB spatial.Vec3, a *Body, locationOnA, velocityOnA, accelerationOnA spatial.Vec3) (float64, error) {
	return 0, fmt.Errorf("%w: MovingPointToPointDistance2ndRate", ErrNotImplemented)
}
