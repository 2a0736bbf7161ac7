package spatial

// Inertia is a symmetric rotational inertia matrix, taken about some point
// and expressed in some frame; which point and frame is the caller's
// bookkeeping, conventionally recorded in variable names (I_OB_B is taken
// about body origin OB, expressed in B).
type Inertia struct {
	m Mat33
}

// NewInertia builds a diagonal inertia from principal moments.
func NewInertia(xx, yy, zz float64) Inertia {
	return Inertia{Mat33{{xx, 0, 0}, {0, yy, 0}, {0, 0, zz}}}
}

// NewInertiaFromMoments builds a full symmetric inertia from moments and
// products. Products use the convention I[0][1] = -Ixy.
func NewInertiaFromMoments(xx, yy, zz, xy, xz, yz float64) Inertia {
	return Inertia{Mat33{
		{xx, -xy, -xz},
		{-xy, yy, -yz},
		{-xz, -yz, zz},
	}}
}

func InertiaFromMat33(m Mat33) Inertia { return Inertia{m} }

func (i Inertia) Mat() Mat33 { return i.m }

func (i Inertia) Add(j Inertia) Inertia { return Inertia{i.m.Add(j.m)} }
func (i Inertia) Sub(j Inertia) Inertia { return Inertia{i.m.Sub(j.m)} }

// MulVec applies the inertia to an angular velocity, yielding angular
// momentum in the same frame.
func (i Inertia) MulVec(w Vec3) Vec3 { return i.m.MulVec(w) }

// Reexpress rotates the inertia into another frame: I_A = R_AB * I_B * ~R_AB.
// The about-point is unchanged.
func (i Inertia) Reexpress(r Rotation) Inertia {
	return Inertia{r.Mat().Mul(i.m).Mul(r.Mat().Transpose())}
}

// PointMassInertia is the inertia of mass m concentrated at p, taken about
// the origin of the frame p is expressed in.
func PointMassInertia(mass float64, p Vec3) Inertia {
	d := p.NormSqr()
	shift := IdentityMat33().Scale(d).Sub(OuterProduct(p, p))
	return Inertia{shift.Scale(mass)}
}

// Shift moves the about-point of a *central* inertia (taken about the mass
// center) to a point p measured from the mass center (parallel-axis theorem).
func (i Inertia) Shift(mass float64, p Vec3) Inertia {
	return i.Add(PointMassInertia(mass, p))
}

// ShiftToCentroid is the inverse of Shift: given an inertia about a point p
// measured from the mass center, recover the central inertia.
func (i Inertia) ShiftToCentroid(mass float64, p Vec3) Inertia {
	return i.Sub(PointMassInertia(mass, p))
}

// MassProperties describes a rigid body's mass distribution: total mass,
// mass center location measured from the body origin, and inertia taken
// about the body origin, all expressed in the body frame.
type MassProperties struct {
	Mass    float64
	COM     Vec3
	Inertia Inertia
}

// NewMassProperties is the usual constructor; the inertia is about the body
// origin, not the mass center.
func NewMassProperties(mass float64, com Vec3, inertia Inertia) MassProperties {
	return MassProperties{Mass: mass, COM: com, Inertia: inertia}
}

// PointMass places all mass at the body origin with zero rotational inertia.
func PointMass(mass float64) MassProperties {
	return MassProperties{Mass: mass}
}

// CentralInertia returns the inertia about the mass center, expressed in
// the body frame.
func (mp MassProperties) CentralInertia() Inertia {
	return mp.Inertia.ShiftToCentroid(mp.Mass, mp.COM)
}

// Reexpress rotates the mass properties into another frame; the about-point
// (the body origin) does not move.
func (mp MassProperties) Reexpress(r Rotation) MassProperties {
	return MassProperties{
		Mass:    mp.Mass,
		COM:     r.Apply(mp.COM),
		Inertia: mp.Inertia.Reexpress(r),
	}
}

// ShiftOrigin remeasures the mass properties from a new origin located at p,
// where p is measured from the current origin and expressed in the body
// frame.
func (mp MassProperties) ShiftOrigin(p Vec3) MassProperties {
	newCOM := mp.COM.Sub(p)
	central := mp.CentralInertia()
	return MassProperties{
		Mass:    mp.Mass,
		COM:     newCOM,
		Inertia: central.Shift(mp.Mass, newCOM),
	}
}

// SpatialMomentum computes the (angular, linear) momentum about the body
// origin given the body's spatial velocity about the same origin, all in a
// common frame: H = I_O*w + m*(r_com x v_O), L = m*v_com.
func (mp MassProperties) SpatialMomentum(v SpatialVec) SpatialVec {
	comVel := v.V.Add(v.W.Cross(mp.COM))
	return SpatialVec{
		W: mp.Inertia.MulVec(v.W).Add(mp.COM.Cross(v.V).Scale(mp.Mass)),
		V: comVel.Scale(mp.Mass),
	}
}
