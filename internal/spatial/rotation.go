package spatial

import "math"

// Rotation is an orthonormal 3x3 matrix R_AB expressing frame B's axes in
// frame A. A vector expressed in B is reexpressed in A by R.Apply; the
// inverse rotation is the transpose.
type Rotation struct {
	m Mat33
}

func IdentityRotation() Rotation { return Rotation{IdentityMat33()} }

// RotationFromMat33 wraps m without checking orthonormality; callers own
// that invariant.
func RotationFromMat33(m Mat33) Rotation { return Rotation{m} }

func RotationAboutX(a float64) Rotation {
	s, c := math.Sin(a), math.Cos(a)
	return Rotation{Mat33{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}}
}

func RotationAboutY(a float64) Rotation {
	s, c := math.Sin(a), math.Cos(a)
	return Rotation{Mat33{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}}
}

func RotationAboutZ(a float64) Rotation {
	s, c := math.Sin(a), math.Cos(a)
	return Rotation{Mat33{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}}
}

// RotationFromBodyXYZ builds R = Rx(q0)*Ry(q1)*Rz(q2), the body-fixed
// x-y-z Euler sequence.
func RotationFromBodyXYZ(q Vec3) Rotation {
	return RotationAboutX(q[0]).Mul(RotationAboutY(q[1])).Mul(RotationAboutZ(q[2]))
}

// ToBodyXYZ recovers the body-fixed x-y-z Euler angles. The middle angle is
// reported in [-pi/2, pi/2]; at gimbal lock (|q1| = pi/2) the split between
// the first and third angles is not unique and the first is set to zero.
func (r Rotation) ToBodyXYZ() Vec3 {
	sb := r.m[0][2]
	if sb > 1 {
		sb = 1
	} else if sb < -1 {
		sb = -1
	}
	b := math.Asin(sb)
	if math.Abs(math.Abs(sb)-1) < 1e-12 {
		// gimbal lock: only the sum/difference of the outer angles matters
		return Vec3{0, b, math.Atan2(r.m[1][0], r.m[1][1])}
	}
	a := math.Atan2(-r.m[1][2], r.m[2][2])
	c := math.Atan2(-r.m[0][1], r.m[0][0])
	return Vec3{a, b, c}
}

func (r Rotation) Mul(s Rotation) Rotation { return Rotation{r.m.Mul(s.m)} }

// Inv returns the inverse rotation, which for an orthonormal matrix is the
// transpose.
func (r Rotation) Inv() Rotation { return Rotation{r.m.Transpose()} }

// Apply reexpresses v from the B frame into the A frame: R_AB * v_B.
func (r Rotation) Apply(v Vec3) Vec3 { return r.m.MulVec(v) }

// InvApply reexpresses v from the A frame into the B frame: ~R_AB * v_A.
func (r Rotation) InvApply(v Vec3) Vec3 {
	return Vec3{
		r.m[0][0]*v[0] + r.m[1][0]*v[1] + r.m[2][0]*v[2],
		r.m[0][1]*v[0] + r.m[1][1]*v[1] + r.m[2][1]*v[2],
		r.m[0][2]*v[0] + r.m[1][2]*v[1] + r.m[2][2]*v[2],
	}
}

// Col returns the i-th column, the image of the i-th B axis expressed in A.
func (r Rotation) Col(i int) Vec3 { return Vec3{r.m[0][i], r.m[1][i], r.m[2][i]} }

func (r Rotation) Mat() Mat33 { return r.m }

// IsIdentity reports exact equality with the identity rotation.
func (r Rotation) IsIdentity() bool { return r.m == IdentityMat33() }
