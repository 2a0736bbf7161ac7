package spatial

// Transform is a rigid transform X_AB: the orientation of frame B in frame A
// together with the location of B's origin measured from A's origin,
// expressed in A.
type Transform struct {
	R Rotation
	P Vec3
}

func IdentityTransform() Transform { return Transform{R: IdentityRotation()} }

// NewTransform pairs a rotation with an origin offset.
func NewTransform(r Rotation, p Vec3) Transform { return Transform{R: r, P: p} }

// TranslationTransform is a pure translation with identity orientation.
func TranslationTransform(p Vec3) Transform {
	return Transform{R: IdentityRotation(), P: p}
}

// Mul composes transforms: X_AC = X_AB * X_BC.
func (x Transform) Mul(y Transform) Transform {
	return Transform{
		R: x.R.Mul(y.R),
		P: x.P.Add(x.R.Apply(y.P)),
	}
}

// Inv returns X_BA given X_AB.
func (x Transform) Inv() Transform {
	ri := x.R.Inv()
	return Transform{R: ri, P: ri.Apply(x.P).Neg()}
}

// Apply maps a point measured from B's origin, expressed in B, to the same
// point measured from A's origin, expressed in A.
func (x Transform) Apply(p Vec3) Vec3 { return x.P.Add(x.R.Apply(p)) }

// InvApply maps a point from the A frame back into the B frame.
func (x Transform) InvApply(p Vec3) Vec3 { return x.R.InvApply(p.Sub(x.P)) }

// IsIdentity reports exact equality with the identity transform.
func (x Transform) IsIdentity() bool { return x.R.IsIdentity() && x.P.IsZero() }
