package spatial

// SpatialVec pairs an angular and a linear three-vector. It represents
// spatial velocities (w, v), spatial accelerations (b, a), and spatial
// forces (torque, force), always in (angular, linear) order.
type SpatialVec struct {
	W Vec3 // angular part
	V Vec3 // linear part
}

func (s SpatialVec) Add(t SpatialVec) SpatialVec {
	return SpatialVec{W: s.W.Add(t.W), V: s.V.Add(t.V)}
}

func (s SpatialVec) Sub(t SpatialVec) SpatialVec {
	return SpatialVec{W: s.W.Sub(t.W), V: s.V.Sub(t.V)}
}

func (s SpatialVec) Neg() SpatialVec { return SpatialVec{W: s.W.Neg(), V: s.V.Neg()} }

func (s SpatialVec) Scale(a float64) SpatialVec {
	return SpatialVec{W: s.W.Scale(a), V: s.V.Scale(a)}
}

func (s SpatialVec) IsZero() bool { return s.W.IsZero() && s.V.IsZero() }

// Reexpress rotates both parts into another frame without shifting the
// point of application.
func (s SpatialVec) Reexpress(r Rotation) SpatialVec {
	return SpatialVec{W: r.Apply(s.W), V: r.Apply(s.V)}
}

// ShiftVelocity moves a spatial velocity taken about point P to point Q,
// where p is the vector from P to Q expressed in the same frame as s:
// the angular part is unchanged, the linear part picks up w x p.
func (s SpatialVec) ShiftVelocity(p Vec3) SpatialVec {
	return SpatialVec{W: s.W, V: s.V.Add(s.W.Cross(p))}
}

// ShiftForce moves a spatial force applied at point P to an equivalent one
// applied at point Q, where p is the vector from Q to P expressed in the
// same frame as s: the force is unchanged, the torque picks up p x f.
func (s SpatialVec) ShiftForce(p Vec3) SpatialVec {
	return SpatialVec{W: s.W.Add(p.Cross(s.V)), V: s.V}
}
