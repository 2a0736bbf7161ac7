package spatial

import "math"

// Vec3 is a three-component column vector.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3) Neg() Vec3       { return Vec3{-v[0], -v[1], -v[2]} }

func (v Vec3) Scale(a float64) Vec3 { return Vec3{a * v[0], a * v[1], a * v[2]} }

func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

func (v Vec3) Norm() float64    { return math.Sqrt(v.Dot(v)) }
func (v Vec3) NormSqr() float64 { return v.Dot(v) }

// Unit returns v normalized to unit length. The zero vector is returned
// unchanged; callers that care must branch on Norm first.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

func (v Vec3) IsZero() bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Mat33 is a 3x3 matrix in row-major order.
type Mat33 [3][3]float64

func IdentityMat33() Mat33 {
	return Mat33{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// CrossMat returns the skew-symmetric matrix m such that m*w == v x w.
func CrossMat(v Vec3) Mat33 {
	return Mat33{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

// OuterProduct returns v * w^T.
func OuterProduct(v, w Vec3) Mat33 {
	var m Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = v[i] * w[j]
		}
	}
	return m
}

func (m Mat33) Add(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + n[i][j]
		}
	}
	return r
}

func (m Mat33) Sub(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] - n[i][j]
		}
	}
	return r
}

func (m Mat33) Scale(a float64) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a * m[i][j]
		}
	}
	return r
}

func (m Mat33) Mul(n Mat33) Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m Mat33) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m Mat33) Transpose() Mat33 {
	var r Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

func (m Mat33) Trace() float64 { return m[0][0] + m[1][1] + m[2][2] }
