package constraint

// Matrix is a small dense row-major matrix sized for constraint Jacobians:
// a handful of rows by the system's mobility count.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns an all-zero rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

func (m Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

func (m Matrix) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Row returns a view of row i.
func (m Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// Transpose returns a new matrix whose (j,i) element is exactly this
// matrix's (i,j) element: an element copy, not a recomputation.
func (m Matrix) Transpose() Matrix {
	t := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*t.cols+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// MulVec returns m*x.
func (m Matrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, ErrDimension
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		row := m.Row(i)
		var sum float64
		for j, v := range x {
			sum += row[j] * v
		}
		out[i] = sum
	}
	return out, nil
}
