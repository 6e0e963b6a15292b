package core

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Precision identifies the floating-point width of a point set or matrix.
type Precision int

const (
	PrecisionUnknown Precision = iota
	Float32
	Float64
)

// String returns the canonical name of the precision.
func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the two supported precisions.
func (p Precision) Valid() bool {
	return p == Float32 || p == Float64
}

// ParsePrecision converts a user-supplied precision name. Both the Go names
// and the single/double spellings used by numeric toolkits are accepted.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float", "single", "f32":
		return Float32, nil
	case "float64", "double", "f64", "":
		return Float64, nil
	default:
		return PrecisionUnknown, fmt.Errorf("%w: unsupported precision %q", ErrTypeMismatch, s)
	}
}

// PointSet is an immutable row-major matrix of samples by features.
// Exactly one of f32/f64 is populated, according to precision.
type PointSet struct {
	rows      int
	cols      int
	precision Precision
	f32       []float32
	f64       []float64
}

// Rows returns the number of samples.
func (ps *PointSet) Rows() int { return ps.rows }

// Cols returns the feature dimensionality.
func (ps *PointSet) Cols() int { return ps.cols }

// Precision returns the element precision.
func (ps *PointSet) Precision() Precision { return ps.precision }

// Row32 returns row i of a float32 point set. The slice must not be modified.
func (ps *PointSet) Row32(i int) []float32 {
	return ps.f32[i*ps.cols : (i+1)*ps.cols : (i+1)*ps.cols]
}

// Row64 returns row i of a float64 point set. The slice must not be modified.
func (ps *PointSet) Row64(i int) []float64 {
	return ps.f64[i*ps.cols : (i+1)*ps.cols : (i+1)*ps.cols]
}

// At returns element (i, j) widened to float64.
func (ps *PointSet) At(i, j int) float64 {
	if ps.precision == Float32 {
		return float64(ps.f32[i*ps.cols+j])
	}
	return ps.f64[i*ps.cols+j]
}

// Matrix is a dense kernel matrix. It is allocated per evaluation and owned
// by the caller.
type Matrix struct {
	rows      int
	cols      int
	precision Precision
	f32       []float32
	f64       []float64
}

func newMatrix(rows, cols int, p Precision) *Matrix {
	m := &Matrix{rows: rows, cols: cols, precision: p}
	if p == Float32 {
		m.f32 = make([]float32, rows*cols)
	} else {
		m.f64 = make([]float64, rows*cols)
	}
	return m
}

// Rows returns the number of rows (samples of X).
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns (samples of Y).
func (m *Matrix) Cols() int { return m.cols }

// Precision returns the element precision.
func (m *Matrix) Precision() Precision { return m.precision }

// At returns entry (i, j) widened to float64.
func (m *Matrix) At(i, j int) float64 {
	if m.precision == Float32 {
		return float64(m.f32[i*m.cols+j])
	}
	return m.f64[i*m.cols+j]
}

// Row32 returns row i of a float32 matrix as a view.
func (m *Matrix) Row32(i int) []float32 {
	return m.f32[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Row64 returns row i of a float64 matrix as a view.
func (m *Matrix) Row64(i int) []float64 {
	return m.f64[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Data32 returns a copy of the row-major float32 values, or nil for a
// float64 matrix.
func (m *Matrix) Data32() []float32 {
	if m.f32 == nil {
		return nil
	}
	return append([]float32(nil), m.f32...)
}

// Data64 returns a copy of the row-major float64 values, or nil for a
// float32 matrix.
func (m *Matrix) Data64() []float64 {
	if m.f64 == nil {
		return nil
	}
	return append([]float64(nil), m.f64...)
}

// ToRows64 returns the matrix as nested float64 rows.
func (m *Matrix) ToRows64() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		row := make([]float64, m.cols)
		for j := range row {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

// Result is a computed kernel matrix kept by a ResultStore.
type Result struct {
	ID        string            `json:"id"`
	Params    ParamsSpec        `json:"params"`
	Matrix    *Matrix           `json:"matrix,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ResultInfo is the listing view of a Result, without the matrix payload.
type ResultInfo struct {
	ID        string            `json:"id"`
	Params    ParamsSpec        `json:"params"`
	Rows      int               `json:"rows"`
	Cols      int               `json:"cols"`
	Precision string            `json:"precision"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Info returns the listing view of r.
func (r Result) Info() ResultInfo {
	info := ResultInfo{
		ID:        r.ID,
		Params:    r.Params.Clone(),
		CreatedAt: r.CreatedAt,
		Metadata:  maps.Clone(r.Metadata),
	}
	if r.Matrix != nil {
		info.Rows = r.Matrix.Rows()
		info.Cols = r.Matrix.Cols()
		info.Precision = r.Matrix.Precision().String()
	}
	return info
}
