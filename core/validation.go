package core

import (
	"fmt"
	"math"
)

// NewPointSet32 builds a float32 point set of rows x cols from row-major
// data. The data is copied.
func NewPointSet32(rows, cols int, data []float32) (*PointSet, error) {
	if err := checkShape(rows, cols, len(data)); err != nil {
		return nil, err
	}
	return &PointSet{
		rows:      rows,
		cols:      cols,
		precision: Float32,
		f32:       append(make([]float32, 0, len(data)), data...),
	}, nil
}

// NewPointSet64 builds a float64 point set of rows x cols from row-major
// data. The data is copied.
func NewPointSet64(rows, cols int, data []float64) (*PointSet, error) {
	if err := checkShape(rows, cols, len(data)); err != nil {
		return nil, err
	}
	return &PointSet{
		rows:      rows,
		cols:      cols,
		precision: Float64,
		f64:       append(make([]float64, 0, len(data)), data...),
	}, nil
}

// PointSetFromRows32 builds a float32 point set from nested rows. Every row
// must have the same non-zero length.
func PointSetFromRows32(rows [][]float32) (*PointSet, error) {
	cols, err := rowWidth(len(rows), func(i int) int { return len(rows[i]) })
	if err != nil {
		return nil, err
	}
	data := make([]float32, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return &PointSet{rows: len(rows), cols: cols, precision: Float32, f32: data}, nil
}

// PointSetFromRows64 builds a float64 point set from nested rows. Every row
// must have the same non-zero length.
func PointSetFromRows64(rows [][]float64) (*PointSet, error) {
	cols, err := rowWidth(len(rows), func(i int) int { return len(rows[i]) })
	if err != nil {
		return nil, err
	}
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return &PointSet{rows: len(rows), cols: cols, precision: Float64, f64: data}, nil
}

// PointSetFromRows builds a point set of the requested precision from
// float64 rows, rounding to float32 when asked to.
func PointSetFromRows(rows [][]float64, precision Precision) (*PointSet, error) {
	switch precision {
	case Float64:
		return PointSetFromRows64(rows)
	case Float32:
		narrowed := make([][]float32, len(rows))
		for i, row := range rows {
			r := make([]float32, len(row))
			for j, v := range row {
				r[j] = float32(v)
			}
			narrowed[i] = r
		}
		return PointSetFromRows32(narrowed)
	default:
		return nil, fmt.Errorf("%w: unsupported precision %s", ErrTypeMismatch, precision)
	}
}

// ValidatePointSet checks the structural invariants of ps. Non-finite values
// are allowed; see CheckFinite.
func ValidatePointSet(ps *PointSet) error {
	if ps == nil {
		return fmt.Errorf("%w: point set is nil", ErrInvalidShape)
	}
	if !ps.precision.Valid() {
		return fmt.Errorf("%w: unsupported precision", ErrTypeMismatch)
	}
	n := len(ps.f64)
	if ps.precision == Float32 {
		n = len(ps.f32)
	}
	return checkShape(ps.rows, ps.cols, n)
}

// CheckFinite returns ErrNonFinite for the first NaN or Inf in ps.
func CheckFinite(ps *PointSet) error {
	for i := 0; i < ps.rows; i++ {
		for j := 0; j < ps.cols; j++ {
			v := ps.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %v at row %d, column %d", ErrNonFinite, v, i, j)
			}
		}
	}
	return nil
}

func checkShape(rows, cols, n int) error {
	if rows < 0 {
		return fmt.Errorf("%w: negative row count %d", ErrInvalidShape, rows)
	}
	if cols < 1 {
		return fmt.Errorf("%w: at least one feature is required, got %d", ErrInvalidShape, cols)
	}
	if n != rows*cols {
		return fmt.Errorf("%w: %d values do not fill %dx%d", ErrInvalidShape, n, rows, cols)
	}
	return nil
}

// rowWidth returns the shared width of n rows.
func rowWidth(n int, width func(i int) int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("%w: no rows to infer the feature count from", ErrInvalidShape)
	}
	cols := width(0)
	if cols == 0 {
		return 0, fmt.Errorf("%w: at least one feature is required", ErrInvalidShape)
	}
	for i := 1; i < n; i++ {
		if w := width(i); w != cols {
			return 0, fmt.Errorf("%w: row %d has %d features, expected %d", ErrShapeMismatch, i, w, cols)
		}
	}
	return cols, nil
}

func dimensionError(a, b int) error {
	return fmt.Errorf("%w: feature dimensions differ: %d != %d", ErrShapeMismatch, a, b)
}
