package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Number is a float64 whose JSON form carries non-finite values as the
// strings "NaN", "+Inf" and "-Inf". Plain JSON numbers cannot express them.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return appendNumber(nil, float64(n), 64), nil
}

// appendNumber appends the JSON form of f formatted with the shortest
// representation that round-trips at bitSize.
func appendNumber(dst []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, `"NaN"`...)
	case math.IsInf(f, 1):
		return append(dst, `"+Inf"`...)
	case math.IsInf(f, -1):
		return append(dst, `"-Inf"`...)
	}
	return strconv.AppendFloat(dst, f, 'g', -1, bitSize)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN", "nan":
			*n = Number(math.NaN())
		case "+Inf", "Inf", "inf", "Infinity":
			*n = Number(math.Inf(1))
		case "-Inf", "-inf", "-Infinity":
			*n = Number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Number(f)
	return nil
}

// NumberRows converts nested Numbers into float64 rows.
func NumberRows(rows [][]Number) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = float64(v)
		}
		out[i] = r
	}
	return out
}

type matrixJSON struct {
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Precision string     `json:"precision"`
	Values    [][]Number `json:"values"`
}

// MarshalJSON implements json.Marshaler. Float32 matrices are formatted at
// 32-bit precision.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	bitSize := 64
	if m.precision == Float32 {
		bitSize = 32
	}

	values := make([][]json.RawMessage, m.rows)
	for i := range values {
		row := make([]json.RawMessage, m.cols)
		for j := range row {
			row[j] = appendNumber(nil, m.At(i, j), bitSize)
		}
		values[i] = row
	}
	return json.Marshal(struct {
		Rows      int                 `json:"rows"`
		Cols      int                 `json:"cols"`
		Precision string              `json:"precision"`
		Values    [][]json.RawMessage `json:"values"`
	}{
		Rows:      m.rows,
		Cols:      m.cols,
		Precision: m.precision.String(),
		Values:    values,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	precision, err := ParsePrecision(raw.Precision)
	if err != nil {
		return err
	}
	if raw.Rows < 0 || raw.Cols < 0 || len(raw.Values) != raw.Rows {
		return fmt.Errorf("%w: matrix header %dx%d does not match %d rows", ErrInvalidShape, raw.Rows, raw.Cols, len(raw.Values))
	}

	out := newMatrix(raw.Rows, raw.Cols, precision)
	for i, row := range raw.Values {
		if len(row) != raw.Cols {
			return fmt.Errorf("%w: matrix row %d has %d values, expected %d", ErrInvalidShape, i, len(row), raw.Cols)
		}
		for j, v := range row {
			if precision == Float32 {
				out.f32[i*raw.Cols+j] = float32(v)
			} else {
				out.f64[i*raw.Cols+j] = float64(v)
			}
		}
	}
	*m = *out
	return nil
}
