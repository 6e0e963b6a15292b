package core

import (
	"context"
	"fmt"

	"github.com/dshills/kernelfn/core/compute"
)

// Evaluator computes pairwise kernel matrices. It holds only its execution
// policy and may be shared by concurrent callers.
type Evaluator struct {
	policy compute.Policy
}

// NewEvaluator returns an evaluator that fans work out through policy.
// A nil policy runs every call on the calling goroutine.
func NewEvaluator(policy compute.Policy) *Evaluator {
	if policy == nil {
		policy = compute.Sequential()
	}
	return &Evaluator{policy: policy}
}

// Policy returns the execution policy used by e.
func (e *Evaluator) Policy() compute.Policy {
	return e.policy
}

// Evaluate computes the kernel matrix K with K[i][j] = k(x_i, y_j). When y is
// nil the self-kernel of x is computed and only its upper triangle is
// evaluated. All argument errors are reported before the output is
// allocated. Cancellation of ctx is observed between row blocks.
func (e *Evaluator) Evaluate(ctx context.Context, x, y *PointSet, params Params) (*Matrix, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	self := y == nil || y == x
	if y == nil {
		y = x
	}
	if err := checkOperands(x, y); err != nil {
		return nil, err
	}
	if err := validateParams(params, x.cols, x.precision); err != nil {
		return nil, err
	}

	out := newMatrix(x.rows, y.rows, x.precision)

	var err error
	switch x.precision {
	case Float32:
		err = evaluateRows(ctx, e.policy, x.f32, y.f32, out.f32, x.rows, y.rows, x.cols, self, pairFunc[float32](params, x.cols))
	case Float64:
		err = evaluateRows(ctx, e.policy, x.f64, y.f64, out.f64, x.rows, y.rows, x.cols, self, pairFunc[float64](params, x.cols))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate computes the kernel matrix of x and y sequentially. See
// (*Evaluator).Evaluate.
func Evaluate(x, y *PointSet, params Params) (*Matrix, error) {
	return NewEvaluator(nil).Evaluate(context.Background(), x, y, params)
}

// EvaluatePair returns the kernel value of two vectors of equal length.
func EvaluatePair[T Float](a, b []T, params Params) (T, error) {
	if len(a) != len(b) {
		return 0, dimensionError(len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: vectors must have at least one feature", ErrInvalidShape)
	}
	if err := validateParams(params, len(a), precisionOf[T]()); err != nil {
		return 0, err
	}
	return pairFunc[T](params, len(a))(a, b), nil
}

// precisionOf reports the Precision of the element type T.
func precisionOf[T Float]() Precision {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return Float32
	}
	return Float64
}

// checkOperands enforces the evaluator preconditions on already validated
// point sets: equal feature counts and one shared precision.
func checkOperands(x, y *PointSet) error {
	if x == nil {
		return fmt.Errorf("%w: X is required", ErrShapeMismatch)
	}
	if !x.precision.Valid() || !y.precision.Valid() {
		return fmt.Errorf("%w: unsupported precision", ErrTypeMismatch)
	}
	if x.precision != y.precision {
		return fmt.Errorf("%w: X is %s, Y is %s", ErrTypeMismatch, x.precision, y.precision)
	}
	if x.cols != y.cols {
		return dimensionError(x.cols, y.cols)
	}
	return nil
}

// pairFunc binds params into a kernel function over rows of T. params must
// have passed validateParams.
func pairFunc[T Float](params Params, d int) func(a, b []T) T {
	switch p := params.(type) {
	case LinearParams:
		scale, shift := T(p.Scale), T(p.Shift)
		return func(a, b []T) T {
			return T(scale*dot(a, b)) + shift
		}
	case RBFParams:
		gamma := T(p.ResolveGamma(d))
		return func(a, b []T) T {
			return expT(T(-gamma * squaredDistance(a, b)))
		}
	case PolynomialParams:
		scale, shift, degree := T(p.Scale), T(p.Shift), p.Degree
		return func(a, b []T) T {
			return powInt(T(scale*dot(a, b))+shift, degree)
		}
	}
	panic(fmt.Sprintf("kernel: unvalidated parameters %T", params))
}

// evaluateRows fills out (nx by ny) with k over row pairs. For a self-kernel
// the block owning row i also writes the mirrored cells (j, i) for j > i, so
// every cell still has exactly one writer.
func evaluateRows[T Float](ctx context.Context, policy compute.Policy, x, y, out []T, nx, ny, d int, self bool, k func(a, b []T) T) error {
	return policy.Run(ctx, nx, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			xi := x[i*d : (i+1)*d]
			row := out[i*ny : (i+1)*ny]
			if self {
				for j := i; j < ny; j++ {
					v := k(xi, y[j*d:(j+1)*d])
					row[j] = v
					out[j*ny+i] = v
				}
				continue
			}
			for j := range row {
				row[j] = k(xi, y[j*d:(j+1)*d])
			}
		}
	})
}
