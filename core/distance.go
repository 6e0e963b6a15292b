package core

import "math"

// Float is the set of element types a point set may hold.
type Float interface {
	~float32 | ~float64
}

// dot accumulates a.b in T. Each product is converted to T so the compiler
// cannot fuse it into a multiply-add; results then match across platforms.
func dot[T Float](a, b []T) T {
	var sum T
	for i := range a {
		sum += T(a[i] * b[i])
	}
	return sum
}

// squaredDistance accumulates ||a-b||^2 in T.
func squaredDistance[T Float](a, b []T) T {
	var sum T
	for i := range a {
		diff := a[i] - b[i]
		sum += T(diff * diff)
	}
	return sum
}

// powInt raises x to a non-negative integer power by repeated squaring in T.
// powInt(x, 0) is 1 for every x, matching IEEE pown.
func powInt[T Float](x T, n int) T {
	result := T(1)
	for n > 0 {
		if n&1 == 1 {
			result = T(result * x)
		}
		x = T(x * x)
		n >>= 1
	}
	return result
}

// expT evaluates exp in float64 and rounds back to T. Go has no float32 exp;
// the rounding keeps the output in the input precision.
func expT[T Float](x T) T {
	return T(math.Exp(float64(x)))
}

// DotProduct returns a.b accumulated in the element precision.
func DotProduct[T Float](a, b []T) (T, error) {
	if len(a) != len(b) {
		return 0, dimensionError(len(a), len(b))
	}
	return dot(a, b), nil
}

// SquaredEuclideanDistance returns ||a-b||^2 accumulated in the element precision.
func SquaredEuclideanDistance[T Float](a, b []T) (T, error) {
	if len(a) != len(b) {
		return 0, dimensionError(len(a), len(b))
	}
	return squaredDistance(a, b), nil
}
