package core

import "errors"

// Kernel evaluation errors. Callers match them with errors.Is; functions
// add context with fmt.Errorf("...: %w", ErrX).
var (
	// ErrShapeMismatch is returned when X and Y disagree on feature
	// dimensionality, or a row set is ragged.
	ErrShapeMismatch = errors.New("kernel: shape mismatch")

	// ErrTypeMismatch is returned for unsupported or mixed precisions.
	ErrTypeMismatch = errors.New("kernel: type mismatch")

	// ErrInvalidParameter is returned for out-of-domain kernel parameters
	// such as a non-positive gamma or a negative degree.
	ErrInvalidParameter = errors.New("kernel: invalid parameter")

	// ErrInvalidShape is returned when a point set cannot be constructed
	// (zero features, negative rows, data length not rows*cols).
	ErrInvalidShape = errors.New("kernel: invalid shape")

	// ErrNonFinite is returned by CheckFinite when NaN or Inf is present.
	ErrNonFinite = errors.New("kernel: non-finite value")

	// ErrUnknownFamily is returned when a kernel family name does not parse.
	ErrUnknownFamily = errors.New("kernel: unknown kernel family")

	// ErrResultNotFound is returned by result stores for missing IDs.
	ErrResultNotFound = errors.New("kernel: result not found")
)
