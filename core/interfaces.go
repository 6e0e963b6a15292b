package core

import "context"

// ResultStore keeps computed kernel matrices by ID.
type ResultStore interface {
	// SaveResult stores r, replacing any result with the same ID
	SaveResult(ctx context.Context, r Result) error

	// LoadResult returns the result with the given ID or ErrResultNotFound
	LoadResult(ctx context.Context, id string) (Result, error)

	// DeleteResult removes a result; missing IDs yield ErrResultNotFound
	DeleteResult(ctx context.Context, id string) error

	// ListResults returns all results without their matrices, oldest first
	ListResults(ctx context.Context) ([]ResultInfo, error)

	// Lifecycle
	Close() error
}
