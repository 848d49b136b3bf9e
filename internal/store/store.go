// Package store provides the dispatch journal interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/d6calc/internal/model"
)

// ErrNotFound is returned when a dispatch id is unknown.
var ErrNotFound = errors.New("dispatch not found")

// BeginParams holds parameters for recording a new dispatch.
type BeginParams struct {
	Session string
	Seq     uint64
	InputD6 string
	InputLv string
	Valid   bool
}

// FinishParams holds the outcome of a dispatch.
type FinishParams struct {
	ID     string
	Status string // completed, failed or discarded
	Result string
	Error  string
}

// ListParams holds parameters for listing dispatches.
type ListParams struct {
	Session string
	Status  string
	Limit   int
}

// PruneParams selects dispatches to delete.
type PruneParams struct {
	Before time.Time // zero with All=false deletes nothing
	All    bool
}

// Store defines the dispatch journal interface.
type Store interface {
	// Begin records a pending dispatch. Returns the created record.
	Begin(ctx context.Context, p BeginParams) (*model.Dispatch, error)

	// Finish sets the outcome of a pending dispatch.
	Finish(ctx context.Context, p FinishParams) error

	// Get retrieves a dispatch by id.
	Get(ctx context.Context, id string) (*model.Dispatch, error)

	// List lists dispatches, newest first.
	List(ctx context.Context, p ListParams) ([]model.Dispatch, error)

	// Prune deletes dispatches. Returns the number removed.
	Prune(ctx context.Context, p PruneParams) (int64, error)

	// Close closes the store.
	Close() error
}
