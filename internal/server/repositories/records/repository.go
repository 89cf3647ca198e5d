// Package records persists memory records in their canonical schema-versioned
// layout. Every query and write is scoped by the owner column; callers pass
// the session owner, never a client-supplied one.
package records

import (
	"context"

	"github.com/memoriesapp/memories/internal/memory"
)

// Repository is the storage contract for memory records.
type Repository interface {
	// QueryToday returns every record for owner whose moment falls on the
	// given MMDD month-day, in any year. An empty result is not an error.
	QueryToday(ctx context.Context, owner, monthDay string) ([]memory.Record, error)

	// Create inserts a new record keyed by (owner, moment).
	Create(ctx context.Context, rec memory.Record) error

	// Update rewrites the record keyed by (owner, moment). A missing row
	// yields common.ErrorNotFound, never a silent no-op.
	Update(ctx context.Context, rec memory.Record) error
}
