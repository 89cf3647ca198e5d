package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/memory"
)

// FetchTodayMemories returns every memory of the signed-in owner whose
// moment falls on today's month and day, in any year. Records come back in
// store order; most-recent-first sorting is the caller's concern. An empty
// day is a valid, non-error outcome.
func (g *Gateway) FetchTodayMemories(ctx context.Context) ([]memory.Memory, error) {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return nil, err
	}

	monthDay := memory.MonthDay(g.now())
	records, err := g.store.QueryToday(ctx, owner, monthDay)
	if err != nil {
		return nil, fmt.Errorf("querying today's memories: %w", err)
	}

	result := make([]memory.Memory, 0, len(records))
	for _, rec := range records {
		m, err := memory.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding record (owner=%s moment=%s): %w", rec.Owner, rec.Moment, err)
		}
		result = append(result, m)
	}

	g.log.Debug(ctx, "fetched today's memories", "owner", owner, "monthDay", monthDay, "count", len(result))
	return result, nil
}

// CreateMemory persists a freshly constructed memory. The record is written
// under the session owner regardless of what the memory claims.
func (g *Gateway) CreateMemory(ctx context.Context, m memory.Memory) error {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return err
	}
	if m.Owner != owner {
		return fmt.Errorf("%w: memory owner does not match the session", common.ErrorUnauthorized)
	}

	if err := g.store.Create(ctx, m.ToRecord()); err != nil {
		return fmt.Errorf("creating memory %s: %w", m.Moment, err)
	}

	g.log.Debug(ctx, "memory created", "owner", owner, "moment", m.Moment)
	return nil
}

// UpdateMemory rewrites the record keyed by (owner, moment). Updating a
// memory that was never created fails with a distinguishable not-found
// error. Last write wins; there is no optimistic-concurrency check.
func (g *Gateway) UpdateMemory(ctx context.Context, m memory.Memory) error {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return err
	}
	if m.Owner != owner {
		return fmt.Errorf("%w: memory owner does not match the session", common.ErrorUnauthorized)
	}

	if err := g.store.Update(ctx, m.ToRecord()); err != nil {
		return fmt.Errorf("updating memory %s: %w", m.Moment, err)
	}

	g.log.Debug(ctx, "memory updated", "owner", owner, "moment", m.Moment)
	return nil
}

// NewTodayMemory captures a new memory now: it generates an opaque image
// key, starts the blob upload, and persists the record. Upload and record
// write proceed independently with no ordering guarantee; a failed upload
// is logged but never rolls back the record (eventual consistency between a
// record and its image is accepted).
func (g *Gateway) NewTodayMemory(ctx context.Context, description string, imageData []byte, coordinates *memory.Coordinates) (memory.Memory, error) {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return memory.Memory{}, err
	}

	imageName := uuid.NewString()
	m, err := memory.New(owner, g.now(), description, imageName, 0, false, coordinates)
	if err != nil {
		return memory.Memory{}, err
	}

	// the upload outlives the caller's ctx on purpose
	uploadCtx := context.WithoutCancel(ctx)
	go func() {
		if err := g.blobs.Upload(uploadCtx, owner, imageName, imageData); err != nil {
			g.log.Error(uploadCtx, "image upload failed", "name", imageName, "err", err)
		}
	}()

	if err := g.CreateMemory(ctx, m); err != nil {
		return memory.Memory{}, err
	}
	return m, nil
}
