// Package gateway is the sole boundary between the memory model and the
// remote collaborators: the identity provider, the structured record store,
// and the blob store. No other component talks to them directly.
package gateway

import (
	"context"
	"time"

	"github.com/memoriesapp/memories/internal/identity"
	"github.com/memoriesapp/memories/internal/logging"
	"github.com/memoriesapp/memories/internal/memory"
)

// RecordStore is the structured query/mutation collaborator. The Postgres
// records repository satisfies it.
type RecordStore interface {
	QueryToday(ctx context.Context, owner, monthDay string) ([]memory.Record, error)
	Create(ctx context.Context, rec memory.Record) error
	Update(ctx context.Context, rec memory.Record) error
}

// BlobStore is the object-storage collaborator, always owner-scoped.
type BlobStore interface {
	Upload(ctx context.Context, owner, name string, data []byte) error
	Remove(ctx context.Context, owner, name string) error
	// URL resolves to a time-limited URL; absent objects resolve to "".
	URL(ctx context.Context, owner, name string) (string, error)
}

// AssetResolver resolves bundled mock image names locally.
type AssetResolver interface {
	Resolve(name string) string
}

// Identity is a federated identity assertion handed to SignIn: the stable
// user id plus the provider-issued token proving it.
type Identity struct {
	UserID     string
	Provider   string // token issuer name, e.g. "Apple"
	Token      string // raw federated JWT
	Email      string
	GivenName  string
	FamilyName string
}

// Gateway mediates every identity, query, mutation, and blob-storage call.
type Gateway struct {
	provider identity.Provider
	store    RecordStore
	blobs    BlobStore
	assets   AssetResolver
	log      logging.Logger

	now func() time.Time
}

func New(provider identity.Provider, store RecordStore, blobs BlobStore, assets AssetResolver, log logging.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		store:    store,
		blobs:    blobs,
		assets:   assets,
		log:      log.With("component", "gateway"),
		now:      time.Now,
	}
}
