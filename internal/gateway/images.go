package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/memoriesapp/memories/internal/memory"
)

// resolveTimeout bounds the remote URL lookup.
const resolveTimeout = 10 * time.Second

// ResolveImageURL resolves an image reference to a displayable URL.
// Bundled mock references ("landscape1.png") resolve synchronously against
// local assets; opaque keys resolve to a time-limited URL from the private,
// owner-scoped blob store. An absent image resolves to an empty URL with no
// error: the caller renders a placeholder.
func (g *Gateway) ResolveImageURL(ctx context.Context, imageRef string) (string, error) {
	if memory.IsBundledImage(imageRef) {
		return g.assets.Resolve(imageRef), nil
	}

	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	url, err := g.blobs.URL(ctx, owner, imageRef)
	if err != nil {
		g.log.Error(ctx, "image url lookup failed", "name", imageRef, "err", err)
		return "", fmt.Errorf("resolving image %s: %w", imageRef, err)
	}
	return url, nil
}

// StoreImageBlob uploads image bytes under the session owner's private
// prefix. A failure is logged and returned but never rolls back the memory
// record the image belongs to.
func (g *Gateway) StoreImageBlob(ctx context.Context, name string, data []byte) error {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return err
	}

	if err := g.blobs.Upload(ctx, owner, name, data); err != nil {
		g.log.Error(ctx, "image upload failed", "name", name, "err", err)
		return err
	}
	return nil
}

// DeleteImageBlob removes the named blob from the owner's private prefix.
func (g *Gateway) DeleteImageBlob(ctx context.Context, name string) error {
	owner, err := g.sessionOwner(ctx)
	if err != nil {
		return err
	}

	if err := g.blobs.Remove(ctx, owner, name); err != nil {
		g.log.Error(ctx, "image delete failed", "name", name, "err", err)
		return err
	}
	return nil
}
