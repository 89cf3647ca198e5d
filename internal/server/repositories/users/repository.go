// Package users persists user-pool accounts.
package users

import (
	"context"

	"github.com/memoriesapp/memories/internal/server/models"
)

// Repository is the storage contract for user accounts.
type Repository interface {
	// Create inserts a new account and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the account or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
