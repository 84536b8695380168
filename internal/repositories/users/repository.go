// Package users persists account rows in the metadata store.
package users

import (
	"context"

	"filevault/internal/models"
)

type Repository interface {
	// Create inserts a new account. Returns ErrEmailAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
