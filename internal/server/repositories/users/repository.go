// Package users declares the repository contract for account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/docshare/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt. A duplicate
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	MarkVerified(ctx context.Context, id int64) error
}
