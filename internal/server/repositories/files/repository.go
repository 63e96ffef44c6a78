package files

import (
	"context"

	"github.com/dmitrijs2005/docshare/internal/server/models"
)

// Repository stores file metadata. Content lives in the storage gateway.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	// List returns every file, newest first.
	List(ctx context.Context) ([]*models.File, error)
	ListByUploader(ctx context.Context, userID int64) ([]*models.File, error)
	Delete(ctx context.Context, id int64) error
}
