// Package refreshtokens stores the opaque refresh tokens handed out next to
// access tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docshare/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid until expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Consume deletes token and returns the row it removed, so a token can
	// be rotated exactly once even under concurrent requests. A missing
	// token yields common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes token; a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens that expired before the given instant
	// and reports how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
