// Package revocations stores identifiers of access tokens revoked before
// their natural expiry (logout). It backs the auth.Denylist used by the
// token verifier.
package revocations

import (
	"context"
	"time"
)

type Repository interface {
	// Revoke records tokenID. Revoking the same id twice is a no-op.
	// A zero expiresAt means the token never expires and the row is kept.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Purge drops rows whose token expired before the given instant; such
	// tokens fail verification on expiry alone.
	Purge(ctx context.Context, before time.Time) (int64, error)
}
