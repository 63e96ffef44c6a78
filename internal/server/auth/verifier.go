package auth

import (
	"context"
	"fmt"
)

// Denylist answers whether a token id was revoked before its natural expiry.
type Denylist interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Verifier checks access tokens and, when a Denylist is configured,
// rejects revoked ones with ErrRevoked.
type Verifier struct {
	issuer   *Issuer
	denylist Denylist
}

func NewVerifier(issuer *Issuer, denylist Denylist) *Verifier {
	return &Verifier{issuer: issuer, denylist: denylist}
}

func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := v.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	if v.denylist == nil {
		return claims, nil
	}

	revoked, err := v.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	return claims, nil
}
