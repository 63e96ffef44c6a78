// Package auth issues and verifies the signed identity tokens that clients
// carry as bearer credentials.
//
// Tokens are HS256 JWTs over an explicit, versioned claim set. Verification
// failures are reported as one of ErrMalformed, ErrSignatureInvalid or
// ErrExpired; errors from the JWT library never leave this package.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClaimsVersion is the schema version stamped into every token. Tokens
// carrying another version are rejected as malformed.
const ClaimsVersion = 1

// Purpose restricts where a token may be presented.
type Purpose string

const (
	PurposeAccess      Purpose = "access"
	PurposeVerifyEmail Purpose = "verify_email"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrRevoked          = errors.New("token revoked")
)

// IsAuthError reports whether err is one of the token verification failures
// (as opposed to, say, a denylist lookup that could not reach the database).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrRevoked)
}

// Claims is the signed identity statement.
type Claims struct {
	jwt.RegisteredClaims
	Version  int         `json:"ver"`
	UserID   int64       `json:"uid"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Verified bool        `json:"verified"`
	Purpose  Purpose     `json:"purpose"`
}

// Identity holds the caller-supplied claim fields.
type Identity struct {
	UserID   int64
	Email    string
	Role     models.Role
	Verified bool
}

// IdentityOf extracts the claim fields of a stored user.
func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role, Verified: u.IsVerified}
}

// Identity returns the claim fields carried by c.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role, Verified: c.Verified}
}

// Issuer signs and verifies tokens with a process-wide secret. It has no
// mutable state and is safe for concurrent use.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewIssuer creates an Issuer whose access tokens live for validity.
// A zero validity issues tokens without an expiry claim.
func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	return &Issuer{secret: secret, validity: validity, now: time.Now}
}

// Issue mints an access token for id.
func (i *Issuer) Issue(id Identity) (string, error) {
	return i.issue(id, PurposeAccess, i.validity)
}

// IssueEmailVerification mints a token that is only accepted by
// VerifyPurpose(token, PurposeVerifyEmail).
func (i *Issuer) IssueEmailVerification(id Identity, validity time.Duration) (string, error) {
	return i.issue(id, PurposeVerifyEmail, validity)
}

func (i *Issuer) issue(id Identity, purpose Purpose, validity time.Duration) (string, error) {
	now := i.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  strconv.FormatInt(id.UserID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
		Version:  ClaimsVersion,
		UserID:   id.UserID,
		Email:    id.Email,
		Role:     id.Role,
		Verified: id.Verified,
		Purpose:  purpose,
	}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates an access token.
func (i *Issuer) Verify(token string) (*Claims, error) {
	return i.VerifyPurpose(token, PurposeAccess)
}

// VerifyPurpose validates signature, expiry, schema version and purpose.
func (i *Issuer) VerifyPurpose(token string, purpose Purpose) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Version != ClaimsVersion || claims.Purpose != purpose || claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, ErrMalformed
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	default:
		return ErrMalformed
	}
}
