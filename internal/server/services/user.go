// Package services contains server-side business logic. This file implements
// UserService, which handles signup, email verification, login, logout and
// issuing/refreshing identity tokens plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/cryptox"
	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password Signup accepts.
const MinPasswordLength = 8

// VerifyEmailPath is the route that consumes verification tokens.
const VerifyEmailPath = "/verify-email"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
//   - Signup / VerifyEmail: create accounts and confirm client emails
//   - Login: verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - Logout: revoke the presented access token and its refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	issuer                       *auth.Issuer
	notifier                     Notifier
	baseURL                      string
	refreshTokenValidityDuration time.Duration
	emailTokenValidityDuration   time.Duration
	now                          func() time.Time

	// dummyHash keeps Login timing similar for unknown emails.
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, notifier Notifier, cfg *config.Config) *UserService {
	dummy, err := cryptox.HashPassword(common.RandomBytes(16))
	if err != nil {
		panic(err)
	}
	return &UserService{
		db:                           db,
		repomanager:                  m,
		issuer:                       issuer,
		notifier:                     notifier,
		baseURL:                      cfg.BaseURL,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		emailTokenValidityDuration:   cfg.EmailTokenValidityDuration,
		now:                          time.Now,
		dummyHash:                    dummy,
	}
}

// Signup creates an account and returns its first token pair. Operations
// accounts are verified immediately; client accounts are sent a
// verification link through the Notifier.
func (s *UserService) Signup(ctx context.Context, email, password string, role models.Role) (*TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password too short", common.ErrorBadRequest)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role", common.ErrorBadRequest)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   role == models.RoleOperations,
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = u
		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: error creating user: %w", common.ErrorInternal, err)
	}

	if !user.IsVerified {
		if err := s.sendVerification(ctx, user); err != nil {
			return nil, err
		}
	}

	return pair, nil
}

func (s *UserService) sendVerification(ctx context.Context, user *models.User) error {
	token, err := s.issuer.IssueEmailVerification(auth.IdentityOf(user), s.emailTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("%w: base url: %w", common.ErrorInternal, err)
	}
	u = u.JoinPath(VerifyEmailPath)
	u.RawQuery = url.Values{"token": {token}}.Encode()

	if err := s.notifier.SendVerification(ctx, user.Email, u.String()); err != nil {
		return fmt.Errorf("%w: sending verification: %w", common.ErrorInternal, err)
	}
	return nil
}

// VerifyEmail consumes a verification token. Verifying twice is harmless.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.issuer.VerifyPurpose(token, auth.PurposeVerifyEmail)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorBadRequest, err)
	}
	if err := s.repomanager.Users(s.db).MarkVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return nil
}

// Login checks credentials and, on success, returns a new TokenPair.
// Unknown email and wrong password are indistinguishable to the caller.
// Unverified accounts get common.ErrorForbidden wrapping ErrorNotVerified.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, []byte(password))
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrorInvalidCredentials)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrorInvalidCredentials)
	}
	if !user.IsVerified {
		return nil, fmt.Errorf("%w: %w", common.ErrorForbidden, common.ErrorNotVerified)
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// RefreshToken consumes refreshToken and returns a new pair. Each refresh
// token works once; a second use, or use after expiry, is Unauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("consuming refresh token: %w", err)
		}
		if token.ExpiredAt(s.now()) {
			return fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrRefreshTokenExpired)
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			// dangling token: internal, not NotFound
			return fmt.Errorf("loading user %d: %v", token.UserID, err)
		}
		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return pair, nil
}

// Logout denylists the access token described by claims until its own
// expiry and deletes refreshToken when one is given.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims == nil {
		return common.ErrorUnauthorized
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Revocations(tx).Revoke(ctx, claims.ID, expires); err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		if refreshToken == "" {
			return nil
		}
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		return nil
	})
}

// PurgeExpired drops denylist entries and refresh tokens that can no
// longer be used anyway. It returns the number of rows removed.
func (s *UserService) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now()

	revoked, err := s.repomanager.Revocations(s.db).Purge(ctx, now)
	if err != nil {
		return 0, err
	}
	refresh, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return revoked, err
	}
	return revoked + refresh, nil
}

// --- helpers below ---

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: invalid email", common.ErrorBadRequest)
	}
	return strings.ToLower(addr.Address), nil
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.RandomToken(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.issuer.Issue(auth.IdentityOf(user))
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
