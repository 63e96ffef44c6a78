package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/cryptox"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docshare/internal/server/storage"
)

// DownloadPath is the route that redeems link tokens.
const DownloadPath = "/files/download"

// LinkService mints and redeems download links.
//
// A link token is the encrypted binding (file id, subject id, expiry). The
// service keeps no per-link state: any number of redemptions may run
// concurrently and each is decided from the token, the bearer identity and
// the current file record alone.
type LinkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     storage.Gateway
	cipher      *cryptox.LinkCipher
	verifier    *auth.Verifier
	baseURL     string
	validity    time.Duration
	now         func() time.Time
}

func NewLinkService(db *sql.DB, rm repomanager.RepositoryManager, gw storage.Gateway,
	cipher *cryptox.LinkCipher, verifier *auth.Verifier, cfg *config.Config) *LinkService {
	return &LinkService{
		db:          db,
		repomanager: rm,
		gateway:     gw,
		cipher:      cipher,
		verifier:    verifier,
		baseURL:     cfg.BaseURL,
		validity:    cfg.LinkValidityDuration,
		now:         time.Now,
	}
}

// MintLink returns a download URL for fileID bound to the requester.
//
// The requester must have a verified email. Clients may link any file;
// operations users only files they uploaded themselves.
func (s *LinkService) MintLink(ctx context.Context, fileID int64, requester *auth.Claims) (string, error) {
	if requester == nil {
		return "", common.ErrorUnauthorized
	}

	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !requester.Verified {
		return "", fmt.Errorf("%w: %w", common.ErrorForbidden, common.ErrorNotVerified)
	}
	if requester.Role == models.RoleOperations && f.UploadedBy != requester.UserID {
		return "", common.ErrorForbidden
	}

	b := binding{FileID: f.ID, SubjectID: requester.UserID}
	if s.validity > 0 {
		b.ExpiresAt = s.now().Add(s.validity).Unix()
	}

	plaintext, err := encodeBinding(b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	token, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return s.downloadURL(token)
}

func (s *LinkService) downloadURL(token string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %w", common.ErrorInternal, err)
	}
	u = u.JoinPath(DownloadPath)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// RedeemLink resolves a link token presented together with an identity
// token. Checks run in a fixed order and the first failure decides the
// error category:
//
//   - missing or invalid identity: common.ErrorUnauthorized
//   - token fails decryption: common.ErrorBadRequest (cryptox.ErrIntegrity)
//   - payload is not a binding: common.ErrorBadRequest (ErrMalformedBinding)
//   - link bound to another subject: common.ErrorForbidden
//   - link past its expiry: common.ErrorBadRequest (ErrLinkExpired)
//   - file record or content gone: common.ErrorNotFound
//
// The subject check happens before any file lookup, so a foreign link
// reveals nothing about whether its file still exists.
func (s *LinkService) RedeemLink(ctx context.Context, linkToken, identityToken string) (*models.File, error) {
	if identityToken == "" {
		return nil, common.ErrorUnauthorized
	}
	claims, err := s.verifier.Verify(ctx, identityToken)
	if err != nil {
		if auth.IsAuthError(err) {
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	plaintext, err := s.cipher.Decrypt(linkToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorBadRequest, err)
	}

	b, err := decodeBinding(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorBadRequest, err)
	}

	if b.SubjectID != claims.UserID {
		return nil, common.ErrorForbidden
	}

	if b.ExpiresAt != 0 && !s.now().Before(time.Unix(b.ExpiresAt, 0)) {
		return nil, fmt.Errorf("%w: %w", common.ErrorBadRequest, ErrLinkExpired)
	}

	f, err := s.repomanager.Files(s.db).GetByID(ctx, b.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := s.gateway.Stat(ctx, f.Path); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return f, nil
}
