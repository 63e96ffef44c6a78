package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docshare/internal/server/storage"
)

// allowedExtensions are the office formats operations users may upload.
var allowedExtensions = map[string]struct{}{
	".pptx": {},
	".docx": {},
	".xlsx": {},
}

// AllowedExtension reports whether name has an uploadable extension.
func AllowedExtension(name string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     storage.Gateway
	log         logging.Logger
}

func NewFileService(db *sql.DB, rm repomanager.RepositoryManager, gw storage.Gateway, log logging.Logger) *FileService {
	return &FileService{db: db, repomanager: rm, gateway: gw, log: log.With("module", "files")}
}

// Upload stores content and records its metadata. Only verified
// operations users may upload.
func (s *FileService) Upload(ctx context.Context, uploader *auth.Claims, filename string, r io.Reader) (*models.File, error) {
	if uploader == nil {
		return nil, common.ErrorUnauthorized
	}
	if uploader.Role != models.RoleOperations {
		return nil, common.ErrorForbidden
	}
	if !uploader.Verified {
		return nil, fmt.Errorf("%w: %w", common.ErrorForbidden, common.ErrorNotVerified)
	}

	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(filename, `\`, "/")))
	if name == "/" || name == "." || !AllowedExtension(name) {
		return nil, fmt.Errorf("%w: %w", common.ErrorBadRequest, common.ErrorUnsupportedFileType)
	}

	obj, err := s.gateway.Save(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("%w: saving content: %w", common.ErrorInternal, err)
	}

	f, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		Filename:   name,
		Path:       obj.Path,
		UploadedBy: uploader.UserID,
		Size:       obj.Size,
		Checksum:   obj.Checksum,
	})
	if err != nil {
		if delErr := s.gateway.Delete(ctx, obj.Path); delErr != nil {
			s.log.Warn(ctx, "orphaned upload content", "error", common.Category(delErr))
		}
		return nil, fmt.Errorf("%w: recording file: %w", common.ErrorInternal, err)
	}

	return f, nil
}

// List returns the files visible to requester: clients see every file,
// operations users see their own uploads.
func (s *FileService) List(ctx context.Context, requester *auth.Claims) ([]*models.File, error) {
	if requester == nil {
		return nil, common.ErrorUnauthorized
	}
	if !requester.Verified {
		return nil, fmt.Errorf("%w: %w", common.ErrorForbidden, common.ErrorNotVerified)
	}

	repo := s.repomanager.Files(s.db)

	var (
		files []*models.File
		err   error
	)
	if requester.Role == models.RoleOperations {
		files, err = repo.ListByUploader(ctx, requester.UserID)
	} else {
		files, err = repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return files, nil
}

// Open streams the content of f. The caller closes the reader.
func (s *FileService) Open(ctx context.Context, f *models.File) (io.ReadCloser, error) {
	rc, err := s.gateway.Open(ctx, f.Path)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return rc, nil
}
