package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// LocalGateway keeps content in a directory on the local filesystem.
type LocalGateway struct {
	root string
}

// NewLocalGateway creates root if needed.
func NewLocalGateway(root string) (*LocalGateway, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalGateway{root: root}, nil
}

func (g *LocalGateway) resolve(path string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return "", fmt.Errorf("%w: invalid storage key", common.ErrorBadRequest)
	}
	return filepath.Join(g.root, filepath.FromSlash(path)), nil
}

func (g *LocalGateway) Save(ctx context.Context, name string, r io.Reader) (*Object, error) {
	key := NewKey(name)
	full, err := g.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	hr := newHashingReader(ctx, r)
	if _, err := io.Copy(tmp, hr); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return nil, fmt.Errorf("rename temp file: %w", err)
	}

	return &Object{Path: key, Size: hr.n, Checksum: hr.Sum()}, nil
}

func (g *LocalGateway) Stat(_ context.Context, path string) error {
	full, err := g.resolve(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return common.ErrorNotFound
	}
	return nil
}

func (g *LocalGateway) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := g.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	return f, nil
}

func (g *LocalGateway) Delete(_ context.Context, path string) error {
	full, err := g.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
