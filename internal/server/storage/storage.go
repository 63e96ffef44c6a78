// Package storage is the file transfer gateway: it stores uploaded document
// bytes under opaque keys and serves them back for download. Two backends
// exist, a local directory and an S3-compatible bucket.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Object describes stored content.
type Object struct {
	// Path is the storage key. It is internal and never shown to clients.
	Path     string
	Size     int64
	Checksum string
}

// Gateway stores and retrieves file content. Missing content is reported
// as common.ErrorNotFound by Stat, Open and Delete.
type Gateway interface {
	Save(ctx context.Context, name string, r io.Reader) (*Object, error)
	Stat(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

var timeNow = time.Now

// NewKey returns a fresh storage key for a file originally called name.
// Only the extension of name survives.
func NewKey(name string) string {
	d := timeNow()
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("files/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// hashingReader counts and hashes everything read through it.
type hashingReader struct {
	ctx context.Context
	r   io.Reader
	h   *blake3.Hasher
	n   int64
}

func newHashingReader(ctx context.Context, r io.Reader) *hashingReader {
	return &hashingReader{ctx: ctx, r: r, h: blake3.New()}
}

func (hr *hashingReader) Read(p []byte) (int, error) {
	if err := hr.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

func (hr *hashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}

// Checksum returns the hex BLAKE3 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
