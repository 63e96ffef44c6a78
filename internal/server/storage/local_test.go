package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }
	defer func() { timeNow = orig }()

	k1 := NewKey("Quarterly Report.DOCX")
	k2 := NewKey("Quarterly Report.DOCX")

	assert.Regexp(t, regexp.MustCompile(`^files/2025/3/7/[0-9a-f-]{36}\.docx$`), k1)
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, k1, "Quarterly")
}

func TestLocalGateway_RoundTrip(t *testing.T) {
	g, err := NewLocalGateway(t.TempDir())
	require.NoError(t, err)

	content := []byte("PK\x03\x04 fake office document")
	obj, err := g.Save(context.Background(), "deck.pptx", bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), obj.Size)
	assert.Equal(t, Checksum(content), obj.Checksum)
	assert.True(t, strings.HasSuffix(obj.Path, ".pptx"))

	require.NoError(t, g.Stat(context.Background(), obj.Path))

	rc, err := g.Open(context.Background(), obj.Path)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, content, got)

	require.NoError(t, g.Delete(context.Background(), obj.Path))
	assert.ErrorIs(t, g.Stat(context.Background(), obj.Path), common.ErrorNotFound)
	assert.ErrorIs(t, g.Delete(context.Background(), obj.Path), common.ErrorNotFound)
}

func TestLocalGateway_Missing(t *testing.T) {
	g, err := NewLocalGateway(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, g.Stat(context.Background(), "files/2025/1/1/nope.docx"), common.ErrorNotFound)

	_, err = g.Open(context.Background(), "files/2025/1/1/nope.docx")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLocalGateway_DirectoryIsNotContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "files", "dir"), 0o750))

	g, err := NewLocalGateway(root)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Stat(context.Background(), "files/dir"), common.ErrorNotFound)
}

func TestLocalGateway_RejectsEscapingKeys(t *testing.T) {
	g, err := NewLocalGateway(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../secret", "/etc/passwd", "files/../../x", ""} {
		assert.ErrorIs(t, g.Stat(context.Background(), key), common.ErrorBadRequest, key)
		_, err := g.Open(context.Background(), key)
		assert.ErrorIs(t, err, common.ErrorBadRequest, key)
	}
}

func TestLocalGateway_SaveCancelled(t *testing.T) {
	root := t.TempDir()
	g, err := NewLocalGateway(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Save(ctx, "a.docx", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)

	// no partial files left behind
	var leftovers []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	assert.Empty(t, leftovers)
}
