package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", ts.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, TokenPair{AccessToken: "a", RefreshToken: "r"})
	})

	pair, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, &TokenPair{AccessToken: "a", RefreshToken: "r"}, pair)
	assert.Equal(t, map[string]string{"email": "a@b.c", "password": "pw"}, got)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   []error
	}{
		{"unauthorized", http.StatusUnauthorized, "unauthorized", []error{common.ErrorUnauthorized}},
		{"not verified", http.StatusForbidden, "email not verified", []error{common.ErrorForbidden, common.ErrorNotVerified}},
		{"not found", http.StatusNotFound, "not found", []error{common.ErrorNotFound}},
		{"conflict", http.StatusConflict, "already exists", []error{common.ErrorAlreadyExists}},
		{"unsupported", http.StatusBadRequest, "unsupported file type", []error{common.ErrorBadRequest, common.ErrorUnsupportedFileType}},
		{"too large", http.StatusRequestEntityTooLarge, "file too large", []error{common.ErrorBadRequest}},
		{"server", http.StatusInternalServerError, "", []error{common.ErrorInternal}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.msg == "" {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, map[string]string{"error": tt.msg})
			})

			_, err := c.ListFiles(context.Background(), "tok")
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestListFiles_SendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []File{{ID: 1, Filename: "a.docx", UploadedBy: 2, Size: 3}})
	})

	files, err := c.ListFiles(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []File{{ID: 1, Filename: "a.docx", UploadedBy: 2, Size: 3}}, files)
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/upload", r.URL.Path)
		f, h, err := r.FormFile("file")
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		require.Equal(t, "report.docx", h.Filename)
		require.Equal(t, "data", string(b))
		writeJSON(w, http.StatusCreated, File{ID: 5, Filename: "report.docx"})
	})

	f, err := c.Upload(context.Background(), "tok", "report.docx", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.ID)
}

func TestMintLink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "42", r.URL.Query().Get("file_id"))
		writeJSON(w, http.StatusOK, map[string]string{"download_url": "http://x/files/download?token=t"})
	})

	link, err := c.MintLink(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "http://x/files/download?token=t", link)
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="q3 report.docx"`)
		_, _ = io.WriteString(w, "hello")
	}))
	defer ts.Close()
	c := NewClient(ts.URL, ts.Client())

	d, err := c.Download(context.Background(), "tok", ts.URL+"/files/download?token=t")
	require.NoError(t, err)
	defer d.Body.Close()

	b, err := io.ReadAll(d.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, "q3 report.docx", d.Filename)

	_, err = c.Download(context.Background(), "", ts.URL+"/files/download?token=t")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = c.Download(context.Background(), "tok", "://bad")
	assert.ErrorIs(t, err, common.ErrorBadRequest)
}

func TestLogout_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Logout(context.Background(), "a", "r"))
}
