// Package netx holds small HTTP transfer helpers shared by the client.
package netx

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// NewMultipartUpload builds a POST request whose body streams r as the
// named file part of a multipart form. The body is produced on the fly, so
// r is read only while the request is being sent.
func NewMultipartUpload(ctx context.Context, url, field, filename string, r io.Reader) (*http.Request, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	go func() {
		part, err := mw.CreateFormFile(field, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	return req, nil
}

// SetBearer adds an Authorization header when token is not empty.
func SetBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// CheckStatus returns nil for 2xx responses and otherwise an error carrying
// the status line. The body is left for the caller to read and close.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("unexpected status: %s", resp.Status)
}
