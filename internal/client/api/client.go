// Package api is a typed client for the docshare HTTP endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/netx"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type File struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	UploadedBy int64  `json:"uploaded_by"`
	Size       int64  `json:"size"`
}

// Download is an open download. The caller closes Body.
type Download struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/ping", "", nil, nil)
}

func (c *Client) Signup(ctx context.Context, email, password, role string) (*TokenPair, error) {
	var out TokenPair
	in := map[string]string{"email": email, "password": password, "role": role}
	if err := c.doJSON(ctx, http.MethodPost, "/signup", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodGet, "/verify-email?token="+url.QueryEscape(token), "", nil, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var out TokenPair
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out TokenPair
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/refresh", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	in := map[string]string{"refresh_token": refreshToken}
	return c.doJSON(ctx, http.MethodPost, "/logout", accessToken, in, nil)
}

func (c *Client) ListFiles(ctx context.Context, accessToken string) ([]File, error) {
	var out []File
	if err := c.doJSON(ctx, http.MethodGet, "/files", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload streams r to the server as filename.
func (c *Client) Upload(ctx context.Context, accessToken, filename string, r io.Reader) (*File, error) {
	req, err := netx.NewMultipartUpload(ctx, c.baseURL+"/files/upload", "file", filename, r)
	if err != nil {
		return nil, err
	}
	netx.SetBearer(req, accessToken)

	var out File
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MintLink(ctx context.Context, accessToken string, fileID int64) (string, error) {
	var out struct {
		DownloadURL string `json:"download_url"`
	}
	path := "/files/link?file_id=" + strconv.FormatInt(fileID, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, &out); err != nil {
		return "", err
	}
	return out.DownloadURL, nil
}

// Download opens a download link. link is the full URL returned by MintLink.
func (c *Client) Download(ctx context.Context, accessToken, link string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid link", common.ErrorBadRequest)
	}
	netx.SetBearer(req, accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if err := netx.CheckStatus(resp); err != nil {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}

	d := &Download{Size: resp.ContentLength, Body: resp.Body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	netx.SetBearer(req, token)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := netx.CheckStatus(resp); err != nil {
		return responseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
