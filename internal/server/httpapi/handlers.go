package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type fileResponse struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	UploadedBy int64  `json:"uploaded_by,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

type linkResponse struct {
	DownloadURL string `json:"download_url"`
}

type messageResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

func toTokenPairResponse(p *services.TokenPair) tokenPairResponse {
	return tokenPairResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Status: "OK"})
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleClient
	}

	pair, err := s.users.Signup(r.Context(), req.Email, req.Password, role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "role", string(role))
	writeJSON(w, http.StatusCreated, toTokenPairResponse(pair))
}

func (s *HTTPServer) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, r, common.ErrorBadRequest)
		return
	}
	if err := s.users.VerifyEmail(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "email verified"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		s.writeError(w, r, common.ErrorBadRequest)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	if err := s.users.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload streams the "file" part of a multipart body into storage
// without buffering it in memory.
func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+64<<10)
	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, common.ErrorBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			s.writeError(w, r, fmt.Errorf("%w: missing file part", common.ErrorBadRequest))
			return
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, r, err)
			} else {
				s.writeError(w, r, common.ErrorBadRequest)
			}
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		f, err := s.files.Upload(r.Context(), claims, part.FileName(), &limitedReader{r: part, n: s.maxUploadSize})
		_ = part.Close()
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.logger.Info(r.Context(), "Uploaded", "file_id", f.ID, "size", f.Size)
		writeJSON(w, http.StatusCreated, fileResponse{ID: f.ID, Filename: f.Filename})
		return
	}
}

func (s *HTTPServer) handleListFiles(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	files, err := s.files.List(r.Context(), claims)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, fileResponse{ID: f.ID, Filename: f.Filename, UploadedBy: f.UploadedBy, Size: f.Size})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleMintLink(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	fileID, err := strconv.ParseInt(r.URL.Query().Get("file_id"), 10, 64)
	if err != nil || fileID <= 0 {
		s.writeError(w, r, common.ErrorBadRequest)
		return
	}

	link, err := s.links.MintLink(r.Context(), fileID, claims)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{DownloadURL: link})
}

// handleDownload redeems a link. Identity is checked by the link service
// itself, so this route is not wrapped in requireAuth.
func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := s.links.RedeemLink(r.Context(), r.URL.Query().Get("token"), bearerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rc, err := s.files.Open(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename}))
	if f.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(f.Size, 10))
	}
	if f.Checksum != "" {
		h.Set("ETag", strconv.Quote(f.Checksum))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn(r.Context(), "download interrupted", "file_id", f.ID)
	}
}

// limitedReader fails with *http.MaxBytesError once more than n bytes are
// read, so the gateway aborts the write instead of storing a truncated file.
type limitedReader struct {
	r     io.Reader
	n     int64
	total int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.total += int64(n)
	if l.total > l.n {
		return 0, &http.MaxBytesError{Limit: l.n}
	}
	return n, err
}
