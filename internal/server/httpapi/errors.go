package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/docshare/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch common.Category(err) {
	case common.ErrorBadRequest:
		return http.StatusBadRequest
	case common.ErrorUnauthorized:
		return http.StatusUnauthorized
	case common.ErrorForbidden, common.ErrorNotVerified:
		return http.StatusForbidden
	case common.ErrorNotFound:
		return http.StatusNotFound
	case common.ErrorAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends a generic message for err's category. Details stay in
// the log, and only as the category name.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	msg := common.Category(err).Error()
	switch {
	case status == http.StatusRequestEntityTooLarge:
		msg = "file too large"
	case errors.Is(err, common.ErrorNotVerified):
		msg = common.ErrorNotVerified.Error()
	case errors.Is(err, common.ErrorUnsupportedFileType):
		msg = common.ErrorUnsupportedFileType.Error()
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "category", common.Category(err).Error())
	} else {
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "category", common.Category(err).Error())
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return common.ErrorBadRequest
	}
	return nil
}
