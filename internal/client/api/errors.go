package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// categoryOf maps an HTTP status to the shared error category.
func categoryOf(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrorBadRequest
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		return common.ErrorInternal
	}
}

// responseError builds an error from a non 2xx response. The server's
// message is kept so that errors.Is works on it when it names a known
// condition.
func responseError(resp *http.Response) error {
	category := categoryOf(resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body)

	switch body.Error {
	case common.ErrorNotVerified.Error():
		return fmt.Errorf("%w: %w", category, common.ErrorNotVerified)
	case common.ErrorUnsupportedFileType.Error():
		return fmt.Errorf("%w: %w", category, common.ErrorUnsupportedFileType)
	case "", category.Error():
		return category
	default:
		return fmt.Errorf("%w: %s", category, body.Error)
	}
}
