// Package transport holds what the HTTP and websocket adapters share.
package transport

import (
	"errors"
	"net/http"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	oaierrors "github.com/go-openapi/errors"
)

// APIError converts a service error into the error returned to clients.
// Errors without a dedicated status become a 500 carrying fallback.
func APIError(err error, fallback string) oaierrors.Error {
	var apiErr oaierrors.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, domain.ErrEmptyQuestion):
		return oaierrors.New(http.StatusBadRequest, "%s", err.Error())
	case errors.Is(err, domain.ErrMalformedResponse), errors.Is(err, domain.ErrUpstream):
		return oaierrors.New(http.StatusBadGateway, "%s", err.Error())
	default:
		return oaierrors.New(http.StatusInternalServerError, "%s", fallback)
	}
}
