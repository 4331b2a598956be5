package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/felixge/httpsnoop"
	oaierrors "github.com/go-openapi/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type contextKey string

// ContextKeyChatQuery holds the validated *domain.ChatQuery of a request
const ContextKeyChatQuery contextKey = "chat-query"

// RequestIDHeader carries the id logged for every request
const RequestIDHeader = "X-Request-ID"

// Middleware struct holds dependencies for middleware functions
type Middleware struct {
	Logger    hclog.Logger
	Validator *domain.Validation
}

func NewMiddleware(logger hclog.Logger, validator *domain.Validation) *Middleware {
	return &Middleware{
		Logger:    logger,
		Validator: validator,
	}
}

// ContentTypeMiddleware sets the Content-Type header to application/json
func (m *Middleware) ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs every request with its id, status and duration
func (m *Middleware) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		m.Logger.Debug("Incoming request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
		)

		w.Header().Set(RequestIDHeader, requestID)

		// httpsnoop keeps the optional interfaces of w, websocket upgrades need Hijacker
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		m.Logger.Info("Completed request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
			"status", metrics.Code,
			"bytes", metrics.Written,
			"duration", metrics.Duration,
		)
	})
}

// ChatQueryValidationMiddleware decodes and validates the chat query in the
// request body and adds it to the context
func (m *Middleware) ChatQueryValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var query domain.ChatQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			m.Logger.Error("Error decoding chat query", "error", err)
			oaierrors.ServeError(w, r, oaierrors.New(http.StatusBadRequest, "Invalid chat query"))
			return
		}

		if errs := m.Validator.Validate(&query); len(errs) > 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ValidationError{Messages: errs.Messages()})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyChatQuery, &query)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
