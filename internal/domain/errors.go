package domain

import "errors"

// Domain-level errors
var (
	ErrInvalidCatalog           = errors.New("invalid product catalog")
	ErrEmptyQuestion            = errors.New("question must be a non-empty string")
	ErrMalformedResponse        = errors.New("model response did not include an answer")
	ErrUpstream                 = errors.New("chat completion request failed")
	ErrMissingAPIKey            = errors.New("API key not found in environment variables")
	ErrUnknownEmbeddingProvider = errors.New("unknown embedding provider")
)
