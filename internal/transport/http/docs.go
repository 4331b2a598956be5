// Package classification of Product Chatbot API
//
// # Documentation for Product Chatbot API
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import "github.com/Ghost-141/chatbot-server/internal/domain"

// NOTE: the wrapper types below only document the API for swagger
// generation, the handlers do not use them

// An error with its HTTP status code
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in: body
	Body ErrorResponse
}

// Validation errors defined as an array of strings
// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// Collection of the errors
	// in: body
	Body ValidationError
}

// The product catalog
// swagger:response productsResponse
type productsResponseWrapper struct {
	// in: body
	Body domain.ProductList
}

// The model's answer
// swagger:response chatResponse
type chatResponseWrapper struct {
	// in: body
	Body domain.ChatResponse
}

// Vector index state
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in: body
	Body Health
}

// swagger:parameters chat
type chatBodyParamsWrapper struct {
	// The question to answer
	// in: body
	// required: true
	Body domain.ChatQuery
}

// ErrorResponse is the body go-openapi/errors writes for API errors
//
// swagger:model
type ErrorResponse struct {
	// The HTTP status code
	//
	// required: true
	Code int32 `json:"code"`

	// The error message
	//
	// required: true
	Message string `json:"message"`
}

// ValidationError defines the structure for API validation error responses
//
// swagger:model
type ValidationError struct {
	// The validation errors
	//
	// required: true
	Messages []string `json:"messages"`
}

// Health reports the vector index state
//
// swagger:model
type Health struct {
	// Where the index came from: loaded, persisted or in-memory
	//
	// required: true
	Status string `json:"status"`

	// Number of indexed documents
	//
	// required: true
	Documents int `json:"documents"`
}
