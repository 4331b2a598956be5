package domain

import "github.com/go-openapi/strfmt"

// ChatQuery is the body of a chat request
//
// swagger:model
type ChatQuery struct {
	// The user's question
	//
	// required: true
	// example: Tell me more about kiwi
	Message string `json:"message" validate:"required,notblank"`

	// Client-side time the question was asked
	//
	// required: false
	Timestamp *strfmt.DateTime `json:"timestamp,omitempty"`
}

// ChatResponse is the model's answer to a ChatQuery
//
// swagger:model
type ChatResponse struct {
	// required: true
	ModelResponse string `json:"model_response"`
}

// Turn is one earlier exchange of a conversation
type Turn struct {
	Question string
	Answer   string
}
