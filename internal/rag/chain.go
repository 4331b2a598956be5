package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/llm"
	"github.com/hashicorp/go-hclog"
)

// Answerer answers one chat turn given the earlier turns of the conversation
type Answerer interface {
	Answer(ctx context.Context, question string, history []domain.Turn) (string, error)
}

// Chain composes retrieval, prompt rendering and generation
type Chain struct {
	retriever Retriever
	prompt    *Prompt
	model     llm.ChatModel
	logger    hclog.Logger
}

// NewChain answers with model from the documents retriever finds, rendered into prompt
func NewChain(retriever Retriever, prompt *Prompt, model llm.ChatModel, logger hclog.Logger) *Chain {
	return &Chain{
		retriever: retriever,
		prompt:    prompt,
		model:     model,
		logger:    logger,
	}
}

// Answer retrieves context for the question alone, renders the prompt and
// sends it after the conversation history to the chat model.
func (c *Chain) Answer(ctx context.Context, question string, history []domain.Turn) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrEmptyQuestion
	}

	start := time.Now()
	docs, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		c.logger.Error("Unable to retrieve documents", "error", err)
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	c.logger.Debug("Retrieved documents", "count", len(docs), "duration", time.Since(start))

	rendered, err := c.prompt.Render(question, docs)
	if err != nil {
		return "", err
	}

	messages := make([]llm.Message, 0, 2*len(history)+1)
	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.Question},
			llm.Message{Role: llm.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: rendered})

	answer, err := c.model.Complete(ctx, messages)
	if err != nil {
		c.logger.Error("Chat completion failed", "error", err)
		return "", err
	}

	return answer, nil
}
