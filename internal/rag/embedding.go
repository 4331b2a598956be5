package rag

import (
	"fmt"

	"github.com/Ghost-141/chatbot-server/internal/config"
	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/philippgille/chromem-go"
)

// NewEmbeddingFunc returns the embedding provider selected by cfg.
// The ollama provider defaults to all-minilm (all-MiniLM-L6-v2, 384 dimensions).
func NewEmbeddingFunc(cfg config.EmbeddingConfig, openAIKey string) (chromem.EmbeddingFunc, error) {
	switch cfg.Provider {
	case "ollama", "":
		return chromem.NewEmbeddingFuncOllama(cfg.Model, cfg.BaseURL), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai embeddings: %w", domain.ErrMissingAPIKey)
		}
		if cfg.BaseURL != "" {
			return chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, openAIKey, cfg.Model, nil), nil
		}
		return chromem.NewEmbeddingFuncOpenAI(openAIKey, chromem.EmbeddingModelOpenAI(cfg.Model)), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEmbeddingProvider, cfg.Provider)
	}
}
