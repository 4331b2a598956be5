package service

import (
	"context"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/rag"
	"github.com/hashicorp/go-hclog"
)

type ChatService interface {
	// StartChat answers message in the context of the earlier turns of
	// the same conversation. history may be empty.
	StartChat(ctx context.Context, message string, history []domain.Turn) (*domain.ChatResponse, error)
}

type chatService struct {
	answerer rag.Answerer
	logger   hclog.Logger
}

func NewChatService(answerer rag.Answerer, logger hclog.Logger) ChatService {
	return &chatService{
		answerer: answerer,
		logger:   logger,
	}
}

func (s *chatService) StartChat(ctx context.Context, message string, history []domain.Turn) (*domain.ChatResponse, error) {
	s.logger.Debug("Answering question", "history_turns", len(history))
	start := time.Now()

	answer, err := s.answerer.Answer(ctx, message, history)
	if err != nil {
		s.logger.Error("Unable to answer question", "error", err)
		return nil, err
	}

	s.logger.Info("Answered question", "duration", time.Since(start))
	return &domain.ChatResponse{ModelResponse: answer}, nil
}
