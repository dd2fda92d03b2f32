package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/llm"
)

// ErrChatUnavailable is returned when no completion endpoint is configured.
var ErrChatUnavailable = errors.New("chat is not available")

// ChatService provides the assistant conversation entry point.
type ChatService interface {
	Send(ctx context.Context, message string) (string, error)
}

type chatService struct {
	client *llm.Client
	logger *zap.Logger
}

// NewChatService creates the chat service. client may be nil, in which case
// every call fails with ErrChatUnavailable.
func NewChatService(client *llm.Client, logger *zap.Logger) ChatService {
	return &chatService{
		client: client,
		logger: logger.Named("chat-service"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) Send(ctx context.Context, message string) (string, error) {
	if s.client == nil {
		return "", ErrChatUnavailable
	}

	reply, err := s.client.Complete(ctx, message)
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}
