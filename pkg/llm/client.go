// Package llm provides OpenAI-compatible chat completion functionality.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/config"
)

// systemPrompt frames the assistant's role for every conversation.
const systemPrompt = "You are PropertyConnect AI assistant helping users with real-estate queries."

// Client provides access to an OpenAI-compatible completion endpoint.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a new chat client. Returns nil when no API key is
// configured; callers treat a nil client as chat disabled.
func NewClient(cfg *config.ChatConfig, logger *zap.Logger) *Client {
	if !cfg.IsAvailable() {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}
}

// Reply holds a chat completion with usage stats.
type Reply struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Complete generates an assistant reply for a user message.
func (c *Client) Complete(ctx context.Context, message string) (*Reply, error) {
	c.logger.Debug("chat request",
		zap.String("model", c.model),
		zap.Int("message_len", len(message)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		c.logger.Error("chat request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	c.logger.Info("chat request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Reply{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
