// Package llm adapts the OpenAI chat-completion API to the Completer port.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 512
	defaultTimeout   = 30 * time.Second
)

// OpenAI implements domain.Completer.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *slog.Logger
}

func New(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &OpenAI{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// Complete sends one system+user exchange and returns the trimmed reply.
// The per-call timeout bounds how long a hung upstream can stall a message.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty choice list")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
