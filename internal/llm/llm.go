// Package llm provides an abstraction layer for Large Language Model interactions.
//
// The package defines a Provider interface so the follow-up pipeline can send
// its prompt to a local model without depending on a specific client library.
//
// Example usage:
//
//	provider, err := llm.NewProvider(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := provider.Chat(ctx, []llm.Message{
//	    {Role: "system", Content: "You are a healthcare assistant."},
//	    {Role: "user", Content: prompt.FollowUp(logText)},
//	}, &llm.ChatOptions{Schema: prompt.FollowUpSchema()})
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitalstory/vitalstory/internal/config"
	"github.com/vitalstory/vitalstory/internal/llm/ollama"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Heartbeat checks if the provider is reachable and healthy.
	Heartbeat(ctx context.Context) error

	// ModelAvailable reports whether model is ready for use.
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int // 0 = provider default

	// Schema constrains output to a JSON Schema where the provider supports it.
	Schema json.RawMessage
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// Common errors returned by LLM providers.
var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
)

// NewProvider creates an LLM provider from the configuration.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	logger.Debug("creating llm provider", "type", config.BackendOllama)

	p, err := ollama.New(ollama.Config{
		Host:  cfg.LLM.Ollama.Host,
		Model: cfg.LLM.Ollama.Model,
	}, logger)
	if err != nil {
		return nil, translateError(err)
	}
	return &ollamaProviderAdapter{provider: p}, nil
}

// ollamaProviderAdapter adapts ollama.Provider to Provider; the subpackage
// cannot import llm without a cycle.
type ollamaProviderAdapter struct {
	provider *ollama.Provider
}

func (a *ollamaProviderAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	msgs := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = ollama.Message{Role: msg.Role, Content: msg.Content}
	}

	var ollamaOpts *ollama.ChatOptions
	if opts != nil {
		ollamaOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
			Schema:      opts.Schema,
		}
	}

	resp, err := a.provider.Chat(ctx, msgs, ollamaOpts)
	if err != nil {
		return nil, translateError(err)
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

func (a *ollamaProviderAdapter) Heartbeat(ctx context.Context) error {
	return translateError(a.provider.Heartbeat(ctx))
}

func (a *ollamaProviderAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	ok, err := a.provider.ModelAvailable(ctx, model)
	return ok, translateError(err)
}

// translateError maps subpackage sentinels onto this package's sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ollama.ErrContextCanceled):
		return fmt.Errorf("%w: %v", ErrContextCanceled, err)
	case errors.Is(err, ollama.ErrProviderUnavailable):
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	default:
		return err
	}
}
