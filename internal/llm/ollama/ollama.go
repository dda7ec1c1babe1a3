// Package ollama provides an Ollama implementation of the llm.Provider interface.
//
// To avoid an import cycle the package declares its own message and option
// types; the parent llm package adapts them.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "llama3.2"

// Provider talks to a local Ollama server.
type Provider struct {
	client *api.Client
	config Config
	logger *slog.Logger
}

// Config holds Ollama-specific configuration.
type Config struct {
	// Host is the Ollama API endpoint (e.g., "http://localhost:11434").
	// Empty means OLLAMA_HOST or the library default.
	Host string

	// Model is the default model to use (e.g., "llama3.2")
	Model string

	// HTTPClient overrides the client used when Host is set.
	HTTPClient *http.Client
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures a single chat call.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int

	// Schema asks the server to constrain output to this JSON Schema. The
	// plain "json" format only admits a top-level object.
	Schema json.RawMessage
}

// Response is a complete (non-streamed) chat reply.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
)

// New creates a new Ollama provider.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	var client *api.Client
	if cfg.Host != "" {
		parsedURL, err := url.Parse(cfg.Host)
		if err != nil {
			logger.Error("invalid ollama host URL", "host", cfg.Host, "error", err)
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(parsedURL, httpClient)
		logger.Debug("created ollama client with explicit host", "host", cfg.Host)
	} else {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			logger.Error("failed to create ollama client from environment", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		client = c
		logger.Debug("created ollama client from environment")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
		logger.Debug("using default model", "model", cfg.Model)
	}

	return &Provider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Chat sends messages and waits for the complete reply.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	req := p.buildRequest(messages, opts)
	p.logger.Debug("sending chat request", "model", req.Model, "messages", len(messages), "schema", req.Format != nil)

	var reply api.ChatResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply = resp
		return nil
	})
	if err != nil {
		p.logger.Error("chat request failed", "error", err, "model", req.Model)
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	p.logger.Debug("chat request completed",
		"model", reply.Model,
		"prompt_tokens", reply.PromptEvalCount,
		"total_tokens", reply.EvalCount)

	return &Response{
		Content:      reply.Message.Content,
		Model:        reply.Model,
		TokensPrompt: reply.PromptEvalCount,
		TokensTotal:  reply.PromptEvalCount + reply.EvalCount,
	}, nil
}

func (p *Provider) buildRequest(messages []Message, opts *ChatOptions) *api.ChatRequest {
	model := p.config.Model
	temperature := float32(0)
	maxTokens := 0
	var schema json.RawMessage
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
		schema = opts.Schema
	}

	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{Role: msg.Role, Content: msg.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": temperature,
		},
	}
	if maxTokens > 0 {
		req.Options["num_predict"] = maxTokens
	}
	if len(schema) > 0 {
		req.Format = schema
	}
	return req
}

// Heartbeat checks if the Ollama service is reachable.
func (p *Provider) Heartbeat(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		p.logger.Error("ollama heartbeat failed", "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	p.logger.Debug("ollama heartbeat successful")
	return nil
}

// ModelAvailable reports whether model has been pulled.
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	list, err := p.client.List(ctx)
	if err != nil {
		p.logger.Error("failed to list models", "error", err)
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	for _, m := range list.Models {
		if m.Name == model || m.Model == model {
			return true, nil
		}
	}
	p.logger.Debug("model not found", "model", model, "available_count", len(list.Models))
	return false, nil
}
