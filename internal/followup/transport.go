package followup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vitalstory/vitalstory/internal/llm"
	"github.com/vitalstory/vitalstory/internal/prompt"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Transport delivers a log entry to a question source and returns the raw
// response body. Failures are reported as *TransportError.
type Transport interface {
	Send(ctx context.Context, logText string) (string, error)
}

// EndpointTransport posts log entries to a remote inference endpoint.
// It makes exactly one attempt per call.
type EndpointTransport struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// EndpointOption configures an EndpointTransport.
type EndpointOption func(*EndpointTransport)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) EndpointOption {
	return func(t *EndpointTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout bounds each request. Zero leaves the client unchanged.
func WithTimeout(d time.Duration) EndpointOption {
	return func(t *EndpointTransport) {
		if d <= 0 {
			return
		}
		c := *t.client
		c.Timeout = d
		t.client = &c
	}
}

// NewEndpointTransport creates a transport for url.
func NewEndpointTransport(url string, logger *slog.Logger, opts ...EndpointOption) (*EndpointTransport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("endpoint url cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	t := &EndpointTransport{
		url:    url,
		client: &http.Client{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type endpointRequest struct {
	Inputs string `json:"inputs"`
}

// Send implements Transport.
func (t *EndpointTransport) Send(ctx context.Context, logText string) (string, error) {
	payload, err := json.Marshal(endpointRequest{Inputs: logText})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	t.logger.Debug("endpoint responded",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", snippet(body)),
		}
	}
	return string(body), nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "(empty body)"
	}
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// ModelTransport asks a chat model for the questions instead of a remote
// endpoint. The model's reply is treated as the raw response body.
type ModelTransport struct {
	provider llm.Provider
	opts     llm.ChatOptions
	logger   *slog.Logger
}

// NewModelTransport wraps provider. opts may be nil; output is always
// constrained to prompt.FollowUpSchema.
func NewModelTransport(provider llm.Provider, opts *llm.ChatOptions, logger *slog.Logger) (*ModelTransport, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	t := &ModelTransport{provider: provider, logger: logger}
	if opts != nil {
		t.opts = *opts
	}
	t.opts.Schema = prompt.FollowUpSchema()
	return t, nil
}

// Send implements Transport.
func (t *ModelTransport) Send(ctx context.Context, logText string) (string, error) {
	messages, err := prompt.Build(prompt.TypeFollowUp, prompt.BuildOptions{LogText: logText})
	if err != nil {
		return "", &TransportError{Err: err}
	}

	opts := t.opts
	resp, err := t.provider.Chat(ctx, messages, &opts)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	t.logger.Debug("model responded",
		"model", resp.Model,
		"tokens", resp.TokensTotal,
		"bytes", len(resp.Content),
	)
	return resp.Content, nil
}
