package followup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalstory/vitalstory/internal/llm"
	"github.com/vitalstory/vitalstory/internal/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewEndpointTransport(t *testing.T) {
	_, err := NewEndpointTransport("", testLogger())
	require.Error(t, err)

	_, err = NewEndpointTransport("http://localhost", nil)
	require.Error(t, err)

	tr, err := NewEndpointTransport("http://localhost", testLogger(), WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, tr.client.Timeout)
}

func TestWithTimeoutDoesNotMutateSharedClient(t *testing.T) {
	shared := &http.Client{}
	tr, err := NewEndpointTransport("http://localhost", testLogger(), WithHTTPClient(shared), WithTimeout(time.Second))
	require.NoError(t, err)

	assert.Zero(t, shared.Timeout)
	assert.Equal(t, time.Second, tr.client.Timeout)
}

func TestEndpointTransportSend(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"Prediction":["a","b","c"]}`))
	}))
	defer srv.Close()

	tr, err := NewEndpointTransport(srv.URL, testLogger())
	require.NoError(t, err)

	body, err := tr.Send(context.Background(), "I had a headache")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"inputs": "I had a headache"}, gotBody)
	assert.Equal(t, `{"Prediction":["a","b","c"]}`, body)
}

func TestEndpointTransportEmptyLogText(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tr, err := NewEndpointTransport(srv.URL, testLogger())
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"inputs": ""}, gotBody)
}

func TestEndpointTransportErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, 500},
		{"bad gateway", http.StatusBadGateway, 502},
		{"not found", http.StatusNotFound, 404},
		{"redirect without location", http.StatusNotModified, 304},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			tr, err := NewEndpointTransport(srv.URL, testLogger())
			require.NoError(t, err)

			_, err = tr.Send(context.Background(), "entry")
			require.ErrorIs(t, err, ErrTransport)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.wantStatus, te.StatusCode)
		})
	}
}

func TestEndpointTransportNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr, err := NewEndpointTransport(url, testLogger())
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), "entry")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestEndpointTransportTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr, err := NewEndpointTransport(srv.URL, testLogger(), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), "entry")
	require.ErrorIs(t, err, ErrTransport)
}

type fakeProvider struct {
	messages []llm.Message
	opts     *llm.ChatOptions
	content  string
	err      error
}

func (f *fakeProvider) Chat(_ context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	f.messages = messages
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, Model: "test"}, nil
}

func (f *fakeProvider) Heartbeat(context.Context) error { return nil }

func (f *fakeProvider) ModelAvailable(context.Context, string) (bool, error) { return true, nil }

func TestModelTransportSend(t *testing.T) {
	p := &fakeProvider{content: `[{"question":"a"},{"question":"b"},{"question":"c"}]`}
	tr, err := NewModelTransport(p, &llm.ChatOptions{Model: "llama3.2", Temperature: 0.2}, testLogger())
	require.NoError(t, err)

	body, err := tr.Send(context.Background(), "slept badly")
	require.NoError(t, err)
	assert.Equal(t, p.content, body)

	require.Len(t, p.messages, 2)
	assert.Equal(t, "user", p.messages[1].Role)
	assert.Equal(t, prompt.FollowUp("slept badly"), p.messages[1].Content)

	require.NotNil(t, p.opts)
	assert.JSONEq(t, string(prompt.FollowUpSchema()), string(p.opts.Schema))
	assert.Equal(t, "llama3.2", p.opts.Model)
}

func TestModelTransportProviderError(t *testing.T) {
	p := &fakeProvider{err: llm.ErrProviderUnavailable}
	tr, err := NewModelTransport(p, nil, testLogger())
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), "entry")
	require.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)
}

func TestNewModelTransportValidation(t *testing.T) {
	_, err := NewModelTransport(nil, nil, testLogger())
	require.Error(t, err)

	_, err = NewModelTransport(&fakeProvider{}, nil, nil)
	require.Error(t, err)
}
