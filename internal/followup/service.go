package followup

import (
	"context"
	"errors"
	"log/slog"
)

// Redactor scrubs personal data from a log entry before it is sent and
// reports how many values it replaced.
type Redactor interface {
	RedactAndCount(text string) (string, int)
}

// Getter retrieves a batch for a log entry.
type Getter interface {
	Get(ctx context.Context, logText string) (Batch, error)
}

// Service retrieves follow-up questions through a Transport.
// It is safe for concurrent use when its Transport is.
type Service struct {
	transport Transport
	redactor  Redactor
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRedactor scrubs every log entry with r before dispatch.
func WithRedactor(r Redactor) ServiceOption {
	return func(s *Service) { s.redactor = r }
}

// NewService creates a Service.
func NewService(transport Transport, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Service{transport: transport, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get dispatches logText and returns three questions. A response that cannot
// be parsed yields DefaultQuestions and a nil error; the only error returned
// is a *TransportError.
func (s *Service) Get(ctx context.Context, logText string) (Batch, error) {
	text := logText
	if s.redactor != nil {
		var n int
		if text, n = s.redactor.RedactAndCount(text); n > 0 {
			s.logger.Info("redacted personal data", "values", n)
		}
	}

	body, err := s.transport.Send(ctx, text)
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		return Batch{}, err
	}

	batch, shape, err := parse(body)
	if err != nil {
		s.logger.Warn("using default follow-up questions",
			"error", err,
			"envelope", shape,
			"bytes", len(body),
		)
		return DefaultQuestions, nil
	}

	s.logger.Info("follow-up questions received", "envelope", shape, "bytes", len(body))
	return batch, nil
}
