package followup

import (
	"context"
	"errors"
	"log/slog"
)

// Resolver always produces a batch. Errors from its Getter are logged and
// replaced with UnavailableQuestions.
type Resolver struct {
	getter Getter
	logger *slog.Logger
}

// NewResolver wraps getter.
func NewResolver(getter Getter, logger *slog.Logger) (*Resolver, error) {
	if getter == nil {
		return nil, errors.New("getter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Resolver{getter: getter, logger: logger}, nil
}

// Resolve returns the questions for logText. It never fails.
func (r *Resolver) Resolve(ctx context.Context, logText string) (batch Batch) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("follow-up retrieval panicked", "panic", p)
			batch = UnavailableQuestions
		}
	}()

	b, err := r.getter.Get(ctx, logText)
	if err != nil {
		r.logger.Error("follow-up questions unavailable", "error", err)
		return UnavailableQuestions
	}
	return b
}
