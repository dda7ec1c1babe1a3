// Package followup retrieves exactly three follow-up questions for a health
// log entry.
//
// A [Service] sends the entry through a [Transport], parses whatever comes
// back, and substitutes [DefaultQuestions] when the response cannot be
// normalized. Only transport failures escape the Service. A [Resolver] wraps
// the Service and substitutes [UnavailableQuestions] for those, so callers
// always receive a complete [Batch].
package followup

import (
	"encoding/json"
	"fmt"
)

// BatchSize is the number of questions in every batch.
const BatchSize = 3

// Question is a single follow-up question.
type Question struct {
	ID   int
	Text string
}

// Number is the ID zero-padded to two digits ("01", "02", "03").
func (q Question) Number() string {
	return fmt.Sprintf("%02d", q.ID)
}

type questionJSON struct {
	ID       int    `json:"id" yaml:"id"`
	Number   string `json:"number" yaml:"number"`
	Question string `json:"question" yaml:"question"`
}

// MarshalJSON renders the question in the same shape the model is asked for.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{ID: q.ID, Number: q.Number(), Question: q.Text})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON. Number is derived
// from ID and ignored on input.
func (q *Question) UnmarshalJSON(data []byte) error {
	var v questionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	q.ID, q.Text = v.ID, v.Question
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (q Question) MarshalYAML() (any, error) {
	return questionJSON{ID: q.ID, Number: q.Number(), Question: q.Text}, nil
}

// Batch is exactly three questions with IDs 1, 2, 3 in order.
type Batch [BatchSize]Question

// NewBatch numbers texts by position. Callers must pass non-empty texts.
func NewBatch(texts [BatchSize]string) Batch {
	var b Batch
	for i, text := range texts {
		b[i] = Question{ID: i + 1, Text: text}
	}
	return b
}

// Texts returns the question texts in order.
func (b Batch) Texts() []string {
	out := make([]string, 0, BatchSize)
	for _, q := range b {
		out = append(out, q.Text)
	}
	return out
}
