package prompt

import (
	"errors"
	"fmt"
)

// PromptType identifies the task a prompt is designed to perform.
type PromptType string

// TypeFollowUp asks for exactly three clarifying questions about a log entry.
const TypeFollowUp PromptType = "follow_up"

// BuildOptions holds the context required to build a prompt.
type BuildOptions struct {
	// LogText is the user's free-text health log. May be empty.
	LogText string
}

// ErrUnknownType is returned by [Build] for an unsupported [PromptType].
var ErrUnknownType = errors.New("prompt: unknown prompt type")

func unknownType(pt PromptType) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, pt)
}
