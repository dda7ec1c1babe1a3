package prompt

import (
	"fmt"

	"github.com/vitalstory/vitalstory/internal/llm"
)

// FollowUp builds the instruction asking a model for three follow-up
// questions about logText. The text is embedded verbatim.
func FollowUp(logText string) string {
	return fmt.Sprintf(followUpTemplate, logText)
}

// Build constructs a []llm.Message slice ready to be sent to any llm.Provider.
// The slice is always a system message followed by a user message.
func Build(pt PromptType, opts BuildOptions) ([]llm.Message, error) {
	switch pt {
	case TypeFollowUp:
		return []llm.Message{
			{Role: "system", Content: systemPrompt(pt)},
			{Role: "user", Content: FollowUp(opts.LogText)},
		}, nil
	default:
		return nil, unknownType(pt)
	}
}
