package prompt

import "encoding/json"

// QuestionCount is how many follow-up questions every prompt asks for.
const QuestionCount = 3

// FollowUpSchema is the JSON Schema of the reply FollowUp asks for: an array
// of QuestionCount question objects. Backends that support structured output
// use it to constrain generation.
func FollowUpSchema() json.RawMessage {
	schema := map[string]any{
		"type":     "array",
		"minItems": QuestionCount,
		"maxItems": QuestionCount,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]string{"type": "integer"},
				"number":   map[string]string{"type": "string"},
				"question": map[string]string{"type": "string"},
			},
			"required": []string{"question"},
		},
	}
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return b
}

// systemPrompt returns the system-role message content for pt.
func systemPrompt(pt PromptType) string {
	switch pt {
	case TypeFollowUp:
		return followUpSystem
	default:
		return ""
	}
}

const followUpSystem = `You are a careful healthcare assistant helping a patient keep an accurate symptom journal.
You never diagnose and never give treatment advice. You only ask short clarifying questions.
You always answer with machine-readable JSON and nothing else.`

// followUpTemplate is formatted with the raw log text.
const followUpTemplate = `You are a healthcare assistant. Read the patient's health log entry below and generate exactly 3 follow-up questions.

Health log entry:
"""
%s
"""

Requirements for the questions:
1. Each question must be directly relevant to what the patient wrote in the log.
2. Each question should clarify severity, duration, or another clinically relevant detail.
3. Each question must be conversational, precise, and easy for the patient to answer.

Output format:
Respond with a JSON array of exactly 3 objects. Each object must have:
- "id": an integer from 1 to 3
- "number": the id as a zero-padded string ("01", "02", "03")
- "question": the question text as a string

Example:
[{"id": 1, "number": "01", "question": "..."}, {"id": 2, "number": "02", "question": "..."}, {"id": 3, "number": "03", "question": "..."}]

Respond with only the JSON array, nothing else.`
