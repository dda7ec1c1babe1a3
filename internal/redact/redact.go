// Package redact scrubs personal data from health log entries before they
// are sent to a remote question source.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Redactor replaces personal data with placeholders while preserving
// correlation between identical values.
//
// The same value always gets the same placeholder, so a model can still see
// that two entries mention the same phone number without seeing the number.
// Redactor holds no per-value state and is safe for concurrent use.
type Redactor struct {
	enabled  bool
	patterns []Pattern
}

// New creates a Redactor. If enabled is false, Redact returns text
// unchanged. An empty or entirely unknown patternNames selects every
// built-in pattern.
func New(enabled bool, patternNames []string) *Redactor {
	patterns := GetPatterns(patternNames)
	if len(patterns) == 0 {
		patterns = GetPatterns(DefaultPatterns())
	}

	return &Redactor{
		enabled:  enabled,
		patterns: patterns,
	}
}

// Redact replaces every match with a correlation-preserving placeholder.
//
//	"call me at 555-123-4567" → "call me at [PHONE:9c1e]"
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactAndCount(text)
	return out
}

// RedactAndCount redacts text and reports how many values were replaced.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	if !r.enabled || len(r.patterns) == 0 {
		return text, 0
	}

	count := 0
	result := text
	for _, p := range r.patterns {
		result = p.Regex.ReplaceAllStringFunc(result, func(match string) string {
			count++
			return placeholder(match, p.Type)
		})
	}
	return result, count
}

// placeholder derives the replacement from the normalized value alone, so
// nothing is retained between calls.
func placeholder(value, patternType string) string {
	key := patternType + "\x00" + normalize(value, patternType)
	return fmt.Sprintf("[%s:%s]", patternType, shortHash(key))
}

// shortHash is the first 4 hex characters of the SHA-256 of value.
func shortHash(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:2])
}

// normalize folds formatting differences that do not change the value.
func normalize(value, patternType string) string {
	switch patternType {
	case "EMAIL":
		return strings.ToLower(value)
	case "PHONE", "SSN", "CC", "MRN":
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, value)
	default:
		return value
	}
}
