package redact

import (
	"regexp"
)

// Pattern defines a built-in pattern for personal data detection.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Type        string // Used for placeholder prefix: [EMAIL:hash], [SSN:hash], etc.
	Description string
}

var (
	// Email addresses: jane@example.com
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// US social security numbers: 123-45-6789
	ssnRegex = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// North American phone numbers: 555-123-4567, (555) 123-4567, +1 555.123.4567
	phoneRegex = regexp.MustCompile(`(?:\+1[-.\s]?)?(?:\(\d{3}\)\s?|\b\d{3}[-.\s])\d{3}[-.\s]\d{4}\b`)

	// IPv4 addresses: 192.168.1.1
	ipv4Regex = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	// Credit card numbers (basic pattern, detects common formats)
	creditCardRegex = regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)

	// Labelled dates of birth: "DOB: 04/12/1986", "born 4-12-86"
	dobRegex = regexp.MustCompile(`(?i)\b(?:dob|date of birth|born)[:\s]+\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)

	// Medical record numbers: "MRN 00123456", "mrn#1234567"
	mrnRegex = regexp.MustCompile(`(?i)\bMRN[:#\s]*\d{6,10}\b`)
)

// BuiltInPatterns contains all available redaction patterns.
var BuiltInPatterns = map[string]Pattern{
	"email": {
		Name:        "email",
		Regex:       emailRegex,
		Type:        "EMAIL",
		Description: "Email addresses",
	},
	"phone": {
		Name:        "phone",
		Regex:       phoneRegex,
		Type:        "PHONE",
		Description: "Phone numbers",
	},
	"ssn": {
		Name:        "ssn",
		Regex:       ssnRegex,
		Type:        "SSN",
		Description: "US social security numbers",
	},
	"ipv4": {
		Name:        "ipv4",
		Regex:       ipv4Regex,
		Type:        "IPV4",
		Description: "IPv4 addresses",
	},
	"credit_card": {
		Name:        "credit_card",
		Regex:       creditCardRegex,
		Type:        "CC",
		Description: "Credit card numbers",
	},
	"dob": {
		Name:        "dob",
		Regex:       dobRegex,
		Type:        "DOB",
		Description: "Labelled dates of birth",
	},
	"mrn": {
		Name:        "mrn",
		Regex:       mrnRegex,
		Type:        "MRN",
		Description: "Medical record numbers",
	},
}

// precedence is the order patterns are applied in. Longer, labelled forms
// run first so a phone pattern never eats part of an SSN or card number.
var precedence = []string{"mrn", "dob", "ssn", "credit_card", "email", "ipv4", "phone"}

// DefaultPatterns returns every built-in pattern name.
func DefaultPatterns() []string {
	out := make([]string, len(precedence))
	copy(out, precedence)
	return out
}

// GetPatterns returns the patterns matching the given names in application
// order. Unknown pattern names are silently ignored.
func GetPatterns(names []string) []Pattern {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	patterns := make([]Pattern, 0, len(names))
	for _, name := range precedence {
		if wanted[name] {
			patterns = append(patterns, BuiltInPatterns[name])
		}
	}
	return patterns
}
