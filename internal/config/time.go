package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are accepted by ParseTimeRef before relative durations.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var durationPart = regexp.MustCompile(`(\d+)([wdhms])`)

// ParseTimeRef parses an absolute timestamp or a relative duration.
// Relative values are subtracted from now (e.g. "3d" is three days ago).
func ParseTimeRef(s string) (time.Time, error) {
	return parseTimeRefAt(s, time.Now())
}

func parseTimeRefAt(s string, now time.Time) (time.Time, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return time.Time{}, fmt.Errorf("time reference is empty")
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}

	d, err := ParseDuration(input)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}

// ParseDuration accepts Go durations plus day and week units.
// Examples: "30s", "1h30m", "2d", "1w2d".
func ParseDuration(s string) (time.Duration, error) {
	input := strings.TrimSpace(s)
	if d, err := time.ParseDuration(input); err == nil {
		return d, nil
	}

	matches := durationPart.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	consumed := 0
	var total time.Duration
	for _, m := range matches {
		consumed += m[1] - m[0]
		value, err := strconv.ParseInt(input[m[2]:m[3]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %q", s)
		}
		total += time.Duration(value) * unitOf(input[m[4]:m[5]])
	}

	if consumed != len(input) {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}
	return total, nil
}

func unitOf(u string) time.Duration {
	switch u {
	case "w":
		return 7 * 24 * time.Hour
	case "d":
		return 24 * time.Hour
	case "h":
		return time.Hour
	case "m":
		return time.Minute
	default:
		return time.Second
	}
}
