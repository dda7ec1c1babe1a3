package config

import (
	"testing"
	"time"
)

func TestParseTimeRefAbsolute(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-26T10:00:01Z", time.Date(2025, 1, 26, 10, 0, 1, 0, time.UTC)},
		{"2025-01-26T10:00:01", time.Date(2025, 1, 26, 10, 0, 1, 0, time.UTC)},
		{"2025-01-26 10:00:01", time.Date(2025, 1, 26, 10, 0, 1, 0, time.UTC)},
		{"2025-01-26", time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeRef(tt.input)
			if err != nil {
				t.Fatalf("ParseTimeRef() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimeRef(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimeRefRelative(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"1h30m", now.Add(-90 * time.Minute)},
		{"1d2h", now.Add(-26 * time.Hour)},
		{"1w", now.Add(-7 * 24 * time.Hour)},
		{"45s", now.Add(-45 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeRefAt(tt.input, now)
			if err != nil {
				t.Fatalf("parseTimeRefAt() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimeRefAt(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimeRefInvalid(t *testing.T) {
	for _, input := range []string{"", "banana", "3x", "2d banana"} {
		if _, err := ParseTimeRef(input); err == nil {
			t.Errorf("ParseTimeRef(%q) expected error", input)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"2d", 48 * time.Hour},
		{"1w1d", 8 * 24 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
