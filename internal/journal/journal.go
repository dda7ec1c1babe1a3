// Package journal parses health journal files into entries.
//
// A journal holds one entry per line, either as a JSON object or as plain
// text with an optional leading timestamp.
package journal

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"
)

// Entry is a single journal entry.
type Entry struct {
	Raw       string
	Line      int
	Timestamp time.Time // zero when the entry has none
	Text      string
	Format    Format
	Fields    map[string]string
}

// Format describes how an entry was written.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// DefaultTimestampFormats are tried when no formats are configured.
var DefaultTimestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

var (
	textKeys = []string{"text", "entry", "log", "message"}
	timeKeys = []string{"timestamp", "time", "date"}
)

// maxLineSize bounds a single journal line.
const maxLineSize = 1024 * 1024

// Parser reads journal files into entries.
type Parser struct {
	timestampFormats []string
}

// New creates a Parser with the given timestamp layouts.
func New(timestampFormats []string) *Parser {
	if len(timestampFormats) == 0 {
		timestampFormats = DefaultTimestampFormats
	}
	return &Parser{timestampFormats: timestampFormats}
}

// ParseFile opens a file and parses all entries from it.
func (p *Parser) ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads entries from r, skipping blank lines.
func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, p.ParseLine(line, lineNum))
	}

	return entries, scanner.Err()
}

// ParseLine parses a single non-blank line.
func (p *Parser) ParseLine(line string, lineNum int) Entry {
	entry := Entry{
		Raw:    line,
		Line:   lineNum,
		Fields: make(map[string]string),
	}

	if p.tryParseJSON(line, &entry) {
		entry.Format = FormatJSON
		return entry
	}

	entry.Format = FormatText
	entry.Timestamp, entry.Text = p.splitTimestamp(line)
	return entry
}

func (p *Parser) tryParseJSON(line string, entry *Entry) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return false
	}

	for _, key := range textKeys {
		if v, ok := data[key].(string); ok {
			entry.Text = strings.TrimSpace(v)
			break
		}
	}
	if entry.Text == "" {
		entry.Text = trimmed
	}

	for _, key := range timeKeys {
		if v, ok := data[key].(string); ok {
			entry.Timestamp = p.parseTimestamp(v)
			break
		}
	}

	for k, v := range data {
		if contains(textKeys, k) || contains(timeKeys, k) {
			continue
		}
		if s, ok := v.(string); ok {
			entry.Fields[k] = s
		}
	}
	return true
}

// splitTimestamp separates a leading timestamp (one or two fields) from the
// rest of the line.
func (p *Parser) splitTimestamp(line string) (time.Time, string) {
	fields := strings.Fields(line)
	for n := min(2, len(fields)); n >= 1; n-- {
		candidate := strings.TrimRight(strings.Join(fields[:n], " "), ":-|,")
		t := p.parseTimestamp(candidate)
		if t.IsZero() {
			continue
		}
		rest := strings.TrimLeft(skipFields(line, n), " \t-:|,")
		if rest == "" {
			break
		}
		return t, strings.TrimSpace(rest)
	}
	return time.Time{}, strings.TrimSpace(line)
}

func (p *Parser) parseTimestamp(s string) time.Time {
	for _, layout := range p.timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// skipFields returns line after its first n whitespace-separated fields.
func skipFields(line string, n int) string {
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		j := strings.IndexAny(rest, " \t")
		if j < 0 {
			return ""
		}
		rest = rest[j:]
	}
	return rest
}

func contains(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

// Filter keeps entries whose timestamp falls within [since, until]. A zero
// bound is open. When either bound is set, entries without a timestamp are
// dropped.
func Filter(entries []Entry, since, until time.Time) []Entry {
	if since.IsZero() && until.IsZero() {
		return entries
	}

	var out []Entry
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			continue
		}
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && e.Timestamp.After(until) {
			continue
		}
		out = append(out, e)
	}
	return out
}
