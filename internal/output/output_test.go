package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vitalstory/vitalstory/internal/followup"
	"github.com/vitalstory/vitalstory/internal/session"
)

var testBatch = followup.NewBatch([followup.BatchSize]string{
	"How severe is the pain?",
	"When did it start?",
	"Does anything help?",
})

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON":  FormatJSON,
		"table": FormatTable,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
		"text":  FormatText,
		"":      FormatText,
		"xml":   FormatText,
	}
	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteBatchText(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatText).WriteBatch(testBatch); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	want := "01. How severe is the pain?\n02. When did it start?\n03. Does anything help?\n"
	if buf.String() != want {
		t.Errorf("WriteBatch() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteBatchJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatJSON).WriteBatch(testBatch); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d questions, want 3", len(got))
	}
	if got[1]["number"] != "02" || got[1]["question"] != "When did it start?" || got[1]["id"] != float64(2) {
		t.Errorf("second question = %v", got[1])
	}
}

func TestWriteBatchYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatYAML).WriteBatch(testBatch); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(got) != 3 || got[2]["question"] != "Does anything help?" {
		t.Errorf("WriteBatch() YAML = %v", got)
	}
}

func TestWriteBatchTable(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatTable).WriteBatch(testBatch); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("table has %d lines, want 5:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NO") || !strings.Contains(lines[4], "03") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

func TestWriteResultsText(t *testing.T) {
	results := []Result{
		{Source: "journal.log", Line: 3, Timestamp: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), LogText: "dizzy", Questions: testBatch},
		{LogText: "tired", Questions: followup.DefaultQuestions},
	}

	buf := &bytes.Buffer{}
	if err := New(buf, FormatText).WriteResults(results); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"== journal.log:3 2024-03-01 08:00 ==", "dizzy", "== entry ==", "tired", followup.DefaultQuestions[0].Text} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteResultsTable(t *testing.T) {
	buf := &bytes.Buffer{}
	err := New(buf, FormatTable).WriteResults([]Result{{Source: "a.log", Line: 1, LogText: "x", Questions: testBatch}})
	if err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if got := strings.Count(buf.String(), "a.log"); got != 3 {
		t.Errorf("expected 3 rows for a.log, got %d:\n%s", got, buf.String())
	}
}

func TestWriteResultJSONOmitsZeroTimestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatJSON).WriteResult(Result{LogText: "x", Questions: testBatch}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "timestamp") {
		t.Errorf("zero timestamp should be omitted:\n%s", buf.String())
	}
}

func testSession() session.Session {
	return session.Session{
		ID:        uuid.MustParse("0b8a53c2-6f0e-4c7e-9a57-0f3c2d1e4b5a"),
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		LogText:   "Sharp pain in lower back after lifting boxes",
		Questions: testBatch,
		Answers:   []string{"8", "yesterday"},
	}
}

func TestWriteSessions(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatText).WriteSessions([]session.Session{testSession()}); err != nil {
		t.Fatalf("WriteSessions() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "0b8a53c2", "2/3", "Sharp pain"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := New(buf, FormatText).WriteSessions(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No sessions") {
		t.Errorf("empty listing = %q", buf.String())
	}
}

func TestWriteSession(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatText).WriteSession(testSession()); err != nil {
		t.Fatalf("WriteSession() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0b8a53c2-6f0e-4c7e-9a57-0f3c2d1e4b5a", "01. How severe is the pain?", "    8", "    yesterday", "03. Does anything help?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSessionYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := New(buf, FormatYAML).WriteSession(testSession()); err != nil {
		t.Fatalf("WriteSession() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got["id"] != "0b8a53c2-6f0e-4c7e-9a57-0f3c2d1e4b5a" {
		t.Errorf("id = %v", got["id"])
	}
	if got["log_text"] != "Sharp pain in lower back after lifting boxes" {
		t.Errorf("log_text = %v", got["log_text"])
	}
}
