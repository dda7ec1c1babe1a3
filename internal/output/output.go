// Package output renders follow-up questions and sessions as text, JSON,
// table, or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vitalstory/vitalstory/internal/followup"
	"github.com/vitalstory/vitalstory/internal/session"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Result is the batch resolved for one log entry.
type Result struct {
	Source    string         `json:"source,omitempty" yaml:"source,omitempty"`
	Line      int            `json:"line,omitempty" yaml:"line,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
	LogText   string         `json:"log_text" yaml:"log_text"`
	Questions followup.Batch `json:"questions" yaml:"questions"`
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer. Text output is colorized according to
// ColorAuto.
func New(w io.Writer, format Format) *Writer {
	return NewWithColor(w, format, ColorAuto)
}

// NewWithColor creates a Writer with an explicit color mode.
func NewWithColor(w io.Writer, format Format, mode ColorMode) *Writer {
	return &Writer{w: w, format: format, colorize: shouldColorize(mode, w)}
}

// WriteBatch outputs a single batch of questions.
func (wr *Writer) WriteBatch(b followup.Batch) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(b)
	case FormatYAML:
		return wr.WriteYAML(b)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NO\tQUESTION")
		fmt.Fprintln(tw, "--\t--------")
		for _, q := range b {
			fmt.Fprintf(tw, "%s\t%s\n", q.Number(), q.Text)
		}
		return tw.Flush()
	default:
		return wr.writeQuestions(b)
	}
}

// WriteResults outputs the batches resolved for several entries.
func (wr *Writer) WriteResults(results []Result) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(results)
	case FormatYAML:
		return wr.WriteYAML(results)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tLINE\tNO\tQUESTION")
		fmt.Fprintln(tw, "------\t----\t--\t--------")
		for _, r := range results {
			for _, q := range r.Questions {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Source, r.Line, q.Number(), q.Text)
			}
		}
		return tw.Flush()
	default:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(wr.w)
			}
			if err := wr.WriteResult(r); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteResult outputs one result. Structured formats emit one document per
// call, which suits streaming.
func (wr *Writer) WriteResult(r Result) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(r)
	case FormatYAML:
		return wr.WriteYAML(r)
	case FormatTable:
		return wr.WriteResults([]Result{r})
	}

	fmt.Fprintln(wr.w, wr.dim("== "+resultHeader(r)+" =="))
	fmt.Fprintln(wr.w, truncate(r.LogText, 120))
	return wr.writeQuestions(r.Questions)
}

// WriteSessions outputs a session listing.
func (wr *Writer) WriteSessions(sessions []session.Session) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(sessions)
	case FormatYAML:
		return wr.WriteYAML(sessions)
	}

	if len(sessions) == 0 {
		_, err := fmt.Fprintln(wr.w, "No sessions saved.")
		return err
	}

	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tANSWERS\tLOG")
	fmt.Fprintln(tw, "--\t-------\t-------\t---")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n",
			s.ID.String()[:8],
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			answered(s.Answers), followup.BatchSize,
			truncate(s.LogText, 60),
		)
	}
	return tw.Flush()
}

// WriteSession outputs a single session with its answers.
func (wr *Writer) WriteSession(s session.Session) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(s)
	case FormatYAML:
		return wr.WriteYAML(s)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NO\tQUESTION\tANSWER")
		fmt.Fprintln(tw, "--\t--------\t------")
		for i, q := range s.Questions {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Number(), q.Text, answerAt(s.Answers, i))
		}
		return tw.Flush()
	}

	fmt.Fprintf(wr.w, "%s %s\n", wr.dim("Session:"), s.ID)
	fmt.Fprintf(wr.w, "%s %s\n", wr.dim("Created:"), s.CreatedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(wr.w, "%s %s\n\n", wr.dim("Log:"), s.LogText)
	for i, q := range s.Questions {
		fmt.Fprintf(wr.w, "%s %s\n", wr.number(q), q.Text)
		if a := answerAt(s.Answers, i); a != "" {
			fmt.Fprintf(wr.w, "    %s\n", a)
		}
	}
	return nil
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as a YAML document.
func (wr *Writer) WriteYAML(v any) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (wr *Writer) writeQuestions(b followup.Batch) error {
	for _, q := range b {
		if _, err := fmt.Fprintf(wr.w, "%s %s\n", wr.number(q), q.Text); err != nil {
			return err
		}
	}
	return nil
}

func resultHeader(r Result) string {
	var parts []string
	if r.Source != "" {
		if r.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", r.Source, r.Line))
		} else {
			parts = append(parts, r.Source)
		}
	}
	if !r.Timestamp.IsZero() {
		parts = append(parts, r.Timestamp.Format("2006-01-02 15:04"))
	}
	if len(parts) == 0 {
		return "entry"
	}
	return strings.Join(parts, " ")
}

func answered(answers []string) int {
	n := 0
	for _, a := range answers {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

func answerAt(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
