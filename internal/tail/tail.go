// Package tail follows a journal file and reports each entry appended to it.
//
// It implements "tail -f" like behaviour on top of fsnotify, including
// truncation and rotation handling.
package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vitalstory/vitalstory/internal/journal"
)

// ErrRotated is returned when the journal is rotated and FollowRotate is off.
var ErrRotated = errors.New("journal file rotated")

// rotationTimeout bounds how long to wait for a rotated file to reappear.
const rotationTimeout = 10 * time.Second

// Options configures the tailer behavior.
type Options struct {
	FilePath     string                    // Path to the journal file
	Lines        int                       // Number of existing entries to emit first
	Follow       bool                      // Whether to follow the file for new entries
	FollowRotate bool                      // Whether to follow through rotations
	Pattern      *regexp.Regexp            // Optional filter on the raw line
	Parser       *journal.Parser           // Defaults to journal.New(nil)
	Logger       *slog.Logger              // Defaults to slog.Default()
	OnEntry      func(journal.Entry) error // Called for each matching entry
}

// Tailer follows a single journal file.
type Tailer struct {
	opts    Options
	file    *os.File
	offset  int64
	lineNum int
	watcher *fsnotify.Watcher
}

// New creates a Tailer.
func New(opts Options) *Tailer {
	if opts.Parser == nil {
		opts.Parser = journal.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Tailer{opts: opts}
}

// Run emits the last Lines entries and, when following, every entry appended
// afterwards. It blocks until ctx is cancelled or an error occurs.
func (t *Tailer) Run(ctx context.Context) error {
	if t.opts.OnEntry == nil {
		return errors.New("tail: OnEntry is required")
	}

	if err := t.openFile(); err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer t.close()

	if t.opts.Lines > 0 {
		if err := t.readInitialEntries(); err != nil {
			return fmt.Errorf("failed to read initial entries: %w", err)
		}
	} else if err := t.skipExisting(); err != nil {
		return err
	}

	if !t.opts.Follow {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	t.watcher = watcher
	if err := watcher.Add(t.opts.FilePath); err != nil {
		return fmt.Errorf("failed to watch journal: %w", err)
	}

	return t.watch(ctx)
}

func (t *Tailer) openFile() error {
	f, err := os.Open(t.opts.FilePath)
	if err != nil {
		return err
	}
	t.file = f
	t.offset = 0
	return nil
}

// skipExisting moves past the current content without emitting it.
func (t *Tailer) skipExisting() error {
	n, err := t.scan(func(journal.Entry) error { return nil })
	t.opts.Logger.Debug("skipped existing journal entries", "count", n)
	return err
}

// readInitialEntries emits the last Lines entries currently in the file.
func (t *Tailer) readInitialEntries() error {
	var entries []journal.Entry
	if _, err := t.scan(func(e journal.Entry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		return err
	}

	if len(entries) > t.opts.Lines {
		entries = entries[len(entries)-t.opts.Lines:]
	}
	for _, e := range entries {
		if err := t.opts.OnEntry(e); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-t.watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if err := t.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (t *Tailer) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return t.readNew()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return t.handleRotation(ctx)
	case event.Has(fsnotify.Chmod):
		// Unlinking a file we still hold open only reports a Chmod.
		if _, err := os.Stat(t.opts.FilePath); errors.Is(err, os.ErrNotExist) {
			return t.handleRotation(ctx)
		}
		return nil
	default:
		return nil
	}
}

// readNew emits complete entries written since the last read.
func (t *Tailer) readNew() error {
	stat, err := t.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < t.offset {
		t.opts.Logger.Info("journal truncated, reading from start", "file", t.opts.FilePath)
		t.offset = 0
		t.lineNum = 0
	}

	_, err = t.scan(t.opts.OnEntry)
	return err
}

// scan reads complete lines from the current offset, passing matching
// entries to fn. A trailing line without a newline is left for the next
// read.
func (t *Tailer) scan(fn func(journal.Entry) error) (int, error) {
	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return 0, err
	}

	reader := bufio.NewReader(t.file)
	count := 0
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		t.offset += int64(len(line))
		t.lineNum++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := t.opts.Parser.ParseLine(line, t.lineNum)
		if !t.matches(entry) {
			continue
		}
		count++
		if err := fn(entry); err != nil {
			return count, err
		}
	}
}

func (t *Tailer) matches(entry journal.Entry) bool {
	return t.opts.Pattern == nil || t.opts.Pattern.MatchString(entry.Raw)
}

// handleRotation waits for the journal to reappear and starts reading it
// from the beginning.
func (t *Tailer) handleRotation(ctx context.Context) error {
	if !t.opts.FollowRotate {
		return ErrRotated
	}

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	timeout := time.After(rotationTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return errors.New("timeout waiting for rotated journal to reappear")
		case <-ticker.C:
			if err := t.openFile(); err != nil {
				continue
			}
			t.lineNum = 0
			if err := t.watcher.Add(t.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated journal: %w", err)
			}
			t.opts.Logger.Info("journal rotated, following new file", "file", t.opts.FilePath)
			return t.readNew()
		}
	}
}

func (t *Tailer) close() {
	if t.file != nil {
		t.file.Close()
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
}
