// Package session stores answered follow-up sessions on disk.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalstory/vitalstory/internal/followup"
)

var (
	// ErrNotFound is returned when no session matches an id.
	ErrNotFound = errors.New("session not found")

	// ErrAmbiguous is returned when an id prefix matches several sessions.
	ErrAmbiguous = errors.New("session id prefix is ambiguous")
)

const fileExt = ".json"

// Session is a log entry together with the questions asked about it and the
// user's answers.
type Session struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	LogText   string         `json:"log_text" yaml:"log_text"`
	Questions followup.Batch `json:"questions" yaml:"questions"`
	Answers   []string       `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// New creates a session with a fresh id.
func New(logText string, questions followup.Batch, answers []string) Session {
	return Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		LogText:   logText,
		Questions: questions,
		Answers:   answers,
	}
}

// Store keeps one JSON file per session in a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("session directory cannot be empty")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory sessions are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes sess and returns the file path.
func (s *Store) Save(sess Session) (string, error) {
	if sess.ID == uuid.Nil {
		return "", errors.New("session has no id")
	}
	if len(sess.Answers) > followup.BatchSize {
		return "", fmt.Errorf("session has %d answers, at most %d allowed", len(sess.Answers), followup.BatchSize)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}

	path := s.path(sess.ID)
	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// Load returns the session with the given id or unique id prefix.
func (s *Store) Load(id string) (Session, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Session{}, ErrNotFound
	}

	if parsed, err := uuid.Parse(id); err == nil {
		return s.read(s.path(parsed))
	}

	names, err := s.fileNames()
	if err != nil {
		return Session{}, err
	}
	var match string
	for _, name := range names {
		if strings.HasPrefix(name, id) {
			if match != "" {
				return Session{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = name
		}
	}
	if match == "" {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.read(filepath.Join(s.dir, match))
}

// List returns all sessions, newest first. A missing directory is empty.
func (s *Store) List() ([]Session, error) {
	names, err := s.fileNames()
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(names))
	for _, name := range names {
		sess, err := s.read(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

func (s *Store) read(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSuffix(filepath.Base(path), fileExt))
	}
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return sess, nil
}

func (s *Store) fileNames() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
