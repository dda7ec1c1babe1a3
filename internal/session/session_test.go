package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalstory/vitalstory/internal/followup"
)

func TestNewStore(t *testing.T) {
	_, err := NewStore("  ")
	require.Error(t, err)

	s, err := NewStore("sessions")
	require.NoError(t, err)
	assert.Equal(t, "sessions", s.Dir())
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	s, err := NewStore(dir)
	require.NoError(t, err)

	sess := New("Migraine since noon", followup.DefaultQuestions, []string{"7", "since noon", "dark room helps"})
	path, err := s.Save(sess)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, sess.ID.String()+".json", filepath.Base(path))

	got, err := s.Load(sess.ID.String())
	require.NoError(t, err)
	if diff := cmp.Diff(sess, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadByPrefix(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := New("a", followup.DefaultQuestions, nil)
	a.ID = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	b := New("b", followup.DefaultQuestions, nil)
	b.ID = uuid.MustParse("aaaabbbb-0000-4000-8000-000000000002")
	for _, sess := range []Session{a, b} {
		_, err := s.Save(sess)
		require.NoError(t, err)
	}

	got, err := s.Load("aaaab")
	require.NoError(t, err)
	assert.Equal(t, "b", got.LogText)

	_, err = s.Load("aaaa")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = s.Load("ffff")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load(uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		sess := New(text, followup.DefaultQuestions, nil)
		sess.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := s.Save(sess)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("ignored"), 0o644))

	got, err := s.List()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{got[0].LogText, got[1].LogText, got[2].LogText})
}

func TestListMissingDir(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)

	got, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveValidation(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(Session{})
	assert.Error(t, err)

	sess := New("x", followup.DefaultQuestions, []string{"1", "2", "3", "4"})
	_, err = s.Save(sess)
	assert.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id.String()+".json"), []byte("{broken"), 0o644))

	_, err = s.Load(id.String())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
