package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func run(name string, started time.Time, state string) domain.RunRecord {
	return domain.RunRecord{
		RepoName:   name,
		Target:     "https://github.com/octo/" + name,
		Mode:       domain.ModeAuto,
		State:      state,
		CommitHash: "abc12345",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestInsertAndList(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.InsertRun(run("widgets", base, "posted"))
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	rec := run("gadgets", base.Add(time.Minute), "post_failed")
	rec.Error = "selector not found"
	_, err = s.InsertRun(rec)
	require.NoError(t, err)

	runs, err := s.ListRuns(domain.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	require.Equal(t, "gadgets", runs[0].RepoName)
	require.Equal(t, "selector not found", runs[0].Error)
	require.Equal(t, domain.ModeAuto, runs[0].Mode)
	require.True(t, runs[0].StartedAt.Equal(base.Add(time.Minute)))
	require.True(t, runs[0].FinishedAt.Equal(base.Add(time.Minute+3*time.Second)))
	require.Equal(t, "widgets", runs[1].RepoName)
	require.Equal(t, int64(1), runs[1].ID)
}

func TestListRuns_Filter(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.InsertRun(run("widgets", base.Add(time.Duration(i)*time.Minute), "skipped"))
		require.NoError(t, err)
	}
	_, err := s.InsertRun(run("gadgets", base, "posted"))
	require.NoError(t, err)

	runs, err := s.ListRuns(domain.RunFilter{RepoName: "widgets", Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.True(t, runs[0].StartedAt.Equal(base.Add(4*time.Minute)))

	runs, err = s.ListRuns(domain.RunFilter{RepoName: "gadgets"})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	runs, err = s.ListRuns(domain.RunFilter{RepoName: "missing"})
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestNew_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.InsertRun(run("widgets", time.Now(), "posted"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	require.Equal(t, path, s.Path())
}

func TestNew_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.db")
	s, err := New(path)
	require.NoError(t, err)
	_, err = s.InsertRun(run("widgets", time.Now(), "posted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	runs, err := s.ListRuns(domain.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestClose_Nil(t *testing.T) {
	require.NoError(t, (&Store{}).Close())
}
