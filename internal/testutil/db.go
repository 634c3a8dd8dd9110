package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/store"
)

// NewTestStore creates an in-memory run ledger with migrations applied.
// The store is automatically closed when the test finishes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(":memory:")
	require.NoError(t, err, "failed to open in-memory run ledger")

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// SeedRuns inserts records into the ledger in order.
func SeedRuns(t *testing.T, s *store.Store, records []domain.RunRecord) {
	t.Helper()

	for _, rec := range records {
		_, err := s.InsertRun(rec)
		require.NoError(t, err, "failed to seed run: %+v", rec)
	}
}

// Run builds a finished run record that started at start and took one second.
func Run(repo, state string, start time.Time) domain.RunRecord {
	return domain.RunRecord{
		RepoName:   repo,
		Target:     "/srv/" + repo,
		Mode:       domain.ModeAuto,
		State:      state,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
}
