package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// newTestRepo creates a temporary git repository for testing.
// Returns the path to the repository.
func newTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	gitCmd(t, dir, nil, "init")
	gitCmd(t, dir, nil, "config", "user.name", "Test User")
	gitCmd(t, dir, nil, "config", "user.email", "test@example.com")

	return dir
}

func gitCmd(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// commitFile creates a file and commits it with message. Returns the full hash.
func commitFile(t *testing.T, repoPath, filename, content, message string) string {
	t.Helper()
	return commitFileAt(t, repoPath, filename, content, message, time.Time{})
}

// commitFileAt is commitFile with fixed author and committer dates.
func commitFileAt(t *testing.T, repoPath, filename, content, message string, at time.Time) string {
	t.Helper()

	filePath := filepath.Join(repoPath, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))

	gitCmd(t, repoPath, nil, "add", filename)

	var env []string
	if !at.IsZero() {
		stamp := at.Format(time.RFC3339)
		env = []string{"GIT_AUTHOR_DATE=" + stamp, "GIT_COMMITTER_DATE=" + stamp}
	}
	gitCmd(t, repoPath, env, "commit", "-m", message)

	return gitCmd(t, repoPath, nil, "rev-parse", "HEAD")
}

func openLocal(t *testing.T, path, ref string) domain.RepoHandle {
	t.Helper()
	h, err := NewReader(nil).Open(context.Background(), domain.Target{Location: path, Ref: ref})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestIsAvailable(t *testing.T) {
	// Git should be available in CI/dev environments
	require.True(t, IsAvailable(), "git should be available in PATH")
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"https://github.com/user/repo.git", true},
		{"http://example.com/repo", true},
		{"git@github.com:user/repo.git", true},
		{"ssh://git@host/repo", true},
		{"git://host/repo", true},
		{"file:///srv/git/repo", true},
		{"/home/me/code/repo", false},
		{"./repo", false},
		{".", false},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			require.Equal(t, tt.want, IsRemote(tt.location))
		})
	}
}

func TestIsValidRef(t *testing.T) {
	require.True(t, isValidRef("main"))
	require.True(t, isValidRef("release/v1.2"))
	require.True(t, isValidRef("HEAD~2"))
	require.True(t, isValidRef("abc1234"))
	require.False(t, isValidRef(""))
	require.False(t, isValidRef("--upload-pack=evil"))
	require.False(t, isValidRef("main..dev"))
	require.False(t, isValidRef("main;rm -rf"))
}

func TestOpen_Local(t *testing.T) {
	repo := newTestRepo(t)
	hash := commitFile(t, repo, "a.txt", "a", "initial")

	h := openLocal(t, repo, "")

	want, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(h.Root())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, hash, h.Ref())
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := NewReader(nil).Open(context.Background(), domain.Target{Location: t.TempDir()})
	require.Error(t, err)
}

func TestOpen_EmptyLocation(t *testing.T) {
	_, err := NewReader(nil).Open(context.Background(), domain.Target{Location: "  "})
	require.Error(t, err)
}

func TestOpen_NoCommits(t *testing.T) {
	repo := newTestRepo(t)

	_, err := NewReader(nil).Open(context.Background(), domain.Target{Location: repo})
	require.Error(t, err)
	require.Contains(t, err.Error(), "has no commits")
}

func TestOpen_RefFallsBackToHead(t *testing.T) {
	repo := newTestRepo(t)
	head := commitFile(t, repo, "a.txt", "a", "initial")

	h := openLocal(t, repo, "does-not-exist")
	require.Equal(t, head, h.Ref())

	h = openLocal(t, repo, "--evil")
	require.Equal(t, head, h.Ref())
}

func TestOpen_RefResolvesBranch(t *testing.T) {
	repo := newTestRepo(t)
	base := commitFile(t, repo, "a.txt", "a", "initial")
	gitCmd(t, repo, nil, "checkout", "-q", "-b", "feature")
	tip := commitFile(t, repo, "b.txt", "b", "feature work")
	gitCmd(t, repo, nil, "checkout", "-q", "-")

	require.Equal(t, tip, openLocal(t, repo, "feature").Ref())
	require.Equal(t, base, openLocal(t, repo, "").Ref())
}

func TestOpen_RemoteCloneIsRemovedOnClose(t *testing.T) {
	origin := newTestRepo(t)
	commitFile(t, origin, "a.txt", "a", "one")
	commitFile(t, origin, "b.txt", "b", "two")
	commitFile(t, origin, "c.txt", "c", "three")

	h, err := NewReader(nil).Open(context.Background(), domain.Target{
		Location: "file://" + origin,
		Depth:    2,
	})
	require.NoError(t, err)

	root := h.Root()
	_, err = os.Stat(filepath.Join(root, "c.txt"))
	require.NoError(t, err)

	count, err := NewReader(nil).CountCommits(context.Background(), h)
	require.NoError(t, err)
	require.Equal(t, 2, count, "shallow clone honours depth")

	require.NoError(t, h.Close())
	_, err = os.Stat(root)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, h.Close(), "second close is a no-op")
}

func TestOpen_RemoteCloneFailure(t *testing.T) {
	_, err := NewReader(nil).Open(context.Background(), domain.Target{
		Location: "file://" + filepath.Join(t.TempDir(), "missing"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "clone")
}

func TestListCommits(t *testing.T) {
	repo := newTestRepo(t)
	first := commitFile(t, repo, "README.md", "# demo\n", "docs: add readme")
	second := commitFile(t, repo, "src/main.go", "package main\n\nfunc main() {}\n", "feat: add entrypoint\n\nLonger body.")

	r := NewReader(nil)
	h := openLocal(t, repo, "")

	commits, err := r.ListCommits(context.Background(), h, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	newest := commits[0]
	require.Equal(t, second[:ShortHashLen], newest.Hash)
	require.Equal(t, "Test User", newest.Author)
	require.Equal(t, "feat: add entrypoint\n\nLonger body.", newest.Message)
	require.Equal(t, []string{"src/main.go"}, newest.FilesChanged)
	require.Equal(t, "1 file(s) changed, 3 insertions(+), 0 deletions(-)", newest.DiffSummary)
	_, err = time.Parse(time.RFC3339, newest.Timestamp)
	require.NoError(t, err)
	require.Empty(t, newest.SemanticImpact)

	require.Equal(t, first[:ShortHashLen], commits[1].Hash)
	require.Equal(t, []string{"README.md"}, commits[1].FilesChanged, "root commit lists its files")
}

func TestListCommits_Max(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 5; i++ {
		commitFile(t, repo, "f.txt", strings.Repeat("x", i+1), "change")
	}

	r := NewReader(nil)
	h := openLocal(t, repo, "")

	commits, err := r.ListCommits(context.Background(), h, 3)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	count, err := r.CountCommits(context.Background(), h)
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestCommitsSince(t *testing.T) {
	repo := newTestRepo(t)
	commitFileAt(t, repo, "old.txt", "old", "old work", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := commitFileAt(t, repo, "new.txt", "new", "new work", time.Now().Add(-time.Hour))

	r := NewReader(nil)
	h := openLocal(t, repo, "")

	commits, err := r.CommitsSince(context.Background(), h, time.Now().Add(-48*time.Hour), 20)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, recent[:ShortHashLen], commits[0].Hash)
}

func TestParseLog(t *testing.T) {
	out := "aaaa\x00Ann\x002024-01-02T03:04:05Z\x00fix: thing\n\x1e\n" +
		"bbbb\x00Bob\x002024-01-01T00:00:00Z\x00feat: x\n\nbody\n\x1e\n" +
		"broken\x00record\x1e"

	got := parseLog(out)
	require.Equal(t, []rawCommit{
		{hash: "aaaa", author: "Ann", date: "2024-01-02T03:04:05Z", message: "fix: thing"},
		{hash: "bbbb", author: "Bob", date: "2024-01-01T00:00:00Z", message: "feat: x\n\nbody"},
	}, got)

	require.Empty(t, parseLog(""))
}

func TestParseNumstat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFiles []string
		want      DiffStats
	}{
		{"empty", "", []string{}, DiffStats{}},
		{"single", "3\t1\tmain.go", []string{"main.go"}, DiffStats{1, 3, 1}},
		{"binary", "-\t-\tlogo.png\n2\t0\tREADME.md", []string{"logo.png", "README.md"}, DiffStats{2, 2, 0}},
		{"malformed", "garbage\n1\t1\tok.go", []string{"ok.go"}, DiffStats{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, stats := parseNumstat(tt.input)
			require.Equal(t, tt.wantFiles, files)
			require.Equal(t, tt.want, stats)
		})
	}
}

func TestDiffStats_String(t *testing.T) {
	require.Equal(t, "No changes", DiffStats{}.String())
	require.Equal(t, "2 file(s) changed, 10 insertions(+), 4 deletions(-)", DiffStats{2, 10, 4}.String())
}

func TestTruncateCommit(t *testing.T) {
	require.Equal(t, "abcdef12", truncateCommit("abcdef1234567890", 8))
	require.Equal(t, "abc", truncateCommit("abc", 8))
	require.Equal(t, "", truncateCommit("", 8))
}
