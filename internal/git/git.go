// Package git reads commit history by shelling out to the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

// ShortHashLen is the length of CommitRecord.Hash.
const ShortHashLen = 8

const (
	fieldSep  = "\x00"
	recordSep = "\x1e"
	logFormat = "%H%x00%an%x00%aI%x00%B%x1e"
)

// refPattern rejects anything that could be read as an option or shell syntax.
var refPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-./^~]+$`)

func isValidRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "-") || strings.Contains(ref, "..") {
		return false
	}
	return refPattern.MatchString(ref)
}

// IsRemote reports whether location must be cloned rather than opened in place.
func IsRemote(location string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "file://", "git@"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

func IsAvailable() bool {
	path, err := exec.LookPath("git")
	if err != nil {
		return false
	}
	// Verify git is functional by running a simple command
	cmd := exec.Command(path, "--version")
	return cmd.Run() == nil
}

// Handle is an opened repository. Remote targets live in a temporary
// clone that Close removes.
type Handle struct {
	root    string
	ref     string
	cleanup func() error
}

func (h *Handle) Root() string { return h.root }
func (h *Handle) Ref() string  { return h.ref }

func (h *Handle) Close() error {
	if h.cleanup == nil {
		return nil
	}
	err := h.cleanup()
	h.cleanup = nil
	return err
}

// Reader implements domain.RepositoryReader over the git CLI.
type Reader struct {
	logger domain.Logger
}

// NewReader returns a Reader logging through logger (nil means discard).
func NewReader(logger domain.Logger) *Reader {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Reader{logger: logger}
}

// Open opens a local working tree or shallow-clones a remote URL.
// A ref that cannot be resolved falls back to HEAD.
func (r *Reader) Open(ctx context.Context, target domain.Target) (domain.RepoHandle, error) {
	location := strings.TrimSpace(target.Location)
	if location == "" {
		return nil, errors.New("git: empty repository location")
	}

	h := &Handle{}

	if IsRemote(location) {
		dir, err := os.MkdirTemp("", "story-clone-*")
		if err != nil {
			return nil, fmt.Errorf("git: create clone dir: %w", err)
		}
		h.root = dir
		h.cleanup = func() error { return os.RemoveAll(dir) }

		depth := target.Depth
		if depth <= 0 {
			depth = 50
		}

		r.logger.Info("git: cloning %s (depth %d)", location, depth)
		if _, err := r.run(ctx, "clone", "--quiet", "--no-single-branch", "--depth", strconv.Itoa(depth), location, dir); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("git: clone %s: %w", location, err)
		}
	} else {
		root, err := r.run(ctx, "-C", location, "rev-parse", "--show-toplevel")
		if err != nil {
			return nil, fmt.Errorf("git: open %s: %w", location, err)
		}
		h.root = root
	}

	ref, err := r.resolveRef(ctx, h.root, target.Ref)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	h.ref = ref

	return h, nil
}

// resolveRef returns the full hash for ref, trying origin/<ref> for clones
// and HEAD when neither resolves.
func (r *Reader) resolveRef(ctx context.Context, root, ref string) (string, error) {
	if ref != "" {
		if !isValidRef(ref) {
			r.logger.Warn("git: rejecting ref %q, using HEAD", ref)
		} else {
			for _, candidate := range []string{ref, "origin/" + ref} {
				if hash, err := r.run(ctx, "-C", root, "rev-parse", "--verify", "--quiet", candidate+"^{commit}"); err == nil {
					return hash, nil
				}
			}
			r.logger.Warn("git: ref %q not found, falling back to HEAD", ref)
		}
	}

	hash, err := r.run(ctx, "-C", root, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		return "", fmt.Errorf("git: %s has no commits: %w", root, err)
	}
	return hash, nil
}

func (r *Reader) ListCommits(ctx context.Context, h domain.RepoHandle, max int) ([]domain.CommitRecord, error) {
	args := []string{"-C", h.Root(), "log", "--format=" + logFormat}
	if max > 0 {
		args = append(args, "-n", strconv.Itoa(max))
	}
	args = append(args, h.Ref())
	return r.log(ctx, h.Root(), args)
}

func (r *Reader) CountCommits(ctx context.Context, h domain.RepoHandle) (int, error) {
	out, err := r.run(ctx, "-C", h.Root(), "rev-list", "--count", h.Ref())
	if err != nil {
		return 0, fmt.Errorf("git: count commits: %w", err)
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("git: count commits: %w", err)
	}
	return n, nil
}

func (r *Reader) CommitsSince(ctx context.Context, h domain.RepoHandle, since time.Time, max int) ([]domain.CommitRecord, error) {
	args := []string{"-C", h.Root(), "log", "--format=" + logFormat, "--since=" + since.UTC().Format(time.RFC3339)}
	if max > 0 {
		args = append(args, "-n", strconv.Itoa(max))
	}
	args = append(args, h.Ref())
	return r.log(ctx, h.Root(), args)
}

func (r *Reader) log(ctx context.Context, root string, args []string) ([]domain.CommitRecord, error) {
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git: log: %w", err)
	}

	raw := parseLog(out)
	commits := make([]domain.CommitRecord, 0, len(raw))

	for _, c := range raw {
		stats, err := r.run(ctx, "-C", root, "diff-tree", "--no-commit-id", "--numstat", "-r", "--root", c.hash)
		if err != nil {
			r.logger.Warn("git: diff-tree %s failed: %v", truncateCommit(c.hash, ShortHashLen), err)
		}
		files, diff := parseNumstat(stats)

		commits = append(commits, domain.CommitRecord{
			Hash:         truncateCommit(c.hash, ShortHashLen),
			Author:       c.author,
			Message:      c.message,
			Timestamp:    c.date,
			FilesChanged: files,
			DiffSummary:  diff.String(),
		})
	}

	r.logger.Debug("git: listed %d commits in %s", len(commits), root)
	return commits, nil
}

func (r *Reader) run(ctx context.Context, args ...string) (string, error) {
	out, err := runGit(ctx, args...)
	if err != nil {
		r.logger.Debug("git: command failed: git %s: %v", strings.Join(args, " "), err)
	}
	return out, err
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

type rawCommit struct {
	hash    string
	author  string
	date    string
	message string
}

// parseLog splits `git log --format=logFormat` output into commits.
func parseLog(out string) []rawCommit {
	var commits []rawCommit
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		parts := strings.SplitN(rec, fieldSep, 4)
		if len(parts) < 4 {
			continue
		}
		commits = append(commits, rawCommit{
			hash:    parts[0],
			author:  parts[1],
			date:    parts[2],
			message: strings.TrimSpace(parts[3]),
		})
	}
	return commits
}

// DiffStats contains statistics from a git diff.
type DiffStats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

func (d DiffStats) String() string {
	if d.FilesChanged == 0 {
		return "No changes"
	}
	return fmt.Sprintf("%d file(s) changed, %d insertions(+), %d deletions(-)", d.FilesChanged, d.Insertions, d.Deletions)
}

func parseCount(v string) int {
	if v == "-" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// parseNumstat parses diff-tree --numstat output into the ordered path list and totals.
func parseNumstat(output string) ([]string, DiffStats) {
	stats := DiffStats{}
	files := []string{}
	if strings.TrimSpace(output) == "" {
		return files, stats
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}

		files = append(files, parts[2])
		stats.FilesChanged++
		stats.Insertions += parseCount(parts[0])
		stats.Deletions += parseCount(parts[1])
	}

	return files, stats
}

// truncateCommit returns the first maxLen characters of a commit hash.
func truncateCommit(commit string, maxLen int) string {
	if len(commit) <= maxLen {
		return commit
	}
	return commit[:maxLen]
}

var _ domain.RepositoryReader = (*Reader)(nil)
