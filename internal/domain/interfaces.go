package domain

import (
	"context"
	"io"
	"time"
)

// RepoHandle is an opened repository working tree.
type RepoHandle interface {
	// Root returns the directory holding the checked-out tree.
	Root() string

	// Ref returns the resolved ref commits are read from.
	Ref() string

	// Close releases the handle. Temporary clones are removed.
	Close() error
}

// RepositoryReader opens repositories and enumerates their commits.
type RepositoryReader interface {
	// Open opens a local path or clones a remote URL (shallow).
	Open(ctx context.Context, target Target) (RepoHandle, error)

	// ListCommits returns up to max commits reachable from the handle's ref, newest first.
	ListCommits(ctx context.Context, h RepoHandle, max int) ([]CommitRecord, error)

	// CountCommits counts every commit reachable from the handle's ref.
	CountCommits(ctx context.Context, h RepoHandle) (int, error)

	// CommitsSince returns up to max commits newer than since, newest first.
	CommitsSince(ctx context.Context, h RepoHandle, since time.Time, max int) ([]CommitRecord, error)
}

// Renderer turns a named template plus data into image bytes.
type Renderer interface {
	Render(ctx context.Context, template string, data map[string]any, seed float64) ([]byte, error)
}

// Screenshotter captures an HTML document as a PNG.
type Screenshotter interface {
	Capture(ctx context.Context, html string, vp Viewport) ([]byte, error)
}

// PostingDriver publishes a post on one platform.
type PostingDriver interface {
	// Platform returns the platform name recorded in the learning ledger.
	Platform() string

	// Post submits text and an optional image without confirmation.
	Post(ctx context.Context, text, imagePath string) (bool, error)

	// PostInteractive pre-fills the composer and waits for a human to submit.
	// The wait is bounded by ctx.
	PostInteractive(ctx context.Context, text, imagePath string) (bool, error)
}

// HistoryStore tracks per-repository posting history.
type HistoryStore interface {
	IsFirstPost(name string) bool
	ShouldSkip(name, latestHash string) bool
	RecordPost(name, hash string) error
	AppendCommitIfNew(name, url string, commit CommitRecord) error
	MarkFirstPost(name, hash string) error
	SetRecentCommits(name, url string, commits []CommitRecord) error
}

// RunLedger persists one record per dispatcher run.
type RunLedger interface {
	InsertRun(rec RunRecord) (int64, error)
	ListRuns(filter RunFilter) ([]RunRecord, error)
	Close() error
}

// PostRecorder appends published posts to the learning ledger.
type PostRecorder interface {
	RecordPost(platform, content, hookType, template string) (string, error)
}

// ConfigProvider exposes configuration values by dotted key.
type ConfigProvider interface {
	// Get returns the value for a configuration key.
	Get(key string) (string, bool)

	// GetAll returns all configuration values.
	GetAll() map[string]string
}

// Logger defines logging operations.
type Logger interface {
	// Debug logs a debug message.
	Debug(format string, args ...any)

	// Info logs an info message.
	Info(format string, args ...any)

	// Warn logs a warning message.
	Warn(format string, args ...any)

	// Error logs an error message.
	Error(format string, args ...any)

	// Close closes the logger.
	Close() error
}

// OutputWriter defines output operations.
type OutputWriter interface {
	io.Writer

	// Printf formats and prints to the output.
	Printf(format string, args ...any) (int, error)

	// Println prints a line to the output.
	Println(args ...any) (int, error)

	// Pager displays content through a pager if appropriate.
	Pager(content string)
}

// Styler defines text styling operations.
type Styler interface {
	// Enabled returns true if styling is enabled.
	Enabled() bool

	// Success styles text as success.
	Success(text string) string

	// Warning styles text as warning.
	Warning(text string) string

	// Error styles text as error.
	Error(text string) string

	// Info styles text as info.
	Info(text string) string

	// Muted styles text as muted.
	Muted(text string) string

	// Header styles text as header.
	Header(text string) string

	// Accent highlights identifiers such as hashes and post ids.
	Accent(text string) string
}
