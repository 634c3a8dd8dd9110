// Package pipeline sequences analysis, rendering, caption composition and
// posting for one repository at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/footprint-tools/storyteller/internal/caption"
	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/fsutil"
	"github.com/footprint-tools/storyteller/internal/impact"
	"github.com/footprint-tools/storyteller/internal/log"
	"github.com/footprint-tools/storyteller/internal/render"
	"github.com/footprint-tools/storyteller/internal/repo"
)

const (
	DefaultTemplate = "bento_metrics"

	ImageFile   = "tweet_visual.png"
	CaptionFile = "tweet_content.txt"

	firstPostLookback = 48 * time.Hour
	firstPostMax      = 20
)

var (
	ErrNoCommits    = errors.New("pipeline: repository has no commits")
	ErrNoDriver     = errors.New("pipeline: no posting driver configured")
	ErrNotSubmitted = errors.New("pipeline: post was not submitted")
	ErrConfirmWait  = errors.New("pipeline: confirmation wait timed out")
)

// Analyzer produces the impact of a repository.
type Analyzer interface {
	Analyze(ctx context.Context, name string, target domain.Target, opts impact.Options) (impact.Analysis, error)
}

// Options control how a run finishes.
type Options struct {
	Mode           domain.Mode
	Template       string
	RequireImage   bool
	ConfirmTimeout time.Duration
	// OutputDir receives <repo>/tweet_visual.png and <repo>/tweet_content.txt.
	// Nothing is written when empty, and posts go out text-only.
	OutputDir  string
	Ref        string
	CloneDepth int
}

// Outcome describes a finished run.
type Outcome struct {
	Repo        string
	Target      string
	Mode        domain.Mode
	State       State
	CommitHash  string
	FirstPost   bool
	Caption     string
	ImagePath   string
	CaptionPath string
	PostID      string
	// Err is set for failed states. Non-failed outcomes may also carry
	// an error (e.g. a render failure that fell back to text-only).
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the run ended in a failure state.
func (o Outcome) Failed() bool { return o.State.Failed() }

// Dispatcher runs the posting state machine for single repositories.
type Dispatcher struct {
	Analyzer Analyzer
	History  domain.HistoryStore
	Renderer domain.Renderer
	Driver   domain.PostingDriver
	Learning domain.PostRecorder
	Logger   domain.Logger
	Options  Options

	// OnState, if set, is called on every state transition.
	OnState func(repo string, s State)

	now func() time.Time
}

func (d *Dispatcher) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *Dispatcher) logger() domain.Logger {
	if d.Logger == nil {
		return log.NopLogger{}
	}
	return d.Logger
}

func (d *Dispatcher) enter(out *Outcome, s State) {
	out.State = s
	if d.OnState != nil {
		d.OnState(out.Repo, s)
	}
}

func (d *Dispatcher) fail(out *Outcome, s State, err error) Outcome {
	out.Err = err
	d.enter(out, s)
	d.logger().Error("pipeline: %s: %s: %v", out.Repo, s, err)
	return *out
}

// Run processes one repository and returns its terminal outcome.
// RecordPost is called only when the post is confirmed.
func (d *Dispatcher) Run(ctx context.Context, r domain.WatchedRepo) (out Outcome) {
	out = Outcome{
		Repo:      r.Name,
		Target:    r.URL,
		Mode:      d.Options.Mode,
		State:     StateIdle,
		StartedAt: d.clock(),
	}
	defer func() { out.FinishedAt = d.clock() }()

	d.enter(&out, StateAnalyzing)
	out.FirstPost = d.History.IsFirstPost(r.Name)

	opts := impact.Options{}
	if out.FirstPost {
		opts.RecentSince = out.StartedAt.Add(-firstPostLookback)
		opts.RecentMax = firstPostMax
	}

	target := domain.Target{Location: r.URL, Ref: d.Options.Ref, Depth: d.Options.CloneDepth}
	analysis, err := d.Analyzer.Analyze(ctx, r.Name, target, opts)
	if err != nil {
		return d.fail(&out, StateAnalysisFailed, err)
	}

	summary := analysis.Impact
	if len(summary.RecentChanges) == 0 {
		return d.fail(&out, StateAnalysisFailed, ErrNoCommits)
	}
	latest := summary.RecentChanges[0]
	out.CommitHash = latest.Hash

	if err := d.History.AppendCommitIfNew(r.Name, r.URL, latest); err != nil {
		d.logger().Warn("pipeline: %s: append commit: %v", r.Name, err)
	}

	if d.History.ShouldSkip(r.Name, latest.Hash) {
		d.logger().Info("pipeline: %s: no new commits since %s", r.Name, latest.Hash)
		d.enter(&out, StateSkipped)
		return out
	}

	if out.FirstPost {
		if err := d.History.MarkFirstPost(r.Name, latest.Hash); err != nil {
			d.logger().Warn("pipeline: %s: mark first post: %v", r.Name, err)
		}
		if err := d.History.SetRecentCommits(r.Name, r.URL, analysis.Recent); err != nil {
			d.logger().Warn("pipeline: %s: recent commits: %v", r.Name, err)
		}
	}

	d.enter(&out, StateRendering)
	img, renderErr := d.render(ctx, r, summary, latest)
	if renderErr != nil {
		if d.Options.RequireImage {
			return d.fail(&out, StateRenderFailed, renderErr)
		}
		d.logger().Warn("pipeline: %s: render failed, posting text-only: %v", r.Name, renderErr)
		out.Err = renderErr
	}

	d.enter(&out, StateComposing)
	out.Caption = caption.Compose(summary, linkFor(r.URL))
	d.writeOutputs(&out, img)

	if d.Options.Mode == domain.ModeTest || d.Options.Mode == "" {
		d.enter(&out, StatePreviewed)
		return out
	}

	d.enter(&out, StatePosting)
	if d.Driver == nil {
		return d.fail(&out, StatePostFailed, ErrNoDriver)
	}

	ok, err := d.post(ctx, out.Caption, out.ImagePath)
	if err != nil {
		return d.fail(&out, StatePostFailed, err)
	}
	if !ok {
		return d.fail(&out, StatePostFailed, ErrNotSubmitted)
	}

	d.enter(&out, StatePosted)
	if err := d.History.RecordPost(r.Name, latest.Hash); err != nil {
		d.logger().Error("pipeline: %s: record post: %v", r.Name, err)
		out.Err = fmt.Errorf("record post: %w", err)
	}
	if d.Learning != nil {
		id, err := d.Learning.RecordPost(d.Driver.Platform(), out.Caption, caption.HookType(summary), d.template())
		if err != nil {
			d.logger().Warn("pipeline: %s: learning record: %v", r.Name, err)
		}
		out.PostID = id
	}
	d.logger().Info("pipeline: %s: posted %s", r.Name, latest.Hash)
	return out
}

func (d *Dispatcher) template() string {
	if d.Options.Template == "" {
		return DefaultTemplate
	}
	return d.Options.Template
}

func (d *Dispatcher) render(ctx context.Context, r domain.WatchedRepo, summary domain.RepositoryImpact, latest domain.CommitRecord) ([]byte, error) {
	if d.Renderer == nil {
		return nil, errors.New("pipeline: no renderer configured")
	}
	img, err := d.Renderer.Render(ctx, d.template(), RenderData(r, summary, latest), render.Seed(latest.Hash))
	if err != nil {
		// partial captures are never posted
		return nil, err
	}
	return img, nil
}

func (d *Dispatcher) post(ctx context.Context, text, imagePath string) (bool, error) {
	if d.Options.Mode != domain.ModeConfirm {
		return d.Driver.Post(ctx, text, imagePath)
	}

	timeout := d.Options.ConfirmTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := d.Driver.PostInteractive(waitCtx, text, imagePath)
	if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) && !ok {
		return false, fmt.Errorf("%w after %s", ErrConfirmWait, timeout)
	}
	return ok, err
}

func (d *Dispatcher) writeOutputs(out *Outcome, img []byte) {
	if d.Options.OutputDir == "" {
		return
	}
	dir := filepath.Join(d.Options.OutputDir, repo.Slug(out.Repo))

	if len(img) > 0 {
		path := filepath.Join(dir, ImageFile)
		if err := fsutil.WriteFileAtomic(path, img, 0o644); err != nil {
			d.logger().Warn("pipeline: %s: write image: %v", out.Repo, err)
		} else {
			out.ImagePath = path
		}
	} else {
		// A stale image from an earlier run must not be attached.
		_ = os.Remove(filepath.Join(dir, ImageFile))
	}

	path := filepath.Join(dir, CaptionFile)
	if err := fsutil.WriteFileAtomic(path, []byte(out.Caption), 0o644); err != nil {
		d.logger().Warn("pipeline: %s: write caption: %v", out.Repo, err)
		return
	}
	out.CaptionPath = path
}

// RenderData builds the template data map for a repository.
func RenderData(r domain.WatchedRepo, summary domain.RepositoryImpact, latest domain.CommitRecord) map[string]any {
	description := summary.Description
	if description == "" {
		description = "Open source project"
	}
	return map[string]any{
		"repo_name":         displayName(r),
		"description":       description,
		"total_commits":     summary.TotalCommits,
		"recent_count":      len(summary.RecentChanges),
		"marketing_hooks":   summary.MarketingHooks,
		"visual_highlights": summary.VisualHighlights,
		"commit_hash":       latest.Hash,
		"commit_message":    latest.Message,
		"code_diff":         latest.DiffSummary,
		"files_changed":     len(latest.FilesChanged),
	}
}

// displayName returns owner/repo for GitHub URLs and the configured name otherwise.
func displayName(r domain.WatchedRepo) string {
	_, rest, ok := strings.Cut(r.URL, "github.com")
	if !ok {
		return r.Name
	}
	rest = strings.TrimLeft(rest, "/:")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return r.Name
	}
	return parts[0] + "/" + strings.TrimSuffix(parts[1], ".git")
}

// linkFor returns a browsable link for remote http(s) URLs.
func linkFor(url string) string {
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return strings.TrimSuffix(url, ".git")
	}
	return ""
}
