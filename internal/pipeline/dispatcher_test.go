package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/history"
	"github.com/footprint-tools/storyteller/internal/impact"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	analysis impact.Analysis
	err      error
	calls    int
	opts     []impact.Options
	targets  []domain.Target
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, target domain.Target, opts impact.Options) (impact.Analysis, error) {
	f.calls++
	f.opts = append(f.opts, opts)
	f.targets = append(f.targets, target)
	return f.analysis, f.err
}

type fakeRenderer struct {
	img   []byte
	err   error
	calls int
	data  map[string]any
	tmpl  string
}

func (f *fakeRenderer) Render(_ context.Context, tmpl string, data map[string]any, _ float64) ([]byte, error) {
	f.calls++
	f.tmpl = tmpl
	f.data = data
	return f.img, f.err
}

type fakeDriver struct {
	ok          bool
	err         error
	posts       int
	interactive int
	image       string
	wait        bool
}

func (f *fakeDriver) Platform() string { return "twitter" }

func (f *fakeDriver) Post(_ context.Context, _ string, image string) (bool, error) {
	f.posts++
	f.image = image
	return f.ok, f.err
}

func (f *fakeDriver) PostInteractive(ctx context.Context, _ string, image string) (bool, error) {
	f.interactive++
	f.image = image
	if f.wait {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return f.ok, f.err
}

type fakeRecorder struct {
	calls    int
	hookType string
	template string
}

func (f *fakeRecorder) RecordPost(_, _, hookType, template string) (string, error) {
	f.calls++
	f.hookType = hookType
	f.template = template
	return "post-1", nil
}

func sampleAnalysis(hash string) impact.Analysis {
	return impact.Analysis{Impact: domain.RepositoryImpact{
		Name:             "widgets",
		Description:      "Widgets for everyone",
		TotalCommits:     2,
		MarketingHooks:   []string{"🚀 1 new feature shipped", "🐛 1 bug squashed"},
		VisualHighlights: []string{"Most active file: main.go"},
		RecentChanges: []domain.CommitRecord{
			{Hash: hash, Author: "Ada", Message: "add dark mode", Timestamp: "2024-06-01T10:00:00Z", FilesChanged: []string{"main.go"}},
			{Hash: "00000001", Author: "Ada", Message: "fix login bug"},
		},
	}}
}

type harness struct {
	analyzer *fakeAnalyzer
	renderer *fakeRenderer
	driver   *fakeDriver
	recorder *fakeRecorder
	history  *history.Store
	disp     *Dispatcher
	outDir   string
}

func newHarness(t *testing.T, mode domain.Mode) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := history.Load(filepath.Join(dir, "history.json"))
	require.NoError(t, err)

	h := &harness{
		analyzer: &fakeAnalyzer{analysis: sampleAnalysis("abc12345")},
		renderer: &fakeRenderer{img: []byte("png")},
		driver:   &fakeDriver{ok: true},
		recorder: &fakeRecorder{},
		history:  store,
		outDir:   filepath.Join(dir, "output"),
	}
	h.disp = &Dispatcher{
		Analyzer: h.analyzer,
		History:  store,
		Renderer: h.renderer,
		Driver:   h.driver,
		Learning: h.recorder,
		Options: Options{
			Mode:           mode,
			ConfirmTimeout: time.Second,
			OutputDir:      h.outDir,
		},
	}
	return h
}

var widgets = domain.WatchedRepo{Name: "widgets", URL: "https://github.com/octo/widgets.git", Enabled: true}

func TestRun_AutoPosts(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)

	var states []State
	h.disp.OnState = func(_ string, s State) { states = append(states, s) }

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePosted, out.State)
	require.NoError(t, out.Err)
	require.True(t, out.FirstPost)
	require.Equal(t, "abc12345", out.CommitHash)
	require.Equal(t, "post-1", out.PostID)
	require.Equal(t, []State{StateAnalyzing, StateRendering, StateComposing, StatePosting, StatePosted}, states)

	require.Equal(t, 1, h.driver.posts)
	require.Equal(t, filepath.Join(h.outDir, "widgets", ImageFile), h.driver.image)
	require.Equal(t, 1, h.recorder.calls)
	require.Equal(t, "launch", h.recorder.hookType)
	require.Equal(t, DefaultTemplate, h.recorder.template)

	e, ok := h.history.Entry("widgets")
	require.True(t, ok)
	require.Equal(t, 1, e.TweetsSent)
	require.Equal(t, "abc12345", e.LastTweetedCommit)
	require.True(t, e.FirstTweet)
	require.Len(t, e.Commits, 1)

	img, err := os.ReadFile(out.ImagePath)
	require.NoError(t, err)
	require.Equal(t, []byte("png"), img)
	text, err := os.ReadFile(out.CaptionPath)
	require.NoError(t, err)
	require.Equal(t, out.Caption, string(text))
}

func TestRun_FirstPostRequestsLookback(t *testing.T) {
	h := newHarness(t, domain.ModeTest)
	h.disp.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }

	h.disp.Run(context.Background(), widgets)
	require.Len(t, h.analyzer.opts, 1)
	require.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), h.analyzer.opts[0].RecentSince)
	require.Equal(t, 20, h.analyzer.opts[0].RecentMax)
}

func TestRun_SecondRunSkips(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)

	first := h.disp.Run(context.Background(), widgets)
	second := h.disp.Run(context.Background(), widgets)

	require.Equal(t, StatePosted, first.State)
	require.Equal(t, StateSkipped, second.State)
	require.False(t, second.Failed())
	require.Equal(t, 1, h.driver.posts)
	require.Equal(t, 1, h.renderer.calls)

	// Not a first post any more, so no lookback on the second run.
	require.True(t, h.analyzer.opts[1].RecentSince.IsZero())

	e, _ := h.history.Entry("widgets")
	require.Equal(t, 1, e.TweetsSent)
}

func TestRun_NewCommitPostsAgain(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.disp.Run(context.Background(), widgets)

	h.analyzer.analysis = sampleAnalysis("def67890")
	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePosted, out.State)
	require.False(t, out.FirstPost)

	e, _ := h.history.Entry("widgets")
	require.Equal(t, 2, e.TweetsSent)
	require.Equal(t, "def67890", e.LastTweetedCommit)
	require.Len(t, e.Commits, 2)
}

func TestRun_AnalysisFailed(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.analyzer.err = impact.ErrRepositoryUnavailable

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StateAnalysisFailed, out.State)
	require.ErrorIs(t, out.Err, impact.ErrRepositoryUnavailable)
	require.Zero(t, h.renderer.calls)
	require.Zero(t, h.driver.posts)
	require.True(t, h.history.IsFirstPost("widgets"))
}

func TestRun_NoCommits(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.analyzer.analysis = impact.Analysis{}

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StateAnalysisFailed, out.State)
	require.ErrorIs(t, out.Err, ErrNoCommits)
}

func TestRun_RenderFailureFallsBackToText(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.renderer.err = errors.New("no chrome")

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePosted, out.State)
	require.Error(t, out.Err)
	require.Empty(t, out.ImagePath)
	require.Empty(t, h.driver.image)
	require.Equal(t, 1, h.driver.posts)
}

func TestRun_PartialCaptureIsDiscarded(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.renderer.img = []byte("png")
	h.renderer.err = errors.New("capture failed")

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePosted, out.State)
	require.EqualError(t, out.Err, "capture failed")
	require.Empty(t, out.ImagePath)
	require.Empty(t, h.driver.image)
	require.NoFileExists(t, filepath.Join(h.outDir, "widgets", ImageFile))
	require.FileExists(t, filepath.Join(h.outDir, "widgets", CaptionFile))
}

func TestRun_RenderFailureRequiredImage(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.renderer.err = errors.New("no chrome")
	h.disp.Options.RequireImage = true

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StateRenderFailed, out.State)
	require.Zero(t, h.driver.posts)
	require.True(t, h.history.IsFirstPost("widgets"))
}

func TestRun_PostFailedNeverRecords(t *testing.T) {
	tests := []struct {
		name   string
		driver *fakeDriver
		want   error
	}{
		{"rejected", &fakeDriver{ok: false}, ErrNotSubmitted},
		{"error", &fakeDriver{err: errors.New("selector not found")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, domain.ModeAuto)
			h.disp.Driver = tt.driver

			out := h.disp.Run(context.Background(), widgets)
			require.Equal(t, StatePostFailed, out.State)
			require.Error(t, out.Err)
			if tt.want != nil {
				require.ErrorIs(t, out.Err, tt.want)
			}
			require.True(t, h.history.IsFirstPost("widgets"))
			require.Zero(t, h.recorder.calls)
		})
	}
}

func TestRun_NoDriver(t *testing.T) {
	h := newHarness(t, domain.ModeAuto)
	h.disp.Driver = nil

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePostFailed, out.State)
	require.ErrorIs(t, out.Err, ErrNoDriver)
}

func TestRun_TestModePreviews(t *testing.T) {
	h := newHarness(t, domain.ModeTest)

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePreviewed, out.State)
	require.Zero(t, h.driver.posts)
	require.Zero(t, h.driver.interactive)
	require.NotEmpty(t, out.Caption)
	require.FileExists(t, out.CaptionPath)
	require.True(t, h.history.IsFirstPost("widgets"))
}

func TestRun_ConfirmMode(t *testing.T) {
	h := newHarness(t, domain.ModeConfirm)

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePosted, out.State)
	require.Equal(t, 1, h.driver.interactive)
	require.Zero(t, h.driver.posts)
}

func TestRun_ConfirmTimeout(t *testing.T) {
	h := newHarness(t, domain.ModeConfirm)
	h.driver.wait = true
	h.disp.Options.ConfirmTimeout = 20 * time.Millisecond

	out := h.disp.Run(context.Background(), widgets)
	require.Equal(t, StatePostFailed, out.State)
	require.ErrorIs(t, out.Err, ErrConfirmWait)
	require.True(t, h.history.IsFirstPost("widgets"))
}

func TestRun_RenderData(t *testing.T) {
	h := newHarness(t, domain.ModeTest)
	h.disp.Run(context.Background(), widgets)

	require.Equal(t, DefaultTemplate, h.renderer.tmpl)
	require.Equal(t, "octo/widgets", h.renderer.data["repo_name"])
	require.Equal(t, 2, h.renderer.data["total_commits"])
	require.Equal(t, 2, h.renderer.data["recent_count"])
	require.Equal(t, "abc12345", h.renderer.data["commit_hash"])
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/octo/widgets.git", "octo/widgets"},
		{"git@github.com:octo/widgets.git", "octo/widgets"},
		{"https://github.com/octo", "widgets"},
		{"/srv/repos/widgets", "widgets"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, displayName(domain.WatchedRepo{Name: "widgets", URL: tt.url}), tt.url)
	}
}

func TestLinkFor(t *testing.T) {
	require.Equal(t, "https://github.com/octo/widgets", linkFor("https://github.com/octo/widgets.git"))
	require.Empty(t, linkFor("git@github.com:octo/widgets.git"))
	require.Empty(t, linkFor("/srv/repos/widgets"))
}
