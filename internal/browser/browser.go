// Package browser drives a Chrome instance through chromedp to capture
// rendered templates and to publish posts.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

var (
	// ErrPlatformDisabled is returned by drivers whose platform is switched off.
	ErrPlatformDisabled = errors.New("browser: platform disabled")
	// ErrConfirmTimeout is returned when a human did not submit in time.
	ErrConfirmTimeout = errors.New("browser: confirmation timed out")
)

// Options configure the Chrome process.
type Options struct {
	Headless    bool
	UserDataDir string
	Entropy     Entropy
	Logger      domain.Logger
}

// Browser owns one Chrome process. It is started lazily by the first tab
// and shared by the screenshotter and the posting drivers, one tab at a time.
type Browser struct {
	opts Options

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New returns an unstarted browser.
func New(opts Options) *Browser {
	if opts.Logger == nil {
		opts.Logger = log.NopLogger{}
	}
	return &Browser{opts: opts}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(1280, 800),
	)
	if b.opts.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(b.opts.UserDataDir))
	}
	return opts
}

func (b *Browser) start() error {
	if b.browserCtx != nil {
		return nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("browser: start chrome: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.opts.Logger.Debug("browser: chrome started (headless=%t)", b.opts.Headless)
	return nil
}

// tab opens a new tab that is closed when the returned cancel is called
// or ctx is done.
func (b *Browser) tab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.start(); err != nil {
		return nil, nil, err
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	stop := context.AfterFunc(ctx, cancel)
	return tabCtx, func() {
		stop()
		cancel()
	}, nil
}

// Close shuts Chrome down. It is safe to call on an unstarted browser.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		return nil
	}

	err := chromedp.Cancel(b.browserCtx)
	b.browserCancel()
	b.allocCancel()
	b.browserCtx = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pause is a chromedp action that sleeps for d.
func pause(d time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error { return sleep(ctx, d) }
}

// firstVisible waits for the first selector that becomes visible within
// per, trying selectors in order.
func firstVisible(ctx context.Context, selectors []string, per time.Duration) (string, error) {
	var lastErr error
	for _, sel := range selectors {
		waitCtx, cancel := context.WithTimeout(ctx, per)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			return sel, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("browser: none of %d selectors appeared: %w", len(selectors), lastErr)
}
