package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/footprint-tools/storyteller/internal/domain"
)

const (
	twitterHome    = "https://twitter.com"
	twitterCompose = "https://twitter.com/compose/tweet"

	tweetTextarea = `div[contenteditable="true"][data-testid="tweetTextarea_0"]`
	tweetButton   = `div[data-testid="tweetButtonInline"]`
	fileInput     = `input[type="file"]`
)

var (
	textareaSelectors = []string{
		tweetTextarea,
		`div[contenteditable="true"][data-testid="tweetText"]`,
		`div[data-testid="tweetTextarea_0"]`,
		`div[role="textbox"][contenteditable="true"]`,
		`div[contenteditable="true"]`,
	}
	fileSelectors = []string{
		fileInput,
		`input[accept="image/*"]`,
		`input[data-testid="fileInput"]`,
	}
)

// Twitter posts to twitter.com with the shared browser session.
type Twitter struct {
	b       *Browser
	enabled bool
	// PollInterval is how often PostInteractive checks for a submitted post.
	PollInterval time.Duration
}

func NewTwitter(b *Browser, enabled bool) *Twitter {
	return &Twitter{b: b, enabled: enabled, PollInterval: 2 * time.Second}
}

func (t *Twitter) Platform() string { return "twitter" }

// Post types text with human-like pacing, attaches the image and submits.
func (t *Twitter) Post(ctx context.Context, text, imagePath string) (bool, error) {
	if !t.enabled {
		return false, ErrPlatformDisabled
	}

	tabCtx, cancel, err := t.b.tab(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	e := &t.b.opts.Entropy
	actions := []chromedp.Action{
		chromedp.Navigate(twitterHome),
		pause(e.Delay()),
		waitWithin(tweetTextarea, 30*time.Second),
		chromedp.Click(tweetTextarea, chromedp.ByQuery),
		typeHuman(tweetTextarea, text, e),
	}
	if imagePath != "" {
		actions = append(actions,
			pause(e.Between(500*time.Millisecond, 1500*time.Millisecond)),
			chromedp.SetUploadFiles(fileInput, []string{imagePath}, chromedp.ByQuery),
			pause(e.Delay()),
		)
	}
	actions = append(actions,
		pause(e.Delay()),
		chromedp.Click(tweetButton, chromedp.ByQuery),
		pause(e.Between(2*time.Second, 4*time.Second)),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return false, fmt.Errorf("browser: twitter post: %w", err)
	}
	t.b.opts.Logger.Info("browser: posted to twitter")
	return true, nil
}

// PostInteractive opens the composer pre-filled and waits until the tab
// navigates to a status page or ctx is done.
func (t *Twitter) PostInteractive(ctx context.Context, text, imagePath string) (bool, error) {
	if !t.enabled {
		return false, ErrPlatformDisabled
	}

	tabCtx, cancel, err := t.b.tab(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(twitterCompose)); err != nil {
		return false, fmt.Errorf("browser: open composer: %w", err)
	}

	sel, err := firstVisible(tabCtx, textareaSelectors, 5*time.Second)
	if err != nil {
		return false, err
	}
	if err := chromedp.Run(tabCtx,
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, text, chromedp.ByQuery),
	); err != nil {
		return false, fmt.Errorf("browser: fill composer: %w", err)
	}

	if imagePath != "" {
		if err := attach(tabCtx, imagePath); err != nil {
			// The human can still attach the image by hand.
			t.b.opts.Logger.Warn("browser: attach image: %v", err)
		}
	}

	t.b.opts.Logger.Info("browser: composer ready, waiting for manual submit")
	return t.waitForStatus(tabCtx)
}

func (t *Twitter) waitForStatus(ctx context.Context) (bool, error) {
	var last string
	if err := chromedp.Run(ctx, chromedp.Location(&last)); err != nil {
		return false, fmt.Errorf("browser: read location: %w", err)
	}

	interval := t.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for {
		if err := sleep(ctx, interval); err != nil {
			return false, fmt.Errorf("%w: %v", ErrConfirmTimeout, err)
		}

		var current string
		if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
			if ctx.Err() != nil {
				return false, fmt.Errorf("%w: %v", ErrConfirmTimeout, ctx.Err())
			}
			return false, fmt.Errorf("browser: read location: %w", err)
		}
		if submitted(last, current) {
			return true, nil
		}
		last = current
	}
}

// submitted reports whether a navigation from prev to cur means a post
// went out.
func submitted(prev, cur string) bool {
	return cur != prev && strings.Contains(cur, "/status/")
}

func attach(ctx context.Context, imagePath string) error {
	sel, err := firstVisibleOrPresent(ctx, fileSelectors, 5*time.Second)
	if err != nil {
		return err
	}
	return chromedp.Run(ctx,
		chromedp.SetUploadFiles(sel, []string{imagePath}, chromedp.ByQuery),
		pause(5*time.Second),
	)
}

// firstVisibleOrPresent is firstVisible for elements that are usually
// hidden, such as file inputs.
func firstVisibleOrPresent(ctx context.Context, selectors []string, per time.Duration) (string, error) {
	var lastErr error
	for _, sel := range selectors {
		waitCtx, cancel := context.WithTimeout(ctx, per)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			return sel, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("browser: none of %d selectors found: %w", len(selectors), lastErr)
}

// waitWithin waits for sel to be visible for at most d.
func waitWithin(sel string, d time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return chromedp.WaitVisible(sel, chromedp.ByQuery).Do(waitCtx)
	}
}

// typeHuman sends text one rune at a time with 50-150ms between keys.
func typeHuman(sel, text string, e *Entropy) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		for _, r := range text {
			if err := chromedp.SendKeys(sel, string(r), chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			if err := sleep(ctx, e.Between(50*time.Millisecond, 150*time.Millisecond)); err != nil {
				return err
			}
		}
		return nil
	}
}

var _ domain.PostingDriver = (*Twitter)(nil)
