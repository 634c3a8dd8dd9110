package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/footprint-tools/storyteller/internal/domain"
)

const (
	linkedInFeed      = "https://www.linkedin.com/feed"
	linkedInStartPost = `button[aria-label*="Start a post"]`
	linkedInTextbox   = `div[contenteditable="true"][role="textbox"]`
	linkedInSubmit    = `button.share-actions__primary-action`
)

// LinkedIn posts to the LinkedIn feed. There is no status URL to watch,
// so PostInteractive waits for the composer to close.
type LinkedIn struct {
	b       *Browser
	enabled bool
}

func NewLinkedIn(b *Browser, enabled bool) *LinkedIn {
	return &LinkedIn{b: b, enabled: enabled}
}

func (l *LinkedIn) Platform() string { return "linkedin" }

func (l *LinkedIn) compose(ctx context.Context, text, imagePath string) (context.Context, context.CancelFunc, error) {
	tabCtx, cancel, err := l.b.tab(ctx)
	if err != nil {
		return nil, nil, err
	}

	e := &l.b.opts.Entropy
	actions := []chromedp.Action{
		chromedp.Navigate(linkedInFeed),
		pause(e.Delay()),
		waitWithin(linkedInStartPost, 30*time.Second),
		chromedp.Click(linkedInStartPost, chromedp.ByQuery),
		pause(e.Between(time.Second, 2*time.Second)),
		chromedp.WaitVisible(linkedInTextbox, chromedp.ByQuery),
		typeHuman(linkedInTextbox, text, e),
	}
	if imagePath != "" {
		actions = append(actions,
			pause(e.Between(500*time.Millisecond, 1500*time.Millisecond)),
			chromedp.SetUploadFiles(fileInput, []string{imagePath}, chromedp.ByQuery),
			pause(e.Delay()),
		)
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("browser: linkedin compose: %w", err)
	}
	return tabCtx, cancel, nil
}

func (l *LinkedIn) Post(ctx context.Context, text, imagePath string) (bool, error) {
	if !l.enabled {
		return false, ErrPlatformDisabled
	}

	tabCtx, cancel, err := l.compose(ctx, text, imagePath)
	if err != nil {
		return false, err
	}
	defer cancel()

	e := &l.b.opts.Entropy
	if err := chromedp.Run(tabCtx,
		pause(e.Delay()),
		chromedp.Click(linkedInSubmit, chromedp.ByQuery),
		pause(e.Between(2*time.Second, 4*time.Second)),
	); err != nil {
		return false, fmt.Errorf("browser: linkedin post: %w", err)
	}
	l.b.opts.Logger.Info("browser: posted to linkedin")
	return true, nil
}

func (l *LinkedIn) PostInteractive(ctx context.Context, text, imagePath string) (bool, error) {
	if !l.enabled {
		return false, ErrPlatformDisabled
	}

	tabCtx, cancel, err := l.compose(ctx, text, imagePath)
	if err != nil {
		return false, err
	}
	defer cancel()

	l.b.opts.Logger.Info("browser: linkedin composer ready, waiting for manual submit")
	if err := chromedp.Run(tabCtx, chromedp.WaitNotPresent(linkedInTextbox, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("%w: %v", ErrConfirmTimeout, ctx.Err())
		}
		return false, fmt.Errorf("browser: linkedin wait: %w", err)
	}
	return true, nil
}

var _ domain.PostingDriver = (*LinkedIn)(nil)
