package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/footprint-tools/storyteller/internal/domain"
)

// Screenshotter captures HTML documents with the shared browser.
type Screenshotter struct {
	b *Browser
}

func NewScreenshotter(b *Browser) *Screenshotter {
	return &Screenshotter{b: b}
}

// Capture loads html into a fresh tab sized to vp and returns a PNG.
func (s *Screenshotter) Capture(ctx context.Context, html string, vp domain.Viewport) ([]byte, error) {
	tabCtx, cancel, err := s.b.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}

	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height), chromedp.EmulateScale(scale)),
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("browser: capture: %w", err)
	}
	return buf, nil
}

func setContent(html string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	}
}

var _ domain.Screenshotter = (*Screenshotter)(nil)
