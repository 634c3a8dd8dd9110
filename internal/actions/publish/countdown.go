package publish

import (
	"context"
	"sync"
	"time"

	"github.com/footprint-tools/storyteller/internal/pipeline"
	"github.com/footprint-tools/storyteller/internal/ui/wait"
)

// confirmWatcher draws a countdown while a confirm-mode run sits in the
// posting state. Aborting the countdown cancels the run.
type confirmWatcher struct {
	parent    context.Context
	cancelRun context.CancelFunc
	timeout   time.Duration
	deps      Deps

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

func newConfirmWatcher(ctx context.Context, cancelRun context.CancelFunc, deps Deps) *confirmWatcher {
	return &confirmWatcher{
		parent:    ctx,
		cancelRun: cancelRun,
		timeout:   deps.Config.ConfirmTimeout(),
		deps:      deps,
	}
}

// OnState is installed as the dispatcher's state observer.
func (w *confirmWatcher) OnState(repo string, st pipeline.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()
	if st != pipeline.StatePosting {
		return
	}

	ctx, stop := context.WithCancel(w.parent)
	done := make(chan struct{})
	w.stop, w.done = stop, done

	go func() {
		defer close(done)
		res, err := w.deps.Countdown(ctx, wait.Options{
			Label:   "Submit the post for " + repo + " in the browser",
			Timeout: w.timeout,
			Styler:  w.deps.Styler,
		})
		if err != nil {
			w.deps.Logger.Warn("countdown: %v", err)
			return
		}
		if res == wait.Aborted {
			w.deps.Logger.Info("confirm: aborted by user for %s", repo)
			w.cancelRun()
		}
	}()
}

// Close stops a running countdown and waits for it to exit.
func (w *confirmWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *confirmWatcher) stopLocked() {
	if w.stop == nil {
		return
	}
	w.stop()
	<-w.done
	w.stop, w.done = nil, nil
}
