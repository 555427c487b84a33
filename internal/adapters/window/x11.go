package window

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

const (
	x11Attempts = 10
	x11Backoff  = 200 * time.Millisecond
)

// X11 asks the window manager to keep the dialog above other windows. The
// window usually does not exist yet on the first attempts, so failures are
// retried.
type X11 struct {
	run    runFunc
	sleep  sleepFunc
	logger *slog.Logger
}

var _ ports.WindowEmphasizer = (*X11)(nil)

func NewX11(logger *slog.Logger) *X11 {
	return &X11{run: runCommand, sleep: ports.Sleep, logger: logger}
}

func (x *X11) TryBringToFront(ctx context.Context, title string) domain.EmphasisResult {
	var lastErr error
	for attempt := 1; attempt <= x11Attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		_, err := x.run(ctx, "wmctrl", "-r", title, "-b", "add,above")
		if err == nil {
			_, _ = x.run(ctx, "wmctrl", "-a", title)
			x.logger.Debug("dialog raised", "attempt", attempt)
			return domain.EmphasisApplied
		}
		lastErr = err

		if attempt < x11Attempts {
			if err := x.sleep(ctx, x11Backoff); err != nil {
				break
			}
		}
	}

	x.logger.Debug("dialog not raised", "error", lastErr)
	return domain.EmphasisRefused
}
