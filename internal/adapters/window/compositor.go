package window

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

const (
	compositorAttempts = 2
	// The window needs a moment to be mapped before the first request.
	compositorSettle = 500 * time.Millisecond
)

// Compositor asks the session compositor over D-Bus to raise the dialog.
// Modern compositors usually refuse the request; a refusal is final.
type Compositor struct {
	run    runFunc
	sleep  sleepFunc
	logger *slog.Logger
}

var _ ports.WindowEmphasizer = (*Compositor)(nil)

func NewCompositor(logger *slog.Logger) *Compositor {
	return &Compositor{run: runCommand, sleep: ports.Sleep, logger: logger}
}

func (c *Compositor) TryBringToFront(ctx context.Context, title string) domain.EmphasisResult {
	for attempt := 1; attempt <= compositorAttempts; attempt++ {
		if err := c.sleep(ctx, compositorSettle); err != nil {
			return domain.EmphasisRefused
		}

		stdout, err := c.run(ctx, "gdbus", "call", "--session",
			"--dest", "org.gnome.Shell",
			"--object-path", "/org/gnome/Shell",
			"--method", "org.gnome.Shell.Eval",
			raiseScript(title),
		)
		if err != nil {
			c.logger.Debug("compositor request failed", "attempt", attempt, "error", err)
			continue
		}

		if evalSucceeded(stdout) {
			return domain.EmphasisApplied
		}

		c.logger.Debug("compositor refused window stacking", "reply", strings.TrimSpace(stdout))
		return domain.EmphasisRefused
	}

	return domain.EmphasisRefused
}

func raiseScript(title string) string {
	return fmt.Sprintf(
		"global.get_window_actors().map(a => a.meta_window).filter(w => w.get_title() === %s).forEach(w => { w.make_above(); w.activate(global.get_current_time()); })",
		strconv.Quote(title),
	)
}

// evalSucceeded reads the (bool, string) tuple printed by gdbus.
func evalSucceeded(reply string) bool {
	return strings.HasPrefix(strings.TrimSpace(reply), "(true,")
}
