package window

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

type runFunc func(ctx context.Context, name string, args ...string) (stdout string, err error)

type sleepFunc func(ctx context.Context, d time.Duration) error

// DetectBackend classifies the session from its environment. lookup is
// usually os.Getenv.
func DetectBackend(lookup func(string) string) domain.DisplayBackend {
	sessionType := strings.ToLower(strings.TrimSpace(lookup("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return domain.BackendCompositor
	case "x11":
		return domain.BackendX11
	}

	if lookup("WAYLAND_DISPLAY") != "" {
		return domain.BackendCompositor
	}
	if lookup("DISPLAY") != "" {
		return domain.BackendX11
	}

	return domain.BackendUnknown
}

// Select returns the emphasis strategy for backend.
func Select(backend domain.DisplayBackend, logger *slog.Logger) ports.WindowEmphasizer {
	if logger == nil {
		logger = slog.Default()
	}

	switch backend {
	case domain.BackendCompositor:
		return NewCompositor(logger)
	case domain.BackendX11:
		return NewX11(logger)
	default:
		return Noop{}
	}
}

type Noop struct{}

func (Noop) TryBringToFront(context.Context, string) domain.EmphasisResult {
	return domain.EmphasisRefused
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	err = cmd.Run()
	return stdout.String(), err
}
