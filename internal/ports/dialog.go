package ports

import (
	"context"

	"github.com/bnema/taskguard/internal/domain"
)

type DialogLauncher interface {
	// Launch runs one round of the interactive surface and blocks until it
	// exits.
	Launch(ctx context.Context, req domain.DialogRequest) error
}

type WindowEmphasizer interface {
	TryBringToFront(ctx context.Context, title string) domain.EmphasisResult
}
