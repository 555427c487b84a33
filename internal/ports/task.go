package ports

import (
	"context"
	"time"
)

type TaskCounter interface {
	// CountActionable returns the number of pending, not overdue tasks due
	// before now+horizon. Any failure yields 0.
	CountActionable(ctx context.Context, horizon time.Duration) int
}

type TaskSubmitter interface {
	Submit(ctx context.Context, text string) error
}
