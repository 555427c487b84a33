package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPollInterval      = 300 * time.Second
	DefaultHorizon           = 23 * time.Hour
	DefaultInactivityTimeout = 5 * time.Minute
	DefaultRetryPause        = 2 * time.Second
	DefaultDialogTitle       = "taskguard: add a task"
	DefaultTaskBinary        = "task"
)

// Config holds the daemon's operating parameters. It is fixed for the
// lifetime of the process.
type Config struct {
	PollInterval      time.Duration
	Horizon           time.Duration
	InactivityTimeout time.Duration
	// SuppressionWindow is how long after an episode start the scheduler
	// refuses to begin another one. Defaults to PollInterval.
	SuppressionWindow time.Duration
	RetryPause        time.Duration

	RuntimeDir    string
	TaskBinary    string
	TaskDataDir   string
	WatchTaskData bool

	DialogCommand []string
	DialogTitle   string

	LogLevel string
}

func (c Config) Validate() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"poll interval", c.PollInterval},
		{"horizon", c.Horizon},
		{"inactivity timeout", c.InactivityTimeout},
		{"suppression window", c.SuppressionWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.RetryPause < 0 {
		return fmt.Errorf("retry pause must not be negative, got %s", c.RetryPause)
	}
	if strings.TrimSpace(c.RuntimeDir) == "" {
		return errors.New("runtime dir is required")
	}
	if strings.TrimSpace(c.TaskBinary) == "" {
		return errors.New("task binary is required")
	}
	if len(c.DialogCommand) == 0 || strings.TrimSpace(c.DialogCommand[0]) == "" {
		return errors.New("dialog command is required")
	}
	if c.WatchTaskData && strings.TrimSpace(c.TaskDataDir) == "" {
		return errors.New("task data dir is required when watching task data")
	}

	return nil
}
