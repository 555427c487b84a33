package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/taskguard/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	PollInterval      string   `toml:"poll_interval"`
	Horizon           string   `toml:"horizon"`
	InactivityTimeout string   `toml:"inactivity_timeout"`
	SuppressionWindow string   `toml:"suppression_window"`
	RetryPause        string   `toml:"retry_pause"`
	RuntimeDir        string   `toml:"runtime_dir"`
	TaskBin           string   `toml:"task_bin"`
	TaskDataDir       string   `toml:"task_data_dir"`
	WatchTaskData     bool     `toml:"watch_task_data"`
	DialogCommand     []string `toml:"dialog_command" comment:"Dialog argv. {title} {self} {width} {height} are substituted per round; width and height are 70% of the screen in pixels, also exported as TASKGUARD_DIALOG_WIDTH/HEIGHT. The default terminal ignores them; use e.g. [\"yad\", \"--width={width}\", \"--height={height}\", ...] to size the window."`
	DialogTitle       string   `toml:"dialog_title"`
	LogLevel          string   `toml:"log_level"`
}

func toSchema(cfg domain.Config) fileSchema {
	return fileSchema{
		PollInterval:      cfg.PollInterval.String(),
		Horizon:           cfg.Horizon.String(),
		InactivityTimeout: cfg.InactivityTimeout.String(),
		SuppressionWindow: cfg.SuppressionWindow.String(),
		RetryPause:        cfg.RetryPause.String(),
		RuntimeDir:        cfg.RuntimeDir,
		TaskBin:           cfg.TaskBinary,
		TaskDataDir:       cfg.TaskDataDir,
		WatchTaskData:     cfg.WatchTaskData,
		DialogCommand:     cfg.DialogCommand,
		DialogTitle:       cfg.DialogTitle,
		LogLevel:          cfg.LogLevel,
	}
}

// Encode renders cfg in the format Load reads back.
func Encode(cfg domain.Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}

// WriteFile stores cfg at path atomically. An existing file is kept unless
// force is set.
func WriteFile(path string, cfg domain.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
