package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/adapters/process"
	statusadapter "github.com/bnema/taskguard/internal/adapters/render/status"
	filestore "github.com/bnema/taskguard/internal/adapters/state/file"
	"github.com/bnema/taskguard/internal/adapters/task/taskwarrior"
	"github.com/bnema/taskguard/internal/application"
	"github.com/bnema/taskguard/internal/config"
	"github.com/bnema/taskguard/internal/domain"
	"github.com/spf13/viper"
)

type app struct {
	cfg            domain.Config
	configFile     string
	logger         *slog.Logger
	tasks          *taskwarrior.Client
	guard          *application.InstanceGuard
	suppression    *application.SuppressionClock
	service        *application.Service
	statusRenderer func(domain.Snapshot, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp(logOutput io.Writer) (*app, error) {
	configFile := envOrDefault("TASKGUARD_CONFIG", "")
	cfg, err := config.Load(viper.New(), configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(logOutput, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store := filestore.NewStore(cfg.RuntimeDir)
	tasks := taskwarrior.NewClient(cfg.TaskBinary)
	guard := application.NewInstanceGuard(store, process.Probe{}, logger)
	suppression := application.NewSuppressionClock(store, nil)

	return &app{
		cfg:            cfg,
		configFile:     configFile,
		logger:         logger,
		tasks:          tasks,
		guard:          guard,
		suppression:    suppression,
		service:        application.NewService(tasks, tasks, guard, suppression, cfg),
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

func newLogger(output io.Writer, level string) (*slog.Logger, error) {
	if output == nil {
		output = os.Stderr
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: lvl})), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
