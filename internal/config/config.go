package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "TASKGUARD"
	configName = "config"
	configType = "toml"
	appDirName = "taskguard"

	KeyPollInterval      = "poll_interval"
	KeyHorizon           = "horizon"
	KeyInactivityTimeout = "inactivity_timeout"
	KeySuppressionWindow = "suppression_window"
	KeyRetryPause        = "retry_pause"
	KeyRuntimeDir        = "runtime_dir"
	KeyTaskBin           = "task_bin"
	KeyTaskDataDir       = "task_data_dir"
	KeyWatchTaskData     = "watch_task_data"
	KeyDialogCommand     = "dialog_command"
	KeyDialogTitle       = "dialog_title"
	KeyLogLevel          = "log_level"
)

// DefaultDialogCommand opens the built-in prompt in a terminal window.
var DefaultDialogCommand = []string{"x-terminal-emulator", "-T", "{title}", "-e", "{self}", "prompt"}

// Load resolves the configuration from defaults, an optional TOML file and
// TASKGUARD_* environment variables, in increasing precedence. configFile
// overrides the default search path when set.
func Load(v *viper.Viper, configFile string) (domain.Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := domain.Config{
		RuntimeDir:    strings.TrimSpace(v.GetString(KeyRuntimeDir)),
		TaskBinary:    strings.TrimSpace(v.GetString(KeyTaskBin)),
		TaskDataDir:   strings.TrimSpace(v.GetString(KeyTaskDataDir)),
		WatchTaskData: v.GetBool(KeyWatchTaskData),
		DialogCommand: v.GetStringSlice(KeyDialogCommand),
		DialogTitle:   v.GetString(KeyDialogTitle),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{KeyPollInterval, &cfg.PollInterval},
		{KeyHorizon, &cfg.Horizon},
		{KeyInactivityTimeout, &cfg.InactivityTimeout},
		{KeyRetryPause, &cfg.RetryPause},
	}
	for _, d := range durations {
		parsed, err := ParseDuration(v.GetString(d.key))
		if err != nil {
			return domain.Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}

	// An unset suppression window follows the poll interval.
	cfg.SuppressionWindow = cfg.PollInterval
	if raw := strings.TrimSpace(v.GetString(KeySuppressionWindow)); raw != "" {
		parsed, err := ParseDuration(raw)
		if err != nil {
			return domain.Config{}, fmt.Errorf("%s: %w", KeySuppressionWindow, err)
		}
		cfg.SuppressionWindow = parsed
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPollInterval, domain.DefaultPollInterval.String())
	v.SetDefault(KeyHorizon, domain.DefaultHorizon.String())
	v.SetDefault(KeyInactivityTimeout, domain.DefaultInactivityTimeout.String())
	v.SetDefault(KeySuppressionWindow, "")
	v.SetDefault(KeyRetryPause, domain.DefaultRetryPause.String())
	v.SetDefault(KeyRuntimeDir, DefaultRuntimeDir())
	v.SetDefault(KeyTaskBin, domain.DefaultTaskBinary)
	v.SetDefault(KeyTaskDataDir, DefaultTaskDataDir())
	v.SetDefault(KeyWatchTaskData, false)
	v.SetDefault(KeyDialogCommand, DefaultDialogCommand)
	v.SetDefault(KeyDialogTitle, domain.DefaultDialogTitle)
	v.SetDefault(KeyLogLevel, "info")
}

// ParseDuration accepts Go duration syntax or a bare number of seconds.
func ParseDuration(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.New("duration is empty")
	}

	if seconds, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}

	return d, nil
}

func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appDirName), nil
}

func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, configName+"."+configType), nil
}

// DefaultRuntimeDir is per session when XDG_RUNTIME_DIR is set and per user
// otherwise.
func DefaultRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appDirName)
	}

	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", appDirName, os.Getuid()))
}

func DefaultTaskDataDir() string {
	if dir := os.Getenv("TASKDATA"); dir != "" {
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homeDir, ".task")
}
