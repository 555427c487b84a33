package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	home       string
	runtimeDir string
	argsLog    string
}

func newCLIEnv(t *testing.T, count int) cliEnv {
	t.Helper()

	home := t.TempDir()
	env := cliEnv{
		home:       home,
		runtimeDir: filepath.Join(home, "run"),
		argsLog:    filepath.Join(home, "task-args.log"),
	}

	script := "#!/bin/sh\n" +
		"echo \"$@\" >> '" + env.argsLog + "'\n" +
		"case \"$*\" in\n" +
		"  *count) echo " + strconv.Itoa(count) + " ;;\n" +
		"esac\n"
	taskBin := filepath.Join(home, "fake-task")
	require.NoError(t, os.WriteFile(taskBin, []byte(script), 0o755))

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_RUNTIME_DIR", home)
	t.Setenv("TASKGUARD_CONFIG", "")
	t.Setenv("TASKGUARD_RUNTIME_DIR", env.runtimeDir)
	t.Setenv("TASKGUARD_TASK_BIN", taskBin)
	t.Setenv("TASKGUARD_LOG_LEVEL", "error")
	return env
}

func (e cliEnv) taskCalls(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(e.argsLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	newCLIEnv(t, 1)

	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestCheckPrintsCountWhenSatisfied(t *testing.T) {
	env := newCLIEnv(t, 3)

	stdout, _, err := executeCLI(t, "check")
	require.NoError(t, err)
	assert.Equal(t, "3\n", stdout)

	calls := env.taskCalls(t)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "status:pending")
	assert.Contains(t, calls[0], "-OVERDUE")
	assert.Contains(t, calls[0], "due.before:now+23h")
}

func TestCheckFailsWhenNothingIsDue(t *testing.T) {
	newCLIEnv(t, 0)

	stdout, _, err := executeCLI(t, "check")
	require.ErrorIs(t, err, errNoActionableTask)
	assert.Equal(t, "0\n", stdout)
}

func TestCheckTreatsMissingTaskToolAsZero(t *testing.T) {
	newCLIEnv(t, 1)
	t.Setenv("TASKGUARD_TASK_BIN", "taskguard-missing-task-binary")

	_, _, err := executeCLI(t, "check", "--quiet")
	require.ErrorIs(t, err, errNoActionableTask)
}

func TestCheckHonorsHorizonFromEnvironment(t *testing.T) {
	env := newCLIEnv(t, 1)
	t.Setenv("TASKGUARD_HORIZON", "90m")

	_, _, err := executeCLI(t, "check")
	require.NoError(t, err)

	calls := env.taskCalls(t)
	require.NotEmpty(t, calls)
	assert.Contains(t, calls[0], "due.before:now+90min")
}

func TestAddRejectsBlankDescription(t *testing.T) {
	env := newCLIEnv(t, 1)

	_, _, err := executeCLI(t, "add", "   ")
	require.ErrorIs(t, err, domain.ErrEmptyTask)
	assert.Empty(t, env.taskCalls(t))
}

func TestAddSubmitsTaskAndClearsEpisodeMarker(t *testing.T) {
	env := newCLIEnv(t, 1)
	require.NoError(t, os.MkdirAll(env.runtimeDir, 0o700))
	marker := filepath.Join(env.runtimeDir, domain.EpisodeRecordKey)
	require.NoError(t, os.WriteFile(marker, []byte("1700000000\n"), 0o600))

	stdout, _, err := executeCLI(t, "add", "call", "the", "bank", "due:today")
	require.NoError(t, err)
	assert.Contains(t, stdout, "task added (1 actionable)")

	calls := env.taskCalls(t)
	require.NotEmpty(t, calls)
	assert.Contains(t, calls[0], "add call the bank due:today")
	assert.NoFileExists(t, marker)
}

func TestPromptExitsWithoutFormWhenAlreadySatisfied(t *testing.T) {
	env := newCLIEnv(t, 2)

	stdout, _, err := executeCLI(t, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "2 actionable task(s), nothing to add\n", stdout)

	calls := env.taskCalls(t)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "count")
}

func TestStatusReportsStaleLockAndEpisode(t *testing.T) {
	env := newCLIEnv(t, 0)
	require.NoError(t, os.MkdirAll(env.runtimeDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(env.runtimeDir, domain.LockRecordKey), []byte("999999999\n"), 0o600))
	start := strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
	require.NoError(t, os.WriteFile(filepath.Join(env.runtimeDir, domain.EpisodeRecordKey), []byte(start+"\n"), 0o600))

	stdout, _, err := executeCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "actionable tasks: 0 (a prompt is due)")
	assert.Contains(t, stdout, "stale lock (pid 999999999)")
	assert.Contains(t, stdout, "started 1m")
}

func TestStatusJSONOutput(t *testing.T) {
	env := newCLIEnv(t, 2)

	stdout, _, err := executeCLI(t, "status", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, float64(2), payload["actionable_count"])
	assert.Equal(t, true, payload["satisfied"])
	assert.Equal(t, "23h0m0s", payload["horizon"])
	assert.Equal(t, false, payload["daemon_running"])
	assert.Equal(t, env.runtimeDir, payload["runtime_dir"])
	assert.NotContains(t, payload, "episode_start")
}

func TestConfigShowPrintsEffectiveSettings(t *testing.T) {
	newCLIEnv(t, 1)
	t.Setenv("TASKGUARD_POLL_INTERVAL", "120")

	stdout, _, err := executeCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "poll_interval = ")
	assert.Contains(t, stdout, "2m0s")
	assert.Contains(t, stdout, "dialog_command")
}

func TestConfigInitRefusesToOverwriteWithoutForce(t *testing.T) {
	env := newCLIEnv(t, 1)

	stdout, _, err := executeCLI(t, "config", "init")
	require.NoError(t, err)
	path := filepath.Join(env.home, ".config", "taskguard", "config.toml")
	assert.Contains(t, stdout, path)
	assert.FileExists(t, path)

	_, _, err = executeCLI(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestInvalidConfigSurfacesError(t *testing.T) {
	newCLIEnv(t, 1)
	t.Setenv("TASKGUARD_HORIZON", "-5m")

	_, _, err := executeCLI(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon must be positive")
}

func TestDaemonRefusesToStartWhenAnotherInstanceIsAlive(t *testing.T) {
	env := newCLIEnv(t, 1)
	require.NoError(t, os.MkdirAll(env.runtimeDir, 0o700))
	lock := filepath.Join(env.runtimeDir, domain.LockRecordKey)
	owner := strconv.Itoa(os.Getppid())
	require.NoError(t, os.WriteFile(lock, []byte(owner+"\n"), 0o600))

	_, _, err := executeCLI(t, "daemon")
	require.ErrorIs(t, err, domain.ErrAlreadyRunning)

	data, err := os.ReadFile(lock)
	require.NoError(t, err)
	assert.Equal(t, owner, strings.TrimSpace(string(data)))
	assert.Empty(t, env.taskCalls(t))
}

func TestUnknownCommandIsRejected(t *testing.T) {
	newCLIEnv(t, 1)

	_, _, err := executeCLI(t, "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
