package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

const waitDelay = 3 * time.Second

// Placeholders substituted into every argument of the dialog command.
const (
	PlaceholderTitle  = "{title}"
	PlaceholderWidth  = "{width}"
	PlaceholderHeight = "{height}"
	PlaceholderSelf   = "{self}"
)

type startFunc func(ctx context.Context, name string, args []string, env []string) error

// Launcher runs the dialog command synchronously. Cancelling ctx terminates
// the child.
type Launcher struct {
	command []string
	self    string
	start   startFunc
}

var _ ports.DialogLauncher = (*Launcher)(nil)

func NewLauncher(command []string, self string) *Launcher {
	return &Launcher{command: command, self: self, start: runCommand}
}

func (l *Launcher) Launch(ctx context.Context, req domain.DialogRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(l.command) == 0 {
		return fmt.Errorf("%w: empty command", domain.ErrDialogUnavailable)
	}

	argv := Expand(l.command, req, l.self)
	env := append(os.Environ(),
		"TASKGUARD_DIALOG_TITLE="+req.Title,
		"TASKGUARD_DIALOG_WIDTH="+strconv.Itoa(req.Dimensions.Width),
		"TASKGUARD_DIALOG_HEIGHT="+strconv.Itoa(req.Dimensions.Height),
	)

	return l.start(ctx, argv[0], argv[1:], env)
}

func Expand(command []string, req domain.DialogRequest, self string) []string {
	replacer := strings.NewReplacer(
		PlaceholderTitle, req.Title,
		PlaceholderWidth, strconv.Itoa(req.Dimensions.Width),
		PlaceholderHeight, strconv.Itoa(req.Dimensions.Height),
		PlaceholderSelf, self,
	)

	argv := make([]string, 0, len(command))
	for _, arg := range command {
		argv = append(argv, replacer.Replace(arg))
	}

	return argv
}

func runCommand(ctx context.Context, name string, args []string, env []string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDialogUnavailable, name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %v", domain.ErrDialogUnavailable, name, err)
	}

	err = cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("dialog exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("wait for dialog: %w", err)
	}

	return nil
}
