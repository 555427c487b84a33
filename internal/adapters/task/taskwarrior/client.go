package taskwarrior

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

// Overrides that keep the tool non-interactive and its output parseable.
var baseArgs = []string{"rc.confirmation=off", "rc.verbose=nothing", "rc.hooks=off"}

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, err error)

type Client struct {
	run runFunc
}

var (
	_ ports.TaskCounter   = (*Client)(nil)
	_ ports.TaskSubmitter = (*Client)(nil)
)

func NewClient(binary string) *Client {
	return &Client{run: commandRunner(binary)}
}

// CountActionable counts pending tasks that are not overdue and are due
// before now+horizon. Failures and unparseable output count as zero.
func (c *Client) CountActionable(ctx context.Context, horizon time.Duration) int {
	if ctx.Err() != nil {
		return 0
	}

	args := append(append([]string{}, baseArgs...),
		"status:pending",
		"-OVERDUE",
		"due.before:"+HorizonExpression(horizon),
		"count",
	)
	stdout, _, err := c.run(ctx, args...)
	if err != nil {
		return 0
	}

	return ParseCount(stdout)
}

// Submit passes text to "task add". The text is split on whitespace so that
// attribute tokens such as due:tomorrow reach the tool as separate
// arguments; the tool owns all syntax validation.
func (c *Client) Submit(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.ErrEmptyTask
	}

	args := append(append([]string{}, baseArgs...), "add")
	args = append(args, fields...)
	_, stderr, err := c.run(ctx, args...)
	if err != nil {
		return formatError("add", err, stderr)
	}

	return nil
}

// HorizonExpression renders a duration as a tool-relative date such as
// now+23h, falling back to minutes or seconds when hours are not exact.
func HorizonExpression(horizon time.Duration) string {
	switch {
	case horizon <= 0:
		return "now"
	case horizon%time.Hour == 0:
		return fmt.Sprintf("now+%dh", int64(horizon/time.Hour))
	case horizon%time.Minute == 0:
		return fmt.Sprintf("now+%dmin", int64(horizon/time.Minute))
	default:
		return fmt.Sprintf("now+%ds", int64(math.Ceil(horizon.Seconds())))
	}
}

// ParseCount keeps only the digits of the output. Anything without digits,
// or too large to represent, yields zero.
func ParseCount(output string) int {
	var digits strings.Builder
	for _, r := range output {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}

	count, err := strconv.Atoi(digits.String())
	if err != nil || count < 0 {
		return 0
	}

	return count
}

func commandRunner(binary string) runFunc {
	return func(ctx context.Context, args ...string) (string, string, error) {
		path, err := exec.LookPath(binary)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return "", "", fmt.Errorf("%w: %s", domain.ErrTaskToolUnavailable, binary)
			}
			return "", "", fmt.Errorf("locate %s: %w", binary, err)
		}

		cmd := exec.CommandContext(ctx, path, args...)
		var stdout bytes.Buffer
		var stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err = cmd.Run()
		return stdout.String(), strings.TrimSpace(stderr.String()), err
	}
}

func formatError(op string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("task %s: %w", op, err)
	}

	return fmt.Errorf("task %s: %w: %s", op, err, stderr)
}
