package screen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

var (
	ErrUnknownGeometry = errors.New("screen geometry unknown")

	currentPattern = regexp.MustCompile(`current (\d+) x (\d+)`)
	primaryPattern = regexp.MustCompile(`(?m)^\S+ connected primary (\d+)x(\d+)\+`)
)

type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// Detector reads the screen size from xrandr. Under XWayland this reports
// the combined logical size, which is good enough for sizing a dialog.
type Detector struct {
	run runFunc
}

func NewDetector() *Detector {
	return &Detector{run: runCommand}
}

func (d *Detector) Detect(ctx context.Context) (int, int, error) {
	out, err := d.run(ctx, "xrandr", "--current")
	if err != nil {
		return 0, 0, fmt.Errorf("run xrandr: %w", err)
	}

	return ParseXrandr(out)
}

// ParseXrandr prefers the primary output and falls back to the "current"
// size of screen 0.
func ParseXrandr(out string) (int, int, error) {
	for _, pattern := range []*regexp.Regexp{primaryPattern, currentPattern} {
		match := pattern.FindStringSubmatch(out)
		if match == nil {
			continue
		}

		width, werr := strconv.Atoi(match[1])
		height, herr := strconv.Atoi(match[2])
		if werr == nil && herr == nil && width > 0 && height > 0 {
			return width, height, nil
		}
	}

	return 0, 0, ErrUnknownGeometry
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.String(), err
}
