package status

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now               time.Time
	RuntimeDir        string
	SuppressionWindow time.Duration
	InactivityTimeout time.Duration
}

// frame is a program that draws one precomputed frame and quits.
type frame string

func (f frame) Init() tea.Cmd {
	return tea.Quit
}

func (f frame) Update(tea.Msg) (tea.Model, tea.Cmd) {
	return f, nil
}

func (f frame) View() string {
	return string(f)
}

// Render returns the status view for snapshot. It runs headless, so the
// result can be printed to any writer.
func Render(snapshot domain.Snapshot, opts RenderOptions) (string, error) {
	program := tea.NewProgram(
		frame(renderView(snapshot, opts, newStyles())),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)

	final, err := program.Run()
	if err != nil {
		return "", err
	}

	return final.View(), nil
}

func renderView(snapshot domain.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("taskguard"),
		s.header.Render(fmt.Sprintf("horizon: %s  poll: %s", formatDuration(snapshot.Horizon), formatDuration(snapshot.PollInterval))),
		s.section.Render(invariantLine(snapshot, s)),
		daemonLine(snapshot, s),
		episodeLine(snapshot, opts, s),
	}

	if opts.RuntimeDir != "" {
		lines = append(lines, s.section.Render(s.empty.Render("state: "+opts.RuntimeDir)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func invariantLine(snapshot domain.Snapshot, s styles) string {
	label := s.key.Render("actionable tasks:")
	if snapshot.Satisfied() {
		return label + " " + s.ok.Render(fmt.Sprintf("%d", snapshot.ActionableCount))
	}

	return label + " " + s.warning.Render("0 (a prompt is due)")
}

func daemonLine(snapshot domain.Snapshot, s styles) string {
	label := s.key.Render("daemon:")
	switch {
	case snapshot.LockOwner == 0:
		return label + " " + s.empty.Render("not running")
	case snapshot.LockOwnerAlive:
		return label + " " + s.detail.Render(fmt.Sprintf("running (pid %d)", snapshot.LockOwner))
	default:
		return label + " " + s.warning.Render(fmt.Sprintf("stale lock (pid %d)", snapshot.LockOwner))
	}
}

func episodeLine(snapshot domain.Snapshot, opts RenderOptions, s styles) string {
	label := s.key.Render("episode:")
	if snapshot.EpisodeStart.IsZero() {
		return label + " " + s.empty.Render("none")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	age := now.Sub(snapshot.EpisodeStart)
	if age < 0 {
		age = 0
	}

	parts := []string{fmt.Sprintf("started %s ago", formatDuration(age.Truncate(time.Second)))}
	if opts.InactivityTimeout > 0 && age < opts.InactivityTimeout {
		parts = append(parts, "active")
	}
	if opts.SuppressionWindow > 0 && age < opts.SuppressionWindow {
		parts = append(parts, fmt.Sprintf("suppressing for %s", formatDuration((opts.SuppressionWindow-age).Truncate(time.Second))))
	}

	return label + " " + s.detail.Render(strings.Join(parts, ", "))
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	case d%time.Minute == 0:
		return strings.TrimSuffix(d.String(), "0s")
	default:
		return d.String()
	}
}
