package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedPromptModel = errors.New("unexpected final prompt model type")

// DefaultRecheckInterval is how often an open form looks for a task added
// elsewhere.
const DefaultRecheckInterval = 2 * time.Second

// SubmitFunc adds a task and returns the actionable count afterwards.
type SubmitFunc func(ctx context.Context, text string) (int, error)

// CountFunc returns the current actionable count.
type CountFunc func(ctx context.Context) int

type Outcome string

const (
	OutcomeAdded        Outcome = "added"
	OutcomeOutOfHorizon Outcome = "out_of_horizon"
	OutcomeDismissed    Outcome = "dismissed"
	// OutcomeSatisfied means a task was added from somewhere else while the
	// form was open.
	OutcomeSatisfied    Outcome = "satisfied"
)

type Result struct {
	Outcome Outcome
	Text    string
	Count   int
}

type Options struct {
	Title   string
	Horizon time.Duration
	Input   io.Reader
	Output  io.Writer

	// Count, when set, is polled every RecheckInterval; the form closes as
	// soon as it reports an actionable task.
	Count           CountFunc
	RecheckInterval time.Duration
}

type submitDoneMsg struct {
	count int
	err   error
}

type recheckMsg struct {
	count int
}

type model struct {
	ctx    context.Context
	submit SubmitFunc
	opts   Options
	styles styles
	input  textinput.Model
	width  int
	busy   bool
	errMsg string
	result Result
	done   bool
}

func newModel(ctx context.Context, submit SubmitFunc, opts Options) model {
	input := textinput.New()
	input.Placeholder = "Write weekly report due:eod"
	input.Prompt = "> "
	input.CharLimit = 512
	input.Focus()

	if opts.RecheckInterval <= 0 {
		opts.RecheckInterval = DefaultRecheckInterval
	}

	return model{
		ctx:    ctx,
		submit: submit,
		opts:   opts,
		styles: newStyles(),
		input:  input,
		width:  72,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.recheckCmd())
}

func (m model) recheckCmd() tea.Cmd {
	if m.opts.Count == nil {
		return nil
	}

	ctx, count := m.ctx, m.opts.Count
	return tea.Tick(m.opts.RecheckInterval, func(time.Time) tea.Msg {
		return recheckMsg{count: count(ctx)}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 10)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			m.result = Result{Outcome: OutcomeDismissed}
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				m.errMsg = "Type a task with a due date first."
				return m, nil
			}
			m.busy = true
			m.errMsg = ""
			return m, m.submitCmd(text)
		}
	case recheckMsg:
		if m.done {
			return m, nil
		}
		// A submit in flight reports its own result.
		if msg.count > 0 && !m.busy {
			m.done = true
			m.result = Result{Outcome: OutcomeSatisfied, Count: msg.count}
			return m, tea.Quit
		}
		return m, m.recheckCmd()
	case submitDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.done = true
		m.result = Result{Outcome: OutcomeAdded, Text: strings.TrimSpace(m.input.Value()), Count: msg.count}
		if msg.count == 0 {
			m.result.Outcome = OutcomeOutOfHorizon
		}
		return m, tea.Quit
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		count, err := m.submit(m.ctx, text)
		return submitDoneMsg{count: count, err: err}
	}
}

func (m model) View() string {
	if m.done {
		return ""
	}

	s := m.styles
	lines := []string{
		s.title.Render(m.opts.Title),
		"",
		s.help.Render(fmt.Sprintf("You have no pending task due within the next %s.", formatHorizon(m.opts.Horizon))),
		s.help.Render("Add one, with a due date the task tool understands:"),
		s.example.Render("  Call the bank due:today"),
		s.example.Render("  Draft proposal due:eod"),
		s.example.Render("  Stretch due:2h"),
		s.example.Render("  Pay rent due:tomorrow"),
		"",
		m.input.View(),
	}

	switch {
	case m.busy:
		lines = append(lines, s.hint.Render("Adding..."))
	case m.errMsg != "":
		lines = append(lines, s.errText.Render(m.errMsg))
	default:
		lines = append(lines, s.hint.Render("enter: add  esc: close"))
	}

	frame := s.frame
	if m.width > 4 {
		frame = frame.Width(m.width - 4)
	}

	return frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Run shows the form until a task is added or the user dismisses it.
func Run(ctx context.Context, submit SubmitFunc, opts Options) (Result, error) {
	if opts.Title == "" {
		opts.Title = domain.DefaultDialogTitle
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	finalModel, err := tea.NewProgram(newModel(ctx, submit, opts), programOpts...).Run()
	if err != nil {
		return Result{}, err
	}

	final, ok := finalModel.(model)
	if !ok {
		return Result{}, ErrUnexpectedPromptModel
	}

	return final.result, nil
}

func formatHorizon(d time.Duration) string {
	if d <= 0 {
		return "few hours"
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}

	return d.String()
}
