package client

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

var ErrInterrupted = errors.New("interrupted")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3333"))
)

type jobDoneMsg struct {
	err error
}

type spinnerModel struct {
	loader spinner.Model
	title  string
	job    func() error
	cancel func()
	done   bool
	err    error
}

func (m *spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.loader.Tick, func() tea.Msg {
		return jobDoneMsg{err: m.job()}
	})
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			m.done = true
			m.err = ErrInterrupted
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return errorStyle.Render("✗ "+m.title) + "\n"
		}
		return ""
	}
	return m.loader.View() + " " + titleStyle.Render(m.title) + "\n"
}

// WithSpinner runs fn while a spinner titled title is drawn on stderr.
func WithSpinner(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	return runSpinner(ctx, title, fn, tea.WithOutput(os.Stderr))
}

func runSpinner(ctx context.Context, title string, fn func(ctx context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := &spinnerModel{
		loader: spinner.New(
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
			spinner.WithSpinner(spinner.Dot),
		),
		title:  title,
		job:    func() error { return fn(ctx) },
		cancel: cancel,
	}
	if _, err := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...).Run(); err != nil {
		if m.done {
			return m.err
		}
		return errors.Wrapf(err, "failed to run spinner")
	}
	return m.err
}
