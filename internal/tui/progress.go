package tui

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VDandavate/Secret-Santa-Generator/internal/session"
)

// DefaultJoinTimeout bounds how long Stop waits for the spinner to exit.
const DefaultJoinTimeout = 2 * time.Second

// Spinner shows an animated label while matching runs. It implements
// session.Indicator.
type Spinner struct {
	out         io.Writer
	joinTimeout time.Duration
}

// NewSpinner builds a Spinner drawing to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out, joinTimeout: DefaultJoinTimeout}
}

// Start launches the spinner in the background. The returned handle must be
// stopped; Stop also clears the spinner line.
func (s *Spinner) Start(ctx context.Context, label string) session.Stopper {
	prog := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	p := &Progress{prog: prog, done: make(chan struct{}), timeout: s.joinTimeout}
	go func() {
		defer close(p.done)
		_, _ = prog.Run()
	}()
	return p
}

// Progress is a running spinner.
type Progress struct {
	prog    *tea.Program
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
}

// Stop ends the spinner, waiting at most the join timeout.
func (p *Progress) Stop() {
	p.StopWithin(p.timeout)
}

// StopWithin asks the spinner to finish and waits up to d for it. If it has
// not exited by then it is killed; the result reports whether it finished on
// its own.
func (p *Progress) StopWithin(d time.Duration) bool {
	p.once.Do(func() {
		go p.prog.Send(stopMsg{})
	})
	select {
	case <-p.done:
		return true
	case <-time.After(d):
	}
	p.prog.Kill()
	select {
	case <-p.done:
	case <-time.After(d):
	}
	return false
}

// Done is closed once the spinner program has exited.
func (p *Progress) Done() <-chan struct{} {
	return p.done
}

type stopMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	label    string
	stopping bool
}

func newSpinnerModel(label string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = categoryStyle
	return spinnerModel{spinner: sp, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.stopping = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopping {
		return ""
	}
	return m.spinner.View() + " " + m.label
}
