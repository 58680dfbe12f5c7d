// internal/tui/app.go
//
// The interactive prompts of the santa command. Each prompt is a small
// bubbletea program following The Elm Architecture:
//
// 1. Model: the prompt state (what was typed, what was decided)
// 2. Update: key presses turn into a decision or an edited value
// 3. View: renders the question and any hint
//
// A prompt quits as soon as it has an answer; Prompt hands the answer back to
// the caller.

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VDandavate/Secret-Santa-Generator/internal/session"
)

// ErrCancelled is returned when the operator backs out of a prompt.
var ErrCancelled = errors.New("tui: prompt cancelled")

const confirmQuestion = "Are these matches okay?"

// Prompt asks the operator questions on a terminal. It implements
// session.Confirmer.
type Prompt struct {
	in   io.Reader
	out  io.Writer
	opts []tea.ProgramOption
}

// PromptOption customizes Prompt construction.
type PromptOption func(*Prompt)

// WithProgramOptions appends bubbletea options to every prompt program.
func WithProgramOptions(opts ...tea.ProgramOption) PromptOption {
	return func(p *Prompt) {
		p.opts = append(p.opts, opts...)
	}
}

// NewPrompt builds a Prompt reading keys from in and drawing to out.
func NewPrompt(in io.Reader, out io.Writer, opts ...PromptOption) *Prompt {
	p := &Prompt{in: in, out: out}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Confirm shows the proposal and asks whether to keep it.
func (p *Prompt) Confirm(ctx context.Context, proposal session.Proposal) (session.Decision, error) {
	fmt.Fprintln(p.out, RenderPairs(proposal.Round, proposal.Pairs))
	fmt.Fprintln(p.out)
	final, err := p.run(ctx, confirmModel{})
	if err != nil {
		return 0, err
	}
	m, ok := final.(confirmModel)
	if !ok || m.decision == 0 {
		return session.Abort, nil
	}
	return m.decision, nil
}

// AskRosterPath asks for the roster file when none was given on the command
// line.
func (p *Prompt) AskRosterPath(ctx context.Context) (string, error) {
	final, err := p.run(ctx, newPathModel())
	if err != nil {
		return "", err
	}
	m, ok := final.(pathModel)
	if !ok || m.cancelled || m.value == "" {
		return "", ErrCancelled
	}
	return m.value, nil
}

func (p *Prompt) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	}
	prog := tea.NewProgram(model, append(opts, p.opts...)...)
	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tui: run prompt: %w", err)
	}
	return final, nil
}

// confirmModel waits for y, n or q.
type confirmModel struct {
	decision session.Decision
	hint     string
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.decision = session.Accept
	case "n":
		m.decision = session.Reject
	case "q", "esc", "ctrl+c":
		m.decision = session.Abort
	default:
		m.hint = fmt.Sprintf("%q is not an answer. Press y to keep, n to regenerate, q to quit.", key.String())
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	switch m.decision {
	case session.Accept:
		return confirmQuestion + " " + okStyle.Render("yes") + "\n"
	case session.Reject:
		return confirmQuestion + " " + detailStyle.Render("no, regenerating") + "\n"
	case session.Abort:
		return confirmQuestion + " " + errorStyle.Render("quit") + "\n"
	}
	view := confirmQuestion + " " + hintStyle.Render("[y]es / [n]o, regenerate / [q]uit") + " "
	if m.hint != "" {
		view += "\n" + errorStyle.Render(m.hint)
	}
	return view
}

// pathModel reads the roster file name.
type pathModel struct {
	input     textinput.Model
	value     string
	cancelled bool
	hint      string
}

func newPathModel() pathModel {
	ti := textinput.New()
	ti.Placeholder = "family.txt"
	ti.Prompt = "Roster file: "
	ti.CharLimit = 4096
	ti.Focus()
	return pathModel{input: ti}
}

func (m pathModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				m.hint = "Please enter the path of the roster file."
				return m, nil
			}
			m.value = value
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathModel) View() string {
	if m.value != "" {
		return m.input.Prompt + m.value + "\n"
	}
	if m.cancelled {
		return ""
	}
	view := m.input.View()
	if m.hint != "" {
		view += "\n" + errorStyle.Render(m.hint)
	}
	return view
}
