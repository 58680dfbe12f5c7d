package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/VDandavate/Secret-Santa-Generator/internal/output"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
	"github.com/VDandavate/Secret-Santa-Generator/internal/session"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModelDecisions(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want session.Decision
	}{
		{key: keyRunes("y"), want: session.Accept},
		{key: keyRunes("Y"), want: session.Accept},
		{key: keyRunes("n"), want: session.Reject},
		{key: keyRunes("q"), want: session.Abort},
		{key: tea.KeyMsg{Type: tea.KeyEsc}, want: session.Abort},
		{key: tea.KeyMsg{Type: tea.KeyCtrlC}, want: session.Abort},
	}
	for _, tc := range tests {
		t.Run(tc.key.String(), func(t *testing.T) {
			model, cmd := confirmModel{}.Update(tc.key)
			m := model.(confirmModel)
			if m.decision != tc.want {
				t.Fatalf("decision = %v, want %v", m.decision, tc.want)
			}
			if cmd == nil {
				t.Fatalf("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Fatalf("expected tea.QuitMsg")
			}
		})
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	model, cmd := confirmModel{}.Update(keyRunes("x"))
	m := model.(confirmModel)
	if m.decision != 0 || cmd != nil {
		t.Fatalf("unexpected decision %v", m.decision)
	}
	if !strings.Contains(m.View(), "not an answer") {
		t.Fatalf("expected hint in view, got %q", m.View())
	}
	model, _ = m.Update(keyRunes("n"))
	if got := model.(confirmModel).View(); !strings.Contains(got, "regenerating") {
		t.Fatalf("view after reject = %q", got)
	}
}

func TestPathModelRequiresValue(t *testing.T) {
	var model tea.Model = newPathModel()
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty input must not quit")
	}
	if !strings.Contains(model.View(), "roster file") {
		t.Fatalf("expected hint, got %q", model.View())
	}
	for _, r := range " family.txt " {
		model, _ = model.Update(keyRunes(string(r)))
	}
	model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := model.(pathModel)
	if m.value != "family.txt" || cmd == nil {
		t.Fatalf("value = %q", m.value)
	}
}

func TestPathModelCancel(t *testing.T) {
	model, cmd := newPathModel().Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !model.(pathModel).cancelled || cmd == nil {
		t.Fatalf("esc should cancel")
	}
}

func TestPromptConfirmRunsProgram(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	prompt := NewPrompt(strings.NewReader("y"), &out)
	decision, err := prompt.Confirm(ctx, session.Proposal{Round: 1, Pairs: samplePairs()})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if decision != session.Accept {
		t.Fatalf("decision = %v, want accept", decision)
	}
	if !strings.Contains(out.String(), "Alice Anders (alice@example.com)") {
		t.Fatalf("listing missing from output: %q", out.String())
	}
}

func samplePairs() []output.Pair {
	alice := participant.Participant{ID: "alice@example.com", FirstName: "Alice", LastName: "Anders", Family: "F1", Category: "adults"}
	bob := participant.Participant{ID: "bob@example.com", FirstName: "Bob", LastName: "Baker", Family: "F2", Category: "adults"}
	kim := participant.Participant{ID: "kim@example.com", FirstName: "Kim", LastName: "Anders", Family: "F1", Category: "kids"}
	lee := participant.Participant{ID: "lee@example.com", FirstName: "Lee", LastName: "Baker", Family: "F2", Category: "kids"}
	return []output.Pair{
		{Giver: alice, Receiver: bob},
		{Giver: bob, Receiver: alice},
		{Giver: kim, Receiver: lee},
		{Giver: lee, Receiver: kim},
	}
}
