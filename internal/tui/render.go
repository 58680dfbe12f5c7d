package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/output"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
	"github.com/VDandavate/Secret-Santa-Generator/internal/roster"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	giverStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	receiverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	emailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Italic(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// RenderPairs lists a proposed result, grouped by category:
//
//	First Last (email) -> First Last (email)
func RenderPairs(round int, pairs []output.Pair) string {
	var b strings.Builder
	title := fmt.Sprintf("🎁 %d matches", len(pairs))
	if round > 1 {
		title += fmt.Sprintf(" · attempt %d", round)
	}
	b.WriteString(headerStyle.Render(title))
	category := ""
	for i, p := range pairs {
		if i == 0 || p.Giver.Category != category {
			category = p.Giver.Category
			b.WriteString("\n\n")
			b.WriteString(categoryStyle.Render(strings.ToUpper(category)))
		}
		b.WriteString("\n")
		b.WriteString(formatPerson(p.Giver, giverStyle))
		b.WriteString(" -> ")
		b.WriteString(formatPerson(p.Receiver, receiverStyle))
	}
	return b.String()
}

func formatPerson(p participant.Participant, style lipgloss.Style) string {
	return style.Render(p.DisplayName()) + " " + emailStyle.Render("("+p.ID+")")
}

// RenderFailure explains why matching failed and shows the end of the debug
// log when one was written.
func RenderFailure(err error, debugPath string, tail []string) string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("No valid matches could be generated."))
	failures := match.CohortErrors(err)
	for _, ce := range failures {
		b.WriteString("\n  ")
		b.WriteString(detailStyle.Render(describeCohortError(ce)))
	}
	if len(failures) == 0 && err != nil {
		b.WriteString("\n  ")
		b.WriteString(detailStyle.Render(err.Error()))
	}
	if errors.Is(err, match.ErrExhausted) {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Try again or raise matching.max_attempts; a different run may succeed."))
	}
	if debugPath == "" {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("See " + debugPath + " for the full attempt log."))
	if len(tail) > 0 {
		head := categoryStyle.Render("LOG · " + filepath.Base(debugPath))
		body := detailStyle.Render(strings.Join(tail, "\n"))
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(head + "\n" + body))
	}
	return b.String()
}

func describeCohortError(ce *match.CohortError) string {
	switch ce.Kind {
	case match.KindExhausted:
		msg := fmt.Sprintf("%s: gave up after %d attempts", ce.Category, ce.Attempts)
		if ce.Blocked != "" {
			msg += fmt.Sprintf(", %s had nobody left to give to", ce.Blocked)
		}
		return msg
	default:
		return fmt.Sprintf("%s: %s", ce.Category, ce.Reason)
	}
}

// RenderReport summarizes a roster check for the validate command. Each
// category is also run through the matcher's pre-check so impossible groups
// show up before a real run.
func RenderReport(report *roster.Report, cohorts participant.Cohorts) string {
	var b strings.Builder
	name := filepath.Base(report.Path)
	if report.IsValid() {
		b.WriteString(okStyle.Render("✓ " + name))
	} else {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %d problem(s)", name, len(report.Errors))))
	}
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(fmt.Sprintf("%d participants in %d categories", report.Participants, report.Categories)))
	for _, cat := range cohorts.Categories() {
		cohort := cohorts[cat]
		b.WriteString("\n  ")
		b.WriteString(categoryStyle.Render(cat))
		b.WriteString(detailStyle.Render(fmt.Sprintf(" %d people, %d families", cohort.Len(), len(cohort.FamilySizes()))))
		var ce *match.CohortError
		if err := match.Precheck(cohort); errors.As(err, &ce) {
			b.WriteString(" ")
			b.WriteString(errorStyle.Render(ce.Reason))
		}
	}
	for _, err := range report.Errors {
		b.WriteString("\n  ")
		b.WriteString(errorStyle.Render("• "))
		b.WriteString(err.Error())
	}
	return b.String()
}
