package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
	"github.com/VDandavate/Secret-Santa-Generator/internal/roster"
	"github.com/VDandavate/Secret-Santa-Generator/internal/tui"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate roster",
		Short: "Check a roster without matching it",
		Long: `Reports every malformed line and duplicate email in the roster, then
checks that each category can be matched at all (at least two people and
no family holding more than half of the category).`,
		Args: cobra.ExactArgs(1),
		RunE: c.validateRoster,
	}
}

func (c *cli) validateRoster(_ *cobra.Command, args []string) error {
	dir, report, err := roster.ValidateFile(args[0])
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	cohorts := participant.Partition(dir)
	fmt.Fprintln(c.out, tui.RenderReport(report, cohorts))
	if err := report.Err(); err != nil {
		return reportedError{err: err}
	}
	var problems []error
	for _, cat := range cohorts.Categories() {
		if err := match.Precheck(cohorts[cat]); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return reportedError{err: errors.Join(problems...)}
	}
	return nil
}
