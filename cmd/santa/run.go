package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/session"
	"github.com/VDandavate/Secret-Santa-Generator/internal/tui"
)

const noMatchesWritten = "No matches written."

func (c *cli) runExchange(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	prompt := tui.NewPrompt(c.in, c.out)

	rosterPath := ""
	if len(args) == 1 {
		rosterPath = args[0]
	} else {
		ask := c.askRoster
		if ask == nil {
			ask = prompt.AskRosterPath
		}
		rosterPath, err = ask(ctx)
		if errors.Is(err, tui.ErrCancelled) {
			fmt.Fprintln(c.out, noMatchesWritten)
			return nil
		}
		if err != nil {
			return err
		}
	}

	opts := []session.RunnerOption{
		session.WithLogger(c.logger),
		session.WithMatchOptions(session.MatchOptions(cfg)...),
	}
	if cfg.UI.Confirm {
		opts = append(opts, session.WithConfirmer(prompt))
	} else {
		opts = append(opts, session.WithConfirmer(session.AutoConfirm{}))
	}
	if cfg.UI.Progress && isTerminal(c.out) {
		opts = append(opts, session.WithIndicator(tui.NewSpinner(c.out)))
	}

	outcome, err := session.NewRunner(opts...).Run(ctx, session.Request{
		RosterPath: rosterPath,
		OutputDir:  cfg.OutputDir(rosterPath),
		Format:     cfg.Output.Format,
		Debug:      cfg.Output.Debug,
	})
	if err != nil {
		if outcome != nil && (errors.Is(err, match.ErrUnmatchable) || errors.Is(err, match.ErrInvalidAssignment)) {
			fmt.Fprintln(c.out, tui.RenderFailure(err, outcome.DebugPath, outcome.DebugTail))
			return reportedError{err: err}
		}
		return err
	}

	c.logger.Debug("run finished",
		zap.String("run_id", outcome.RunID),
		zap.String("status", string(outcome.Status)),
		zap.Int("rounds", outcome.Rounds))
	switch outcome.Status {
	case session.StatusAborted:
		fmt.Fprintln(c.out, noMatchesWritten)
	case session.StatusAccepted:
		if !cfg.UI.Confirm {
			fmt.Fprintln(c.out, tui.RenderPairs(outcome.Rounds, outcome.Pairs))
			fmt.Fprintln(c.out)
		}
		fmt.Fprintf(c.out, "Matches written to %s\n", outcome.ResultPath)
		if outcome.DebugPath != "" {
			fmt.Fprintf(c.out, "Debug log: %s\n", outcome.DebugPath)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
