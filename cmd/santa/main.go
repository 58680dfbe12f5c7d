// cmd/santa/main.go
//
// Entry point for the santa CLI.
//
// Flow:
// 1. Load santa.yaml (flags override env, env overrides the file)
// 2. Read and validate the roster
// 3. Match every category, ask for confirmation, write the result

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VDandavate/Secret-Santa-Generator/internal/config"
	"github.com/VDandavate/Secret-Santa-Generator/internal/logging"
	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/roster"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInput       = 2
	exitUnmatchable = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	err := c.rootCmd().ExecuteContext(ctx)
	var shown reportedError
	if err != nil && !errors.As(err, &shown) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}

// cli carries the streams and flag values shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath  string
	verbose     bool
	logJSON     bool
	seed        int64
	maxAttempts int
	parallel    int
	noPrecheck  bool
	yes         bool
	noProgress  bool
	noDebug     bool
	format      string
	outDir      string

	newLogger func(logging.Options) (*zap.Logger, error)
	logger    *zap.Logger
	// askRoster overrides the interactive roster path prompt.
	askRoster func(context.Context) (string, error)
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{
		in:        in,
		out:       out,
		errOut:    errOut,
		newLogger: logging.New,
		logger:    zap.NewNop(),
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "santa [roster]",
		Short: "Secret santa matcher that keeps families apart",
		Long: `santa reads a roster of participants, one per line:

  email;first;last;family;category

and assigns every participant someone to give a gift to. Nobody gives to
themselves or to a member of their own family, and gifts stay inside a
category (adults give to adults, kids to kids).

Running santa with a roster is the same as "santa run".`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
		RunE: c.runExchange,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "settings file (default ./"+config.FileName+")")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug detail to stderr")
	flags.BoolVar(&c.logJSON, "log-json", false, "log as JSON lines")

	c.addRunFlags(root)
	run := &cobra.Command{
		Use:   "run [roster]",
		Short: "Match a roster and write the result",
		Long: `Matches every category of the roster, shows the result for
confirmation and writes it next to the roster as
<roster>-Matched-<timestamp>.txt. Answering "n" regenerates with fresh
randomness; "q" quits without writing.

Without a roster argument the path is asked for interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runExchange,
	}
	c.addRunFlags(run)

	root.AddCommand(run, c.validateCmd(), c.initCmd())
	return root
}

func (c *cli) addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int64Var(&c.seed, "seed", 0, "fixed random seed (0 picks one)")
	flags.IntVar(&c.maxAttempts, "max-attempts", 0, "attempts per category before giving up")
	flags.IntVar(&c.parallel, "parallel", 0, "categories matched at once (0 means all)")
	flags.BoolVar(&c.noPrecheck, "no-precheck", false, "skip the feasibility check and spend the full attempt budget")
	flags.BoolVarP(&c.yes, "yes", "y", false, "write the first result without asking")
	flags.BoolVar(&c.noProgress, "no-progress", false, "hide the spinner")
	flags.BoolVar(&c.noDebug, "no-debug", false, "skip the debug log")
	flags.StringVar(&c.format, "format", "", "result format: text or json")
	flags.StringVar(&c.outDir, "out-dir", "", "directory for result and debug files")
}

func (c *cli) setup(*cobra.Command, []string) error {
	logger, err := c.newLogger(logging.Options{Verbose: c.verbose, JSON: c.logJSON})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// loadConfig reads the settings file and applies the flags that were set.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.FileName
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Matching.Seed = c.seed
	}
	if flags.Changed("max-attempts") {
		cfg.Matching.MaxAttempts = c.maxAttempts
	}
	if flags.Changed("parallel") {
		cfg.Matching.Parallel = c.parallel
	}
	if c.noPrecheck {
		cfg.Matching.Precheck = false
	}
	if c.yes {
		cfg.UI.Confirm = false
	}
	if c.noProgress {
		cfg.UI.Progress = false
	}
	if c.noDebug {
		cfg.Output.Debug = false
	}
	if flags.Changed("format") {
		cfg.Output.Format = config.NormalizeFormat(c.format)
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = c.outDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.logger.Debug("settings loaded",
		zap.String("path", cfg.Path()),
		zap.Int("max_attempts", cfg.Matching.MaxAttempts),
		zap.Bool("precheck", cfg.Matching.Precheck),
		zap.Int64("seed", cfg.Matching.Seed),
		zap.String("format", cfg.Output.Format))
	return cfg, nil
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, roster.ErrInput):
		return exitInput
	case errors.Is(err, match.ErrUnmatchable):
		return exitUnmatchable
	default:
		return exitFailure
	}
}
