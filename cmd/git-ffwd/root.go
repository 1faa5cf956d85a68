// Package gitffwd contains the Cobra command tree for the git-ffwd CLI.
package gitffwd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralismark/git-ffwd/internal/config"
	"github.com/ralismark/git-ffwd/internal/engine"
	"github.com/ralismark/git-ffwd/internal/vcs"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// Reconciliation flags
	flagDryRun   bool
	flagAll      bool
	flagFetch    bool
	flagMatch    []string
	flagBackend  string
	flagRemote   string
	flagDiffStat bool
	// colorOutputEnabled is set per command execution based on TTY detection.
	colorOutputEnabled bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "git-ffwd [branch [committish]]",
	Short: "Fast-forward local branches to their upstreams",
	Long: "git-ffwd advances local branch refs along pure fast-forward paths and refuses " +
		"anything that would rewrite or merge history. With no arguments it reconciles " +
		"the current branch against its upstream; --all walks every local branch.",
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateReconcileArgs(args); err != nil {
			return err
		}
		setColorOutputMode(cmd)

		cwd, err := os.Getwd()
		if err != nil {
			return &exitError{code: ExitResolution, err: fmt.Errorf("determine working directory: %w", err)}
		}
		cfg, cfgPath, err := config.LoadResolved(flagConfig, cwd)
		if err != nil {
			return &exitError{code: ExitFailed, err: fmt.Errorf("load config: %w", err)}
		}
		if cfgPath != "" {
			debugf(cmd, "using config %s", cfgPath)
		}

		backend, err := selectedBackend(cfg)
		if err != nil {
			return &exitError{code: ExitUsage, err: err}
		}

		opts := reconcileOptions(cmd, args, cfg, cwd)
		report, err := engine.New(backend).Reconcile(cmd.Context(), opts)
		if err != nil {
			return &exitError{code: reconcileErrorCode(err), err: err}
		}

		writeReport(cmd, report)
		if opts.All {
			raiseExitCode(report.ExitCode())
			writeBatchSummary(cmd, report)
		} else {
			raiseExitCode(singleRefExitCode(report))
		}
		logFailureDetails(cmd, report)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.Flags().BoolVarP(&flagDryRun, "dryrun", "n", false, "report what would change without touching any ref")
	rootCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "reconcile every local branch instead of one")
	rootCmd.Flags().BoolVar(&flagFetch, "fetch", false, "fetch once before reconciling (requires --all)")
	rootCmd.Flags().StringArrayVar(&flagMatch, "match", nil, "limit --all to branches matching a glob (repeatable)")
	rootCmd.Flags().StringVar(&flagBackend, "backend", "", "VCS backend: git or gogit")
	rootCmd.Flags().StringVar(&flagRemote, "remote", "", "remote to fetch instead of the configured default")
	rootCmd.Flags().BoolVar(&flagDiffStat, "diffstat", true, "append a change summary to fast-forward lines")
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
func ExecuteWithExitCode() int {
	exitCode = 0
	colorOutputEnabled = false
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return errorExitCode(err)
	}
	return exitCode
}

func validateReconcileArgs(args []string) error {
	if flagAll && len(args) > 0 {
		return usageErrorf("--all cannot be combined with a branch argument")
	}
	if flagFetch && !flagAll {
		return usageErrorf("--fetch requires --all")
	}
	if len(flagMatch) > 0 && !flagAll {
		return usageErrorf("--match requires --all")
	}
	return nil
}

func selectedBackend(cfg *config.Config) (vcs.Backend, error) {
	selection := flagBackend
	if selection == "" {
		selection = cfg.Backend
	}
	return vcs.NewBackendForSelection(selection)
}

// reconcileOptions merges command-line flags over config values. Explicitly
// set flags win; otherwise the config file supplies batch defaults.
func reconcileOptions(cmd *cobra.Command, args []string, cfg *config.Config, cwd string) engine.ReconcileOptions {
	opts := engine.ReconcileOptions{
		Dir:     cwd,
		All:     flagAll,
		DryRun:  flagDryRun,
		Match:   flagMatch,
		Exclude: cfg.Exclude,
		Remote:  flagRemote,
	}
	if opts.Remote == "" {
		opts.Remote = cfg.Remote
	}
	if flagAll {
		opts.Fetch = cfg.Fetch
		if cmd.Flags().Changed("fetch") {
			opts.Fetch = flagFetch
		}
	}
	if len(args) > 0 {
		opts.Branch = args[0]
	}
	if len(args) > 1 {
		opts.Target = args[1]
	}
	opts.CollectDiffStat = cfg.DiffStat
	if cmd.Flags().Changed("diffstat") {
		opts.CollectDiffStat = flagDiffStat
	}
	return opts
}

func raiseExitCode(code int) {
	// Keep the highest severity seen across the run.
	if code > exitCode {
		exitCode = code
	}
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func setColorOutputMode(cmd *cobra.Command) {
	colorOutputEnabled = shouldUseColorOutput(cmd)
}

func shouldUseColorOutput(cmd *cobra.Command) bool {
	if flagNoColor {
		return false
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}
