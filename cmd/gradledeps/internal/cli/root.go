// Package cli implements the gradledeps command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalOptions holds persistent flags and the configuration they resolve to.
type globalOptions struct {
	verbosity int
	logFormat string
	backend   string
	format    string

	cfg *config.Config
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gradledeps",
		Short: "Find dependency declarations in Gradle build scripts",
		Long: `Gradledeps reads Gradle build scripts (Groovy and Kotlin DSL) without
running Gradle and reports where dependencies are declared.

Configuration is read from gradledeps.toml or .gradledeps/config.toml in the
build (searched upward from the DIR argument of scan, status and watch, the
--project directory, or else the working directory),
~/.config/gradledeps/config.toml and GRADLEDEPS_* environment variables.
Flags override all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd, args)
		},
		// Default behavior: show help
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	// Global flags (persistent across all commands)
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&g.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	pf.StringVar(&g.logFormat, "log-format", "text",
		"Log format (text, json)")
	pf.StringVar(&g.backend, "backend", "",
		"Parser backend (heuristic, treesitter, hybrid)")
	pf.StringVar(&g.format, "format", "",
		"Output format (text, json, yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newFindCmd(g),
		newListCmd(g),
		newCheckCmd(g),
		newScanCmd(g),
		newStatusCmd(g),
		newWatchCmd(g),
	)
	return rootCmd
}

// RootCmd returns a root command for testing.
func RootCmd() *cobra.Command {
	return NewRootCmd()
}

// dirArgAnnotation marks commands whose first argument is the workspace
// directory, so configuration is loaded from there.
const dirArgAnnotation = "gradledeps/dir-arg"

// configDir returns the directory configuration is searched from: the
// workspace argument of scan, status and watch, the --project directory of
// find and list, or else the working directory.
func configDir(cmd *cobra.Command, args []string) string {
	dir := ""
	if _, ok := cmd.Annotations[dirArgAnnotation]; ok && len(args) > 0 {
		dir = args[0]
	} else if f := cmd.Flags().Lookup("project"); f != nil && f.Changed {
		dir = f.Value.String()
	}
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// setup loads configuration for the target directory, applies flags that
// were set explicitly and configures logging.
func (g *globalOptions) setup(cmd *cobra.Command, args []string) error {
	wd := configDir(cmd, args)
	cfg := config.LoadFrom(wd)

	flags := cmd.Flags()
	if flags.Changed("verbosity") {
		cfg.Log.Verbosity = &g.verbosity
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if flags.Changed("backend") {
		cfg.Parser.Backend = g.backend
	}
	if flags.Changed("format") {
		cfg.Output.Format = g.format
	}

	if err := cfg.Validate(); err != nil {
		return zerr.Wrap(err, "invalid configuration")
	}

	verbosity := 1
	if cfg.Log.Verbosity != nil {
		verbosity = *cfg.Log.Verbosity
	}
	log.InitWithOutput(verbosity, cfg.Log.Format, cmd.ErrOrStderr())
	log.Debug("resolved configuration", "dir", wd, "files", cfg.Sources, "parser", cfg.Parser.Backend,
		"treesitter", cfg.Parser.TreeSitterRuntime, "format", cfg.Output.Format)

	g.cfg = cfg
	return nil
}

// resolved returns the configuration, defaults when init has not run.
func (g *globalOptions) resolved() *config.Config {
	if g.cfg == nil {
		return config.NewConfig()
	}
	return g.cfg
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

// reportError logs err with any metadata attached along the way.
func reportError(err error) {
	var attrs []any
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		for k, v := range zErr.Metadata() {
			attrs = append(attrs, k, v)
		}
	}
	log.Error(err.Error(), attrs...)
}
