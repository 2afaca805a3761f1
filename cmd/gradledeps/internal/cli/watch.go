package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/watch"
	"github.com/albertocavalcante/gradledeps/pkg/config"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

type watchOptions struct {
	debounce      time.Duration
	group         string
	artifact      string
	version       string
	configuration string
	verbose       bool
	json          bool
	noColor       bool
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Re-parse build scripts as they change",
		Long: `Watches the Gradle scripts under DIR (default: current directory) and
re-parses each one when it changes on disk. With --group and --artifact the
matching declarations are reported instead of dependency counts.

Example output:

  $ gradledeps watch --group org.slf4j --artifact slf4j-api

  gradledeps: watching 12 scripts in /path/to/build
  gradledeps: looking for org.slf4j:slf4j-api
  gradledeps: ready

  [14:32:15] app/build.gradle.kts:14 implementation org.slf4j:slf4j-api:2.0.9

Press Ctrl+C to stop watching.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{dirArgAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, opts, args)
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce,
		"Debounce window")
	cmd.Flags().StringVarP(&opts.group, "group", "g", "",
		"Only report declarations with a matching group")
	cmd.Flags().StringVarP(&opts.artifact, "artifact", "a", "",
		"Only report declarations with a matching artifact")
	cmd.Flags().StringVar(&opts.version, "version", "",
		"Only report declarations of exactly this version")
	cmd.Flags().StringVarP(&opts.configuration, "configuration", "c", "",
		"Only report declarations in matching configurations")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false,
		"Show file-level changes")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Stream JSON events (for tooling integration)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"Disable colored output")
	cmd.MarkFlagsRequiredTogether("group", "artifact")
	return cmd
}

func runWatch(cmd *cobra.Command, g *globalOptions, opts *watchOptions, args []string) error {
	root, err := workspaceDir(args)
	if err != nil {
		return err
	}
	cfg := g.resolved()

	var query *gradle.Query
	if opts.group != "" {
		query = &gradle.Query{Group: opts.group, Artifact: opts.artifact, Version: opts.version, Configuration: opts.configuration}
	}

	backend, err := cfg.NewBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	// Include SIGHUP to handle terminal hangup
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGHUP)
	defer cancel()

	w, err := watch.New(watch.Config{
		Root:       root,
		IgnoreDirs: cfg.Scan.IgnoreDirs,
		Debounce:   opts.debounce,
		Backend:    backend,
		Query:      query,
		Writer:     cmd.OutOrStdout(),
		Verbose:    opts.verbose,
		NoColor:    opts.noColor,
		JSON:       opts.json || cfg.Output.Format == config.FormatJSON,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(ctx)
}
