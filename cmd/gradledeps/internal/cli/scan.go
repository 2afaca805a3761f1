package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/discover"
	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/incremental"
	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// ErrScanFailed is returned when at least one discovered script does not parse.
var ErrScanFailed = zerr.New("build scripts failed to parse")

type scanOptions struct {
	group         string
	artifact      string
	version       string
	configuration string
	noState       bool
}

// ScanResult is one script in the output of gradledeps scan.
type ScanResult struct {
	Path         string         `json:"path" yaml:"path"`
	Dialect      gradle.Dialect `json:"dialect" yaml:"dialect"`
	Dependencies int            `json:"dependencies" yaml:"dependencies"`
	Plugins      int            `json:"plugins" yaml:"plugins"`
	Matches      []gradle.Match `json:"matches,omitempty" yaml:"matches,omitempty"`
	Error        string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// ScanOutput is the structured output of gradledeps scan.
type ScanOutput struct {
	Root    string        `json:"root" yaml:"root"`
	Query   *gradle.Query `json:"query,omitempty" yaml:"query,omitempty"`
	Scripts []ScanResult  `json:"scripts" yaml:"scripts"`
	Failed  int           `json:"failed" yaml:"failed"`
}

func newScanCmd(g *globalOptions) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Parse every build script in a workspace",
		Long: `Finds every Gradle script under DIR (default: current directory), parses
them in parallel and reports their declarations. With --group and --artifact
only the matching declarations are reported.

Build output and hidden directories are skipped, along with [scan] ignore_dirs
from the configuration. Scripts resolve gradle.properties and the version
catalog of the nearest enclosing build.

The scanned scripts are recorded in .gradledeps/state.json so that
'gradledeps status' can report what changed since.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{dirArgAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.group, "group", "g", "",
		"Only report declarations with a matching group")
	cmd.Flags().StringVarP(&opts.artifact, "artifact", "a", "",
		"Only report declarations with a matching artifact")
	cmd.Flags().StringVar(&opts.version, "version", "",
		"Only report declarations of exactly this version")
	cmd.Flags().StringVarP(&opts.configuration, "configuration", "c", "",
		"Only report declarations in matching configurations")
	cmd.Flags().BoolVar(&opts.noState, "no-state", false,
		"Do not record scanned scripts in .gradledeps/state.json")
	cmd.MarkFlagsRequiredTogether("group", "artifact")
	return cmd
}

func runScan(cmd *cobra.Command, g *globalOptions, opts *scanOptions, args []string) error {
	root, err := workspaceDir(args)
	if err != nil {
		return err
	}
	cfg := g.resolved()
	ctx := cmd.Context()

	var query *gradle.Query
	if opts.group != "" {
		q := gradle.Query{Group: opts.group, Artifact: opts.artifact, Version: opts.version, Configuration: opts.configuration}
		if err := q.Validate(); err != nil {
			return err
		}
		query = &q
	}

	backend, err := cfg.NewBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	start := time.Now()
	ignore := discover.NewIgnore(cfg.Scan.IgnoreDirs)
	scripts, err := discover.BuildScripts(ctx, root, ignore)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to discover build scripts"), "dir", root)
	}
	log.Debug("discovered build scripts", "dir", root, "count", len(scripts), "dialects", discover.Dialects(scripts))

	contexts := newBuildContexts(root, discover.BuildRoots(scripts))
	finder := gradle.NewFinder(backend)

	workers := cfg.Scan.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]ScanResult, len(scripts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, s := range scripts {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = scanScript(egCtx, finder, root, s, contexts.forScript(s), query)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	log.Since("scan", start, "scripts", len(scripts), "workers", workers)

	out := ScanOutput{Root: root, Query: query, Scripts: results}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		}
	}

	log.Info("scan finished", "dir", root, "scripts", len(results), "failed", out.Failed)

	if !opts.noState {
		tracker := incremental.NewTracker(root, ignore)
		if _, err := tracker.Refresh(ctx); err != nil {
			log.Warn("failed to record scan state", "dir", root, "error", err)
		}
	}

	if err := printScan(newPrinter(cmd, g), out); err != nil {
		return err
	}
	if out.Failed > 0 {
		return zerr.With(fmt.Errorf("%d of %d: %w", out.Failed, len(results), ErrScanFailed), "dir", root)
	}
	return nil
}

func scanScript(ctx context.Context, finder *gradle.Finder, root string, s discover.Script, opts []gradle.ParseOption, query *gradle.Query) ScanResult {
	r := ScanResult{Path: s.Path, Dialect: s.Dialect}

	full := filepath.Join(root, filepath.FromSlash(s.Path))
	script, err := finder.Backend().ParseFile(ctx, full, append(slices.Clip(opts), gradle.WithPath(s.Path))...)
	if err != nil {
		log.Warn("failed to parse build script", "path", s.Path, "error", err)
		r.Error = err.Error()
		return r
	}
	r.Dependencies = len(script.Dependencies)
	r.Plugins = len(script.Plugins)

	if query != nil {
		matches, err := finder.FindIn(script, *query)
		if err != nil {
			r.Error = err.Error()
			return r
		}
		r.Matches = matches
	}
	return r
}

func printScan(p *printer, out ScanOutput) error {
	if !p.text() {
		return p.encode(out)
	}

	matched := 0
	for _, r := range out.Scripts {
		switch {
		case r.Error != "":
			p.printf("FAIL\t%s\n", r.Error)
		case out.Query != nil:
			p.matches(r.Matches)
			matched += len(r.Matches)
		default:
			p.printf("%s\t%d dependencies\t%d plugins\n", r.Path, r.Dependencies, r.Plugins)
		}
	}

	if out.Query != nil {
		p.printf("%d scripts, %d matches, %d failed\n", len(out.Scripts), matched, out.Failed)
	} else {
		p.printf("%d scripts, %d failed\n", len(out.Scripts), out.Failed)
	}
	return nil
}

// workspaceDir returns the directory argument, or "." when there is none.
func workspaceDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "invalid path"), "dir", dir)
	}
	if !info.IsDir() {
		return "", zerr.With(zerr.New("path must be a directory"), "dir", dir)
	}
	return dir, nil
}

// buildContexts holds the parse options of each build root, keyed by its
// slash-separated directory relative to the workspace.
type buildContexts map[string][]gradle.ParseOption

func newBuildContexts(root string, roots []string) buildContexts {
	ctxs := buildContexts{".": contextOptions(root)}
	for _, r := range roots {
		if r != "." {
			ctxs[r] = contextOptions(filepath.Join(root, filepath.FromSlash(r)))
		}
	}
	return ctxs
}

// forScript returns the options of the innermost build containing s.
func (c buildContexts) forScript(s discover.Script) []gradle.ParseOption {
	dir := s.Dir()
	best := ""
	for r := range c {
		if r == "." || len(r) <= len(best) {
			continue
		}
		if dir == r || strings.HasPrefix(dir, r+"/") {
			best = r
		}
	}
	if best == "" {
		return c["."]
	}
	return c[best]
}
