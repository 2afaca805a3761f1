package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// ErrNotDeclared is returned by find --require when nothing matches.
var ErrNotDeclared = zerr.New("dependency is not declared")

type findOptions struct {
	file          string
	dialect       string
	configuration string
	project       string
	require       bool
}

// FindOutput is the structured output of gradledeps find.
type FindOutput struct {
	Query   gradle.Query   `json:"query" yaml:"query"`
	Matches []gradle.Match `json:"matches" yaml:"matches"`
}

func newFindCmd(g *globalOptions) *cobra.Command {
	opts := &findOptions{}
	cmd := &cobra.Command{
		Use:   "find GROUP ARTIFACT [VERSION]",
		Short: "Report where a dependency is declared",
		Long: `Reports every declaration of GROUP:ARTIFACT in a build script, across all
configurations and dependencies blocks, in source order.

GROUP, ARTIFACT and --configuration accept glob patterns. When VERSION is
given only declarations of exactly that version match.

The script is read from -f FILE, from stdin with -f -, or from build.gradle.kts
or build.gradle in the current directory. With --project DIR the whole
multi-project build under DIR is searched.

A dependency that is not declared is not an error unless --require is set.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "",
		"Build script to read (- for stdin)")
	cmd.Flags().StringVar(&opts.dialect, "dialect", "",
		"Script dialect (groovy, kotlin); detected when omitted")
	cmd.Flags().StringVarP(&opts.configuration, "configuration", "c", "",
		"Only report declarations in matching configurations")
	cmd.Flags().StringVar(&opts.project, "project", "",
		"Search the multi-project build rooted at this directory")
	cmd.Flags().BoolVar(&opts.require, "require", false,
		"Exit non-zero when the dependency is not declared")
	cmd.MarkFlagsMutuallyExclusive("file", "project")
	return cmd
}

func runFind(cmd *cobra.Command, g *globalOptions, opts *findOptions, args []string) error {
	q := gradle.Query{Group: args[0], Artifact: args[1], Configuration: opts.configuration}
	if len(args) == 3 {
		q.Version = args[2]
	}
	if err := q.Validate(); err != nil {
		return err
	}

	backend, err := g.resolved().NewBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	var matches []gradle.Match
	if opts.project != "" {
		root, err := gradle.LoadProject(cmd.Context(), os.DirFS(opts.project), ".", backend)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to load project"), "dir", opts.project)
		}
		matches, err = root.Find(q)
		if err != nil {
			return err
		}
	} else {
		src, err := readScript(cmd, opts.file, opts.dialect)
		if err != nil {
			return err
		}
		matches, err = gradle.NewFinder(backend).Find(cmd.Context(), src.text, src.dialect, q, src.opts...)
		if err != nil {
			return err
		}
	}

	p := newPrinter(cmd, g)
	if p.text() {
		p.matches(matches)
	} else if err := p.encode(FindOutput{Query: q, Matches: nonNil(matches)}); err != nil {
		return err
	}

	if len(matches) == 0 && opts.require {
		err := fmt.Errorf("%s:%s: %w", q.Group, q.Artifact, ErrNotDeclared)
		if opts.project != "" {
			return zerr.With(err, "project", opts.project)
		}
		return zerr.With(err, "file", opts.file)
	}
	return nil
}

// nonNil keeps empty results as [] rather than null in structured output.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
