package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

type listOptions struct {
	file    string
	dialect string
	project string
}

// ProjectListing is one project in the structured output of gradledeps list --project.
type ProjectListing struct {
	Path         string              `json:"path" yaml:"path"`
	BuildFile    string              `json:"build_file,omitempty" yaml:"build_file,omitempty"`
	Plugins      []gradle.Plugin     `json:"plugins" yaml:"plugins"`
	Dependencies []gradle.Dependency `json:"dependencies" yaml:"dependencies"`
}

func newListCmd(g *globalOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every plugin and dependency declaration",
		Long: `Lists the plugins and dependency declarations of a build script, or of
every project in a multi-project build with --project DIR.

Project, file and unresolved catalog dependencies are listed by their
notation since they have no coordinate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "",
		"Build script to read (- for stdin)")
	cmd.Flags().StringVar(&opts.dialect, "dialect", "",
		"Script dialect (groovy, kotlin); detected when omitted")
	cmd.Flags().StringVar(&opts.project, "project", "",
		"List the multi-project build rooted at this directory")
	cmd.MarkFlagsMutuallyExclusive("file", "project")
	return cmd
}

func runList(cmd *cobra.Command, g *globalOptions, opts *listOptions) error {
	backend, err := g.resolved().NewBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	p := newPrinter(cmd, g)

	if opts.project != "" {
		root, err := gradle.LoadProject(cmd.Context(), os.DirFS(opts.project), ".", backend)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to load project"), "dir", opts.project)
		}
		var listings []ProjectListing
		for _, proj := range root.All() {
			l := ProjectListing{Path: proj.Path, BuildFile: proj.BuildFile, Plugins: []gradle.Plugin{}, Dependencies: []gradle.Dependency{}}
			if proj.Script != nil {
				l.Plugins = nonNil(proj.Script.Plugins)
				l.Dependencies = nonNil(proj.Script.Dependencies)
			}
			listings = append(listings, l)
		}
		if !p.text() {
			return p.encode(listings)
		}
		for i, l := range listings {
			if i > 0 {
				p.printf("\n")
			}
			p.printf("%s\n", l.Path)
			file := ""
			if l.BuildFile != "" {
				file = filepath.Join(opts.project, filepath.FromSlash(l.BuildFile))
			}
			printScript(p, file, l.Plugins, l.Dependencies)
		}
		return nil
	}

	src, err := readScript(cmd, opts.file, opts.dialect)
	if err != nil {
		return err
	}
	script, err := backend.ParseContent(cmd.Context(), src.text, src.dialect, src.opts...)
	if err != nil {
		return err
	}
	if !p.text() {
		return p.encode(script)
	}
	printScript(p, src.path, script.Plugins, script.Dependencies)
	return nil
}

func printScript(p *printer, file string, plugins []gradle.Plugin, deps []gradle.Dependency) {
	for _, pl := range plugins {
		id := pl.ID
		if pl.Version != "" {
			id += " " + pl.Version
		}
		if !pl.Apply {
			id += " (apply false)"
		}
		p.printf("%s\tplugin\t%s\n", location(file, pl.Location), id)
	}
	p.dependencies(file, deps)
}
