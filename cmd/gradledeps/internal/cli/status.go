package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/discover"
	"github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/incremental"
)

type statusOptions struct {
	files bool
	reset bool
}

// StatusOutput is the structured output of gradledeps status.
type StatusOutput struct {
	Changed       bool     `json:"changed" yaml:"changed"`
	Projects      []string `json:"projects" yaml:"projects"`
	NewFiles      []string `json:"new_files,omitempty" yaml:"new_files,omitempty"`
	ModifiedFiles []string `json:"modified_files,omitempty" yaml:"modified_files,omitempty"`
	DeletedFiles  []string `json:"deleted_files,omitempty" yaml:"deleted_files,omitempty"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newStatusCmd(g *globalOptions) *cobra.Command {
	opts := &statusOptions{}
	cmd := &cobra.Command{
		Use:   "status [DIR]",
		Short: "Show which build scripts changed since the last scan",
		Long: `Compares the Gradle scripts under DIR against the state recorded by the
last 'gradledeps scan' and reports the projects whose scripts were added,
modified or deleted.

The --files flag shows individual script changes. --reset forgets the
recorded state.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{dirArgAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, g, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.files, "files", false,
		"Show individual script changes")
	cmd.Flags().BoolVar(&opts.reset, "reset", false,
		"Forget the state recorded by the last scan")
	cmd.MarkFlagsMutuallyExclusive("files", "reset")
	return cmd
}

func runStatus(cmd *cobra.Command, g *globalOptions, opts *statusOptions, args []string) error {
	root, err := workspaceDir(args)
	if err != nil {
		return err
	}

	tracker := incremental.NewTracker(root, discover.NewIgnore(g.resolved().Scan.IgnoreDirs))
	p := newPrinter(cmd, g)

	if opts.reset {
		if !tracker.HasState() {
			p.printf("No state to reset\n")
			return nil
		}
		if err := tracker.Reset(); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to reset state"), "dir", root)
		}
		p.printf("State reset\n")
		return nil
	}

	changes, err := tracker.Status(cmd.Context())
	if errors.Is(err, incremental.ErrNoState) {
		if !p.text() {
			return p.encode(StatusOutput{Changed: true, Projects: []string{":"}, Error: "no state found"})
		}
		p.printf("No state found. Run 'gradledeps scan' to record the current build scripts.\n")
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to detect changes"), "dir", root)
	}

	if !p.text() {
		return p.encode(StatusOutput{
			Changed:       !changes.Empty(),
			Projects:      nonNil(changes.Projects()),
			NewFiles:      changes.Added,
			ModifiedFiles: changes.Modified,
			DeletedFiles:  changes.Deleted,
		})
	}

	if changes.Empty() {
		p.printf("Build scripts are unchanged since the last scan\n")
		return nil
	}

	projects := changes.Projects()
	p.printf("Changed projects (%d):\n", len(projects))
	for _, proj := range projects {
		p.printf("  %s\n", proj)
	}

	if opts.files {
		for _, group := range []struct {
			title string
			mark  string
			files []string
		}{
			{"New scripts", "+", changes.Added},
			{"Modified scripts", "~", changes.Modified},
			{"Deleted scripts", "-", changes.Deleted},
		} {
			if len(group.files) == 0 {
				continue
			}
			p.printf("\n%s (%d):\n", group.title, len(group.files))
			for _, f := range group.files {
				p.printf("  %s %s\n", group.mark, f)
			}
		}
	}

	p.printf("\nRun 'gradledeps scan' to record the current build scripts\n")
	return nil
}
