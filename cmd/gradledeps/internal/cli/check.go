package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

// ErrCheckFailed is returned when at least one script does not parse.
var ErrCheckFailed = zerr.New("build scripts failed to parse")

// CheckResult is the structured output of gradledeps check for one file.
type CheckResult struct {
	Path  string `json:"path" yaml:"path"`
	OK    bool   `json:"ok" yaml:"ok"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check that build scripts parse",
		Long: `Parses each build script and reports syntax problems such as unbalanced
braces or unterminated strings, with their line and column.

Exits non-zero when any script fails to parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, args)
		},
	}
}

func runCheck(cmd *cobra.Command, g *globalOptions, files []string) error {
	backend, err := g.resolved().NewBackend()
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	results := make([]CheckResult, 0, len(files))
	failed := 0
	for _, file := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		r := CheckResult{Path: file, OK: true}
		if _, err := backend.ParseFile(cmd.Context(), file, contextOptions(filepath.Dir(file))...); err != nil {
			r.OK = false
			r.Error = err.Error()
			failed++
		}
		results = append(results, r)
	}

	p := newPrinter(cmd, g)
	if p.text() {
		for _, r := range results {
			if r.OK {
				p.printf("ok\t%s\n", r.Path)
			} else {
				p.printf("FAIL\t%s\n", r.Error)
			}
		}
	} else if err := p.encode(results); err != nil {
		return err
	}

	if failed > 0 {
		return zerr.With(fmt.Errorf("%d of %d: %w", failed, len(files), ErrCheckFailed), "failed", failed)
	}
	return nil
}
