package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/gradledeps/pkg/config"
	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// printer writes command results in the configured output format.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(cmd *cobra.Command, g *globalOptions) *printer {
	return &printer{format: g.resolved().Output.Format, w: cmd.OutOrStdout()}
}

// text reports whether results are printed as plain text.
func (p *printer) text() bool {
	return p.format != config.FormatJSON && p.format != config.FormatYAML
}

// encode writes v as JSON or YAML.
func (p *printer) encode(v any) error {
	switch p.format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func (p *printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// matches prints one line per match: location, configuration, coordinate.
func (p *printer) matches(matches []gradle.Match) {
	for _, m := range matches {
		p.printf("%s\t%s\t%s%s\n", location(m.Path, m.Location), m.Configuration, m.Coordinate, markers(m.Platform, m.Constraint))
	}
}

// dependencies prints one line per declaration.
func (p *printer) dependencies(path string, deps []gradle.Dependency) {
	for _, d := range deps {
		coord := d.Coordinate.String()
		switch {
		case d.Project != "":
			coord = "project(" + d.Project + ")"
		case d.Coordinate.IsZero() && d.CatalogRef != "":
			coord = d.CatalogRef + " (unresolved)"
		case d.Coordinate.IsZero():
			coord = "(" + string(d.Notation) + ")"
		}
		p.printf("%s\t%s\t%s%s\n", location(path, d.Location), d.Configuration, coord, markers(d.Platform, d.Constraint))
	}
}

func location(path string, loc gradle.Location) string {
	if path == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", path, loc.Line, loc.Column)
}

func markers(platform, constraint bool) string {
	var s string
	if platform {
		s += " [platform]"
	}
	if constraint {
		s += " [constraint]"
	}
	return s
}
