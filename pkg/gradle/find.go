package gradle

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Query selects dependency declarations.
//
// Group, Artifact and Configuration accept glob patterns
// ("org.springframework.*", "*Implementation"). Version is compared for exact
// equality with the declared version after property interpolation; an empty
// or blank Version matches any declaration, including ones without a version.
type Query struct {
	Group         string `json:"group" yaml:"group"`
	Artifact      string `json:"artifact" yaml:"artifact"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	Configuration string `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// Validate reports an *InvalidCoordinateError for an unusable query.
func (q Query) Validate() error {
	for _, f := range []struct {
		name, value string
		required    bool
	}{
		{"group", q.Group, true},
		{"artifact", q.Artifact, true},
		{"configuration", q.Configuration, false},
	} {
		v := strings.TrimSpace(f.value)
		switch {
		case v == "" && f.required:
			return &InvalidCoordinateError{Field: f.name, Value: f.value, Reason: "must not be empty"}
		case v == "":
		case strings.ContainsAny(v, ": \t\n"):
			return &InvalidCoordinateError{Field: f.name, Value: f.value, Reason: "must not contain ':' or whitespace"}
		case !doublestar.ValidatePattern(v):
			return &InvalidCoordinateError{Field: f.name, Value: f.value, Reason: "malformed glob pattern"}
		}
	}
	if strings.ContainsAny(q.Version, ":\n") {
		return &InvalidCoordinateError{Field: "version", Value: q.Version, Reason: "must not contain ':'"}
	}
	return nil
}

// Matches reports whether d satisfies the query. The query must be valid.
func (q Query) Matches(d Dependency) bool {
	if d.Coordinate.IsZero() {
		return false
	}
	if !globMatch(q.Group, d.Coordinate.Group) || !globMatch(q.Artifact, d.Coordinate.Artifact) {
		return false
	}
	if q.Configuration != "" && !globMatch(q.Configuration, d.Configuration) {
		return false
	}
	if v := strings.TrimSpace(q.Version); v != "" && v != d.Coordinate.Version {
		return false
	}
	return true
}

// globMatch matches value against a doublestar pattern. A pattern equal to
// the value always matches, so coordinates holding [ or { stay searchable.
func globMatch(pattern, value string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == value {
		return true
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

// Match is one declaration found by a lookup.
type Match struct {
	Configuration string     `json:"configuration" yaml:"configuration"`
	Version       string     `json:"version,omitempty" yaml:"version,omitempty"`
	Coordinate    Coordinate `json:"coordinate" yaml:"coordinate"`
	Location      Location   `json:"location" yaml:"location"`
	Block         string     `json:"block" yaml:"block"`
	Platform      bool       `json:"platform,omitempty" yaml:"platform,omitempty"`
	Constraint    bool       `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Path          string     `json:"path,omitempty" yaml:"path,omitempty"`
}

func newMatch(path string, d Dependency) Match {
	return Match{
		Configuration: d.Configuration,
		Version:       d.Coordinate.Version,
		Coordinate:    d.Coordinate,
		Location:      d.Location,
		Block:         d.Block,
		Platform:      d.Platform,
		Constraint:    d.Constraint,
		Path:          path,
	}
}

// FindDependency reports every declaration of group:artifact in text, in
// source order, across all configurations and dependencies blocks. An empty
// version matches any declared version.
//
// Errors are *InvalidCoordinateError for an empty or malformed group or
// artifact and *ParseError for text that does not parse. A dependency that
// is not declared yields an empty slice and no error.
func FindDependency(text string, dialect Dialect, group, artifact, version string) ([]Match, error) {
	return defaultFinder.Find(context.Background(), text, dialect, Query{Group: group, Artifact: artifact, Version: version})
}

var defaultFinder = NewFinder(nil)

// Finder runs lookups with a chosen parser backend.
type Finder struct {
	backend ParserBackend
}

// NewFinder creates a Finder. A nil backend means the heuristic backend.
func NewFinder(backend ParserBackend) *Finder {
	if backend == nil {
		backend = NewHeuristicBackend()
	}
	return &Finder{backend: backend}
}

// Backend returns the parser backend in use.
func (f *Finder) Backend() ParserBackend { return f.backend }

// Find parses text and returns the declarations matching q.
func (f *Finder) Find(ctx context.Context, text string, dialect Dialect, q Query, opts ...ParseOption) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	script, err := f.backend.ParseContent(ctx, text, dialect, opts...)
	if err != nil {
		return nil, err
	}
	return f.FindIn(script, q)
}

// FindFile parses the script at path and returns the declarations matching q.
func (f *Finder) FindFile(ctx context.Context, path string, q Query, opts ...ParseOption) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	script, err := f.backend.ParseFile(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return f.FindIn(script, q)
}

// FindIn returns the declarations of an already parsed script matching q.
func (f *Finder) FindIn(script *BuildScript, q Query) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	matches := make([]Match, 0)
	for _, d := range script.Dependencies {
		if q.Matches(d) {
			matches = append(matches, newMatch(script.Path, d))
		}
	}
	return matches, nil
}
