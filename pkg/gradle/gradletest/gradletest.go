// Package gradletest holds build-script fixtures and helpers for tests that
// exercise dependency lookups.
//
// Fixtures are embedded at build time and described by fixtures.yaml, which
// lists the dependencies each one declares. They are never mutated.
package gradletest

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

//go:embed fixtures
var files embed.FS

// Declaration is one dependency a fixture declares.
type Declaration struct {
	Configuration string
	Coordinate    gradle.Coordinate
}

// UnmarshalYAML reads "configuration group:artifact[:version]".
func (d *Declaration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	conf, coord, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return fmt.Errorf("line %d: declaration %q needs a configuration and a coordinate", value.Line, s)
	}
	c, err := gradle.ParseCoordinate(strings.TrimSpace(coord))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Configuration, d.Coordinate = conf, c
	return nil
}

// Fixture is an immutable build script.
type Fixture struct {
	Name     string
	File     string
	Dialect  gradle.Dialect
	Text     string
	Broken   bool
	Declares []Declaration
}

// Declared reports whether the fixture declares group:artifact.
func (f Fixture) Declared(group, artifact string) bool {
	return slices.ContainsFunc(f.Declares, func(d Declaration) bool {
		return d.Coordinate.Group == group && d.Coordinate.Artifact == artifact
	})
}

type manifestEntry struct {
	Name     string        `yaml:"name"`
	File     string        `yaml:"file"`
	Broken   bool          `yaml:"broken"`
	Declares []Declaration `yaml:"declares"`
}

var fixtures = mustLoad()

func mustLoad() []Fixture {
	data, err := files.ReadFile("fixtures/fixtures.yaml")
	if err != nil {
		panic(err)
	}
	var entries []manifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		panic(fmt.Sprintf("gradletest: fixtures.yaml: %v", err))
	}
	out := make([]Fixture, 0, len(entries))
	for _, e := range entries {
		text, err := files.ReadFile("fixtures/" + e.File)
		if err != nil {
			panic(err)
		}
		dialect, ok := gradle.DialectForPath(e.File)
		if !ok {
			panic("gradletest: not a build script: " + e.File)
		}
		out = append(out, Fixture{
			Name:     e.Name,
			File:     e.File,
			Dialect:  dialect,
			Text:     string(text),
			Broken:   e.Broken,
			Declares: e.Declares,
		})
	}
	return out
}

// All returns every fixture in manifest order.
func All() []Fixture {
	return slices.Clone(fixtures)
}

// Valid returns the fixtures that parse.
func Valid() []Fixture {
	var out []Fixture
	for _, f := range fixtures {
		if !f.Broken {
			out = append(out, f)
		}
	}
	return out
}

// Get returns the named fixture.
func Get(name string) (Fixture, bool) {
	i := slices.IndexFunc(fixtures, func(f Fixture) bool { return f.Name == name })
	if i < 0 {
		return Fixture{}, false
	}
	return fixtures[i], true
}

// MustGet returns the named fixture or fails the test.
func MustGet(tb testing.TB, name string) Fixture {
	tb.Helper()
	f, ok := Get(name)
	require.Truef(tb, ok, "unknown fixture %q", name)
	return f
}

// Check looks up group:artifact in the fixture and fails the test unless the
// result agrees with the fixture's declarations.
func Check(tb testing.TB, f Fixture, group, artifact string) []gradle.Match {
	tb.Helper()
	matches, err := gradle.FindDependency(f.Text, f.Dialect, group, artifact, "")
	require.NoError(tb, err, "fixture %s", f.Name)
	if f.Declared(group, artifact) {
		require.NotEmptyf(tb, matches, "fixture %s declares %s:%s", f.Name, group, artifact)
	} else {
		require.Emptyf(tb, matches, "fixture %s does not declare %s:%s", f.Name, group, artifact)
	}
	return matches
}

// MultiProject returns a multi-project build: settings with a relocated
// subproject, gradle.properties, a version catalog and Groovy and Kotlin
// build scripts.
func MultiProject() fs.FS {
	sub, err := fs.Sub(files, "fixtures/multi")
	if err != nil {
		panic(err)
	}
	return sub
}

// MapFS builds an in-memory file system from path/content pairs.
func MapFS(pairs ...string) fstest.MapFS {
	if len(pairs)%2 != 0 {
		panic("gradletest.MapFS: odd number of arguments")
	}
	m := make(fstest.MapFS, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i]] = &fstest.MapFile{Data: []byte(pairs[i+1]), Mode: 0o644}
	}
	return m
}
