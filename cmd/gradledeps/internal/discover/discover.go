// Package discover finds Gradle scripts in a workspace.
//
// # Detection
//
// Discovery is DETERMINISTIC: given the same directory contents it returns
// the same sorted list of scripts. A file is a script when
// gradle.DialectForPath recognizes its name (*.gradle or *.gradle.kts).
//
// # Ignored Directories
//
// Hidden directories, the configured ignore list and anything below a
// directory named in the list are skipped. Entries in the ignore list are
// matched against both the directory name and its slash-separated path
// relative to the root, so "buildSrc/build" skips only that directory.
// Entries with glob characters are doublestar patterns over the relative
// path: "**/generated-*" skips every directory whose name starts with
// "generated-".
package discover

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// Script is one discovered Gradle script.
type Script struct {
	// Path is relative to the scan root, slash-separated.
	Path     string         `json:"path" yaml:"path"`
	Dialect  gradle.Dialect `json:"dialect" yaml:"dialect"`
	Settings bool           `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Dir returns the directory containing the script, "." for the root.
func (s Script) Dir() string {
	return path.Dir(s.Path)
}

// IsScript reports whether name is a Gradle script file name.
func IsScript(name string) bool {
	_, ok := gradle.DialectForPath(name)
	return ok
}

// Ignore decides which directories a walk skips.
type Ignore struct {
	entries  map[string]bool
	patterns []string
}

// NewIgnore builds an Ignore from directory names, relative paths or
// doublestar patterns. Invalid patterns are dropped.
func NewIgnore(dirs []string) *Ignore {
	ig := &Ignore{entries: make(map[string]bool, len(dirs))}
	for _, d := range dirs {
		d = strings.Trim(filepath.ToSlash(strings.TrimSpace(d)), "/")
		switch {
		case d == "":
		case strings.ContainsAny(d, "*?[{"):
			if doublestar.ValidatePattern(d) {
				ig.patterns = append(ig.patterns, d)
			}
		default:
			ig.entries[d] = true
		}
	}
	return ig
}

// Dir reports whether the directory at rel (slash-separated, relative to
// the root) is skipped. The root itself is never skipped.
func (ig *Ignore) Dir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return false
	}
	name := path.Base(rel)
	if strings.HasPrefix(name, ".") {
		return true
	}
	if ig == nil {
		return false
	}
	if ig.entries[name] || ig.entries[rel] {
		return true
	}
	return slices.ContainsFunc(ig.patterns, func(p string) bool {
		ok, _ := doublestar.Match(p, rel)
		return ok
	})
}

// BuildScripts walks root and returns every Gradle script below it, sorted
// by path. Unreadable directories are skipped.
func BuildScripts(ctx context.Context, root string, ignore *Ignore) ([]Script, error) {
	var scripts []Script

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.Dir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		dialect, ok := gradle.DialectForPath(d.Name())
		if !ok {
			return nil
		}
		scripts = append(scripts, Script{
			Path:     rel,
			Dialect:  dialect,
			Settings: gradle.IsSettingsFile(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(scripts, func(a, b Script) int { return strings.Compare(a.Path, b.Path) })
	return scripts, nil
}

// BuildRoots returns the directories holding a settings script, sorted.
// Each is the root of a Gradle build.
func BuildRoots(scripts []Script) []string {
	var roots []string
	for _, s := range scripts {
		if s.Settings && !slices.Contains(roots, s.Dir()) {
			roots = append(roots, s.Dir())
		}
	}
	slices.Sort(roots)
	return roots
}

// Dialects returns the distinct dialects present, sorted.
func Dialects(scripts []Script) []gradle.Dialect {
	var out []gradle.Dialect
	for _, s := range scripts {
		if !slices.Contains(out, s.Dialect) {
			out = append(out, s.Dialect)
		}
	}
	slices.Sort(out)
	return out
}
