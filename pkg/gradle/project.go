package gradle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/magiconair/properties"
)

// Project is a Gradle project and its subprojects as declared by settings.
type Project struct {
	// Path is the Gradle project path: ":" for the root, ":libs:core" below it.
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`

	// Dir is the project directory within the loaded file system.
	Dir string `json:"dir" yaml:"dir"`

	// BuildFile is the build script path, or empty when the project has none.
	BuildFile string       `json:"build_file,omitempty" yaml:"build_file,omitempty"`
	Script    *BuildScript `json:"script" yaml:"script"`

	// Settings is only set on the root project.
	Settings *Settings `json:"settings,omitempty" yaml:"settings,omitempty"`

	Children []*Project `json:"children,omitempty" yaml:"children,omitempty"`
}

// Configurations groups the project's declared dependencies by configuration.
func (p *Project) Configurations() map[string][]Dependency {
	out := make(map[string][]Dependency)
	if p.Script == nil {
		return out
	}
	for _, d := range p.Script.Dependencies {
		out[d.Configuration] = append(out[d.Configuration], d)
	}
	return out
}

// Walk visits p and its descendants depth-first in project-path order,
// stopping at the first error.
func (p *Project) Walk(fn func(*Project) error) error {
	if err := fn(p); err != nil {
		return err
	}
	for _, c := range p.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// All returns p and its descendants in depth-first, project-path order.
func (p *Project) All() []*Project {
	var out []*Project
	_ = p.Walk(func(q *Project) error {
		out = append(out, q)
		return nil
	})
	return out
}

// Find returns matching declarations from every project in the tree. Each
// match carries the build file it came from.
func (p *Project) Find(q Query) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	finder := defaultFinder
	matches := make([]Match, 0)
	for _, proj := range p.All() {
		if proj.Script == nil {
			continue
		}
		m, err := finder.FindIn(proj.Script, q)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m...)
	}
	return matches, nil
}

// LoadProject reads a Gradle build rooted at dir from fsys: the settings
// script, gradle.properties, the gradle/libs.versions.toml catalog and the
// build script of every included project. A nil backend means the heuristic
// backend.
//
// Missing files are not errors; a directory without any script yields a
// root project with an empty script.
func LoadProject(ctx context.Context, fsys fs.FS, dir string, backend ParserBackend) (*Project, error) {
	if backend == nil {
		backend = NewHeuristicBackend()
	}
	dir = path.Clean(dir)

	l := &projectLoader{ctx: ctx, fsys: fsys, backend: backend}

	props, err := l.properties(path.Join(dir, PropertiesFile))
	if err != nil {
		return nil, err
	}
	if l.catalog, err = l.loadCatalog(path.Join(dir, CatalogFile)); err != nil {
		return nil, err
	}

	settings, err := l.settings(dir)
	if err != nil {
		return nil, err
	}

	root, err := l.load(":", dir, props)
	if err != nil {
		return nil, err
	}
	root.Settings = settings
	root.Name = path.Base(dir)
	if dir == "." {
		root.Name = ""
	}
	if settings != nil && settings.RootProjectName != "" {
		root.Name = settings.RootProjectName
	}
	if settings == nil {
		return root, nil
	}

	// ext properties of the root build are visible to subprojects.
	inherited := maps.Clone(props)
	if inherited == nil {
		inherited = make(map[string]string)
	}
	maps.Copy(inherited, root.Script.Properties)
	delete(inherited, "group")
	delete(inherited, "version")

	byPath := map[string]*Project{":": root}
	for _, inc := range settings.Includes {
		if _, err := l.ensure(inc, dir, settings, inherited, byPath); err != nil {
			return nil, err
		}
	}
	_ = root.Walk(func(p *Project) error {
		slices.SortFunc(p.Children, func(a, b *Project) int { return strings.Compare(a.Path, b.Path) })
		return nil
	})
	return root, nil
}

// BuildOptions returns the parse options that give a single script of the
// build rooted at dir the gradle.properties values and version catalog
// LoadProject would supply. Missing files contribute nothing.
func BuildOptions(fsys fs.FS, dir string) ([]ParseOption, error) {
	l := &projectLoader{fsys: fsys}
	dir = path.Clean(dir)
	props, err := l.properties(path.Join(dir, PropertiesFile))
	if err != nil {
		return nil, err
	}
	catalog, err := l.loadCatalog(path.Join(dir, CatalogFile))
	if err != nil {
		return nil, err
	}
	return []ParseOption{WithProperties(props), WithCatalog(catalog)}, nil
}

type projectLoader struct {
	ctx     context.Context
	fsys    fs.FS
	backend ParserBackend
	catalog *Catalog
}

// ensure loads the project at projectPath and its missing ancestors.
func (l *projectLoader) ensure(projectPath, rootDir string, settings *Settings, props map[string]string, byPath map[string]*Project) (*Project, error) {
	if p, ok := byPath[projectPath]; ok {
		return p, nil
	}
	segments := strings.Split(strings.TrimPrefix(projectPath, ":"), ":")
	parentPath := ":" + strings.Join(segments[:len(segments)-1], ":")
	parent, err := l.ensure(parentPath, rootDir, settings, props, byPath)
	if err != nil {
		return nil, err
	}

	dir := path.Join(rootDir, path.Join(segments...))
	if override, ok := settings.ProjectDirs[projectPath]; ok {
		dir = path.Join(rootDir, override)
	}
	p, err := l.load(projectPath, dir, props)
	if err != nil {
		return nil, err
	}
	p.Name = segments[len(segments)-1]
	parent.Children = append(parent.Children, p)
	byPath[projectPath] = p
	return p, nil
}

func (l *projectLoader) load(projectPath, dir string, props map[string]string) (*Project, error) {
	if err := l.ctx.Err(); err != nil {
		return nil, err
	}
	p := &Project{Path: projectPath, Dir: dir}
	for _, name := range []string{BuildFileKotlin, BuildFileGroovy} {
		file := path.Join(dir, name)
		data, err := fs.ReadFile(l.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		dialect, _ := DialectForPath(name)
		script, err := l.backend.ParseContent(l.ctx, string(data), dialect,
			WithPath(file), WithProperties(props), WithCatalog(l.catalog))
		if err != nil {
			return nil, fmt.Errorf("load project %s: %w", projectPath, err)
		}
		p.BuildFile = file
		p.Script = script
		return p, nil
	}
	p.Script = &BuildScript{}
	return p, nil
}

func (l *projectLoader) settings(dir string) (*Settings, error) {
	for _, name := range []string{SettingsFileKotlin, SettingsFileGroovy} {
		file := path.Join(dir, name)
		data, err := fs.ReadFile(l.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		dialect, _ := DialectForPath(name)
		s, err := l.backend.ParseSettings(l.ctx, string(data), dialect, WithPath(file))
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return s, nil
	}
	return nil, nil
}

func (l *projectLoader) loadCatalog(file string) (*Catalog, error) {
	data, err := fs.ReadFile(l.fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = file
		}
		return nil, err
	}
	return c, nil
}

func (l *projectLoader) properties(file string) (map[string]string, error) {
	data, err := fs.ReadFile(l.fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	props, err := ParseProperties(string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = file
		}
		return nil, err
	}
	return props, nil
}

// ParseProperties reads a gradle.properties file in java.util.Properties
// syntax: key=value, key:value or "key value" lines, # and ! comments,
// backslash line continuations and escapes. ${...} is not expanded, as
// Gradle does not expand it either. Values are trimmed.
func ParseProperties(text string) (map[string]string, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes([]byte(text))
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	props := p.Map()
	for k, v := range props {
		props[k] = strings.TrimSpace(v)
	}
	return props, nil
}

// ProjectPaths returns every project path in the tree, sorted.
func (p *Project) ProjectPaths() []string {
	var out []string
	for _, q := range p.All() {
		out = append(out, q.Path)
	}
	slices.Sort(out)
	return out
}
