package gradle

import (
	"maps"
	"slices"
)

// Location is a 1-based position in a build script.
type Location struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Notation is the syntactic form of a dependency declaration.
type Notation string

const (
	NotationString    Notation = "string"     // "g:a:v"
	NotationMap       Notation = "map"        // group: 'g', name: 'a', version: 'v'
	NotationProject   Notation = "project"    // project(':core')
	NotationCatalog   Notation = "catalog"    // libs.spring.boot.starter
	NotationFiles     Notation = "files"      // files('a.jar'), fileTree('libs')
	NotationKotlin    Notation = "kotlin"     // kotlin("stdlib")
	NotationGradleAPI Notation = "gradle-api" // gradleApi(), localGroovy()
)

// Exclude is a transitive exclusion attached to a declaration.
type Exclude struct {
	Group  string `json:"group,omitempty" yaml:"group,omitempty"`
	Module string `json:"module,omitempty" yaml:"module,omitempty"`
}

// Dependency is one dependency declaration as written in a script.
type Dependency struct {
	Configuration string     `json:"configuration" yaml:"configuration"`
	Coordinate    Coordinate `json:"coordinate" yaml:"coordinate"`
	Notation      Notation   `json:"notation" yaml:"notation"`
	Location      Location   `json:"location" yaml:"location"`

	// Block is the dotted path of enclosing blocks, for example
	// "dependencies" or "buildscript.dependencies".
	Block string `json:"block" yaml:"block"`

	Platform   bool      `json:"platform,omitempty" yaml:"platform,omitempty"`
	Constraint bool      `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Excludes   []Exclude `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	Because    string    `json:"because,omitempty" yaml:"because,omitempty"`

	// Project is the target path of a project(...) dependency.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// CatalogRef is the accessor of a version-catalog dependency, such as
	// "libs.spring.boot.starter". Coordinate is filled in when the catalog
	// is known.
	CatalogRef string `json:"catalog_ref,omitempty" yaml:"catalog_ref,omitempty"`
}

// Plugin is a plugin request from a plugins block or apply statement.
type Plugin struct {
	ID         string   `json:"id" yaml:"id"`
	Version    string   `json:"version,omitempty" yaml:"version,omitempty"`
	Apply      bool     `json:"apply" yaml:"apply"`
	CatalogRef string   `json:"catalog_ref,omitempty" yaml:"catalog_ref,omitempty"`
	Location   Location `json:"location" yaml:"location"`
}

// Repository is a declared artifact repository.
type Repository struct {
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Block    string   `json:"block" yaml:"block"`
	Location Location `json:"location" yaml:"location"`
}

// BuildScript is the structural content of one build script.
type BuildScript struct {
	Path         string            `json:"path,omitempty" yaml:"path,omitempty"`
	Dialect      Dialect           `json:"dialect" yaml:"dialect"`
	Plugins      []Plugin          `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Group        string            `json:"group,omitempty" yaml:"group,omitempty"`
	Version      string            `json:"version,omitempty" yaml:"version,omitempty"`
	Repositories []Repository      `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	Dependencies []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Properties   map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Configurations returns the distinct configuration names, sorted.
func (s *BuildScript) Configurations() []string {
	set := make(map[string]struct{})
	for _, d := range s.Dependencies {
		set[d.Configuration] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// DependenciesIn returns the declarations made under one configuration.
func (s *BuildScript) DependenciesIn(configuration string) []Dependency {
	var out []Dependency
	for _, d := range s.Dependencies {
		if d.Configuration == configuration {
			out = append(out, d)
		}
	}
	return out
}

// HasPlugin reports whether the script requests the plugin.
func (s *BuildScript) HasPlugin(id string) bool {
	return slices.ContainsFunc(s.Plugins, func(p Plugin) bool { return p.ID == id })
}

// Settings is the content of a settings script.
type Settings struct {
	Path            string   `json:"path,omitempty" yaml:"path,omitempty"`
	RootProjectName string   `json:"root_project_name,omitempty" yaml:"root_project_name,omitempty"`
	Includes        []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// ProjectDirs holds project(':x').projectDir overrides, relative to the
	// settings directory.
	ProjectDirs map[string]string `json:"project_dirs,omitempty" yaml:"project_dirs,omitempty"`
}
