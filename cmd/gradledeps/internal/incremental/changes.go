package incremental

import (
	"path"
	"slices"
	"strings"
)

// Changes lists the scripts that differ between two snapshots. Each list is
// sorted.
type Changes struct {
	Added    []string `json:"added" yaml:"added"`
	Modified []string `json:"modified" yaml:"modified"`
	Deleted  []string `json:"deleted" yaml:"deleted"`
}

// Empty reports whether nothing changed.
func (c *Changes) Empty() bool {
	return c == nil || len(c.Added)+len(c.Modified)+len(c.Deleted) == 0
}

// Projects maps the directories of changed scripts to Gradle project paths,
// assuming each project lives in the directory its path names. A change at
// the workspace root is reported as ":".
func (c *Changes) Projects() []string {
	if c == nil {
		return nil
	}
	var projects []string
	for _, list := range [][]string{c.Added, c.Modified, c.Deleted} {
		for _, p := range list {
			dir := path.Dir(p)
			if dir == "." {
				projects = append(projects, ":")
			} else {
				projects = append(projects, ":"+strings.ReplaceAll(dir, "/", ":"))
			}
		}
	}
	slices.Sort(projects)
	return slices.Compact(projects)
}
