// Package incremental records the build scripts seen by a scan so that a
// later status check can tell which Gradle projects changed.
package incremental

import (
	"slices"
	"strings"
	"time"

	"github.com/albertocavalcante/gradledeps/pkg/gradle"
)

// SnapshotVersion is written to every state file. Newer files are rejected.
const SnapshotVersion = 1

// Record is one build script as of a scan.
type Record struct {
	Path        string         `json:"path"`
	Dialect     gradle.Dialect `json:"dialect"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	ModTime     int64          `json:"mtime_ns"`
	Size        int64          `json:"size"`
}

// unchanged reports whether the file metadata matches, which lets a
// comparison skip reading the script.
func (r Record) unchanged(other Record) bool {
	return r.ModTime == other.ModTime && r.Size == other.Size
}

// Snapshot is the set of scripts in a workspace, sorted by path.
type Snapshot struct {
	Version int       `json:"version"`
	Taken   time.Time `json:"taken"`
	Scripts []Record  `json:"scripts"`
}

// Lookup returns the record for a slash-separated script path.
func (s *Snapshot) Lookup(path string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	i, ok := slices.BinarySearchFunc(s.Scripts, path, func(r Record, p string) int {
		return strings.Compare(r.Path, p)
	})
	if !ok {
		return Record{}, false
	}
	return s.Scripts[i], true
}

// Paths returns the recorded script paths in order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, len(s.Scripts))
	for i, r := range s.Scripts {
		paths[i] = r.Path
	}
	return paths
}

func (s *Snapshot) byPath() map[string]Record {
	m := make(map[string]Record)
	if s != nil {
		for _, r := range s.Scripts {
			m[r.Path] = r
		}
	}
	return m
}

// Compare returns the changes from s to next. Scripts whose metadata moved
// are compared by fingerprint, so both snapshots need fingerprints.
func (s *Snapshot) Compare(next *Snapshot) *Changes {
	return compare(s, next, func(r Record) (string, error) { return r.Fingerprint, nil })
}

// compare classifies every path of prev and next. fingerprint is only
// called for scripts whose metadata moved; a failure counts as modified.
func compare(prev, next *Snapshot, fingerprint func(Record) (string, error)) *Changes {
	before := prev.byPath()
	c := &Changes{Added: []string{}, Modified: []string{}, Deleted: []string{}}

	if next != nil {
		for _, r := range next.Scripts {
			old, ok := before[r.Path]
			delete(before, r.Path)
			switch {
			case !ok:
				c.Added = append(c.Added, r.Path)
			case old.unchanged(r):
			default:
				if fp, err := fingerprint(r); err != nil || fp != old.Fingerprint {
					c.Modified = append(c.Modified, r.Path)
				}
			}
		}
	}
	for path := range before {
		c.Deleted = append(c.Deleted, path)
	}
	slices.Sort(c.Added)
	slices.Sort(c.Modified)
	slices.Sort(c.Deleted)
	return c
}
