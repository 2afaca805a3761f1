package gradle

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultCatalogName is the accessor name of gradle/libs.versions.toml.
const DefaultCatalogName = "libs"

// Catalog is a parsed version catalog (libs.versions.toml). Keys are
// normalized aliases: "spring-boot_starter" and "spring.boot.starter" are the
// same entry, as they are for Gradle's generated accessors.
type Catalog struct {
	Name      string
	Versions  map[string]string
	Libraries map[string]Coordinate
	Bundles   map[string][]string
	Plugins   map[string]Plugin
}

type rawCatalog struct {
	Versions  map[string]any      `toml:"versions"`
	Libraries map[string]any      `toml:"libraries"`
	Bundles   map[string][]string `toml:"bundles"`
	Plugins   map[string]any      `toml:"plugins"`
}

// ParseCatalog decodes a libs.versions.toml document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if _, err := toml.Decode(string(data), &raw); err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, &ParseError{Path: CatalogFile, Line: perr.Position.Line, Msg: perr.Message}
		}
		return nil, fmt.Errorf("decode version catalog: %w", err)
	}

	c := &Catalog{
		Name:      DefaultCatalogName,
		Versions:  make(map[string]string, len(raw.Versions)),
		Libraries: make(map[string]Coordinate, len(raw.Libraries)),
		Bundles:   make(map[string][]string, len(raw.Bundles)),
		Plugins:   make(map[string]Plugin, len(raw.Plugins)),
	}

	for alias, v := range raw.Versions {
		c.Versions[normalizeAlias(alias)] = richVersion(v, nil)
	}

	for alias, v := range raw.Libraries {
		coord, err := c.library(alias, v)
		if err != nil {
			return nil, err
		}
		c.Libraries[normalizeAlias(alias)] = coord
	}

	for alias, members := range raw.Bundles {
		norm := make([]string, 0, len(members))
		for _, m := range members {
			m = normalizeAlias(m)
			if _, ok := c.Libraries[m]; !ok {
				return nil, &ParseError{Path: CatalogFile, Msg: fmt.Sprintf("bundle %q references unknown library %q", alias, m)}
			}
			norm = append(norm, m)
		}
		c.Bundles[normalizeAlias(alias)] = norm
	}

	for alias, v := range raw.Plugins {
		p := Plugin{Apply: true, CatalogRef: c.Name + ".plugins." + normalizeAlias(alias)}
		switch v := v.(type) {
		case string:
			id, version, _ := strings.Cut(v, ":")
			p.ID, p.Version = id, version
		case map[string]any:
			p.ID, _ = v["id"].(string)
			p.Version = richVersion(v["version"], c.Versions)
		}
		if p.ID == "" {
			return nil, &ParseError{Path: CatalogFile, Msg: fmt.Sprintf("plugin %q has no id", alias)}
		}
		c.Plugins[normalizeAlias(alias)] = p
	}
	return c, nil
}

func (c *Catalog) library(alias string, v any) (Coordinate, error) {
	switch v := v.(type) {
	case string:
		coord, err := ParseCoordinate(v)
		if err != nil {
			return Coordinate{}, fmt.Errorf("library %q: %w", alias, err)
		}
		return coord, nil
	case map[string]any:
		var coord Coordinate
		if module, ok := v["module"].(string); ok {
			g, a, found := strings.Cut(module, ":")
			if !found {
				return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: module, Reason: "module must be group:artifact"}
			}
			coord.Group, coord.Artifact = g, a
		} else {
			coord.Group, _ = v["group"].(string)
			coord.Artifact, _ = v["name"].(string)
		}
		if coord.Group == "" || coord.Artifact == "" {
			return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: alias, Reason: "library needs module or group and name"}
		}
		coord.Version = richVersion(v["version"], c.Versions)
		return coord, nil
	default:
		return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: alias, Reason: "unsupported library declaration"}
	}
}

// richVersion flattens a version that is either a plain string or a table
// with ref, strictly, require or prefer.
func richVersion(v any, versions map[string]string) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		if ref, ok := v["ref"].(string); ok {
			return versions[normalizeAlias(ref)]
		}
		for _, key := range []string{"strictly", "require", "prefer"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
	}
	return ""
}

func normalizeAlias(alias string) string {
	return strings.ToLower(strings.NewReplacer("-", ".", "_", ".").Replace(alias))
}

// Resolve returns the coordinates behind a library or bundle accessor such as
// "libs.spring.boot.starter" or "libs.bundles.spring".
func (c *Catalog) Resolve(accessor string) ([]Coordinate, bool) {
	if c == nil {
		return nil, false
	}
	rest, ok := strings.CutPrefix(accessor, c.Name+".")
	if !ok {
		return nil, false
	}
	rest = normalizeAlias(rest)
	if bundle, ok := strings.CutPrefix(rest, "bundles."); ok {
		members, found := c.Bundles[bundle]
		if !found {
			return nil, false
		}
		out := make([]Coordinate, 0, len(members))
		for _, m := range members {
			out = append(out, c.Libraries[m])
		}
		return out, true
	}
	coord, found := c.Libraries[rest]
	if !found {
		return nil, false
	}
	return []Coordinate{coord}, true
}

// Plugin returns the plugin behind an accessor such as "libs.plugins.boot".
func (c *Catalog) Plugin(accessor string) (Plugin, bool) {
	if c == nil {
		return Plugin{}, false
	}
	rest, ok := strings.CutPrefix(accessor, c.Name+".plugins.")
	if !ok {
		return Plugin{}, false
	}
	p, found := c.Plugins[normalizeAlias(rest)]
	return p, found
}

// Version returns the version behind an accessor such as "libs.versions.spring".
func (c *Catalog) Version(accessor string) (string, bool) {
	if c == nil {
		return "", false
	}
	rest, ok := strings.CutPrefix(accessor, c.Name+".versions.")
	if !ok {
		return "", false
	}
	v, found := c.Versions[normalizeAlias(rest)]
	return v, found
}

// Aliases returns the library aliases, sorted.
func (c *Catalog) Aliases() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Libraries))
}
