package gradle

import "strings"

// Coordinate identifies an external module: group, artifact and optional
// version, classifier and extension.
type Coordinate struct {
	Group      string `json:"group" yaml:"group"`
	Artifact   string `json:"artifact" yaml:"artifact"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
	Extension  string `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// ParseCoordinate parses Gradle's string notation:
//
//	group:artifact
//	group:artifact:version
//	group:artifact:version:classifier
//	group:artifact:version@extension
//
// The version may be empty ("g:a:" is the same as "g:a").
func ParseCoordinate(s string) (Coordinate, error) {
	raw := s
	s = strings.TrimSpace(s)

	var c Coordinate
	if body, ext, ok := strings.Cut(s, "@"); ok {
		if ext == "" || strings.ContainsAny(ext, ":@") {
			return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: raw, Reason: "malformed @extension"}
		}
		s, c.Extension = body, ext
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: raw, Reason: "want group:artifact[:version[:classifier]]"}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	c.Group, c.Artifact = parts[0], parts[1]
	if len(parts) > 2 {
		c.Version = parts[2]
	}
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}

	if c.Group == "" {
		return Coordinate{}, &InvalidCoordinateError{Field: "group", Value: raw, Reason: "must not be empty"}
	}
	if c.Artifact == "" {
		return Coordinate{}, &InvalidCoordinateError{Field: "artifact", Value: raw, Reason: "must not be empty"}
	}
	if c.Classifier != "" && c.Version == "" {
		return Coordinate{}, &InvalidCoordinateError{Field: "coordinate", Value: raw, Reason: "classifier without version"}
	}
	return c, nil
}

// MustParseCoordinate is like ParseCoordinate but panics on error.
func MustParseCoordinate(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the coordinate in string notation.
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.Group)
	b.WriteByte(':')
	b.WriteString(c.Artifact)
	if c.Version != "" || c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Version)
	}
	if c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Classifier)
	}
	if c.Extension != "" {
		b.WriteByte('@')
		b.WriteString(c.Extension)
	}
	return b.String()
}

// Module returns "group:artifact".
func (c Coordinate) Module() string {
	return c.Group + ":" + c.Artifact
}

// IsZero reports whether no group or artifact is set, which is the case for
// project, file and unresolved catalog dependencies.
func (c Coordinate) IsZero() bool {
	return c.Group == "" && c.Artifact == ""
}

// HasVersion reports whether a version was declared.
func (c Coordinate) HasVersion() bool {
	return c.Version != ""
}
