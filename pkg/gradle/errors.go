package gradle

import "fmt"

// ParseError reports build-script text that is not syntactically valid in
// its dialect. Line and Column are 1-based; zero means unknown.
type ParseError struct {
	Path    string
	Dialect Dialect
	Line    int
	Column  int
	Msg     string
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<" + string(e.Dialect) + " script>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", where, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", where, e.Msg)
}

// InvalidCoordinateError reports a malformed lookup key or coordinate string.
type InvalidCoordinateError struct {
	Field  string // "group", "artifact", "version", "configuration" or "coordinate"
	Value  string
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ErrUnsupportedDialect is returned for unknown dialect names.
type ErrUnsupportedDialect struct {
	Dialect string
}

func (e ErrUnsupportedDialect) Error() string {
	return fmt.Sprintf("unsupported build-script dialect %q: must be groovy or kotlin", e.Dialect)
}

// ErrBackendNotSupported indicates the requested parser backend is not available.
type ErrBackendNotSupported struct {
	Backend ParserBackendType
	Reason  string
}

func (e ErrBackendNotSupported) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("backend %q not supported: %s", e.Backend, e.Reason)
	}
	return fmt.Sprintf("backend %q not supported", e.Backend)
}
