// Package treesitter wraps the tree-sitter Groovy and Kotlin grammars used to
// validate Gradle build scripts.
//
// The grammars are C code, so the only backend needs cgo
// (smacker/go-tree-sitter). Builds with CGO_ENABLED=0 get a stub whose
// constructor fails, and Available reports false; callers then stay on the
// heuristic build-script parser.
//
// Backends are safe for concurrent use. A Parser belongs to one goroutine.
package treesitter

import "context"

// Language is a grammar a backend can parse.
type Language string

const (
	// Groovy is the grammar for build.gradle and settings.gradle.
	Groovy Language = "groovy"

	// Kotlin is the grammar for build.gradle.kts and settings.gradle.kts.
	Kotlin Language = "kotlin"
)

// Backend creates parsers for the grammars it links.
type Backend interface {
	Name() string
	SupportsLanguage(lang Language) bool

	// NewParser returns ErrLanguageNotSupported for a grammar the backend
	// lacks and ErrBackendClosed after Close.
	NewParser(lang Language) (Parser, error)
	Close() error
}

// Parser turns source text into a concrete syntax tree.
type Parser interface {
	// Parse stops early when ctx is cancelled.
	Parse(ctx context.Context, source []byte) (Tree, error)
	Close() error
}

// Tree is a parsed syntax tree. It must be closed.
type Tree interface {
	RootNode() Node

	// HasError reports whether error recovery inserted ERROR or MISSING nodes.
	HasError() bool
	Close() error
}

// Node is a syntax tree node.
type Node interface {
	// Type is the grammar rule or token, such as "call_expression" or "(".
	Type() string
	StartPoint() Point
	EndPoint() Point
	Content(source []byte) string
	ChildCount() uint32

	// Child returns nil when index is out of range.
	Child(index uint32) Node
	IsError() bool
	IsMissing() bool
}

// Point is a zero-based (row, column) source position. Column counts bytes.
type Point struct {
	Row    uint32
	Column uint32
}

// ErrLanguageNotSupported is returned for a grammar the backend does not link.
type ErrLanguageNotSupported struct {
	Language Language
	Backend  string
}

func (e ErrLanguageNotSupported) Error() string {
	return "language " + string(e.Language) + " is not supported by backend " + e.Backend
}

// ErrBackendClosed is returned by NewParser after Close.
type ErrBackendClosed struct {
	Backend string
}

func (e ErrBackendClosed) Error() string {
	return "backend " + e.Backend + " has been closed"
}

// ErrParserClosed is returned by Parse after Close.
type ErrParserClosed struct{}

func (ErrParserClosed) Error() string { return "parser has been closed" }
