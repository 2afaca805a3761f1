package gradle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/albertocavalcante/gradledeps/internal/log"
	"github.com/albertocavalcante/gradledeps/pkg/treesitter"
)

// -----------------------------------------------------------------------------
// Backend Types and Interface
// -----------------------------------------------------------------------------

// ParserBackendType identifies the parsing strategy to use.
type ParserBackendType string

const (
	// BackendHeuristic lexes the script and interprets it structurally.
	//
	// It checks bracket balance, strings and comments but does not validate
	// the full Groovy or Kotlin grammar. Scripts that Gradle would reject for
	// other reasons may still parse.
	BackendHeuristic ParserBackendType = "heuristic"

	// BackendTreeSitter validates the script with the tree-sitter Groovy or
	// Kotlin grammar before interpreting the syntax tree's tokens.
	//
	// Requires the CGO tree-sitter runtime.
	BackendTreeSitter ParserBackendType = "treesitter"

	// BackendHybrid runs both backends and compares results. The primary
	// backend's result is returned, with automatic fallback on errors.
	BackendHybrid ParserBackendType = "hybrid"
)

// ParseBackendType validates a backend name. The empty string means heuristic.
func ParseBackendType(s string) (ParserBackendType, error) {
	switch typ := ParserBackendType(strings.ToLower(strings.TrimSpace(s))); typ {
	case "":
		return BackendHeuristic, nil
	case BackendHeuristic, BackendTreeSitter, BackendHybrid:
		return typ, nil
	default:
		return "", ErrBackendNotSupported{Backend: typ, Reason: "must be one of heuristic, treesitter, hybrid"}
	}
}

// ParserBackend abstracts the parsing implementation.
//
// All backends are deterministic: the same input yields the same result.
type ParserBackend interface {
	// Name returns the backend identifier ("heuristic", "treesitter", or "hybrid").
	Name() string

	// ParseContent parses build-script text.
	ParseContent(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*BuildScript, error)

	// ParseSettings parses settings-script text.
	ParseSettings(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*Settings, error)

	// ParseFile reads and parses a build script. The dialect comes from the
	// file name.
	ParseFile(ctx context.Context, path string, opts ...ParseOption) (*BuildScript, error)

	// Close releases any resources held by the backend.
	Close() error
}

// tokenizer turns script text into tokens; backends differ only here.
type tokenizer interface {
	tokenize(ctx context.Context, content string, dialect Dialect, path string) ([]token, error)
}

func checkDialect(d Dialect) error {
	if d != Groovy && d != Kotlin {
		return ErrUnsupportedDialect{Dialect: string(d)}
	}
	return nil
}

func parseWith(ctx context.Context, tz tokenizer, content string, dialect Dialect, opts []ParseOption) (*node, parseConfig, error) {
	cfg := newParseConfig(opts)
	if err := checkDialect(dialect); err != nil {
		return nil, cfg, err
	}
	if err := ctx.Err(); err != nil {
		return nil, cfg, err
	}
	toks, err := tz.tokenize(ctx, content, dialect, cfg.path)
	if err != nil {
		return nil, cfg, err
	}
	root, err := group(toks, dialect, cfg.path)
	if err != nil {
		return nil, cfg, err
	}
	return root, cfg, nil
}

func parseScriptWith(ctx context.Context, tz tokenizer, content string, dialect Dialect, opts []ParseOption) (*BuildScript, error) {
	root, cfg, err := parseWith(ctx, tz, content, dialect, opts)
	if err != nil {
		return nil, err
	}
	return interpretScript(root, dialect, cfg), nil
}

func parseSettingsWith(ctx context.Context, tz tokenizer, content string, dialect Dialect, opts []ParseOption) (*Settings, error) {
	root, cfg, err := parseWith(ctx, tz, content, dialect, opts)
	if err != nil {
		return nil, err
	}
	return interpretSettings(root, dialect, cfg), nil
}

func parseFileWith(ctx context.Context, b ParserBackend, path string, opts []ParseOption) (*BuildScript, error) {
	dialect, ok := DialectForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: not a Gradle build script", path)
	}
	content, err := readFileContent(path)
	if err != nil {
		return nil, err
	}
	return b.ParseContent(ctx, content, dialect, append([]ParseOption{WithPath(path)}, opts...)...)
}

// Parse parses build-script text with the heuristic backend.
func Parse(text string, dialect Dialect, opts ...ParseOption) (*BuildScript, error) {
	return parseScriptWith(context.Background(), heuristicTokenizer{}, text, dialect, opts)
}

// ParseSettings parses settings-script text with the heuristic backend.
func ParseSettings(text string, dialect Dialect, opts ...ParseOption) (*Settings, error) {
	return parseSettingsWith(context.Background(), heuristicTokenizer{}, text, dialect, opts)
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// BackendConfig holds configuration for parser backends.
type BackendConfig struct {
	// TreeSitterBackend specifies which tree-sitter runtime to use.
	// This affects TreeSitterBackend and HybridBackend only.
	TreeSitterBackend treesitter.BackendType

	// HybridPrimary specifies which backend's output to use in hybrid mode.
	// Default: BackendHeuristic.
	HybridPrimary ParserBackendType

	// HybridLogDiffs logs differences between backends at debug level.
	// Default: true
	HybridLogDiffs bool
}

// DefaultBackendConfig returns sensible defaults for parser configuration.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		TreeSitterBackend: treesitter.BackendAuto,
		HybridPrimary:     BackendHeuristic,
		HybridLogDiffs:    true,
	}
}

// NewParserBackend creates a parser backend of the specified type.
//
// Returns an error if tree-sitter is requested but not available.
func NewParserBackend(typ ParserBackendType, cfg BackendConfig) (ParserBackend, error) {
	switch typ {
	case BackendHeuristic, "":
		return NewHeuristicBackend(), nil
	case BackendTreeSitter:
		return NewTreeSitterBackend(cfg)
	case BackendHybrid:
		return NewHybridBackend(cfg)
	default:
		return nil, ErrBackendNotSupported{Backend: typ, Reason: "unknown type"}
	}
}

// -----------------------------------------------------------------------------
// HeuristicBackend
// -----------------------------------------------------------------------------

// HeuristicBackend lexes scripts directly. It needs no CGO and is safe for
// concurrent use.
type HeuristicBackend struct{}

// NewHeuristicBackend creates a new heuristic backend.
func NewHeuristicBackend() *HeuristicBackend {
	return &HeuristicBackend{}
}

type heuristicTokenizer struct{}

func (heuristicTokenizer) tokenize(_ context.Context, content string, dialect Dialect, path string) ([]token, error) {
	return lex(content, dialect, path)
}

func (b *HeuristicBackend) Name() string { return string(BackendHeuristic) }

func (b *HeuristicBackend) ParseContent(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*BuildScript, error) {
	return parseScriptWith(ctx, heuristicTokenizer{}, content, dialect, opts)
}

func (b *HeuristicBackend) ParseSettings(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*Settings, error) {
	return parseSettingsWith(ctx, heuristicTokenizer{}, content, dialect, opts)
}

func (b *HeuristicBackend) ParseFile(ctx context.Context, path string, opts ...ParseOption) (*BuildScript, error) {
	return parseFileWith(ctx, b, path, opts)
}

func (b *HeuristicBackend) Close() error { return nil }

// -----------------------------------------------------------------------------
// TreeSitterBackend
// -----------------------------------------------------------------------------

// TreeSitterBackend validates scripts against the tree-sitter grammars. A tree
// with ERROR or MISSING nodes is reported as a *ParseError at the first such
// node. Clean trees are reduced to their leaf tokens and interpreted like the
// heuristic backend's tokens.
//
// A parser is created per call, so the backend is safe for concurrent use.
type TreeSitterBackend struct {
	backend treesitter.Backend
}

// NewTreeSitterBackend creates a grammar-validating backend.
func NewTreeSitterBackend(cfg BackendConfig) (*TreeSitterBackend, error) {
	backend, err := treesitter.NewBackend(cfg.TreeSitterBackend)
	if err != nil {
		return nil, ErrBackendNotSupported{Backend: BackendTreeSitter, Reason: err.Error()}
	}
	for _, lang := range []treesitter.Language{treesitter.Groovy, treesitter.Kotlin} {
		if !backend.SupportsLanguage(lang) {
			_ = backend.Close()
			return nil, treesitter.ErrLanguageNotSupported{Language: lang, Backend: backend.Name()}
		}
	}
	return &TreeSitterBackend{backend: backend}, nil
}

func (b *TreeSitterBackend) Name() string { return string(BackendTreeSitter) }

func (b *TreeSitterBackend) ParseContent(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*BuildScript, error) {
	if b == nil {
		return nil, fmt.Errorf("TreeSitterBackend is nil")
	}
	return parseScriptWith(ctx, b, content, dialect, opts)
}

func (b *TreeSitterBackend) ParseSettings(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*Settings, error) {
	if b == nil {
		return nil, fmt.Errorf("TreeSitterBackend is nil")
	}
	return parseSettingsWith(ctx, b, content, dialect, opts)
}

func (b *TreeSitterBackend) ParseFile(ctx context.Context, path string, opts ...ParseOption) (*BuildScript, error) {
	return parseFileWith(ctx, b, path, opts)
}

func (b *TreeSitterBackend) Close() error {
	if b.backend != nil {
		return b.backend.Close()
	}
	return nil
}

func grammarFor(d Dialect) treesitter.Language {
	if d == Kotlin {
		return treesitter.Kotlin
	}
	return treesitter.Groovy
}

func (b *TreeSitterBackend) tokenize(ctx context.Context, content string, dialect Dialect, path string) (_ []token, retErr error) {
	parser, err := b.backend.NewParser(grammarFor(dialect))
	if err != nil {
		return nil, fmt.Errorf("create %s parser: %w", dialect, err)
	}
	defer func() {
		if closeErr := parser.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close parser: %w", closeErr)
		}
	}()

	source := []byte(content)
	tree, err := parser.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s script: %w", dialect, err)
	}
	defer func() {
		if closeErr := tree.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close tree: %w", closeErr)
		}
	}()

	root := tree.RootNode()
	if tree.HasError() {
		perr := &ParseError{Path: path, Dialect: dialect, Msg: "syntax error"}
		if n := treesitter.FirstError(root); n != nil {
			p := n.StartPoint()
			perr.Line, perr.Column = int(p.Row)+1, int(p.Column)+1
			if n.IsMissing() {
				perr.Msg = "missing " + n.Type()
			}
		}
		return nil, perr
	}
	return cstTokens(root, source, dialect, path)
}

func isStringNode(typ string) bool {
	return strings.Contains(typ, "string") || typ == "character_literal"
}

func isCommentNode(typ string) bool {
	return strings.Contains(typ, "comment")
}

// cstTokens re-lexes each syntax-tree leaf, keeping string literals whole and
// dropping comments. A row change between leaves becomes a newline token.
func cstTokens(root treesitter.Node, source []byte, dialect Dialect, path string) ([]token, error) {
	var (
		toks    []token
		lastRow uint32
		started bool
		lexErr  error
	)
	descend := func(n treesitter.Node) bool {
		return !isStringNode(n.Type()) && !isCommentNode(n.Type())
	}
	treesitter.Leaves(root, descend, func(n treesitter.Node) {
		if lexErr != nil || isCommentNode(n.Type()) {
			return
		}
		text := n.Content(source)
		if text == "" {
			return
		}
		start := n.StartPoint()
		if started && start.Row > lastRow && (len(toks) == 0 || toks[len(toks)-1].kind != tokNewline) {
			toks = append(toks, token{kind: tokNewline, text: "\n", line: int(lastRow) + 1, endLine: int(lastRow) + 1})
		}
		// Earlier tokens give the lexer context to tell '/' from a slashy string.
		l := &lexer{src: text, dialect: dialect, path: path, line: int(start.Row) + 1, col: int(start.Column) + 1, toks: toks}
		all, err := l.run()
		if err != nil {
			lexErr = err
			return
		}
		toks = all
		lastRow = n.EndPoint().Row
		started = true
	})
	return toks, lexErr
}

// -----------------------------------------------------------------------------
// HybridBackend - Validation and Comparison Mode
// -----------------------------------------------------------------------------

// HybridBackend runs both heuristic and tree-sitter backends, comparing results.
//
// When parsing, HybridBackend:
//  1. Runs both backends on the same input
//  2. Compares declared dependencies and plugins
//  3. Logs differences if HybridLogDiffs is enabled
//  4. Returns the primary backend's result
//  5. Falls back to the other backend on errors
type HybridBackend struct {
	heuristic  *HeuristicBackend
	treesitter *TreeSitterBackend
	primary    ParserBackendType
	logDiffs   bool
}

// NewHybridBackend creates a validation backend that runs both parsing strategies.
//
// Requires tree-sitter support; returns an error if tree-sitter is unavailable.
func NewHybridBackend(cfg BackendConfig) (*HybridBackend, error) {
	ts, err := NewTreeSitterBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("create tree-sitter for hybrid: %w", err)
	}
	return &HybridBackend{
		heuristic:  NewHeuristicBackend(),
		treesitter: ts,
		primary:    cfg.HybridPrimary,
		logDiffs:   cfg.HybridLogDiffs,
	}, nil
}

func (b *HybridBackend) Name() string { return string(BackendHybrid) }

func (b *HybridBackend) ParseContent(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*BuildScript, error) {
	if b == nil {
		return nil, fmt.Errorf("HybridBackend is nil")
	}
	hResult, hErr := b.heuristic.ParseContent(ctx, content, dialect, opts...)
	tsResult, tsErr := b.treesitter.ParseContent(ctx, content, dialect, opts...)
	path := newParseConfig(opts).path

	if b.logDiffs && hErr == nil && tsErr == nil {
		if diff := CompareResults(hResult, tsResult); diff.HasDifferences() {
			log.V(log.VerbosityDebug).Debug("hybrid parser diff", "path", path, "diff", diff.String())
		}
	}

	if b.primary == BackendTreeSitter {
		if tsErr != nil {
			log.V(log.VerbosityDebug).Debug("hybrid tree-sitter failed, using heuristic", "path", path, "error", tsErr)
			return hResult, hErr
		}
		return tsResult, nil
	}

	if hErr != nil {
		log.V(log.VerbosityDebug).Debug("hybrid heuristic failed, using tree-sitter", "path", path, "error", hErr)
		return tsResult, tsErr
	}
	return hResult, nil
}

func (b *HybridBackend) ParseSettings(ctx context.Context, content string, dialect Dialect, opts ...ParseOption) (*Settings, error) {
	primary, secondary := ParserBackend(b.heuristic), ParserBackend(b.treesitter)
	if b.primary == BackendTreeSitter {
		primary, secondary = secondary, primary
	}
	s, err := primary.ParseSettings(ctx, content, dialect, opts...)
	if err != nil {
		return secondary.ParseSettings(ctx, content, dialect, opts...)
	}
	return s, nil
}

func (b *HybridBackend) ParseFile(ctx context.Context, path string, opts ...ParseOption) (*BuildScript, error) {
	return parseFileWith(ctx, b, path, opts)
}

func (b *HybridBackend) Close() error {
	return errors.Join(b.heuristic.Close(), b.treesitter.Close())
}

// -----------------------------------------------------------------------------
// Comparison Utilities
// -----------------------------------------------------------------------------

// ResultDiff captures differences between heuristic and tree-sitter results.
// Entries are "configuration group:artifact:version" for dependencies and
// "id version" for plugins.
type ResultDiff struct {
	OnlyInHeuristic         []string
	OnlyInTreeSitter        []string
	PluginsOnlyInHeuristic  []string
	PluginsOnlyInTreeSitter []string
}

// HasDifferences returns true if any differences were found.
func (d ResultDiff) HasDifferences() bool {
	return len(d.OnlyInHeuristic) > 0 ||
		len(d.OnlyInTreeSitter) > 0 ||
		len(d.PluginsOnlyInHeuristic) > 0 ||
		len(d.PluginsOnlyInTreeSitter) > 0
}

// String formats the diff for logging.
func (d ResultDiff) String() string {
	var parts []string
	if len(d.OnlyInHeuristic) > 0 {
		parts = append(parts, fmt.Sprintf("dependencies only in heuristic: %v", d.OnlyInHeuristic))
	}
	if len(d.OnlyInTreeSitter) > 0 {
		parts = append(parts, fmt.Sprintf("dependencies only in treesitter: %v", d.OnlyInTreeSitter))
	}
	if len(d.PluginsOnlyInHeuristic) > 0 {
		parts = append(parts, fmt.Sprintf("plugins only in heuristic: %v", d.PluginsOnlyInHeuristic))
	}
	if len(d.PluginsOnlyInTreeSitter) > 0 {
		parts = append(parts, fmt.Sprintf("plugins only in treesitter: %v", d.PluginsOnlyInTreeSitter))
	}
	return strings.Join(parts, "; ")
}

// CompareResults computes differences between two parse results.
func CompareResults(h, ts *BuildScript) ResultDiff {
	var diff ResultDiff

	hDeps, tsDeps := dependencySet(h), dependencySet(ts)
	diff.OnlyInHeuristic = sortedDifference(hDeps, tsDeps)
	diff.OnlyInTreeSitter = sortedDifference(tsDeps, hDeps)

	hPlugins, tsPlugins := pluginSet(h), pluginSet(ts)
	diff.PluginsOnlyInHeuristic = sortedDifference(hPlugins, tsPlugins)
	diff.PluginsOnlyInTreeSitter = sortedDifference(tsPlugins, hPlugins)

	return diff
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func dependencySet(s *BuildScript) map[string]struct{} {
	set := make(map[string]struct{}, len(s.Dependencies))
	for _, d := range s.Dependencies {
		key := d.Configuration + " " + d.Coordinate.String()
		if d.Project != "" {
			key = d.Configuration + " project(" + d.Project + ")"
		}
		set[key] = struct{}{}
	}
	return set
}

func pluginSet(s *BuildScript) map[string]struct{} {
	set := make(map[string]struct{}, len(s.Plugins))
	for _, p := range s.Plugins {
		set[strings.TrimSpace(p.ID+" "+p.Version)] = struct{}{}
	}
	return set
}

// sortedDifference returns elements in a but not in b, sorted.
func sortedDifference(a, b map[string]struct{}) []string {
	var diff []string
	for k := range a {
		if _, ok := b[k]; !ok {
			diff = append(diff, k)
		}
	}
	slices.Sort(diff)
	return diff
}

// readFileContent reads a file as string.
func readFileContent(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return string(content), nil
}
