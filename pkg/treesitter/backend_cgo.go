//go:build cgo

package treesitter

import (
	"context"
	"fmt"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/groovy"
	"github.com/smacker/go-tree-sitter/kotlin"
)

var grammars = map[Language]func() *sitter.Language{
	Groovy: groovy.GetLanguage,
	Kotlin: kotlin.GetLanguage,
}

type cgoBackend struct {
	closed atomic.Bool
}

// NewCGOBackend creates a backend on top of smacker/go-tree-sitter.
func NewCGOBackend() (Backend, error) {
	return &cgoBackend{}, nil
}

func (b *cgoBackend) Name() string { return string(BackendCGO) }

func (b *cgoBackend) SupportsLanguage(lang Language) bool {
	_, ok := grammars[lang]
	return ok
}

func (b *cgoBackend) NewParser(lang Language) (Parser, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed{Backend: b.Name()}
	}
	grammar, ok := grammars[lang]
	if !ok {
		return nil, ErrLanguageNotSupported{Language: lang, Backend: b.Name()}
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar())
	return &cgoParser{parser: p, lang: lang}, nil
}

func (b *cgoBackend) Close() error {
	b.closed.Store(true)
	return nil
}

type cgoParser struct {
	parser *sitter.Parser
	lang   Language
	closed bool
}

func (p *cgoParser) Parse(ctx context.Context, source []byte) (Tree, error) {
	if p.closed {
		return nil, ErrParserClosed{}
	}
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter %s parse: %w", p.lang, err)
	}
	return &cgoTree{tree: tree}, nil
}

func (p *cgoParser) Close() error {
	if !p.closed {
		p.closed = true
		p.parser.Close()
	}
	return nil
}

type cgoTree struct {
	tree *sitter.Tree
}

func (t *cgoTree) RootNode() Node { return wrap(t.tree.RootNode()) }

func (t *cgoTree) HasError() bool {
	root := t.tree.RootNode()
	return root != nil && root.HasError()
}

func (t *cgoTree) Close() error {
	t.tree.Close()
	return nil
}

// cgoNode is never built around a nil *sitter.Node; wrap returns a nil Node
// instead.
type cgoNode struct {
	node *sitter.Node
}

func wrap(n *sitter.Node) Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return cgoNode{node: n}
}

func (n cgoNode) Type() string                 { return n.node.Type() }
func (n cgoNode) Content(source []byte) string { return n.node.Content(source) }
func (n cgoNode) ChildCount() uint32           { return n.node.ChildCount() }
func (n cgoNode) Child(index uint32) Node      { return wrap(n.node.Child(int(index))) }
func (n cgoNode) IsError() bool                { return n.node.IsError() }
func (n cgoNode) IsMissing() bool              { return n.node.IsMissing() }

func (n cgoNode) StartPoint() Point {
	p := n.node.StartPoint()
	return Point{Row: p.Row, Column: p.Column}
}

func (n cgoNode) EndPoint() Point {
	p := n.node.EndPoint()
	return Point{Row: p.Row, Column: p.Column}
}
