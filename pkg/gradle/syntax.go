package gradle

import (
	"fmt"
	"strings"
)

type position struct {
	line int
	col  int
}

func (p position) location() Location { return Location{Line: p.line, Column: p.col} }

type nodeKind int

const (
	nodeLeaf nodeKind = iota
	nodeBlock
	nodeParen
	nodeBracket
)

// node is a token or a bracketed group of nodes. Newlines are kept inside
// blocks, where they separate statements, and dropped inside () and [].
type node struct {
	kind     nodeKind
	tok      token // the leaf, or the opening bracket of a group
	end      token // closing bracket of a group
	children []*node
}

func (n *node) pos() position { return n.tok.pos() }

func (n *node) isLeaf(kind tokenKind) bool { return n.kind == nodeLeaf && n.tok.kind == kind }

func (n *node) isOp(ops ...string) bool {
	if !n.isLeaf(tokOp) {
		return false
	}
	for _, op := range ops {
		if n.tok.text == op {
			return true
		}
	}
	return false
}

func (n *node) isIdent(names ...string) bool {
	if !n.isLeaf(tokIdent) {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if n.tok.text == name {
			return true
		}
	}
	return false
}

// endPos is the position just past the node.
func (n *node) endPos() position {
	if n.kind == nodeLeaf {
		return position{line: n.tok.endLine, col: n.tok.endCol}
	}
	return position{line: n.end.endLine, col: n.end.endCol}
}

var closers = map[tokenKind]tokenKind{
	tokLBrace: tokRBrace,
	tokLParen: tokRParen,
	tokLBrack: tokRBrack,
}

var groupKinds = map[tokenKind]nodeKind{
	tokLBrace: nodeBlock,
	tokLParen: nodeParen,
	tokLBrack: nodeBracket,
}

// group nests tokens by bracket. Unbalanced brackets are a ParseError.
func group(toks []token, dialect Dialect, path string) (*node, error) {
	root := &node{kind: nodeBlock}
	stack := []*node{root}

	for _, t := range toks {
		top := stack[len(stack)-1]
		switch t.kind {
		case tokLBrace, tokLParen, tokLBrack:
			n := &node{kind: groupKinds[t.kind], tok: t}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case tokRBrace, tokRParen, tokRBrack:
			if len(stack) == 1 {
				return nil, &ParseError{Path: path, Dialect: dialect, Line: t.line, Column: t.col,
					Msg: fmt.Sprintf("unexpected %s", t.kind)}
			}
			if want := closers[top.tok.kind]; want != t.kind {
				return nil, &ParseError{Path: path, Dialect: dialect, Line: t.line, Column: t.col,
					Msg: fmt.Sprintf("unexpected %s, %s opened at %d:%d is not closed", t.kind, top.tok.kind, top.tok.line, top.tok.col)}
			}
			top.end = t
			stack = stack[:len(stack)-1]
		case tokNewline:
			if top.kind == nodeBlock {
				top.children = append(top.children, &node{kind: nodeLeaf, tok: t})
			}
		default:
			top.children = append(top.children, &node{kind: nodeLeaf, tok: t})
		}
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].tok
		return nil, &ParseError{Path: path, Dialect: dialect, Line: open.line, Column: open.col,
			Msg: fmt.Sprintf("%s is never closed", open.kind)}
	}
	return root, nil
}

// Operators that continue a statement onto the next line when they end it.
func continuesAfter(n *node) bool {
	return n.isLeaf(tokOp) && !n.isOp("++", "--", "!!", ">", "*")
}

// Operators that continue the previous line when they start one.
func continuesBefore(n *node) bool {
	return n.isOp(".", "?.", "?:", "&&", "||", "*.")
}

// statements splits the children of a block into statements.
func statements(items []*node) [][]*node {
	var out [][]*node
	var cur []*node
	for i := 0; i < len(items); i++ {
		n := items[i]
		if !n.isLeaf(tokNewline) {
			cur = append(cur, n)
			continue
		}
		if len(cur) == 0 {
			continue
		}
		if continuesAfter(cur[len(cur)-1]) {
			continue
		}
		if i+1 < len(items) && continuesBefore(items[i+1]) {
			continue
		}
		out = append(out, cur)
		cur = nil
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// splitArgs splits the contents of a () or [] group on top-level commas.
func splitArgs(items []*node) [][]*node {
	var out [][]*node
	var cur []*node
	for _, n := range items {
		if n.isOp(",") {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

type expr interface {
	pos() position
}

type identExpr struct {
	at   position
	name string
}

type selectorExpr struct {
	at     position
	target expr
	name   string
}

type stringExpr struct {
	at    position
	parts []strPart
	raw   string
}

type literalExpr struct {
	at   position
	text string
}

type argument struct {
	name  string // empty for positional arguments
	value expr
}

type callExpr struct {
	at      position
	callee  expr
	args    []argument
	closure *node
}

type indexExpr struct {
	at     position
	target expr
	index  expr
}

type binaryExpr struct {
	at          position
	op          string
	left, right expr
}

type infixExpr struct {
	at    position
	left  expr
	name  string
	right expr
}

type listExpr struct {
	at    position
	items []argument
}

type closureExpr struct {
	at    position
	block *node
}

func (e *identExpr) pos() position    { return e.at }
func (e *selectorExpr) pos() position { return e.at }
func (e *stringExpr) pos() position   { return e.at }
func (e *literalExpr) pos() position  { return e.at }
func (e *callExpr) pos() position     { return e.at }
func (e *indexExpr) pos() position    { return e.at }
func (e *binaryExpr) pos() position   { return e.at }
func (e *infixExpr) pos() position    { return e.at }
func (e *listExpr) pos() position     { return e.at }
func (e *closureExpr) pos() position  { return e.at }

// dotted returns "a.b.c" for identifier chains.
func dotted(e expr) (string, bool) {
	switch e := e.(type) {
	case *identExpr:
		return e.name, true
	case *selectorExpr:
		prefix, ok := dotted(e.target)
		if !ok {
			return "", false
		}
		return prefix + "." + e.name, true
	default:
		return "", false
	}
}

// calleeName is the dotted name of a call target, or the text of a quoted
// Kotlin configuration call such as "kapt"("g:a:v").
func calleeName(c *callExpr) string {
	if name, ok := dotted(c.callee); ok {
		return name
	}
	if s, ok := c.callee.(*stringExpr); ok && !hasTemplate(s) {
		return literalValue(s)
	}
	return ""
}

func hasTemplate(s *stringExpr) bool {
	for _, p := range s.parts {
		if p.isExpr {
			return true
		}
	}
	return false
}

func literalValue(s *stringExpr) string {
	var b strings.Builder
	for _, p := range s.parts {
		b.WriteString(p.lit)
	}
	return b.String()
}

// positional returns the positional arguments of a call.
func (c *callExpr) positional() []expr {
	var out []expr
	for _, a := range c.args {
		if a.name == "" {
			out = append(out, a.value)
		}
	}
	return out
}

// named returns the value of the named argument, or nil.
func (c *callExpr) named(name string) expr {
	return namedArg(c.args, name)
}

func namedArg(args []argument, name string) expr {
	for _, a := range args {
		if a.name == name {
			return a.value
		}
	}
	return nil
}

func hasNamed(args []argument) bool {
	for _, a := range args {
		if a.name != "" {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

type stmtKind int

const (
	stmtExpr stmtKind = iota
	stmtAssign
	stmtDecl
)

type statement struct {
	kind      stmtKind
	at        position
	expr      expr   // stmtExpr, or the assignment target
	name      string // stmtDecl
	value     expr   // stmtAssign and stmtDecl
	delegated bool   // Kotlin "val x by extra(...)"
}

type parseFlags struct {
	command bool // Groovy juxtaposed calls: implementation 'g:a:v'
	infix   bool // infix chains: id("x") version "1"
	closure bool // trailing closures
}

type exprParser struct {
	nodes   []*node
	i       int
	dialect Dialect
}

func newExprParser(nodes []*node, dialect Dialect) *exprParser {
	return &exprParser{nodes: nodes, dialect: dialect}
}

func (p *exprParser) peek() *node {
	if p.i < len(p.nodes) {
		return p.nodes[p.i]
	}
	return nil
}

func (p *exprParser) peekAt(off int) *node {
	if p.i+off < len(p.nodes) {
		return p.nodes[p.i+off]
	}
	return nil
}

func (p *exprParser) next() *node {
	n := p.peek()
	if n != nil {
		p.i++
	}
	return n
}

func (p *exprParser) done() bool { return p.i >= len(p.nodes) }

var declKeywords = map[string]bool{"def": true, "val": true, "var": true}

// parseStatement interprets one statement's nodes.
func parseStatement(nodes []*node, dialect Dialect) statement {
	p := newExprParser(nodes, dialect)
	first := p.peek()
	st := statement{at: first.pos()}

	for p.peek() != nil && p.peek().isIdent("final", "private", "static", "internal", "public") {
		p.next()
	}

	if n := p.peek(); n != nil && n.isIdent() && (declKeywords[n.tok.text] || p.isTypedDecl()) {
		p.next()
		if name := p.peek(); name != nil && name.isIdent() && p.peekAt(1) != nil && p.peekAt(1).isIdent() && dialect == Groovy {
			// def String x = ...
			if !p.peekAt(1).isIdent("by") {
				p.next()
			}
		}
		if name := p.next(); name != nil && name.isIdent() {
			st.kind = stmtDecl
			st.name = name.tok.text
			for n := p.peek(); n != nil && !n.isOp("=") && !n.isIdent("by"); n = p.peek() {
				p.next() // type annotation
			}
			if n := p.next(); n != nil {
				st.delegated = n.isIdent("by")
				st.value = p.parseExpr(parseFlags{closure: true, infix: true})
			}
			return st
		}
		return statement{kind: stmtExpr, at: st.at, expr: &literalExpr{at: st.at, text: first.tok.text}}
	}

	lhs := p.parseExpr(parseFlags{command: dialect == Groovy, infix: true, closure: true})
	if n := p.peek(); n != nil && n.isOp("=", "+=") {
		p.next()
		st.kind = stmtAssign
		st.expr = lhs
		st.value = p.parseExpr(parseFlags{closure: true, infix: true})
		return st
	}
	st.kind = stmtExpr
	st.expr = lhs
	return st
}

// isTypedDecl reports a Groovy typed local: String x = '1'.
func (p *exprParser) isTypedDecl() bool {
	if p.dialect != Groovy {
		return false
	}
	a, b, c := p.peek(), p.peekAt(1), p.peekAt(2)
	if a == nil || b == nil || c == nil || !a.isIdent() || !b.isIdent() || !c.isOp("=") {
		return false
	}
	t := a.tok.text
	return t != "" && t[0] >= 'A' && t[0] <= 'Z'
}

func (p *exprParser) parseExpr(f parseFlags) expr {
	e := p.parseBinary(f)
	if !f.infix {
		return e
	}
	for {
		n := p.peek()
		if n == nil || !n.isIdent() || declKeywords[n.tok.text] {
			return e
		}
		p.next()
		inf := &infixExpr{at: e.pos(), left: e, name: n.tok.text}
		if p.startsOperand() {
			inf.right = p.parsePostfix(parseFlags{closure: f.closure})
		}
		e = inf
	}
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "===": true, "!==": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "?:": true, "..": true, "..<": true, "=~": true, "<<": true, ">>": true,
}

func (p *exprParser) parseBinary(f parseFlags) expr {
	left := p.parseUnary(f)
	for {
		n := p.peek()
		if n == nil || !n.isLeaf(tokOp) || !binaryOps[n.tok.text] {
			return left
		}
		p.next()
		if p.done() {
			return left
		}
		right := p.parseUnary(parseFlags{closure: f.closure})
		left = &binaryExpr{at: left.pos(), op: n.tok.text, left: left, right: right}
	}
}

func (p *exprParser) parseUnary(f parseFlags) expr {
	if n := p.peek(); n != nil && n.isOp("!", "-", "+", "~") {
		p.next()
		if p.done() {
			return &literalExpr{at: n.pos(), text: n.tok.text}
		}
		operand := p.parseUnary(parseFlags{closure: f.closure})
		return &binaryExpr{at: n.pos(), op: n.tok.text, right: operand}
	}
	return p.parsePostfix(f)
}

func (p *exprParser) parsePrimary() expr {
	n := p.next()
	if n == nil {
		return &literalExpr{}
	}
	switch n.kind {
	case nodeBlock:
		return &closureExpr{at: n.pos(), block: n}
	case nodeParen:
		inner := newExprParser(n.children, p.dialect)
		if inner.done() {
			return &literalExpr{at: n.pos(), text: "()"}
		}
		return inner.parseExpr(parseFlags{closure: true, infix: true})
	case nodeBracket:
		return &listExpr{at: n.pos(), items: p.parseArgs(n.children)}
	}
	switch n.tok.kind {
	case tokIdent:
		return &identExpr{at: n.pos(), name: n.tok.text}
	case tokString:
		return &stringExpr{at: n.pos(), parts: n.tok.parts, raw: n.tok.text}
	default:
		return &literalExpr{at: n.pos(), text: n.tok.text}
	}
}

func (p *exprParser) parsePostfix(f parseFlags) expr {
	e := p.parsePrimary()
	if p.i == 0 {
		return e
	}
	prev := p.nodes[p.i-1]

	for {
		n := p.peek()
		if n == nil {
			break
		}
		switch {
		case n.isOp(".", "?.", "*.") && p.peekAt(1) != nil && (p.peekAt(1).isIdent() || p.peekAt(1).isLeaf(tokString)):
			p.next()
			name := p.next()
			sel := name.tok.text
			if name.isLeaf(tokString) {
				sel = literalValue(&stringExpr{parts: name.tok.parts})
			}
			e = &selectorExpr{at: e.pos(), target: e, name: sel}
			prev = name
			continue
		case n.isOp("<") && p.skipTypeArgs():
			prev = p.nodes[p.i-1]
			continue
		case n.kind == nodeParen:
			p.next()
			e = &callExpr{at: e.pos(), callee: e, args: p.parseArgs(n.children)}
			prev = n
			continue
		case n.kind == nodeBracket && adjacent(prev, n):
			p.next()
			inner := newExprParser(n.children, p.dialect)
			e = &indexExpr{at: e.pos(), target: e, index: inner.parseExpr(parseFlags{})}
			prev = n
			continue
		case n.kind == nodeBlock && f.closure:
			p.next()
			if c, ok := e.(*callExpr); ok && c.closure == nil {
				c.closure = n
			} else {
				e = &callExpr{at: e.pos(), callee: e, closure: n}
			}
			prev = n
			continue
		}
		break
	}

	if f.command && p.startsCommandArg() {
		if _, ok := dotted(e); ok {
			call := &callExpr{at: e.pos(), callee: e, args: p.parseCommandArgs()}
			if n := p.peek(); n != nil && n.kind == nodeBlock {
				p.next()
				call.closure = n
			}
			return call
		}
	}
	return e
}

func adjacent(a, b *node) bool {
	end := a.endPos()
	return end.line == b.tok.line && end.col == b.tok.col
}

// skipTypeArgs skips Kotlin type arguments such as withType<Test>. It only
// consumes when the angle brackets hold type names and are followed by a
// call, closure or member access.
func (p *exprParser) skipTypeArgs() bool {
	depth := 0
	for j := p.i; j < len(p.nodes); j++ {
		n := p.nodes[j]
		switch {
		case n.isOp("<"):
			depth++
		case n.isOp(">"):
			depth--
			if depth == 0 {
				after := p.peekAtAbs(j + 1)
				if after == nil || after.kind == nodeParen || after.kind == nodeBlock || after.isOp(".", "?.") {
					p.i = j + 1
					return true
				}
				return false
			}
		case n.isOp(">>"):
			depth -= 2
			if depth == 0 {
				p.i = j + 1
				return true
			}
			if depth < 0 {
				return false
			}
		case n.isIdent() || n.isOp(".", ",", "?", "*"):
		default:
			return false
		}
	}
	return false
}

func (p *exprParser) peekAtAbs(j int) *node {
	if j < len(p.nodes) {
		return p.nodes[j]
	}
	return nil
}

// startsOperand reports whether the next node can begin an expression.
func (p *exprParser) startsOperand() bool {
	n := p.peek()
	if n == nil {
		return false
	}
	switch n.kind {
	case nodeParen, nodeBracket:
		return true
	case nodeBlock:
		return false
	}
	switch n.tok.kind {
	case tokIdent, tokString, tokNumber:
		return true
	}
	return false
}

// startsCommandArg reports whether a Groovy command call follows, as in
// "implementation 'g:a:v'" or "apply plugin: 'java'".
func (p *exprParser) startsCommandArg() bool {
	n := p.peek()
	if n == nil {
		return false
	}
	if n.kind == nodeBracket {
		return true
	}
	if n.kind != nodeLeaf {
		return false
	}
	switch n.tok.kind {
	case tokString, tokNumber:
		return true
	case tokIdent:
		return !n.isIdent("in", "as", "instanceof")
	}
	return false
}

func (p *exprParser) parseCommandArgs() []argument {
	var args []argument
	for !p.done() {
		args = append(args, p.parseArg())
		if n := p.peek(); n != nil && n.isOp(",") {
			p.next()
			continue
		}
		break
	}
	return args
}

// parseArg parses "name: value" (Groovy), "name = value" (Kotlin) or a
// positional value.
func (p *exprParser) parseArg() argument {
	a, b := p.peek(), p.peekAt(1)
	if a != nil && b != nil && (a.isIdent() || a.isLeaf(tokString)) {
		if b.isOp(":") || (p.dialect == Kotlin && b.isOp("=")) {
			p.next()
			p.next()
			name := a.tok.text
			if a.isLeaf(tokString) {
				name = literalValue(&stringExpr{parts: a.tok.parts})
			}
			return argument{name: name, value: p.parseExpr(parseFlags{closure: true})}
		}
	}
	return argument{value: p.parseExpr(parseFlags{closure: true, infix: p.dialect == Kotlin})}
}

func (p *exprParser) parseArgs(items []*node) []argument {
	var args []argument
	for _, seg := range splitArgs(items) {
		if len(seg) == 0 {
			continue
		}
		sub := newExprParser(seg, p.dialect)
		args = append(args, sub.parseArg())
	}
	return args
}
