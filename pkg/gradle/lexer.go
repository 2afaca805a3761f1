package gradle

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokNewline
)

var tokenKindNames = [...]string{
	tokIdent:   "identifier",
	tokNumber:  "number",
	tokString:  "string",
	tokOp:      "operator",
	tokLBrace:  "'{'",
	tokRBrace:  "'}'",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokLBrack:  "'['",
	tokRBrack:  "']'",
	tokNewline: "newline",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// strPart is a literal run or a template expression inside a string.
type strPart struct {
	lit    string
	expr   string
	isExpr bool
	braced bool
}

// token is a lexical unit. For strings, text is the raw source including
// quotes and parts holds the decoded content. Backtick identifiers carry
// their name without the backticks.
type token struct {
	kind    tokenKind
	text    string
	line    int
	col     int
	endLine int
	endCol  int
	parts   []strPart
}

func (t token) pos() position { return position{line: t.line, col: t.col} }

// Multi-character operators, longest first.
var operators = []string{
	"===", "!==", "==~", "..<", "<=>", "?.@",
	"->", "==", "!=", "<=", ">=", "&&", "||", "?.", "?:", "..", "::",
	"+=", "-=", "*=", "/=", "%=", "=~", "<<", ">>", "*.", "++", "--", "!!", ".&", ".@",
}

type lexer struct {
	src     string
	dialect Dialect
	path    string
	pos     int
	line    int
	col     int
	toks    []token
}

// lex splits a build script into tokens. Comments are dropped; newlines and
// semicolons become tokNewline so the parser can split statements.
func lex(src string, dialect Dialect, path string) ([]token, error) {
	l := &lexer{src: src, dialect: dialect, path: path, line: 1, col: 1}
	return l.run()
}

func (l *lexer) errorf(line, col int, msg string) error {
	return &ParseError{Path: l.path, Dialect: l.dialect, Line: line, Column: col, Msg: msg}
}

func (l *lexer) rest() string { return l.src[l.pos:] }

func (l *lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) emit(kind tokenKind, text string, line, col int) {
	l.toks = append(l.toks, token{kind: kind, text: text, line: line, col: col, endLine: l.line, endCol: l.col})
}

// newline collapses runs of newlines into one token.
func (l *lexer) newline(text string) {
	if n := len(l.toks); n == 0 || l.toks[n-1].kind == tokNewline {
		return
	}
	l.toks = append(l.toks, token{kind: tokNewline, text: text, line: l.line, col: l.col, endLine: l.line, endCol: l.col})
}

func (l *lexer) run() ([]token, error) {
	if strings.HasPrefix(l.src, "#!") {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance(1)
		}
	}

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		line, col := l.line, l.col

		switch {
		case c == '\n':
			l.newline("\n")
			l.advance(1)
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			l.advance(1)
		case c == '\\' && (l.peekAt(1) == '\n' || (l.peekAt(1) == '\r' && l.peekAt(2) == '\n')):
			// Line continuation.
			for l.src[l.pos] != '\n' {
				l.advance(1)
			}
			l.advance(1)
		case strings.HasPrefix(l.rest(), "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case strings.HasPrefix(l.rest(), "/*"):
			if err := l.blockComment(); err != nil {
				return nil, err
			}
		case l.dialect == Groovy && strings.HasPrefix(l.rest(), "$/"):
			if err := l.slashyLit(true); err != nil {
				return nil, err
			}
		case c == '/' && l.slashyAllowed():
			if err := l.slashyLit(false); err != nil {
				return nil, err
			}
		case c == '"' || c == '\'':
			if err := l.stringLit(); err != nil {
				return nil, err
			}
		case c == '`':
			end := strings.IndexAny(l.src[l.pos+1:], "`\n")
			if end < 0 || l.src[l.pos+1+end] != '`' {
				return nil, l.errorf(line, col, "unterminated backtick identifier")
			}
			name := l.src[l.pos+1 : l.pos+1+end]
			l.advance(end + 2)
			l.emit(tokIdent, name, line, col)
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.advance(1)
			}
			l.emit(tokIdent, l.src[start:l.pos], line, col)
		case isDigit(c):
			start := l.pos
			for l.pos < len(l.src) {
				ch := l.src[l.pos]
				if isIdentPart(ch) || (ch == '.' && isDigit(l.peekAt(1))) {
					l.advance(1)
					continue
				}
				break
			}
			l.emit(tokNumber, l.src[start:l.pos], line, col)
		case c == '{':
			l.advance(1)
			l.emit(tokLBrace, "{", line, col)
		case c == '}':
			l.advance(1)
			l.emit(tokRBrace, "}", line, col)
		case c == '(':
			l.advance(1)
			l.emit(tokLParen, "(", line, col)
		case c == ')':
			l.advance(1)
			l.emit(tokRParen, ")", line, col)
		case c == '[':
			l.advance(1)
			l.emit(tokLBrack, "[", line, col)
		case c == ']':
			l.advance(1)
			l.emit(tokRBrack, "]", line, col)
		case c == ';':
			l.newline(";")
			l.advance(1)
		default:
			op := string(c)
			for _, candidate := range operators {
				if strings.HasPrefix(l.rest(), candidate) {
					op = candidate
					break
				}
			}
			l.advance(len(op))
			l.emit(tokOp, op, line, col)
		}
	}
	return l.toks, nil
}

// blockComment skips /* ... */. Kotlin block comments nest, Groovy ones do not.
func (l *lexer) blockComment() error {
	line, col := l.line, l.col
	l.advance(2)
	depth := 1
	sawNewline := false
	for l.pos < len(l.src) {
		switch {
		case strings.HasPrefix(l.rest(), "*/"):
			l.advance(2)
			depth--
			if depth == 0 {
				if sawNewline {
					l.newline("\n")
				}
				return nil
			}
		case l.dialect == Kotlin && strings.HasPrefix(l.rest(), "/*"):
			l.advance(2)
			depth++
		default:
			if l.src[l.pos] == '\n' {
				sawNewline = true
			}
			l.advance(1)
		}
	}
	return l.errorf(line, col, "unterminated block comment")
}

// stringLit lexes single, double and triple-quoted strings. Double-quoted
// strings support $name and ${expr} templates in both dialects.
func (l *lexer) stringLit() error {
	line, col := l.line, l.col
	start := l.pos
	q := l.src[l.pos]
	triple := strings.HasPrefix(l.rest(), strings.Repeat(string(q), 3))
	delim := string(q)
	if triple {
		delim = strings.Repeat(delim, 3)
	}
	l.advance(len(delim))

	template := q == '"'
	escapes := !(triple && l.dialect == Kotlin)

	var parts []strPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, strPart{lit: lit.String()})
			lit.Reset()
		}
	}

	for {
		if l.pos >= len(l.src) {
			return l.errorf(line, col, "unterminated string literal")
		}
		c := l.src[l.pos]
		switch {
		case strings.HasPrefix(l.rest(), delim):
			// Kotlin raw strings may end with extra quotes: """a"""" is `a"`.
			for triple && strings.HasPrefix(l.src[l.pos+1:], delim) {
				lit.WriteByte(q)
				l.advance(1)
			}
			l.advance(len(delim))
			flush()
			l.toks = append(l.toks, token{
				kind: tokString, text: l.src[start:l.pos], line: line, col: col,
				endLine: l.line, endCol: l.col, parts: parts,
			})
			return nil
		case c == '\n' && !triple:
			return l.errorf(line, col, "unterminated string literal")
		case c == '\\' && escapes && l.pos+1 < len(l.src):
			l.advance(1)
			lit.WriteString(l.escape())
		case c == '$' && template && (l.peekAt(1) == '{' || isTemplateStart(l.peekAt(1))):
			part, err := l.templatePart()
			if err != nil {
				return err
			}
			flush()
			parts = append(parts, part)
		default:
			_, size := utf8.DecodeRuneInString(l.rest())
			lit.WriteString(l.src[l.pos : l.pos+size])
			l.advance(size)
		}
	}
}

// templatePart reads $name or ${expr} at the current '$'.
func (l *lexer) templatePart() (strPart, error) {
	if l.peekAt(1) == '{' {
		exprLine, exprCol := l.line, l.col
		l.advance(2)
		exprStart := l.pos
		depth := 1
		for l.pos < len(l.src) && depth > 0 {
			switch l.src[l.pos] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				l.advance(1)
			}
		}
		if depth > 0 {
			return strPart{}, l.errorf(exprLine, exprCol, "unterminated ${ expression in string")
		}
		part := strPart{expr: strings.TrimSpace(l.src[exprStart:l.pos]), isExpr: true, braced: true}
		l.advance(1)
		return part, nil
	}

	l.advance(1)
	exprStart := l.pos
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if isIdentPart(ch) && ch != '$' {
			l.advance(1)
			continue
		}
		// Groovy templates take dotted property paths: $project.version.
		if ch == '.' && l.dialect == Groovy && isTemplateStart(l.peekAt(1)) {
			l.advance(1)
			continue
		}
		break
	}
	return strPart{expr: l.src[exprStart:l.pos], isExpr: true}, nil
}

// slashyAllowed reports whether a '/' starts a Groovy slashy string rather
// than a division: at the start of an expression, after an operator or an
// opening bracket, or as the argument of a command call (println /x/) when it
// closes on the same line.
func (l *lexer) slashyAllowed() bool {
	if l.dialect != Groovy {
		return false
	}
	n := len(l.toks)
	if n == 0 {
		return true
	}
	prev := l.toks[n-1]
	switch prev.kind {
	case tokNewline, tokLParen, tokLBrack, tokLBrace:
		return true
	case tokOp:
		return prev.text != "++" && prev.text != "--"
	case tokIdent:
		next := l.peekAt(1)
		return l.spacedBefore() && next != ' ' && next != '\t' && next != '=' && l.slashyCloses()
	}
	return false
}

// spacedBefore reports whether blank space separates the current byte from
// the previous token.
func (l *lexer) spacedBefore() bool {
	if l.pos > 0 {
		c := l.src[l.pos-1]
		return c == ' ' || c == '\t'
	}
	n := len(l.toks)
	return n > 0 && l.toks[n-1].endLine == l.line && l.toks[n-1].endCol < l.col
}

// slashyCloses reports whether an unescaped '/' follows on the current line.
func (l *lexer) slashyCloses() bool {
	for i := l.pos + 1; i < len(l.src) && l.src[i] != '\n'; i++ {
		switch l.src[i] {
		case '\\':
			i++
		case '/':
			return true
		}
	}
	return false
}

// slashyLit lexes Groovy /slashy/ and $/dollar slashy/$ strings. Both may span
// lines and take templates. Backslashes are literal except in \/ for slashy
// strings; dollar slashy strings escape with $$ and $/.
func (l *lexer) slashyLit(dollar bool) error {
	line, col := l.line, l.col
	start := l.pos
	open, closing := "/", "/"
	if dollar {
		open, closing = "$/", "/$"
	}
	l.advance(len(open))

	var parts []strPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, strPart{lit: lit.String()})
			lit.Reset()
		}
	}

	for {
		if l.pos >= len(l.src) {
			return l.errorf(line, col, "unterminated slashy string")
		}
		c := l.src[l.pos]
		switch {
		case dollar && (strings.HasPrefix(l.rest(), "$$") || strings.HasPrefix(l.rest(), "$/")):
			lit.WriteByte(l.src[l.pos+1])
			l.advance(2)
		case !dollar && strings.HasPrefix(l.rest(), `\/`):
			lit.WriteByte('/')
			l.advance(2)
		case strings.HasPrefix(l.rest(), closing):
			l.advance(len(closing))
			flush()
			l.toks = append(l.toks, token{
				kind: tokString, text: l.src[start:l.pos], line: line, col: col,
				endLine: l.line, endCol: l.col, parts: parts,
			})
			return nil
		case c == '$' && (l.peekAt(1) == '{' || isTemplateStart(l.peekAt(1))):
			part, err := l.templatePart()
			if err != nil {
				return err
			}
			flush()
			parts = append(parts, part)
		default:
			_, size := utf8.DecodeRuneInString(l.rest())
			lit.WriteString(l.src[l.pos : l.pos+size])
			l.advance(size)
		}
	}
}

// escape decodes the escape sequence after a backslash.
func (l *lexer) escape() string {
	c := l.src[l.pos]
	l.advance(1)
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'u':
		if l.pos+4 <= len(l.src) {
			if r, err := strconv.ParseUint(l.src[l.pos:l.pos+4], 16, 32); err == nil {
				l.advance(4)
				return string(rune(r))
			}
		}
		return "u"
	case '\n':
		return ""
	default:
		return string(c)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c >= utf8.RuneSelf
}

func isTemplateStart(c byte) bool {
	return c != '$' && isIdentStart(c)
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
