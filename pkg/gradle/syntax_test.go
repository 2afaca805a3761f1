package gradle

import (
	"errors"
	"strings"
	"testing"
)

func mustGroup(t *testing.T, src string, dialect Dialect) *node {
	t.Helper()
	toks, err := lex(src, dialect, "")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	root, err := group(toks, dialect, "")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	return root
}

func mustStatement(t *testing.T, src string, dialect Dialect) statement {
	t.Helper()
	stmts := statements(mustGroup(t, src, dialect).children)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	return parseStatement(stmts[0], dialect)
}

func TestGroupErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
		line    int
		col     int
	}{
		{"unclosed brace", "dependencies {\n  implementation 'a:b:1'\n", "'{' is never closed", 1, 14},
		{"extra closer", "a {\n}\n}", "unexpected '}'", 3, 1},
		{"mismatched", "a(b]", "unexpected ']', '(' opened at 1:2 is not closed", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lex(tt.src, Groovy, "")
			if err != nil {
				t.Fatalf("lex: %v", err)
			}
			_, err = group(toks, Groovy, "build.gradle")
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if perr.Msg != tt.wantMsg || perr.Line != tt.line || perr.Column != tt.col {
				t.Errorf("got %d:%d %q, want %d:%d %q", perr.Line, perr.Column, perr.Msg, tt.line, tt.col, tt.wantMsg)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"one per line", "a 1\nb 2\nc 3", 3},
		{"trailing operator continues", "x = 'a' +\n  'b'", 1},
		{"leading dot continues", "tasks\n  .named('test')\n  .configure {}", 1},
		{"elvis continues", "v = a\n  ?: b", 1},
		{"parens hide newlines", "implementation(\n  'a:b:1'\n)", 1},
		{"blank lines ignored", "\n\na\n\n\nb\n", 2},
		{"star import ends line", "import a.*\nb", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statements(mustGroup(t, tt.src, Kotlin).children)
			if len(got) != tt.want {
				t.Errorf("got %d statements, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseStatementShapes(t *testing.T) {
	t.Run("groovy command call", func(t *testing.T) {
		st := mustStatement(t, "implementation 'g:a:1'", Groovy)
		call, ok := st.expr.(*callExpr)
		if st.kind != stmtExpr || !ok {
			t.Fatalf("got %+v, want call", st)
		}
		if calleeName(call) != "implementation" || len(call.positional()) != 1 {
			t.Errorf("call = %s with %d args", calleeName(call), len(call.positional()))
		}
	})

	t.Run("groovy named args", func(t *testing.T) {
		st := mustStatement(t, "implementation group: 'g', name: 'a'", Groovy)
		call := st.expr.(*callExpr)
		if !hasNamed(call.args) || call.named("name") == nil {
			t.Errorf("args = %+v, want named group and name", call.args)
		}
	})

	t.Run("kotlin named args", func(t *testing.T) {
		st := mustStatement(t, `implementation(group = "g", name = "a")`, Kotlin)
		call := st.expr.(*callExpr)
		if call.named("group") == nil || call.named("name") == nil {
			t.Errorf("args = %+v, want named group and name", call.args)
		}
	})

	t.Run("infix plugin version", func(t *testing.T) {
		st := mustStatement(t, `id("x") version "1" apply false`, Kotlin)
		inf, ok := st.expr.(*infixExpr)
		if !ok || inf.name != "apply" {
			t.Fatalf("got %T, want apply infix", st.expr)
		}
		inner, ok := inf.left.(*infixExpr)
		if !ok || inner.name != "version" {
			t.Fatalf("left = %T, want version infix", inf.left)
		}
	})

	t.Run("assignment", func(t *testing.T) {
		st := mustStatement(t, "group = 'com.acme'", Groovy)
		if st.kind != stmtAssign {
			t.Fatalf("kind = %v, want assign", st.kind)
		}
		if name, _ := dotted(st.expr); name != "group" {
			t.Errorf("target = %q", name)
		}
	})

	t.Run("kotlin val with type", func(t *testing.T) {
		st := mustStatement(t, `val v: String = "1"`, Kotlin)
		if st.kind != stmtDecl || st.name != "v" {
			t.Fatalf("got %+v, want decl of v", st)
		}
		if _, ok := st.value.(*stringExpr); !ok {
			t.Errorf("value = %T", st.value)
		}
	})

	t.Run("delegated val", func(t *testing.T) {
		st := mustStatement(t, `val v by extra("1")`, Kotlin)
		if st.kind != stmtDecl || !st.delegated {
			t.Fatalf("got %+v, want delegated decl", st)
		}
	})

	t.Run("groovy typed local", func(t *testing.T) {
		st := mustStatement(t, "String v = '1'", Groovy)
		if st.kind != stmtDecl || st.name != "v" {
			t.Fatalf("got %+v, want decl of v", st)
		}
	})

	t.Run("type arguments", func(t *testing.T) {
		st := mustStatement(t, "tasks.withType<Test> { useJUnitPlatform() }", Kotlin)
		call, ok := st.expr.(*callExpr)
		if !ok || call.closure == nil {
			t.Fatalf("got %T, want call with closure", st.expr)
		}
		if name := calleeName(call); name != "tasks.withType" {
			t.Errorf("callee = %q", name)
		}
	})

	t.Run("quoted configuration", func(t *testing.T) {
		st := mustStatement(t, `"kapt"("g:a:1")`, Kotlin)
		if name := calleeName(st.expr.(*callExpr)); name != "kapt" {
			t.Errorf("callee = %q", name)
		}
	})

	t.Run("index", func(t *testing.T) {
		st := mustStatement(t, `extra["v"] = "1"`, Kotlin)
		if _, ok := st.expr.(*indexExpr); !ok || st.kind != stmtAssign {
			t.Errorf("got %T kind %v, want index assignment", st.expr, st.kind)
		}
	})
}

func TestDotted(t *testing.T) {
	st := mustStatement(t, "a.b.c", Kotlin)
	name, ok := dotted(st.expr)
	if !ok || name != "a.b.c" {
		t.Errorf("dotted = %q, %v", name, ok)
	}

	st = mustStatement(t, "a().b", Kotlin)
	if _, ok := dotted(st.expr); ok {
		t.Error("call chain should not be dotted")
	}
}

func TestParseErrorFormat(t *testing.T) {
	err := &ParseError{Path: "build.gradle", Dialect: Groovy, Line: 3, Column: 7, Msg: "boom"}
	if got := err.Error(); got != "build.gradle:3:7: boom" {
		t.Errorf("Error() = %q", got)
	}
	err.Path = ""
	if got := err.Error(); !strings.Contains(got, "groovy") || !strings.HasSuffix(got, "boom") {
		t.Errorf("Error() = %q", got)
	}
}
