package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

func parseSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	tokens, err := scanner.Scan(src)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	stmts, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return stmts
}

func parseError(t *testing.T, src string) *Error {
	t.Helper()
	tokens, err := scanner.Scan(src)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	stmts, err := New(tokens).Parse()
	if err == nil {
		t.Fatalf("expected parse error for %q, got %s", src, spew.Sdump(stmts))
	}
	var parseErr *Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *parser.Error, got %T", err)
	}
	return parseErr
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(; (* (group (+ 1 2)) 3))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
		{"8 / 4 / 2;", "(; (/ (/ 8 4) 2))"},
		{"-a * !b;", "(; (* (- a) (! b)))"},
		{"!!true;", "(; (! (! true)))"},
		{"1 < 2 == 3 >= 4;", "(; (== (< 1 2) (>= 3 4)))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"a and b or c and d;", "(; (or (and a b) (and c d)))"},
		{"a = b = 3;", "(; (= a (= b 3)))"},
		{"a = 1 or 2;", "(; (= a (or 1 2)))"},
		{"f(1)(2, 3)();", "(; (call (call (call f 1) 2 3)))"},
		{"-f(x);", "(; (- (call f x)))"},
		{"1 != nil;", "(; (!= 1 nil))"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got := strings.TrimSpace(ast.PrintProgram(parseSource(t, tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1;", `(print 1)`},
		{"var a;", `(var a nil)`},
		{`var a = "x";`, `(var a "x")`},
		{"{ var a = 1; print a; }", `(block (var a 1) (print a))`},
		{"{}", `(block)`},
		{"if (a) print 1;", `(if a (print 1))`},
		{"if (a) print 1; else print 2;", `(if a (print 1) (print 2))`},
		{"if (a) if (b) print 1; else print 2;", `(if a (if b (print 1) (print 2)))`},
		{"while (a) a = a - 1;", `(while a (; (= a (- a 1))))`},
		{"fun f() {}", `(fun f ())`},
		{"fun add(a, b) { return a + b; }", `(fun add (a b) (return (+ a b)))`},
		{"fun f() { return; }", `(fun f () (return nil))`},
		{"class A { m() { print 1; } n(x) {} }", `(class A (method m () (print 1)) (method n (x)))`},
		{"class Empty {}", `(class Empty)`},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got := strings.TrimSpace(ast.PrintProgram(parseSource(t, tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseForDesugaring(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			`(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))`,
		},
		{"for (;;) print 1;", `(while true (print 1))`},
		{"for (i = 0; i < 1;) print i;", `(block (; (= i 0)) (while (< i 1) (print i)))`},
		{"for (; x; x = false) {}", `(while x (block (block) (; (= x false))))`},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got := strings.TrimSpace(ast.PrintProgram(parseSource(t, tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}

	stmts := parseSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	block, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected outer block, got %T", stmts[0])
	}
	if _, ok := block.Statements[1].(*ast.WhileStatement); !ok {
		t.Fatalf("expected while inside block, got %s", spew.Sdump(block.Statements[1]))
	}
}

func TestParseLiteralsKeepScannerPayload(t *testing.T) {
	stmts := parseSource(t, `print 42.0; print "s";`)
	num := stmts[0].(*ast.PrintStatement).Expression.(*ast.Literal)
	if num.Value != 42.0 {
		t.Fatalf("number literal = %#v", num.Value)
	}
	str := stmts[1].(*ast.PrintStatement).Expression.(*ast.Literal)
	if str.Value != "s" {
		t.Fatalf("string literal = %#v", str.Value)
	}
}

func TestParseUnboundedArguments(t *testing.T) {
	args := make([]string, 300)
	for i := range args {
		args[i] = "1"
	}
	stmts := parseSource(t, "f("+strings.Join(args, ", ")+");")
	call := stmts[0].(*ast.ExpressionStatement).Expression.(*ast.Call)
	if len(call.Arguments) != 300 {
		t.Fatalf("expected 300 arguments, got %d", len(call.Arguments))
	}
	if call.Paren.Type != token.RightParen {
		t.Fatalf("call paren = %v", call.Paren)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	for _, src := range []string{"1 = 2;", "a + b = c;", "(a) = 1;", "f() = 1;"} {
		t.Run(src, func(t *testing.T) {
			err := parseError(t, src)
			if err.Message != "Invalid assignment target." {
				t.Fatalf("unexpected message %q", err.Message)
			}
			if err.Token.Type != token.Equal {
				t.Fatalf("error should point at '=', got %v", err.Token)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src        string
		want       string
		incomplete bool
	}{
		{"print 1", "[line 1] Error at end: Expect ';' after value.", true},
		{"print );", "[line 1] Error at ')': Expect expression.", false},
		{"var 1 = 2;", "[line 1] Error at '1': Expect variable name.", false},
		{"{ print 1;", "[line 1] Error at end: Expect '}' after block.", true},
		{"fun f(a b) {}", "[line 1] Error at 'b': Expect ')' after parameters.", false},
		{"if a) print 1;", "[line 1] Error at 'a': Expect '(' after 'if'.", false},
		{"class { }", "[line 1] Error at '{': Expect class name.", false},
		{"\n\nf(1, 2", "[line 3] Error at end: Expect ')' after arguments.", true},
		{"this;", "[line 1] Error at 'this': Expect expression.", false},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			err := parseError(t, tc.src)
			if err.Error() != tc.want {
				t.Fatalf("error = %q, want %q", err.Error(), tc.want)
			}
			if IsIncomplete(err) != tc.incomplete {
				t.Fatalf("IsIncomplete = %v, want %v", IsIncomplete(err), tc.incomplete)
			}
		})
	}
}

func TestIsIncompleteIgnoresOtherErrors(t *testing.T) {
	if IsIncomplete(errors.New("boom")) {
		t.Fatalf("plain errors are never incomplete")
	}
	if IsIncomplete(nil) {
		t.Fatalf("nil is never incomplete")
	}
}

func TestParseExpression(t *testing.T) {
	tokens, err := scanner.Scan("1 + 2 * 3")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	expr, err := New(tokens).ParseExpression()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := ast.Print(expr); got != "(+ 1 (* 2 3))" {
		t.Fatalf("Print = %q", got)
	}

	tokens, _ = scanner.Scan("1 2")
	if _, err := New(tokens).ParseExpression(); err == nil {
		t.Fatalf("expected trailing token error")
	}
}

func TestNewTerminatesTokenStream(t *testing.T) {
	stmts, err := New([]token.Token{
		token.New(token.Print, "print", 1, 1),
		{Type: token.Number, Lexeme: "1", Literal: 1.0, Pos: token.Position{Line: 1, Column: 7}},
		token.New(token.Semicolon, ";", 1, 8),
	}).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected one statement, got %d", len(stmts))
	}

	stmts, err = New(nil).Parse()
	if err != nil || len(stmts) != 0 {
		t.Fatalf("empty stream: %v %v", stmts, err)
	}
}
