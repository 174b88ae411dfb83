package interpreter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lox/interpreter-go/pkg/driver"
)

func TestRuntimeDiagnosticsFormatting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lox")
	src := "fun inner() {\n  return 1 + nil;\n}\nfun outer() {\n  return inner();\n}\nouter();\n"
	writeScript(t, path, src)

	var out bytes.Buffer
	interp := New(WithStdout(&out))
	err := interp.ExecuteFile(path, parseProgram(t, src))
	if err == nil {
		t.Fatalf("expected runtime error")
	}

	diag := BuildRuntimeDiagnostic("", err)
	if diag.Phase != driver.PhaseRuntime {
		t.Fatalf("phase = %q", diag.Phase)
	}
	got := driver.DescribeDiagnostic(diag)
	loc := filepath.ToSlash(path)
	want := "runtime: " + loc + ":2:12 Operands must be two numbers or two strings.\n" +
		"note: " + loc + ":5:16 called from here\n" +
		"note: " + loc + ":7:7 called from here"
	if got != want {
		t.Fatalf("unexpected diagnostic output:\nexpected: %s\ngot: %s", want, got)
	}
}

func TestRuntimeDiagnosticsTrackDeclaringScript(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.lox")
	mainPath := filepath.Join(dir, "main.lox")
	libSrc := "fun fail() {\n  return -\"x\";\n}\n"
	mainSrc := "print 1;\nfail();\n"

	var out bytes.Buffer
	interp := New(WithStdout(&out))
	if err := interp.ExecuteFile(libPath, parseProgram(t, libSrc)); err != nil {
		t.Fatalf("lib: %v", err)
	}
	err := interp.ExecuteFile(mainPath, parseProgram(t, mainSrc))
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if rtErr.Path != libPath {
		t.Fatalf("error path = %q, want %q", rtErr.Path, libPath)
	}
	if len(rtErr.CallStack) != 1 || rtErr.CallStack[0].Path != mainPath {
		t.Fatalf("call stack = %+v", rtErr.CallStack)
	}

	diag := BuildRuntimeDiagnostic(mainPath, err)
	if diag.Location.Path != libPath || diag.Location.Line != 2 {
		t.Fatalf("location = %+v", diag.Location)
	}
	if len(diag.Notes) != 1 || diag.Notes[0].Location.Path != mainPath || diag.Notes[0].Location.Line != 2 {
		t.Fatalf("notes = %+v", diag.Notes)
	}
}

func TestRuntimeDiagnosticsSharedDeclaration(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.lox")
	bPath := filepath.Join(dir, "b.lox")
	mainPath := filepath.Join(dir, "main.lox")
	// a.lox and b.lox have identical text, so a parse cache hands both the
	// same statements.
	shared := parseProgram(t, "fun fail() {\n  return -\"x\";\n}\n")

	var out bytes.Buffer
	interp := New(WithStdout(&out))
	if err := interp.ExecuteFile(aPath, shared); err != nil {
		t.Fatalf("a: %v", err)
	}
	if err := interp.ExecuteFile(mainPath, parseProgram(t, "var fromA = fail;")); err != nil {
		t.Fatalf("main: %v", err)
	}
	if err := interp.ExecuteFile(bPath, shared); err != nil {
		t.Fatalf("b: %v", err)
	}
	err := interp.ExecuteFile(mainPath, parseProgram(t, "fromA();"))
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if rtErr.Path != aPath {
		t.Fatalf("error path = %q, want %q", rtErr.Path, aPath)
	}
}

func TestExecuteFileWrapsStaticErrors(t *testing.T) {
	interp := New(WithStdout(&bytes.Buffer{}))
	err := interp.ExecuteFile("main.lox", parseProgram(t, "return 1;"))
	if err == nil {
		t.Fatalf("expected resolve error")
	}
	if got := driver.PathOf(err); got != "main.lox" {
		t.Fatalf("PathOf = %q", got)
	}
	diag := BuildRuntimeDiagnostic("", err)
	if diag.Phase != driver.PhaseResolve {
		t.Fatalf("phase = %q", diag.Phase)
	}
	if got := driver.DescribeDiagnostic(diag); got != "resolver: main.lox:1:1 at 'return': Can't return from top-level code." {
		t.Fatalf("unexpected output %q", got)
	}
}

func writeScript(t *testing.T, path, src string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
