package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRunScript(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.lox"), `
fun greet(name) { return "hello " + name; }
print greet("lox");
print 1 + 2;
`)

	for _, args := range [][]string{{"run", "main.lox"}, {"main.lox"}} {
		res := runCLI(t, args...)
		require.Equal(t, exitOK, res.code, res.stderr)
		require.Equal(t, "hello lox\n3\n", res.stdout)
		require.Empty(t, res.stderr)
	}
}

func TestRunScriptRuntimeError(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.lox"), `
print "before";
fun half(n) {
  return n / "2";
}
print half(4);
print "after";
`)

	res := runCLI(t, "--no-color", "run", "main.lox")
	require.Equal(t, exitRuntimeError, res.code)
	require.Equal(t, "before\n", res.stdout)
	require.Equal(t, "runtime: main.lox:3:12 Operands must be numbers.\nnote: main.lox:5:13 called from here\n", res.stderr)
}

func TestRunScriptStaticErrors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	cases := []struct {
		name   string
		src    string
		stderr string
	}{
		{"scan", "print 1;\nprint @;", "scanner: main.lox:2:7 Unrecognized character '@'.\n"},
		{"parse", "print 1;\nvar = 2;", "parser: main.lox:2:5 at '=': Expect variable name.\n"},
		{"resolve", "print 1;\nreturn 2;", "resolver: main.lox:2:1 at 'return': Can't return from top-level code.\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeFile(t, filepath.Join(dir, "main.lox"), tc.src)
			res := runCLI(t, "run", "main.lox")
			require.Equal(t, exitStaticError, res.code)
			require.Empty(t, res.stdout, "nothing may run after a static error")
			require.Equal(t, tc.stderr, res.stderr)
		})
	}
}

func TestRunMissingScript(t *testing.T) {
	isolateEnv(t)
	chdir(t, t.TempDir())
	res := runCLI(t, "run", "missing.lox")
	require.Equal(t, exitFailure, res.code)
	require.Contains(t, res.stderr, "missing.lox")
}

func TestRunManifestProgram(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shared", "greeting.lox"), `
fun greeting() { return "hi"; }
`)
	writeFile(t, filepath.Join(root, "util", "twice.lox"), `
fun twice(x) { return x + x; }
`)
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, "package.yml"), `
name: app
main: src/main.lox
prelude:
  - src/setup.lox
dependencies:
  util:
    path: ../util
`)
	writeFile(t, filepath.Join(app, "src", "setup.lox"), `
var base = 20;
`)
	writeFile(t, filepath.Join(app, "src", "main.lox"), `
print greeting();
print twice(base + 1);
`)
	t.Setenv("LOX_PATH", filepath.Join(root, "shared"))
	chdir(t, app)

	res := runCLI(t)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Equal(t, "hi\n42\n", res.stdout)

	res = runCLI(t, "check")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Equal(t, "check: ok\n", res.stdout)
}

func TestRunWithoutScriptOrManifest(t *testing.T) {
	isolateEnv(t)
	chdir(t, t.TempDir())
	res := runCLI(t, "run")
	require.Equal(t, exitFailure, res.code)
	require.Contains(t, res.stderr, "no script given")
}

func TestCheckCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "ok.lox"), "print clock() > 0;\n")
	writeFile(t, filepath.Join(dir, "bad.lox"), "{ var a = a; }\n")

	res := runCLI(t, "check", "ok.lox")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Equal(t, "check: ok\n", res.stdout)

	res = runCLI(t, "check", "bad.lox")
	require.Equal(t, exitStaticError, res.code)
	require.Equal(t, "resolver: bad.lox:1:11 at 'a': Can't read local variable in its own initializer.\n", res.stderr)
}

func TestTokensCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.lox"), "var answer = 42;\nprint \"hi\";\n")

	res := runCLI(t, "tokens", "main.lox")
	require.Equal(t, exitOK, res.code, res.stderr)
	for _, want := range []string{"KIND", "LEXEME", "VAR", "IDENTIFIER", "answer", "NUMBER", "42", "STRING", `"hi"`, "EOF"} {
		require.Contains(t, res.stdout, want)
	}

	res = runCLI(t, "tokens")
	require.Equal(t, exitFailure, res.code)
	require.Contains(t, res.stderr, "tokens requires exactly one script")
}

func TestASTCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.lox"), "print 1 + 2;\nvar a;\n")

	res := runCLI(t, "ast", "main.lox")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Equal(t, "(print (+ 1 2))\n(var a nil)\n", res.stdout)

	res = runCLI(t, "ast", "--json", "main.lox")
	require.Equal(t, exitOK, res.code, res.stderr)
	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "PrintStatement", decoded[0]["type"])
	require.Equal(t, "VarDeclaration", decoded[1]["type"])
}

func TestTestCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "fixtures", "pass.lox"), "print 1 + 1; // expect: 2\n")
	writeFile(t, filepath.Join(dir, "fixtures", "boom.lox"), "print -nil; // expect runtime error: Operand must be a number.\n")
	writeFile(t, filepath.Join(dir, "fixtures", "fail.lox"), "print 1; // expect: 2\n")

	res := runCLI(t, "test", "fixtures")
	require.Equal(t, exitFailure, res.code)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Equal(t, []string{
		"PASS fixtures/boom.lox",
		"FAIL fixtures/fail.lox",
		`    output line 1: got "1", want "2"`,
		"PASS fixtures/pass.lox",
		"2 passed, 1 failed",
	}, lines)

	require.NoError(t, os.Remove(filepath.Join(dir, "fixtures", "fail.lox")))
	res = runCLI(t, "test", "fixtures")
	require.Equal(t, exitOK, res.code, res.stdout)
}

func TestDepsInstall(t *testing.T) {
	home := isolateEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "util", "twice.lox"), "fun twice(x) { return x + x; }\n")
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, "package.yml"), `
name: app
main: main.lox
dependencies:
  util:
    path: ../util
`)
	writeFile(t, filepath.Join(app, "main.lox"), "print twice(4);\n")
	chdir(t, app)

	res := runCLI(t, "deps", "install")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Cache directory: "+home)
	require.Contains(t, res.stdout, "util path (path:../util)")

	data, err := os.ReadFile(filepath.Join(app, "package.lock"))
	require.NoError(t, err)
	var lock struct {
		Root     string `yaml:"root"`
		Tool     string `yaml:"tool"`
		Packages []struct {
			Name   string `yaml:"name"`
			Source string `yaml:"source"`
		} `yaml:"packages"`
	}
	require.NoError(t, yaml.Unmarshal(data, &lock))
	require.Equal(t, "app", lock.Root)
	require.Equal(t, cliToolVersion, lock.Tool)
	require.Len(t, lock.Packages, 1)
	require.Equal(t, "path:../util", lock.Packages[0].Source)

	res = runCLI(t, "run")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Equal(t, "8\n", res.stdout)
}

func TestRunReportsMissingGitDependency(t *testing.T) {
	isolateEnv(t)
	app := t.TempDir()
	writeFile(t, filepath.Join(app, "package.yml"), `
name: app
main: main.lox
dependencies:
  shapes:
    git: https://example.com/shapes.git
    tag: v1
`)
	writeFile(t, filepath.Join(app, "main.lox"), "print 1;\n")
	chdir(t, app)

	res := runCLI(t, "run")
	require.Equal(t, exitFailure, res.code)
	require.Contains(t, res.stderr, "lox deps install")
}
