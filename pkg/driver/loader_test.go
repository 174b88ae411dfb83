package driver

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
)

func TestLoaderOrdersPrelude(t *testing.T) {
	root := t.TempDir()
	searchDir := filepath.Join(root, "search")
	writeFile(t, filepath.Join(searchDir, "b.lox"), "var b = 2;\n")
	writeFile(t, filepath.Join(searchDir, "a.lox"), "var a = 1;\n")
	writeFile(t, filepath.Join(searchDir, "notes.txt"), "ignored\n")
	writeFile(t, filepath.Join(searchDir, "testdata", "skip.lox"), "oops(\n")

	writeFile(t, filepath.Join(root, "util", "util.lox"), "var u = 3;\n")
	writeFile(t, filepath.Join(root, "app", "lib", "prelude.lox"), "var p = 4;\n")
	writeFile(t, filepath.Join(root, "app", "main.lox"), "print a + b + u + p;\n")
	writeFile(t, filepath.Join(root, "app", ManifestFileName), `
name: app
main: main.lox
prelude:
  - lib/prelude.lox
dependencies:
  util:
    path: ../util
`)
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	require.NoError(t, err)

	loader, err := NewLoader(0, nil)
	require.NoError(t, err)
	program, err := loader.Load("", LoadOptions{Manifest: manifest, SearchPaths: []string{searchDir}})
	require.NoError(t, err)

	var got []string
	for _, unit := range program.Prelude {
		rel, err := filepath.Rel(root, unit.Path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	require.Equal(t, []string{"search/a.lox", "search/b.lox", "util/util.lox", "app/lib/prelude.lox"}, got)
	require.Equal(t, filepath.Join(root, "app", "main.lox"), program.Entry.Path)
	require.Len(t, program.Units(), 5)
	require.Len(t, program.Entry.Statements, 1)
}

func TestLoaderSkipsEntryInPrelude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.lox"), "var x = 1;\n")
	writeFile(t, filepath.Join(dir, "main.lox"), "print x;\n")

	loader, err := NewLoader(4, nil)
	require.NoError(t, err)
	program, err := loader.Load(filepath.Join(dir, "main.lox"), LoadOptions{SearchPaths: []string{dir}})
	require.NoError(t, err)
	require.Len(t, program.Prelude, 1)
	require.Equal(t, filepath.Join(dir, "lib.lox"), program.Prelude[0].Path)
}

func TestLoaderRequiresEntry(t *testing.T) {
	loader, err := NewLoader(4, nil)
	require.NoError(t, err)
	_, err = loader.Load("", LoadOptions{})
	require.Error(t, err)
}

func TestLoaderCachesByContent(t *testing.T) {
	loader, err := NewLoader(4, nil)
	require.NoError(t, err)

	first, err := loader.ParseSource("one.lox", []byte("print 1;"))
	require.NoError(t, err)
	second, err := loader.ParseSource("two.lox", []byte("print 1;"))
	require.NoError(t, err)

	require.Equal(t, "two.lox", second.Path)
	require.Same(t, first.Statements[0], second.Statements[0])

	third, err := loader.ParseSource("one.lox", []byte("print 2;"))
	require.NoError(t, err)
	require.NotSame(t, first.Statements[0], third.Statements[0])
}

func TestLoaderWrapsStaticErrors(t *testing.T) {
	loader, err := NewLoader(4, nil)
	require.NoError(t, err)

	_, err = loader.ParseSource("bad.lox", []byte("var s = \"open;"))
	var scanErr *scanner.Error
	require.True(t, errors.As(err, &scanErr))
	require.Equal(t, "bad.lox", PathOf(err))

	_, err = loader.ParseSource("bad.lox", []byte("print ;"))
	var parseErr *parser.Error
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, "bad.lox", PathOf(err))
}

func TestScriptFilesSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.lox")
	writeFile(t, path, "print 1;\n")
	files, err := ScriptFiles(path)
	require.NoError(t, err)
	require.Equal(t, []string{path}, files)

	_, err = ScriptFiles(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
