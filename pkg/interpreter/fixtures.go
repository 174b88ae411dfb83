package interpreter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

// FixtureResult is the outcome of running one annotated script.
type FixtureResult struct {
	Path       string
	Output     []string
	Diagnostic *driver.Diagnostic
	Problems   []string
}

// Passed reports whether the run matched every annotation.
func (r FixtureResult) Passed() bool {
	return len(r.Problems) == 0
}

// RunFixture executes the script at path in a fresh interpreter and compares
// what it printed and raised against its `// expect` annotations. The error
// return is for fixtures that could not be run at all.
func RunFixture(loader *driver.Loader, path string, opts ...Option) (FixtureResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FixtureResult{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	result := FixtureResult{Path: abs}
	src, err := os.ReadFile(abs)
	if err != nil {
		return result, fmt.Errorf("fixture %s: %w", path, err)
	}
	exp, err := driver.ParseExpectations(src)
	if err != nil {
		return result, fmt.Errorf("fixture %s: %w", path, err)
	}

	var out bytes.Buffer
	unit, err := loader.ParseSource(abs, src)
	if err == nil {
		interp := New(append([]Option{WithStdout(&out)}, opts...)...)
		err = interp.ExecuteFile(abs, unit.Statements)
	}
	if err != nil {
		diag := BuildRuntimeDiagnostic(abs, err)
		result.Diagnostic = &diag
	}
	result.Output = splitOutput(out.String())
	result.Problems = exp.Mismatch(result.Output, result.Diagnostic)
	return result, nil
}

func splitOutput(out string) []string {
	trimmed := strings.TrimSuffix(out, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
