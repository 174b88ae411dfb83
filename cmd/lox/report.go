package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"

	"lox/interpreter-go/pkg/driver"
)

// reporter writes results to stdout and diagnostics to stderr, colored only
// when stderr is a terminal.
type reporter struct {
	out io.Writer
	err io.Writer

	errorColor *color.Color
	noteColor  *color.Color
	passColor  *color.Color
}

func newReporter(stdout, stderr io.Writer, useColor bool) *reporter {
	r := &reporter{
		out:        stdout,
		err:        stderr,
		errorColor: color.New(color.FgRed, color.Bold),
		noteColor:  color.New(color.FgCyan),
		passColor:  color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{r.errorColor, r.noteColor, r.passColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if useColor {
		if f, ok := stdout.(*os.File); ok {
			r.out = colorable.NewColorable(f)
		}
		if f, ok := stderr.(*os.File); ok {
			r.err = colorable.NewColorable(f)
		}
	}
	return r
}

// diagnostic prints diag as described by driver.DescribeDiagnostic, with the
// first line in the error color and notes dimmed.
func (r *reporter) diagnostic(diag driver.Diagnostic) {
	lines := strings.Split(driver.DescribeDiagnostic(diag), "\n")
	r.errorColor.Fprintln(r.err, lines[0])
	for _, line := range lines[1:] {
		r.noteColor.Fprintln(r.err, line)
	}
}

func (r *reporter) errorf(format string, args ...any) {
	r.errorColor.Fprintln(r.err, fmt.Sprintf(format, args...))
}

func (r *reporter) pass(format string, args ...any) {
	r.passColor.Fprintln(r.out, fmt.Sprintf(format, args...))
}

func (r *reporter) fail(format string, args ...any) {
	r.errorColor.Fprintln(r.out, fmt.Sprintf(format, args...))
}

func (r *reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
