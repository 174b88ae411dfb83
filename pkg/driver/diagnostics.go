package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

// DiagnosticSeverity captures diagnostic levels.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// Phase names the pipeline stage that produced a diagnostic.
type Phase string

const (
	PhaseScan    Phase = "scanner"
	PhaseParse   Phase = "parser"
	PhaseResolve Phase = "resolver"
	PhaseRuntime Phase = "runtime"
	PhaseDriver  Phase = "driver"
)

// Static reports whether the phase runs before any statement executes.
func (p Phase) Static() bool {
	return p == PhaseScan || p == PhaseParse || p == PhaseResolve
}

// DiagnosticLocation references a source position for diagnostics.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

// LocationOf builds a location from a token.
func LocationOf(path string, tok token.Token) DiagnosticLocation {
	return DiagnosticLocation{Path: path, Line: tok.Pos.Line, Column: tok.Pos.Column}
}

// DiagnosticNote is secondary information attached to a diagnostic.
type DiagnosticNote struct {
	Message  string
	Location DiagnosticLocation
}

// Diagnostic is a structured, printable error report.
type Diagnostic struct {
	Severity DiagnosticSeverity
	Phase    Phase
	Message  string
	Location DiagnosticLocation
	Notes    []DiagnosticNote
}

// SourceError attaches the script path to an error from any phase.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *SourceError) Unwrap() error { return e.Err }

// WithPath wraps err in a *SourceError unless it already carries a path.
func WithPath(path string, err error) error {
	if err == nil {
		return nil
	}
	var existing *SourceError
	if errors.As(err, &existing) {
		return err
	}
	return &SourceError{Path: path, Err: err}
}

// PathOf returns the script path attached to err, if any.
func PathOf(err error) string {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Path
	}
	return ""
}

// DiagnosticFromError classifies a scan, parse or resolve failure. Errors from
// elsewhere come back with PhaseDriver and no location. path is used when err
// does not carry its own.
func DiagnosticFromError(path string, err error) Diagnostic {
	if p := PathOf(err); p != "" {
		path = p
	}
	var (
		scanErr    *scanner.Error
		parseErr   *parser.Error
		resolveErr *resolver.Error
	)
	switch {
	case errors.As(err, &scanErr):
		message := "Unterminated string."
		if errors.Is(scanErr, scanner.ErrUnrecognizedCharacter) {
			message = fmt.Sprintf("Unrecognized character '%s'.", scanErr.Lexeme)
		}
		return Diagnostic{
			Severity: SeverityError,
			Phase:    PhaseScan,
			Message:  message,
			Location: DiagnosticLocation{Path: path, Line: scanErr.Pos.Line, Column: scanErr.Pos.Column},
		}
	case errors.As(err, &parseErr):
		return Diagnostic{
			Severity: SeverityError,
			Phase:    PhaseParse,
			Message:  staticMessage(parseErr.Token, parseErr.Message),
			Location: LocationOf(path, parseErr.Token),
		}
	case errors.As(err, &resolveErr):
		return Diagnostic{
			Severity: SeverityError,
			Phase:    PhaseResolve,
			Message:  staticMessage(resolveErr.Token, resolveErr.Message),
			Location: LocationOf(path, resolveErr.Token),
		}
	}
	message := ""
	if err != nil {
		message = err.Error()
		var srcErr *SourceError
		if errors.As(err, &srcErr) && srcErr.Err != nil {
			message = srcErr.Err.Error()
		}
	}
	return Diagnostic{
		Severity: SeverityError,
		Phase:    PhaseDriver,
		Message:  message,
		Location: DiagnosticLocation{Path: path},
	}
}

func staticMessage(tok token.Token, message string) string {
	if tok.Type == token.EOF {
		return "at end: " + message
	}
	return fmt.Sprintf("at '%s': %s", tok.Lexeme, message)
}

// DescribeDiagnostic formats a diagnostic for CLI output, one note per line.
func DescribeDiagnostic(diag Diagnostic) string {
	message := strings.TrimSpace(diag.Message)
	prefix := string(diag.Phase) + ": "
	if diag.Phase == "" {
		prefix = ""
	}
	if diag.Severity == SeverityWarning {
		prefix = "warning: " + prefix
	}
	var b strings.Builder
	if location := FormatLocation(diag.Location); location != "" {
		fmt.Fprintf(&b, "%s%s %s", prefix, location, message)
	} else {
		fmt.Fprintf(&b, "%s%s", prefix, message)
	}
	for _, note := range diag.Notes {
		if noteLoc := FormatLocation(note.Location); noteLoc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", noteLoc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// FormatLocation renders path:line:column, dropping whatever is unknown.
// Paths under the working directory are shown relative to it.
func FormatLocation(loc DiagnosticLocation) string {
	path := displayPath(strings.TrimSpace(loc.Path))
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}

func displayPath(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
