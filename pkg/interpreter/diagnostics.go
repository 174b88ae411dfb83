package interpreter

import (
	"errors"

	"lox/interpreter-go/pkg/driver"
)

const maxDiagnosticNotes = 8

// BuildRuntimeDiagnostic describes err for display. Runtime errors get one
// "called from here" note per active call site, innermost first; anything
// else is classified by driver.DiagnosticFromError. path is used when the
// error does not know its own script.
func BuildRuntimeDiagnostic(path string, err error) driver.Diagnostic {
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		return driver.DiagnosticFromError(path, err)
	}
	if rtErr.Path != "" {
		path = rtErr.Path
	}
	location := driver.LocationOf(path, rtErr.Token)

	var notes []driver.DiagnosticNote
	for idx := len(rtErr.CallStack) - 1; idx >= 0 && len(notes) < maxDiagnosticNotes; idx-- {
		frame := rtErr.CallStack[idx]
		framePath := frame.Path
		if framePath == "" {
			framePath = path
		}
		noteLocation := driver.LocationOf(framePath, frame.Site)
		if noteLocation.Line == 0 || noteLocation == location {
			continue
		}
		notes = append(notes, driver.DiagnosticNote{
			Message:  "called from here",
			Location: noteLocation,
		})
	}

	return driver.Diagnostic{
		Severity: driver.SeverityError,
		Phase:    driver.PhaseRuntime,
		Message:  rtErr.Message,
		Location: location,
		Notes:    notes,
	}
}
