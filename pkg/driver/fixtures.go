package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

const (
	expectOutputPrefix       = "// expect: "
	expectRuntimeErrorPrefix = "// expect runtime error: "
	expectErrorPrefix        = "// expect error: "
)

// Expectations are the annotations a fixture script carries in trailing
// comments. Output lines are in source order.
type Expectations struct {
	Output       []string
	RuntimeError string
	StaticError  string
}

// ParseExpectations collects the `// expect...` annotations in src.
func ParseExpectations(src []byte) (Expectations, error) {
	var exp Expectations
	sc := bufio.NewScanner(bytes.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		idx := strings.Index(text, "// expect")
		if idx < 0 {
			continue
		}
		annotation := text[idx:]
		switch {
		case strings.HasPrefix(annotation, expectRuntimeErrorPrefix):
			if exp.RuntimeError != "" {
				return exp, fmt.Errorf("line %d: more than one runtime error expectation", line)
			}
			exp.RuntimeError = strings.TrimSpace(strings.TrimPrefix(annotation, expectRuntimeErrorPrefix))
		case strings.HasPrefix(annotation, expectErrorPrefix):
			if exp.StaticError != "" {
				return exp, fmt.Errorf("line %d: more than one error expectation", line)
			}
			exp.StaticError = strings.TrimSpace(strings.TrimPrefix(annotation, expectErrorPrefix))
		case strings.HasPrefix(annotation, expectOutputPrefix):
			exp.Output = append(exp.Output, strings.TrimPrefix(annotation, expectOutputPrefix))
		default:
			return exp, fmt.Errorf("line %d: unknown expectation %q", line, annotation)
		}
	}
	if err := sc.Err(); err != nil {
		return exp, err
	}
	if exp.RuntimeError != "" && exp.StaticError != "" {
		return exp, fmt.Errorf("fixture cannot expect both a static and a runtime error")
	}
	return exp, nil
}

// Mismatch describes how a fixture run differed from its expectations. An
// empty slice means the run matched.
func (e Expectations) Mismatch(output []string, diag *Diagnostic) []string {
	var problems []string
	limit := len(output)
	if len(e.Output) > limit {
		limit = len(e.Output)
	}
	for i := 0; i < limit; i++ {
		switch {
		case i >= len(output):
			problems = append(problems, fmt.Sprintf("missing output line %d: want %q", i+1, e.Output[i]))
		case i >= len(e.Output):
			problems = append(problems, fmt.Sprintf("unexpected output line %d: %q", i+1, output[i]))
		case output[i] != e.Output[i]:
			problems = append(problems, fmt.Sprintf("output line %d: got %q, want %q", i+1, output[i], e.Output[i]))
		}
	}

	switch {
	case diag == nil:
		if e.RuntimeError != "" {
			problems = append(problems, fmt.Sprintf("expected runtime error %q, run succeeded", e.RuntimeError))
		}
		if e.StaticError != "" {
			problems = append(problems, fmt.Sprintf("expected error %q, run succeeded", e.StaticError))
		}
	case diag.Phase == PhaseRuntime:
		if e.RuntimeError == "" {
			problems = append(problems, "unexpected "+DescribeDiagnostic(*diag))
		} else if diag.Message != e.RuntimeError {
			problems = append(problems, fmt.Sprintf("runtime error: got %q, want %q", diag.Message, e.RuntimeError))
		}
	case diag.Phase.Static():
		if e.StaticError == "" {
			problems = append(problems, "unexpected "+DescribeDiagnostic(*diag))
		} else if diag.Message != e.StaticError {
			problems = append(problems, fmt.Sprintf("error: got %q, want %q", diag.Message, e.StaticError))
		}
	default:
		problems = append(problems, DescribeDiagnostic(*diag))
	}
	return problems
}
