package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// CallFrame records one active call: the callee's name and the closing paren
// of the call expression that entered it. Path is the script holding Site.
type CallFrame struct {
	Function string
	Site     token.Token
	Path     string
}

// RuntimeError aborts execution. CallStack lists the calls active when it was
// raised, outermost first.
type RuntimeError struct {
	Token     token.Token
	Message   string
	Path      string
	CallStack []CallFrame
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Token.Pos.Line, e.Message)
}

func (i *Interpreter) runtimeError(tok token.Token, format string, args ...any) *RuntimeError {
	var stack []CallFrame
	if len(i.callStack) > 0 {
		stack = make([]CallFrame, len(i.callStack))
		copy(stack, i.callStack)
	}
	return &RuntimeError{
		Token:     tok,
		Message:   fmt.Sprintf(format, args...),
		Path:      i.path,
		CallStack: stack,
	}
}
