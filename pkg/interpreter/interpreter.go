package interpreter

import (
	"io"
	"log/slog"
	"os"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// maxCallDepth bounds user-level recursion so runaway programs fail with a
// runtime error instead of exhausting the goroutine stack.
const maxCallDepth = 10000

// Interpreter walks resolved syntax trees. It is not safe for concurrent use;
// run one Interpreter per goroutine.
type Interpreter struct {
	global   *runtime.Environment
	env      *runtime.Environment
	locals   resolver.Table
	resolver *resolver.Resolver

	stdout io.Writer
	logger *slog.Logger
	now    func() time.Time

	callStack []CallFrame

	// path is the script currently executing.
	path string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout redirects `print` output. The default is os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.stdout = w
		}
	}
}

// WithLogger installs a structured logger for execution tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock replaces the time source behind the `clock` builtin.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

// New returns an interpreter whose global environment holds the builtins.
func New(opts ...Option) *Interpreter {
	global := runtime.NewEnvironment(nil)
	i := &Interpreter{
		global:   global,
		env:      global,
		locals:   make(resolver.Table),
		resolver: resolver.New(),
		stdout:   os.Stdout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.defineBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Resolve merges resolver output into the interpreter's binding table.
func (i *Interpreter) Resolve(table resolver.Table) {
	for expr, distance := range table {
		i.locals[expr] = distance
	}
}

// Execute resolves stmts with the interpreter's own resolver, then runs them.
// Resolution state carries over between calls, so a REPL can feed one line at
// a time.
func (i *Interpreter) Execute(stmts []ast.Stmt) error {
	table, err := i.resolver.Resolve(stmts)
	if err != nil {
		return err
	}
	i.Resolve(table)
	return i.Interpret(stmts)
}

// ExecuteFile is Execute for statements read from path. Static errors are
// wrapped with the path; runtime errors record it.
func (i *Interpreter) ExecuteFile(path string, stmts []ast.Stmt) error {
	previous := i.path
	i.path = path
	defer func() { i.path = previous }()

	i.logger.Debug("execute file", "path", path)
	table, err := i.resolver.Resolve(stmts)
	if err != nil {
		return driver.WithPath(path, err)
	}
	i.Resolve(table)
	return i.Interpret(stmts)
}

// Interpret runs already-resolved top-level statements in order. The first
// runtime error abandons the remaining statements and is returned.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	i.logger.Debug("interpret", "statements", len(stmts))
	for _, stmt := range stmts {
		result, err := i.execute(stmt)
		if err != nil {
			i.logger.Debug("runtime error", "error", err)
			return err
		}
		if result.kind == completionReturn {
			return i.runtimeError(result.keyword, "Can't return from top-level code.")
		}
	}
	return nil
}
