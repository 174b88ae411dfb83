package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
)

const (
	promptMain  = "> "
	promptCont  = ". "
	historyFile = "history"
	replName    = "<repl>"
)

// prompter is the part of *liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func (s *session) replCommand(ctx *cli.Context) error {
	home, err := resolveLoxHome()
	if err != nil {
		return err
	}
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if err := os.MkdirAll(home, 0o755); err != nil {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s.logger.Debug("repl started", "history", histPath)
	fmt.Fprintf(s.stdout, "%s (:quit to exit)\n", cliToolVersion)
	s.repl(ln, ln.AppendHistory)
	return nil
}

// repl reads chunks until EOF or :quit, executing each in one persistent
// interpreter. Errors are reported and the session continues.
func (s *session) repl(p prompter, remember func(string)) {
	interp := interpreter.New(
		interpreter.WithStdout(s.stdout),
		interpreter.WithLogger(s.logger),
	)
	for {
		c, ok := readChunk(p)
		if !ok {
			fmt.Fprintln(s.stdout)
			return
		}
		trimmed := strings.TrimSpace(c.src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return
			}
			fmt.Fprintln(s.stdout, "unknown command. Type :quit to exit.")
			continue
		}
		if remember != nil {
			remember(strings.ReplaceAll(c.src, "\n", " "))
		}
		err := c.err
		if err == nil {
			err = interp.ExecuteFile(replName, c.stmts)
		}
		if err != nil {
			s.report.diagnostic(interpreter.BuildRuntimeDiagnostic(replName, err))
		}
	}
}

// chunk is one unit of REPL input and the result of parsing it.
type chunk struct {
	src   string
	stmts []ast.Stmt
	err   error
}

// readChunk prompts until the buffered lines form a complete program or fail
// for a reason other than running out of input. ok is false at EOF.
func readChunk(p prompter) (chunk, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() == 0 {
				return chunk{}, false
			}
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return chunk{}, true
		}
		if err != nil {
			return chunk{}, false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if strings.HasPrefix(strings.TrimSpace(b.String()), ":") {
			return chunk{src: b.String()}, true
		}

		stmts, err := parseChunk(b.String())
		if err != nil && incomplete(err) {
			continue
		}
		return chunk{src: b.String(), stmts: stmts, err: err}, true
	}
	src := b.String()
	stmts, err := parseChunk(src)
	return chunk{src: src, stmts: stmts, err: err}, true
}

func parseChunk(src string) ([]ast.Stmt, error) {
	tokens, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	return parser.New(tokens).Parse()
}

// incomplete reports whether more input could fix err: the parser hit the end,
// or a string literal is still open.
func incomplete(err error) bool {
	return parser.IsIncomplete(err) || errors.Is(err, scanner.ErrUnterminatedString)
}
