package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturn
)

// completion is how a statement finished. A Return travels up through
// blocks, loops and ifs untouched until a call boundary consumes it.
type completion struct {
	kind    completionKind
	value   runtime.Value
	keyword token.Token
}

var normal = completion{kind: completionNormal}

func (i *Interpreter) execute(stmt ast.Stmt) (completion, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if _, err := i.evaluate(s.Expression); err != nil {
			return normal, err
		}
		return normal, nil
	case *ast.PrintStatement:
		value, err := i.evaluate(s.Expression)
		if err != nil {
			return normal, err
		}
		if _, err := fmt.Fprintln(i.stdout, runtime.Stringify(value)); err != nil {
			return normal, fmt.Errorf("print: %w", err)
		}
		return normal, nil
	case *ast.VarDeclaration:
		value, err := i.evaluate(s.Initializer)
		if err != nil {
			return normal, err
		}
		i.env.Define(s.Name.Lexeme, value)
		return normal, nil
	case *ast.Block:
		return i.executeBlock(s.Statements, i.env.Extend())
	case *ast.IfStatement:
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return normal, err
		}
		if runtime.IsTruthy(cond) {
			return i.execute(s.ThenBranch)
		}
		if s.ElseBranch != nil {
			return i.execute(s.ElseBranch)
		}
		return normal, nil
	case *ast.WhileStatement:
		for {
			cond, err := i.evaluate(s.Condition)
			if err != nil {
				return normal, err
			}
			if !runtime.IsTruthy(cond) {
				return normal, nil
			}
			result, err := i.execute(s.Body)
			if err != nil || result.kind == completionReturn {
				return result, err
			}
		}
	case *ast.FunctionDeclaration:
		i.env.Define(s.Name.Lexeme, &runtime.FunctionValue{Declaration: s, Closure: i.env, Path: i.path})
		return normal, nil
	case *ast.ReturnStatement:
		value, err := i.evaluate(s.Value)
		if err != nil {
			return normal, err
		}
		return completion{kind: completionReturn, value: value, keyword: s.Keyword}, nil
	case *ast.ClassDeclaration:
		i.env.Define(s.Name.Lexeme, runtime.NilValue{})
		if err := i.env.Assign(s.Name.Lexeme, &runtime.ClassValue{ClassName: s.Name.Lexeme}); err != nil {
			return normal, i.runtimeError(s.Name, "%s", err.Error())
		}
		return normal, nil
	default:
		return normal, fmt.Errorf("interpreter: unsupported statement %T", stmt)
	}
}

// executeBlock runs stmts with env active and restores the previous
// environment on every exit path.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *runtime.Environment) (completion, error) {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range stmts {
		result, err := i.execute(stmt)
		if err != nil {
			return normal, err
		}
		if result.kind == completionReturn {
			return result, nil
		}
	}
	return normal, nil
}
