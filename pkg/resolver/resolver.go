package resolver

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

// Table maps a Variable or Assign node to the number of environment hops
// between the use site and its declaring scope. Globals have no entry.
type Table map[ast.Expr]int

// Error is a static binding error. Resolution stops at the first one.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Pos.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Pos.Line, e.Token.Lexeme, e.Message)
}

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
)

// Resolver walks a parsed program once, before it runs. Each local scope maps
// a name to whether its initializer has finished (declared vs defined).
type Resolver struct {
	scopes  []map[string]bool
	table   Table
	current functionKind
}

func New() *Resolver {
	return &Resolver{}
}

// Resolve records a distance for every local variable reference in stmts.
// The returned table holds only this call's entries; callers feeding a REPL
// one line at a time merge each result into their own table.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Table, error) {
	r.table = make(Table)
	for _, stmt := range stmts {
		if err := r.resolveStmt(stmt); err != nil {
			return nil, err
		}
	}
	return r.table, nil
}

// Resolve is shorthand for New().Resolve(stmts).
func Resolve(stmts []ast.Stmt) (Table, error) {
	return New().Resolve(stmts)
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		defer r.endScope()
		return r.resolveStmts(s.Statements)
	case *ast.VarDeclaration:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		if err := r.resolveExpr(s.Initializer); err != nil {
			return err
		}
		r.define(s.Name)
		return nil
	case *ast.FunctionDeclaration:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return r.resolveFunction(s, functionPlain)
	case *ast.ClassDeclaration:
		// Method bodies are not walked; classes carry no behavior yet.
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return nil
	case *ast.ExpressionStatement:
		return r.resolveExpr(s.Expression)
	case *ast.PrintStatement:
		return r.resolveExpr(s.Expression)
	case *ast.IfStatement:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		if err := r.resolveStmt(s.ThenBranch); err != nil {
			return err
		}
		if s.ElseBranch != nil {
			return r.resolveStmt(s.ElseBranch)
		}
		return nil
	case *ast.WhileStatement:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		return r.resolveStmt(s.Body)
	case *ast.ReturnStatement:
		if r.current == functionNone {
			return &Error{Token: s.Keyword, Message: "Can't return from top-level code."}
		}
		return r.resolveExpr(s.Value)
	case nil:
		return nil
	default:
		return fmt.Errorf("resolver: unsupported statement %T", stmt)
	}
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := r.resolveStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// resolveFunction binds parameters in the same scope as the body, so a body
// `var` that shadows a parameter is a redeclaration.
func (r *Resolver) resolveFunction(fn *ast.FunctionDeclaration, kind functionKind) error {
	enclosing := r.current
	r.current = kind
	r.beginScope()
	defer func() {
		r.endScope()
		r.current = enclosing
	}()

	for _, param := range fn.Params {
		if err := r.declare(param); err != nil {
			return err
		}
		r.define(param)
	}
	return r.resolveStmts(fn.Body)
}

func (r *Resolver) resolveExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				return &Error{Token: e.Name, Message: "Can't read local variable in its own initializer."}
			}
		}
		r.resolveLocal(e, e.Name)
		return nil
	case *ast.Assign:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e, e.Name)
		return nil
	case *ast.Binary:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)
	case *ast.Unary:
		return r.resolveExpr(e.Right)
	case *ast.Grouping:
		return r.resolveExpr(e.Expression)
	case *ast.Call:
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Arguments {
			if err := r.resolveExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.Literal, nil:
		return nil
	default:
		return fmt.Errorf("resolver: unsupported expression %T", expr)
	}
}

func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.table[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		return &Error{Token: name, Message: "Already a variable with this name in this scope."}
	}
	scope[name.Lexeme] = false
	return nil
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}
