package ast

import "lox/interpreter-go/pkg/token"

// Token helpers. Builders use synthetic tokens so hand-built trees print and
// evaluate like parsed ones.

func Ident(name string) token.Token {
	return token.Synthetic(token.Identifier, name)
}

var opLexemes = map[token.Type]string{
	token.Minus:        "-",
	token.Plus:         "+",
	token.Slash:        "/",
	token.Star:         "*",
	token.Bang:         "!",
	token.BangEqual:    "!=",
	token.EqualEqual:   "==",
	token.Greater:      ">",
	token.GreaterEqual: ">=",
	token.Less:         "<",
	token.LessEqual:    "<=",
	token.And:          "and",
	token.Or:           "or",
	token.Return:       "return",
	token.RightParen:   ")",
}

func Op(kind token.Type) token.Token {
	return token.Synthetic(kind, opLexemes[kind])
}

// Literal helpers.

func Num(value float64) *Literal { return NewLiteral(value) }

func Str(value string) *Literal { return NewLiteral(value) }

func Bool(value bool) *Literal { return NewLiteral(value) }

func Nil() *Literal { return NewLiteral(nil) }

// Expression helpers.

func Var(name string) *Variable { return NewVariable(Ident(name)) }

func Set(name string, value Expr) *Assign { return NewAssign(Ident(name), value) }

func Group(expr Expr) *Grouping { return NewGrouping(expr) }

func Neg(expr Expr) *Unary { return NewUnary(Op(token.Minus), expr) }

func Not(expr Expr) *Unary { return NewUnary(Op(token.Bang), expr) }

func Bin(left Expr, kind token.Type, right Expr) *Binary {
	return NewBinary(left, Op(kind), right)
}

func And(left, right Expr) *Binary { return Bin(left, token.And, right) }

func Or(left, right Expr) *Binary { return Bin(left, token.Or, right) }

func CallExpr(callee Expr, args ...Expr) *Call {
	return NewCall(callee, Op(token.RightParen), args)
}

// Statement helpers.

func ExprStmt(expr Expr) *ExpressionStatement { return NewExpressionStatement(expr) }

func PrintStmt(expr Expr) *PrintStatement { return NewPrintStatement(expr) }

func Let(name string, initializer Expr) *VarDeclaration {
	return NewVarDeclaration(Ident(name), initializer)
}

func Blk(stmts ...Stmt) *Block { return NewBlock(stmts) }

func If(condition Expr, thenBranch Stmt, elseBranch Stmt) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func While(condition Expr, body Stmt) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func Fn(name string, params []string, body ...Stmt) *FunctionDeclaration {
	tokens := make([]token.Token, 0, len(params))
	for _, param := range params {
		tokens = append(tokens, Ident(param))
	}
	return NewFunctionDeclaration(Ident(name), tokens, body)
}

func Ret(value Expr) *ReturnStatement { return NewReturnStatement(Op(token.Return), value) }

func Class(name string, methods ...*FunctionDeclaration) *ClassDeclaration {
	return NewClassDeclaration(Ident(name), methods)
}
