package ast

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a parenthesized prefix form, e.g. `(* (- 123) (group 45.67))`.
func Print(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

// PrintProgram renders one top-level statement per line.
func PrintProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, stmt := range stmts {
		writeNode(&b, stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalProgram encodes statements as indented JSON; every node carries its
// "type" discriminator.
func MarshalProgram(stmts []Stmt) ([]byte, error) {
	if stmts == nil {
		stmts = make([]Stmt, 0)
	}
	return json.MarshalIndent(stmts, "", "  ")
}

// FormatLiteral renders a literal payload the way the printer does.
func FormatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *Literal:
		b.WriteString(FormatLiteral(n.Value))
	case *Grouping:
		parenthesize(b, "group", n.Expression)
	case *Unary:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *Binary:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *Assign:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *Call:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarDeclaration:
		parenthesize(b, "var "+n.Name.Lexeme, n.Initializer)
	case *Block:
		parenthesize(b, "block", stmtNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch != nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch, n.ElseBranch)
		} else {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
		}
	case *WhileStatement:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionDeclaration:
		writeFunction(b, "fun", n)
	case *ReturnStatement:
		parenthesize(b, "return", n.Value)
	case *ClassDeclaration:
		b.WriteString("(class ")
		b.WriteString(n.Name.Lexeme)
		for _, method := range n.Methods {
			b.WriteByte(' ')
			writeFunction(b, "method", method)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

func writeFunction(b *strings.Builder, head string, fn *FunctionDeclaration) {
	params := make([]string, 0, len(fn.Params))
	for _, param := range fn.Params {
		params = append(params, param.Lexeme)
	}
	name := fmt.Sprintf("%s %s (%s)", head, fn.Name.Lexeme, strings.Join(params, " "))
	parenthesize(b, name, stmtNodes(fn.Body)...)
}

func stmtNodes(stmts []Stmt) []Node {
	nodes := make([]Node, 0, len(stmts))
	for _, stmt := range stmts {
		nodes = append(nodes, stmt)
	}
	return nodes
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, node := range nodes {
		b.WriteByte(' ')
		writeNode(b, node)
	}
	b.WriteByte(')')
}
