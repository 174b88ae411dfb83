package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluate(expr ast.Expr) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		value, err := runtime.FromLiteral(e.Value)
		if err != nil {
			return nil, fmt.Errorf("interpreter: %w", err)
		}
		return value, nil
	case *ast.Grouping:
		return i.evaluate(e.Expression)
	case *ast.Unary:
		return i.evaluateUnary(e)
	case *ast.Binary:
		if e.IsLogical() {
			return i.evaluateLogical(e)
		}
		return i.evaluateBinary(e)
	case *ast.Variable:
		return i.lookUpVariable(e.Name, e)
	case *ast.Assign:
		value, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.locals[e]; ok {
			err = i.env.AssignAt(distance, e.Name.Lexeme, value)
		} else {
			err = i.global.Assign(e.Name.Lexeme, value)
		}
		if err != nil {
			return nil, i.runtimeError(e.Name, "%s", err.Error())
		}
		return value, nil
	case *ast.Call:
		return i.evaluateCall(e)
	default:
		return nil, fmt.Errorf("interpreter: unsupported expression %T", expr)
	}
}

func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (runtime.Value, error) {
	var (
		value runtime.Value
		err   error
	)
	if distance, ok := i.locals[expr]; ok {
		value, err = i.env.GetAt(distance, name.Lexeme)
	} else {
		value, err = i.global.Get(name.Lexeme)
	}
	if err != nil {
		return nil, i.runtimeError(name, "%s", err.Error())
	}
	return value, nil
}

func (i *Interpreter) evaluateUnary(e *ast.Unary) (runtime.Value, error) {
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, i.runtimeError(e.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.IsTruthy(right)}, nil
	default:
		return nil, i.runtimeError(e.Operator, "Unsupported unary operator %s.", e.Operator.Lexeme)
	}
}

// evaluateLogical returns the deciding operand itself, not a boolean.
func (i *Interpreter) evaluateLogical(e *ast.Binary) (runtime.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Operator.Type == token.Or {
		if runtime.IsTruthy(left) {
			return left, nil
		}
	} else if !runtime.IsTruthy(left) {
		return left, nil
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evaluateBinary(e *ast.Binary) (runtime.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.ValuesEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.ValuesEqual(left, right)}, nil
	case token.Plus:
		switch l := left.(type) {
		case runtime.NumberValue:
			if r, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: l.Val + r.Val}, nil
			}
		case runtime.StringValue:
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		}
		return nil, i.runtimeError(e.Operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, i.runtimeError(e.Operator, "Operands must be numbers.")
	}
	switch e.Operator.Type {
	case token.Minus:
		return runtime.NumberValue{Val: l.Val - r.Val}, nil
	case token.Star:
		return runtime.NumberValue{Val: l.Val * r.Val}, nil
	case token.Slash:
		return runtime.NumberValue{Val: l.Val / r.Val}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l.Val > r.Val}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l.Val >= r.Val}, nil
	case token.Less:
		return runtime.BoolValue{Val: l.Val < r.Val}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l.Val <= r.Val}, nil
	default:
		return nil, i.runtimeError(e.Operator, "Unsupported binary operator %s.", e.Operator.Lexeme)
	}
}
