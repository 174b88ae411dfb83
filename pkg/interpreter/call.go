package interpreter

import (
	"errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateCall(e *ast.Call) (runtime.Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(e.Arguments))
	for _, argExpr := range e.Arguments {
		arg, err := i.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return i.call(callee, args, e.Paren)
}

// CallFunction invokes a callable value from host code with the same checks
// a call expression performs.
func (i *Interpreter) CallFunction(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	name := "<host>"
	if callable, ok := callee.(runtime.Callable); ok {
		name = callable.Name()
	}
	return i.call(callee, args, token.Synthetic(token.RightParen, name))
}

func (i *Interpreter) call(callee runtime.Value, args []runtime.Value, site token.Token) (runtime.Value, error) {
	callable, ok := callee.(runtime.Callable)
	if !ok {
		kind := "nil"
		if callee != nil {
			kind = callee.Kind().String()
		}
		return nil, i.runtimeError(site, "Value of type %s is not callable.", kind)
	}
	if len(args) != callable.Arity() {
		return nil, i.runtimeError(site, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}
	if len(i.callStack) >= maxCallDepth {
		return nil, i.runtimeError(site, "Stack overflow.")
	}

	i.callStack = append(i.callStack, CallFrame{Function: callable.Name(), Site: site, Path: i.path})
	defer func() { i.callStack = i.callStack[:len(i.callStack)-1] }()

	switch fn := callable.(type) {
	case *runtime.FunctionValue:
		return i.callUserFunction(fn, args)
	case *runtime.NativeFunctionValue:
		result, err := fn.Impl(&runtime.NativeCallContext{Env: i.env}, args)
		if err != nil {
			var rtErr *RuntimeError
			if errors.As(err, &rtErr) {
				return nil, rtErr
			}
			return nil, i.runtimeError(site, "%s", err.Error())
		}
		if result == nil {
			result = runtime.NilValue{}
		}
		return result, nil
	default:
		return nil, i.runtimeError(site, "Value of type %s is not callable.", callable.Kind())
	}
}

// callUserFunction binds arguments in a fresh environment parented at the
// closure, not at the caller.
func (i *Interpreter) callUserFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	if fn.Path != "" {
		previous := i.path
		i.path = fn.Path
		defer func() { i.path = previous }()
	}

	env := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[idx])
	}
	result, err := i.executeBlock(fn.Declaration.Body, env)
	if err != nil {
		return nil, err
	}
	if result.kind == completionReturn {
		return result.value, nil
	}
	return runtime.NilValue{}, nil
}
