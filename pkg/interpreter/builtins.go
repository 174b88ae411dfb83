package interpreter

import (
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) defineBuiltins() {
	i.DefineNative("clock", 0, func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: float64(i.now().UnixMilli())}, nil
	})
}

// DefineNative registers a host function in the global environment.
func (i *Interpreter) DefineNative(name string, arity int, impl runtime.NativeFunc) {
	i.global.Define(name, &runtime.NativeFunctionValue{FuncName: name, ParamCount: arity, Impl: impl})
}
