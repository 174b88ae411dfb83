package runtime

import (
	"fmt"
	"math"
	"strconv"

	"lox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// Callable is implemented by every value that can appear in call position.
type Callable interface {
	Value
	Arity() int
	Name() string
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Functions and classes
//-----------------------------------------------------------------------------

// FunctionValue pairs a declaration with the environment that was active when
// the declaration executed. Every closure made from one declaration shares
// the same *ast.FunctionDeclaration. Path names the script the declaration
// executed in; it is empty for code without a file.
type FunctionValue struct {
	Declaration *ast.FunctionDeclaration
	Closure     *Environment
	Path        string
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

func (v *FunctionValue) Name() string { return v.Declaration.Name.Lexeme }

// NativeCallContext gives host functions access to the calling environment.
type NativeCallContext struct {
	Env *Environment
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	FuncName   string
	ParamCount int
	Impl       NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Arity() int { return v.ParamCount }

func (v *NativeFunctionValue) Name() string { return v.FuncName }

// ClassValue only carries its name; classes cannot be instantiated.
type ClassValue struct {
	ClassName string
}

func (v *ClassValue) Kind() Kind { return KindClass }

//-----------------------------------------------------------------------------
// Conversions
//-----------------------------------------------------------------------------

// FromLiteral converts a scanner literal payload into a runtime value.
func FromLiteral(literal any) (Value, error) {
	switch v := literal.(type) {
	case nil:
		return NilValue{}, nil
	case bool:
		return BoolValue{Val: v}, nil
	case float64:
		return NumberValue{Val: v}, nil
	case string:
		return StringValue{Val: v}, nil
	default:
		return nil, fmt.Errorf("unsupported literal %T", literal)
	}
}

// IsTruthy treats nil and false as falsy and everything else as truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// ValuesEqual compares by kind first; values of different kinds are never
// equal. Functions and classes compare by identity.
func ValuesEqual(a, b Value) bool {
	if a == nil {
		a = NilValue{}
	}
	if b == nil {
		b = NilValue{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NilValue:
		return true
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case NumberValue:
		return av.Val == b.(NumberValue).Val
	case StringValue:
		return av.Val == b.(StringValue).Val
	case *FunctionValue:
		return av == b.(*FunctionValue)
	case *NativeFunctionValue:
		return av == b.(*NativeFunctionValue)
	case *ClassValue:
		return av == b.(*ClassValue)
	default:
		return false
	}
}

// Stringify renders a value the way `print` shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, NilValue:
		return "nil"
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case NumberValue:
		return FormatNumber(val.Val)
	case StringValue:
		return val.Val
	case *FunctionValue:
		return fmt.Sprintf("<fn %s>", val.Name())
	case *NativeFunctionValue:
		return fmt.Sprintf("<native fn %s>", val.Name())
	case *ClassValue:
		return val.ClassName
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

// FormatNumber prints the shortest decimal that round-trips, so 3.0 prints
// as "3" and 2.5 as "2.5". Non-finite values print as inf, -inf and nan.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
