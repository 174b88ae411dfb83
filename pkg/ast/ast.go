package ast

import "lox/interpreter-go/pkg/token"

type NodeType string

const (
	NodeLiteral             NodeType = "Literal"
	NodeGrouping            NodeType = "Grouping"
	NodeUnary               NodeType = "Unary"
	NodeBinary              NodeType = "Binary"
	NodeVariable            NodeType = "Variable"
	NodeAssign              NodeType = "Assign"
	NodeCall                NodeType = "Call"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeVarDeclaration      NodeType = "VarDeclaration"
	NodeBlock               NodeType = "Block"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeClassDeclaration    NodeType = "ClassDeclaration"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

// Expr is the closed set of expression nodes. Nodes are compared by pointer
// identity, which is what the resolver keys its side table on.
type Expr interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Stmt is the closed set of statement nodes.
type Stmt interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expressions

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	nodeImpl
	expressionMarker

	Value any `json:"value"`
}

func NewLiteral(value any) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: value}
}

type Grouping struct {
	nodeImpl
	expressionMarker

	Expression Expr `json:"expression"`
}

func NewGrouping(expr Expr) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping), Expression: expr}
}

type Unary struct {
	nodeImpl
	expressionMarker

	Operator token.Token `json:"operator"`
	Right    Expr        `json:"right"`
}

func NewUnary(operator token.Token, right Expr) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: operator, Right: right}
}

// Binary covers arithmetic, comparison and equality operators as well as the
// short-circuiting `and` / `or`, distinguished by the operator token type.
type Binary struct {
	nodeImpl
	expressionMarker

	Left     Expr        `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expr        `json:"right"`
}

func NewBinary(left Expr, operator token.Token, right Expr) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary), Left: left, Operator: operator, Right: right}
}

// IsLogical reports whether the node short-circuits.
func (b *Binary) IsLogical() bool {
	return b.Operator.Type == token.And || b.Operator.Type == token.Or
}

type Variable struct {
	nodeImpl
	expressionMarker

	Name token.Token `json:"name"`
}

func NewVariable(name token.Token) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type Assign struct {
	nodeImpl
	expressionMarker

	Name  token.Token `json:"name"`
	Value Expr        `json:"value"`
}

func NewAssign(name token.Token, value Expr) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign), Name: name, Value: value}
}

// Call keeps the closing paren so runtime errors can point at the call site.
type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expr        `json:"callee"`
	Paren     token.Token `json:"paren"`
	Arguments []Expr      `json:"arguments"`
}

func NewCall(callee Expr, paren token.Token, args []Expr) *Call {
	if args == nil {
		args = make([]Expr, 0)
	}
	return &Call{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Paren: paren, Arguments: args}
}

// Statements

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expr `json:"expression"`
}

func NewExpressionStatement(expr Expr) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Expression Expr `json:"expression"`
}

func NewPrintStatement(expr Expr) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Expression: expr}
}

// VarDeclaration always has an initializer; the parser fills in a nil literal
// when the source omits one.
type VarDeclaration struct {
	nodeImpl
	statementMarker

	Name        token.Token `json:"name"`
	Initializer Expr        `json:"initializer"`
}

func NewVarDeclaration(name token.Token, initializer Expr) *VarDeclaration {
	if initializer == nil {
		initializer = NewLiteral(nil)
	}
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), Name: name, Initializer: initializer}
}

type Block struct {
	nodeImpl
	statementMarker

	Statements []Stmt `json:"statements"`
}

func NewBlock(stmts []Stmt) *Block {
	if stmts == nil {
		stmts = make([]Stmt, 0)
	}
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: stmts}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition  Expr `json:"condition"`
	ThenBranch Stmt `json:"thenBranch"`
	ElseBranch Stmt `json:"elseBranch,omitempty"`
}

func NewIfStatement(condition Expr, thenBranch, elseBranch Stmt) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expr `json:"condition"`
	Body      Stmt `json:"body"`
}

func NewWhileStatement(condition Expr, body Stmt) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

// FunctionDeclaration is shared by every closure created from it and must not
// be mutated after parsing.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name   token.Token   `json:"name"`
	Params []token.Token `json:"params"`
	Body   []Stmt        `json:"body"`
}

func NewFunctionDeclaration(name token.Token, params []token.Token, body []Stmt) *FunctionDeclaration {
	if params == nil {
		params = make([]token.Token, 0)
	}
	if body == nil {
		body = make([]Stmt, 0)
	}
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
	Value   Expr        `json:"value"`
}

func NewReturnStatement(keyword token.Token, value Expr) *ReturnStatement {
	if value == nil {
		value = NewLiteral(nil)
	}
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Keyword: keyword, Value: value}
}

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	Name    token.Token            `json:"name"`
	Methods []*FunctionDeclaration `json:"methods"`
}

func NewClassDeclaration(name token.Token, methods []*FunctionDeclaration) *ClassDeclaration {
	if methods == nil {
		methods = make([]*FunctionDeclaration, 0)
	}
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, Methods: methods}
}
