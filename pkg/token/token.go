package token

import "fmt"

// Type identifies the lexical category of a token.
type Type int

const (
	// Single-character tokens.
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var typeNames = [...]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	Fun:          "FUN",
	For:          "FOR",
	If:           "IF",
	Nil:          "NIL",
	Or:           "OR",
	Print:        "PRINT",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	EOF:          "EOF",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("unknown_token_%d", int(t))
}

// MarshalText renders the type by name so JSON dumps stay readable.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

var keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// LookupKeyword reports the keyword type for ident, if it is reserved.
func LookupKeyword(ident string) (Type, bool) {
	t, ok := keywords[ident]
	return t, ok
}

// IsKeyword reports whether the type belongs to the reserved word set.
func (t Type) IsKeyword() bool {
	return t >= And && t <= While
}

// Position locates a token in its source buffer. Line and Column are 1-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexical unit produced by the scanner.
//
// Literal holds the decoded payload for NUMBER (float64) and STRING (string)
// tokens and is nil for everything else.
type Token struct {
	Type    Type     `json:"kind"`
	Lexeme  string   `json:"lexeme"`
	Literal any      `json:"literal,omitempty"`
	Pos     Position `json:"pos"`
}

// New builds a token without a literal payload.
func New(t Type, lexeme string, line, column int) Token {
	return Token{Type: t, Lexeme: lexeme, Pos: Position{Line: line, Column: column}}
}

// Synthetic builds a token that does not originate from source text, such as
// the implicit `true` condition of a desugared for loop.
func Synthetic(t Type, lexeme string) Token {
	return Token{Type: t, Lexeme: lexeme}
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
}

// Line is shorthand for t.Pos.Line.
func (t Token) Line() int { return t.Pos.Line }
