package scanner

import (
	"errors"
	"fmt"
	"strconv"

	"lox/interpreter-go/pkg/token"
)

var (
	// ErrUnterminatedString is reported when input ends inside a string literal.
	ErrUnterminatedString = errors.New("unterminated string")
	// ErrUnrecognizedCharacter is reported for bytes outside the token alphabet.
	ErrUnrecognizedCharacter = errors.New("unrecognized character")
)

// Error is a lexical failure. Scanning stops at the first one.
type Error struct {
	Err    error
	Lexeme string
	Pos    token.Position
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrUnrecognizedCharacter) {
		return fmt.Sprintf("[line %d] Error: Unrecognized character '%s'.", e.Pos.Line, e.Lexeme)
	}
	return fmt.Sprintf("[line %d] Error: Unterminated string.", e.Pos.Line)
}

func (e *Error) Unwrap() error { return e.Err }

// Scanner converts a source buffer into tokens in a single left-to-right pass.
// A Scanner is not restartable; build a new one per buffer.
type Scanner struct {
	src       string
	tokens    []token.Token
	start     int
	current   int
	line      int
	lineStart int

	startLine   int
	startColumn int
}

// New returns a scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// FromBytes returns a scanner over a raw file buffer.
func FromBytes(src []byte) *Scanner {
	return New(string(src))
}

// ScanTokens consumes the whole buffer. On success the slice always ends with
// exactly one EOF token.
func (s *Scanner) ScanTokens() ([]token.Token, error) {
	for !s.isAtEnd() {
		s.start = s.current
		s.startLine = s.line
		s.startColumn = s.current - s.lineStart + 1
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", s.line, s.current-s.lineStart+1))
	return s.tokens, nil
}

// Scan is a convenience wrapper around New(src).ScanTokens().
func Scan(src string) ([]token.Token, error) {
	return New(src).ScanTokens()
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	switch c {
	case ' ', '\r', '\t':
		return nil
	case '\n':
		s.newline()
		return nil
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)
	case '!':
		s.addToken(s.pick('=', token.BangEqual, token.Bang))
	case '=':
		s.addToken(s.pick('=', token.EqualEqual, token.Equal))
	case '<':
		s.addToken(s.pick('=', token.LessEqual, token.Less))
	case '>':
		s.addToken(s.pick('=', token.GreaterEqual, token.Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
			return nil
		}
		s.addToken(token.Slash)
	case '"':
		return s.stringLiteral()
	default:
		switch {
		case isDigit(c):
			return s.numberLiteral()
		case isAlpha(c):
			s.identifier()
		default:
			return s.errorf(ErrUnrecognizedCharacter)
		}
	}
	return nil
}

func (s *Scanner) stringLiteral() error {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.advance() == '\n' {
			s.newline()
		}
	}
	if s.isAtEnd() {
		return s.errorf(ErrUnterminatedString)
	}
	s.advance()
	s.addLiteral(token.String, s.src[s.start+1:s.current-1])
	return nil
}

func (s *Scanner) numberLiteral() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	// Literals past the float64 range become +Inf.
	value, err := strconv.ParseFloat(s.src[s.start:s.current], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("scanner: number literal %q: %w", s.src[s.start:s.current], err)
	}
	s.addLiteral(token.Number, value)
	return nil
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.src[s.start:s.current]
	if kind, ok := token.LookupKeyword(text); ok {
		s.addToken(kind)
		return
	}
	s.addToken(token.Identifier)
}

func (s *Scanner) pick(expected byte, matched, fallback token.Type) token.Type {
	if s.match(expected) {
		return matched
	}
	return fallback
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.src)
}

func (s *Scanner) newline() {
	s.line++
	s.lineStart = s.current
}

func (s *Scanner) addToken(kind token.Type) {
	s.addLiteral(kind, nil)
}

func (s *Scanner) addLiteral(kind token.Type, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Type:    kind,
		Lexeme:  s.src[s.start:s.current],
		Literal: literal,
		Pos:     token.Position{Line: s.startLine, Column: s.startColumn},
	})
}

func (s *Scanner) errorf(kind error) error {
	return &Error{
		Err:    kind,
		Lexeme: s.src[s.start:s.current],
		Pos:    token.Position{Line: s.startLine, Column: s.startColumn},
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
