// Package lexer implements the Verity lexical analyzer for the
// declaration subset the contract front end consumes: function and
// aggregate headers, contract expressions, and legacy contract blocks.
package lexer

import (
	"fmt"

	"github.com/verity-lang/verity/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenComment

	// Literals
	TokenIdentifier
	TokenInteger
	TokenFloat
	TokenString
	TokenBool

	// Keywords
	TokenFn
	TokenStruct
	TokenInterface
	TokenIn
	TokenOut
	TokenInvariant
	TokenAssert
	TokenReturn
	TokenLet
	TokenIf
	TokenElse

	// Operators
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenMod
	TokenAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenBitNot
	TokenShl
	TokenShr

	// Delimiters
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenColon
	TokenArrow
	TokenQuestion
)

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Span    position.Span
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Pos: %s}",
		t.Type.String(), t.Literal, t.Span.Start.String())
}

// Pos returns the starting position of the token
func (t Token) Pos() position.Position {
	return t.Span.Start
}

// tokenNames provides string representations for token types
var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenError:   "ERROR",
	TokenComment: "COMMENT",

	TokenIdentifier: "IDENTIFIER",
	TokenInteger:    "INTEGER",
	TokenFloat:      "FLOAT",
	TokenString:     "STRING",
	TokenBool:       "BOOL",

	TokenFn:        "FN",
	TokenStruct:    "STRUCT",
	TokenInterface: "INTERFACE",
	TokenIn:        "IN",
	TokenOut:       "OUT",
	TokenInvariant: "INVARIANT",
	TokenAssert:    "ASSERT",
	TokenReturn:    "RETURN",
	TokenLet:       "LET",
	TokenIf:        "IF",
	TokenElse:      "ELSE",

	TokenPlus:   "PLUS",
	TokenMinus:  "MINUS",
	TokenMul:    "MUL",
	TokenDiv:    "DIV",
	TokenMod:    "MOD",
	TokenAssign: "ASSIGN",
	TokenEq:     "EQ",
	TokenNe:     "NE",
	TokenLt:     "LT",
	TokenLe:     "LE",
	TokenGt:     "GT",
	TokenGe:     "GE",
	TokenAnd:    "AND",
	TokenOr:     "OR",
	TokenNot:    "NOT",
	TokenBitAnd: "BIT_AND",
	TokenBitOr:  "BIT_OR",
	TokenBitXor: "BIT_XOR",
	TokenBitNot: "BIT_NOT",
	TokenShl:    "SHL",
	TokenShr:    "SHR",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenSemicolon: "SEMICOLON",
	TokenComma:     "COMMA",
	TokenDot:       "DOT",
	TokenColon:     "COLON",
	TokenArrow:     "ARROW",
	TokenQuestion:  "QUESTION",
}

// keywords maps string keywords to their token types
var keywords = map[string]TokenType{
	"fn":        TokenFn,
	"struct":    TokenStruct,
	"interface": TokenInterface,
	"in":        TokenIn,
	"out":       TokenOut,
	"invariant": TokenInvariant,
	"assert":    TokenAssert,
	"return":    TokenReturn,
	"let":       TokenLet,
	"if":        TokenIf,
	"else":      TokenElse,
	"true":      TokenBool,
	"false":     TokenBool,
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	filename     string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		filename: filename,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns the token stream, ending
// with a TokenEOF token. Comments are dropped; the contract engine
// operates on significant tokens only.
func Tokenize(input, filename string) []Token {
	l := NewWithFilename(input, filename)
	tokens := make([]Token, 0, 64)
	for {
		tok := l.NextToken()
		if tok.Type == TokenComment {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents "EOF"
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips whitespace characters including newlines
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// readIdentifier reads an identifier starting at the current character
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.position
	tokType := TokenInteger

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		tokType = TokenFloat
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.position], tokType
}

// readString reads a string literal; the opening quote has been seen.
// Returns the literal without quotes and whether it was terminated.
func (l *Lexer) readString() (string, bool) {
	start := l.position + 1
	for {
		l.readChar()
		if l.ch == '"' {
			return l.input[start:l.position], true
		}
		if l.ch == 0 {
			return l.input[start:l.position], false
		}
		if l.ch == '\\' {
			l.readChar() // skip escaped character
		}
	}
}

// readComment reads a // or /* */ comment
func (l *Lexer) readComment() string {
	start := l.position
	if l.peekChar() == '/' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	} else {
		l.readChar() // '/'
		l.readChar() // '*'
		for {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				break
			}
			if l.ch == 0 {
				break
			}
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// NextToken scans the input and returns the next token with full position information
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	startPos := l.currentPosition()

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(TokenEq, "==", startPos)
		}
		return l.emit(TokenAssign, "=", startPos)
	case '+':
		return l.emit(TokenPlus, "+", startPos)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			return l.emit(TokenArrow, "->", startPos)
		}
		return l.emit(TokenMinus, "-", startPos)
	case '*':
		return l.emit(TokenMul, "*", startPos)
	case '/':
		if l.peekChar() == '/' || l.peekChar() == '*' {
			text := l.readComment()
			return l.emitAt(TokenComment, text, startPos)
		}
		return l.emit(TokenDiv, "/", startPos)
	case '%':
		return l.emit(TokenMod, "%", startPos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(TokenNe, "!=", startPos)
		}
		return l.emit(TokenNot, "!", startPos)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(TokenLe, "<=", startPos)
		}
		if l.peekChar() == '<' {
			l.readChar()
			return l.emit(TokenShl, "<<", startPos)
		}
		return l.emit(TokenLt, "<", startPos)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(TokenGe, ">=", startPos)
		}
		if l.peekChar() == '>' {
			l.readChar()
			return l.emit(TokenShr, ">>", startPos)
		}
		return l.emit(TokenGt, ">", startPos)
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			return l.emit(TokenAnd, "&&", startPos)
		}
		return l.emit(TokenBitAnd, "&", startPos)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			return l.emit(TokenOr, "||", startPos)
		}
		return l.emit(TokenBitOr, "|", startPos)
	case '^':
		return l.emit(TokenBitXor, "^", startPos)
	case '~':
		return l.emit(TokenBitNot, "~", startPos)
	case ':':
		return l.emit(TokenColon, ":", startPos)
	case ';':
		return l.emit(TokenSemicolon, ";", startPos)
	case ',':
		return l.emit(TokenComma, ",", startPos)
	case '.':
		return l.emit(TokenDot, ".", startPos)
	case '(':
		return l.emit(TokenLParen, "(", startPos)
	case ')':
		return l.emit(TokenRParen, ")", startPos)
	case '{':
		return l.emit(TokenLBrace, "{", startPos)
	case '}':
		return l.emit(TokenRBrace, "}", startPos)
	case '[':
		return l.emit(TokenLBracket, "[", startPos)
	case ']':
		return l.emit(TokenRBracket, "]", startPos)
	case '?':
		return l.emit(TokenQuestion, "?", startPos)
	case '"':
		literal, terminated := l.readString()
		tok := l.emit(TokenString, literal, startPos)
		if !terminated {
			tok.Type = TokenError
			tok.Literal = "unterminated string literal"
		}
		return tok
	case 0:
		return l.emitAt(TokenEOF, "", startPos)
	default:
		if isLetter(l.ch) || l.ch == '_' {
			literal := l.readIdentifier()
			return l.emitAt(lookupIdent(literal), literal, startPos)
		}
		if isDigit(l.ch) {
			literal, tokType := l.readNumber()
			return l.emitAt(tokType, literal, startPos)
		}
		return l.emit(TokenError, string(l.ch), startPos)
	}
}

// emit creates a token whose text ends at the current character and
// advances past it.
func (l *Lexer) emit(tokenType TokenType, literal string, startPos position.Position) Token {
	l.readChar()
	return l.emitAt(tokenType, literal, startPos)
}

// emitAt creates a token spanning from startPos to the current position
func (l *Lexer) emitAt(tokenType TokenType, literal string, startPos position.Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Span: position.Span{
			Start: startPos,
			End:   l.currentPosition(),
		},
	}
}

// currentPosition returns the current position in the source
func (l *Lexer) currentPosition() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.position,
	}
}

// lookupIdent checks if identifier is keyword
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}
