package parser

import (
	"fmt"

	"github.com/verity-lang/verity/internal/lexer"
	"github.com/verity-lang/verity/internal/position"
)

// ErrorKind classifies parse failures. The contract-specific kinds are
// a closed set; everything else is ErrSyntax.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrMalformedContractParameters
	ErrAmbiguousOutExpression
	ErrConflictingReturnIdentifier
	ErrMissingContractTerminator
	ErrContractsNotEnabled
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrMalformedContractParameters:
		return "malformed contract parameters"
	case ErrAmbiguousOutExpression:
		return "ambiguous out expression"
	case ErrConflictingReturnIdentifier:
		return "conflicting return identifier"
	case ErrMissingContractTerminator:
		return "missing contract terminator"
	case ErrContractsNotEnabled:
		return "contract expressions not enabled"
	default:
		return "unknown error"
	}
}

// Code returns the diagnostic code for the error kind
func (k ErrorKind) Code() string {
	switch k {
	case ErrMalformedContractParameters:
		return "E1101"
	case ErrAmbiguousOutExpression:
		return "E1102"
	case ErrConflictingReturnIdentifier:
		return "E1103"
	case ErrMissingContractTerminator:
		return "E1104"
	case ErrContractsNotEnabled:
		return "E1105"
	default:
		return "E1001"
	}
}

// ParseError represents a parsing error with kind, position, and context
type ParseError struct {
	Kind     ErrorKind
	Position position.Position
	Message  string
	Context  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Position.String(), e.Message)
}

// newError creates a ParseError anchored at the given token
func newError(kind ErrorKind, tok lexer.Token, message, context string) *ParseError {
	return errorAt(kind, tok.Pos(), message, context)
}

// errorAt creates a ParseError anchored at an arbitrary position
func errorAt(kind ErrorKind, pos position.Position, message, context string) *ParseError {
	return &ParseError{
		Kind:     kind,
		Position: pos,
		Message:  message,
		Context:  context,
	}
}

func syntaxErrorf(tok lexer.Token, context, format string, args ...interface{}) *ParseError {
	return newError(ErrSyntax, tok, fmt.Sprintf(format, args...), context)
}
