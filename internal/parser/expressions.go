package parser

import (
	"strconv"

	"github.com/verity-lang/verity/internal/lexer"
)

// Precedence levels for operators
type Precedence int

const (
	_ Precedence = iota
	LOWEST
	ASSIGN      // =
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X !X ~X
	CALL        // f(X) X[Y] X.Y
)

// precedences maps token types to their precedence levels
var precedences = map[lexer.TokenType]Precedence{
	lexer.TokenAssign: ASSIGN,

	lexer.TokenOr:  LOGICAL_OR,
	lexer.TokenAnd: LOGICAL_AND,

	lexer.TokenBitOr:  BITWISE_OR,
	lexer.TokenBitXor: BITWISE_XOR,
	lexer.TokenBitAnd: BITWISE_AND,

	lexer.TokenEq: EQUALS,
	lexer.TokenNe: EQUALS,
	lexer.TokenLt: LESSGREATER,
	lexer.TokenLe: LESSGREATER,
	lexer.TokenGt: LESSGREATER,
	lexer.TokenGe: LESSGREATER,

	lexer.TokenShl: SHIFT,
	lexer.TokenShr: SHIFT,

	lexer.TokenPlus:  SUM,
	lexer.TokenMinus: SUM,

	lexer.TokenMul: PRODUCT,
	lexer.TokenDiv: PRODUCT,
	lexer.TokenMod: PRODUCT,

	lexer.TokenLParen:   CALL,
	lexer.TokenLBracket: CALL,
	lexer.TokenDot:      CALL,
}

// tokenPrecedence returns the precedence of a token type
func tokenPrecedence(t lexer.TokenType) Precedence {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}

// parseAssignExpression parses one AssignExpression: the grammar rule
// shared by contract parameters and ordinary expression statements.
// The cursor stops at the first token that cannot extend the
// expression, which lets callers inspect the delimiter that follows.
func parseAssignExpression(cur *Cursor) (Expression, *ParseError) {
	return parseExpression(cur, LOWEST)
}

// parseExpression parses expressions by precedence climbing
func parseExpression(cur *Cursor, precedence Precedence) (Expression, *ParseError) {
	left, err := parsePrefixExpression(cur)
	if err != nil {
		return nil, err
	}

	for {
		peekPrec := tokenPrecedence(cur.Current().Type)
		if peekPrec == LOWEST || precedence >= peekPrec {
			// Assignment is right associative
			if !(peekPrec == ASSIGN && precedence == ASSIGN) {
				break
			}
		}

		left, err = parseInfixExpression(cur, left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefixExpression parses identifiers, literals, unary operators,
// and grouped expressions
func parsePrefixExpression(cur *Cursor) (Expression, *ParseError) {
	tok := cur.Current()

	switch tok.Type {
	case lexer.TokenIdentifier:
		cur.Next()
		return NewIdentifier(tok.Span, tok.Literal), nil

	case lexer.TokenAssert:
		// assert is a keyword but appears in expression position inside
		// legacy contract bodies as the check primitive
		cur.Next()
		return NewIdentifier(tok.Span, tok.Literal), nil

	case lexer.TokenInteger:
		cur.Next()
		value, err := strconv.ParseInt(tok.Literal, 0, 64)
		if err != nil {
			return nil, syntaxErrorf(tok, "integer parsing", "could not parse %q as integer", tok.Literal)
		}
		return NewLiteral(tok.Span, value, LiteralInteger), nil

	case lexer.TokenFloat:
		cur.Next()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, syntaxErrorf(tok, "float parsing", "could not parse %q as float", tok.Literal)
		}
		return NewLiteral(tok.Span, value, LiteralFloat), nil

	case lexer.TokenString:
		cur.Next()
		return NewLiteral(tok.Span, tok.Literal, LiteralString), nil

	case lexer.TokenBool:
		cur.Next()
		return NewLiteral(tok.Span, tok.Literal == "true", LiteralBool), nil

	case lexer.TokenMinus, lexer.TokenNot, lexer.TokenBitNot:
		cur.Next()
		operand, err := parseExpression(cur, PREFIX)
		if err != nil {
			return nil, err
		}
		span := tok.Span.Union(operand.GetSpan())
		return &UnaryExpression{
			Span:     span,
			Operator: NewOperator(tok.Span, tok.Literal),
			Operand:  operand,
		}, nil

	case lexer.TokenLParen:
		cur.Next()
		expr, err := parseExpression(cur, LOWEST)
		if err != nil {
			return nil, err
		}
		if cur.Current().Type != lexer.TokenRParen {
			return nil, syntaxErrorf(cur.Current(), "expression parsing",
				"expected ')', got %s", cur.Current().Type.String())
		}
		cur.Next()
		return expr, nil

	default:
		return nil, syntaxErrorf(tok, "expression parsing",
			"no prefix parse rule for %s", tok.Type.String())
	}
}

// parseInfixExpression parses binary, assignment, call, index, and
// member expressions; the operator token is under the cursor
func parseInfixExpression(cur *Cursor, left Expression) (Expression, *ParseError) {
	tok := cur.Current()

	switch tok.Type {
	case lexer.TokenLParen:
		return parseCallExpression(cur, left)
	case lexer.TokenLBracket:
		return parseIndexExpression(cur, left)
	case lexer.TokenDot:
		return parseMemberExpression(cur, left)
	case lexer.TokenAssign:
		cur.Next()
		right, err := parseExpression(cur, ASSIGN)
		if err != nil {
			return nil, err
		}
		return &AssignmentExpression{
			Span:  left.GetSpan().Union(right.GetSpan()),
			Left:  left,
			Right: right,
		}, nil
	default:
		precedence := tokenPrecedence(tok.Type)
		cur.Next()
		right, err := parseExpression(cur, precedence)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{
			Span:     left.GetSpan().Union(right.GetSpan()),
			Left:     left,
			Operator: NewOperator(tok.Span, tok.Literal),
			Right:    right,
		}, nil
	}
}

// parseCallExpression parses function call arguments; '(' is under the cursor
func parseCallExpression(cur *Cursor, function Expression) (Expression, *ParseError) {
	cur.Next() // consume '('
	args := make([]Expression, 0)

	if cur.Current().Type != lexer.TokenRParen {
		for {
			arg, err := parseExpression(cur, LOWEST)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if cur.Current().Type != lexer.TokenComma {
				break
			}
			cur.Next()
		}
	}

	if cur.Current().Type != lexer.TokenRParen {
		return nil, syntaxErrorf(cur.Current(), "call arguments",
			"expected ')', got %s", cur.Current().Type.String())
	}
	closing := cur.Next()

	return &CallExpression{
		Span:      function.GetSpan().Union(closing.Span),
		Function:  function,
		Arguments: args,
	}, nil
}

// parseIndexExpression parses index access; '[' is under the cursor
func parseIndexExpression(cur *Cursor, left Expression) (Expression, *ParseError) {
	cur.Next() // consume '['
	index, err := parseExpression(cur, LOWEST)
	if err != nil {
		return nil, err
	}
	if cur.Current().Type != lexer.TokenRBracket {
		return nil, syntaxErrorf(cur.Current(), "index expression",
			"expected ']', got %s", cur.Current().Type.String())
	}
	closing := cur.Next()

	return &IndexExpression{
		Span:  left.GetSpan().Union(closing.Span),
		Left:  left,
		Index: index,
	}, nil
}

// parseMemberExpression parses member access; '.' is under the cursor
func parseMemberExpression(cur *Cursor, object Expression) (Expression, *ParseError) {
	cur.Next() // consume '.'
	tok := cur.Current()
	if tok.Type != lexer.TokenIdentifier {
		return nil, syntaxErrorf(tok, "member access",
			"expected identifier after '.', got %s", tok.Type.String())
	}
	cur.Next()
	member := NewIdentifier(tok.Span, tok.Literal)

	return &MemberExpression{
		Span:   object.GetSpan().Union(tok.Span),
		Object: object,
		Member: member,
	}, nil
}
