package parser

import (
	"fmt"

	"github.com/verity-lang/verity/internal/lexer"
)

// parseLegacyContracts parses the braced-block contract forms that may
// follow contract expressions on the same declarator: in { ... },
// out { ... }, out (identifier) { ... }, and, at aggregate scope,
// invariant { ... }. The deferred out(identifier) case from the
// recognizer resolves here: either a '{' follows and the legacy block
// parses, or the documented ambiguity is reported with a targeted
// message instead of a generic syntax error.
func parseLegacyContracts(cur *Cursor, ctx ContractContext, deferred *deferredOut) (*LegacyContracts, *ParseError) {
	legacy := &LegacyContracts{}

	for {
		tok := cur.Current()

		switch {
		case ctx != ContextAggregate && tok.Type == lexer.TokenIn && cur.Peek(1).Type == lexer.TokenLBrace:
			if legacy.In != nil {
				return nil, syntaxErrorf(tok, "legacy contracts", "duplicate in contract block")
			}
			cur.Next()
			body, err := parseBlockStatement(cur)
			if err != nil {
				return nil, err
			}
			legacy.In = &LoweredContract{
				Span: tok.Span.Union(body.Span),
				Kind: ContractIn,
				Body: body,
			}

		case ctx != ContextAggregate && tok.Type == lexer.TokenOut:
			done, err := parseLegacyOut(cur, legacy, deferred)
			if err != nil {
				return nil, err
			}
			if done {
				return legacy, nil
			}

		case ctx == ContextAggregate && tok.Type == lexer.TokenInvariant && cur.Peek(1).Type == lexer.TokenLBrace:
			if legacy.Invariant != nil {
				return nil, syntaxErrorf(tok, "legacy contracts", "duplicate invariant contract block")
			}
			cur.Next()
			body, err := parseBlockStatement(cur)
			if err != nil {
				return nil, err
			}
			legacy.Invariant = &LoweredContract{
				Span: tok.Span.Union(body.Span),
				Kind: ContractInvariant,
				Body: body,
			}

		default:
			return legacy, nil
		}
	}
}

// parseLegacyOut handles the out block forms; 'out' is under the
// cursor. Returns done=true when 'out' does not open a legacy block
// and control should return to the caller.
func parseLegacyOut(cur *Cursor, legacy *LegacyContracts, deferred *deferredOut) (done bool, err *ParseError) {
	outTok := cur.Current()

	var ident *Identifier
	switch {
	case cur.Peek(1).Type == lexer.TokenLBrace:
		cur.Next() // 'out'

	case cur.Peek(1).Type == lexer.TokenLParen &&
		cur.Peek(2).Type == lexer.TokenIdentifier &&
		cur.Peek(3).Type == lexer.TokenRParen:
		if cur.Peek(4).Type != lexer.TokenLBrace {
			// The legacy continuation failed after the recognizer
			// deferred a single-identifier out(...). Report the
			// documented ambiguity, not a generic syntax error.
			name := cur.Peek(2).Literal
			if deferred != nil {
				name = deferred.ident
			}
			return false, newError(ErrAmbiguousOutExpression, outTok,
				fmt.Sprintf("out contract expression requires more than a single identifier: 'out(%s)' introduces a legacy out block and must be followed by '{'; write 'out(; %s)' to assert the identifier as a condition", name, name),
				"legacy contracts")
		}
		cur.Next() // 'out'
		cur.Next() // '('
		idTok := cur.Next()
		ident = NewIdentifier(idTok.Span, idTok.Literal)
		cur.Next() // ')'

	default:
		// 'out' followed by neither '{' nor '(identifier)': not a
		// legacy contract, hand control back
		return true, nil
	}

	if legacy.Out != nil {
		return false, syntaxErrorf(outTok, "legacy contracts", "duplicate out contract block")
	}

	body, perr := parseBlockStatement(cur)
	if perr != nil {
		return false, perr
	}
	legacy.Out = &LoweredContract{
		Span:        outTok.Span.Union(body.Span),
		Kind:        ContractOut,
		ReturnIdent: ident,
		Body:        body,
	}
	return false, nil
}

// parseBlockStatement parses { stmt* }; '{' is under the cursor
func parseBlockStatement(cur *Cursor) (*BlockStatement, *ParseError) {
	open := cur.Current()
	if open.Type != lexer.TokenLBrace {
		return nil, syntaxErrorf(open, "block statement", "expected '{', got %s", open.Type.String())
	}
	cur.Next()

	statements := make([]Statement, 0)
	for cur.Current().Type != lexer.TokenRBrace && !cur.AtEnd() {
		stmt, err := parseStatement(cur)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if cur.Current().Type != lexer.TokenRBrace {
		return nil, syntaxErrorf(cur.Current(), "block statement", "expected '}' to close block")
	}
	closing := cur.Next()

	return &BlockStatement{
		Span:       open.Span.Union(closing.Span),
		Statements: statements,
	}, nil
}

// parseStatement parses a single statement inside a block
func parseStatement(cur *Cursor) (Statement, *ParseError) {
	tok := cur.Current()

	switch tok.Type {
	case lexer.TokenLBrace:
		return parseBlockStatement(cur)

	case lexer.TokenReturn:
		cur.Next()
		var value Expression
		if cur.Current().Type != lexer.TokenSemicolon {
			v, err := parseAssignExpression(cur)
			if err != nil {
				return nil, err
			}
			value = v
		}
		if cur.Current().Type != lexer.TokenSemicolon {
			return nil, syntaxErrorf(cur.Current(), "return statement", "expected ';' after return")
		}
		semi := cur.Next()
		return &ReturnStatement{
			Span:  tok.Span.Union(semi.Span),
			Value: value,
		}, nil

	default:
		expr, err := parseAssignExpression(cur)
		if err != nil {
			return nil, err
		}
		if cur.Current().Type != lexer.TokenSemicolon {
			return nil, syntaxErrorf(cur.Current(), "expression statement", "expected ';' after expression")
		}
		semi := cur.Next()
		return &ExpressionStatement{
			Span:       expr.GetSpan().Union(semi.Span),
			Expression: expr,
		}, nil
	}
}
