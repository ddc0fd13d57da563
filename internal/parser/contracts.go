package parser

import (
	"fmt"

	"github.com/verity-lang/verity/internal/edition"
	"github.com/verity-lang/verity/internal/lexer"
)

// ContractContext selects which contract-expression forms the
// recognizer accepts at the current cursor position.
type ContractContext int

const (
	// ContextFunction is the position after a function's parameter
	// list (and optional return type)
	ContextFunction ContractContext = iota
	// ContextInterface is the same position on a body-less member,
	// where a terminating ';' is mandatory after contract expressions
	ContextInterface
	// ContextAggregate is an invariant site inside a struct body
	ContextAggregate
)

// String returns a human-readable name for the context
func (c ContractContext) String() string {
	switch c {
	case ContextFunction:
		return "function"
	case ContextInterface:
		return "interface"
	case ContextAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// ParseContracts recognizes zero or more contiguous contract
// expressions at the cursor and returns them as a ContractGroup with
// the cursor advanced past them. Recognition never consumes tokens it
// cannot classify: the single-identifier out(...) form backtracks to
// before 'out' and stops the loop, leaving the legacy contract parser
// in control. Parsing uses the newest language edition; use a Parser
// with an explicit Config to parse under an older edition.
func ParseContracts(cur *Cursor, ctx ContractContext) (*ContractGroup, error) {
	group, err := parseContractGroup(cur, ctx, edition.Latest())
	if err != nil {
		return nil, err
	}
	return group, nil
}

// parseContractGroup is the recognizer loop behind ParseContracts
func parseContractGroup(cur *Cursor, ctx ContractContext, ed *edition.Edition) (*ContractGroup, *ParseError) {
	group := &ContractGroup{}

loop:
	for {
		tok := cur.Current()

		switch {
		case ctx != ContextAggregate && tok.Type == lexer.TokenIn && cur.Peek(1).Type == lexer.TokenLParen:
			if err := checkGate(tok, ed); err != nil {
				return nil, err
			}
			if err := parseInExpr(cur, group); err != nil {
				return nil, err
			}

		case ctx != ContextAggregate && tok.Type == lexer.TokenOut && cur.Peek(1).Type == lexer.TokenLParen:
			if err := checkGate(tok, ed); err != nil {
				return nil, err
			}
			stopped, err := parseOutExpr(cur, group)
			if err != nil {
				return nil, err
			}
			if stopped {
				break loop
			}

		case ctx == ContextAggregate && tok.Type == lexer.TokenInvariant && cur.Peek(1).Type == lexer.TokenLParen:
			if err := checkGate(tok, ed); err != nil {
				return nil, err
			}
			if err := parseInvariantExpr(cur, group); err != nil {
				return nil, err
			}

		default:
			break loop
		}
	}

	if err := checkTerminator(cur, ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// checkGate rejects contract-expression syntax under editions that
// predate the grammar extension
func checkGate(tok lexer.Token, ed *edition.Edition) *ParseError {
	if ed.SupportsContractExpressions() {
		return nil
	}
	return newError(ErrContractsNotEnabled, tok,
		fmt.Sprintf("contract expressions require language edition 2.1 or newer (parsing under edition %s)", ed.String()),
		"contract recognition")
}

// checkTerminator enforces the mandatory ';' after contract
// expressions on a body-less member: absent a legacy contract block, a
// body opener, or the terminator itself, the declaration is malformed.
func checkTerminator(cur *Cursor, ctx ContractContext, group *ContractGroup) *ParseError {
	if ctx != ContextInterface || group.Empty() {
		return nil
	}
	if group.deferredOut != nil {
		// The legacy path owns the outcome of a deferred out(identifier)
		return nil
	}

	next := cur.Current()
	if next.Type == lexer.TokenSemicolon || next.Type == lexer.TokenLBrace {
		return nil
	}
	legacyFollows := (next.Type == lexer.TokenIn || next.Type == lexer.TokenOut) &&
		cur.Peek(1).Type == lexer.TokenLBrace
	if legacyFollows {
		return nil
	}

	return newError(ErrMissingContractTerminator, next,
		"body-less declaration with contract expressions must be terminated with ';'",
		"contract recognition")
}

// parseInExpr parses in(...) after the loop matched 'in' '('.
// The in form has no legacy-syntax collision, so no lookahead beyond
// the opening paren is needed.
func parseInExpr(cur *Cursor, group *ContractGroup) *ParseError {
	start := cur.Next() // 'in'
	cur.Next()          // '('

	cond, err := parseContractParameters(cur)
	if err != nil {
		return err
	}
	closing := cur.Next() // ')' guaranteed by parseContractParameters

	group.Ins = append(group.Ins, &InExpr{
		Span: start.Span.Union(closing.Span),
		Cond: cond,
	})
	return nil
}

// parseOutExpr parses out(...) after the loop matched 'out' '('.
// Returns stopped=true when the form is the legacy out(identifier)
// introducer: the cursor is restored to before 'out' and the
// contract-expression loop ends.
func parseOutExpr(cur *Cursor, group *ContractGroup) (stopped bool, err *ParseError) {
	mark := cur.Mark()
	outTok := cur.Next() // 'out'
	cur.Next()           // '('

	var binding *Identifier

	switch {
	case cur.Current().Type == lexer.TokenSemicolon:
		// out(; cond) - unambiguous, no return identifier
		cur.Next()

	case cur.Current().Type == lexer.TokenIdentifier && cur.Peek(1).Type == lexer.TokenSemicolon:
		// out(r; cond) - unambiguous, named return identifier
		idTok := cur.Next()
		binding = NewIdentifier(idTok.Span, idTok.Literal)
		cur.Next() // ';'

	case cur.Current().Type == lexer.TokenIdentifier && cur.Peek(1).Type == lexer.TokenRParen:
		// out(identifier) is always the legacy bracketed-contract
		// introducer, never a one-identifier condition. Record the
		// deferral so the legacy path can report a targeted message if
		// it fails downstream, then back out without consuming.
		group.deferredOut = &deferredOut{
			pos:   outTok.Pos(),
			ident: cur.Current().Literal,
		}
		cur.Restore(mark)
		return true, nil

	default:
		// More than one token before ')': provably not a bare
		// identifier, so this is a condition without return binding.
	}

	cond, perr := parseContractParameters(cur)
	if perr != nil {
		return false, perr
	}
	closing := cur.Next() // ')'

	group.Outs = append(group.Outs, &OutExpr{
		Span:          outTok.Span.Union(closing.Span),
		ReturnBinding: binding,
		Cond:          cond,
	})
	return false, nil
}

// parseInvariantExpr parses invariant(...); after the loop matched
// 'invariant' '(' at aggregate scope
func parseInvariantExpr(cur *Cursor, group *ContractGroup) *ParseError {
	start := cur.Next() // 'invariant'
	cur.Next()          // '('

	cond, err := parseContractParameters(cur)
	if err != nil {
		return err
	}
	cur.Next() // ')'

	if cur.Current().Type != lexer.TokenSemicolon {
		return newError(ErrMissingContractTerminator, cur.Current(),
			"invariant contract expression must be terminated with ';'",
			"contract recognition")
	}
	semi := cur.Next()

	group.Invariants = append(group.Invariants, &InvariantExpr{
		Span: start.Span.Union(semi.Span),
		Cond: cond,
	})
	return nil
}

// parseContractParameters parses the shared ContractParameters rule:
// one condition, an optional message, and an optional trailing comma.
// On success the closing ')' is under the cursor, unconsumed.
func parseContractParameters(cur *Cursor) (ContractCondition, *ParseError) {
	tok := cur.Current()
	if tok.Type == lexer.TokenRParen || tok.Type == lexer.TokenComma || tok.Type == lexer.TokenSemicolon {
		return ContractCondition{}, newError(ErrMalformedContractParameters, tok,
			"contract parameters require a condition expression",
			"contract parameters")
	}

	condition, err := parseAssignExpression(cur)
	if err != nil {
		return ContractCondition{}, err
	}

	var message Expression
	if cur.Current().Type == lexer.TokenComma {
		cur.Next()
		if cur.Current().Type != lexer.TokenRParen {
			message, err = parseAssignExpression(cur)
			if err != nil {
				return ContractCondition{}, err
			}
			if cur.Current().Type == lexer.TokenComma {
				cur.Next() // trailing comma
			}
		}
	}

	if cur.Current().Type != lexer.TokenRParen {
		return ContractCondition{}, newError(ErrMalformedContractParameters, cur.Current(),
			"contract parameters accept at most a condition and a message",
			"contract parameters")
	}

	return ContractCondition{Condition: condition, Message: message}, nil
}
