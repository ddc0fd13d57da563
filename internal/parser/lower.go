package parser

import (
	"fmt"

	"github.com/verity-lang/verity/internal/position"
)

// LoweredSet holds at most one lowered contract per kind for a single
// declarator. Kinds with no conditions and no legacy block stay nil:
// contract absence must remain absence, because an empty-but-present
// block still changes checked-build behavior downstream.
type LoweredSet struct {
	In        *LoweredContract
	Out       *LoweredContract
	Invariant *LoweredContract
}

// LowerContracts merges a recognized ContractGroup with any legacy
// blocks of the same kinds into the canonical block form. Conditions
// lower to assert(condition, message?) statements in declaration
// order; legacy block statements follow them verbatim. Lowering an
// already-legacy form (empty group) passes the blocks through
// untouched, which makes the transformation idempotent on its output.
func LowerContracts(group *ContractGroup, legacy *LegacyContracts) (*LoweredSet, *ParseError) {
	if legacy == nil {
		legacy = &LegacyContracts{}
	}

	set := &LoweredSet{}

	inConds := make([]ContractCondition, 0, len(group.Ins))
	inSpan := position.Span{}
	for _, e := range group.Ins {
		inConds = append(inConds, e.Cond)
		inSpan = inSpan.Union(e.Span)
	}
	set.In = lowerKind(ContractIn, inConds, inSpan, nil, legacy.In)

	outConds := make([]ContractCondition, 0, len(group.Outs))
	outSpan := position.Span{}
	var returnIdent *Identifier
	for _, e := range group.Outs {
		outConds = append(outConds, e.Cond)
		outSpan = outSpan.Union(e.Span)

		if e.ReturnBinding == nil {
			continue
		}
		if returnIdent != nil && returnIdent.Value != e.ReturnBinding.Value {
			return nil, errorAt(ErrConflictingReturnIdentifier, e.ReturnBinding.Span.Start,
				fmt.Sprintf("conflicting return identifiers in out contracts: %q and %q",
					returnIdent.Value, e.ReturnBinding.Value),
				"contract lowering")
		}
		if returnIdent == nil {
			returnIdent = e.ReturnBinding
		}
	}
	if legacy.Out != nil && legacy.Out.ReturnIdent != nil {
		if returnIdent != nil && returnIdent.Value != legacy.Out.ReturnIdent.Value {
			return nil, errorAt(ErrConflictingReturnIdentifier, legacy.Out.ReturnIdent.Span.Start,
				fmt.Sprintf("conflicting return identifiers in out contracts: %q and %q",
					returnIdent.Value, legacy.Out.ReturnIdent.Value),
				"contract lowering")
		}
		if returnIdent == nil {
			returnIdent = legacy.Out.ReturnIdent
		}
	}
	set.Out = lowerKind(ContractOut, outConds, outSpan, returnIdent, legacy.Out)

	invConds := make([]ContractCondition, 0, len(group.Invariants))
	invSpan := position.Span{}
	for _, e := range group.Invariants {
		invConds = append(invConds, e.Cond)
		invSpan = invSpan.Union(e.Span)
	}
	set.Invariant = lowerKind(ContractInvariant, invConds, invSpan, nil, legacy.Invariant)

	return set, nil
}

// lowerKind builds the single lowered contract for one kind, or nil
// when the kind is entirely absent
func lowerKind(kind ContractKind, conds []ContractCondition, span position.Span, returnIdent *Identifier, legacy *LoweredContract) *LoweredContract {
	if len(conds) == 0 {
		if legacy == nil {
			return nil
		}
		// Already in legacy form: pass through, only attaching a
		// return identifier resolved from elsewhere
		if returnIdent != nil && legacy.ReturnIdent == nil {
			legacy.ReturnIdent = returnIdent
		}
		return legacy
	}

	body := make([]Statement, 0, len(conds))
	for _, c := range conds {
		body = append(body, synthesizeAssert(c))
	}

	if legacy != nil {
		// Expression-form conditions always precede block-form
		// statements in the merged body
		body = append(body, legacy.Body.Statements...)
		span = span.Union(legacy.Span)
	}

	return &LoweredContract{
		Span:        span,
		Kind:        kind,
		ReturnIdent: returnIdent,
		Body: &BlockStatement{
			Span:       span,
			Statements: body,
		},
	}
}

// synthesizeAssert builds the assert(condition, message?) statement
// for one contract condition. The message expression, when present, is
// passed through unchanged.
func synthesizeAssert(c ContractCondition) Statement {
	span := c.Condition.GetSpan()
	args := []Expression{c.Condition}
	if c.Message != nil {
		args = append(args, c.Message)
		span = span.Union(c.Message.GetSpan())
	}

	call := &CallExpression{
		Span:      span,
		Function:  NewIdentifier(c.Condition.GetSpan(), "assert"),
		Arguments: args,
	}

	return &ExpressionStatement{
		Span:       span,
		Expression: call,
	}
}
