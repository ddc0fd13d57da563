package parser

import (
	"github.com/verity-lang/verity/internal/position"
)

// ContractKind identifies a contract section
type ContractKind int

const (
	ContractIn ContractKind = iota
	ContractOut
	ContractInvariant
)

// String returns the keyword for the contract kind
func (k ContractKind) String() string {
	switch k {
	case ContractIn:
		return "in"
	case ContractOut:
		return "out"
	case ContractInvariant:
		return "invariant"
	default:
		return "contract"
	}
}

// ContractCondition is one condition with its optional message, as
// written inside a contract expression's parentheses.
type ContractCondition struct {
	Condition Expression
	Message   Expression // can be nil; passed through unevaluated
}

// ContractExpression is the closed set of recognized contract
// expression forms. The set of kinds is fixed; lowering matches on it
// exhaustively.
type ContractExpression interface {
	Node
	contractExpressionNode()
}

// InExpr is a precondition expression: in(cond) or in(cond, msg)
type InExpr struct {
	Span position.Span
	Cond ContractCondition
}

func (e *InExpr) GetSpan() position.Span  { return e.Span }
func (e *InExpr) String() string          { return "in(...)" }
func (e *InExpr) contractExpressionNode() {}

// OutExpr is a postcondition expression: out(; cond), out(r; cond),
// or out(cond) when cond is provably not a bare identifier.
type OutExpr struct {
	Span          position.Span
	ReturnBinding *Identifier // can be nil
	Cond          ContractCondition
}

func (e *OutExpr) GetSpan() position.Span  { return e.Span }
func (e *OutExpr) String() string          { return "out(...)" }
func (e *OutExpr) contractExpressionNode() {}

// InvariantExpr is an aggregate invariant expression: invariant(cond);
type InvariantExpr struct {
	Span position.Span
	Cond ContractCondition
}

func (e *InvariantExpr) GetSpan() position.Span  { return e.Span }
func (e *InvariantExpr) String() string          { return "invariant(...)" }
func (e *InvariantExpr) contractExpressionNode() {}

// ContractGroup collects the contract expressions recognized ahead of
// one declarator, partitioned by kind and kept in declaration order.
// The group is consumed by lowering and discarded afterwards.
type ContractGroup struct {
	Ins        []*InExpr
	Outs       []*OutExpr
	Invariants []*InvariantExpr

	// deferredOut records a single-identifier out(...) that the
	// recognizer backtracked away from. It only surfaces as a
	// diagnostic if the legacy path fails to consume it.
	deferredOut *deferredOut
}

type deferredOut struct {
	pos   position.Position
	ident string
}

// Empty reports whether no contract expressions were recognized
func (g *ContractGroup) Empty() bool {
	return len(g.Ins) == 0 && len(g.Outs) == 0 && len(g.Invariants) == 0
}

// LoweredContract is the legacy block form a contract group lowers
// into: one block per kind, holding assert-call statements.
type LoweredContract struct {
	Span        position.Span
	Kind        ContractKind
	ReturnIdent *Identifier // out contracts only; can be nil
	Body        *BlockStatement
}

func (c *LoweredContract) GetSpan() position.Span { return c.Span }
func (c *LoweredContract) String() string         { return c.Kind.String() + " {...}" }

// LegacyContracts holds the braced-block contracts that follow any
// contract expressions on the same declarator. At most one block per
// kind is accepted.
type LegacyContracts struct {
	In        *LoweredContract
	Out       *LoweredContract
	Invariant *LoweredContract
}

// Empty reports whether no legacy blocks were parsed
func (l *LegacyContracts) Empty() bool {
	return l == nil || (l.In == nil && l.Out == nil && l.Invariant == nil)
}
