package parser

import (
	"strings"
	"testing"

	"github.com/verity-lang/verity/internal/edition"
	"github.com/verity-lang/verity/internal/lexer"
)

func contractCursor(t *testing.T, src string) *Cursor {
	t.Helper()
	return NewCursor(lexer.Tokenize(src, "test.vty"))
}

func mustParseEdition(t *testing.T, s string) *edition.Edition {
	t.Helper()
	ed, err := edition.Parse(s)
	if err != nil {
		t.Fatalf("edition.Parse(%q): %v", s, err)
	}
	return ed
}

func TestRecognizeInExpressions(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantIns     int
		wantMessage bool
	}{
		{name: "single condition", input: "in(x > 0)", wantIns: 1},
		{name: "condition with message", input: `in(x > 0, "x must be positive")`, wantIns: 1, wantMessage: true},
		{name: "trailing comma after message", input: `in(x > 0, "msg",)`, wantIns: 1, wantMessage: true},
		{name: "bare identifier condition", input: "in(flag)", wantIns: 1},
		{name: "multiple contiguous", input: "in(x > 0) in(y > 0) in(z > 0)", wantIns: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := contractCursor(t, tt.input)
			group, err := ParseContracts(cur, ContextFunction)
			if err != nil {
				t.Fatalf("ParseContracts(%q): %v", tt.input, err)
			}
			if len(group.Ins) != tt.wantIns {
				t.Fatalf("got %d in expressions, want %d", len(group.Ins), tt.wantIns)
			}
			if got := group.Ins[0].Cond.Message != nil; got != tt.wantMessage {
				t.Errorf("message present = %v, want %v", got, tt.wantMessage)
			}
			if !cur.AtEnd() {
				t.Errorf("cursor stopped at %s, want EOF", cur.Current().Type)
			}
		})
	}
}

func TestRecognizeOutExpressions(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantBinding string
	}{
		{name: "no binding", input: "out(; r > 0)"},
		{name: "named binding", input: "out(r; r > 0)", wantBinding: "r"},
		{name: "comparison needs no binding", input: "out(result != 0)"},
		{name: "call condition", input: "out(valid(result))"},
		{name: "binding with message", input: `out(r; r > 0, "result must be positive")`, wantBinding: "r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := contractCursor(t, tt.input)
			group, err := ParseContracts(cur, ContextFunction)
			if err != nil {
				t.Fatalf("ParseContracts(%q): %v", tt.input, err)
			}
			if len(group.Outs) != 1 {
				t.Fatalf("got %d out expressions, want 1", len(group.Outs))
			}

			out := group.Outs[0]
			if tt.wantBinding == "" {
				if out.ReturnBinding != nil {
					t.Errorf("unexpected return binding %q", out.ReturnBinding.Value)
				}
			} else if out.ReturnBinding == nil || out.ReturnBinding.Value != tt.wantBinding {
				t.Errorf("return binding = %v, want %q", out.ReturnBinding, tt.wantBinding)
			}
		})
	}
}

// out(identifier) is never a contract expression: the recognizer must
// back out without consuming anything and leave the legacy parser in
// control of the outcome.
func TestSingleIdentifierOutBacktracks(t *testing.T) {
	cur := contractCursor(t, "out(i) { assert(i > 0); }")

	group, err := ParseContracts(cur, ContextFunction)
	if err != nil {
		t.Fatalf("ParseContracts: %v", err)
	}
	if len(group.Outs) != 0 {
		t.Fatalf("got %d out expressions, want 0", len(group.Outs))
	}
	if got := cur.Current(); got.Type != lexer.TokenOut {
		t.Fatalf("cursor at %s after backtrack, want OUT", got.Type)
	}
	if group.deferredOut == nil {
		t.Fatal("deferredOut not recorded")
	}
	if group.deferredOut.ident != "i" {
		t.Errorf("deferred identifier = %q, want %q", group.deferredOut.ident, "i")
	}

	// The legacy parser consumes the deferred introducer as a block
	legacy, perr := parseLegacyContracts(cur, ContextFunction, group.deferredOut)
	if perr != nil {
		t.Fatalf("parseLegacyContracts: %v", perr)
	}
	if legacy.Out == nil {
		t.Fatal("legacy out block not parsed")
	}
	if legacy.Out.ReturnIdent == nil || legacy.Out.ReturnIdent.Value != "i" {
		t.Errorf("legacy return identifier = %v, want %q", legacy.Out.ReturnIdent, "i")
	}
}

// A deferred out(identifier) with no '{' after it is the documented
// ambiguity; the error must name the rewrite, not report a generic
// syntax failure.
func TestAmbiguousOutExpression(t *testing.T) {
	cur := contractCursor(t, "out(i);")

	group, err := ParseContracts(cur, ContextFunction)
	if err != nil {
		t.Fatalf("ParseContracts: %v", err)
	}

	_, perr := parseLegacyContracts(cur, ContextFunction, group.deferredOut)
	if perr == nil {
		t.Fatal("parseLegacyContracts succeeded, want ambiguity error")
	}
	if perr.Kind != ErrAmbiguousOutExpression {
		t.Fatalf("error kind = %v, want ErrAmbiguousOutExpression", perr.Kind)
	}
	if !strings.Contains(perr.Message, "out(; i)") {
		t.Errorf("message %q does not suggest the out(; i) rewrite", perr.Message)
	}
}

func TestRecognizeInvariantExpressions(t *testing.T) {
	cur := contractCursor(t, "invariant(count >= 0); invariant(cap >= count);")

	group, err := ParseContracts(cur, ContextAggregate)
	if err != nil {
		t.Fatalf("ParseContracts: %v", err)
	}
	if len(group.Invariants) != 2 {
		t.Fatalf("got %d invariant expressions, want 2", len(group.Invariants))
	}
}

func TestInvariantRequiresSemicolon(t *testing.T) {
	cur := contractCursor(t, "invariant(count >= 0)")

	_, err := ParseContracts(cur, ContextAggregate)
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Kind != ErrMissingContractTerminator {
		t.Errorf("error kind = %v, want ErrMissingContractTerminator", perr.Kind)
	}
}

func TestInvariantNotRecognizedAtFunctionScope(t *testing.T) {
	cur := contractCursor(t, "invariant(x > 0);")

	group, err := ParseContracts(cur, ContextFunction)
	if err != nil {
		t.Fatalf("ParseContracts: %v", err)
	}
	if !group.Empty() {
		t.Error("invariant recognized at function scope")
	}
	if got := cur.Current().Type; got != lexer.TokenInvariant {
		t.Errorf("cursor at %s, want INVARIANT left unconsumed", got)
	}
}

func TestMalformedContractParameters(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty parameters", input: "in()"},
		{name: "leading comma", input: "in(, x)"},
		{name: "three expressions", input: "in(a, b, c)"},
		{name: "empty out condition", input: "out(;)"},
		{name: "empty bound out condition", input: "out(r;)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := contractCursor(t, tt.input)
			_, err := ParseContracts(cur, ContextFunction)
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("ParseContracts(%q) error = %v, want *ParseError", tt.input, err)
			}
			if perr.Kind != ErrMalformedContractParameters {
				t.Errorf("error kind = %v, want ErrMalformedContractParameters", perr.Kind)
			}
		})
	}
}

func TestMixedKindsKeepDeclarationOrder(t *testing.T) {
	cur := contractCursor(t, "in(a) out(; r > 0) in(b)")

	group, err := ParseContracts(cur, ContextFunction)
	if err != nil {
		t.Fatalf("ParseContracts: %v", err)
	}
	if len(group.Ins) != 2 || len(group.Outs) != 1 {
		t.Fatalf("got %d ins / %d outs, want 2 / 1", len(group.Ins), len(group.Outs))
	}

	first := ExprText(group.Ins[0].Cond.Condition)
	second := ExprText(group.Ins[1].Cond.Condition)
	if first != "a" || second != "b" {
		t.Errorf("in conditions ordered [%s, %s], want [a, b]", first, second)
	}
}

func TestContractExpressionsGatedByEdition(t *testing.T) {
	old := mustParseEdition(t, "2.0.0")

	cur := contractCursor(t, "in(x > 0)")
	_, err := parseContractGroup(cur, ContextFunction, old)
	if err == nil {
		t.Fatal("parse under edition 2.0.0 succeeded, want gate error")
	}
	if err.Kind != ErrContractsNotEnabled {
		t.Errorf("error kind = %v, want ErrContractsNotEnabled", err.Kind)
	}

	// Legacy blocks are not gated: the recognizer just stays silent
	cur = contractCursor(t, "in { assert(x > 0); }")
	group, err := parseContractGroup(cur, ContextFunction, old)
	if err != nil {
		t.Fatalf("legacy block under edition 2.0.0: %v", err)
	}
	if !group.Empty() {
		t.Error("legacy block recognized as contract expression")
	}
}

func TestInterfaceTerminator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "semicolon terminates", input: "in(x > 0) ;"},
		{name: "legacy block follows", input: "in(x > 0) in { assert(x); }"},
		{name: "body follows", input: "in(x > 0) { }"},
		{name: "nothing follows", input: "in(x > 0)", wantErr: true},
		{name: "no contracts no terminator needed", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := contractCursor(t, tt.input)
			_, err := ParseContracts(cur, ContextInterface)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ParseContracts(%q): %v", tt.input, err)
				}
				return
			}

			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("ParseContracts(%q) error = %v, want *ParseError", tt.input, err)
			}
			if perr.Kind != ErrMissingContractTerminator {
				t.Errorf("error kind = %v, want ErrMissingContractTerminator", perr.Kind)
			}
		})
	}
}
