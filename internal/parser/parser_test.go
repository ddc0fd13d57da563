package parser

import (
	"strings"
	"testing"

	"github.com/verity-lang/verity/internal/edition"
	"github.com/verity-lang/verity/internal/lexer"
)

func parseProgram(t *testing.T, src string) *Program {
	t.Helper()
	program, errs := ParseSource(src, "test.vty")
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return program
}

func parseOneFunction(t *testing.T, src string) *FunctionDeclaration {
	t.Helper()
	program := parseProgram(t, src)
	if len(program.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1", len(program.Declarations))
	}
	fn, ok := program.Declarations[0].(*FunctionDeclaration)
	if !ok {
		t.Fatalf("declaration %T, want *FunctionDeclaration", program.Declarations[0])
	}
	return fn
}

func errKind(t *testing.T, errs []error) ErrorKind {
	t.Helper()
	if len(errs) == 0 {
		t.Fatal("expected parse errors, got none")
	}
	perr, ok := errs[0].(*ParseError)
	if !ok {
		t.Fatalf("error %T, want *ParseError", errs[0])
	}
	return perr.Kind
}

func TestParseFunctionWithoutContracts(t *testing.T) {
	fn := parseOneFunction(t, "fn add(a: int, b: int) -> int { return a + b; }")

	if fn.Name.Value != "add" {
		t.Errorf("name = %q, want %q", fn.Name.Value, "add")
	}
	if len(fn.Parameters) != 2 {
		t.Errorf("got %d parameters, want 2", len(fn.Parameters))
	}
	if fn.ReturnType == nil || fn.ReturnType.Name != "int" {
		t.Errorf("return type = %v, want int", fn.ReturnType)
	}
	if fn.InContract != nil || fn.OutContract != nil {
		t.Error("contract-free function must have nil contracts")
	}
	if fn.Body == nil || len(fn.Body.Statements) != 1 {
		t.Error("body not parsed")
	}
}

func TestParseFunctionWithContractExpressions(t *testing.T) {
	fn := parseOneFunction(t, `
fn sqrt(x: int) -> int
in(x >= 0, "x must be non-negative")
out(r; r * r <= x)
{
    return x;
}`)

	if fn.InContract == nil {
		t.Fatal("In contract is nil")
	}
	if len(fn.InContract.Body.Statements) != 1 {
		t.Errorf("got %d in statements, want 1", len(fn.InContract.Body.Statements))
	}
	if fn.OutContract == nil {
		t.Fatal("Out contract is nil")
	}
	if fn.OutContract.ReturnIdent == nil || fn.OutContract.ReturnIdent.Value != "r" {
		t.Errorf("out return identifier = %v, want r", fn.OutContract.ReturnIdent)
	}
}

// Contract expressions and legacy blocks on one declarator merge, with
// the expression-form asserts first.
func TestParseMixedContractForms(t *testing.T) {
	fn := parseOneFunction(t, `
fn f(a: bool, b: bool)
in(a)
in { assert(b); }
{ }`)

	if fn.InContract == nil {
		t.Fatal("In contract is nil")
	}
	stmts := fn.InContract.Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if got := stmtText(t, stmts[0]); got != "assert(a)" {
		t.Errorf("statement 0 = %q, want assert(a) before legacy statements", got)
	}
}

// out(identifier) followed by a block is the legacy bracketed form; the
// function body comes after the contract block.
func TestParseLegacyOutIntroducer(t *testing.T) {
	fn := parseOneFunction(t, `
fn f(i: int) -> int
out (i) { assert(i > 0); }
{
    return i;
}`)

	if fn.OutContract == nil {
		t.Fatal("Out contract is nil")
	}
	if fn.OutContract.ReturnIdent == nil || fn.OutContract.ReturnIdent.Value != "i" {
		t.Errorf("return identifier = %v, want i", fn.OutContract.ReturnIdent)
	}
	if fn.Body == nil || len(fn.Body.Statements) != 1 {
		t.Error("function body not parsed after legacy out block")
	}
}

func TestParseAmbiguousOutDiagnostic(t *testing.T) {
	_, errs := ParseSource("fn f(i: int) out(i);", "test.vty")

	if got := errKind(t, errs); got != ErrAmbiguousOutExpression {
		t.Fatalf("error kind = %v, want ErrAmbiguousOutExpression", got)
	}
	if !strings.Contains(errs[0].Error(), "out(; i)") {
		t.Errorf("error %q does not suggest the out(; i) rewrite", errs[0].Error())
	}
}

func TestParseConflictingReturnIdentifiers(t *testing.T) {
	_, errs := ParseSource(`
fn f() -> int
out(r; r > 0)
out (s) { assert(s < 10); }
{ return 1; }`, "test.vty")

	if got := errKind(t, errs); got != ErrConflictingReturnIdentifier {
		t.Errorf("error kind = %v, want ErrConflictingReturnIdentifier", got)
	}
}

func TestParseStructInvariant(t *testing.T) {
	program := parseProgram(t, `
struct Buffer {
    len: int;
    cap: int;
    invariant(len <= cap);
    invariant { assert(cap >= 0); }
}`)

	s, ok := program.Declarations[0].(*StructDeclaration)
	if !ok {
		t.Fatalf("declaration %T, want *StructDeclaration", program.Declarations[0])
	}
	if len(s.Fields) != 2 {
		t.Errorf("got %d fields, want 2", len(s.Fields))
	}
	if s.Invariant == nil {
		t.Fatal("Invariant is nil")
	}
	if len(s.Invariant.Body.Statements) != 2 {
		t.Errorf("got %d invariant statements, want 2", len(s.Invariant.Body.Statements))
	}
}

func TestParseInterfaceMembers(t *testing.T) {
	program := parseProgram(t, `
interface Stack {
    fn push(v: int) in(v >= 0);
    fn pop() -> int out(; true);
    fn len() -> int;
}`)

	iface, ok := program.Declarations[0].(*InterfaceDeclaration)
	if !ok {
		t.Fatalf("declaration %T, want *InterfaceDeclaration", program.Declarations[0])
	}
	if len(iface.Methods) != 3 {
		t.Fatalf("got %d methods, want 3", len(iface.Methods))
	}
	if iface.Methods[0].InContract == nil {
		t.Error("push: In contract is nil")
	}
	if iface.Methods[0].Body != nil {
		t.Error("interface member must be body-less")
	}
}

func TestParseInterfaceMemberMissingTerminator(t *testing.T) {
	_, errs := ParseSource(`
interface Stack {
    fn push(v: int) in(v >= 0)
}`, "test.vty")

	if got := errKind(t, errs); got != ErrMissingContractTerminator {
		t.Errorf("error kind = %v, want ErrMissingContractTerminator", got)
	}
}

func TestParseResynchronizesAfterError(t *testing.T) {
	program, errs := ParseSource(`
fn broken( { }
fn ok() { }`, "test.vty")

	if len(errs) == 0 {
		t.Fatal("expected an error for the broken declaration")
	}
	if len(program.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1 recovered", len(program.Declarations))
	}
	fn := program.Declarations[0].(*FunctionDeclaration)
	if fn.Name.Value != "ok" {
		t.Errorf("recovered declaration = %q, want %q", fn.Name.Value, "ok")
	}
}

func TestParseUnderOldEdition(t *testing.T) {
	old, err := edition.Parse("2.0.0")
	if err != nil {
		t.Fatalf("edition.Parse: %v", err)
	}

	src := "fn f(x: int) in(x > 0) { }"
	p := NewParser(lexer.Tokenize(src, "test.vty"), Config{Filename: "test.vty", Edition: old})
	_, errs := p.Parse()
	if got := errKind(t, errs); got != ErrContractsNotEnabled {
		t.Fatalf("error kind = %v, want ErrContractsNotEnabled", got)
	}

	// The legacy forms keep parsing under the old edition
	src = "fn f(x: int) in { assert(x > 0); } { }"
	p = NewParser(lexer.Tokenize(src, "test.vty"), Config{Filename: "test.vty", Edition: old})
	_, errs = p.Parse()
	if len(errs) > 0 {
		t.Fatalf("legacy form under edition 2.0.0: %v", errs)
	}
}

// Printing a parsed program and parsing the print again must reproduce
// the same text: lowering is idempotent at the source level.
func TestPrintRoundTripIsStable(t *testing.T) {
	sources := []string{
		"fn add(a: int, b: int) -> int { return a + b; }",
		`fn sqrt(x: int) -> int in(x >= 0, "negative input") out(r; r * r <= x) { return x; }`,
		"fn f(a: bool) in(a) in { assert(a); } out (r) { assert(r); } { return; }",
		"struct Buffer { len: int; cap: int; invariant(len <= cap); }",
		"interface Stack { fn push(v: int) in(v >= 0); fn pop() -> int; }",
		"fn g() out { } { }",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := Print(parseProgram(t, src))
			second := Print(parseProgram(t, first))
			if first != second {
				t.Errorf("round trip unstable:\nfirst:\n%s\nsecond:\n%s", first, second)
			}
		})
	}
}

func TestPrintLowersContractExpressions(t *testing.T) {
	out := Print(parseProgram(t, `fn f(x: int) in(x > 0, "msg") { }`))

	if strings.Contains(out, "in(") {
		t.Errorf("print still contains contract expression syntax:\n%s", out)
	}
	if !strings.Contains(out, "in {") {
		t.Errorf("print missing legacy in block:\n%s", out)
	}
	if !strings.Contains(out, `assert((x > 0), "msg");`) {
		t.Errorf("print missing lowered assert:\n%s", out)
	}
}

func BenchmarkParseFunctionWithContracts(b *testing.B) {
	src := `
fn sqrt(x: int) -> int
in(x >= 0, "x must be non-negative")
out(r; r * r <= x)
out (r) { assert(r >= 0); }
{
    return x;
}`
	tokens := lexer.Tokenize(src, "bench.vty")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := NewParser(tokens, Config{Filename: "bench.vty"})
		if _, errs := p.Parse(); len(errs) > 0 {
			b.Fatalf("parse errors: %v", errs)
		}
	}
}
