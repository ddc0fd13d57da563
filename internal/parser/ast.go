// Package parser implements the Verity declaration parser, the
// contract-expression recognizer, and the lowering transformer that
// rewrites contract expressions into the legacy block form.
package parser

import (
	"fmt"

	"github.com/verity-lang/verity/internal/position"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() position.Span
	// String returns a string representation of the node
	String() string
}

// Statement represents all statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Declaration represents all declaration nodes
type Declaration interface {
	Node
	declarationNode()
}

// ====== Program ======

// Program represents the root of the AST
type Program struct {
	Span         position.Span
	Declarations []Declaration
}

func (p *Program) GetSpan() position.Span { return p.Span }
func (p *Program) String() string         { return "Program" }

// ====== Declarations ======

// FunctionDeclaration represents a function declaration or interface
// member. Body is nil for body-less members. The contract fields hold
// the lowered form; contract expressions never survive parsing.
type FunctionDeclaration struct {
	Span        position.Span
	Name        *Identifier
	Parameters  []*Parameter
	ReturnType  *TypeRef
	InContract  *LoweredContract
	OutContract *LoweredContract
	Body        *BlockStatement
}

func (f *FunctionDeclaration) GetSpan() position.Span { return f.Span }
func (f *FunctionDeclaration) String() string         { return fmt.Sprintf("fn %s", f.Name.Value) }
func (f *FunctionDeclaration) declarationNode()       {}

// Parameter represents a function parameter
type Parameter struct {
	Span     position.Span
	Name     *Identifier
	TypeSpec *TypeRef
}

func (p *Parameter) GetSpan() position.Span { return p.Span }
func (p *Parameter) String() string         { return fmt.Sprintf("%s: %s", p.Name.Value, p.TypeSpec.Name) }

// TypeRef is a named type reference. The contract front end does not
// resolve types; it only carries the spelling through.
type TypeRef struct {
	Span position.Span
	Name string
}

func (t *TypeRef) GetSpan() position.Span { return t.Span }
func (t *TypeRef) String() string         { return t.Name }

// StructDeclaration represents an aggregate declaration carrying
// fields and an optional lowered invariant
type StructDeclaration struct {
	Span      position.Span
	Name      *Identifier
	Fields    []*Field
	Invariant *LoweredContract
}

func (s *StructDeclaration) GetSpan() position.Span { return s.Span }
func (s *StructDeclaration) String() string         { return fmt.Sprintf("struct %s", s.Name.Value) }
func (s *StructDeclaration) declarationNode()       {}

// Field represents an aggregate field
type Field struct {
	Span     position.Span
	Name     *Identifier
	TypeSpec *TypeRef
}

func (f *Field) GetSpan() position.Span { return f.Span }
func (f *Field) String() string         { return fmt.Sprintf("%s: %s", f.Name.Value, f.TypeSpec.Name) }

// InterfaceDeclaration represents an interface with body-less members
type InterfaceDeclaration struct {
	Span    position.Span
	Name    *Identifier
	Methods []*FunctionDeclaration
}

func (i *InterfaceDeclaration) GetSpan() position.Span { return i.Span }
func (i *InterfaceDeclaration) String() string         { return fmt.Sprintf("interface %s", i.Name.Value) }
func (i *InterfaceDeclaration) declarationNode()       {}

// ====== Statements ======

// BlockStatement represents a block of statements
type BlockStatement struct {
	Span       position.Span
	Statements []Statement
}

func (b *BlockStatement) GetSpan() position.Span { return b.Span }
func (b *BlockStatement) String() string         { return "Block" }
func (b *BlockStatement) statementNode()         {}

// ExpressionStatement represents an expression used as a statement
type ExpressionStatement struct {
	Span       position.Span
	Expression Expression
}

func (e *ExpressionStatement) GetSpan() position.Span { return e.Span }
func (e *ExpressionStatement) String() string         { return "ExprStmt" }
func (e *ExpressionStatement) statementNode()         {}

// ReturnStatement represents a return statement
type ReturnStatement struct {
	Span  position.Span
	Value Expression // can be nil
}

func (r *ReturnStatement) GetSpan() position.Span { return r.Span }
func (r *ReturnStatement) String() string         { return "return" }
func (r *ReturnStatement) statementNode()         {}

// ====== Expressions ======

// Identifier represents an identifier
type Identifier struct {
	Span  position.Span
	Value string
}

func (i *Identifier) GetSpan() position.Span { return i.Span }
func (i *Identifier) String() string         { return i.Value }
func (i *Identifier) expressionNode()        {}

// LiteralKind distinguishes literal values
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

// Literal represents literal values
type Literal struct {
	Span  position.Span
	Value interface{}
	Kind  LiteralKind
}

func (l *Literal) GetSpan() position.Span { return l.Span }
func (l *Literal) String() string {
	if l.Kind == LiteralString {
		return fmt.Sprintf("%q", l.Value)
	}
	return fmt.Sprintf("%v", l.Value)
}
func (l *Literal) expressionNode() {}

// Operator carries an operator's spelling with its source span
type Operator struct {
	Span  position.Span
	Value string
}

func (o *Operator) GetSpan() position.Span { return o.Span }
func (o *Operator) String() string         { return o.Value }

// BinaryExpression represents binary operations
type BinaryExpression struct {
	Span     position.Span
	Left     Expression
	Operator *Operator
	Right    Expression
}

func (b *BinaryExpression) GetSpan() position.Span { return b.Span }
func (b *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator.Value, b.Right)
}
func (b *BinaryExpression) expressionNode() {}

// UnaryExpression represents unary operations
type UnaryExpression struct {
	Span     position.Span
	Operator *Operator
	Operand  Expression
}

func (u *UnaryExpression) GetSpan() position.Span { return u.Span }
func (u *UnaryExpression) String() string {
	return fmt.Sprintf("(%s%s)", u.Operator.Value, u.Operand)
}
func (u *UnaryExpression) expressionNode() {}

// AssignmentExpression represents an assignment used as an expression
type AssignmentExpression struct {
	Span  position.Span
	Left  Expression
	Right Expression
}

func (a *AssignmentExpression) GetSpan() position.Span { return a.Span }
func (a *AssignmentExpression) String() string {
	return fmt.Sprintf("(%s = %s)", a.Left, a.Right)
}
func (a *AssignmentExpression) expressionNode() {}

// CallExpression represents function call expressions
type CallExpression struct {
	Span      position.Span
	Function  Expression
	Arguments []Expression
}

func (c *CallExpression) GetSpan() position.Span { return c.Span }
func (c *CallExpression) String() string {
	return fmt.Sprintf("%s(...)", c.Function)
}
func (c *CallExpression) expressionNode() {}

// IndexExpression represents index access
type IndexExpression struct {
	Span  position.Span
	Left  Expression
	Index Expression
}

func (i *IndexExpression) GetSpan() position.Span { return i.Span }
func (i *IndexExpression) String() string {
	return fmt.Sprintf("%s[%s]", i.Left, i.Index)
}
func (i *IndexExpression) expressionNode() {}

// MemberExpression represents member access
type MemberExpression struct {
	Span   position.Span
	Object Expression
	Member *Identifier
}

func (m *MemberExpression) GetSpan() position.Span { return m.Span }
func (m *MemberExpression) String() string {
	return fmt.Sprintf("%s.%s", m.Object, m.Member.Value)
}
func (m *MemberExpression) expressionNode() {}

// ====== Builder Utilities ======

// NewIdentifier creates a new Identifier node
func NewIdentifier(span position.Span, value string) *Identifier {
	return &Identifier{Span: span, Value: value}
}

// NewLiteral creates a new Literal node
func NewLiteral(span position.Span, value interface{}, kind LiteralKind) *Literal {
	return &Literal{Span: span, Value: value, Kind: kind}
}

// NewOperator creates a new Operator node
func NewOperator(span position.Span, value string) *Operator {
	return &Operator{Span: span, Value: value}
}

// SpanBetween creates a span between two positions
func SpanBetween(start, end position.Position) position.Span {
	return position.Span{Start: start, End: end}
}
