package parser

import (
	"fmt"
	"strings"
)

// Print renders a parsed program back to source text with every
// contract in the legacy block form. Re-parsing and re-printing the
// output yields the same text, which is how lowering stays idempotent
// at the source level.
func Print(program *Program) string {
	pr := &printer{}
	for i, decl := range program.Declarations {
		if i > 0 {
			pr.sb.WriteString("\n")
		}
		pr.printDeclaration(decl)
	}
	return pr.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) writeIndent() {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
}

func (p *printer) line(format string, args ...interface{}) {
	p.writeIndent()
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteString("\n")
}

func (p *printer) printDeclaration(decl Declaration) {
	switch d := decl.(type) {
	case *FunctionDeclaration:
		p.printFunction(d)
	case *StructDeclaration:
		p.printStruct(d)
	case *InterfaceDeclaration:
		p.printInterface(d)
	}
}

func (p *printer) printFunction(d *FunctionDeclaration) {
	params := make([]string, 0, len(d.Parameters))
	for _, param := range d.Parameters {
		params = append(params, fmt.Sprintf("%s: %s", param.Name.Value, param.TypeSpec.Name))
	}

	header := fmt.Sprintf("fn %s(%s)", d.Name.Value, strings.Join(params, ", "))
	if d.ReturnType != nil {
		header += " -> " + d.ReturnType.Name
	}

	hasContracts := d.InContract != nil || d.OutContract != nil
	if !hasContracts {
		if d.Body == nil {
			p.line("%s;", header)
			return
		}
		p.writeIndent()
		p.sb.WriteString(header + " ")
		p.printBlock(d.Body)
		p.sb.WriteString("\n")
		return
	}

	p.line("%s", header)
	if d.InContract != nil {
		p.printContract(d.InContract)
	}
	if d.OutContract != nil {
		p.printContract(d.OutContract)
	}

	if d.Body == nil {
		p.line(";")
		return
	}
	p.writeIndent()
	p.printBlock(d.Body)
	p.sb.WriteString("\n")
}

func (p *printer) printContract(c *LoweredContract) {
	p.writeIndent()
	p.sb.WriteString(c.Kind.String())
	if c.Kind == ContractOut && c.ReturnIdent != nil {
		p.sb.WriteString(" (" + c.ReturnIdent.Value + ")")
	}
	p.sb.WriteString(" ")
	p.printBlock(c.Body)
	p.sb.WriteString("\n")
}

func (p *printer) printStruct(d *StructDeclaration) {
	p.line("struct %s {", d.Name.Value)
	p.indent++
	for _, f := range d.Fields {
		p.line("%s: %s;", f.Name.Value, f.TypeSpec.Name)
	}
	if d.Invariant != nil {
		p.printContract(d.Invariant)
	}
	p.indent--
	p.line("}")
}

func (p *printer) printInterface(d *InterfaceDeclaration) {
	p.line("interface %s {", d.Name.Value)
	p.indent++
	for _, m := range d.Methods {
		p.printFunction(m)
	}
	p.indent--
	p.line("}")
}

// printBlock writes a block at the current position; callers add the
// trailing newline
func (p *printer) printBlock(b *BlockStatement) {
	if len(b.Statements) == 0 {
		p.sb.WriteString("{}")
		return
	}

	p.sb.WriteString("{\n")
	p.indent++
	for _, stmt := range b.Statements {
		p.printStatement(stmt)
	}
	p.indent--
	p.writeIndent()
	p.sb.WriteString("}")
}

func (p *printer) printStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *BlockStatement:
		p.writeIndent()
		p.printBlock(s)
		p.sb.WriteString("\n")
	case *ExpressionStatement:
		p.line("%s;", ExprText(s.Expression))
	case *ReturnStatement:
		if s.Value == nil {
			p.line("return;")
		} else {
			p.line("return %s;", ExprText(s.Value))
		}
	}
}

// ExprText renders an expression as parseable source text. Binary and
// unary expressions are parenthesized, so precedence survives a
// round trip regardless of the original spelling.
func ExprText(expr Expression) string {
	switch e := expr.(type) {
	case *Identifier:
		return e.Value
	case *Literal:
		return e.String()
	case *UnaryExpression:
		return fmt.Sprintf("(%s%s)", e.Operator.Value, ExprText(e.Operand))
	case *BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", ExprText(e.Left), e.Operator.Value, ExprText(e.Right))
	case *AssignmentExpression:
		return fmt.Sprintf("(%s = %s)", ExprText(e.Left), ExprText(e.Right))
	case *CallExpression:
		args := make([]string, 0, len(e.Arguments))
		for _, a := range e.Arguments {
			args = append(args, ExprText(a))
		}
		return fmt.Sprintf("%s(%s)", ExprText(e.Function), strings.Join(args, ", "))
	case *IndexExpression:
		return fmt.Sprintf("%s[%s]", ExprText(e.Left), ExprText(e.Index))
	case *MemberExpression:
		return fmt.Sprintf("%s.%s", ExprText(e.Object), e.Member.Value)
	default:
		return "<expr>"
	}
}
