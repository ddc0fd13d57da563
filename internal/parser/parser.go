package parser

import (
	"github.com/verity-lang/verity/internal/edition"
	"github.com/verity-lang/verity/internal/lexer"
)

// Config controls parsing behavior
type Config struct {
	Filename string
	Edition  *edition.Edition // nil means the latest edition
}

// Parser parses the Verity declaration subset and drives contract
// recognition and lowering for each declarator. Each Parser owns its
// cursor; independent parsers can run concurrently.
type Parser struct {
	cursor  *Cursor
	config  Config
	edition *edition.Edition
	errors  []error
}

// NewParser creates a parser over a pre-lexed token stream
func NewParser(tokens []lexer.Token, config Config) *Parser {
	ed := config.Edition
	if ed == nil {
		ed = edition.Latest()
	}
	return &Parser{
		cursor:  NewCursor(tokens),
		config:  config,
		edition: ed,
		errors:  make([]error, 0),
	}
}

// ParseSource lexes and parses a complete source text
func ParseSource(source, filename string) (*Program, []error) {
	p := NewParser(lexer.Tokenize(source, filename), Config{Filename: filename})
	return p.Parse()
}

// Parse parses the token stream and returns the program with any
// accumulated errors. Declarations that fail to parse are skipped via
// resynchronization; later declarations still parse.
func (p *Parser) Parse() (*Program, []error) {
	start := p.cursor.Current().Pos()
	declarations := make([]Declaration, 0)

	for !p.cursor.AtEnd() {
		decl, err := p.parseDeclaration()
		if err != nil {
			p.errors = append(p.errors, err)
			p.resync()
			continue
		}
		declarations = append(declarations, decl)
	}

	end := p.cursor.Current().Pos()
	return &Program{
		Span:         SpanBetween(start, end),
		Declarations: declarations,
	}, p.errors
}

// resync skips to the next plausible declaration start after an error
func (p *Parser) resync() {
	p.cursor.Next()
	for !p.cursor.AtEnd() {
		switch p.cursor.Current().Type {
		case lexer.TokenFn, lexer.TokenStruct, lexer.TokenInterface:
			return
		}
		p.cursor.Next()
	}
}

// parseDeclaration parses one top-level declaration
func (p *Parser) parseDeclaration() (Declaration, *ParseError) {
	tok := p.cursor.Current()

	switch tok.Type {
	case lexer.TokenFn:
		return p.parseFunctionDeclaration(ContextFunction)
	case lexer.TokenStruct:
		return p.parseStructDeclaration()
	case lexer.TokenInterface:
		return p.parseInterfaceDeclaration()
	default:
		return nil, syntaxErrorf(tok, "declaration parsing",
			"unexpected token %s in declaration", tok.Type.String())
	}
}

// expect consumes and returns the current token if it matches, or
// fails with a syntax error
func (p *Parser) expect(t lexer.TokenType, context string) (lexer.Token, *ParseError) {
	tok := p.cursor.Current()
	if tok.Type != t {
		return tok, syntaxErrorf(tok, context,
			"expected %s, got %s", t.String(), tok.Type.String())
	}
	return p.cursor.Next(), nil
}

// parseFunctionDeclaration parses a function declaration or interface
// member: fn name(params) [-> type] contracts... (body | ';')
func (p *Parser) parseFunctionDeclaration(ctx ContractContext) (*FunctionDeclaration, *ParseError) {
	fnTok, err := p.expect(lexer.TokenFn, "function declaration")
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expect(lexer.TokenIdentifier, "function declaration")
	if err != nil {
		return nil, err
	}
	name := NewIdentifier(nameTok.Span, nameTok.Literal)

	if _, err := p.expect(lexer.TokenLParen, "function declaration"); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen, "function declaration"); err != nil {
		return nil, err
	}

	var returnType *TypeRef
	if p.cursor.Current().Type == lexer.TokenArrow {
		p.cursor.Next()
		typeTok, terr := p.expect(lexer.TokenIdentifier, "return type")
		if terr != nil {
			return nil, terr
		}
		returnType = &TypeRef{Span: typeTok.Span, Name: typeTok.Literal}
	}

	// Contract expressions, then legacy blocks, then lowering. The
	// recognizer never consumes a legacy out(identifier) introducer;
	// the legacy parser picks it up from the restored cursor.
	group, err := parseContractGroup(p.cursor, ctx, p.edition)
	if err != nil {
		return nil, err
	}
	legacy, err := parseLegacyContracts(p.cursor, ctx, group.deferredOut)
	if err != nil {
		return nil, err
	}
	set, err := LowerContracts(group, legacy)
	if err != nil {
		return nil, err
	}

	decl := &FunctionDeclaration{
		Name:        name,
		Parameters:  params,
		ReturnType:  returnType,
		InContract:  set.In,
		OutContract: set.Out,
	}

	end := p.cursor.Current()
	switch {
	case end.Type == lexer.TokenLBrace:
		body, berr := parseBlockStatement(p.cursor)
		if berr != nil {
			return nil, berr
		}
		decl.Body = body
		decl.Span = fnTok.Span.Union(body.Span)

	case end.Type == lexer.TokenSemicolon:
		semi := p.cursor.Next()
		decl.Span = fnTok.Span.Union(semi.Span)

	default:
		if !group.Empty() || !legacy.Empty() {
			return nil, newError(ErrMissingContractTerminator, end,
				"declaration with contracts and no body must be terminated with ';'",
				"function declaration")
		}
		return nil, syntaxErrorf(end, "function declaration",
			"expected '{' or ';' after function signature, got %s", end.Type.String())
	}

	return decl, nil
}

// parseParameterList parses zero or more name: type parameters
func (p *Parser) parseParameterList() ([]*Parameter, *ParseError) {
	params := make([]*Parameter, 0)

	if p.cursor.Current().Type == lexer.TokenRParen {
		return params, nil
	}

	for {
		nameTok, err := p.expect(lexer.TokenIdentifier, "parameter list")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon, "parameter list"); err != nil {
			return nil, err
		}
		typeTok, err := p.expect(lexer.TokenIdentifier, "parameter list")
		if err != nil {
			return nil, err
		}

		params = append(params, &Parameter{
			Span:     nameTok.Span.Union(typeTok.Span),
			Name:     NewIdentifier(nameTok.Span, nameTok.Literal),
			TypeSpec: &TypeRef{Span: typeTok.Span, Name: typeTok.Literal},
		})

		if p.cursor.Current().Type != lexer.TokenComma {
			return params, nil
		}
		p.cursor.Next()
	}
}

// parseStructDeclaration parses an aggregate with fields and an
// optional invariant site
func (p *Parser) parseStructDeclaration() (*StructDeclaration, *ParseError) {
	structTok, err := p.expect(lexer.TokenStruct, "struct declaration")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokenIdentifier, "struct declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLBrace, "struct declaration"); err != nil {
		return nil, err
	}

	decl := &StructDeclaration{
		Name:   NewIdentifier(nameTok.Span, nameTok.Literal),
		Fields: make([]*Field, 0),
	}

	for p.cursor.Current().Type != lexer.TokenRBrace && !p.cursor.AtEnd() {
		tok := p.cursor.Current()

		if tok.Type == lexer.TokenInvariant {
			if decl.Invariant != nil {
				return nil, syntaxErrorf(tok, "struct declaration",
					"aggregate already has an invariant")
			}
			inv, ierr := p.parseInvariantSite()
			if ierr != nil {
				return nil, ierr
			}
			decl.Invariant = inv
			continue
		}

		field, ferr := p.parseField()
		if ferr != nil {
			return nil, ferr
		}
		decl.Fields = append(decl.Fields, field)
	}

	closing, err := p.expect(lexer.TokenRBrace, "struct declaration")
	if err != nil {
		return nil, err
	}
	decl.Span = structTok.Span.Union(closing.Span)
	return decl, nil
}

// parseInvariantSite parses contiguous invariant contract expressions
// and/or one legacy invariant block, lowered to a single invariant
func (p *Parser) parseInvariantSite() (*LoweredContract, *ParseError) {
	group, err := parseContractGroup(p.cursor, ContextAggregate, p.edition)
	if err != nil {
		return nil, err
	}
	legacy, err := parseLegacyContracts(p.cursor, ContextAggregate, nil)
	if err != nil {
		return nil, err
	}
	set, err := LowerContracts(group, legacy)
	if err != nil {
		return nil, err
	}
	if set.Invariant == nil {
		return nil, syntaxErrorf(p.cursor.Current(), "struct declaration",
			"expected invariant contract, got %s", p.cursor.Current().Type.String())
	}
	return set.Invariant, nil
}

// parseField parses one aggregate field: name: type;
func (p *Parser) parseField() (*Field, *ParseError) {
	nameTok, err := p.expect(lexer.TokenIdentifier, "struct field")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenColon, "struct field"); err != nil {
		return nil, err
	}
	typeTok, err := p.expect(lexer.TokenIdentifier, "struct field")
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(lexer.TokenSemicolon, "struct field")
	if err != nil {
		return nil, err
	}

	return &Field{
		Span:     nameTok.Span.Union(semi.Span),
		Name:     NewIdentifier(nameTok.Span, nameTok.Literal),
		TypeSpec: &TypeRef{Span: typeTok.Span, Name: typeTok.Literal},
	}, nil
}

// parseInterfaceDeclaration parses an interface with body-less members
func (p *Parser) parseInterfaceDeclaration() (*InterfaceDeclaration, *ParseError) {
	ifaceTok, err := p.expect(lexer.TokenInterface, "interface declaration")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokenIdentifier, "interface declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLBrace, "interface declaration"); err != nil {
		return nil, err
	}

	decl := &InterfaceDeclaration{
		Name:    NewIdentifier(nameTok.Span, nameTok.Literal),
		Methods: make([]*FunctionDeclaration, 0),
	}

	for p.cursor.Current().Type != lexer.TokenRBrace && !p.cursor.AtEnd() {
		method, merr := p.parseFunctionDeclaration(ContextInterface)
		if merr != nil {
			return nil, merr
		}
		decl.Methods = append(decl.Methods, method)
	}

	closing, err := p.expect(lexer.TokenRBrace, "interface declaration")
	if err != nil {
		return nil, err
	}
	decl.Span = ifaceTok.Span.Union(closing.Span)
	return decl, nil
}
