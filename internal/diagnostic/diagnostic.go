// Diagnostic reporting for the Verity contract front end.
// Maps parse failures into structured diagnostics carrying an error
// code, a source position, and an explanatory message.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verity-lang/verity/internal/parser"
	"github.com/verity-lang/verity/internal/position"
)

// Level represents the severity level of a diagnostic message.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code        string
	Title       string
	Message     string
	Suggestions []string
	Span        position.Span
	Level       Level
}

// Builder helps construct diagnostic messages with a fluent API.
type Builder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *Builder {
	return &Builder{
		diagnostic: &Diagnostic{
			Suggestions: make([]string, 0),
		},
	}
}

func (b *Builder) Error() *Builder {
	b.diagnostic.Level = LevelError

	return b
}

func (b *Builder) Warning() *Builder {
	b.diagnostic.Level = LevelWarning

	return b
}

func (b *Builder) Code(code string) *Builder {
	b.diagnostic.Code = code

	return b
}

func (b *Builder) Title(title string) *Builder {
	b.diagnostic.Title = title

	return b
}

func (b *Builder) Message(message string) *Builder {
	b.diagnostic.Message = message

	return b
}

func (b *Builder) Span(span position.Span) *Builder {
	b.diagnostic.Span = span

	return b
}

func (b *Builder) Suggest(suggestion string) *Builder {
	b.diagnostic.Suggestions = append(b.diagnostic.Suggestions, suggestion)

	return b
}

func (b *Builder) Build() *Diagnostic {
	return b.diagnostic
}

// FromParseError converts a parser error into a diagnostic. Contract
// error kinds keep their dedicated codes and titles; anything else
// reports as a plain syntax error.
func FromParseError(err error) *Diagnostic {
	perr, ok := err.(*parser.ParseError)
	if !ok {
		return NewDiagnostic().
			Error().
			Code("E1001").
			Title("syntax error").
			Message(err.Error()).
			Build()
	}

	b := NewDiagnostic().
		Error().
		Code(perr.Kind.Code()).
		Title(perr.Kind.String()).
		Message(perr.Message).
		Span(position.Span{Start: perr.Position, End: perr.Position})

	if perr.Kind == parser.ErrAmbiguousOutExpression {
		b.Suggest("separate the return identifier with ';', as in out(r; condition)")
		b.Suggest("compare the identifier explicitly, as in out(value != 0)")
	}

	return b.Build()
}

// Engine manages the collection and formatting of diagnostics.
type Engine struct {
	diagnostics []Diagnostic
}

// NewEngine creates a new diagnostic engine.
func NewEngine() *Engine {
	return &Engine{
		diagnostics: make([]Diagnostic, 0),
	}
}

// Add adds a diagnostic to the engine.
func (e *Engine) Add(d *Diagnostic) {
	e.diagnostics = append(e.diagnostics, *d)
}

// AddParseErrors converts and adds a batch of parse errors.
func (e *Engine) AddParseErrors(errs []error) {
	for _, err := range errs {
		e.Add(FromParseError(err))
	}
}

// Diagnostics returns all collected diagnostics.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diagnostics
}

// HasErrors returns true if there are any error-level diagnostics.
func (e *Engine) HasErrors() bool {
	for _, d := range e.diagnostics {
		if d.Level == LevelError {
			return true
		}
	}

	return false
}

// Sort orders diagnostics by position, then by severity.
func (e *Engine) Sort() {
	sort.Slice(e.diagnostics, func(i, j int) bool {
		a, b := e.diagnostics[i], e.diagnostics[j]

		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}

		return a.Level < b.Level
	})
}

// Format returns a formatted string representation of all diagnostics.
func (e *Engine) Format() string {
	if len(e.diagnostics) == 0 {
		return ""
	}

	e.Sort()

	var result strings.Builder

	for _, d := range e.diagnostics {
		result.WriteString(fmt.Sprintf("%s:%d:%d: %s[%s]: %s\n",
			d.Span.Start.Filename,
			d.Span.Start.Line,
			d.Span.Start.Column,
			d.Level.String(),
			d.Code,
			d.Title,
		))

		if d.Message != "" {
			result.WriteString(fmt.Sprintf("  %s\n", d.Message))
		}

		for _, s := range d.Suggestions {
			result.WriteString(fmt.Sprintf("    - %s\n", s))
		}
	}

	return result.String()
}

// Clear removes all diagnostics.
func (e *Engine) Clear() {
	e.diagnostics = e.diagnostics[:0]
}
