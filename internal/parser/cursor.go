package parser

import (
	"github.com/verity-lang/verity/internal/lexer"
)

// Cursor is a read cursor over an immutable token buffer. Backtracking
// is an index save/restore; the buffer itself is never modified, so a
// restored cursor observes exactly the tokens it saw before.
type Cursor struct {
	tokens []lexer.Token
	index  int
}

// NewCursor creates a cursor over the given tokens. The buffer must end
// with a TokenEOF token; one is appended if missing.
func NewCursor(tokens []lexer.Token) *Cursor {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokenEOF {
		tokens = append(tokens, lexer.Token{Type: lexer.TokenEOF})
	}
	return &Cursor{tokens: tokens}
}

// Peek returns the token k positions ahead without consuming anything.
// Peeking past the end returns the trailing EOF token.
func (c *Cursor) Peek(k int) lexer.Token {
	i := c.index + k
	if i >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[i]
}

// Current returns the token under the cursor.
func (c *Cursor) Current() lexer.Token {
	return c.Peek(0)
}

// Next returns the token under the cursor and advances past it.
// Advancing at EOF keeps returning the EOF token.
func (c *Cursor) Next() lexer.Token {
	tok := c.Current()
	if c.index < len(c.tokens)-1 {
		c.index++
	}
	return tok
}

// Mark returns an opaque mark for the current cursor state.
func (c *Cursor) Mark() int {
	return c.index
}

// Restore rewinds the cursor to a previously obtained mark.
func (c *Cursor) Restore(mark int) {
	if mark >= 0 && mark < len(c.tokens) {
		c.index = mark
	}
}

// AtEnd reports whether the cursor has reached the EOF token.
func (c *Cursor) AtEnd() bool {
	return c.Current().Type == lexer.TokenEOF
}
