// verity-lexdump prints the token stream of a Verity source file, one
// token per line. Useful when a contract fails to parse and the exact
// lookahead sequence matters.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/verity-lang/verity/internal/lexer"
)

var spans = flag.Bool("spans", false, "print full spans instead of start positions")

func main() {
	flag.Parse()

	var (
		src      []byte
		filename string
		err      error
	)

	switch flag.NArg() {
	case 0:
		src, err = io.ReadAll(os.Stdin)
		filename = "<stdin>"
	case 1:
		filename = flag.Arg(0)
		src, err = os.ReadFile(filename)
	default:
		fmt.Fprintln(os.Stderr, "usage: verity-lexdump [-spans] [file]")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "verity-lexdump: %v\n", err)
		os.Exit(2)
	}

	for i, tok := range lexer.Tokenize(string(src), filename) {
		loc := tok.Span.Start.String()
		if *spans {
			loc = tok.Span.String()
		}
		fmt.Printf("%3d: %-18s %-12q %s\n", i, tok.Type.String(), tok.Literal, loc)

		if tok.Type == lexer.TokenEOF {
			break
		}
	}
}
