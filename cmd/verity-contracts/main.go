// verity-contracts lowers contract expressions in Verity source files
// to the legacy block form.
//
// Usage:
//
//	verity-contracts [flags] [files...]
//
// By default the lowered source is written to stdout. With -w the files
// are rewritten in place; with -l only the names of files that would
// change are listed. -watch re-lowers files whenever they change on
// disk.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/verity-lang/verity/internal/diagnostic"
	"github.com/verity-lang/verity/internal/edition"
	"github.com/verity-lang/verity/internal/lexer"
	"github.com/verity-lang/verity/internal/parser"
	"github.com/verity-lang/verity/internal/watch"
)

var (
	write       = flag.Bool("w", false, "write result to (source) file instead of stdout")
	list        = flag.Bool("l", false, "list files whose lowering differs from the source")
	useStdin    = flag.Bool("stdin", false, "read source from stdin")
	editionFlag = flag.String("edition", "", "language edition (e.g. 2.1.0); defaults to the latest")
	watchMode   = flag.Bool("watch", false, "watch files and re-lower on change (implies -w)")
	verbose     = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	ed := edition.Latest()
	if *editionFlag != "" {
		parsed, err := edition.Parse(*editionFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verity-contracts: invalid edition %q: %v\n", *editionFlag, err)
			os.Exit(2)
		}
		ed = parsed
	}

	if *useStdin {
		if flag.NArg() > 0 {
			fmt.Fprintln(os.Stderr, "verity-contracts: cannot mix -stdin with file arguments")
			os.Exit(2)
		}
		os.Exit(runStdin(ed))
	}

	files, err := collectFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "verity-contracts: %v\n", err)
		os.Exit(2)
	}
	if len(files) == 0 {
		usage()
		os.Exit(2)
	}

	if *watchMode {
		os.Exit(runWatch(files, ed))
	}

	exitCode := 0
	for _, file := range files {
		if err := processFile(file, ed); err != nil {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: verity-contracts [flags] [files...]")
	fmt.Fprintln(os.Stderr, "       verity-contracts -stdin < file.vty")
	flag.PrintDefaults()
}

// collectFiles expands directory arguments into their .vty files
func collectFiles(args []string) ([]string, error) {
	files := make([]string, 0, len(args))

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".vty") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// lower parses a source text and renders it with all contracts in the
// legacy block form. Parse failures are reported through the
// diagnostic engine.
func lower(source, filename string, ed *edition.Edition) (string, bool) {
	p := parser.NewParser(lexer.Tokenize(source, filename), parser.Config{
		Filename: filename,
		Edition:  ed,
	})

	program, errs := p.Parse()
	if len(errs) > 0 {
		engine := diagnostic.NewEngine()
		engine.AddParseErrors(errs)
		fmt.Fprint(os.Stderr, engine.Format())
		return "", false
	}

	return parser.Print(program), true
}

func processFile(file string, ed *edition.Edition) error {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verity-contracts: %v\n", err)
		return err
	}

	lowered, ok := lower(string(src), file, ed)
	if !ok {
		return fmt.Errorf("%s: parse failed", file)
	}

	switch {
	case *list:
		if lowered != string(src) {
			fmt.Println(file)
		}
	case *write:
		if lowered == string(src) {
			return nil
		}
		if err := os.WriteFile(file, []byte(lowered), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "verity-contracts: %v\n", err)
			return err
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "rewrote %s\n", file)
		}
	default:
		fmt.Print(lowered)
	}

	return nil
}

func runStdin(ed *edition.Edition) int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verity-contracts: %v\n", err)
		return 2
	}

	lowered, ok := lower(string(src), "<stdin>", ed)
	if !ok {
		return 1
	}

	fmt.Print(lowered)
	return 0
}

// runWatch rewrites each file once, then keeps rewriting on every
// write event until interrupted.
func runWatch(files []string, ed *edition.Edition) int {
	*write = true

	watched := make(map[string]bool, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err == nil {
			watched[abs] = true
		}
		processFile(file, ed)
	}

	w, err := watch.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "verity-contracts: %v\n", err)
		return 2
	}
	defer w.Close()

	// Watch parent directories; editors replace files on save, which
	// drops per-file watches.
	dirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "verity-contracts: watch %s: %v\n", dir, err)
			return 2
		}
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "watching %d file(s)\n", len(files))
	}

	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return 0
			}
			if !ev.Has(watch.OpWrite) && !ev.Has(watch.OpCreate) {
				continue
			}
			abs, err := filepath.Abs(ev.Path)
			if err != nil || !watched[abs] {
				continue
			}
			processFile(ev.Path, ed)
		case err := <-w.Errors():
			fmt.Fprintf(os.Stderr, "verity-contracts: watch: %v\n", err)
		}
	}
}
