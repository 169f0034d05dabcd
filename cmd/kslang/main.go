// Command kslang is the CLI surface spec §6 describes: a program accepts
// a file path or -e <expression>, exits 0 on successful completion and
// non-zero on an uncaught error.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"kslang/internal/callable"
	"kslang/internal/compiler"
	"kslang/internal/lexer"
	"kslang/internal/object"
	"kslang/internal/parser"
	"kslang/internal/vm"

	_ "kslang/internal/stdlib/cryptomod"
	_ "kslang/internal/stdlib/dbmod"
	_ "kslang/internal/stdlib/netmod"
	_ "kslang/internal/stdlib/strmod"
	_ "kslang/internal/stdlib/timemod"
	_ "kslang/internal/stdlib/uuidmod"
)

func main() {
	os.Exit(run())
}

func run() int {
	expr := flag.String("e", "", "evaluate expression instead of running a file")
	flag.Parse()

	var (
		file   string
		source string
	)
	switch {
	case *expr != "":
		file = "<expr>"
		source = *expr
	case flag.NArg() >= 1:
		file = flag.Arg(0)
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kslang: %v\n", err)
			return 1
		}
		source = string(b)
	default:
		fmt.Fprintln(os.Stderr, "usage: kslang <file> | -e <expr>")
		return 1
	}

	code, err := compileSource(file, source)
	if err != nil {
		printErr(err)
		return 1
	}

	machine := vm.New()
	result, err := machine.Run(code)
	object.DecRef(result)
	if err != nil {
		printErr(err)
		return 1
	}
	return 0
}

func compileSource(file, source string) (*callable.Code, error) {
	sc := lexer.NewScanner(file, source)
	toks, err := sc.ScanTokens()
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(file, toks)
	block, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return compiler.CompileProgram(file, block)
}

// printErr writes an uncaught error's full diagnostic (kind, message,
// source excerpt with a caret-underlined span, call stack) to stderr,
// ANSI-coloring the whole message when stderr is a real terminal (spec §7
// "User-visible behaviour").
func printErr(err error) {
	msg := err.Error()
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m", msg)
		return
	}
	fmt.Fprint(os.Stderr, msg)
}
