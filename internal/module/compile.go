package module

import (
	"kslang/internal/callable"
	"kslang/internal/compiler"
	"kslang/internal/lexer"
	"kslang/internal/parser"
)

// compileSource runs the same lex/parse/compile pipeline a top-level
// program goes through, so a loaded module's source is held to the exact
// same language semantics (spec §4.J: a module's body is ordinary
// kscript, not a restricted dialect).
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
