// Package parser extracts symbols and references from Go source files using
// AST analysis.
//
// The parser operates on in-memory content supplied by the caller, so it
// works identically over the real filesystem and the virtual filesystems the
// tests use:
//
//	p := parser.New()
//	result, err := p.ParseBytes("/src/proj/auth.go", content)
//
//	for _, sym := range result.Symbols {
//	    fmt.Printf("%s %s at line %d\n", sym.Kind, sym.Name, sym.Start.Line)
//	}
//
// # Extracted Symbols
//
// Functions, methods, structs (with fields), interfaces, named types,
// constants, and variables. Each symbol carries its signature, doc comment,
// visibility scope, and source positions.
//
// # References
//
// Every symbol definition contributes a definition-site reference, and every
// call expression with a named callee contributes a use-site reference.
// References are name-based: resolution across packages is left to the
// consumer of the index.
//
// # Error Handling
//
// Syntax errors are non-fatal. The parser records them in the result and
// extracts whatever the partial AST still yields, so a file with one broken
// function keeps its other symbols indexed.
package parser
