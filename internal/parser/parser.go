// Package parser implements toylang's recursive-descent, precedence
// climbing parser: a hand-written Pratt-style expression parser with
// bounded recursion/iteration counters and panic-free error recovery --
// every loop consumes at least one token on error.
package parser

import (
	"fmt"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/lexer"
	"github.com/toylang/toylang/internal/symbols"
)

// maxDepth bounds recursion in expr/block/postfix/primary so a deeply (or
// maliciously) nested input fails with a diagnostic instead of
// overflowing the stack. Argument lists, array elements and struct-literal
// fields have no counter of their own; each element is parsed through
// parseExpr and so counts against the same depth.
const maxDepth = 256

// maxBlockStatements bounds per-block iteration so a block can never
// loop forever even if every statement production somehow made zero
// progress.
const maxBlockStatements = 4096

// Parser turns a token stream into a Program, recording diagnostics
// instead of panicking on malformed input.
type Parser struct {
	lex    *lexer.Lexer
	intern *symbols.Interner

	cur  lexer.Token
	peek lexer.Token

	prog  *ast.Program
	diags diag.List

	depth int

	// noStructLiteral suppresses `Ident{` struct-literal disambiguation
	// inside `if`/`while` conditions and index expressions, so the `{`
	// opening the branch body is never mistaken for a struct literal's.
	noStructLiteral bool

	tracing bool
	trace   []string
}

// Option configures a Parser at construction time.
type Option func(*Parser)

func WithTracing(trace bool) Option {
	return func(p *Parser) { p.tracing = trace }
}

// New creates a Parser over source, interning identifiers and string
// literals into intern.
func New(source string, intern *symbols.Interner, opts ...Option) *Parser {
	p := &Parser{
		lex:    lexer.New(source, lexer.WithPreserveComments(true)),
		intern: intern,
		prog:   ast.NewProgram(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	p.advance()
	return p
}

// Diagnostics returns every diagnostic recorded while parsing.
func (p *Parser) Diagnostics() []*diag.Diagnostic { return p.diags.Items() }

// Trace returns the production-entry trace recorded when WithTracing(true)
// was passed to New.
func (p *Parser) Trace() []string { return p.trace }

func (p *Parser) advance() {
	p.cur = p.peek
	for {
		p.peek = p.lex.NextToken()
		if p.peek.Kind == lexer.COMMENT {
			continue
		}
		break
	}
}

func (p *Parser) curIs(kinds ...lexer.TokenKind) bool {
	for _, k := range kinds {
		if p.cur.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) peekIs(kind lexer.TokenKind) bool {
	return p.peek.Kind == kind
}

// skipNewlines consumes any run of NEWLINE tokens; used wherever the
// grammar allows newlines inside `[ ]`, `{ }`, and argument lists.
func (p *Parser) skipNewlines() {
	for p.cur.Kind == lexer.NEWLINE {
		p.advance()
	}
}

// expect consumes cur if it matches kind, recording a diagnostic and
// still advancing otherwise -- every call site consumes at least one
// token even on a mismatch, so parsing always makes progress.
func (p *Parser) expect(kind lexer.TokenKind, what string) lexer.Token {
	tok := p.cur
	if p.cur.Kind != kind {
		p.errorf("expected %s, got %q", what, p.cur.Literal)
	}
	p.advance()
	return tok
}

func (p *Parser) errorf(format string, args ...any) {
	p.diags.Add(diag.New(diag.Syntactic, p.cur.Pos, format, args...))
}

func (p *Parser) intern2(s string) symbols.Symbol {
	return p.intern.Intern(s)
}

// enter increments the recursion-depth counter, returning false (and
// recording a diagnostic) once maxDepth is exceeded so the caller can
// bail out with a synthetic node instead of overflowing the Go stack.
func (p *Parser) enter() bool {
	p.depth++
	if p.tracing {
		p.trace = append(p.trace, fmt.Sprintf("%d:%d depth %d %q", p.cur.Pos.Line, p.cur.Pos.Column, p.depth, p.cur.Literal))
	}
	if p.depth > maxDepth {
		p.errorf("expression nesting too deep (limit %d)", maxDepth)
		return false
	}
	return true
}

func (p *Parser) exit() { p.depth-- }

// syntheticNull returns a Null expression standing in for a production
// that could not be parsed, so parsing always makes progress.
func (p *Parser) syntheticNull() ast.ExprRef {
	return p.prog.Exprs.AddNull()
}

// Parse runs the Parser to completion, returning the resulting Program.
// Diagnostics (if any) are available via Diagnostics().
func Parse(source string, intern *symbols.Interner, opts ...Option) (*ast.Program, []*diag.Diagnostic) {
	p := New(source, intern, opts...)
	p.parseProgram()
	return p.prog, p.Diagnostics()
}

func (p *Parser) parseProgram() {
	p.skipNewlines()

	if p.cur.Kind == lexer.PACKAGE {
		p.parsePackageDecl()
		p.skipNewlines()
	}
	for p.cur.Kind == lexer.IMPORT {
		p.parseImportDecl()
		p.skipNewlines()
	}

	iterations := 0
	for p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("too many top-level declarations (limit %d)", maxBlockStatements)
			return
		}
		before := p.cur
		p.parseTopLevelDecl()
		p.skipNewlines()
		if p.cur == before {
			// Defensive progress guarantee: parseTopLevelDecl must
			// always consume at least one token.
			p.advance()
		}
	}
}

func (p *Parser) parsePackageDecl() {
	p.advance() // 'package'
	path := p.parsePathSymbols()
	if len(path) == 0 {
		p.errorf("package declaration requires a non-empty path")
	}
	for _, seg := range path {
		if isReservedWord(p.intern.Resolve(seg)) {
			p.errorf("package path segment %q is a reserved word", p.intern.Resolve(seg))
		}
	}
	p.prog.Package = &ast.PackageDecl{Path: path}
}

func (p *Parser) parseImportDecl() {
	p.advance() // 'import'
	path := p.parsePathSymbols()
	if len(path) == 0 {
		p.errorf("import declaration requires a non-empty path")
		return
	}
	alias := path[len(path)-1]
	p.prog.Imports = append(p.prog.Imports, ast.ImportDecl{Path: path, Alias: alias})
}

func (p *Parser) parsePathSymbols() []symbols.Symbol {
	var path []symbols.Symbol
	if p.cur.Kind != lexer.IDENT {
		return path
	}
	path = append(path, p.intern2(p.cur.Literal))
	p.advance()
	for p.cur.Kind == lexer.COLONCOLON && p.peek.Kind == lexer.IDENT {
		p.advance()
		path = append(path, p.intern2(p.cur.Literal))
		p.advance()
	}
	return path
}

func pathsEqual(a, b []symbols.Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var reservedWords = map[string]bool{
	"fn": true, "val": true, "var": true, "if": true, "elif": true, "else": true,
	"while": true, "for": true, "in": true, "to": true, "break": true,
	"continue": true, "return": true, "struct": true, "impl": true, "pub": true,
	"package": true, "import": true, "true": true, "false": true, "null": true,
	"self": true,
}

func isReservedWord(s string) bool { return reservedWords[s] }

func (p *Parser) parseTopLevelDecl() {
	switch p.cur.Kind {
	case lexer.PUB:
		p.advance()
		switch p.cur.Kind {
		case lexer.FN:
			fn := p.parseFunction(ast.Public)
			p.prog.Functions = append(p.prog.Functions, fn)
		case lexer.STRUCT:
			ref := p.parseStructDecl(ast.Public)
			p.prog.Structs = append(p.prog.Structs, ref)
		default:
			p.errorf("expected 'fn' or 'struct' after 'pub', got %q", p.cur.Literal)
			p.advance()
		}
	case lexer.FN:
		fn := p.parseFunction(ast.Private)
		p.prog.Functions = append(p.prog.Functions, fn)
	case lexer.STRUCT:
		ref := p.parseStructDecl(ast.Private)
		p.prog.Structs = append(p.prog.Structs, ref)
	case lexer.IMPL:
		ref := p.parseImplBlock()
		p.prog.Impls = append(p.prog.Impls, ref)
	default:
		p.errorf("unexpected token %q at top level", p.cur.Literal)
		p.advance()
	}
}

func (p *Parser) String() string {
	return fmt.Sprintf("Parser{cur:%v peek:%v}", p.cur.Kind, p.peek.Kind)
}
