package toylang

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/checker"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/eval"
	"github.com/toylang/toylang/internal/parser"
	"github.com/toylang/toylang/internal/symbols"
)

// Program is a parsed (and, after Compile, type-checked) compilation
// unit: the pooled AST plus the interner its symbols were allocated
// from. Both travel together because every accessor that resolves a
// symbol to text needs the same interner the parse used.
type Program struct {
	ast    *ast.Program
	intern *symbols.Interner
}

// AST exposes the underlying pooled program, for callers that want to
// walk it directly (AST dump, tooling).
func (p *Program) AST() *ast.Program { return p.ast }

// Interner exposes the symbol table backing every name in AST().
func (p *Program) Interner() *symbols.Interner { return p.intern }

// Parse lexes and parses source into a Program, without type-checking
// or module integration. Parser diagnostics accumulate across the whole
// pass rather than stopping at the
// first, so the returned slice may hold more than one entry.
func (e *Engine) Parse(source string) (*Program, []*diag.Diagnostic) {
	intern := symbols.New()
	prog, diags := parser.Parse(source, intern)
	return &Program{ast: prog, intern: intern}, diags
}

// Compile runs Parse, then merges every imported module (when a
// SourceLoader was configured) and type-checks the result. The returned
// Program is always usable for AST inspection even when diagnostics are
// non-empty; it is only safe to evaluate when the diagnostic slice is
// empty.
func (e *Engine) Compile(source string) (*Program, []*diag.Diagnostic) {
	prog, diags := e.Parse(source)
	if len(diags) > 0 {
		return prog, diags
	}

	if integrator := e.newIntegrator(prog.intern); integrator != nil && len(prog.ast.Imports) > 0 {
		if modDiags := integrator.Integrate(prog.ast); len(modDiags) > 0 {
			return prog, modDiags
		}
	}

	if !e.typeCheck {
		return prog, nil
	}

	checkDiags := checker.Check(prog.ast, prog.intern)
	return prog, checkDiags
}

// Eval compiles source and runs its entry function (WithEntry, default
// "main"), returning the call's result. It returns the first diagnostic
// encountered at whichever phase failed: parse, module integration,
// type-check, or evaluation.
func (e *Engine) Eval(source string) (*eval.Object, *diag.Diagnostic) {
	if !e.typeCheck {
		return nil, &diag.Diagnostic{
			Kind:    diag.Runtime,
			Message: "cannot evaluate a program compiled with type checking disabled",
		}
	}
	prog, diags := e.Compile(source)
	if len(diags) > 0 {
		return nil, diags[0]
	}
	return e.Execute(prog)
}

// Execute evaluates an already-compiled (and presumed type-checked)
// Program's entry function. Separated from Eval so a caller that wants
// to inspect or cache the compiled Program (e.g. the AST dump commands)
// doesn't have to re-parse to then execute it.
func (e *Engine) Execute(prog *Program) (*eval.Object, *diag.Diagnostic) {
	evaluator := eval.New(prog.ast, prog.intern, e.evalOptions()...)
	return evaluator.Run(e.entry)
}
