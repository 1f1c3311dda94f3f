// Package toylang is the library surface over the compiler core
// (internal/lexer, internal/parser, internal/checker, internal/eval,
// internal/module): a small Engine type wiring lex → parse → integrate
// modules → type-check → evaluate, configured through the usual
// functional-options pattern.
package toylang

import (
	"io"

	"github.com/toylang/toylang/internal/eval"
	"github.com/toylang/toylang/internal/eval/heap"
	"github.com/toylang/toylang/internal/module"
	"github.com/toylang/toylang/internal/symbols"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTrace enables one line of evaluator trace output per statement
// evaluated and per destructor run, written to w.
func WithTrace(w io.Writer) Option {
	return func(e *Engine) { e.trace = w }
}

// WithHeap overrides the default fake heap backing the __builtin_*
// memory intrinsics.
func WithHeap(h heap.Heap) Option {
	return func(e *Engine) { e.heap = h }
}

// WithSourceLoader supplies the collaborator the Module Integrator uses
// to resolve `import` declarations. Without one, Compile skips module
// integration and the imports stay unresolved without a diagnostic: the
// engine has no default loader, matching
// this language's framing of module resolution as the driver's concern.
func WithSourceLoader(l module.SourceLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithEntry overrides the function name Eval/Execute locate and call.
// Defaults to "main".
func WithEntry(name string) Option {
	return func(e *Engine) { e.entry = name }
}

// WithTypeCheck toggles the type-checking pass Compile and Eval run
// before evaluation. Disabling it is only useful for inspecting a
// program's raw parsed shape (e.g. via AST dump) when its semantics are
// still incomplete; Eval refuses to run while it is disabled, and Execute
// runs whatever Program it is given without checking it.
func WithTypeCheck(enabled bool) Option {
	return func(e *Engine) { e.typeCheck = enabled }
}

// Engine is the reusable compiler/evaluator front-end: one Engine can
// run Parse/Compile/Eval any number of times, each against its own fresh
// symbols.Interner and ast.Program (this language's pools are not meant to be
// shared across independent compilations).
type Engine struct {
	trace     io.Writer
	heap      heap.Heap
	loader    module.SourceLoader
	entry     string
	typeCheck bool
}

// New creates an Engine with opts applied over the defaults (type
// checking on, entry function "main", no module loader, no trace).
func New(opts ...Option) *Engine {
	e := &Engine{entry: "main", typeCheck: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// evalOptions translates Engine configuration into internal/eval.Option
// values for a fresh Evaluator.
func (e *Engine) evalOptions() []eval.Option {
	var opts []eval.Option
	if e.trace != nil {
		opts = append(opts, eval.WithTrace(e.trace))
	}
	if e.heap != nil {
		opts = append(opts, eval.WithHeap(e.heap))
	}
	return opts
}

// newIntegrator builds a module.Integrator bound to intern, or nil if no
// SourceLoader was configured (Integrate is then simply never called).
func (e *Engine) newIntegrator(intern *symbols.Interner) *module.Integrator {
	if e.loader == nil {
		return nil
	}
	return module.NewIntegrator(e.loader, intern)
}
