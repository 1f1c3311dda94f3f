package eval

import "github.com/toylang/toylang/internal/symbols"

// Environment is the evaluator's scope-frame chain. toylang identifiers
// are already resolved to symbols.Symbol by the interner, so the store
// here is a plain map keyed by Symbol rather than a string-keyed,
// case-folding lookup.
type Environment struct {
	store map[symbols.Symbol]*Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[symbols.Symbol]*Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[symbols.Symbol]*Object), outer: outer}
}

// Get searches this frame, then recursively each outer frame.
func (e *Environment) Get(name symbols.Symbol) (*Object, bool) {
	if v, ok := e.store[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Define binds name in the current frame: how both `Val` and `Var`
// allocate (always in the innermost frame, overwriting any local shadow
// silently).
func (e *Environment) Define(name symbols.Symbol, val *Object) {
	e.store[name] = val
}

// Assign rebinds name to val wherever it is already defined in the
// frame chain, reporting false if name is undefined anywhere in scope.
func (e *Environment) Assign(name symbols.Symbol, val *Object) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

func (e *Environment) Outer() *Environment { return e.outer }
