package checker

import (
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// scope is one lexical frame of the checker's scope stack, chained to its
// enclosing frame the same way the evaluator's Environment chains to its
// outer frame.
type scope struct {
	vars  map[symbols.Symbol]types.TypeDecl
	outer *scope
}

func newScope(outer *scope) *scope {
	return &scope{vars: make(map[symbols.Symbol]types.TypeDecl), outer: outer}
}

func (s *scope) define(name symbols.Symbol, t types.TypeDecl) {
	s.vars[name] = t
}

func (s *scope) lookup(name symbols.Symbol) (types.TypeDecl, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return types.TypeDecl{}, false
}

// update rewrites the nearest frame in which name is already bound -- used
// when a Number-typed scope entry is resolved to a concrete type after the
// fact.
func (s *scope) update(name symbols.Symbol, t types.TypeDecl) bool {
	for cur := s; cur != nil; cur = cur.outer {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = t
			return true
		}
	}
	return false
}

// pushScope/popScope implement push_context/pop_context,
// opening and closing one lexical frame.
func (c *Checker) pushScope() {
	c.scopeTop = newScope(c.scopeTop)
}

func (c *Checker) popScope() {
	c.scopeTop = c.scopeTop.outer
}
