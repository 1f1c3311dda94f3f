package ast

import (
	"testing"

	"github.com/toylang/toylang/internal/symbols"
)

func TestExprPoolStability(t *testing.T) {
	p := NewExprPool()
	r1 := p.AddInt64(10)
	r2 := p.AddInt64(20)

	if p.Int64Val(r1) != 10 || p.Int64Val(r2) != 20 {
		t.Fatalf("refs did not round-trip: %d, %d", p.Int64Val(r1), p.Int64Val(r2))
	}

	// Handing out more refs must not move previously returned ones.
	for i := 0; i < 100; i++ {
		p.AddInt64(int64(i))
	}
	if p.Int64Val(r1) != 10 || p.Int64Val(r2) != 20 {
		t.Fatalf("earlier refs moved after further allocation")
	}
}

func TestUpdateInPlaceClearsOtherFields(t *testing.T) {
	p := NewExprPool()
	numText := symbols.Symbol(1)
	r := p.AddNumber(numText)

	if p.Kind(r) != ExprNumber {
		t.Fatalf("expected ExprNumber, got %v", p.Kind(r))
	}

	p.UpdateToUInt64(r, 42)

	if p.Kind(r) != ExprUInt64 {
		t.Fatalf("expected ExprUInt64 after update, got %v", p.Kind(r))
	}
	if p.UInt64Val(r) != 42 {
		t.Fatalf("UInt64Val = %d, want 42", p.UInt64Val(r))
	}
	// The symbol field must be cleared, not merely shadowed by the kind
	// change, per "clear every side-array slot first".
	if p.SymbolVal(r) != 0 {
		t.Fatalf("symbolVal not cleared after update: %v", p.SymbolVal(r))
	}

	// The same index is reused -- no new ref was allocated.
	if p.Len() != 2 { // NoExpr slot + the one node
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestStmtPoolValAndVar(t *testing.T) {
	sp := NewStmtPool()
	ep := NewExprPool()
	init := ep.AddInt64(5)

	name := symbols.Symbol(2)
	valRef := sp.AddVal(name, nil, init)
	if sp.Kind(valRef) != StmtVal {
		t.Fatalf("expected StmtVal")
	}
	if sp.HasTypeDecl(valRef) {
		t.Fatalf("expected no declared type for implicit val")
	}
	if sp.ExprVal(valRef) != init {
		t.Fatalf("ExprVal mismatch")
	}

	varRef := sp.AddVar(name, nil, NoExpr)
	if sp.ExprVal(varRef) != NoExpr {
		t.Fatalf("deferred var initializer should be NoExpr")
	}
}

func TestLocationPoolParallelToExprPool(t *testing.T) {
	lp := NewLocationPool()
	ep := NewExprPool()

	r := ep.AddInt64(1)
	if _, ok := lp.ExprLoc(r); ok {
		t.Fatalf("expected no location set yet")
	}
}
