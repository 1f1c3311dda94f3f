package diag

import (
	"strings"
	"testing"

	"github.com/toylang/toylang/internal/lexer"
)

func TestNewAttachesPosition(t *testing.T) {
	pos := lexer.Position{Line: 3, Column: 7, Offset: 20}
	d := New(Syntactic, pos, "unexpected token %q", ";")
	if d.Pos == nil || *d.Pos != pos {
		t.Fatalf("expected Pos to be set to %v, got %v", pos, d.Pos)
	}
	if d.Message != `unexpected token ";"` {
		t.Fatalf("unexpected message: %q", d.Message)
	}
}

func TestNewWithoutPosHasNilPos(t *testing.T) {
	d := NewWithoutPos(NameResolution, "function %q not found", "main")
	if d.Pos != nil {
		t.Fatalf("expected nil Pos")
	}
}

func TestWithPosIfMissingDoesNotOverwrite(t *testing.T) {
	first := lexer.Position{Line: 1, Column: 1}
	second := lexer.Position{Line: 99, Column: 99}
	d := New(TypeMismatch, first, "mismatch")
	d2 := d.WithPosIfMissing(second)
	if *d2.Pos != first {
		t.Fatalf("WithPosIfMissing must not overwrite an existing position")
	}

	d3 := NewWithoutPos(TypeMismatch, "mismatch")
	d4 := d3.WithPosIfMissing(second)
	if *d4.Pos != second {
		t.Fatalf("WithPosIfMissing must attach when missing")
	}
}

func TestFormatIncludesSourceExcerptAndCaret(t *testing.T) {
	source := "fn main() {\n  1 +\n}\n"
	pos := lexer.Position{Line: 2, Column: 5}
	d := New(Syntactic, pos, "expected expression")
	out := d.Format(source, false)
	if !strings.Contains(out, "1 +") {
		t.Fatalf("expected source excerpt in output, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected a caret in output, got:\n%s", out)
	}
	if !strings.Contains(out, "2:5") {
		t.Fatalf("expected line:column in output, got:\n%s", out)
	}
}

func TestListCollectsMultipleDiagnostics(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Fatalf("empty list must report no errors")
	}
	l.Add(NewWithoutPos(TypeMismatch, "first"))
	l.Add(NewWithoutPos(TypeMismatch, "second"))
	if !l.HasErrors() {
		t.Fatalf("expected HasErrors true after Add")
	}
	if len(l.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(l.Items()))
	}
}
