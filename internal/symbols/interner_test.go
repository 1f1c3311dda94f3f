package symbols

import "testing"

func TestInternIdempotent(t *testing.T) {
	in := New()

	a := in.Intern("foo")
	b := in.Intern("foo")
	if a != b {
		t.Fatalf("Intern(%q) not idempotent: %v != %v", "foo", a, b)
	}

	c := in.Intern("bar")
	if c == a {
		t.Fatalf("distinct text interned to the same symbol")
	}
}

func TestResolveRoundTrip(t *testing.T) {
	in := New()
	for _, s := range []string{"alpha", "beta", "gamma", ""} {
		sym := in.Intern(s)
		if got := in.Resolve(sym); got != s {
			t.Fatalf("Resolve(Intern(%q)) = %q", s, got)
		}
	}
}

func TestLenExcludesReservedSymbol(t *testing.T) {
	in := New()
	if in.Len() != 0 {
		t.Fatalf("fresh interner should have Len() == 0, got %d", in.Len())
	}
	in.Intern("x")
	in.Intern("y")
	in.Intern("x")
	if in.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", in.Len())
	}
}
