package eval

import (
	"strings"
	"testing"

	"github.com/toylang/toylang/internal/checker"
	"github.com/toylang/toylang/internal/parser"
	"github.com/toylang/toylang/internal/symbols"
)

// runSource parses, type-checks, and evaluates src's "main" function,
// failing the test on any parse or type-check diagnostic (mirroring
// checker's checkSource helper).
func runSource(t *testing.T, src string) *Object {
	t.Helper()
	in := symbols.New()
	prog, pdiags := parser.Parse(src, in)
	if len(pdiags) != 0 {
		for _, d := range pdiags {
			t.Logf("parse diag: %s", d.Error())
		}
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	if diags := checker.Check(prog, in); len(diags) != 0 {
		for _, d := range diags {
			t.Logf("check diag: %s", d.Error())
		}
		t.Fatalf("expected no check diagnostics, got %d", len(diags))
	}
	e := New(prog, in)
	obj, err := e.Run("main")
	if err != nil {
		t.Fatalf("unexpected evaluation error: %s", err.Error())
	}
	return obj
}

func TestEvalLiteralsAndArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, o *Object)
	}{
		{"int literal", `fn main() -> i64 { 42 }`, func(t *testing.T, o *Object) {
			if o.Kind != KindInt64 || o.Int64Val != 42 {
				t.Fatalf("got %+v", o)
			}
		}},
		{"arithmetic precedence", `fn main() -> i64 { 2 + 3 * 4 }`, func(t *testing.T, o *Object) {
			if o.Int64Val != 14 {
				t.Fatalf("got %d", o.Int64Val)
			}
		}},
		{"bindings", `fn main() -> i64 { val a = 10; val b = 5; a - b }`, func(t *testing.T, o *Object) {
			if o.Int64Val != 5 {
				t.Fatalf("got %d", o.Int64Val)
			}
		}},
		{"bitwise", `fn main() -> u64 { 6u64 & 3u64 | 8u64 }`, func(t *testing.T, o *Object) {
			if o.UInt64Val != 10 {
				t.Fatalf("got %d", o.UInt64Val)
			}
		}},
		{"string concat", `fn main() -> string { val a = "foo"; val b = "bar"; a + b }`, func(t *testing.T, o *Object) {
			if o.String() != "foobar" {
				t.Fatalf("got %q", o.String())
			}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, runSource(t, tc.src))
		})
	}
}

func TestEvalIfElifElse(t *testing.T) {
	src := `
fn classify(n: i64) -> string {
    if n < 0 { "neg" } elif n == 0 { "zero" } else { "pos" }
}
fn main() -> string {
    classify(-3)
}
`
	obj := runSource(t, src)
	if obj.String() != "neg" {
		t.Fatalf("got %q", obj.String())
	}
}

func TestEvalForLoopAccumulates(t *testing.T) {
	src := `
fn main() -> u64 {
    var total: u64 = 0;
    for i in 0u64 to 5u64 {
        total = total + i;
    }
    total
}
`
	obj := runSource(t, src)
	if obj.UInt64Val != 10 {
		t.Fatalf("got %d", obj.UInt64Val)
	}
}

func TestEvalWhileBreakContinue(t *testing.T) {
	src := `
fn main() -> u64 {
    var i: u64 = 0;
    var total: u64 = 0;
    while true {
        i = i + 1u64;
        if i == 3u64 { continue; }
        if i > 5u64 { break; }
        total = total + i;
    }
    total
}
`
	obj := runSource(t, src)
	// i runs 1,2,3(skip),4,5,6(break): total = 1+2+4+5 = 12
	if obj.UInt64Val != 12 {
		t.Fatalf("got %d", obj.UInt64Val)
	}
}

func TestEvalStructMethodCall(t *testing.T) {
	src := `
struct Point { x: i64, y: i64 }
impl Point {
    fn sum(&self) -> i64 { self.x + self.y }
}
fn main() -> i64 {
    val p = Point { x: 3, y: 4 };
    p.sum()
}
`
	obj := runSource(t, src)
	if obj.Int64Val != 7 {
		t.Fatalf("got %d", obj.Int64Val)
	}
}

func TestEvalOperatorOverloadGetItem(t *testing.T) {
	src := `
struct Vec { data: i64 }
impl Vec {
    fn __getitem__(&self, idx: u64) -> i64 { self.data }
}
fn main() -> i64 {
    val v = Vec { data: 9 };
    v[0]
}
`
	obj := runSource(t, src)
	if obj.Int64Val != 9 {
		t.Fatalf("got %d", obj.Int64Val)
	}
}

func TestEvalArrayAndDictLiterals(t *testing.T) {
	src := `
fn main() -> u64 {
    val d = [1u64: "a", 2u64: "b"];
    d.len()
}
`
	obj := runSource(t, src)
	if obj.UInt64Val != 2 {
		t.Fatalf("got %d", obj.UInt64Val)
	}
}

func TestEvalTupleAccess(t *testing.T) {
	src := `fn main() -> i64 { val t = (1, 2, 3); t.1 }`
	obj := runSource(t, src)
	if obj.Int64Val != 2 {
		t.Fatalf("got %d", obj.Int64Val)
	}
}

func TestEvalHeapIntrinsics(t *testing.T) {
	src := `
fn main() -> u64 {
    val p = __builtin_heap_alloc(16u64);
    __builtin_ptr_write(p, 7u64);
    val v = __builtin_ptr_read(p);
    __builtin_heap_free(p);
    v
}
`
	obj := runSource(t, src)
	if obj.UInt64Val != 7 {
		t.Fatalf("got %d", obj.UInt64Val)
	}
}

// runSourceExpectRuntimeDiagnostic parses, type-checks, and evaluates src's
// "main" function, failing the test unless evaluation itself produces a
// diagnostic (as opposed to a parse or type-check failure, or a clean run).
func runSourceExpectRuntimeDiagnostic(t *testing.T, src string) {
	t.Helper()
	in := symbols.New()
	prog, pdiags := parser.Parse(src, in)
	if len(pdiags) != 0 {
		for _, d := range pdiags {
			t.Logf("parse diag: %s", d.Error())
		}
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	if diags := checker.Check(prog, in); len(diags) != 0 {
		for _, d := range diags {
			t.Logf("check diag: %s", d.Error())
		}
		t.Fatalf("expected no check diagnostics, got %d", len(diags))
	}
	e := New(prog, in)
	if _, err := e.Run("main"); err == nil {
		t.Fatalf("expected a runtime diagnostic, got none")
	}
}

func TestEvalDoubleFreeIsRuntimeDiagnostic(t *testing.T) {
	runSourceExpectRuntimeDiagnostic(t, `
fn main() -> u64 {
    val p = __builtin_heap_alloc(8u64);
    __builtin_heap_free(p);
    __builtin_heap_free(p);
    0u64
}
`)
}

func TestEvalUseAfterFreeIsRuntimeDiagnostic(t *testing.T) {
	runSourceExpectRuntimeDiagnostic(t, `
fn main() -> u64 {
    val p = __builtin_heap_alloc(8u64);
    __builtin_heap_free(p);
    __builtin_ptr_read(p)
}
`)
}

func TestEvalOutOfBoundsPtrReadIsRuntimeDiagnostic(t *testing.T) {
	// ptr_read always addresses the 8 bytes at offset 0, so a block
	// smaller than 8 bytes is out of bounds on the very first read.
	runSourceExpectRuntimeDiagnostic(t, `
fn main() -> u64 {
    val p = __builtin_heap_alloc(4u64);
    __builtin_ptr_read(p)
}
`)
}

func TestEvalStructDestructorRuns(t *testing.T) {
	var trace strings.Builder
	in := symbols.New()
	src := `
struct Box { value: i64 }
impl Box {
    fn __drop__(&self) { }
}
fn main() -> i64 {
    val b = Box { value: 1 };
    0
}
`
	prog, pdiags := parser.Parse(src, in)
	if len(pdiags) != 0 {
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	if diags := checker.Check(prog, in); len(diags) != 0 {
		t.Fatalf("expected no check diagnostics, got %d", len(diags))
	}
	e := New(prog, in, WithTrace(&trace))
	if _, err := e.Run("main"); err != nil {
		t.Fatalf("unexpected evaluation error: %s", err.Error())
	}
	if !strings.Contains(trace.String(), "drop Box") {
		t.Fatalf("expected a drop trace line, got %q", trace.String())
	}
}

func TestEvalMissingEntryFunctionIsDiagnostic(t *testing.T) {
	in := symbols.New()
	prog, pdiags := parser.Parse(`fn other() -> i64 { 1 }`, in)
	if len(pdiags) != 0 {
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	e := New(prog, in)
	if _, err := e.Run("main"); err == nil {
		t.Fatalf("expected a diagnostic for a missing entry function")
	}
}

func TestEvalWrongArgumentCountIsDiagnostic(t *testing.T) {
	in := symbols.New()
	prog, pdiags := parser.Parse(`
fn add(a: i64, b: i64) -> i64 { a + b }
fn main() -> i64 { 0 }
`, in)
	if len(pdiags) != 0 {
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	e := New(prog, in)
	fn := prog.FindFunction(in.Intern("add"))
	if fn == nil {
		t.Fatalf("expected to find function add")
	}
	if _, err := e.CallFunction(fn, nil); err == nil {
		t.Fatalf("expected a diagnostic for wrong argument count")
	}
}
