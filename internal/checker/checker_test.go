package checker

import (
	"testing"

	"github.com/toylang/toylang/internal/parser"
	"github.com/toylang/toylang/internal/symbols"
)

func checkSource(t *testing.T, src string) []string {
	t.Helper()
	in := symbols.New()
	prog, pdiags := parser.Parse(src, in)
	if len(pdiags) != 0 {
		for _, d := range pdiags {
			t.Logf("parse diag: %s", d.Error())
		}
		t.Fatalf("expected no parse diagnostics, got %d", len(pdiags))
	}
	diags := Check(prog, in)
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Error()
	}
	return out
}

func expectNoErrors(t *testing.T, src string) {
	t.Helper()
	diags := checkSource(t, src)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for %q, got: %v", src, diags)
	}
}

func expectError(t *testing.T, src string) {
	t.Helper()
	diags := checkSource(t, src)
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic for %q, got none", src)
	}
}

func TestNumberLiteralInfersFromReturnType(t *testing.T) {
	expectNoErrors(t, `fn main() -> u64 { 42 }`)
}

func TestNumberLiteralInfersFromDeclaredVar(t *testing.T) {
	expectNoErrors(t, `fn main() -> i64 { val x: i64 = 10; val y = 5; x }`)
}

func TestNumberLiteralDefaultsToUInt64WhenNoContext(t *testing.T) {
	expectNoErrors(t, `fn helper() { val x = 1; }`)
}

func TestMixingInt64AndUInt64IsError(t *testing.T) {
	expectError(t, `fn main() -> i64 { val a: i64 = 1; val b: u64 = 2; a + b }`)
}

func TestStructFieldAccessAndMethodCall(t *testing.T) {
	expectNoErrors(t, `
struct Point { x: i64, y: i64 }
impl Point {
    fn sum(&self) -> i64 { self.x + self.y }
}
fn main() -> i64 {
    val p = Point { x: 1, y: 2 };
    p.sum()
}
`)
}

func TestOperatorOverloadGetItem(t *testing.T) {
	expectNoErrors(t, `
struct Vec { data: i64 }
impl Vec {
    fn __getitem__(&self, idx: u64) -> i64 { self.data }
}
fn main() -> i64 {
    val v = Vec { data: 9 };
    v[0]
}
`)
}

func TestIndexAssignOnGetOnlyStructIsTypeError(t *testing.T) {
	expectError(t, `
struct Vec { data: i64 }
impl Vec {
    fn __getitem__(&self, idx: u64) -> i64 { self.data }
}
fn main() {
    val v = Vec { data: 9 };
    v[0] = 3;
}
`)
}

func TestForLoopSum(t *testing.T) {
	expectNoErrors(t, `
fn main() -> u64 {
    var total: u64 = 0;
    for i in 0 to 10 {
        total = total + i;
    }
    total
}
`)
}

func TestForLoopRequiresMatchingBoundTypes(t *testing.T) {
	expectError(t, `
fn main() {
    val a: i64 = 0;
    val b: u64 = 10;
    for i in a to b { }
}
`)
}

func TestIsNullOnDeferredVar(t *testing.T) {
	expectNoErrors(t, `
struct Box { value: i64 }
fn main() -> bool {
    var b: Box;
    b.is_null()
}
`)
}

func TestUndefinedIdentifierIsError(t *testing.T) {
	expectError(t, `fn main() -> i64 { undefined_name }`)
}

func TestUndefinedFunctionCallIsError(t *testing.T) {
	expectError(t, `fn main() { nope(1, 2) }`)
}

func TestCallArityMismatchIsError(t *testing.T) {
	expectError(t, `
fn add(a: i64, b: i64) -> i64 { a + b }
fn main() -> i64 { add(1) }
`)
}

func TestMutualRecursionDoesNotInfiniteLoop(t *testing.T) {
	expectNoErrors(t, `
fn is_even(n: u64) -> bool { if n == 0 { true } else { is_odd(n - 1) } }
fn is_odd(n: u64) -> bool { if n == 0 { false } else { is_even(n - 1) } }
fn main() -> bool { is_even(4) }
`)
}

func TestArrayLiteralElementMismatchIsError(t *testing.T) {
	expectError(t, `fn main() { val xs = [1u64, true]; }`)
}

func TestEmptyArrayLiteralWithNoContextIsError(t *testing.T) {
	expectError(t, `fn main() { val x = []; }`)
}

func TestNullLiteralWithNoDeclaredTypeIsError(t *testing.T) {
	expectError(t, `fn main() { val x = null; }`)
}

func TestArrayPushRespectsElementType(t *testing.T) {
	expectNoErrors(t, `
fn main() {
    val xs: [u64; 0] = [];
    xs.push(5);
}
`)
}

func TestDictLiteralAndContains(t *testing.T) {
	expectNoErrors(t, `
fn main() -> bool {
    val d = [1u64: "a", 2u64: "b"];
    d.contains(1u64)
}
`)
}

func TestTupleAccessOutOfRangeIsError(t *testing.T) {
	expectError(t, `fn main() { val t = (1, 2); t.5 }`)
}

func TestGenericStructFieldStaysOpaque(t *testing.T) {
	expectNoErrors(t, `
struct Box<T> { value: T }
impl<T> Box<T> {
    fn get(&self) -> T { self.value }
}
fn main() -> i64 {
    val b = Box { value: 7 };
    b.get()
}
`)
}

func TestGenericStructInstantiatedWithDifferentTypesAtTwoCallSites(t *testing.T) {
	expectNoErrors(t, `
struct Box<T> { value: T }
impl<T> Box<T> {
    fn get(&self) -> T { self.value }
}
fn int_box() -> i64 {
    val b = Box { value: 1 };
    b.get()
}
fn string_box() -> string {
    val s = Box { value: "hi" };
    s.get()
}
fn main() -> i64 {
    int_box()
}
`)
}

func TestShiftRequiresUInt64RightOperand(t *testing.T) {
	expectError(t, `
fn main() -> i64 {
    val a: i64 = 1;
    val b: i64 = 2;
    a << b
}
`)
}

func TestStringConcatenationWithPlus(t *testing.T) {
	expectNoErrors(t, `fn main() -> string { val a = "foo"; val b = "bar"; a + b }`)
}

func TestBuiltinHeapAllocAndFree(t *testing.T) {
	expectNoErrors(t, `
fn main() {
    val p = __builtin_heap_alloc(16u64);
    __builtin_heap_free(p);
}
`)
}
