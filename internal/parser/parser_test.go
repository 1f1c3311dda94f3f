package parser

import (
	"testing"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/symbols"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	in := symbols.New()
	prog, diags := Parse(src, in)
	if len(diags) != 0 {
		for _, d := range diags {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatalf("expected no diagnostics, got %d", len(diags))
	}
	return prog
}

func TestParseFunctionWithReturnType(t *testing.T) {
	prog := parseOK(t, `fn main() -> u64 { val x = 10u64; val y = 5; x + y }`)
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.ReturnType == nil {
		t.Fatalf("expected a declared return type")
	}
	body := fn.BodyBlock(prog.Stmts)
	if prog.Exprs.Kind(body) != ast.ExprBlock {
		t.Fatalf("expected function body to be a Block")
	}
	stmts := prog.Exprs.StmtListVal(body)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements in block, got %d", len(stmts))
	}
	if prog.Stmts.Kind(stmts[0]) != ast.StmtVal || prog.Stmts.Kind(stmts[1]) != ast.StmtVal {
		t.Fatalf("expected two val statements")
	}
	if prog.Stmts.Kind(stmts[2]) != ast.StmtExpression {
		t.Fatalf("expected trailing expression statement")
	}
}

func TestParsePlainAssignment(t *testing.T) {
	prog := parseOK(t, `fn main() -> u64 { var a = 0u64; a = 1u64; a }`)
	_ = prog
}

func TestParseIndexAssignLowering(t *testing.T) {
	prog := parseOK(t, `fn f() { arr[0] = 1u64 }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	exprStmt := stmts[0]
	e := prog.Stmts.ExprVal(exprStmt)
	if prog.Exprs.Kind(e) != ast.ExprIndexAssign {
		t.Fatalf("expected IndexAssign, got %v", prog.Exprs.Kind(e))
	}
}

func TestParseQualifiedCallLowersToCall(t *testing.T) {
	prog := parseOK(t, `fn f() { a::b::c(1) }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprCall {
		t.Fatalf("expected Call for qualified call, got %v", prog.Exprs.Kind(e))
	}
}

func TestParseQualifiedIdentifierWithoutCall(t *testing.T) {
	prog := parseOK(t, `fn f() { a::b }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprQualifiedIdentifier {
		t.Fatalf("expected QualifiedIdentifier, got %v", prog.Exprs.Kind(e))
	}
	if len(prog.Exprs.SymbolListVal(e)) != 2 {
		t.Fatalf("expected 2-segment path")
	}
}

func TestParseStructLiteralDisambiguation(t *testing.T) {
	prog := parseOK(t, `struct Point { x: i64, y: i64 } fn f() { val p = Point { x: 1i64, y: 2i64 } }`)
	if len(prog.Structs) != 1 {
		t.Fatalf("expected 1 struct decl")
	}
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	init := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(init) != ast.ExprStructLiteral {
		t.Fatalf("expected StructLiteral, got %v", prog.Exprs.Kind(init))
	}
}

func TestParseIfConditionSuppressesStructLiteral(t *testing.T) {
	// Inside `if cond { ... }`, a bare `flag` must not be read as the start
	// of a struct literal -- `{` opens the then-block instead.
	prog := parseOK(t, `fn f() { if flag { 1 } }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprIfElifElse {
		t.Fatalf("expected IfElifElse, got %v", prog.Exprs.Kind(e))
	}
}

func TestParseSliceSyntaxVariants(t *testing.T) {
	cases := []string{
		`fn f() { a[1..2] }`,
		`fn f() { a[1..] }`,
		`fn f() { a[..2] }`,
		`fn f() { a[..] }`,
	}
	for _, src := range cases {
		prog := parseOK(t, src)
		fn := prog.Functions[0]
		body := fn.BodyBlock(prog.Stmts)
		stmts := prog.Exprs.StmtListVal(body)
		e := prog.Stmts.ExprVal(stmts[0])
		if prog.Exprs.Kind(e) != ast.ExprSliceAccess {
			t.Fatalf("%q: expected SliceAccess, got %v", src, prog.Exprs.Kind(e))
		}
	}
}

func TestParseTupleLiterals(t *testing.T) {
	prog := parseOK(t, `fn f() { () }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprTupleLiteral {
		t.Fatalf("expected empty tuple literal, got %v", prog.Exprs.Kind(e))
	}
	if len(prog.Exprs.ExprListVal(e)) != 0 {
		t.Fatalf("expected 0 elements in empty tuple")
	}
}

func TestParseOneTupleLiteral(t *testing.T) {
	prog := parseOK(t, `fn f() { (1i64,) }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprTupleLiteral {
		t.Fatalf("expected one-tuple literal, got %v", prog.Exprs.Kind(e))
	}
	if len(prog.Exprs.ExprListVal(e)) != 1 {
		t.Fatalf("expected 1 element in one-tuple")
	}
}

func TestParseGroupingParenIsNotTuple(t *testing.T) {
	prog := parseOK(t, `fn f() { (1i64) }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprInt64 {
		t.Fatalf("bare parenthesized expr should not become a tuple, got %v", prog.Exprs.Kind(e))
	}
}

func TestParseTupleAccessByIntegerIndex(t *testing.T) {
	prog := parseOK(t, `fn f() { t.0 }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	e := prog.Stmts.ExprVal(stmts[0])
	if prog.Exprs.Kind(e) != ast.ExprTupleAccess {
		t.Fatalf("expected TupleAccess, got %v", prog.Exprs.Kind(e))
	}
	if prog.Exprs.IndexVal(e) != 0 {
		t.Fatalf("expected tuple index 0, got %d", prog.Exprs.IndexVal(e))
	}
}

func TestParseStructAndImplWithOperatorOverload(t *testing.T) {
	src := `
struct C { v: u64 }
impl C {
	fn __getitem__(self: Self, i: i64) -> u64 { self.v }
}
fn main() -> u64 {
	val c = C { v: 42u64 }
	c[1i64]
}
`
	prog := parseOK(t, src)
	if len(prog.Structs) != 1 || len(prog.Impls) != 1 {
		t.Fatalf("expected 1 struct and 1 impl")
	}
	implRef := prog.Impls[0]
	methods := prog.Stmts.ImplMethods(implRef)
	if len(methods) != 1 {
		t.Fatalf("expected 1 method in impl block")
	}
	if !methods[0].IsMethod {
		t.Fatalf("expected __getitem__ to be recognized as a method")
	}
}

func TestParseForAndWhileLoops(t *testing.T) {
	prog := parseOK(t, `fn f() { for i in 0u64 to 5u64 { i } while true { } }`)
	fn := prog.Functions[0]
	body := fn.BodyBlock(prog.Stmts)
	stmts := prog.Exprs.StmtListVal(body)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if prog.Stmts.Kind(stmts[0]) != ast.StmtFor {
		t.Fatalf("expected StmtFor")
	}
	if prog.Stmts.Kind(stmts[1]) != ast.StmtWhile {
		t.Fatalf("expected StmtWhile")
	}
}

func TestParseGenericStructAndImpl(t *testing.T) {
	src := `
struct Box<T> { value: T }
impl<T> Box<T> {
	fn get(&self) -> T { self.value }
}
`
	prog := parseOK(t, src)
	structRef := prog.Structs[0]
	if len(prog.Stmts.GenericParams(structRef)) != 1 {
		t.Fatalf("expected 1 generic param on struct")
	}
	implRef := prog.Impls[0]
	if len(prog.Stmts.GenericParams(implRef)) != 1 {
		t.Fatalf("expected 1 generic param on impl block")
	}
}

func TestParseRecoversFromUnexpectedToken(t *testing.T) {
	in := symbols.New()
	_, diags := Parse(`fn f() { @@@ 1 }`, in)
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic for an illegal token")
	}
}

func TestParseDeepNestingHitsDepthLimit(t *testing.T) {
	in := symbols.New()
	src := "fn f() { "
	for i := 0; i < maxDepth+10; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < maxDepth+10; i++ {
		src += ")"
	}
	src += " }"
	_, diags := Parse(src, in)
	found := false
	for _, d := range diags {
		if d.Kind == "syntax" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a syntax diagnostic once recursion depth is exceeded")
	}
}

func TestParsePackageAndImport(t *testing.T) {
	prog := parseOK(t, "package a::b\nimport c::d\nfn f() { }")
	if prog.Package == nil {
		t.Fatalf("expected a package declaration")
	}
	if len(prog.Imports) != 1 {
		t.Fatalf("expected 1 import")
	}
}
