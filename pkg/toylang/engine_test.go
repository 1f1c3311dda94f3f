package toylang

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineEvalSimpleExpression(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   int64
	}{
		{"literal", "fn main() -> i64 { 42 }", 42},
		{"arithmetic", "fn main() -> i64 { 2 + 3 * 4 }", 14},
		{"binding", "fn main() -> i64 { val a = 10; val b = 5; a - b }", 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			obj, diag := e.Eval(tc.source)
			require.Nil(t, diag, "unexpected diagnostic: %v", diag)
			require.NotNil(t, obj)
			assert.Equal(t, tc.want, obj.Int64Val)
		})
	}
}

func TestEngineEvalCustomEntry(t *testing.T) {
	e := New(WithEntry("double"))
	obj, diag := e.Eval("fn double(x: i64) -> i64 { x * 2 } fn main() -> i64 { 0 }")
	require.NotNil(t, diag, "calling double() with no arguments should fail")
	_ = obj
}

func TestEngineCompileReportsSyntaxErrors(t *testing.T) {
	e := New()
	_, diags := e.Compile("fn main() -> i64 { val = }")
	require.NotEmpty(t, diags)
}

func TestEngineCompileReportsTypeErrors(t *testing.T) {
	e := New()
	_, diags := e.Compile(`fn main() -> i64 { val a: i64 = 1; val b: u64 = 2; a + b }`)
	require.NotEmpty(t, diags)
}

func TestEngineWithTypeCheckDisabled(t *testing.T) {
	e := New(WithTypeCheck(false))

	prog, diags := e.Compile(`fn main() -> i64 { val a: i64 = 1; val b: u64 = 2; a + b }`)
	require.Empty(t, diags, "type errors must not surface when type checking is disabled")
	require.NotNil(t, prog.AST())

	_, evalDiag := e.Eval(`fn main() -> i64 { 1 }`)
	require.NotNil(t, evalDiag, "Eval must refuse to run a program with type checking disabled")
}

func TestEngineTraceWritesOutput(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithTrace(&buf))
	source := `
struct Box { value: i64 }
impl Box {
    fn __drop__(&self) { }
}
fn main() -> i64 {
    val b = Box { value: 1 };
    0
}
`
	_, diag := e.Eval(source)
	require.Nil(t, diag)
	assert.Contains(t, buf.String(), "drop")
}
