package toylang

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toylang/toylang/internal/module"
)

// mapLoader resolves import paths from an in-memory map, a test-side
// module.SourceLoader (the filesystem-backed one belongs to cmd/toylang).
type mapLoader map[string]string

func (m mapLoader) Load(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("no module registered for %q", path)
	}
	return src, nil
}

func TestEngineResolvesImportedModule(t *testing.T) {
	loader := mapLoader{
		"math::util": "fn triple(x: i64) -> i64 { x * 3 }",
	}
	e := New(WithSourceLoader(loader), WithEntry("main"))
	obj, diag := e.Eval(`
import math::util

fn main() -> i64 { triple(4) }
`)
	require.Nil(t, diag)
	require.NotNil(t, obj)
	assert.Equal(t, int64(12), obj.Int64Val)
}

func TestEngineMissingImportIsDiagnostic(t *testing.T) {
	e := New(WithSourceLoader(mapLoader{}))
	_, diags := e.Compile(`
import missing::module

fn main() -> i64 { 0 }
`)
	require.NotEmpty(t, diags)
}

func TestEngineWithoutLoaderCannotResolveImports(t *testing.T) {
	e := New()
	prog, diags := e.Compile(`
import math::util

fn main() -> i64 { 0 }
`)
	require.NotNil(t, prog)
	require.Empty(t, diags, "no loader configured means Integrate is never attempted, so the import is silently unresolved at the ast level")
}

var _ module.SourceLoader = mapLoader{}
