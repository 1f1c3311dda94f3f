package module

import (
	"fmt"
	"testing"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/checker"
	"github.com/toylang/toylang/internal/parser"
	"github.com/toylang/toylang/internal/symbols"
)

type mapLoader map[string]string

func (m mapLoader) Load(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("no source registered for %q", path)
	}
	return src, nil
}

// parseMain parses main source with a fresh interner, failing the test on
// any parse diagnostic.
func parseMain(t *testing.T, src string) (*ast.Program, *symbols.Interner) {
	t.Helper()
	in := symbols.New()
	prog, diags := parser.Parse(src, in)
	if len(diags) != 0 {
		for _, d := range diags {
			t.Logf("parse diag: %s", d.Error())
		}
		t.Fatalf("expected no parse diagnostics, got %d", len(diags))
	}
	return prog, in
}

func TestIntegrateMergesFunctionFromImportedModule(t *testing.T) {
	main, in := parseMain(t, `
import math::util

fn main() -> i64 { triple(4) }
`)

	loader := mapLoader{"math::util": "fn triple(x: i64) -> i64 { x * 3 }"}
	it := NewIntegrator(loader, in)
	if diags := it.Integrate(main); len(diags) != 0 {
		t.Fatalf("expected no integration diagnostics, got %v", diags)
	}

	if main.FindFunction(in.Intern("triple")) == nil {
		t.Fatalf("expected merged function %q to be findable by name", "triple")
	}

	if diags := checker.Check(main, in); len(diags) != 0 {
		t.Fatalf("expected the merged program to type-check, got %v", diags)
	}
}

func TestIntegrateMergesStructAndImplFromImportedModule(t *testing.T) {
	main, in := parseMain(t, `
import shapes::point

fn main() -> i64 {
    val p = Point { x: 1, y: 2 };
    p.sum()
}
`)

	loader := mapLoader{"shapes::point": `
struct Point { x: i64, y: i64 }
impl Point {
    fn sum(&self) -> i64 { self.x + self.y }
}
`}
	it := NewIntegrator(loader, in)
	if diags := it.Integrate(main); len(diags) != 0 {
		t.Fatalf("expected no integration diagnostics, got %v", diags)
	}
	if diags := checker.Check(main, in); len(diags) != 0 {
		t.Fatalf("expected the merged program to type-check, got %v", diags)
	}
}

func TestIntegrateReimportIsNoOp(t *testing.T) {
	main, in := parseMain(t, `
import math::util
import math::util

fn main() -> i64 { triple(1) }
`)
	calls := 0
	countingLoader := loaderFunc(func(path string) (string, error) {
		calls++
		return "fn triple(x: i64) -> i64 { x * 3 }", nil
	})

	it := NewIntegrator(countingLoader, in)
	if diags := it.Integrate(main); len(diags) != 0 {
		t.Fatalf("expected no integration diagnostics, got %v", diags)
	}
	if calls != 1 {
		t.Fatalf("expected the loader to be called once for a repeated import, got %d calls", calls)
	}
}

// Integrate itself only tracks cycles among modules it is in the middle
// of loading; a package importing its own path is the type checker's
// concern (registerModule's samePath check), not the integrator's.
func TestCheckerRejectsSelfImportAfterIntegration(t *testing.T) {
	main, in := parseMain(t, `
package math::util
import math::util

fn main() -> i64 { 0 }
`)
	loader := mapLoader{"math::util": "fn triple(x: i64) -> i64 { x * 3 }"}
	it := NewIntegrator(loader, in)
	if diags := it.Integrate(main); len(diags) != 0 {
		t.Fatalf("expected Integrate to resolve the self-referencing import without error, got %v", diags)
	}
	if diags := checker.Check(main, in); len(diags) == 0 {
		t.Fatalf("expected the checker to reject a module importing its own package path")
	}
}

func TestIntegrateMissingModuleIsAccessDiagnostic(t *testing.T) {
	main, in := parseMain(t, `
import does::not::exist

fn main() -> i64 { 0 }
`)
	it := NewIntegrator(mapLoader{}, in)
	diags := it.Integrate(main)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for an unresolvable import")
	}
}

// loaderFunc adapts a function to SourceLoader, for tests that need to
// observe how many times Load is called.
type loaderFunc func(path string) (string, error)

func (f loaderFunc) Load(path string) (string, error) { return f(path) }
