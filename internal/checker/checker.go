// Package checker implements toylang's bidirectional type checker: a
// single mutating pass over the AST pool that resolves the untyped
// Number literal kind to a concrete Int64/UInt64, rewriting the pool in
// place, and validates every other expression and statement kind. It is
// a scope-stack visitor that accumulates every diagnostic instead of
// stopping at the first.
package checker

import (
	"fmt"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// maxCallDepth bounds recursive function-call checking: checkCall and
// checkUserMethod share one counter, capped at a fixed maximum so
// mutually recursive checks can never overflow the Go stack. Field
// access and array/struct literals are not counted against it.
const maxCallDepth = 256

// fnCheckState is one of the checker's three function-checking states
//.
type fnCheckState int

const (
	notChecked fnCheckState = iota
	checking
	checkedOK
)

// numberUsage is one `(ExprRef, TypeDecl)` entry of the number_usage_context
// list.
type numberUsage struct {
	Ref ast.ExprRef
	Ty  types.TypeDecl
}

// StructDefinition is the checker's registered view of a StructDecl
// statement: fields plus declared visibility, looked up by struct name.
type StructDefinition struct {
	Name       symbols.Symbol
	Fields     []ast.StructField
	Generics   []symbols.Symbol
	Visibility ast.Visibility
	Package    []symbols.Symbol
}

// Checker performs the whole-program check described above
type Checker struct {
	prog   *ast.Program
	intern *symbols.Interner
	diags  diag.List

	structs map[symbols.Symbol]*StructDefinition
	methods map[symbols.Symbol]map[symbols.Symbol]*ast.FunctionDecl

	typeHint *types.TypeDecl

	numberUsage []numberUsage
	varInit     map[symbols.Symbol]ast.ExprRef

	callDepth  map[symbols.Symbol]int
	checkState map[symbols.Symbol]fnCheckState
	returnType map[symbols.Symbol]types.TypeDecl

	currentPackage []symbols.Symbol
	importAlias    map[symbols.Symbol][]symbols.Symbol // alias -> full path

	scopeTop *scope

	// genericNames collects every generic parameter name declared anywhere
	// in the program (every struct's `<T, ...>` and every function's or
	// method's own `<T, ...>`). The parser has no distinct "generic name"
	// type annotation -- `T` parses as an ordinary IdentifierKind, and
	// generics are checked once with an opaque type and no specialization
	// -- so this set is what lets the checker tell "T" apart from a
	// genuine unresolved struct name, at every site that consumes a
	// generic-typed value, not only while checking the generic function's
	// own body.
	genericNames map[symbols.Symbol]bool
}

// New creates a Checker over prog, using intern to resolve symbols for
// diagnostic messages.
func New(prog *ast.Program, intern *symbols.Interner) *Checker {
	return &Checker{
		prog:        prog,
		intern:      intern,
		structs:     make(map[symbols.Symbol]*StructDefinition),
		methods:     make(map[symbols.Symbol]map[symbols.Symbol]*ast.FunctionDecl),
		varInit:     make(map[symbols.Symbol]ast.ExprRef),
		callDepth:   make(map[symbols.Symbol]int),
		checkState:  make(map[symbols.Symbol]fnCheckState),
		returnType:  make(map[symbols.Symbol]types.TypeDecl),
		importAlias: make(map[symbols.Symbol][]symbols.Symbol),
	}
}

// Check runs the whole-program pass and returns every diagnostic collected,
// matching `check_program_multiple_errors`: it visits every
// function even after earlier ones failed.
func Check(prog *ast.Program, intern *symbols.Interner) []*diag.Diagnostic {
	c := New(prog, intern)
	c.registerModule()
	c.registerStructs()
	c.registerImpls()
	c.collectGenericNames()
	for _, fn := range prog.Functions {
		c.checkFunctionTopLevel(fn)
	}
	return c.diags.Items()
}

// collectGenericNames gathers every generic parameter name declared by any
// struct or function/method in the program into one whole-program set, so
// isOpaque can recognize a bare generic name wherever it later shows up --
// as a call's argument type, a method's return type, a var's declared
// type, or an array/dict element type -- not only inside the body of the
// generic declaration itself.
func (c *Checker) collectGenericNames() {
	c.genericNames = make(map[symbols.Symbol]bool)
	for _, def := range c.structs {
		for _, g := range def.Generics {
			c.genericNames[g] = true
		}
	}
	for _, fn := range c.prog.Functions {
		for _, g := range fn.GenericParams {
			c.genericNames[g] = true
		}
	}
	for _, methods := range c.methods {
		for _, fn := range methods {
			for _, g := range fn.GenericParams {
				c.genericNames[g] = true
			}
		}
	}
}

func (c *Checker) registerModule() {
	if c.prog.Package != nil {
		for _, seg := range c.prog.Package.Path {
			if isReservedPathSegment(c.intern.Resolve(seg)) {
				c.errorNoPos(diag.NameResolution, "package path segment %q is a reserved word", c.intern.Resolve(seg))
			}
		}
		c.currentPackage = c.prog.Package.Path
	}
	for _, imp := range c.prog.Imports {
		if samePath(imp.Path, c.currentPackage) {
			c.errorNoPos(diag.Access, "a module cannot import itself")
			continue
		}
		c.importAlias[imp.Alias] = imp.Path
	}
}

func isReservedPathSegment(s string) bool {
	switch s {
	case "fn", "val", "var", "if", "elif", "else", "while", "for", "in", "to",
		"break", "continue", "return", "struct", "impl", "pub", "package",
		"import", "true", "false", "null", "self":
		return true
	}
	return false
}

func samePath(a, b []symbols.Symbol) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Checker) registerStructs() {
	for _, ref := range c.prog.Structs {
		name := c.prog.Stmts.StructName(ref)
		if _, dup := c.structs[name]; dup {
			c.errorNoPos(diag.NameResolution, "duplicate struct declaration %q", c.intern.Resolve(name))
			continue
		}
		c.structs[name] = &StructDefinition{
			Name:       name,
			Fields:     c.prog.Stmts.StructFieldsVal(ref),
			Generics:   c.prog.Stmts.GenericParams(ref),
			Visibility: c.prog.Stmts.VisibilityVal(ref),
			Package:    c.currentPackage,
		}
	}
}

func (c *Checker) registerImpls() {
	for _, ref := range c.prog.Impls {
		target := c.prog.Stmts.StructName(ref)
		if _, ok := c.structs[target]; !ok {
			c.errorNoPos(diag.NameResolution, "impl block names unknown struct %q", c.intern.Resolve(target))
			continue
		}
		if c.methods[target] == nil {
			c.methods[target] = make(map[symbols.Symbol]*ast.FunctionDecl)
		}
		for _, m := range c.prog.Stmts.ImplMethods(ref) {
			// The parser leaves an unqualified `self`/`&self` receiver as
			// the placeholder SelfKind; resolve it to the impl's own
			// target now that the target is known, so field/method
			// lookups on `self` inside the body work like any other
			// struct-typed expression.
			if m.Receiver.Kind == types.SelfKind {
				m.Receiver = types.Struct(target)
			}
			c.methods[target][m.Name] = m
		}
	}
}

// errorNoPos records a diagnostic with no location, used for whole-program
// checks (module/struct registration) that are not anchored to one node.
func (c *Checker) errorNoPos(kind diag.Kind, format string, args ...any) {
	c.diags.Add(diag.NewWithoutPos(kind, format, args...))
}

// errorAt records a diagnostic anchored to an expression's location if one
// was recorded, matching "attaching a location when missing is
// the responsibility of each visitor".
func (c *Checker) errorAtExpr(ref ast.ExprRef, kind diag.Kind, format string, args ...any) {
	d := diag.NewWithoutPos(kind, format, args...)
	if pos, ok := c.prog.Locations.ExprLoc(ref); ok {
		d = d.WithPosIfMissing(pos)
	}
	c.diags.Add(d)
}

func (c *Checker) errorAtStmt(ref ast.StmtRef, kind diag.Kind, format string, args ...any) {
	d := diag.NewWithoutPos(kind, format, args...)
	if pos, ok := c.prog.Locations.StmtLoc(ref); ok {
		d = d.WithPosIfMissing(pos)
	}
	c.diags.Add(d)
}

// pushHint/popHint implement the single type_hint slot").
func (c *Checker) pushHint(t types.TypeDecl) (restore func()) {
	prev := c.typeHint
	cp := t
	c.typeHint = &cp
	return func() { c.typeHint = prev }
}

func (c *Checker) hint() (types.TypeDecl, bool) {
	if c.typeHint == nil {
		return types.TypeDecl{}, false
	}
	return *c.typeHint, true
}

// checkFunctionTopLevel checks one top-level (or impl-block) function body,
// tracking the checkState transition.
func (c *Checker) checkFunctionTopLevel(fn *ast.FunctionDecl) {
	if c.checkState[fn.Name] == checkedOK {
		return
	}
	c.checkState[fn.Name] = checking
	c.scopeTop = newScope(nil)

	for _, p := range fn.Params {
		c.scopeTop.define(p.Name, p.Type)
	}
	if fn.IsMethod {
		c.scopeTop.define(c.intern.Intern("self"), fn.Receiver)
	}

	var expected types.TypeDecl
	if fn.ReturnType != nil {
		expected = *fn.ReturnType
	} else {
		expected = types.Simple(types.Unit)
	}
	c.returnType[fn.Name] = expected

	body := fn.BodyBlock(c.prog.Stmts)
	restore := c.pushHint(expected)
	bodyTy := c.checkExpr(body)
	restore()

	if expected.Kind != types.Unit && expected.IsConcrete() && bodyTy.IsConcrete() &&
		!expected.Equal(bodyTy) && !isNumberCoercible(bodyTy, expected) &&
		!c.isOpaque(bodyTy) {
		c.errorAtExpr(body, diag.TypeMismatch, "function %q returns %s, expected %s",
			c.intern.Resolve(fn.Name), bodyTy, expected)
	}

	c.finalizeRemainingNumbers(expected)
	c.checkState[fn.Name] = checkedOK
}

// isOpaque reports whether t names a generic parameter declared anywhere
// in the program, in which case it must not be compared or hinted
// against like an ordinary concrete type: a value carrying that type
// could be any concrete type the generic was instantiated with, and this
// checker never tracks which one.
func (c *Checker) isOpaque(t types.TypeDecl) bool {
	if t.Kind == types.GenericKind {
		return true
	}
	return t.Kind == types.IdentifierKind && c.genericNames[t.Name]
}

func isNumberCoercible(from, to types.TypeDecl) bool {
	return from.Kind == types.Number && (to.Kind == types.Int64 || to.Kind == types.UInt64)
}

// finalizeRemainingNumbers implements this language's finalization pass:
// after visiting a function body, any Number node not already resolved by
// number_usage_context is converted to the variable's resolved type (if it
// is an initializer), otherwise the prevailing type_hint, otherwise UInt64.
func (c *Checker) finalizeRemainingNumbers(hint types.TypeDecl) {
	resolved := make(map[ast.ExprRef]types.TypeDecl, len(c.numberUsage))
	for _, u := range c.numberUsage {
		resolved[u.Ref] = u.Ty
	}
	for ref, ty := range resolved {
		c.finalizeNumberNode(ref, ty)
	}
	c.numberUsage = c.numberUsage[:0]

	fallback := hint
	if fallback.Kind != types.Int64 && fallback.Kind != types.UInt64 {
		fallback = types.Simple(types.UInt64)
	}
	for ref := 0; ref < c.prog.Exprs.Len(); ref++ {
		r := ast.ExprRef(ref)
		if c.prog.Exprs.Kind(r) == ast.ExprNumber {
			c.finalizeNumberNode(r, fallback)
		}
	}
}

// finalizeNumberNode performs the in-place Number→Int64/UInt64 rewrite
//.
func (c *Checker) finalizeNumberNode(ref ast.ExprRef, ty types.TypeDecl) {
	if c.prog.Exprs.Kind(ref) != ast.ExprNumber {
		return
	}
	text := c.intern.Resolve(c.prog.Exprs.SymbolVal(ref))
	switch ty.Kind {
	case types.Int64:
		var v int64
		fmt.Sscanf(text, "%d", &v)
		c.prog.Exprs.UpdateToInt64(ref, v)
	default:
		var v uint64
		fmt.Sscanf(text, "%d", &v)
		c.prog.Exprs.UpdateToUInt64(ref, v)
	}
}

// resolveNumber records ref as resolved to ty:
// appends to number_usage_context, and if ref is an Identifier bound to a
// Number-typed scope entry, propagates the resolution to that variable and
// its recorded initializer.
func (c *Checker) resolveNumber(ref ast.ExprRef, ty types.TypeDecl) {
	c.numberUsage = append(c.numberUsage, numberUsage{Ref: ref, Ty: ty})

	if c.prog.Exprs.Kind(ref) == ast.ExprIdentifier {
		name := c.prog.Exprs.SymbolVal(ref)
		if cur, ok := c.scopeTop.lookup(name); ok && cur.Kind == types.Number {
			c.scopeTop.update(name, ty)
			if initRef, ok := c.varInit[name]; ok {
				c.numberUsage = append(c.numberUsage, numberUsage{Ref: initRef, Ty: ty})
			}
		}
	}
}
