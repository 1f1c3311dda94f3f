// Package module implements the Module Integrator: loading
// an imported unit's source, parsing it with its own interner and pool,
// and merging the result into the main program by remapping every ref and
// symbol, so the main program behaves as if the module's declarations had
// been compiled together from the start.
package module

import (
	"fmt"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/parser"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// SourceLoader resolves an import path to source text. The resolution
// policy (file path convention, search directories) is outside the core's
// responsibility;
// cmd/toylang supplies a filesystem-backed implementation and tests supply
// an in-memory map.
type SourceLoader interface {
	Load(path string) (string, error)
}

// Integrator merges imported modules into one main Program, one import
// path at a time. It is not safe for concurrent use: the single-threaded
// evaluation model applies to module resolution too.
type Integrator struct {
	loader  SourceLoader
	intern  *symbols.Interner
	loaded  map[string]bool
	loading map[string]bool
}

// NewIntegrator creates an Integrator that resolves imports through
// loader, re-interning every merged symbol into intern (the main
// program's interner).
func NewIntegrator(loader SourceLoader, intern *symbols.Interner) *Integrator {
	return &Integrator{
		loader:  loader,
		intern:  intern,
		loaded:  make(map[string]bool),
		loading: make(map[string]bool),
	}
}

// pathKey joins a dotted import path into the string SourceLoader and the
// loaded/loading sets key on.
func pathKey(intern *symbols.Interner, path []symbols.Symbol) string {
	s := ""
	for i, sym := range path {
		if i > 0 {
			s += "::"
		}
		s += intern.Resolve(sym)
	}
	return s
}

// Integrate resolves and merges every import declaration on main, in
// order, skipping any module already merged (re-import is a no-op, not an
// error). Import declarations inside a merged module are not followed, so
// only main's own imports are loaded and the circular-import report on
// the loading set is never reached. A package importing its own declared path is not
// rejected here -- nothing stops the loader from resolving it -- that
// case is the type checker's job (registerModule's samePath check).
func (in *Integrator) Integrate(main *ast.Program) []*diag.Diagnostic {
	var diags []*diag.Diagnostic
	for _, imp := range main.Imports {
		key := pathKey(in.intern, imp.Path)
		if in.loaded[key] {
			continue
		}
		if in.loading[key] {
			diags = append(diags, diag.NewWithoutPos(diag.Access, "circular import of module %q", key))
			continue
		}

		source, err := in.loader.Load(key)
		if err != nil {
			diags = append(diags, diag.NewWithoutPos(diag.Access, "cannot load module %q: %v", key, err))
			continue
		}

		in.loading[key] = true
		modIntern := symbols.New()
		modProg, parseDiags := parser.Parse(source, modIntern)
		if len(parseDiags) > 0 {
			diags = append(diags, parseDiags...)
		}

		m := &merger{
			modProg:  modProg,
			modInt:   modIntern,
			main:     main,
			mainInt:  in.intern,
			exprMemo: make(map[ast.ExprRef]ast.ExprRef),
			stmtMemo: make(map[ast.StmtRef]ast.StmtRef),
		}
		m.mergeInto()

		delete(in.loading, key)
		in.loaded[key] = true
	}
	return diags
}

// merger holds the state of one module-into-main merge: memo tables
// mapping a module ref to the main-pool ref it was rebuilt at, so a node
// referenced from more than one place (e.g. a struct used by two
// functions) is only rebuilt once.
type merger struct {
	modProg *ast.Program
	modInt  *symbols.Interner
	main    *ast.Program
	mainInt *symbols.Interner

	exprMemo map[ast.ExprRef]ast.ExprRef
	stmtMemo map[ast.StmtRef]ast.StmtRef
}

// sym re-interns a module symbol's text into the main interner, so
// identical names across modules and main compare equal.
func (m *merger) sym(s symbols.Symbol) symbols.Symbol {
	if s == symbols.Invalid {
		return symbols.Invalid
	}
	return m.mainInt.Intern(m.modInt.Resolve(s))
}

func (m *merger) symList(in []symbols.Symbol) []symbols.Symbol {
	out := make([]symbols.Symbol, len(in))
	for i, s := range in {
		out[i] = m.sym(s)
	}
	return out
}

// mergeInto appends every module-level declaration (structs, impls,
// functions) to main, in the module's own declaration order, rebuilding
// each function body on demand through remapExpr/remapStmt.
func (m *merger) mergeInto() {
	for _, ref := range m.modProg.Structs {
		m.main.Structs = append(m.main.Structs, m.remapStmt(ref))
	}
	for _, ref := range m.modProg.Impls {
		m.main.Impls = append(m.main.Impls, m.remapStmt(ref))
	}
	for _, fn := range m.modProg.Functions {
		m.main.Functions = append(m.main.Functions, m.remapFunction(fn))
	}
}

func (m *merger) remapFunction(fn *ast.FunctionDecl) *ast.FunctionDecl {
	params := make([]ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ast.Param{Name: m.sym(p.Name), Type: m.remapType(p.Type)}
	}
	var ret *types.TypeDecl
	if fn.ReturnType != nil {
		t := m.remapType(*fn.ReturnType)
		ret = &t
	}
	return &ast.FunctionDecl{
		Name:          m.sym(fn.Name),
		Params:        params,
		ReturnType:    ret,
		Body:          m.remapStmt(fn.Body),
		Visibility:    fn.Visibility,
		GenericParams: m.symList(fn.GenericParams),
		IsMethod:      fn.IsMethod,
		Receiver:      m.remapType(fn.Receiver),
	}
}

// remapType translates the symbol(s) a TypeDecl carries (struct/identifier
// /generic names, array element types, dict key/value, tuple elements);
// the Kind/Size themselves are interner-independent and copy across
// unchanged.
func (m *merger) remapType(t types.TypeDecl) types.TypeDecl {
	out := t
	out.Name = m.sym(t.Name)
	if len(t.Elems) > 0 {
		out.Elems = make([]types.TypeDecl, len(t.Elems))
		for i, e := range t.Elems {
			out.Elems[i] = m.remapType(e)
		}
	}
	if t.Val != nil {
		v := m.remapType(*t.Val)
		out.Val = &v
	}
	if t.Key != nil {
		k := m.remapType(*t.Key)
		out.Key = &k
	}
	return out
}

func (m *merger) remapStmt(ref ast.StmtRef) ast.StmtRef {
	if ref == ast.NoStmt {
		return ast.NoStmt
	}
	if mapped, ok := m.stmtMemo[ref]; ok {
		return mapped
	}

	var out ast.StmtRef
	switch m.modProg.Stmts.Kind(ref) {
	case ast.StmtExpression:
		out = m.main.Stmts.AddExpression(m.remapExpr(m.modProg.Stmts.ExprVal(ref)))
	case ast.StmtVal:
		out = m.main.Stmts.AddVal(m.sym(m.modProg.Stmts.SymbolVal(ref)), m.remapOptType(ref), m.remapExprOpt(m.modProg.Stmts.ExprVal(ref)))
	case ast.StmtVar:
		out = m.main.Stmts.AddVar(m.sym(m.modProg.Stmts.SymbolVal(ref)), m.remapOptType(ref), m.remapExprOpt(m.modProg.Stmts.ExprVal(ref)))
	case ast.StmtReturn:
		out = m.main.Stmts.AddReturn(m.remapExprOpt(m.modProg.Stmts.ExprVal(ref)))
	case ast.StmtBreak:
		out = m.main.Stmts.AddBreak()
	case ast.StmtContinue:
		out = m.main.Stmts.AddContinue()
	case ast.StmtFor:
		out = m.main.Stmts.AddFor(
			m.sym(m.modProg.Stmts.SymbolVal(ref)),
			m.remapExpr(m.modProg.Stmts.StartExpr(ref)),
			m.remapExpr(m.modProg.Stmts.EndExpr(ref)),
			m.remapExpr(m.modProg.Stmts.BlockExpr(ref)),
		)
	case ast.StmtWhile:
		out = m.main.Stmts.AddWhile(
			m.remapExpr(m.modProg.Stmts.Condition(ref)),
			m.remapExpr(m.modProg.Stmts.BlockExpr(ref)),
		)
	case ast.StmtStructDecl:
		fields := m.modProg.Stmts.StructFieldsVal(ref)
		out1 := make([]ast.StructField, len(fields))
		for i, f := range fields {
			out1[i] = ast.StructField{Name: m.sym(f.Name), Type: m.remapType(f.Type), Visibility: f.Visibility}
		}
		out = m.main.Stmts.AddStructDecl(
			m.sym(m.modProg.Stmts.StructName(ref)),
			out1,
			m.symList(m.modProg.Stmts.GenericParams(ref)),
			m.modProg.Stmts.VisibilityVal(ref),
		)
	case ast.StmtImplBlock:
		methods := m.modProg.Stmts.ImplMethods(ref)
		out1 := make([]*ast.FunctionDecl, len(methods))
		for i, fn := range methods {
			out1[i] = m.remapFunction(fn)
		}
		out = m.main.Stmts.AddImplBlock(
			m.sym(m.modProg.Stmts.StructName(ref)),
			out1,
			m.symList(m.modProg.Stmts.GenericParams(ref)),
		)
	default:
		panic(fmt.Sprintf("module: unhandled statement kind %v", m.modProg.Stmts.Kind(ref)))
	}

	m.stmtMemo[ref] = out
	if pos, ok := m.modProg.Locations.StmtLoc(ref); ok {
		m.main.Locations.SetStmtLoc(out, pos)
	}
	return out
}

func (m *merger) remapOptType(ref ast.StmtRef) *types.TypeDecl {
	if !m.modProg.Stmts.HasTypeDecl(ref) {
		return nil
	}
	t := m.remapType(m.modProg.Stmts.TypeDeclVal(ref))
	return &t
}

func (m *merger) remapExprOpt(ref ast.ExprRef) ast.ExprRef {
	if ref == ast.NoExpr {
		return ast.NoExpr
	}
	return m.remapExpr(ref)
}

func (m *merger) remapExprList(refs []ast.ExprRef) []ast.ExprRef {
	out := make([]ast.ExprRef, len(refs))
	for i, r := range refs {
		out[i] = m.remapExpr(r)
	}
	return out
}

func (m *merger) remapExpr(ref ast.ExprRef) ast.ExprRef {
	if ref == ast.NoExpr {
		return ast.NoExpr
	}
	if mapped, ok := m.exprMemo[ref]; ok {
		return mapped
	}

	p := m.modProg.Exprs
	var out ast.ExprRef
	switch p.Kind(ref) {
	case ast.ExprInt64:
		out = m.main.Exprs.AddInt64(p.Int64Val(ref))
	case ast.ExprUInt64:
		out = m.main.Exprs.AddUInt64(p.UInt64Val(ref))
	case ast.ExprNumber:
		out = m.main.Exprs.AddNumber(m.sym(p.SymbolVal(ref)))
	case ast.ExprString:
		out = m.main.Exprs.AddString(m.sym(p.SymbolVal(ref)))
	case ast.ExprTrue:
		out = m.main.Exprs.AddBool(true)
	case ast.ExprFalse:
		out = m.main.Exprs.AddBool(false)
	case ast.ExprNull:
		out = m.main.Exprs.AddNull()
	case ast.ExprIdentifier:
		out = m.main.Exprs.AddIdentifier(m.sym(p.SymbolVal(ref)))
	case ast.ExprQualifiedIdentifier:
		out = m.main.Exprs.AddQualifiedIdentifier(m.symList(p.SymbolListVal(ref)))
	case ast.ExprAssign:
		out = m.main.Exprs.AddAssign(m.remapExpr(p.Lhs(ref)), m.remapExpr(p.Rhs(ref)))
	case ast.ExprBinary:
		out = m.main.Exprs.AddBinary(p.Operator(ref), m.remapExpr(p.Lhs(ref)), m.remapExpr(p.Rhs(ref)))
	case ast.ExprUnary:
		out = m.main.Exprs.AddUnary(p.UnaryOperator(ref), m.remapExpr(p.Operand(ref)))
	case ast.ExprBlock:
		stmts := p.StmtListVal(ref)
		out1 := make([]ast.StmtRef, len(stmts))
		for i, s := range stmts {
			out1[i] = m.remapStmt(s)
		}
		out = m.main.Exprs.AddBlock(out1)
	case ast.ExprIfElifElse:
		elifs := p.ElifListVal(ref)
		out1 := make([]ast.ElifArm, len(elifs))
		for i, arm := range elifs {
			out1[i] = ast.ElifArm{Cond: m.remapExpr(arm.Cond), Block: m.remapExpr(arm.Block)}
		}
		out = m.main.Exprs.AddIfElifElse(m.remapExpr(p.Lhs(ref)), m.remapExpr(p.Rhs(ref)), out1, m.remapExprOpt(p.ThirdOperand(ref)))
	case ast.ExprCall:
		out = m.main.Exprs.AddCall(m.sym(p.SymbolVal(ref)), m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprExprList:
		out = m.main.Exprs.AddExprList(m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprArrayLiteral:
		out = m.main.Exprs.AddArrayLiteral(m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprDictLiteral:
		entries := p.EntryListVal(ref)
		out1 := make([]ast.DictEntry, len(entries))
		for i, e := range entries {
			out1[i] = ast.DictEntry{Key: m.remapExpr(e.Key), Val: m.remapExpr(e.Val)}
		}
		out = m.main.Exprs.AddDictLiteral(out1)
	case ast.ExprTupleLiteral:
		out = m.main.Exprs.AddTupleLiteral(m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprTupleAccess:
		out = m.main.Exprs.AddTupleAccess(m.remapExpr(p.Lhs(ref)), p.IndexVal(ref))
	case ast.ExprFieldAccess:
		out = m.main.Exprs.AddFieldAccess(m.remapExpr(p.Lhs(ref)), m.sym(p.SymbolVal(ref)))
	case ast.ExprMethodCall:
		out = m.main.Exprs.AddMethodCall(m.remapExpr(p.Lhs(ref)), m.sym(p.SymbolVal(ref)), m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprStructLiteral:
		fields := p.FieldListVal(ref)
		out1 := make([]ast.StructFieldInit, len(fields))
		for i, f := range fields {
			out1[i] = ast.StructFieldInit{Name: m.sym(f.Name), Expr: m.remapExpr(f.Expr)}
		}
		out = m.main.Exprs.AddStructLiteral(m.sym(p.SymbolVal(ref)), out1)
	case ast.ExprIndexAccess:
		out = m.main.Exprs.AddIndexAccess(m.remapExpr(p.Lhs(ref)), m.remapExpr(p.Rhs(ref)))
	case ast.ExprIndexAssign:
		out = m.main.Exprs.AddIndexAssign(m.remapExpr(p.Lhs(ref)), m.remapExpr(p.Rhs(ref)), m.remapExpr(p.ThirdOperand(ref)))
	case ast.ExprSliceAccess:
		out = m.main.Exprs.AddSliceAccess(m.remapExpr(p.Lhs(ref)), m.remapExprOpt(p.Rhs(ref)), m.remapExprOpt(p.ThirdOperand(ref)))
	case ast.ExprBuiltinCall:
		out = m.main.Exprs.AddBuiltinCall(p.BuiltinFunctionVal(ref), m.remapExprList(p.ExprListVal(ref)))
	case ast.ExprBuiltinMethodCall:
		out = m.main.Exprs.AddBuiltinMethodCall(m.remapExpr(p.Lhs(ref)), p.BuiltinMethodVal(ref), m.remapExprList(p.ExprListVal(ref)))
	default:
		panic(fmt.Sprintf("module: unhandled expression kind %v", p.Kind(ref)))
	}

	m.exprMemo[ref] = out
	if pos, ok := m.modProg.Locations.ExprLoc(ref); ok {
		m.main.Locations.SetExprLoc(out, pos)
	}
	return out
}
