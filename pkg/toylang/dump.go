package toylang

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/sjson"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// DumpYAML renders prog's pooled AST as human-diffable YAML, backing
// the CLI's `--dump-ast` flag, marshaled with goccy/go-yaml.
func (p *Program) DumpYAML() (string, error) {
	d := &yamlDumper{prog: p.ast, intern: p.intern}
	tree := d.program()
	out, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DumpJSON renders prog's pooled AST as JSON, built incrementally with
// tidwall/sjson while walking the pool rather than marshaling a Go
// struct tree, so each node's shape is whatever sjson.Set produces at
// the node's path, not a struct tag mapping.
func (p *Program) DumpJSON() (string, error) {
	d := &jsonDumper{prog: p.ast, intern: p.intern}
	return d.program()
}

// --- YAML dumper: builds a map[string]any tree, one function at a time ---

type yamlDumper struct {
	prog   *ast.Program
	intern *symbols.Interner
}

func (d *yamlDumper) name(s symbols.Symbol) string {
	if s == symbols.Invalid {
		return ""
	}
	return d.intern.Resolve(s)
}

func (d *yamlDumper) program() map[string]any {
	functions := make([]any, len(d.prog.Functions))
	for i, fn := range d.prog.Functions {
		functions[i] = d.function(fn)
	}
	structs := make([]any, len(d.prog.Structs))
	for i, ref := range d.prog.Structs {
		structs[i] = d.stmt(ref)
	}
	impls := make([]any, len(d.prog.Impls))
	for i, ref := range d.prog.Impls {
		impls[i] = d.stmt(ref)
	}
	return map[string]any{
		"functions": functions,
		"structs":   structs,
		"impls":     impls,
	}
}

func (d *yamlDumper) function(fn *ast.FunctionDecl) map[string]any {
	params := make([]any, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = map[string]any{"name": d.name(p.Name), "type": d.typeStr(p.Type)}
	}
	ret := "unit"
	if fn.ReturnType != nil {
		ret = d.typeStr(*fn.ReturnType)
	}
	return map[string]any{
		"name":       d.name(fn.Name),
		"params":     params,
		"returns":    ret,
		"visibility": fn.Visibility.String(),
		"is_method":  fn.IsMethod,
		"body":       d.stmt(fn.Body),
	}
}

func (d *yamlDumper) typeStr(t types.TypeDecl) string {
	switch t.Kind {
	case types.IdentifierKind, types.StructKind, types.GenericKind:
		return d.name(t.Name)
	default:
		return t.String()
	}
}

func (d *yamlDumper) stmt(ref ast.StmtRef) map[string]any {
	if ref == ast.NoStmt {
		return nil
	}
	p := d.prog.Stmts
	kind := p.Kind(ref)
	node := map[string]any{"kind": kind.String()}

	switch kind {
	case ast.StmtExpression:
		node["expr"] = d.expr(p.ExprVal(ref))
	case ast.StmtVal, ast.StmtVar:
		node["name"] = d.name(p.SymbolVal(ref))
		if p.HasTypeDecl(ref) {
			node["type"] = d.typeStr(p.TypeDeclVal(ref))
		}
		node["init"] = d.expr(p.ExprVal(ref))
	case ast.StmtReturn:
		node["expr"] = d.expr(p.ExprVal(ref))
	case ast.StmtFor:
		node["var"] = d.name(p.SymbolVal(ref))
		node["start"] = d.expr(p.StartExpr(ref))
		node["end"] = d.expr(p.EndExpr(ref))
		node["block"] = d.expr(p.BlockExpr(ref))
	case ast.StmtWhile:
		node["cond"] = d.expr(p.Condition(ref))
		node["block"] = d.expr(p.BlockExpr(ref))
	case ast.StmtStructDecl:
		node["name"] = d.name(p.StructName(ref))
		node["visibility"] = p.VisibilityVal(ref).String()
		fields := make([]any, 0, len(p.StructFieldsVal(ref)))
		for _, f := range p.StructFieldsVal(ref) {
			fields = append(fields, map[string]any{
				"name": d.name(f.Name), "type": d.typeStr(f.Type), "visibility": f.Visibility.String(),
			})
		}
		node["fields"] = fields
	case ast.StmtImplBlock:
		node["target"] = d.name(p.StructName(ref))
		methods := make([]any, 0, len(p.ImplMethods(ref)))
		for _, m := range p.ImplMethods(ref) {
			methods = append(methods, d.function(m))
		}
		node["methods"] = methods
	}
	return node
}

func (d *yamlDumper) expr(ref ast.ExprRef) map[string]any {
	if ref == ast.NoExpr {
		return nil
	}
	p := d.prog.Exprs
	kind := p.Kind(ref)
	node := map[string]any{"kind": kind.String()}

	switch kind {
	case ast.ExprInt64:
		node["value"] = p.Int64Val(ref)
	case ast.ExprUInt64:
		node["value"] = p.UInt64Val(ref)
	case ast.ExprNumber, ast.ExprString, ast.ExprIdentifier:
		node["value"] = d.name(p.SymbolVal(ref))
	case ast.ExprQualifiedIdentifier:
		path := p.SymbolListVal(ref)
		parts := make([]any, len(path))
		for i, s := range path {
			parts[i] = d.name(s)
		}
		node["path"] = parts
	case ast.ExprAssign:
		node["lhs"] = d.expr(p.Lhs(ref))
		node["rhs"] = d.expr(p.Rhs(ref))
	case ast.ExprBinary:
		node["op"] = p.Operator(ref).String()
		node["lhs"] = d.expr(p.Lhs(ref))
		node["rhs"] = d.expr(p.Rhs(ref))
	case ast.ExprUnary:
		node["op"] = p.UnaryOperator(ref).String()
		node["operand"] = d.expr(p.Operand(ref))
	case ast.ExprBlock:
		stmts := p.StmtListVal(ref)
		out := make([]any, len(stmts))
		for i, s := range stmts {
			out[i] = d.stmt(s)
		}
		node["stmts"] = out
	case ast.ExprIfElifElse:
		node["cond"] = d.expr(p.Lhs(ref))
		node["then"] = d.expr(p.Rhs(ref))
		elifs := p.ElifListVal(ref)
		arms := make([]any, len(elifs))
		for i, arm := range elifs {
			arms[i] = map[string]any{"cond": d.expr(arm.Cond), "block": d.expr(arm.Block)}
		}
		node["elifs"] = arms
		node["else"] = d.expr(p.ThirdOperand(ref))
	case ast.ExprCall:
		node["name"] = d.name(p.SymbolVal(ref))
		node["args"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprExprList:
		node["exprs"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprArrayLiteral:
		node["elems"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprDictLiteral:
		entries := p.EntryListVal(ref)
		out := make([]any, len(entries))
		for i, e := range entries {
			out[i] = map[string]any{"key": d.expr(e.Key), "val": d.expr(e.Val)}
		}
		node["entries"] = out
	case ast.ExprTupleLiteral:
		node["elems"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprTupleAccess:
		node["tuple"] = d.expr(p.Lhs(ref))
		node["index"] = p.IndexVal(ref)
	case ast.ExprFieldAccess:
		node["obj"] = d.expr(p.Lhs(ref))
		node["field"] = d.name(p.SymbolVal(ref))
	case ast.ExprMethodCall:
		node["obj"] = d.expr(p.Lhs(ref))
		node["method"] = d.name(p.SymbolVal(ref))
		node["args"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprStructLiteral:
		node["name"] = d.name(p.SymbolVal(ref))
		fields := p.FieldListVal(ref)
		out := make([]any, len(fields))
		for i, f := range fields {
			out[i] = map[string]any{"name": d.name(f.Name), "expr": d.expr(f.Expr)}
		}
		node["fields"] = out
	case ast.ExprIndexAccess:
		node["obj"] = d.expr(p.Lhs(ref))
		node["index"] = d.expr(p.Rhs(ref))
	case ast.ExprIndexAssign:
		node["obj"] = d.expr(p.Lhs(ref))
		node["index"] = d.expr(p.Rhs(ref))
		node["value"] = d.expr(p.ThirdOperand(ref))
	case ast.ExprSliceAccess:
		node["obj"] = d.expr(p.Lhs(ref))
		node["start"] = d.expr(p.Rhs(ref))
		node["end"] = d.expr(p.ThirdOperand(ref))
	case ast.ExprBuiltinCall:
		node["fn"] = p.BuiltinFunctionVal(ref).String()
		node["args"] = d.exprList(p.ExprListVal(ref))
	case ast.ExprBuiltinMethodCall:
		node["recv"] = d.expr(p.Lhs(ref))
		node["method"] = p.BuiltinMethodVal(ref).String()
		node["args"] = d.exprList(p.ExprListVal(ref))
	}
	return node
}

func (d *yamlDumper) exprList(refs []ast.ExprRef) []any {
	out := make([]any, len(refs))
	for i, r := range refs {
		out[i] = d.expr(r)
	}
	return out
}

// --- JSON dumper: builds the document incrementally via sjson.Set/SetRaw ---

type jsonDumper struct {
	prog   *ast.Program
	intern *symbols.Interner
}

func (d *jsonDumper) name(s symbols.Symbol) string {
	if s == symbols.Invalid {
		return ""
	}
	return d.intern.Resolve(s)
}

func (d *jsonDumper) program() (string, error) {
	doc := "{}"
	var err error

	functions := "[]"
	for i, fn := range d.prog.Functions {
		raw, ferr := d.function(fn)
		if ferr != nil {
			return "", ferr
		}
		if functions, err = sjson.SetRaw(functions, fmt.Sprintf("%d", i), raw); err != nil {
			return "", err
		}
	}
	if doc, err = sjson.SetRaw(doc, "functions", functions); err != nil {
		return "", err
	}

	structs := "[]"
	for i, ref := range d.prog.Structs {
		raw, serr := d.stmt(ref)
		if serr != nil {
			return "", serr
		}
		if structs, err = sjson.SetRaw(structs, fmt.Sprintf("%d", i), raw); err != nil {
			return "", err
		}
	}
	if doc, err = sjson.SetRaw(doc, "structs", structs); err != nil {
		return "", err
	}

	return doc, nil
}

func (d *jsonDumper) function(fn *ast.FunctionDecl) (string, error) {
	j := "{}"
	var err error
	if j, err = sjson.Set(j, "name", d.name(fn.Name)); err != nil {
		return "", err
	}
	if j, err = sjson.Set(j, "visibility", fn.Visibility.String()); err != nil {
		return "", err
	}
	ret := "unit"
	if fn.ReturnType != nil {
		ret = d.typeStr(*fn.ReturnType)
	}
	if j, err = sjson.Set(j, "returns", ret); err != nil {
		return "", err
	}
	params := "[]"
	for i, p := range fn.Params {
		entry := "{}"
		entry, _ = sjson.Set(entry, "name", d.name(p.Name))
		entry, _ = sjson.Set(entry, "type", d.typeStr(p.Type))
		if params, err = sjson.SetRaw(params, fmt.Sprintf("%d", i), entry); err != nil {
			return "", err
		}
	}
	if j, err = sjson.SetRaw(j, "params", params); err != nil {
		return "", err
	}
	body, err := d.stmt(fn.Body)
	if err != nil {
		return "", err
	}
	if j, err = sjson.SetRaw(j, "body", body); err != nil {
		return "", err
	}
	return j, nil
}

func (d *jsonDumper) typeStr(t types.TypeDecl) string {
	switch t.Kind {
	case types.IdentifierKind, types.StructKind, types.GenericKind:
		return d.name(t.Name)
	default:
		return t.String()
	}
}

func (d *jsonDumper) stmt(ref ast.StmtRef) (string, error) {
	if ref == ast.NoStmt {
		return "null", nil
	}
	p := d.prog.Stmts
	kind := p.Kind(ref)
	j, err := sjson.Set("{}", "kind", kind.String())
	if err != nil {
		return "", err
	}

	set := func(path string, raw string) {
		if err == nil {
			j, err = sjson.SetRaw(j, path, raw)
		}
	}
	setStr := func(path, v string) {
		if err == nil {
			j, err = sjson.Set(j, path, v)
		}
	}

	switch kind {
	case ast.StmtExpression:
		e, derr := d.expr(p.ExprVal(ref))
		if derr != nil {
			return "", derr
		}
		set("expr", e)
	case ast.StmtVal, ast.StmtVar:
		setStr("name", d.name(p.SymbolVal(ref)))
		if p.HasTypeDecl(ref) {
			setStr("type", d.typeStr(p.TypeDeclVal(ref)))
		}
		init, derr := d.expr(p.ExprVal(ref))
		if derr != nil {
			return "", derr
		}
		set("init", init)
	case ast.StmtReturn:
		e, derr := d.expr(p.ExprVal(ref))
		if derr != nil {
			return "", derr
		}
		set("expr", e)
	case ast.StmtFor:
		setStr("var", d.name(p.SymbolVal(ref)))
		start, _ := d.expr(p.StartExpr(ref))
		end, _ := d.expr(p.EndExpr(ref))
		block, derr := d.expr(p.BlockExpr(ref))
		if derr != nil {
			return "", derr
		}
		set("start", start)
		set("end", end)
		set("block", block)
	case ast.StmtWhile:
		cond, _ := d.expr(p.Condition(ref))
		block, derr := d.expr(p.BlockExpr(ref))
		if derr != nil {
			return "", derr
		}
		set("cond", cond)
		set("block", block)
	case ast.StmtStructDecl:
		setStr("name", d.name(p.StructName(ref)))
		setStr("visibility", p.VisibilityVal(ref).String())
		fields := "[]"
		for i, f := range p.StructFieldsVal(ref) {
			entry := "{}"
			entry, _ = sjson.Set(entry, "name", d.name(f.Name))
			entry, _ = sjson.Set(entry, "type", d.typeStr(f.Type))
			entry, _ = sjson.Set(entry, "visibility", f.Visibility.String())
			fields, _ = sjson.SetRaw(fields, fmt.Sprintf("%d", i), entry)
		}
		set("fields", fields)
	case ast.StmtImplBlock:
		setStr("target", d.name(p.StructName(ref)))
		methods := "[]"
		for i, m := range p.ImplMethods(ref) {
			raw, derr := d.function(m)
			if derr != nil {
				return "", derr
			}
			methods, _ = sjson.SetRaw(methods, fmt.Sprintf("%d", i), raw)
		}
		set("methods", methods)
	}
	if err != nil {
		return "", err
	}
	return j, nil
}

func (d *jsonDumper) expr(ref ast.ExprRef) (string, error) {
	if ref == ast.NoExpr {
		return "null", nil
	}
	p := d.prog.Exprs
	kind := p.Kind(ref)
	j, err := sjson.Set("{}", "kind", kind.String())
	if err != nil {
		return "", err
	}

	setStr := func(path, v string) {
		if err == nil {
			j, err = sjson.Set(j, path, v)
		}
	}
	setInt := func(path string, v int64) {
		if err == nil {
			j, err = sjson.Set(j, path, v)
		}
	}
	setRaw := func(path, raw string) {
		if err == nil {
			j, err = sjson.SetRaw(j, path, raw)
		}
	}
	child := func(path string, ref ast.ExprRef) {
		if err != nil {
			return
		}
		raw, cerr := d.expr(ref)
		if cerr != nil {
			err = cerr
			return
		}
		setRaw(path, raw)
	}
	childList := func(path string, refs []ast.ExprRef) {
		if err != nil {
			return
		}
		list := "[]"
		for i, r := range refs {
			raw, cerr := d.expr(r)
			if cerr != nil {
				err = cerr
				return
			}
			if list, err = sjson.SetRaw(list, fmt.Sprintf("%d", i), raw); err != nil {
				return
			}
		}
		setRaw(path, list)
	}

	switch kind {
	case ast.ExprInt64:
		setInt("value", p.Int64Val(ref))
	case ast.ExprUInt64:
		setStr("value", fmt.Sprintf("%d", p.UInt64Val(ref)))
	case ast.ExprNumber, ast.ExprString, ast.ExprIdentifier:
		setStr("value", d.name(p.SymbolVal(ref)))
	case ast.ExprQualifiedIdentifier:
		path := p.SymbolListVal(ref)
		parts := "[]"
		for i, s := range path {
			parts, err = sjson.Set(parts, fmt.Sprintf("%d", i), d.name(s))
		}
		setRaw("path", parts)
	case ast.ExprAssign:
		child("lhs", p.Lhs(ref))
		child("rhs", p.Rhs(ref))
	case ast.ExprBinary:
		setStr("op", p.Operator(ref).String())
		child("lhs", p.Lhs(ref))
		child("rhs", p.Rhs(ref))
	case ast.ExprUnary:
		setStr("op", p.UnaryOperator(ref).String())
		child("operand", p.Operand(ref))
	case ast.ExprBlock:
		stmts := "[]"
		for i, s := range p.StmtListVal(ref) {
			raw, serr := d.stmt(s)
			if serr != nil {
				return "", serr
			}
			if stmts, err = sjson.SetRaw(stmts, fmt.Sprintf("%d", i), raw); err != nil {
				return "", err
			}
		}
		setRaw("stmts", stmts)
	case ast.ExprIfElifElse:
		child("cond", p.Lhs(ref))
		child("then", p.Rhs(ref))
		arms := "[]"
		for i, arm := range p.ElifListVal(ref) {
			cond, _ := d.expr(arm.Cond)
			block, _ := d.expr(arm.Block)
			entry := "{}"
			entry, _ = sjson.SetRaw(entry, "cond", cond)
			entry, _ = sjson.SetRaw(entry, "block", block)
			arms, _ = sjson.SetRaw(arms, fmt.Sprintf("%d", i), entry)
		}
		setRaw("elifs", arms)
		child("else", p.ThirdOperand(ref))
	case ast.ExprCall:
		setStr("name", d.name(p.SymbolVal(ref)))
		childList("args", p.ExprListVal(ref))
	case ast.ExprExprList:
		childList("exprs", p.ExprListVal(ref))
	case ast.ExprArrayLiteral:
		childList("elems", p.ExprListVal(ref))
	case ast.ExprDictLiteral:
		entries := "[]"
		for i, e := range p.EntryListVal(ref) {
			k, _ := d.expr(e.Key)
			v, _ := d.expr(e.Val)
			entry := "{}"
			entry, _ = sjson.SetRaw(entry, "key", k)
			entry, _ = sjson.SetRaw(entry, "val", v)
			entries, _ = sjson.SetRaw(entries, fmt.Sprintf("%d", i), entry)
		}
		setRaw("entries", entries)
	case ast.ExprTupleLiteral:
		childList("elems", p.ExprListVal(ref))
	case ast.ExprTupleAccess:
		child("tuple", p.Lhs(ref))
		setInt("index", int64(p.IndexVal(ref)))
	case ast.ExprFieldAccess:
		child("obj", p.Lhs(ref))
		setStr("field", d.name(p.SymbolVal(ref)))
	case ast.ExprMethodCall:
		child("obj", p.Lhs(ref))
		setStr("method", d.name(p.SymbolVal(ref)))
		childList("args", p.ExprListVal(ref))
	case ast.ExprStructLiteral:
		setStr("name", d.name(p.SymbolVal(ref)))
		fields := "[]"
		for i, f := range p.FieldListVal(ref) {
			v, _ := d.expr(f.Expr)
			entry := "{}"
			entry, _ = sjson.Set(entry, "name", d.name(f.Name))
			entry, _ = sjson.SetRaw(entry, "expr", v)
			fields, _ = sjson.SetRaw(fields, fmt.Sprintf("%d", i), entry)
		}
		setRaw("fields", fields)
	case ast.ExprIndexAccess:
		child("obj", p.Lhs(ref))
		child("index", p.Rhs(ref))
	case ast.ExprIndexAssign:
		child("obj", p.Lhs(ref))
		child("index", p.Rhs(ref))
		child("value", p.ThirdOperand(ref))
	case ast.ExprSliceAccess:
		child("obj", p.Lhs(ref))
		child("start", p.Rhs(ref))
		child("end", p.ThirdOperand(ref))
	case ast.ExprBuiltinCall:
		setStr("fn", p.BuiltinFunctionVal(ref).String())
		childList("args", p.ExprListVal(ref))
	case ast.ExprBuiltinMethodCall:
		child("recv", p.Lhs(ref))
		setStr("method", p.BuiltinMethodVal(ref).String())
		childList("args", p.ExprListVal(ref))
	}

	if err != nil {
		return "", err
	}
	return j, nil
}
