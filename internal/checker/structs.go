package checker

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// checkCall resolves a plain `name(args)` call against a lazily checked
// call graph, where a callee not yet visited is checked on first
// call so its return type is available for the caller's bidirectional
// inference, and a callee already mid-check (direct or mutual recursion)
// falls back to its declared return type instead of recursing forever.
func (c *Checker) checkCall(ref ast.ExprRef) types.TypeDecl {
	name := c.prog.Exprs.SymbolVal(ref)
	args := c.prog.Exprs.ExprListVal(ref)

	fn := c.prog.FindFunction(name)
	if fn == nil {
		c.errorAtExpr(ref, diag.NameResolution, "undefined function %q", c.intern.Resolve(name))
		for _, a := range args {
			c.checkExpr(a)
		}
		return types.Simple(types.Unknown)
	}

	switch c.checkState[name] {
	case notChecked:
		c.callDepth[name]++
		if c.callDepth[name] > maxCallDepth {
			c.errorAtExpr(ref, diag.TypeMismatch, "call depth exceeded checking %q", c.intern.Resolve(name))
			c.callDepth[name]--
			return types.Simple(types.Unknown)
		}
		c.checkArgsAgainstParams(fn.Params, args, ref)
		savedScope, savedUsage := c.scopeTop, c.numberUsage
		c.numberUsage = nil
		c.checkFunctionTopLevel(fn)
		c.scopeTop, c.numberUsage = savedScope, savedUsage
		c.callDepth[name]--
	case checking:
		// Recursive call before the callee's own body finished checking:
		// validate the arguments but trust the declared/accumulated
		// return type rather than re-entering checkFunctionTopLevel.
		c.checkArgsAgainstParams(fn.Params, args, ref)
	case checkedOK:
		c.checkArgsAgainstParams(fn.Params, args, ref)
	}

	if rt, ok := c.returnType[name]; ok {
		return rt
	}
	if fn.ReturnType != nil {
		return *fn.ReturnType
	}
	return types.Simple(types.Unit)
}

// checkArgsAgainstParams validates arity and, per parameter, pushes that
// parameter's declared type as the type_hint while checking the argument
// expression. A parameter typed by a generic name accepts any
// concrete argument type without comparison, matching the "generics
// checked once, no specialization" Open Question resolution.
func (c *Checker) checkArgsAgainstParams(params []ast.Param, args []ast.ExprRef, ref ast.ExprRef) {
	if len(args) != len(params) {
		c.errorAtExpr(ref, diag.TypeMismatch, "expected %d argument(s), got %d", len(params), len(args))
	}
	n := len(args)
	if len(params) < n {
		n = len(params)
	}
	for i := 0; i < n; i++ {
		p := params[i]
		restore := c.pushHint(p.Type)
		argTy := c.checkExpr(args[i])
		restore()

		if c.isOpaque(p.Type) {
			continue
		}
		if argTy.Kind == types.Number && p.Type.IsInteger() {
			c.resolveNumber(args[i], p.Type)
			continue
		}
		if argTy.IsConcrete() && p.Type.IsConcrete() && argTy.Kind != types.Unknown &&
			!argTy.Equal(p.Type) && !c.isOpaque(argTy) {
			c.errorAtExpr(args[i], diag.TypeMismatch, "argument %d has type %s, expected %s", i+1, argTy, p.Type)
		}
	}
	for i := n; i < len(args); i++ {
		c.checkExpr(args[i])
	}
}

// checkArrayLiteral resolves the element type from the prevailing
// type_hint's array element (if any), otherwise from the first element,
// enforcing every later element matches.
// An empty literal with no hint is a type error: there is nothing to
// infer the element type from, and nothing downstream is expected to
// resolve it later.
func (c *Checker) checkArrayLiteral(ref ast.ExprRef) types.TypeDecl {
	elems := c.prog.Exprs.ExprListVal(ref)

	var elemHint *types.TypeDecl
	if h, ok := c.hint(); ok && h.Kind == types.ArrayKind {
		e := h.ArrayElem()
		elemHint = &e
	}

	if len(elems) == 0 {
		if elemHint != nil {
			return types.Array(*elemHint, 0)
		}
		c.errorAtExpr(ref, diag.TypeMismatch, "empty array literal needs a type from context")
		return types.Array(types.Simple(types.Unknown), 0)
	}

	var restore func()
	if elemHint != nil {
		restore = c.pushHint(*elemHint)
	}
	first := c.checkExpr(elems[0])
	if restore != nil {
		restore()
	}
	if elemHint == nil {
		elemHint = &first
	}

	for _, e := range elems[1:] {
		var r func()
		if elemHint != nil {
			r = c.pushHint(*elemHint)
		}
		ty := c.checkExpr(e)
		if r != nil {
			r()
		}
		if ty.Kind == types.Number && elemHint.IsInteger() {
			c.resolveNumber(e, *elemHint)
			continue
		}
		if ty.IsConcrete() && elemHint.IsConcrete() && !ty.Equal(*elemHint) &&
			!c.isOpaque(ty) && !c.isOpaque(*elemHint) {
			c.errorAtExpr(e, diag.TypeMismatch, "array element has type %s, expected %s", ty, *elemHint)
		}
	}
	return types.Array(*elemHint, len(elems))
}

// checkDictLiteral mirrors checkArrayLiteral for `[key: val, ...]`
// dictionary literals.
func (c *Checker) checkDictLiteral(ref ast.ExprRef) types.TypeDecl {
	entries := c.prog.Exprs.EntryListVal(ref)

	var keyHint, valHint *types.TypeDecl
	if h, ok := c.hint(); ok && h.Kind == types.DictKind && h.Val != nil && h.Key != nil {
		k, v := *h.Key, *h.Val
		keyHint, valHint = &k, &v
	}

	if len(entries) == 0 {
		k := types.Simple(types.Unknown)
		v := types.Simple(types.Unknown)
		if keyHint != nil {
			k = *keyHint
		}
		if valHint != nil {
			v = *valHint
		}
		return types.Dict(k, v)
	}

	keyTy := c.checkEntrySide(entries[0].Key, keyHint)
	valTy := c.checkEntrySide(entries[0].Val, valHint)

	for _, e := range entries[1:] {
		kt := c.checkEntrySide(e.Key, &keyTy)
		if kt.IsConcrete() && keyTy.IsConcrete() && !kt.Equal(keyTy) &&
			!c.isOpaque(kt) && !c.isOpaque(keyTy) {
			c.errorAtExpr(e.Key, diag.TypeMismatch, "dict key has type %s, expected %s", kt, keyTy)
		}
		vt := c.checkEntrySide(e.Val, &valTy)
		if vt.IsConcrete() && valTy.IsConcrete() && !vt.Equal(valTy) &&
			!c.isOpaque(vt) && !c.isOpaque(valTy) {
			c.errorAtExpr(e.Val, diag.TypeMismatch, "dict value has type %s, expected %s", vt, valTy)
		}
	}
	return types.Dict(keyTy, valTy)
}

func (c *Checker) checkEntrySide(ref ast.ExprRef, hint *types.TypeDecl) types.TypeDecl {
	var restore func()
	if hint != nil {
		restore = c.pushHint(*hint)
	}
	ty := c.checkExpr(ref)
	if restore != nil {
		restore()
	}
	if hint != nil && ty.Kind == types.Number && hint.IsInteger() {
		c.resolveNumber(ref, *hint)
		return *hint
	}
	return ty
}

func (c *Checker) checkTupleLiteral(ref ast.ExprRef) types.TypeDecl {
	elems := c.prog.Exprs.ExprListVal(ref)
	tys := make([]types.TypeDecl, len(elems))
	for i, e := range elems {
		tys[i] = c.checkExpr(e)
	}
	return types.Tuple(tys...)
}

func (c *Checker) checkTupleAccess(ref ast.ExprRef) types.TypeDecl {
	tuple := c.prog.Exprs.Lhs(ref)
	idx := c.prog.Exprs.IndexVal(ref)
	ty := c.checkExpr(tuple)
	if ty.Kind != types.TupleKind {
		c.errorAtExpr(ref, diag.TypeMismatch, "'.%d' requires a tuple, got %s", idx, ty)
		return types.Simple(types.Unknown)
	}
	if idx < 0 || idx >= len(ty.Elems) {
		c.errorAtExpr(ref, diag.TypeMismatch, "tuple index %d out of range for %d-element tuple", idx, len(ty.Elems))
		return types.Simple(types.Unknown)
	}
	return ty.Elems[idx]
}

// checkFieldAccess resolves `obj.field` against the struct registered
// for obj's type.
func (c *Checker) checkFieldAccess(ref ast.ExprRef) types.TypeDecl {
	obj := c.prog.Exprs.Lhs(ref)
	field := c.prog.Exprs.SymbolVal(ref)
	objTy := c.checkExpr(obj)

	def := c.lookupStruct(objTy)
	if def == nil {
		if objTy.Kind != types.Unknown {
			c.errorAtExpr(ref, diag.TypeMismatch, "type %s has no fields", objTy)
		}
		return types.Simple(types.Unknown)
	}
	for _, f := range def.Fields {
		if f.Name == field {
			return f.Type
		}
	}
	c.errorAtExpr(ref, diag.NameResolution, "struct %q has no field %q", c.intern.Resolve(def.Name), c.intern.Resolve(field))
	return types.Simple(types.Unknown)
}

func (c *Checker) lookupStruct(ty types.TypeDecl) *StructDefinition {
	if ty.Kind != types.StructKind && ty.Kind != types.IdentifierKind {
		return nil
	}
	return c.structs[ty.Name]
}

// checkMethodCall handles both a user/operator-overload method call
// (ExprMethodCall) and a fixed-signature builtin method call
// (ExprBuiltinMethodCall), in priority order: a struct's own method
// first, then the builtin method registry (which
// also covers the universal `is_null` pseudo method). The parser never
// distinguishes these syntactically -- `obj.name(args)` is always an
// ExprMethodCall -- so builtin resolution here is by method name plus
// the receiver's resolved type, not by a pre-tagged enum.
func (c *Checker) checkMethodCall(ref ast.ExprRef) types.TypeDecl {
	recv := c.prog.Exprs.Lhs(ref)
	recvTy := c.checkExpr(recv)
	args := c.prog.Exprs.ExprListVal(ref)

	if c.prog.Exprs.Kind(ref) == ast.ExprBuiltinMethodCall {
		return c.checkBuiltinMethod(ref, c.prog.Exprs.BuiltinMethodVal(ref), recvTy, args)
	}

	method := c.prog.Exprs.SymbolVal(ref)
	methodName := c.intern.Resolve(method)

	if def := c.lookupStruct(recvTy); def != nil {
		if fn, ok := c.methods[def.Name][method]; ok {
			return c.checkUserMethod(fn, args, ref)
		}
	}
	if bm, ok := resolveBuiltinMethod(methodName, recvTy.Kind); ok {
		return c.checkBuiltinMethod(ref, bm, recvTy, args)
	}

	c.errorAtExpr(ref, diag.NameResolution, "no method %q on type %s", methodName, recvTy)
	for _, a := range args {
		c.checkExpr(a)
	}
	return types.Simple(types.Unknown)
}

// resolveBuiltinMethod maps a source-level method name plus the
// receiver's type kind to a BuiltinMethod entry. "len"/"is_null" are
// overloaded across receiver kinds (or, for is_null, any kind); every
// other name is specific to one container/string kind.
func resolveBuiltinMethod(name string, recv types.Kind) (ast.BuiltinMethod, bool) {
	if name == "is_null" {
		return ast.MethodIsNull, true
	}
	switch name {
	case "len":
		switch recv {
		case types.String:
			return ast.MethodStringLen, true
		case types.ArrayKind:
			return ast.MethodArrayLen, true
		case types.DictKind:
			return ast.MethodDictLen, true
		}
	case "concat":
		if recv == types.String {
			return ast.MethodStringConcat, true
		}
	case "substring":
		if recv == types.String {
			return ast.MethodStringSubstring, true
		}
	case "split":
		if recv == types.String {
			return ast.MethodStringSplit, true
		}
	case "to_upper":
		if recv == types.String {
			return ast.MethodStringToUpper, true
		}
	case "to_lower":
		if recv == types.String {
			return ast.MethodStringToLower, true
		}
	case "trim":
		if recv == types.String {
			return ast.MethodStringTrim, true
		}
	case "push":
		if recv == types.ArrayKind {
			return ast.MethodArrayPush, true
		}
	case "pop":
		if recv == types.ArrayKind {
			return ast.MethodArrayPop, true
		}
	case "keys":
		if recv == types.DictKind {
			return ast.MethodDictKeys, true
		}
	case "values":
		if recv == types.DictKind {
			return ast.MethodDictValues, true
		}
	case "contains":
		if recv == types.DictKind {
			return ast.MethodDictContains, true
		}
	}
	return 0, false
}

// checkUserMethod mirrors checkCall's lazy-checking discipline for an
// impl-block method reached through `.method(...)`.
func (c *Checker) checkUserMethod(fn *ast.FunctionDecl, args []ast.ExprRef, ref ast.ExprRef) types.TypeDecl {
	switch c.checkState[fn.Name] {
	case notChecked:
		c.callDepth[fn.Name]++
		if c.callDepth[fn.Name] > maxCallDepth {
			c.errorAtExpr(ref, diag.TypeMismatch, "call depth exceeded checking method %q", c.intern.Resolve(fn.Name))
			c.callDepth[fn.Name]--
			return types.Simple(types.Unknown)
		}
		c.checkArgsAgainstParams(fn.Params, args, ref)
		savedScope, savedUsage := c.scopeTop, c.numberUsage
		c.numberUsage = nil
		c.checkFunctionTopLevel(fn)
		c.scopeTop, c.numberUsage = savedScope, savedUsage
		c.callDepth[fn.Name]--
	default:
		c.checkArgsAgainstParams(fn.Params, args, ref)
	}
	if rt, ok := c.returnType[fn.Name]; ok {
		return rt
	}
	if fn.ReturnType != nil {
		return *fn.ReturnType
	}
	return types.Simple(types.Unit)
}

// checkStructLiteral validates field coverage against the registered
// struct definition: every declared
// field must be initialized exactly once, with no unknown fields.
func (c *Checker) checkStructLiteral(ref ast.ExprRef) types.TypeDecl {
	name := c.prog.Exprs.SymbolVal(ref)
	fields := c.prog.Exprs.FieldListVal(ref)

	def, ok := c.structs[name]
	if !ok {
		c.errorAtExpr(ref, diag.NameResolution, "undefined struct %q", c.intern.Resolve(name))
		for _, f := range fields {
			c.checkExpr(f.Expr)
		}
		return types.Simple(types.Unknown)
	}

	seen := make(map[symbols.Symbol]bool, len(fields))
	for _, f := range fields {
		seen[f.Name] = true
		declTy := c.fieldType(def, f.Name)
		if declTy == nil {
			c.errorAtExpr(f.Expr, diag.NameResolution, "struct %q has no field %q", c.intern.Resolve(name), c.intern.Resolve(f.Name))
			c.checkExpr(f.Expr)
			continue
		}
		if isGenericName(def.Generics, *declTy) {
			// The field's declared type is the struct's own generic
			// parameter (e.g. `value: T` on Box<T>): checked once with
			// no specialization, so any concrete initializer is
			// accepted without a hint or comparison.
			c.checkExpr(f.Expr)
			continue
		}
		restore := c.pushHint(*declTy)
		ty := c.checkExpr(f.Expr)
		restore()
		if ty.Kind == types.Number && declTy.IsInteger() {
			c.resolveNumber(f.Expr, *declTy)
		} else if ty.IsConcrete() && declTy.IsConcrete() && ty.Kind != types.Unknown && !ty.Equal(*declTy) {
			c.errorAtExpr(f.Expr, diag.TypeMismatch, "field %q has type %s, expected %s", c.intern.Resolve(f.Name), ty, *declTy)
		}
	}
	for _, field := range def.Fields {
		if !seen[field.Name] {
			c.errorAtExpr(ref, diag.TypeMismatch, "missing field %q in literal for struct %q", c.intern.Resolve(field.Name), c.intern.Resolve(name))
		}
	}
	return types.Struct(name)
}

// isGenericName reports whether t is a bare reference to one of names
// (a struct or function's own declared generic parameters), which the
// parser represents identically to an ordinary IdentifierKind type.
func isGenericName(names []symbols.Symbol, t types.TypeDecl) bool {
	if t.Kind != types.IdentifierKind && t.Kind != types.GenericKind {
		return false
	}
	for _, n := range names {
		if n == t.Name {
			return true
		}
	}
	return false
}

func (c *Checker) fieldType(def *StructDefinition, name symbols.Symbol) *types.TypeDecl {
	for _, f := range def.Fields {
		if f.Name == name {
			t := f.Type
			return &t
		}
	}
	return nil
}

// checkIndexAccess dispatches `obj[idx]` to array/dict element access or,
// for a struct type, the operator-overload `__getitem__` method.
func (c *Checker) checkIndexAccess(ref ast.ExprRef) types.TypeDecl {
	obj := c.prog.Exprs.Lhs(ref)
	idx := c.prog.Exprs.Rhs(ref)
	objTy := c.checkExpr(obj)

	switch objTy.Kind {
	case types.ArrayKind:
		c.checkIndexOperand(idx, types.Simple(types.UInt64))
		return objTy.ArrayElem()
	case types.DictKind:
		c.checkIndexOperand(idx, dictKey(objTy))
		if objTy.Val != nil {
			return *objTy.Val
		}
		return types.Simple(types.Unknown)
	}

	if def := c.lookupStruct(objTy); def != nil {
		getitem := c.intern.Intern("__getitem__")
		if fn, ok := c.methods[def.Name][getitem]; ok {
			return c.checkUserMethod(fn, []ast.ExprRef{idx}, ref)
		}
	}
	c.errorAtExpr(ref, diag.TypeMismatch, "type %s does not support indexing", objTy)
	c.checkExpr(idx)
	return types.Simple(types.Unknown)
}

func (c *Checker) checkIndexOperand(idx ast.ExprRef, want types.TypeDecl) {
	restore := c.pushHint(want)
	ty := c.checkExpr(idx)
	restore()
	if ty.Kind == types.Number && want.IsInteger() {
		c.resolveNumber(idx, want)
		return
	}
	if ty.IsConcrete() && want.IsConcrete() && ty.Kind != types.Unknown && !ty.Equal(want) &&
		!c.isOpaque(ty) && !c.isOpaque(want) {
		c.errorAtExpr(idx, diag.TypeMismatch, "index has type %s, expected %s", ty, want)
	}
}

// checkIndexAssign dispatches `obj[idx] = val`. A struct exposing only
// `__getitem__` (no `__setitem__`) is a type error at the assignment
// site, not at read, since the two overloads are resolved independently.
func (c *Checker) checkIndexAssign(ref ast.ExprRef) types.TypeDecl {
	obj := c.prog.Exprs.Lhs(ref)
	idx := c.prog.Exprs.Rhs(ref)
	val := c.prog.Exprs.ThirdOperand(ref)
	objTy := c.checkExpr(obj)

	switch objTy.Kind {
	case types.ArrayKind:
		c.checkIndexOperand(idx, types.Simple(types.UInt64))
		c.checkIndexOperand(val, objTy.ArrayElem())
		return types.Simple(types.Unit)
	case types.DictKind:
		c.checkIndexOperand(idx, dictKey(objTy))
		if objTy.Val != nil {
			c.checkIndexOperand(val, *objTy.Val)
		} else {
			c.checkExpr(val)
		}
		return types.Simple(types.Unit)
	}

	if def := c.lookupStruct(objTy); def != nil {
		setitem := c.intern.Intern("__setitem__")
		if fn, ok := c.methods[def.Name][setitem]; ok {
			c.checkUserMethod(fn, []ast.ExprRef{idx, val}, ref)
			return types.Simple(types.Unit)
		}
		getitem := c.intern.Intern("__getitem__")
		if _, ok := c.methods[def.Name][getitem]; ok {
			c.errorAtExpr(ref, diag.TypeMismatch, "struct %q defines '__getitem__' but not '__setitem__'; index assignment is not supported", c.intern.Resolve(def.Name))
			c.checkExpr(idx)
			c.checkExpr(val)
			return types.Simple(types.Unit)
		}
	}
	c.errorAtExpr(ref, diag.TypeMismatch, "type %s does not support index assignment", objTy)
	c.checkExpr(idx)
	c.checkExpr(val)
	return types.Simple(types.Unit)
}

// checkSliceAccess dispatches `obj[start..end]`; NoExpr bounds mean the
// corresponding side was omitted.
func (c *Checker) checkSliceAccess(ref ast.ExprRef) types.TypeDecl {
	obj := c.prog.Exprs.Lhs(ref)
	start := c.prog.Exprs.Rhs(ref)
	end := c.prog.Exprs.ThirdOperand(ref)
	objTy := c.checkExpr(obj)

	switch objTy.Kind {
	case types.ArrayKind, types.String:
		if start != ast.NoExpr {
			c.checkIndexOperand(start, types.Simple(types.UInt64))
		}
		if end != ast.NoExpr {
			c.checkIndexOperand(end, types.Simple(types.UInt64))
		}
		return objTy
	}

	if def := c.lookupStruct(objTy); def != nil {
		getslice := c.intern.Intern("__getslice__")
		if fn, ok := c.methods[def.Name][getslice]; ok {
			bounds := make([]ast.ExprRef, 0, 2)
			if start != ast.NoExpr {
				bounds = append(bounds, start)
			}
			if end != ast.NoExpr {
				bounds = append(bounds, end)
			}
			return c.checkUserMethod(fn, bounds, ref)
		}
	}
	c.errorAtExpr(ref, diag.TypeMismatch, "type %s does not support slicing", objTy)
	return types.Simple(types.Unknown)
}

// builtinMethodSig is one fixed entry point of the builtin method
// registry: the receiver kind it binds
// to, the expected argument types, and the result type.
type builtinMethodSig struct {
	receiver func(types.Kind) bool
	args     []types.Kind
	result   func(recv types.TypeDecl) types.TypeDecl
}

// dictKey returns t's key type, or Unknown if t isn't a well-formed dict
// (defensive: an empty-literal dict built before its key type was ever
// inferred has no Key).
func dictKey(t types.TypeDecl) types.TypeDecl {
	if t.Key == nil {
		return types.Simple(types.Unknown)
	}
	return *t.Key
}

func isArray(k types.Kind) bool  { return k == types.ArrayKind }
func isDict(k types.Kind) bool   { return k == types.DictKind }
func isString(k types.Kind) bool { return k == types.String }
func anyKind(types.Kind) bool    { return true }

var builtinMethodTable = map[ast.BuiltinMethod]builtinMethodSig{
	ast.MethodIsNull:       {anyKind, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.Bool) }},
	ast.MethodStringLen:    {isString, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.UInt64) }},
	ast.MethodStringConcat: {isString, []types.Kind{types.String}, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.String) }},
	ast.MethodStringSubstring: {isString, []types.Kind{types.UInt64, types.UInt64}, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.String) }},
	ast.MethodStringSplit:  {isString, []types.Kind{types.String}, func(types.TypeDecl) types.TypeDecl { return types.Array(types.Simple(types.String), 0) }},
	ast.MethodStringToUpper: {isString, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.String) }},
	ast.MethodStringToLower: {isString, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.String) }},
	ast.MethodStringTrim:   {isString, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.String) }},
	ast.MethodArrayLen:     {isArray, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.UInt64) }},
	ast.MethodArrayPop:     {isArray, nil, func(recv types.TypeDecl) types.TypeDecl { return recv.ArrayElem() }},
	ast.MethodDictLen:      {isDict, nil, func(types.TypeDecl) types.TypeDecl { return types.Simple(types.UInt64) }},
}

// checkBuiltinMethod validates a fixed-signature builtin call. ArrayPush,
// DictKeys/DictValues, and DictContains need the receiver's own
// element/key/value types, so they are resolved directly rather than
// through builtinMethodTable's static argument list.
func (c *Checker) checkBuiltinMethod(ref ast.ExprRef, m ast.BuiltinMethod, recvTy types.TypeDecl, args []ast.ExprRef) types.TypeDecl {
	switch m {
	case ast.MethodArrayPush:
		if recvTy.Kind != types.ArrayKind {
			c.errorAtExpr(ref, diag.TypeMismatch, "'push' requires an array receiver, got %s", recvTy)
		}
		if len(args) != 1 {
			c.errorAtExpr(ref, diag.TypeMismatch, "'push' takes exactly 1 argument, got %d", len(args))
			for _, a := range args {
				c.checkExpr(a)
			}
			return types.Simple(types.Unit)
		}
		c.checkIndexOperand(args[0], recvTy.ArrayElem())
		return types.Simple(types.Unit)
	case ast.MethodDictKeys:
		if recvTy.Kind != types.DictKind {
			c.errorAtExpr(ref, diag.TypeMismatch, "'keys' requires a dict receiver, got %s", recvTy)
			return types.Simple(types.Unknown)
		}
		return types.Array(dictKey(recvTy), 0)
	case ast.MethodDictValues:
		if recvTy.Kind != types.DictKind {
			c.errorAtExpr(ref, diag.TypeMismatch, "'values' requires a dict receiver, got %s", recvTy)
			return types.Simple(types.Unknown)
		}
		if recvTy.Val == nil {
			return types.Array(types.Simple(types.Unknown), 0)
		}
		return types.Array(*recvTy.Val, 0)
	case ast.MethodDictContains:
		if recvTy.Kind != types.DictKind {
			c.errorAtExpr(ref, diag.TypeMismatch, "'contains' requires a dict receiver, got %s", recvTy)
		}
		if len(args) != 1 {
			c.errorAtExpr(ref, diag.TypeMismatch, "'contains' takes exactly 1 argument, got %d", len(args))
			for _, a := range args {
				c.checkExpr(a)
			}
			return types.Simple(types.Bool)
		}
		c.checkIndexOperand(args[0], dictKey(recvTy))
		return types.Simple(types.Bool)
	}

	sig, ok := builtinMethodTable[m]
	if !ok {
		c.errorAtExpr(ref, diag.TypeMismatch, "unrecognized builtin method")
		for _, a := range args {
			c.checkExpr(a)
		}
		return types.Simple(types.Unknown)
	}
	if !sig.receiver(recvTy.Kind) {
		c.errorAtExpr(ref, diag.TypeMismatch, "builtin method not defined for receiver type %s", recvTy)
	}
	if len(args) != len(sig.args) {
		c.errorAtExpr(ref, diag.TypeMismatch, "expected %d argument(s), got %d", len(sig.args), len(args))
	}
	n := len(args)
	if len(sig.args) < n {
		n = len(sig.args)
	}
	for i := 0; i < n; i++ {
		c.checkIndexOperand(args[i], types.Simple(sig.args[i]))
	}
	for i := n; i < len(args); i++ {
		c.checkExpr(args[i])
	}
	return sig.result(recvTy)
}

// builtinFnSig is one fixed signature of the __builtin_* memory
// intrinsics.
type builtinFnSig struct {
	args   []types.Kind
	result types.Kind
}

var builtinFnTable = map[ast.BuiltinFunction]builtinFnSig{
	ast.BuiltinHeapAlloc:   {[]types.Kind{types.UInt64}, types.Ptr},
	ast.BuiltinHeapFree:    {[]types.Kind{types.Ptr}, types.Unit},
	ast.BuiltinHeapRealloc: {[]types.Kind{types.Ptr, types.UInt64}, types.Ptr},
	ast.BuiltinPtrRead:     {[]types.Kind{types.Ptr}, types.UInt64},
	ast.BuiltinPtrWrite:    {[]types.Kind{types.Ptr, types.UInt64}, types.Unit},
	ast.BuiltinPtrIsNull:   {[]types.Kind{types.Ptr}, types.Bool},
	ast.BuiltinMemCopy:     {[]types.Kind{types.Ptr, types.Ptr, types.UInt64}, types.Unit},
	ast.BuiltinMemMove:     {[]types.Kind{types.Ptr, types.Ptr, types.UInt64}, types.Unit},
	ast.BuiltinMemSet:      {[]types.Kind{types.Ptr, types.UInt64, types.UInt64}, types.Unit},
}

func (c *Checker) checkBuiltinCall(ref ast.ExprRef) types.TypeDecl {
	fn := c.prog.Exprs.BuiltinFunctionVal(ref)
	args := c.prog.Exprs.ExprListVal(ref)

	sig, ok := builtinFnTable[fn]
	if !ok {
		c.errorAtExpr(ref, diag.TypeMismatch, "unrecognized builtin function")
		for _, a := range args {
			c.checkExpr(a)
		}
		return types.Simple(types.Unknown)
	}
	if len(args) != len(sig.args) {
		c.errorAtExpr(ref, diag.TypeMismatch, "expected %d argument(s), got %d", len(sig.args), len(args))
	}
	n := len(args)
	if len(sig.args) < n {
		n = len(sig.args)
	}
	for i := 0; i < n; i++ {
		c.checkIndexOperand(args[i], types.Simple(sig.args[i]))
	}
	for i := n; i < len(args); i++ {
		c.checkExpr(args[i])
	}
	return types.Simple(sig.result)
}
