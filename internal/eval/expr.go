package eval

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// evalExpr dispatches on ref's ExprKind, mirroring checker.checkExpr's
// switch one for one. Every branch returns a *Result rather than a bare
// *Object: Block and IfElifElse are expressions that can embed a Return,
// Break, or Continue statement (via a nested block used as a value), so
// the control-flow sum has to propagate through expression evaluation the
// same way it does through statement evaluation.
func (e *Evaluator) evalExpr(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	switch e.prog.Exprs.Kind(ref) {
	case ast.ExprInt64:
		return valueResult(NewInt64(e.prog.Exprs.Int64Val(ref))), nil
	case ast.ExprUInt64:
		return valueResult(NewUInt64(e.prog.Exprs.UInt64Val(ref))), nil
	case ast.ExprNumber:
		return nil, e.runtimeErr(ref, "internal error: unfinalized Number literal reached the evaluator")
	case ast.ExprString:
		sym := e.prog.Exprs.SymbolVal(ref)
		return valueResult(NewConstString(sym, e.intern.Resolve(sym))), nil
	case ast.ExprTrue:
		return valueResult(NewBool(true)), nil
	case ast.ExprFalse:
		return valueResult(NewBool(false)), nil
	case ast.ExprNull:
		return valueResult(NewNull(types.Simple(types.Unknown))), nil
	case ast.ExprIdentifier:
		name := e.prog.Exprs.SymbolVal(ref)
		obj, ok := env.Get(name)
		if !ok {
			return nil, e.runtimeErr(ref, "undefined identifier %q", e.intern.Resolve(name))
		}
		return valueResult(obj), nil
	case ast.ExprQualifiedIdentifier:
		return nil, e.runtimeErr(ref, "unresolved module member reference")
	case ast.ExprAssign:
		return e.evalAssign(ref, env)
	case ast.ExprBinary:
		return e.evalBinary(ref, env)
	case ast.ExprUnary:
		return e.evalUnary(ref, env)
	case ast.ExprBlock:
		return e.evalBlock(ref, env)
	case ast.ExprIfElifElse:
		return e.evalIfElifElse(ref, env)
	case ast.ExprCall:
		return e.evalCall(ref, env)
	case ast.ExprExprList:
		return e.evalExprList(ref, env)
	case ast.ExprArrayLiteral:
		return e.evalArrayLiteral(ref, env)
	case ast.ExprDictLiteral:
		return e.evalDictLiteral(ref, env)
	case ast.ExprTupleLiteral:
		return e.evalTupleLiteral(ref, env)
	case ast.ExprTupleAccess:
		return e.evalTupleAccess(ref, env)
	case ast.ExprFieldAccess:
		return e.evalFieldAccess(ref, env)
	case ast.ExprMethodCall, ast.ExprBuiltinMethodCall:
		return e.evalMethodCall(ref, env)
	case ast.ExprStructLiteral:
		return e.evalStructLiteral(ref, env)
	case ast.ExprIndexAccess:
		return e.evalIndexAccess(ref, env)
	case ast.ExprIndexAssign:
		return e.evalIndexAssign(ref, env)
	case ast.ExprSliceAccess:
		return e.evalSliceAccess(ref, env)
	case ast.ExprBuiltinCall:
		return e.evalBuiltinCall(ref, env)
	default:
		return nil, e.runtimeErr(ref, "unevaluated expression kind %v", e.prog.Exprs.Kind(ref))
	}
}

// evalOperand evaluates ref purely for its value: if evaluation produced a
// Return/Break/Continue instead (a nested block-as-expression unwinding),
// the caller gets that Result back in unwind and must propagate it rather
// than treat obj as meaningful.
func (e *Evaluator) evalOperand(ref ast.ExprRef, env *Environment) (obj *Object, unwind *Result, err *diag.Diagnostic) {
	res, err := e.evalExpr(ref, env)
	if err != nil {
		return nil, nil, err
	}
	if res.isUnwinding() {
		return nil, res, nil
	}
	return res.Val, nil, nil
}

func (e *Evaluator) evalAssign(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	lhs := e.prog.Exprs.Lhs(ref)
	rhs := e.prog.Exprs.Rhs(ref)
	name := e.prog.Exprs.SymbolVal(lhs)

	val, unwind, err := e.evalOperand(rhs, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	old, ok := env.Get(name)
	if !ok {
		return nil, e.runtimeErr(ref, "undefined identifier %q", e.intern.Resolve(name))
	}
	if relErr := e.refc.Release(old); relErr != nil {
		return nil, relErr
	}
	env.Assign(name, e.refc.Retain(val))
	return valueResult(val), nil
}

func (e *Evaluator) evalUnary(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	op := e.prog.Exprs.UnaryOperator(ref)
	operandRef := e.prog.Exprs.Operand(ref)

	v, unwind, err := e.evalOperand(operandRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch op {
	case ast.OpBitNot:
		switch v.Kind {
		case KindInt64:
			return valueResult(NewInt64(^v.Int64Val)), nil
		case KindUInt64:
			return valueResult(NewUInt64(^v.UInt64Val)), nil
		}
		return nil, e.runtimeErr(ref, "'~' requires an integer operand")
	case ast.OpNot:
		if v.Kind != KindBool {
			return nil, e.runtimeErr(ref, "'!' requires a Bool operand")
		}
		return valueResult(NewBool(!v.BoolVal)), nil
	}
	return nil, e.runtimeErr(ref, "unsupported unary operator")
}

func (e *Evaluator) evalIfElifElse(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	cond := e.prog.Exprs.Lhs(ref)
	then := e.prog.Exprs.Rhs(ref)
	elifs := e.prog.Exprs.ElifListVal(ref)
	els := e.prog.Exprs.ThirdOperand(ref)

	condVal, unwind, err := e.evalOperand(cond, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	if condVal.IsTruthy() {
		return e.evalExpr(then, env)
	}

	for _, arm := range elifs {
		armVal, unwind, err := e.evalOperand(arm.Cond, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if armVal.IsTruthy() {
			return e.evalExpr(arm.Block, env)
		}
	}
	if els != ast.NoExpr {
		return e.evalExpr(els, env)
	}
	return valueResult(NewUnit()), nil
}

func (e *Evaluator) evalCall(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	name := e.prog.Exprs.SymbolVal(ref)
	argRefs := e.prog.Exprs.ExprListVal(ref)

	fn := e.prog.FindFunction(name)
	if fn == nil {
		return nil, e.runtimeErr(ref, "undefined function %q", e.intern.Resolve(name))
	}

	args, unwind, err := e.evalArgs(argRefs, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	val, cerr := e.CallFunction(fn, args)
	if cerr != nil {
		return nil, cerr
	}
	return valueResult(val), nil
}

// evalArgs evaluates a call/method-call argument list in order, stopping
// and propagating the first unwinding Result or error it hits.
func (e *Evaluator) evalArgs(argRefs []ast.ExprRef, env *Environment) ([]*Object, *Result, *diag.Diagnostic) {
	args := make([]*Object, len(argRefs))
	for i, a := range argRefs {
		v, unwind, err := e.evalOperand(a, env)
		if err != nil {
			return nil, nil, err
		}
		if unwind != nil {
			return nil, unwind, nil
		}
		args[i] = v
	}
	return args, nil, nil
}

func (e *Evaluator) evalExprList(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	elems := e.prog.Exprs.ExprListVal(ref)
	args, unwind, err := e.evalArgs(elems, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	for i, v := range args {
		args[i] = e.refc.Retain(v)
	}
	return valueResult(NewTuple(args)), nil
}

func (e *Evaluator) evalArrayLiteral(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	elems := e.prog.Exprs.ExprListVal(ref)
	args, unwind, err := e.evalArgs(elems, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	for i, v := range args {
		args[i] = e.refc.Retain(v)
	}
	return valueResult(NewArray(args)), nil
}

func (e *Evaluator) evalTupleLiteral(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	elems := e.prog.Exprs.ExprListVal(ref)
	args, unwind, err := e.evalArgs(elems, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	for i, v := range args {
		args[i] = e.refc.Retain(v)
	}
	return valueResult(NewTuple(args)), nil
}

func (e *Evaluator) evalDictLiteral(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	entries := e.prog.Exprs.EntryListVal(ref)
	d := NewDict()
	for _, ent := range entries {
		kv, unwind, err := e.evalOperand(ent.Key, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		vv, unwind, err := e.evalOperand(ent.Val, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		key, ok := NewObjectKey(kv)
		if !ok {
			return nil, e.runtimeErr(ref, "dict key must be Bool, Int64, UInt64, or String")
		}
		if _, exists := d.DictVals[key]; !exists {
			d.DictKeys = append(d.DictKeys, key)
		}
		d.DictVals[key] = e.refc.Retain(vv)
	}
	return valueResult(d), nil
}

func (e *Evaluator) evalTupleAccess(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	tupleRef := e.prog.Exprs.Lhs(ref)
	idx := e.prog.Exprs.IndexVal(ref)

	tv, unwind, err := e.evalOperand(tupleRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	if idx < 0 || idx >= len(tv.Elems) {
		return nil, e.runtimeErr(ref, "tuple index %d out of range for %d-element tuple", idx, len(tv.Elems))
	}
	return valueResult(tv.Elems[idx]), nil
}

func (e *Evaluator) evalFieldAccess(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	objRef := e.prog.Exprs.Lhs(ref)
	field := e.prog.Exprs.SymbolVal(ref)

	ov, unwind, err := e.evalOperand(objRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	if ov.Kind != KindStruct {
		return nil, e.runtimeErr(ref, "field access on a non-struct value")
	}
	fv, ok := ov.Fields[field]
	if !ok {
		return nil, e.runtimeErr(ref, "struct %q has no field %q", e.intern.Resolve(ov.StructName), e.intern.Resolve(field))
	}
	return valueResult(fv), nil
}

func (e *Evaluator) evalStructLiteral(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	name := e.prog.Exprs.SymbolVal(ref)
	fieldInits := e.prog.Exprs.FieldListVal(ref)

	fields := make(map[symbols.Symbol]*Object, len(fieldInits))
	for _, fi := range fieldInits {
		v, unwind, err := e.evalOperand(fi.Expr, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		fields[fi.Name] = e.refc.Retain(v)
	}
	return valueResult(NewStruct(name, fields)), nil
}

func (e *Evaluator) evalIndexAccess(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	objRef := e.prog.Exprs.Lhs(ref)
	idxRef := e.prog.Exprs.Rhs(ref)

	ov, unwind, err := e.evalOperand(objRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch ov.Kind {
	case KindArray:
		iv, unwind, err := e.evalOperand(idxRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if iv.Kind != KindUInt64 {
			return nil, e.runtimeErr(ref, "array index must be u64")
		}
		idx := int(iv.UInt64Val)
		if idx < 0 || idx >= len(ov.Elems) {
			return nil, e.runtimeErr(ref, "array index %d out of bounds for length %d", idx, len(ov.Elems))
		}
		return valueResult(ov.Elems[idx]), nil
	case KindDict:
		kv, unwind, err := e.evalOperand(idxRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		key, ok := NewObjectKey(kv)
		if !ok {
			return nil, e.runtimeErr(ref, "dict key must be a hashable scalar")
		}
		val, ok := ov.DictVals[key]
		if !ok {
			return nil, e.runtimeErr(ref, "key not present in dict")
		}
		return valueResult(val), nil
	case KindStruct:
		return e.dispatchOperator(ref, ov, "__getitem__", []ast.ExprRef{idxRef}, env)
	}
	return nil, e.runtimeErr(ref, "type does not support indexing")
}

func (e *Evaluator) evalIndexAssign(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	objRef := e.prog.Exprs.Lhs(ref)
	idxRef := e.prog.Exprs.Rhs(ref)
	valRef := e.prog.Exprs.ThirdOperand(ref)

	ov, unwind, err := e.evalOperand(objRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch ov.Kind {
	case KindArray:
		iv, unwind, err := e.evalOperand(idxRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if iv.Kind != KindUInt64 {
			return nil, e.runtimeErr(ref, "array index must be u64")
		}
		idx := int(iv.UInt64Val)
		if idx < 0 || idx >= len(ov.Elems) {
			return nil, e.runtimeErr(ref, "array index %d out of bounds for length %d", idx, len(ov.Elems))
		}
		newVal, unwind, err := e.evalOperand(valRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if relErr := e.refc.Release(ov.Elems[idx]); relErr != nil {
			return nil, relErr
		}
		ov.Elems[idx] = e.refc.Retain(newVal)
		return valueResult(NewUnit()), nil
	case KindDict:
		kv, unwind, err := e.evalOperand(idxRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		key, ok := NewObjectKey(kv)
		if !ok {
			return nil, e.runtimeErr(ref, "dict key must be a hashable scalar")
		}
		newVal, unwind, err := e.evalOperand(valRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if old, exists := ov.DictVals[key]; exists {
			if relErr := e.refc.Release(old); relErr != nil {
				return nil, relErr
			}
		} else {
			ov.DictKeys = append(ov.DictKeys, key)
		}
		ov.DictVals[key] = e.refc.Retain(newVal)
		return valueResult(NewUnit()), nil
	case KindStruct:
		return e.dispatchOperator(ref, ov, "__setitem__", []ast.ExprRef{idxRef, valRef}, env)
	}
	return nil, e.runtimeErr(ref, "type does not support index assignment")
}

func (e *Evaluator) evalSliceAccess(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	objRef := e.prog.Exprs.Lhs(ref)
	startRef := e.prog.Exprs.Rhs(ref)
	endRef := e.prog.Exprs.ThirdOperand(ref)

	ov, unwind, err := e.evalOperand(objRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch ov.Kind {
	case KindArray:
		start, end, unwind, err := e.resolveSliceBounds(startRef, endRef, len(ov.Elems), env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if start < 0 || end > len(ov.Elems) || start > end {
			return nil, e.runtimeErr(ref, "slice bounds out of range")
		}
		sliced := make([]*Object, end-start)
		for i := start; i < end; i++ {
			sliced[i-start] = e.refc.Retain(ov.Elems[i])
		}
		return valueResult(NewArray(sliced)), nil
	case KindString, KindConstString:
		runes := []rune(ov.AsString())
		start, end, unwind, err := e.resolveSliceBounds(startRef, endRef, len(runes), env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if start < 0 || end > len(runes) || start > end {
			return nil, e.runtimeErr(ref, "slice bounds out of range")
		}
		return valueResult(NewString(string(runes[start:end]))), nil
	case KindStruct:
		args := make([]ast.ExprRef, 0, 2)
		if startRef != ast.NoExpr {
			args = append(args, startRef)
		}
		if endRef != ast.NoExpr {
			args = append(args, endRef)
		}
		return e.dispatchOperator(ref, ov, "__getslice__", args, env)
	}
	return nil, e.runtimeErr(ref, "type does not support slicing")
}

// resolveSliceBounds evaluates the optional start/end bounds of a
// SliceAccess, defaulting to the whole range when either side is NoExpr
//.
func (e *Evaluator) resolveSliceBounds(startRef, endRef ast.ExprRef, length int, env *Environment) (int, int, *Result, *diag.Diagnostic) {
	start, end := 0, length
	if startRef != ast.NoExpr {
		v, unwind, err := e.evalOperand(startRef, env)
		if err != nil {
			return 0, 0, nil, err
		}
		if unwind != nil {
			return 0, 0, unwind, nil
		}
		start = int(v.UInt64Val)
	}
	if endRef != ast.NoExpr {
		v, unwind, err := e.evalOperand(endRef, env)
		if err != nil {
			return 0, 0, nil, err
		}
		if unwind != nil {
			return 0, 0, unwind, nil
		}
		end = int(v.UInt64Val)
	}
	return start, end, nil, nil
}

// dispatchOperator calls a struct's own operator-overload method
// (__getitem__/__setitem__/__getslice__), the mechanism behind container
// syntax on user-defined types.
func (e *Evaluator) dispatchOperator(ref ast.ExprRef, recv *Object, methodName string, argRefs []ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	sym := e.intern.Intern(methodName)
	fn, ok := e.methods[recv.StructName][sym]
	if !ok {
		return nil, e.runtimeErr(ref, "struct %q has no %q operator method", e.intern.Resolve(recv.StructName), methodName)
	}
	args, unwind, err := e.evalArgs(argRefs, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	val, cerr := e.callMethod(fn, recv, args)
	if cerr != nil {
		return nil, cerr
	}
	return valueResult(val), nil
}

// evalBinary mirrors checker.checkBinary's operator grouping: &&/|| short-
// circuit before either side's own value would otherwise matter, then
// arithmetic/comparison/bitwise/shift each run over already type-checked
// (and therefore kind-matched, except shift's rhs) operands.
func (e *Evaluator) evalBinary(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	op := e.prog.Exprs.Operator(ref)
	lhsRef := e.prog.Exprs.Lhs(ref)
	rhsRef := e.prog.Exprs.Rhs(ref)

	if op == ast.OpAnd || op == ast.OpOr {
		lv, unwind, err := e.evalOperand(lhsRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if op == ast.OpAnd && !lv.BoolVal {
			return valueResult(NewBool(false)), nil
		}
		if op == ast.OpOr && lv.BoolVal {
			return valueResult(NewBool(true)), nil
		}
		rv, unwind, err := e.evalOperand(rhsRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		return valueResult(NewBool(rv.BoolVal)), nil
	}

	lv, unwind, err := e.evalOperand(lhsRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	rv, unwind, err := e.evalOperand(rhsRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	return e.applyBinary(ref, op, lv, rv)
}

func (e *Evaluator) applyBinary(ref ast.ExprRef, op ast.BinaryOp, lv, rv *Object) (*Result, *diag.Diagnostic) {
	switch op {
	case ast.OpAdd:
		if (lv.Kind == KindString || lv.Kind == KindConstString) && (rv.Kind == KindString || rv.Kind == KindConstString) {
			return valueResult(NewString(lv.AsString() + rv.AsString())), nil
		}
		return e.intArith(ref, op, lv, rv)
	case ast.OpSub, ast.OpMul, ast.OpDiv:
		return e.intArith(ref, op, lv, rv)
	case ast.OpEq:
		return valueResult(NewBool(e.objectsEqual(lv, rv))), nil
	case ast.OpNeq:
		return valueResult(NewBool(!e.objectsEqual(lv, rv))), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return e.compareInts(ref, op, lv, rv)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		return e.bitwise(ref, op, lv, rv)
	case ast.OpShl, ast.OpShr:
		return e.shift(ref, op, lv, rv)
	}
	return nil, e.runtimeErr(ref, "unsupported binary operator")
}

// intArith implements checked integer arithmetic: overflow and
// division/remainder by zero are runtime errors rather than wrapping or
// crashing the host process.
func (e *Evaluator) intArith(ref ast.ExprRef, op ast.BinaryOp, lv, rv *Object) (*Result, *diag.Diagnostic) {
	switch lv.Kind {
	case KindInt64:
		a, b := lv.Int64Val, rv.Int64Val
		switch op {
		case ast.OpAdd:
			r := a + b
			if (b > 0 && r < a) || (b < 0 && r > a) {
				return nil, e.runtimeErr(ref, "integer overflow in i64 addition")
			}
			return valueResult(NewInt64(r)), nil
		case ast.OpSub:
			r := a - b
			if (b < 0 && r < a) || (b > 0 && r > a) {
				return nil, e.runtimeErr(ref, "integer overflow in i64 subtraction")
			}
			return valueResult(NewInt64(r)), nil
		case ast.OpMul:
			r := a * b
			if a != 0 && r/a != b {
				return nil, e.runtimeErr(ref, "integer overflow in i64 multiplication")
			}
			return valueResult(NewInt64(r)), nil
		case ast.OpDiv:
			if b == 0 {
				return nil, e.runtimeErr(ref, "division by zero")
			}
			return valueResult(NewInt64(a / b)), nil
		}
	case KindUInt64:
		a, b := lv.UInt64Val, rv.UInt64Val
		switch op {
		case ast.OpAdd:
			r := a + b
			if r < a {
				return nil, e.runtimeErr(ref, "integer overflow in u64 addition")
			}
			return valueResult(NewUInt64(r)), nil
		case ast.OpSub:
			if b > a {
				return nil, e.runtimeErr(ref, "integer overflow in u64 subtraction")
			}
			return valueResult(NewUInt64(a - b)), nil
		case ast.OpMul:
			r := a * b
			if a != 0 && r/a != b {
				return nil, e.runtimeErr(ref, "integer overflow in u64 multiplication")
			}
			return valueResult(NewUInt64(r)), nil
		case ast.OpDiv:
			if b == 0 {
				return nil, e.runtimeErr(ref, "division by zero")
			}
			return valueResult(NewUInt64(a / b)), nil
		}
	}
	return nil, e.runtimeErr(ref, "arithmetic requires matching integer operands")
}

func (e *Evaluator) compareInts(ref ast.ExprRef, op ast.BinaryOp, lv, rv *Object) (*Result, *diag.Diagnostic) {
	var cmp int
	switch lv.Kind {
	case KindInt64:
		switch {
		case lv.Int64Val < rv.Int64Val:
			cmp = -1
		case lv.Int64Val > rv.Int64Val:
			cmp = 1
		}
	case KindUInt64:
		switch {
		case lv.UInt64Val < rv.UInt64Val:
			cmp = -1
		case lv.UInt64Val > rv.UInt64Val:
			cmp = 1
		}
	default:
		return nil, e.runtimeErr(ref, "relational comparison requires integer operands")
	}
	switch op {
	case ast.OpLt:
		return valueResult(NewBool(cmp < 0)), nil
	case ast.OpLe:
		return valueResult(NewBool(cmp <= 0)), nil
	case ast.OpGt:
		return valueResult(NewBool(cmp > 0)), nil
	case ast.OpGe:
		return valueResult(NewBool(cmp >= 0)), nil
	}
	return nil, e.runtimeErr(ref, "unsupported relational operator")
}

func (e *Evaluator) bitwise(ref ast.ExprRef, op ast.BinaryOp, lv, rv *Object) (*Result, *diag.Diagnostic) {
	switch lv.Kind {
	case KindInt64:
		a, b := lv.Int64Val, rv.Int64Val
		switch op {
		case ast.OpBitAnd:
			return valueResult(NewInt64(a & b)), nil
		case ast.OpBitOr:
			return valueResult(NewInt64(a | b)), nil
		case ast.OpBitXor:
			return valueResult(NewInt64(a ^ b)), nil
		}
	case KindUInt64:
		a, b := lv.UInt64Val, rv.UInt64Val
		switch op {
		case ast.OpBitAnd:
			return valueResult(NewUInt64(a & b)), nil
		case ast.OpBitOr:
			return valueResult(NewUInt64(a | b)), nil
		case ast.OpBitXor:
			return valueResult(NewUInt64(a ^ b)), nil
		}
	}
	return nil, e.runtimeErr(ref, "bitwise operator requires matching integer operands")
}

func (e *Evaluator) shift(ref ast.ExprRef, op ast.BinaryOp, lv, rv *Object) (*Result, *diag.Diagnostic) {
	if rv.Kind != KindUInt64 {
		return nil, e.runtimeErr(ref, "shift amount must be u64")
	}
	n := rv.UInt64Val
	switch lv.Kind {
	case KindInt64:
		if op == ast.OpShl {
			return valueResult(NewInt64(lv.Int64Val << n)), nil
		}
		return valueResult(NewInt64(lv.Int64Val >> n)), nil
	case KindUInt64:
		if op == ast.OpShl {
			return valueResult(NewUInt64(lv.UInt64Val << n)), nil
		}
		return valueResult(NewUInt64(lv.UInt64Val >> n)), nil
	}
	return nil, e.runtimeErr(ref, "shift left operand must be an integer")
}

// objectsEqual implements ==/!= for every comparable runtime kind,
// including cross-variant String/ConstString comparison: the two share
// one text representation, so they compare equal by text regardless of
// which variant each side holds.
func (e *Evaluator) objectsEqual(lv, rv *Object) bool {
	isStr := func(o *Object) bool { return o.Kind == KindString || o.Kind == KindConstString }
	if isStr(lv) && isStr(rv) {
		return lv.AsString() == rv.AsString()
	}
	if lv.Kind != rv.Kind {
		return false
	}
	switch lv.Kind {
	case KindBool:
		return lv.BoolVal == rv.BoolVal
	case KindInt64:
		return lv.Int64Val == rv.Int64Val
	case KindUInt64:
		return lv.UInt64Val == rv.UInt64Val
	case KindPointer:
		return lv.PtrVal == rv.PtrVal
	case KindUnit:
		return true
	case KindNull:
		return true
	}
	return lv == rv
}

// evalMethodCall handles both a user/operator-overload method call and a
// fixed-signature builtin method call, in the same priority order as
// checker.checkMethodCall: the receiver's own method first, then the
// builtin method registry (also covering the universal `is_null` pseudo
// method).
func (e *Evaluator) evalMethodCall(ref ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	recvRef := e.prog.Exprs.Lhs(ref)
	argRefs := e.prog.Exprs.ExprListVal(ref)

	rv, unwind, err := e.evalOperand(recvRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	if e.prog.Exprs.Kind(ref) == ast.ExprBuiltinMethodCall {
		return e.evalBuiltinMethod(ref, e.prog.Exprs.BuiltinMethodVal(ref), rv, argRefs, env)
	}

	method := e.prog.Exprs.SymbolVal(ref)
	methodName := e.intern.Resolve(method)

	if rv.Kind == KindStruct {
		if fn, ok := e.methods[rv.StructName][method]; ok {
			args, unwind, err := e.evalArgs(argRefs, env)
			if err != nil {
				return nil, err
			}
			if unwind != nil {
				return unwind, nil
			}
			val, cerr := e.callMethod(fn, rv, args)
			if cerr != nil {
				return nil, cerr
			}
			return valueResult(val), nil
		}
	}
	if bm, ok := resolveBuiltinMethodKind(methodName, rv.Kind); ok {
		return e.evalBuiltinMethod(ref, bm, rv, argRefs, env)
	}
	return nil, e.runtimeErr(ref, "no method %q on this value", methodName)
}
