package eval

import (
	"strings"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
)

// resolveBuiltinMethodKind is checkBuiltinMethod's runtime-Kind-keyed
// counterpart (internal/checker/structs.go), used when a method call's
// receiver isn't a struct with its own matching method.
func resolveBuiltinMethodKind(name string, recv Kind) (ast.BuiltinMethod, bool) {
	if name == "is_null" {
		return ast.MethodIsNull, true
	}
	switch name {
	case "len":
		switch recv {
		case KindString, KindConstString:
			return ast.MethodStringLen, true
		case KindArray:
			return ast.MethodArrayLen, true
		case KindDict:
			return ast.MethodDictLen, true
		}
	case "concat":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringConcat, true
		}
	case "substring":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringSubstring, true
		}
	case "split":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringSplit, true
		}
	case "to_upper":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringToUpper, true
		}
	case "to_lower":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringToLower, true
		}
	case "trim":
		if recv == KindString || recv == KindConstString {
			return ast.MethodStringTrim, true
		}
	case "push":
		if recv == KindArray {
			return ast.MethodArrayPush, true
		}
	case "pop":
		if recv == KindArray {
			return ast.MethodArrayPop, true
		}
	case "keys":
		if recv == KindDict {
			return ast.MethodDictKeys, true
		}
	case "values":
		if recv == KindDict {
			return ast.MethodDictValues, true
		}
	case "contains":
		if recv == KindDict {
			return ast.MethodDictContains, true
		}
	}
	return 0, false
}

// evalBuiltinMethod runs one of the fixed-signature builtin methods,
// mirroring checkBuiltinMethod's dispatch (internal/checker/structs.go)
// at the Object level rather than the type level.
func (e *Evaluator) evalBuiltinMethod(ref ast.ExprRef, m ast.BuiltinMethod, recv *Object, argRefs []ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	args, unwind, err := e.evalArgs(argRefs, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch m {
	case ast.MethodIsNull:
		return valueResult(NewBool(recv.Kind == KindNull)), nil
	case ast.MethodStringLen:
		return valueResult(NewUInt64(uint64(len([]rune(recv.AsString()))))), nil
	case ast.MethodStringConcat:
		return valueResult(NewString(recv.AsString() + args[0].AsString())), nil
	case ast.MethodStringSubstring:
		runes := []rune(recv.AsString())
		start := int(args[0].UInt64Val)
		n := int(args[1].UInt64Val)
		if start < 0 || start+n > len(runes) {
			return nil, e.runtimeErr(ref, "substring bounds out of range")
		}
		return valueResult(NewString(string(runes[start : start+n]))), nil
	case ast.MethodStringSplit:
		parts := strings.Split(recv.AsString(), args[0].AsString())
		elems := make([]*Object, len(parts))
		for i, p := range parts {
			elems[i] = e.refc.Retain(NewString(p))
		}
		return valueResult(NewArray(elems)), nil
	case ast.MethodStringToUpper:
		return valueResult(NewString(strings.ToUpper(recv.AsString()))), nil
	case ast.MethodStringToLower:
		return valueResult(NewString(strings.ToLower(recv.AsString()))), nil
	case ast.MethodStringTrim:
		return valueResult(NewString(strings.TrimSpace(recv.AsString()))), nil
	case ast.MethodArrayLen:
		return valueResult(NewUInt64(uint64(len(recv.Elems)))), nil
	case ast.MethodArrayPush:
		recv.Elems = append(recv.Elems, e.refc.Retain(args[0]))
		return valueResult(NewUnit()), nil
	case ast.MethodArrayPop:
		if len(recv.Elems) == 0 {
			return nil, e.runtimeErr(ref, "'pop' on an empty array")
		}
		last := recv.Elems[len(recv.Elems)-1]
		recv.Elems = recv.Elems[:len(recv.Elems)-1]
		return valueResult(last), nil
	case ast.MethodDictLen:
		return valueResult(NewUInt64(uint64(len(recv.DictVals)))), nil
	case ast.MethodDictKeys:
		elems := make([]*Object, len(recv.DictKeys))
		for i, k := range recv.DictKeys {
			elems[i] = e.refc.Retain(k.toObject())
		}
		return valueResult(NewArray(elems)), nil
	case ast.MethodDictValues:
		elems := make([]*Object, len(recv.DictKeys))
		for i, k := range recv.DictKeys {
			elems[i] = e.refc.Retain(recv.DictVals[k])
		}
		return valueResult(NewArray(elems)), nil
	case ast.MethodDictContains:
		key, ok := NewObjectKey(args[0])
		if !ok {
			return nil, e.runtimeErr(ref, "dict key must be a hashable scalar")
		}
		_, present := recv.DictVals[key]
		return valueResult(NewBool(present)), nil
	}
	return nil, e.runtimeErr(ref, "unrecognized builtin method")
}

// evalBuiltinCall runs one of the __builtin_* memory intrinsics,
// forwarding to the Heap collaborator. FakeHeap panics on
// misuse (double free, out-of-bounds, use-after-free); recoverPanic turns
// that into an ordinary runtime diagnostic instead of crashing the whole
// evaluator, since a toylang program triggering it is a guest-program bug,
// not a host one.
func (e *Evaluator) evalBuiltinCall(ref ast.ExprRef, env *Environment) (res *Result, derr *diag.Diagnostic) {
	fn := e.prog.Exprs.BuiltinFunctionVal(ref)
	argRefs := e.prog.Exprs.ExprListVal(ref)

	args, unwind, err := e.evalArgs(argRefs, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	defer func() {
		if r := recover(); r != nil {
			res, derr = nil, e.runtimeErr(ref, "%v", r)
		}
	}()

	switch fn {
	case ast.BuiltinHeapAlloc:
		return valueResult(NewPointer(e.heap.Alloc(args[0].UInt64Val))), nil
	case ast.BuiltinHeapFree:
		e.heap.Free(args[0].PtrVal)
		return valueResult(NewUnit()), nil
	case ast.BuiltinHeapRealloc:
		return valueResult(NewPointer(e.heap.Realloc(args[0].PtrVal, args[1].UInt64Val))), nil
	case ast.BuiltinPtrRead:
		return valueResult(NewUInt64(e.heap.Read(args[0].PtrVal, 0))), nil
	case ast.BuiltinPtrWrite:
		e.heap.Write(args[0].PtrVal, 0, args[1].UInt64Val)
		return valueResult(NewUnit()), nil
	case ast.BuiltinPtrIsNull:
		return valueResult(NewBool(e.heap.IsNull(args[0].PtrVal))), nil
	case ast.BuiltinMemCopy:
		e.heap.Copy(args[0].PtrVal, args[1].PtrVal, args[2].UInt64Val)
		return valueResult(NewUnit()), nil
	case ast.BuiltinMemMove:
		e.heap.Move(args[0].PtrVal, args[1].PtrVal, args[2].UInt64Val)
		return valueResult(NewUnit()), nil
	case ast.BuiltinMemSet:
		e.heap.Set(args[0].PtrVal, byte(args[1].UInt64Val), args[2].UInt64Val)
		return valueResult(NewUnit()), nil
	}
	return nil, e.runtimeErr(ref, "unrecognized builtin function")
}
