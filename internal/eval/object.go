package eval

import (
	"fmt"

	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// Kind discriminates the runtime value variants an Object can hold.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt64
	KindUInt64
	KindConstString // interned, never mutated in place
	KindString      // owned text, mutable through var rebinding
	KindArray
	KindStruct
	KindDict
	KindTuple
	KindPointer
	KindNull
	KindUnit
)

// Object is toylang's runtime value: one tagged struct carrying a
// RefCount, rather than a closed Go interface hierarchy, so containers
// can hold shared references uniformly. Which fields are meaningful
// depends on Kind.
type Object struct {
	Kind     Kind
	RefCount int

	BoolVal   bool
	Int64Val  int64
	UInt64Val uint64
	Sym       symbols.Symbol // ConstString
	Str       string         // String
	PtrVal    uint64         // Pointer

	Elems []*Object // Array, Tuple

	StructName symbols.Symbol
	Fields     map[symbols.Symbol]*Object // Struct

	DictKeys []ObjectKey
	DictVals map[ObjectKey]*Object

	NullTy types.TypeDecl // Null

	// Destroyed guards against a double __drop__ invocation if the same
	// Object is reachable through more than one container at the moment
	// its count hits zero.
	Destroyed bool
}

// ObjectKey is the closed set of hashable scalar kinds a Dict key may be:
// Bool, Int64, UInt64, ConstString, and String. Comparable so it can key
// a Go map directly.
type ObjectKey struct {
	kind Kind
	bits uint64
	text string
}

// NewObjectKey converts a runtime Object into a Dict key, or reports ok=false
// when obj's kind is not one of the hashable scalars.
func NewObjectKey(obj *Object) (ObjectKey, bool) {
	switch obj.Kind {
	case KindBool:
		v := uint64(0)
		if obj.BoolVal {
			v = 1
		}
		return ObjectKey{kind: KindBool, bits: v}, true
	case KindInt64:
		return ObjectKey{kind: KindInt64, bits: uint64(obj.Int64Val)}, true
	case KindUInt64:
		return ObjectKey{kind: KindUInt64, bits: obj.UInt64Val}, true
	case KindConstString:
		return ObjectKey{kind: KindConstString, text: obj.Str}, true
	case KindString:
		return ObjectKey{kind: KindString, text: obj.Str}, true
	default:
		return ObjectKey{}, false
	}
}

// toObject reconstructs a fresh runtime Object from a Dict key, for
// `keys()`. The rebuilt object carries no symbol identity for
// ConstString keys since only their text is ever compared or printed.
func (k ObjectKey) toObject() *Object {
	switch k.kind {
	case KindBool:
		return NewBool(k.bits != 0)
	case KindInt64:
		return NewInt64(int64(k.bits))
	case KindUInt64:
		return NewUInt64(k.bits)
	case KindConstString:
		return NewConstString(symbols.Invalid, k.text)
	case KindString:
		return NewString(k.text)
	default:
		return NewUnit()
	}
}

// Every constructor below starts RefCount at zero: the value has no owner
// until it is actually stored somewhere (an Environment binding, a
// container element, a struct field), at which point the storing code
// calls RefCounter.Retain. A value that is only ever used as an
// intermediate expression result and never stored is simply left at zero
// and never reaches a destructor, without requiring the tree-walker to
// track ephemeral temporaries explicitly.
func NewBool(v bool) *Object     { return &Object{Kind: KindBool, BoolVal: v} }
func NewInt64(v int64) *Object   { return &Object{Kind: KindInt64, Int64Val: v} }
func NewUInt64(v uint64) *Object { return &Object{Kind: KindUInt64, UInt64Val: v} }

// NewConstString wraps an interned string literal. text is resolved once
// at creation time so Object itself never needs interner access.
func NewConstString(sym symbols.Symbol, text string) *Object {
	return &Object{Kind: KindConstString, Sym: sym, Str: text}
}
func NewString(s string) *Object  { return &Object{Kind: KindString, Str: s} }
func NewPointer(p uint64) *Object { return &Object{Kind: KindPointer, PtrVal: p} }
func NewUnit() *Object            { return &Object{Kind: KindUnit} }
func NewNull(ty types.TypeDecl) *Object {
	return &Object{Kind: KindNull, NullTy: ty}
}
func NewArray(elems []*Object) *Object {
	return &Object{Kind: KindArray, Elems: elems}
}
func NewTuple(elems []*Object) *Object {
	return &Object{Kind: KindTuple, Elems: elems}
}
func NewStruct(name symbols.Symbol, fields map[symbols.Symbol]*Object) *Object {
	return &Object{Kind: KindStruct, StructName: name, Fields: fields}
}
func NewDict() *Object {
	return &Object{Kind: KindDict, DictVals: make(map[ObjectKey]*Object)}
}

// IsTruthy implements the evaluator's condition check for if/while;
// called only on values already type-checked as Bool.
func (o *Object) IsTruthy() bool { return o.Kind == KindBool && o.BoolVal }

// AsString unwraps both string variants for builtin string methods and
// `+` concatenation.
func (o *Object) AsString() string { return o.Str }

func (o *Object) String() string {
	switch o.Kind {
	case KindBool:
		return fmt.Sprintf("%t", o.BoolVal)
	case KindInt64:
		return fmt.Sprintf("%d", o.Int64Val)
	case KindUInt64:
		return fmt.Sprintf("%d", o.UInt64Val)
	case KindString, KindConstString:
		return o.Str
	case KindPointer:
		return fmt.Sprintf("ptr(%d)", o.PtrVal)
	case KindNull:
		return "null"
	case KindUnit:
		return "()"
	default:
		return fmt.Sprintf("<%T>", o)
	}
}
