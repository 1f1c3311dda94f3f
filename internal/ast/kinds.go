// Package ast implements toylang's pooled AST: two append-only,
// structure-of-arrays pools (one for expressions, one for statements)
// addressed by 32-bit ExprRef/StmtRef indices, plus a parallel
// LocationPool. Each node kind's fields live in their own side-array
// rather than behind a tagged-union struct, the standard Go idiom for a
// flat, cache-friendly pool over a fixed set of variants.
package ast

import (
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// ExprRef is a stable index into a Program's ExprPool. Once handed out by
// Pool.Add, a ref's index never changes.
type ExprRef uint32

// StmtRef is the statement-pool equivalent of ExprRef.
type StmtRef uint32

// NoExpr/NoStmt are sentinel "absent" refs, used for optional fields such
// as an IfElifElse with no else block. Index 0 is never handed out by
// Add (the pools are pre-seeded with one placeholder slot) so it safely
// doubles as "none".
const (
	NoExpr ExprRef = 0
	NoStmt StmtRef = 0
)

// ExprKind discriminates which ExprPool side-arrays are meaningful for a
// given index, one entry per "Expression kinds".
type ExprKind uint8

const (
	ExprInt64 ExprKind = iota
	ExprUInt64
	ExprNumber // untyped integer literal, symbol holds its decimal text
	ExprString
	ExprTrue
	ExprFalse
	ExprNull
	ExprIdentifier
	ExprQualifiedIdentifier
	ExprAssign
	ExprBinary
	ExprUnary
	ExprBlock
	ExprIfElifElse
	ExprCall
	ExprExprList
	ExprArrayLiteral
	ExprDictLiteral
	ExprTupleLiteral
	ExprTupleAccess
	ExprFieldAccess
	ExprMethodCall
	ExprStructLiteral
	ExprIndexAccess
	ExprIndexAssign
	ExprSliceAccess
	ExprBuiltinCall
	ExprBuiltinMethodCall
)

var exprKindNames = [...]string{
	"Int64", "UInt64", "Number", "String", "True", "False", "Null",
	"Identifier", "QualifiedIdentifier", "Assign", "Binary", "Unary",
	"Block", "IfElifElse", "Call", "ExprList", "ArrayLiteral",
	"DictLiteral", "TupleLiteral", "TupleAccess", "FieldAccess",
	"MethodCall", "StructLiteral", "IndexAccess", "IndexAssign",
	"SliceAccess", "BuiltinCall", "BuiltinMethodCall",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// StmtKind discriminates StmtPool side-arrays, one per statement kind
// the grammar produces.
type StmtKind uint8

const (
	StmtExpression StmtKind = iota
	StmtVal
	StmtVar
	StmtReturn
	StmtBreak
	StmtContinue
	StmtFor
	StmtWhile
	StmtStructDecl
	StmtImplBlock
)

var stmtKindNames = [...]string{
	"Expression", "Val", "Var", "Return", "Break", "Continue",
	"For", "While", "StructDecl", "ImplBlock",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Unknown"
}

// BinaryOp enumerates the binary operators the parser and checker share.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

var binaryOpSymbols = [...]string{
	"+", "-", "*", "/", "==", "!=", "<", "<=", ">", ">=",
	"&&", "||", "&", "|", "^", "<<", ">>",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpSymbols) {
		return binaryOpSymbols[op]
	}
	return "?"
}

// UnaryOp enumerates the unary operators: bitwise-not and logical-not.
type UnaryOp uint8

const (
	OpBitNot UnaryOp = iota
	OpNot
)

var unaryOpSymbols = [...]string{"~", "!"}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOpSymbols) {
		return unaryOpSymbols[op]
	}
	return "?"
}

// Visibility is carried by function, struct, and impl-block declarations.
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// BuiltinFunction enumerates the __builtin_* memory intrinsics over the
// fake heap.
type BuiltinFunction uint8

const (
	BuiltinHeapAlloc BuiltinFunction = iota
	BuiltinHeapFree
	BuiltinHeapRealloc
	BuiltinPtrRead
	BuiltinPtrWrite
	BuiltinPtrIsNull
	BuiltinMemCopy
	BuiltinMemMove
	BuiltinMemSet
)

var builtinFunctionNames = [...]string{
	"heap_alloc", "heap_free", "heap_realloc", "ptr_read", "ptr_write",
	"ptr_is_null", "mem_copy", "mem_move", "mem_set",
}

func (fn BuiltinFunction) String() string {
	if int(fn) < len(builtinFunctionNames) {
		return builtinFunctionNames[fn]
	}
	return "unknown"
}

// BuiltinMethod enumerates the fixed-signature builtin methods callable
// on array/dict/string/pointer receivers, e.g. `.len()`, `.keys()`.
type BuiltinMethod uint8

const (
	MethodIsNull BuiltinMethod = iota
	MethodStringLen
	MethodStringConcat
	MethodStringSubstring
	MethodStringSplit
	MethodStringToUpper
	MethodStringToLower
	MethodStringTrim
	MethodArrayLen
	MethodArrayPush
	MethodArrayPop
	MethodDictLen
	MethodDictKeys
	MethodDictValues
	MethodDictContains
)

var builtinMethodNames = [...]string{
	"is_null", "len", "concat", "substring", "split", "to_upper",
	"to_lower", "trim", "len", "push", "pop", "len", "keys", "values",
	"contains",
}

func (m BuiltinMethod) String() string {
	if int(m) < len(builtinMethodNames) {
		return builtinMethodNames[m]
	}
	return "unknown"
}

// StructFieldInit is one `name: expr` entry of a StructLiteral.
type StructFieldInit struct {
	Name symbols.Symbol
	Expr ExprRef
}

// DictEntry is one `key: value` pair of a DictLiteral.
type DictEntry struct {
	Key ExprRef
	Val ExprRef
}

// ElifArm is one `elif cond { block }` arm of an IfElifElse.
type ElifArm struct {
	Cond  ExprRef
	Block ExprRef
}

// StructField is one declared field of a StructDecl statement. Type is the
// syntactic type written in source (possibly a bare IdentifierKind or
// GenericKind the checker has not yet resolved to a StructKind).
type StructField struct {
	Name       symbols.Symbol
	Type       types.TypeDecl
	Visibility Visibility
}
