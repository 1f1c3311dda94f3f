package ast

import "github.com/toylang/toylang/internal/symbols"

// ExprPool is the structure-of-arrays store for every expression node in a
// Program. Exactly which fields are populated at index i is determined by
// kinds[i]; all other fields at i hold their zero value. This mirrors
// ExprPool in _examples/original_source/frontend/src/ast.rs field for
// field, with Rust's Vec<Option<T>> collapsed to a plain Go slice (the
// zero value doubles as "absent" for every field type used here).
type ExprPool struct {
	kinds []ExprKind

	lhs      []ExprRef
	rhs      []ExprRef
	operand  []ExprRef
	operator []BinaryOp
	unaryOp  []UnaryOp

	int64Val  []int64
	uint64Val []uint64
	symbolVal []symbols.Symbol
	boolVal   []bool

	exprList   [][]ExprRef
	stmtList   [][]StmtRef
	symbolList [][]symbols.Symbol
	fieldList  [][]StructFieldInit
	entryList  [][]DictEntry
	elifList   [][]ElifArm

	builtinMethod   []BuiltinMethod
	builtinFunction []BuiltinFunction
	indexVal        []int
	thirdOperand    []ExprRef
}

// NewExprPool creates an ExprPool with its reserved zero slot already
// occupied, so a zero ExprRef is never a valid node (it is NoExpr).
func NewExprPool() *ExprPool {
	p := &ExprPool{}
	p.grow(1)
	return p
}

func (p *ExprPool) grow(n int) {
	p.kinds = append(p.kinds, make([]ExprKind, n)...)
	p.lhs = append(p.lhs, make([]ExprRef, n)...)
	p.rhs = append(p.rhs, make([]ExprRef, n)...)
	p.operand = append(p.operand, make([]ExprRef, n)...)
	p.operator = append(p.operator, make([]BinaryOp, n)...)
	p.unaryOp = append(p.unaryOp, make([]UnaryOp, n)...)
	p.int64Val = append(p.int64Val, make([]int64, n)...)
	p.uint64Val = append(p.uint64Val, make([]uint64, n)...)
	p.symbolVal = append(p.symbolVal, make([]symbols.Symbol, n)...)
	p.boolVal = append(p.boolVal, make([]bool, n)...)
	p.exprList = append(p.exprList, make([][]ExprRef, n)...)
	p.stmtList = append(p.stmtList, make([][]StmtRef, n)...)
	p.symbolList = append(p.symbolList, make([][]symbols.Symbol, n)...)
	p.fieldList = append(p.fieldList, make([][]StructFieldInit, n)...)
	p.entryList = append(p.entryList, make([][]DictEntry, n)...)
	p.elifList = append(p.elifList, make([][]ElifArm, n)...)
	p.builtinMethod = append(p.builtinMethod, make([]BuiltinMethod, n)...)
	p.builtinFunction = append(p.builtinFunction, make([]BuiltinFunction, n)...)
	p.indexVal = append(p.indexVal, make([]int, n)...)
	p.thirdOperand = append(p.thirdOperand, make([]ExprRef, n)...)
}

// clearSlot resets every side-array at index to its zero value, the
// first half of the in-place Update contract: clear, then write only
// the fields the new kind actually uses.
func (p *ExprPool) clearSlot(index int) {
	p.lhs[index] = NoExpr
	p.rhs[index] = NoExpr
	p.operand[index] = NoExpr
	p.operator[index] = 0
	p.unaryOp[index] = 0
	p.int64Val[index] = 0
	p.uint64Val[index] = 0
	p.symbolVal[index] = symbols.Invalid
	p.boolVal[index] = false
	p.exprList[index] = nil
	p.stmtList[index] = nil
	p.symbolList[index] = nil
	p.fieldList[index] = nil
	p.entryList[index] = nil
	p.elifList[index] = nil
	p.builtinMethod[index] = 0
	p.builtinFunction[index] = 0
	p.indexVal[index] = 0
	p.thirdOperand[index] = NoExpr
}

func (p *ExprPool) alloc() ExprRef {
	index := len(p.kinds)
	p.grow(1)
	return ExprRef(index)
}

// Kind returns the ExprKind stored at ref.
func (p *ExprPool) Kind(ref ExprRef) ExprKind { return p.kinds[ref] }

// Len reports how many expression nodes have been allocated, including
// the reserved NoExpr slot.
func (p *ExprPool) Len() int { return len(p.kinds) }

// --- constructors, one per ExprKind -----------------------------------

func (p *ExprPool) AddInt64(v int64) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprInt64
	p.int64Val[r] = v
	return r
}

func (p *ExprPool) AddUInt64(v uint64) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprUInt64
	p.uint64Val[r] = v
	return r
}

func (p *ExprPool) AddNumber(text symbols.Symbol) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprNumber
	p.symbolVal[r] = text
	return r
}

func (p *ExprPool) AddString(sym symbols.Symbol) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprString
	p.symbolVal[r] = sym
	return r
}

func (p *ExprPool) AddBool(v bool) ExprRef {
	r := p.alloc()
	if v {
		p.kinds[r] = ExprTrue
	} else {
		p.kinds[r] = ExprFalse
	}
	return r
}

func (p *ExprPool) AddNull() ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprNull
	return r
}

func (p *ExprPool) AddIdentifier(sym symbols.Symbol) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprIdentifier
	p.symbolVal[r] = sym
	return r
}

func (p *ExprPool) AddQualifiedIdentifier(path []symbols.Symbol) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprQualifiedIdentifier
	p.symbolList[r] = path
	return r
}

func (p *ExprPool) AddAssign(lhs, rhs ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprAssign
	p.lhs[r] = lhs
	p.rhs[r] = rhs
	return r
}

func (p *ExprPool) AddBinary(op BinaryOp, lhs, rhs ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprBinary
	p.operator[r] = op
	p.lhs[r] = lhs
	p.rhs[r] = rhs
	return r
}

func (p *ExprPool) AddUnary(op UnaryOp, operand ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprUnary
	p.unaryOp[r] = op
	p.operand[r] = operand
	return r
}

func (p *ExprPool) AddBlock(stmts []StmtRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprBlock
	p.stmtList[r] = stmts
	return r
}

func (p *ExprPool) AddIfElifElse(cond, then ExprRef, elifs []ElifArm, els ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprIfElifElse
	p.lhs[r] = cond
	p.rhs[r] = then
	p.elifList[r] = elifs
	p.thirdOperand[r] = els
	return r
}

func (p *ExprPool) AddCall(name symbols.Symbol, args []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprCall
	p.symbolVal[r] = name
	p.exprList[r] = args
	return r
}

func (p *ExprPool) AddExprList(exprs []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprExprList
	p.exprList[r] = exprs
	return r
}

func (p *ExprPool) AddArrayLiteral(elems []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprArrayLiteral
	p.exprList[r] = elems
	return r
}

func (p *ExprPool) AddDictLiteral(entries []DictEntry) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprDictLiteral
	p.entryList[r] = entries
	return r
}

func (p *ExprPool) AddTupleLiteral(elems []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprTupleLiteral
	p.exprList[r] = elems
	return r
}

func (p *ExprPool) AddTupleAccess(tuple ExprRef, index int) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprTupleAccess
	p.lhs[r] = tuple
	p.indexVal[r] = index
	return r
}

func (p *ExprPool) AddFieldAccess(obj ExprRef, field symbols.Symbol) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprFieldAccess
	p.lhs[r] = obj
	p.symbolVal[r] = field
	return r
}

func (p *ExprPool) AddMethodCall(obj ExprRef, method symbols.Symbol, args []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprMethodCall
	p.lhs[r] = obj
	p.symbolVal[r] = method
	p.exprList[r] = args
	return r
}

func (p *ExprPool) AddStructLiteral(name symbols.Symbol, fields []StructFieldInit) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprStructLiteral
	p.symbolVal[r] = name
	p.fieldList[r] = fields
	return r
}

func (p *ExprPool) AddIndexAccess(obj, idx ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprIndexAccess
	p.lhs[r] = obj
	p.rhs[r] = idx
	return r
}

func (p *ExprPool) AddIndexAssign(obj, idx, val ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprIndexAssign
	p.lhs[r] = obj
	p.rhs[r] = idx
	p.thirdOperand[r] = val
	return r
}

// AddSliceAccess records a slice expression; start/end are NoExpr when
// that side of the range was omitted.
func (p *ExprPool) AddSliceAccess(obj, start, end ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprSliceAccess
	p.lhs[r] = obj
	p.rhs[r] = start
	p.thirdOperand[r] = end
	return r
}

func (p *ExprPool) AddBuiltinCall(fn BuiltinFunction, args []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprBuiltinCall
	p.builtinFunction[r] = fn
	p.exprList[r] = args
	return r
}

func (p *ExprPool) AddBuiltinMethodCall(recv ExprRef, method BuiltinMethod, args []ExprRef) ExprRef {
	r := p.alloc()
	p.kinds[r] = ExprBuiltinMethodCall
	p.lhs[r] = recv
	p.builtinMethod[r] = method
	p.exprList[r] = args
	return r
}

// --- accessors ----------------------------------------------------------
// Each accessor assumes the caller already checked Kind(ref); reading the
// wrong field for a kind just returns that field's zero value rather than
// panicking, matching the "well-defined set of populated side-arrays"
// invariant without forcing every caller through an Option.

func (p *ExprPool) Lhs(ref ExprRef) ExprRef             { return p.lhs[ref] }
func (p *ExprPool) Rhs(ref ExprRef) ExprRef             { return p.rhs[ref] }
func (p *ExprPool) Operand(ref ExprRef) ExprRef         { return p.operand[ref] }
func (p *ExprPool) Operator(ref ExprRef) BinaryOp       { return p.operator[ref] }
func (p *ExprPool) UnaryOperator(ref ExprRef) UnaryOp   { return p.unaryOp[ref] }
func (p *ExprPool) Int64Val(ref ExprRef) int64          { return p.int64Val[ref] }
func (p *ExprPool) UInt64Val(ref ExprRef) uint64        { return p.uint64Val[ref] }
func (p *ExprPool) SymbolVal(ref ExprRef) symbols.Symbol { return p.symbolVal[ref] }
func (p *ExprPool) BoolVal(ref ExprRef) bool            { return p.boolVal[ref] }
func (p *ExprPool) ExprListVal(ref ExprRef) []ExprRef   { return p.exprList[ref] }
func (p *ExprPool) StmtListVal(ref ExprRef) []StmtRef   { return p.stmtList[ref] }
func (p *ExprPool) SymbolListVal(ref ExprRef) []symbols.Symbol { return p.symbolList[ref] }
func (p *ExprPool) FieldListVal(ref ExprRef) []StructFieldInit { return p.fieldList[ref] }
func (p *ExprPool) EntryListVal(ref ExprRef) []DictEntry { return p.entryList[ref] }
func (p *ExprPool) ElifListVal(ref ExprRef) []ElifArm    { return p.elifList[ref] }
func (p *ExprPool) BuiltinMethodVal(ref ExprRef) BuiltinMethod { return p.builtinMethod[ref] }
func (p *ExprPool) BuiltinFunctionVal(ref ExprRef) BuiltinFunction { return p.builtinFunction[ref] }
func (p *ExprPool) IndexVal(ref ExprRef) int             { return p.indexVal[ref] }
func (p *ExprPool) ThirdOperand(ref ExprRef) ExprRef     { return p.thirdOperand[ref] }

// --- in-place mutation ---------------------------------------------------

// UpdateToInt64 rewrites the node at ref from Number to a concrete Int64
// literal, in place, per "In-place update" invariant: the
// index is unchanged, every other side-array slot is cleared first, and
// only the discriminator and the int64Val field are written.
func (p *ExprPool) UpdateToInt64(ref ExprRef, v int64) {
	p.clearSlot(int(ref))
	p.kinds[ref] = ExprInt64
	p.int64Val[ref] = v
}

// UpdateToUInt64 is UpdateToInt64's unsigned counterpart.
func (p *ExprPool) UpdateToUInt64(ref ExprRef, v uint64) {
	p.clearSlot(int(ref))
	p.kinds[ref] = ExprUInt64
	p.uint64Val[ref] = v
}
