package ast

import (
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// StmtPool is the StmtRef-addressed structure-of-arrays counterpart to
// ExprPool, mirroring StmtPool in
// _examples/original_source/frontend/src/ast.rs.
type StmtPool struct {
	kinds []StmtKind

	exprVal   []ExprRef
	symbolVal []symbols.Symbol
	typeDecl  []*types.TypeDecl // nil means "no declared type" (inferred)
	hasType   []bool

	condition []ExprRef
	startExpr []ExprRef
	endExpr   []ExprRef
	blockExpr []ExprRef

	structName   []symbols.Symbol
	structFields [][]StructField
	genericParams [][]symbols.Symbol
	visibility   []Visibility
	implMethods  [][]*FunctionDecl
}

func NewStmtPool() *StmtPool {
	p := &StmtPool{}
	p.grow(1)
	return p
}

func (p *StmtPool) grow(n int) {
	p.kinds = append(p.kinds, make([]StmtKind, n)...)
	p.exprVal = append(p.exprVal, make([]ExprRef, n)...)
	p.symbolVal = append(p.symbolVal, make([]symbols.Symbol, n)...)
	p.typeDecl = append(p.typeDecl, make([]*types.TypeDecl, n)...)
	p.hasType = append(p.hasType, make([]bool, n)...)
	p.condition = append(p.condition, make([]ExprRef, n)...)
	p.startExpr = append(p.startExpr, make([]ExprRef, n)...)
	p.endExpr = append(p.endExpr, make([]ExprRef, n)...)
	p.blockExpr = append(p.blockExpr, make([]ExprRef, n)...)
	p.structName = append(p.structName, make([]symbols.Symbol, n)...)
	p.structFields = append(p.structFields, make([][]StructField, n)...)
	p.genericParams = append(p.genericParams, make([][]symbols.Symbol, n)...)
	p.visibility = append(p.visibility, make([]Visibility, n)...)
	p.implMethods = append(p.implMethods, make([][]*FunctionDecl, n)...)
}

func (p *StmtPool) alloc() StmtRef {
	index := len(p.kinds)
	p.grow(1)
	return StmtRef(index)
}

func (p *StmtPool) Kind(ref StmtRef) StmtKind { return p.kinds[ref] }
func (p *StmtPool) Len() int                  { return len(p.kinds) }

func (p *StmtPool) AddExpression(e ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtExpression
	p.exprVal[r] = e
	return r
}

// AddVal/AddVar: declType is nil when the declaration has no explicit
// type annotation. init is NoExpr for a deferred
// `var` with no initializer.
func (p *StmtPool) AddVal(name symbols.Symbol, declType *types.TypeDecl, init ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtVal
	p.symbolVal[r] = name
	p.typeDecl[r] = declType
	p.hasType[r] = declType != nil
	p.exprVal[r] = init
	return r
}

func (p *StmtPool) AddVar(name symbols.Symbol, declType *types.TypeDecl, init ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtVar
	p.symbolVal[r] = name
	p.typeDecl[r] = declType
	p.hasType[r] = declType != nil
	p.exprVal[r] = init
	return r
}

func (p *StmtPool) AddReturn(e ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtReturn
	p.exprVal[r] = e
	return r
}

func (p *StmtPool) AddBreak() StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtBreak
	return r
}

func (p *StmtPool) AddContinue() StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtContinue
	return r
}

func (p *StmtPool) AddFor(loopVar symbols.Symbol, start, end, block ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtFor
	p.symbolVal[r] = loopVar
	p.startExpr[r] = start
	p.endExpr[r] = end
	p.blockExpr[r] = block
	return r
}

func (p *StmtPool) AddWhile(cond, block ExprRef) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtWhile
	p.condition[r] = cond
	p.blockExpr[r] = block
	return r
}

func (p *StmtPool) AddStructDecl(name symbols.Symbol, fields []StructField, generics []symbols.Symbol, vis Visibility) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtStructDecl
	p.structName[r] = name
	p.structFields[r] = fields
	p.genericParams[r] = generics
	p.visibility[r] = vis
	return r
}

func (p *StmtPool) AddImplBlock(target symbols.Symbol, methods []*FunctionDecl, generics []symbols.Symbol) StmtRef {
	r := p.alloc()
	p.kinds[r] = StmtImplBlock
	p.structName[r] = target
	p.implMethods[r] = methods
	p.genericParams[r] = generics
	return r
}

func (p *StmtPool) ExprVal(ref StmtRef) ExprRef           { return p.exprVal[ref] }
func (p *StmtPool) SymbolVal(ref StmtRef) symbols.Symbol  { return p.symbolVal[ref] }
func (p *StmtPool) HasTypeDecl(ref StmtRef) bool          { return p.hasType[ref] }
func (p *StmtPool) TypeDeclVal(ref StmtRef) types.TypeDecl {
	if p.typeDecl[ref] == nil {
		return types.Simple(types.Unknown)
	}
	return *p.typeDecl[ref]
}
func (p *StmtPool) Condition(ref StmtRef) ExprRef         { return p.condition[ref] }
func (p *StmtPool) StartExpr(ref StmtRef) ExprRef         { return p.startExpr[ref] }
func (p *StmtPool) EndExpr(ref StmtRef) ExprRef           { return p.endExpr[ref] }
func (p *StmtPool) BlockExpr(ref StmtRef) ExprRef         { return p.blockExpr[ref] }
func (p *StmtPool) StructName(ref StmtRef) symbols.Symbol { return p.structName[ref] }
func (p *StmtPool) StructFieldsVal(ref StmtRef) []StructField { return p.structFields[ref] }
func (p *StmtPool) GenericParams(ref StmtRef) []symbols.Symbol { return p.genericParams[ref] }
func (p *StmtPool) VisibilityVal(ref StmtRef) Visibility  { return p.visibility[ref] }
func (p *StmtPool) ImplMethods(ref StmtRef) []*FunctionDecl { return p.implMethods[ref] }

// SetTypeDecl updates the declared type of a Val/Var statement in place;
// used by the checker when it lowers a Number-typed binding's scope entry
// after its initializer is finalized.
func (p *StmtPool) SetTypeDecl(ref StmtRef, t types.TypeDecl) {
	p.typeDecl[ref] = &t
	p.hasType[ref] = true
}
