package ast

import (
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// Param is one parameter of a function definition.
type Param struct {
	Name symbols.Symbol
	Type types.TypeDecl
}

// FunctionDecl is a top-level function or an impl-block method. Body
// references the Block expression that is the function's sole
// statement-list; functions are expression-oriented, so the function's
// body is, concretely, the Expression statement wrapping that block.
type FunctionDecl struct {
	Name          symbols.Symbol
	Params        []Param
	ReturnType    *types.TypeDecl // nil means Unit
	Body          StmtRef
	Visibility    Visibility
	GenericParams []symbols.Symbol

	// IsMethod and Receiver are set for functions declared inside an
	// ImplBlock; Receiver is the `self` parameter's declared type
	// (normally types.SelfKind, resolved by the checker to the impl's
	// target struct).
	IsMethod bool
	Receiver types.TypeDecl
}

// BodyBlock returns the ExprRef of the function's top-level block,
// unwrapping the Expression statement Body points at.
func (f *FunctionDecl) BodyBlock(stmts *StmtPool) ExprRef {
	return stmts.ExprVal(f.Body)
}

// PackageDecl is the `package a::b::c` declaration, at most one per
// Program.
type PackageDecl struct {
	Path []symbols.Symbol
}

// ImportDecl is one `import a::b::c` declaration. Alias is the last path
// component, the name qualified member-access expressions resolve
// through.
type ImportDecl struct {
	Path  []symbols.Symbol
	Alias symbols.Symbol
}

// Program owns the whole pooled AST for one compilation unit: the
// expression and statement pools, their parallel location pool, the
// optional package declaration, the import list, and the top-level
// function table.
type Program struct {
	Exprs     *ExprPool
	Stmts     *StmtPool
	Locations *LocationPool

	Package *PackageDecl
	Imports []ImportDecl

	Functions []*FunctionDecl
	Structs   []StmtRef // StmtRef of each top-level StructDecl
	Impls     []StmtRef // StmtRef of each top-level ImplBlock
}

// NewProgram creates an empty Program with freshly initialized pools.
func NewProgram() *Program {
	return &Program{
		Exprs:     NewExprPool(),
		Stmts:     NewStmtPool(),
		Locations: NewLocationPool(),
	}
}

// FindFunction returns the top-level function named name, or nil.
func (p *Program) FindFunction(name symbols.Symbol) *FunctionDecl {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
