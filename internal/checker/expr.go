package checker

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/types"
)

// checkExpr dispatches on ref's ExprKind, returning its resolved type. On
// error it records a diagnostic and returns types.Unknown so checking of
// the enclosing expression can continue.
func (c *Checker) checkExpr(ref ast.ExprRef) types.TypeDecl {
	switch c.prog.Exprs.Kind(ref) {
	case ast.ExprInt64:
		return types.Simple(types.Int64)
	case ast.ExprUInt64:
		return types.Simple(types.UInt64)
	case ast.ExprNumber:
		return c.checkNumberLiteral(ref)
	case ast.ExprString:
		return types.Simple(types.String)
	case ast.ExprTrue, ast.ExprFalse:
		return types.Simple(types.Bool)
	case ast.ExprNull:
		return types.Simple(types.Unknown)
	case ast.ExprIdentifier:
		return c.checkIdentifier(ref)
	case ast.ExprQualifiedIdentifier:
		return c.checkQualifiedIdentifier(ref)
	case ast.ExprAssign:
		return c.checkAssign(ref)
	case ast.ExprBinary:
		return c.checkBinary(ref)
	case ast.ExprUnary:
		return c.checkUnary(ref)
	case ast.ExprBlock:
		return c.checkBlock(ref)
	case ast.ExprIfElifElse:
		return c.checkIfElifElse(ref)
	case ast.ExprCall:
		return c.checkCall(ref)
	case ast.ExprExprList:
		return c.checkExprList(ref)
	case ast.ExprArrayLiteral:
		return c.checkArrayLiteral(ref)
	case ast.ExprDictLiteral:
		return c.checkDictLiteral(ref)
	case ast.ExprTupleLiteral:
		return c.checkTupleLiteral(ref)
	case ast.ExprTupleAccess:
		return c.checkTupleAccess(ref)
	case ast.ExprFieldAccess:
		return c.checkFieldAccess(ref)
	case ast.ExprMethodCall:
		return c.checkMethodCall(ref)
	case ast.ExprStructLiteral:
		return c.checkStructLiteral(ref)
	case ast.ExprIndexAccess:
		return c.checkIndexAccess(ref)
	case ast.ExprIndexAssign:
		return c.checkIndexAssign(ref)
	case ast.ExprSliceAccess:
		return c.checkSliceAccess(ref)
	case ast.ExprBuiltinCall:
		return c.checkBuiltinCall(ref)
	case ast.ExprBuiltinMethodCall:
		return c.checkMethodCall(ref)
	default:
		c.errorAtExpr(ref, diag.TypeMismatch, "unchecked expression kind %v", c.prog.Exprs.Kind(ref))
		return types.Simple(types.Unknown)
	}
}

// checkNumberLiteral resolves a bare Number literal using the prevailing
// type_hint, defaulting to UInt64.
func (c *Checker) checkNumberLiteral(ref ast.ExprRef) types.TypeDecl {
	if h, ok := c.hint(); ok && (h.Kind == types.Int64 || h.Kind == types.UInt64) {
		c.resolveNumber(ref, h)
		return h
	}
	return types.Simple(types.Number)
}

func (c *Checker) checkIdentifier(ref ast.ExprRef) types.TypeDecl {
	name := c.prog.Exprs.SymbolVal(ref)
	if t, ok := c.scopeTop.lookup(name); ok {
		return t
	}
	c.errorAtExpr(ref, diag.NameResolution, "undefined identifier %q", c.intern.Resolve(name))
	return types.Simple(types.Unknown)
}

// checkQualifiedIdentifier resolves `mod::member`. Cross-module member types are not tracked by a
// single-program Checker (the Module Integrator merges pools before
// checking runs, so by the time Check executes, a surviving
// QualifiedIdentifier only appears when the alias names an import that was
// not integrated); the checker validates the alias exists and otherwise
// reports Unknown.
func (c *Checker) checkQualifiedIdentifier(ref ast.ExprRef) types.TypeDecl {
	path := c.prog.Exprs.SymbolListVal(ref)
	if len(path) == 0 {
		return types.Simple(types.Unknown)
	}
	alias := path[0]
	if _, ok := c.importAlias[alias]; !ok {
		c.errorAtExpr(ref, diag.NameResolution, "%q is not an imported module alias", c.intern.Resolve(alias))
	}
	return types.Simple(types.Unknown)
}

func (c *Checker) checkAssign(ref ast.ExprRef) types.TypeDecl {
	lhs := c.prog.Exprs.Lhs(ref)
	rhs := c.prog.Exprs.Rhs(ref)

	if c.prog.Exprs.Kind(lhs) != ast.ExprIdentifier {
		c.errorAtExpr(ref, diag.TypeMismatch, "left-hand side of '=' must be a variable")
		return types.Simple(types.Unknown)
	}
	name := c.prog.Exprs.SymbolVal(lhs)
	lhsTy, ok := c.scopeTop.lookup(name)
	if !ok {
		c.errorAtExpr(ref, diag.NameResolution, "undefined identifier %q", c.intern.Resolve(name))
		return types.Simple(types.Unknown)
	}

	restore := c.pushHint(lhsTy)
	rhsTy := c.checkExpr(rhs)
	restore()

	if rhsTy.Kind == types.Number {
		c.resolveNumber(rhs, lhsTy)
		rhsTy = lhsTy
	}
	if lhsTy.IsConcrete() && rhsTy.IsConcrete() && !lhsTy.Equal(rhsTy) && rhsTy.Kind != types.Unknown {
		c.errorAtExpr(ref, diag.TypeMismatch, "cannot assign %s to variable of type %s", rhsTy, lhsTy)
	}
	return lhsTy
}

// checkBinary implements the Number resolution table plus the concrete
// arithmetic/comparison/logical/bitwise/shift rules for each operator.
func (c *Checker) checkBinary(ref ast.ExprRef) types.TypeDecl {
	op := c.prog.Exprs.Operator(ref)
	lhs := c.prog.Exprs.Lhs(ref)
	rhs := c.prog.Exprs.Rhs(ref)

	lhsTy := c.checkExpr(lhs)
	rhsTy := c.checkExpr(rhs)

	switch op {
	case ast.OpAnd, ast.OpOr:
		if lhsTy.Kind != types.Bool || rhsTy.Kind != types.Bool {
			c.errorAtExpr(ref, diag.TypeMismatch, "logical operator requires Bool operands, got %s and %s", lhsTy, rhsTy)
			return types.Simple(types.Unknown)
		}
		return types.Simple(types.Bool)
	}

	lhsTy, rhsTy, ok := c.resolveNumberPair(lhs, rhs, lhsTy, rhsTy)
	if !ok {
		return types.Simple(types.Unknown)
	}

	switch op {
	case ast.OpAdd:
		if lhsTy.Kind == types.String && rhsTy.Kind == types.String {
			return types.Simple(types.String)
		}
		fallthrough
	case ast.OpSub, ast.OpMul, ast.OpDiv:
		if !lhsTy.IsInteger() || !lhsTy.Equal(rhsTy) {
			c.errorAtExpr(ref, diag.TypeMismatch, "arithmetic requires matching integer (or String for '+') operands, got %s and %s", lhsTy, rhsTy)
			return types.Simple(types.Unknown)
		}
		return lhsTy
	case ast.OpEq, ast.OpNeq:
		if lhsTy.IsInteger() && rhsTy.Equal(lhsTy) {
			return types.Simple(types.Bool)
		}
		if lhsTy.Kind == types.Bool && rhsTy.Kind == types.Bool {
			return types.Simple(types.Bool)
		}
		if lhsTy.Equal(rhsTy) {
			return types.Simple(types.Bool)
		}
		c.errorAtExpr(ref, diag.TypeMismatch, "cannot compare %s and %s", lhsTy, rhsTy)
		return types.Simple(types.Unknown)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !lhsTy.IsInteger() || !lhsTy.Equal(rhsTy) {
			c.errorAtExpr(ref, diag.TypeMismatch, "relational comparison requires matching integer operands, got %s and %s", lhsTy, rhsTy)
			return types.Simple(types.Unknown)
		}
		return types.Simple(types.Bool)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		if !lhsTy.IsInteger() || !lhsTy.Equal(rhsTy) {
			c.errorAtExpr(ref, diag.TypeMismatch, "bitwise operator requires identical integer types, got %s and %s", lhsTy, rhsTy)
			return types.Simple(types.Unknown)
		}
		return lhsTy
	case ast.OpShl, ast.OpShr:
		if !lhsTy.IsInteger() {
			c.errorAtExpr(ref, diag.TypeMismatch, "shift left operand must be an integer, got %s", lhsTy)
			return types.Simple(types.Unknown)
		}
		if rhsTy.Kind != types.UInt64 {
			c.errorAtExpr(ref, diag.TypeMismatch, "shift right operand must be UInt64, got %s", rhsTy)
			return types.Simple(types.Unknown)
		}
		return lhsTy
	}
	return types.Simple(types.Unknown)
}

// resolveNumberPair applies this language's Number-resolution table to a
// binary operand pair, mutating the AST in place for any resolved Number
// side.
func (c *Checker) resolveNumberPair(lhsRef, rhsRef ast.ExprRef, lhsTy, rhsTy types.TypeDecl) (types.TypeDecl, types.TypeDecl, bool) {
	switch {
	case lhsTy.Kind != types.Number && rhsTy.Kind != types.Number:
		if lhsTy.IsInteger() && rhsTy.IsInteger() && lhsTy.Kind != rhsTy.Kind {
			c.errorAtExpr(lhsRef, diag.TypeMismatch, "cannot mix Int64 and UInt64 without an explicit conversion")
			return lhsTy, rhsTy, false
		}
		return lhsTy, rhsTy, true
	case lhsTy.Kind == types.Number && rhsTy.Kind != types.Number:
		c.resolveNumber(lhsRef, rhsTy)
		return rhsTy, rhsTy, true
	case rhsTy.Kind == types.Number && lhsTy.Kind != types.Number:
		c.resolveNumber(rhsRef, lhsTy)
		return lhsTy, lhsTy, true
	default: // both Number
		concrete := types.Simple(types.UInt64)
		if h, ok := c.hint(); ok && (h.Kind == types.Int64 || h.Kind == types.UInt64) {
			concrete = h
		}
		c.resolveNumber(lhsRef, concrete)
		c.resolveNumber(rhsRef, concrete)
		return concrete, concrete, true
	}
}

func (c *Checker) checkUnary(ref ast.ExprRef) types.TypeDecl {
	op := c.prog.Exprs.UnaryOperator(ref)
	operand := c.prog.Exprs.Operand(ref)
	ty := c.checkExpr(operand)

	switch op {
	case ast.OpBitNot:
		if ty.Kind == types.Number {
			resolved := types.Simple(types.UInt64)
			if h, ok := c.hint(); ok && (h.Kind == types.Int64 || h.Kind == types.UInt64) {
				resolved = h
			}
			c.resolveNumber(operand, resolved)
			return resolved
		}
		if !ty.IsInteger() {
			c.errorAtExpr(ref, diag.TypeMismatch, "'~' requires an integer operand, got %s", ty)
			return types.Simple(types.Unknown)
		}
		return ty
	case ast.OpNot:
		if ty.Kind != types.Bool {
			c.errorAtExpr(ref, diag.TypeMismatch, "'!' requires a Bool operand, got %s", ty)
			return types.Simple(types.Unknown)
		}
		return types.Simple(types.Bool)
	}
	return types.Simple(types.Unknown)
}

// checkBlock implements this language's per-block pre-scan (adopting the
// first explicit numeric type among its val/var decls as the block's
// type_hint) and pushes/pops one lexical scope.
func (c *Checker) checkBlock(ref ast.ExprRef) types.TypeDecl {
	c.pushScope()
	defer c.popScope()

	stmts := c.prog.Exprs.StmtListVal(ref)

	var restoreHint func()
	if h := c.firstExplicitNumericHint(stmts); h != nil {
		restoreHint = c.pushHint(*h)
		defer restoreHint()
	}

	var last types.TypeDecl = types.Simple(types.Unit)
	for i, s := range stmts {
		ty := c.checkStmt(s)
		if i == len(stmts)-1 && c.prog.Stmts.Kind(s) == ast.StmtExpression {
			last = ty
		}
	}
	return last
}

func (c *Checker) firstExplicitNumericHint(stmts []ast.StmtRef) *types.TypeDecl {
	for _, s := range stmts {
		k := c.prog.Stmts.Kind(s)
		if k != ast.StmtVal && k != ast.StmtVar {
			continue
		}
		if !c.prog.Stmts.HasTypeDecl(s) {
			continue
		}
		t := c.prog.Stmts.TypeDeclVal(s)
		if t.IsInteger() {
			return &t
		}
	}
	return nil
}

func (c *Checker) checkIfElifElse(ref ast.ExprRef) types.TypeDecl {
	cond := c.prog.Exprs.Lhs(ref)
	then := c.prog.Exprs.Rhs(ref)
	elifs := c.prog.Exprs.ElifListVal(ref)
	els := c.prog.Exprs.ThirdOperand(ref)

	c.checkCondition(cond)
	resultTy := c.checkExpr(then)

	for _, arm := range elifs {
		c.checkCondition(arm.Cond)
		c.checkExpr(arm.Block)
	}
	if els != ast.NoExpr {
		c.checkExpr(els)
	}
	return resultTy
}

func (c *Checker) checkCondition(ref ast.ExprRef) {
	ty := c.checkExpr(ref)
	if ty.Kind != types.Bool && ty.Kind != types.Unknown {
		c.errorAtExpr(ref, diag.TypeMismatch, "condition must be Bool, got %s", ty)
	}
}

func (c *Checker) checkExprList(ref ast.ExprRef) types.TypeDecl {
	elems := c.prog.Exprs.ExprListVal(ref)
	elemTypes := make([]types.TypeDecl, len(elems))
	for i, e := range elems {
		elemTypes[i] = c.checkExpr(e)
	}
	return types.Tuple(elemTypes...)
}
