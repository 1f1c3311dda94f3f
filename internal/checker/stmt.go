package checker

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/types"
)

// checkStmt dispatches on ref's StmtKind, returning a best-effort type (only
// meaningful for StmtExpression, used by checkBlock to compute a block's
// value).
func (c *Checker) checkStmt(ref ast.StmtRef) types.TypeDecl {
	switch c.prog.Stmts.Kind(ref) {
	case ast.StmtExpression:
		return c.checkExpr(c.prog.Stmts.ExprVal(ref))
	case ast.StmtVal:
		c.checkValOrVar(ref, true)
	case ast.StmtVar:
		c.checkValOrVar(ref, false)
	case ast.StmtReturn:
		c.checkReturn(ref)
	case ast.StmtBreak, ast.StmtContinue:
		// No payload to check; loop-boundedness is a parse/eval concern.
	case ast.StmtFor:
		c.checkFor(ref)
	case ast.StmtWhile:
		c.checkWhile(ref)
	default:
		c.errorAtStmt(ref, diag.TypeMismatch, "unchecked statement kind %v", c.prog.Stmts.Kind(ref))
	}
	return types.Simple(types.Unit)
}

// checkValOrVar implements the Val/Var binding rules: Val must
// initialize, Var may defer initialization. An explicit type annotation
// becomes the pushed type_hint for the initializer.
func (c *Checker) checkValOrVar(ref ast.StmtRef, requiresInit bool) {
	name := c.prog.Stmts.SymbolVal(ref)
	init := c.prog.Stmts.ExprVal(ref)

	if requiresInit && init == ast.NoExpr {
		c.errorAtStmt(ref, diag.TypeMismatch, "'val %s' must be initialized", c.intern.Resolve(name))
		c.scopeTop.define(name, types.Simple(types.Unknown))
		return
	}

	declared := c.prog.Stmts.HasTypeDecl(ref)
	var declTy types.TypeDecl
	if declared {
		declTy = c.prog.Stmts.TypeDeclVal(ref)
	}

	if init == ast.NoExpr {
		// Deferred `var` with no initializer evaluates to Null of the
		// declared type.
		if !declared {
			c.errorAtStmt(ref, diag.TypeMismatch, "'var %s' with no initializer needs a declared type", c.intern.Resolve(name))
			declTy = types.Simple(types.Unknown)
		}
		c.scopeTop.define(name, declTy)
		return
	}

	var restore func()
	if declared {
		restore = c.pushHint(declTy)
	}
	initTy := c.checkExpr(init)
	if restore != nil {
		restore()
	}

	finalTy := initTy
	if declared {
		if initTy.Kind == types.Number && declTy.IsInteger() {
			c.resolveNumber(init, declTy)
			finalTy = declTy
		} else if initTy.IsConcrete() && declTy.IsConcrete() && !initTy.Equal(declTy) &&
			!c.isOpaque(initTy) && !c.isOpaque(declTy) {
			c.errorAtStmt(ref, diag.TypeMismatch, "'%s' declared as %s but initializer has type %s",
				c.intern.Resolve(name), declTy, initTy)
			finalTy = declTy
		} else {
			finalTy = declTy
		}
	} else if finalTy.Kind == types.Unknown {
		// Number stays open until finalizeRemainingNumbers resolves it at
		// the end of the enclosing function; Unknown never resolves on its
		// own (an empty array literal or a null literal with nothing to
		// infer from), so without a declared type it must be rejected here.
		c.errorAtStmt(ref, diag.TypeMismatch, "'%s' has no declared type and its initializer's type cannot be inferred",
			c.intern.Resolve(name))
	}

	c.scopeTop.define(name, finalTy)
	c.varInit[name] = init
}

func (c *Checker) checkReturn(ref ast.StmtRef) {
	e := c.prog.Stmts.ExprVal(ref)
	if e == ast.NoExpr {
		return
	}
	c.checkExpr(e)
}

// checkFor implements this language's "for var in start to end { block }":
// both bounds must share the same integer type, and the loop variable is
// bound to that type in a fresh inner scope for the block.
func (c *Checker) checkFor(ref ast.StmtRef) {
	name := c.prog.Stmts.SymbolVal(ref)
	start := c.prog.Stmts.StartExpr(ref)
	end := c.prog.Stmts.EndExpr(ref)
	block := c.prog.Stmts.BlockExpr(ref)

	startTy := c.checkExpr(start)
	endTy := c.checkExpr(end)
	loopTy, _, ok := c.resolveNumberPair(start, end, startTy, endTy)
	if !ok {
		return
	}
	if !loopTy.IsInteger() {
		c.errorAtStmt(ref, diag.TypeMismatch, "for-loop bounds must be integers, got %s", loopTy)
		return
	}

	c.pushScope()
	c.scopeTop.define(name, loopTy)
	c.checkExpr(block)
	c.popScope()
}

func (c *Checker) checkWhile(ref ast.StmtRef) {
	cond := c.prog.Stmts.Condition(ref)
	c.checkCondition(cond)
	c.checkExpr(c.prog.Stmts.BlockExpr(ref))
}
