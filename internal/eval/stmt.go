package eval

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/diag"
	"github.com/toylang/toylang/internal/symbols"
)

// evalBlock mirrors checker.checkBlock's exact shape: a Block's statement
// list is read through the ExprPool (StmtListVal), a fresh scope frame is
// pushed for the duration, and the block's value is its last statement's
// value only when that last statement is an Expression statement --
// otherwise the block evaluates to Unit. Unlike the checker, evalBlock
// also has to stop early and propagate a Return/Break/Continue the moment
// one of its statements produces it.
func (e *Evaluator) evalBlock(ref ast.ExprRef, outer *Environment) (*Result, *diag.Diagnostic) {
	frame := NewEnclosedEnvironment(outer)
	stmts := e.prog.Exprs.StmtListVal(ref)

	last := NewUnit()
	var unwound *Result
	var stmtErr *diag.Diagnostic

	for i, s := range stmts {
		res, err := e.evalStmt(s, frame)
		if err != nil {
			stmtErr = err
			break
		}
		if res.isUnwinding() {
			unwound = res
			break
		}
		if i == len(stmts)-1 && e.prog.Stmts.Kind(s) == ast.StmtExpression {
			last = res.Val
		}
	}

	keep := last
	if unwound != nil {
		keep = unwound.Val
	}
	if relErr := e.releaseFrame(frame, keep); relErr != nil && stmtErr == nil {
		stmtErr = relErr
	}
	if stmtErr != nil {
		return nil, stmtErr
	}
	if unwound != nil {
		return unwound, nil
	}
	return valueResult(last), nil
}

// evalStmt dispatches on ref's StmtKind. StructDecl/ImplBlock statements
// are declarations already consumed by New's registry construction, so
// evaluating one as a statement (it can appear at top level alongside
// functions) is a no-op.
func (e *Evaluator) evalStmt(ref ast.StmtRef, env *Environment) (*Result, *diag.Diagnostic) {
	e.tracef("stmt %s", e.prog.Stmts.Kind(ref))
	switch e.prog.Stmts.Kind(ref) {
	case ast.StmtExpression:
		return e.evalExpr(e.prog.Stmts.ExprVal(ref), env)
	case ast.StmtVal, ast.StmtVar:
		return e.evalValOrVar(ref, env)
	case ast.StmtReturn:
		return e.evalReturn(ref, env)
	case ast.StmtBreak:
		return breakResult(), nil
	case ast.StmtContinue:
		return continueResult(), nil
	case ast.StmtFor:
		return e.evalFor(ref, env)
	case ast.StmtWhile:
		return e.evalWhile(ref, env)
	case ast.StmtStructDecl, ast.StmtImplBlock:
		return valueResult(NewUnit()), nil
	default:
		return nil, e.runtimeErrStmt(ref, "unevaluated statement kind %v", e.prog.Stmts.Kind(ref))
	}
}

// evalValOrVar implements this language's Val/Var binding: Val always has
// an initializer (enforced by the checker); a deferred Var with no
// initializer binds Null of its declared type.
func (e *Evaluator) evalValOrVar(ref ast.StmtRef, env *Environment) (*Result, *diag.Diagnostic) {
	name := e.prog.Stmts.SymbolVal(ref)
	initRef := e.prog.Stmts.ExprVal(ref)

	if initRef == ast.NoExpr {
		ty := e.prog.Stmts.TypeDeclVal(ref)
		env.Define(name, e.refc.Retain(zeroOf(ty)))
		return valueResult(NewUnit()), nil
	}

	res, err := e.evalExpr(initRef, env)
	if err != nil {
		return nil, err
	}
	if res.isUnwinding() {
		return res, nil
	}
	env.Define(name, e.refc.Retain(res.Val))
	return valueResult(NewUnit()), nil
}

func (e *Evaluator) evalReturn(ref ast.StmtRef, env *Environment) (*Result, *diag.Diagnostic) {
	exprRef := e.prog.Stmts.ExprVal(ref)
	if exprRef == ast.NoExpr {
		return returnResult(NewUnit()), nil
	}
	res, err := e.evalExpr(exprRef, env)
	if err != nil {
		return nil, err
	}
	if res.isUnwinding() {
		return res, nil
	}
	return returnResult(res.Val), nil
}

// evalFor implements `for var in start to end { block }`: a half-open
// interval over matching Int64 or UInt64 bounds, with a fresh scope frame
// for the loop variable on every iteration. A Break stops
// the loop; a Continue just ends the current iteration; a Return
// propagates out of the loop entirely.
func (e *Evaluator) evalFor(ref ast.StmtRef, env *Environment) (*Result, *diag.Diagnostic) {
	name := e.prog.Stmts.SymbolVal(ref)
	startRef := e.prog.Stmts.StartExpr(ref)
	endRef := e.prog.Stmts.EndExpr(ref)
	blockRef := e.prog.Stmts.BlockExpr(ref)

	startObj, unwind, err := e.evalOperand(startRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}
	endObj, unwind, err := e.evalOperand(endRef, env)
	if err != nil {
		return nil, err
	}
	if unwind != nil {
		return unwind, nil
	}

	switch startObj.Kind {
	case KindInt64:
		for i := startObj.Int64Val; i < endObj.Int64Val; i++ {
			res, err := e.runForIteration(name, NewInt64(i), blockRef, env)
			if err != nil {
				return nil, err
			}
			if res.Ctrl == ctrlBreak {
				break
			}
			if res.Ctrl == ctrlReturn {
				return res, nil
			}
		}
	case KindUInt64:
		for i := startObj.UInt64Val; i < endObj.UInt64Val; i++ {
			res, err := e.runForIteration(name, NewUInt64(i), blockRef, env)
			if err != nil {
				return nil, err
			}
			if res.Ctrl == ctrlBreak {
				break
			}
			if res.Ctrl == ctrlReturn {
				return res, nil
			}
		}
	default:
		return nil, e.runtimeErrStmt(ref, "for-loop bounds must be i64 or u64")
	}
	return valueResult(NewUnit()), nil
}

func (e *Evaluator) runForIteration(name symbols.Symbol, loopVal *Object, blockRef ast.ExprRef, env *Environment) (*Result, *diag.Diagnostic) {
	iterEnv := NewEnclosedEnvironment(env)
	iterEnv.Define(name, e.refc.Retain(loopVal))
	res, err := e.evalExpr(blockRef, iterEnv)
	if relErr := e.releaseFrame(iterEnv, nil); relErr != nil && err == nil {
		err = relErr
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// evalWhile loops while cond evaluates truthy; its body is a Block
// expression so evalExpr's own dispatch already gives it a fresh scope
// frame per iteration.
func (e *Evaluator) evalWhile(ref ast.StmtRef, env *Environment) (*Result, *diag.Diagnostic) {
	condRef := e.prog.Stmts.Condition(ref)
	blockRef := e.prog.Stmts.BlockExpr(ref)

	for {
		condObj, unwind, err := e.evalOperand(condRef, env)
		if err != nil {
			return nil, err
		}
		if unwind != nil {
			return unwind, nil
		}
		if !condObj.IsTruthy() {
			break
		}
		res, err := e.evalExpr(blockRef, env)
		if err != nil {
			return nil, err
		}
		if res.Ctrl == ctrlBreak {
			break
		}
		if res.Ctrl == ctrlReturn {
			return res, nil
		}
	}
	return valueResult(NewUnit()), nil
}
