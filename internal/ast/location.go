package ast

import "github.com/toylang/toylang/internal/lexer"

// LocationPool stores one optional source location per expression and per
// statement, indexed in parallel with ExprPool/StmtPool.
type LocationPool struct {
	exprLocs []lexer.Position
	exprSet  []bool
	stmtLocs []lexer.Position
	stmtSet  []bool
}

func NewLocationPool() *LocationPool {
	return &LocationPool{
		exprLocs: make([]lexer.Position, 1),
		exprSet:  make([]bool, 1),
		stmtLocs: make([]lexer.Position, 1),
		stmtSet:  make([]bool, 1),
	}
}

func (l *LocationPool) SetExprLoc(ref ExprRef, pos lexer.Position) {
	l.growExpr(int(ref))
	l.exprLocs[ref] = pos
	l.exprSet[ref] = true
}

func (l *LocationPool) SetStmtLoc(ref StmtRef, pos lexer.Position) {
	l.growStmt(int(ref))
	l.stmtLocs[ref] = pos
	l.stmtSet[ref] = true
}

func (l *LocationPool) ExprLoc(ref ExprRef) (lexer.Position, bool) {
	if int(ref) >= len(l.exprSet) {
		return lexer.Position{}, false
	}
	return l.exprLocs[ref], l.exprSet[ref]
}

func (l *LocationPool) StmtLoc(ref StmtRef) (lexer.Position, bool) {
	if int(ref) >= len(l.stmtSet) {
		return lexer.Position{}, false
	}
	return l.stmtLocs[ref], l.stmtSet[ref]
}

func (l *LocationPool) growExpr(index int) {
	for len(l.exprLocs) <= index {
		l.exprLocs = append(l.exprLocs, lexer.Position{})
		l.exprSet = append(l.exprSet, false)
	}
}

func (l *LocationPool) growStmt(index int) {
	for len(l.stmtLocs) <= index {
		l.stmtLocs = append(l.stmtLocs, lexer.Position{})
		l.stmtSet = append(l.stmtSet, false)
	}
}
