package parser

import (
	"strconv"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/lexer"
)

// parseExpr is the entry point for the assignment-precedence level,
// the lowest level in this language's precedence table.
func (p *Parser) parseExpr() ast.ExprRef {
	if !p.enter() {
		defer p.exit()
		return p.syntheticNull()
	}
	defer p.exit()

	left := p.parseLogicalOr()

	if p.cur.Kind == lexer.ASSIGN {
		p.advance()
		right := p.parseExpr()
		// Assignment lowering: LHS IndexAccess(o,i) becomes
		// IndexAssign(o,i,rhs) instead of a plain Assign.
		if p.prog.Exprs.Kind(left) == ast.ExprIndexAccess {
			obj := p.prog.Exprs.Lhs(left)
			idx := p.prog.Exprs.Rhs(left)
			return p.prog.Exprs.AddIndexAssign(obj, idx, right)
		}
		return p.prog.Exprs.AddAssign(left, right)
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.ExprRef {
	left := p.parseLogicalAnd()
	for p.cur.Kind == lexer.OROR {
		p.advance()
		right := p.parseLogicalAnd()
		left = p.prog.Exprs.AddBinary(ast.OpOr, left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.ExprRef {
	left := p.parseBitwise()
	for p.cur.Kind == lexer.ANDAND {
		p.advance()
		right := p.parseBitwise()
		left = p.prog.Exprs.AddBinary(ast.OpAnd, left, right)
	}
	return left
}

func (p *Parser) parseBitwise() ast.ExprRef {
	left := p.parseEquality()
	for p.cur.Kind == lexer.AMP || p.cur.Kind == lexer.PIPE || p.cur.Kind == lexer.CARET {
		op := map[lexer.TokenKind]ast.BinaryOp{lexer.AMP: ast.OpBitAnd, lexer.PIPE: ast.OpBitOr, lexer.CARET: ast.OpBitXor}[p.cur.Kind]
		p.advance()
		right := p.parseEquality()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.ExprRef {
	left := p.parseRelational()
	for p.cur.Kind == lexer.EQ || p.cur.Kind == lexer.NEQ {
		op := ast.OpEq
		if p.cur.Kind == lexer.NEQ {
			op = ast.OpNeq
		}
		p.advance()
		right := p.parseRelational()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.ExprRef {
	left := p.parseShift()
	for p.curIs(lexer.LT, lexer.LE, lexer.GT, lexer.GE) {
		op := map[lexer.TokenKind]ast.BinaryOp{
			lexer.LT: ast.OpLt, lexer.LE: ast.OpLe, lexer.GT: ast.OpGt, lexer.GE: ast.OpGe,
		}[p.cur.Kind]
		p.advance()
		right := p.parseShift()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseShift() ast.ExprRef {
	left := p.parseAdditive()
	for p.cur.Kind == lexer.SHL || p.cur.Kind == lexer.SHR {
		op := ast.OpShl
		if p.cur.Kind == lexer.SHR {
			op = ast.OpShr
		}
		p.advance()
		right := p.parseAdditive()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.ExprRef {
	left := p.parseMultiplicative()
	for p.cur.Kind == lexer.PLUS || p.cur.Kind == lexer.MINUS {
		op := ast.OpAdd
		if p.cur.Kind == lexer.MINUS {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.ExprRef {
	left := p.parseUnary()
	for p.cur.Kind == lexer.STAR || p.cur.Kind == lexer.SLASH {
		op := ast.OpMul
		if p.cur.Kind == lexer.SLASH {
			op = ast.OpDiv
		}
		p.advance()
		right := p.parseUnary()
		left = p.prog.Exprs.AddBinary(op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.ExprRef {
	switch p.cur.Kind {
	case lexer.TILDE:
		p.advance()
		return p.prog.Exprs.AddUnary(ast.OpBitNot, p.parseUnary())
	case lexer.BANG:
		p.advance()
		return p.prog.Exprs.AddUnary(ast.OpNot, p.parseUnary())
	case lexer.MINUS:
		// Unary minus lowers to 0 - x so the checker's existing binary
		// Number-resolution rules apply unchanged.
		p.advance()
		operand := p.parseUnary()
		zero := p.prog.Exprs.AddNumber(p.intern2("0"))
		return p.prog.Exprs.AddBinary(ast.OpSub, zero, operand)
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles call/field/method/index/slice/tuple-access chains,
// the highest-precedence level besides primary itself.
func (p *Parser) parsePostfix() ast.ExprRef {
	if !p.enter() {
		defer p.exit()
		return p.syntheticNull()
	}
	defer p.exit()

	expr := p.parsePrimary()

	iterations := 0
	for {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("postfix chain too long")
			return expr
		}
		switch p.cur.Kind {
		case lexer.DOT:
			p.advance()
			expr = p.parseDotSuffix(expr)
		case lexer.LBRACKET:
			expr = p.parseIndexOrSlice(expr)
		case lexer.LPAREN:
			// A bare call on a non-identifier primary (e.g. a qualified
			// identifier already parsed) -- reuses parseCallArgs.
			args := p.parseCallArgs()
			if p.prog.Exprs.Kind(expr) == ast.ExprIdentifier {
				name := p.prog.Exprs.SymbolVal(expr)
				expr = p.prog.Exprs.AddCall(name, args)
			} else {
				expr = p.prog.Exprs.AddExprList(append([]ast.ExprRef{expr}, args...))
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseDotSuffix(obj ast.ExprRef) ast.ExprRef {
	if p.cur.Kind == lexer.INTEGER {
		n, _ := strconv.Atoi(p.cur.Literal)
		p.advance()
		return p.prog.Exprs.AddTupleAccess(obj, n)
	}
	if p.cur.Kind != lexer.IDENT {
		p.errorf("expected field name or tuple index after '.', got %q", p.cur.Literal)
		return obj
	}
	name := p.intern2(p.cur.Literal)
	p.advance()
	if p.cur.Kind == lexer.LPAREN {
		args := p.parseCallArgs()
		return p.prog.Exprs.AddMethodCall(obj, name, args)
	}
	return p.prog.Exprs.AddFieldAccess(obj, name)
}

func (p *Parser) parseCallArgs() []ast.ExprRef {
	p.expect(lexer.LPAREN, "'(' starting argument list")
	p.skipNewlines()
	var args []ast.ExprRef
	iterations := 0
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("argument list too long")
			break
		}
		args = append(args, p.parseExpr())
		p.skipNewlines()
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')' closing argument list")
	return args
}

// parseIndexOrSlice handles `obj[i]`, `obj[s..e]`, `obj[s..]`, `obj[..e]`
// and `obj[..]`.
func (p *Parser) parseIndexOrSlice(obj ast.ExprRef) ast.ExprRef {
	p.advance() // '['
	savedNoStruct := p.noStructLiteral
	p.noStructLiteral = true
	defer func() { p.noStructLiteral = savedNoStruct }()

	if p.cur.Kind == lexer.DOTDOT {
		p.advance()
		var end ast.ExprRef = ast.NoExpr
		if p.cur.Kind != lexer.RBRACKET {
			end = p.parseExpr()
		}
		p.expect(lexer.RBRACKET, "']' closing slice")
		return p.prog.Exprs.AddSliceAccess(obj, ast.NoExpr, end)
	}

	first := p.parseExpr()
	if p.cur.Kind == lexer.DOTDOT {
		p.advance()
		var end ast.ExprRef = ast.NoExpr
		if p.cur.Kind != lexer.RBRACKET {
			end = p.parseExpr()
		}
		p.expect(lexer.RBRACKET, "']' closing slice")
		return p.prog.Exprs.AddSliceAccess(obj, first, end)
	}

	p.expect(lexer.RBRACKET, "']' closing index")
	return p.prog.Exprs.AddIndexAccess(obj, first)
}
