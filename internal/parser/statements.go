package parser

import (
	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/lexer"
	"github.com/toylang/toylang/internal/symbols"
	"github.com/toylang/toylang/internal/types"
)

// skipSeparators consumes a run of NEWLINE/SEMI tokens -- both serve as the
// statement separator inside a block.
func (p *Parser) skipSeparators() {
	for p.cur.Kind == lexer.NEWLINE || p.cur.Kind == lexer.SEMI {
		p.advance()
	}
}

func (p *Parser) atStmtEnd() bool {
	return p.curIs(lexer.NEWLINE, lexer.SEMI, lexer.RBRACE, lexer.EOF)
}

// parseBlockExpr parses `{ stmt* }`. A block is itself an expression whose
// value is its last statement's.
func (p *Parser) parseBlockExpr() ast.ExprRef {
	if !p.enter() {
		defer p.exit()
		return p.syntheticNull()
	}
	defer p.exit()

	p.expect(lexer.LBRACE, "'{' starting a block")
	p.skipSeparators()

	var stmts []ast.StmtRef
	iterations := 0
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("block has too many statements (limit %d)", maxBlockStatements)
			break
		}
		before := p.cur
		stmts = append(stmts, p.parseStatement())
		p.skipSeparators()
		if p.cur == before {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE, "'}' closing block")
	return p.prog.Exprs.AddBlock(stmts)
}

func (p *Parser) parseStatement() ast.StmtRef {
	switch p.cur.Kind {
	case lexer.VAL:
		return p.parseValStmt()
	case lexer.VAR:
		return p.parseVarStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		p.advance()
		return p.prog.Stmts.AddBreak()
	case lexer.CONTINUE:
		p.advance()
		return p.prog.Stmts.AddContinue()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	default:
		e := p.parseExpr()
		return p.prog.Stmts.AddExpression(e)
	}
}

func (p *Parser) parseValStmt() ast.StmtRef {
	p.advance() // 'val'
	name := p.expectIdentSymbol("identifier after 'val'")
	declType := p.parseOptionalTypeAnnotation()
	p.expect(lexer.ASSIGN, "'=' in 'val' declaration")
	init := p.parseExpr()
	return p.prog.Stmts.AddVal(name, declType, init)
}

func (p *Parser) parseVarStmt() ast.StmtRef {
	p.advance() // 'var'
	name := p.expectIdentSymbol("identifier after 'var'")
	declType := p.parseOptionalTypeAnnotation()
	init := ast.NoExpr
	if p.cur.Kind == lexer.ASSIGN {
		p.advance()
		init = p.parseExpr()
	}
	return p.prog.Stmts.AddVar(name, declType, init)
}

func (p *Parser) parseOptionalTypeAnnotation() *types.TypeDecl {
	if p.cur.Kind != lexer.COLON {
		return nil
	}
	p.advance()
	t := p.parseType()
	return &t
}

func (p *Parser) parseReturnStmt() ast.StmtRef {
	p.advance() // 'return'
	if p.atStmtEnd() {
		return p.prog.Stmts.AddReturn(ast.NoExpr)
	}
	return p.prog.Stmts.AddReturn(p.parseExpr())
}

// parseForStmt parses `for var in start to end { block }`. The range bounds are parsed with
// struct-literal disambiguation suppressed since they are immediately
// followed by the loop's block.
func (p *Parser) parseForStmt() ast.StmtRef {
	p.advance() // 'for'
	name := p.expectIdentSymbol("loop variable after 'for'")
	p.expect(lexer.IN, "'in' in for loop")

	saved := p.noStructLiteral
	p.noStructLiteral = true
	start := p.parseExpr()
	p.expect(lexer.TO, "'to' in for-loop range")
	end := p.parseExpr()
	p.noStructLiteral = saved

	block := p.parseBlockExpr()
	return p.prog.Stmts.AddFor(name, start, end, block)
}

func (p *Parser) parseWhileStmt() ast.StmtRef {
	p.advance() // 'while'

	saved := p.noStructLiteral
	p.noStructLiteral = true
	cond := p.parseExpr()
	p.noStructLiteral = saved

	block := p.parseBlockExpr()
	return p.prog.Stmts.AddWhile(cond, block)
}

func (p *Parser) expectIdentSymbol(what string) symbols.Symbol {
	if p.cur.Kind != lexer.IDENT {
		p.errorf("expected %s, got %q", what, p.cur.Literal)
		return symbols.Invalid
	}
	sym := p.intern2(p.cur.Literal)
	p.advance()
	return sym
}

// parseGenericParams parses an optional `<T, U, ...>` parameter list shared
// by struct declarations, impl blocks and functions.
func (p *Parser) parseGenericParams() []symbols.Symbol {
	if p.cur.Kind != lexer.LT {
		return nil
	}
	p.advance()
	var params []symbols.Symbol
	iterations := 0
	for p.cur.Kind != lexer.GT && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("generic parameter list too long")
			break
		}
		if p.cur.Kind != lexer.IDENT {
			p.errorf("expected generic parameter name, got %q", p.cur.Literal)
			p.advance()
			continue
		}
		params = append(params, p.intern2(p.cur.Literal))
		p.advance()
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.GT, "'>' closing generic parameter list")
	return params
}

// parseParamList parses a function's `(params)` list, recognizing the
// leading `self` / `&self` / `self: Type` receiver forms that mark a
// function as an impl-block method.
func (p *Parser) parseParamList() ([]ast.Param, bool, types.TypeDecl) {
	p.expect(lexer.LPAREN, "'(' starting parameter list")

	var params []ast.Param
	isMethod := false
	receiver := types.TypeDecl{Kind: types.Unknown}

	first := true
	iterations := 0
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("parameter list too long")
			break
		}

		switch {
		case first && p.cur.Kind == lexer.AMP:
			p.advance()
			if p.cur.Kind != lexer.SELFKW {
				p.errorf("expected 'self' after '&', got %q", p.cur.Literal)
			} else {
				p.advance()
			}
			isMethod = true
			receiver = types.TypeDecl{Kind: types.SelfKind}
		case first && p.cur.Kind == lexer.SELFKW:
			p.advance()
			isMethod = true
			receiver = types.TypeDecl{Kind: types.SelfKind}
			if p.cur.Kind == lexer.COLON {
				p.advance()
				receiver = p.parseType()
			}
		case p.cur.Kind == lexer.IDENT:
			pname := p.intern2(p.cur.Literal)
			p.advance()
			p.expect(lexer.COLON, "':' in parameter declaration")
			ptype := p.parseType()
			params = append(params, ast.Param{Name: pname, Type: ptype})
		default:
			p.errorf("expected a parameter, got %q", p.cur.Literal)
			p.advance()
		}

		first = false
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')' closing parameter list")
	return params, isMethod, receiver
}

// parseFunction parses a top-level `fn` declaration or an impl-block
// method.
func (p *Parser) parseFunction(vis ast.Visibility) *ast.FunctionDecl {
	p.advance() // 'fn'
	name := p.expectIdentSymbol("function name after 'fn'")
	generics := p.parseGenericParams()
	params, isMethod, receiver := p.parseParamList()

	var retType *types.TypeDecl
	if p.cur.Kind == lexer.ARROW {
		p.advance()
		t := p.parseType()
		retType = &t
	}

	body := p.parseBlockExpr()
	bodyStmt := p.prog.Stmts.AddExpression(body)

	return &ast.FunctionDecl{
		Name:          name,
		Params:        params,
		ReturnType:    retType,
		Body:          bodyStmt,
		Visibility:    vis,
		GenericParams: generics,
		IsMethod:      isMethod,
		Receiver:      receiver,
	}
}

// parseStructDecl parses `struct Name<generics> { field: Type, ... }`
//.
func (p *Parser) parseStructDecl(vis ast.Visibility) ast.StmtRef {
	p.advance() // 'struct'
	name := p.expectIdentSymbol("struct name after 'struct'")
	generics := p.parseGenericParams()

	p.expect(lexer.LBRACE, "'{' starting struct body")
	p.skipSeparators()

	var fields []ast.StructField
	iterations := 0
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("struct has too many fields (limit %d)", maxBlockStatements)
			break
		}
		fieldVis := ast.Private
		if p.cur.Kind == lexer.PUB {
			p.advance()
			fieldVis = ast.Public
		}
		if p.cur.Kind != lexer.IDENT {
			p.errorf("expected field name, got %q", p.cur.Literal)
			p.advance()
			continue
		}
		fname := p.intern2(p.cur.Literal)
		p.advance()
		p.expect(lexer.COLON, "':' in field declaration")
		ftype := p.parseType()
		fields = append(fields, ast.StructField{Name: fname, Type: ftype, Visibility: fieldVis})

		p.skipSeparators()
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			p.skipSeparators()
			continue
		}
	}
	p.expect(lexer.RBRACE, "'}' closing struct body")
	return p.prog.Stmts.AddStructDecl(name, fields, generics, vis)
}

// parseImplBlock parses `impl<generics> Target { fn* }`. A `Target<T>` generic-argument list on the
// impl target, if present, is consumed and discarded: the checker re-derives
// the struct's own generic parameters from its StructDecl.
func (p *Parser) parseImplBlock() ast.StmtRef {
	p.advance() // 'impl'
	generics := p.parseGenericParams()
	target := p.expectIdentSymbol("target struct name after 'impl'")

	if p.cur.Kind == lexer.LT {
		p.advance()
		iterations := 0
		for p.cur.Kind != lexer.GT && p.cur.Kind != lexer.EOF {
			iterations++
			if iterations > maxBlockStatements {
				break
			}
			p.advance()
		}
		p.expect(lexer.GT, "'>' closing impl target's generic arguments")
	}

	p.expect(lexer.LBRACE, "'{' starting impl body")
	p.skipSeparators()

	var methods []*ast.FunctionDecl
	iterations := 0
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("impl block has too many methods (limit %d)", maxBlockStatements)
			break
		}
		vis := ast.Private
		if p.cur.Kind == lexer.PUB {
			p.advance()
			vis = ast.Public
		}
		if p.cur.Kind != lexer.FN {
			p.errorf("expected 'fn' in impl body, got %q", p.cur.Literal)
			p.advance()
			continue
		}
		methods = append(methods, p.parseFunction(vis))
		p.skipSeparators()
	}
	p.expect(lexer.RBRACE, "'}' closing impl body")
	return p.prog.Stmts.AddImplBlock(target, methods, generics)
}
