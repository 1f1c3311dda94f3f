package parser

import (
	"strconv"
	"strings"

	"github.com/toylang/toylang/internal/ast"
	"github.com/toylang/toylang/internal/lexer"
	"github.com/toylang/toylang/internal/symbols"
)

var builtinFunctions = map[string]ast.BuiltinFunction{
	"__builtin_heap_alloc":   ast.BuiltinHeapAlloc,
	"__builtin_heap_free":    ast.BuiltinHeapFree,
	"__builtin_heap_realloc": ast.BuiltinHeapRealloc,
	"__builtin_ptr_read":     ast.BuiltinPtrRead,
	"__builtin_ptr_write":    ast.BuiltinPtrWrite,
	"__builtin_ptr_is_null":  ast.BuiltinPtrIsNull,
	"__builtin_mem_copy":     ast.BuiltinMemCopy,
	"__builtin_mem_move":     ast.BuiltinMemMove,
	"__builtin_mem_set":      ast.BuiltinMemSet,
}

func (p *Parser) parsePrimary() ast.ExprRef {
	if !p.enter() {
		defer p.exit()
		return p.syntheticNull()
	}
	defer p.exit()

	pos := p.cur.Pos
	var expr ast.ExprRef

	switch p.cur.Kind {
	case lexer.INT64LIT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		expr = p.prog.Exprs.AddInt64(v)
		p.advance()
	case lexer.UINT64LIT:
		v, _ := strconv.ParseUint(p.cur.Literal, 10, 64)
		expr = p.prog.Exprs.AddUInt64(v)
		p.advance()
	case lexer.INTEGER:
		expr = p.prog.Exprs.AddNumber(p.intern2(p.cur.Literal))
		p.advance()
	case lexer.STRINGLIT:
		expr = p.prog.Exprs.AddString(p.intern2(p.cur.Literal))
		p.advance()
	case lexer.TRUE:
		expr = p.prog.Exprs.AddBool(true)
		p.advance()
	case lexer.FALSE:
		expr = p.prog.Exprs.AddBool(false)
		p.advance()
	case lexer.NULLKW:
		expr = p.prog.Exprs.AddNull()
		p.advance()
	case lexer.SELFKW:
		expr = p.prog.Exprs.AddIdentifier(p.intern2("self"))
		p.advance()
	case lexer.IF:
		expr = p.parseIfExpr()
	case lexer.LBRACE:
		expr = p.parseBlockExpr()
	case lexer.LBRACKET:
		expr = p.parseArrayOrDictLiteral()
	case lexer.LPAREN:
		expr = p.parseParenOrTuple()
	case lexer.IDENT:
		expr = p.parseIdentifierLed()
	default:
		p.errorf("unexpected token %q", p.cur.Literal)
		p.advance()
		expr = p.syntheticNull()
	}

	p.prog.Locations.SetExprLoc(expr, pos)
	return expr
}

// parseIdentifierLed parses whatever can start with an identifier:
// a plain Identifier, a qualified::path (lowered to a Call when followed
// by '('), a Call, a builtin call, or a struct literal.
func (p *Parser) parseIdentifierLed() ast.ExprRef {
	name := p.cur.Literal
	sym := p.intern2(name)
	p.advance()

	if strings.HasPrefix(name, "__builtin_") {
		if kind, ok := builtinFunctions[name]; ok {
			args := p.parseCallArgs()
			return p.prog.Exprs.AddBuiltinCall(kind, args)
		}
	}

	if p.cur.Kind == lexer.COLONCOLON {
		segs := []string{name}
		for p.cur.Kind == lexer.COLONCOLON {
			p.advance()
			if p.cur.Kind != lexer.IDENT {
				p.errorf("expected identifier after '::'")
				break
			}
			segs = append(segs, p.cur.Literal)
			p.advance()
		}
		if p.cur.Kind == lexer.LPAREN {
			// `a::b::c(args)` becomes a Call whose name is the trailing
			// component.
			trailing := p.intern2(segs[len(segs)-1])
			args := p.parseCallArgs()
			return p.prog.Exprs.AddCall(trailing, args)
		}
		path := make([]symbols.Symbol, len(segs))
		for i, s := range segs {
			path[i] = p.intern2(s)
		}
		return p.prog.Exprs.AddQualifiedIdentifier(path)
	}

	if p.cur.Kind == lexer.LPAREN {
		args := p.parseCallArgs()
		return p.prog.Exprs.AddCall(sym, args)
	}

	if p.cur.Kind == lexer.LBRACE && !p.noStructLiteral {
		return p.parseStructLiteralBody(sym)
	}

	return p.prog.Exprs.AddIdentifier(sym)
}

// parseIfExpr parses `if cond { then } [elif cond { block }]* [else { block }]`
//. Condition parsing suppresses struct-literal
// disambiguation, since a bare `Ident{` there would be read as the block.
func (p *Parser) parseIfExpr() ast.ExprRef {
	p.advance() // 'if'

	cond := p.parseConditionNoStructLiteral()
	then := p.parseBlockExpr()

	var elifs []ast.ElifArm
	iterations := 0
	for p.cur.Kind == lexer.ELIF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("too many 'elif' arms")
			break
		}
		p.advance()
		c := p.parseConditionNoStructLiteral()
		b := p.parseBlockExpr()
		elifs = append(elifs, ast.ElifArm{Cond: c, Block: b})
	}

	els := ast.NoExpr
	if p.cur.Kind == lexer.ELSE {
		p.advance()
		els = p.parseBlockExpr()
	}

	return p.prog.Exprs.AddIfElifElse(cond, then, elifs, els)
}

func (p *Parser) parseConditionNoStructLiteral() ast.ExprRef {
	saved := p.noStructLiteral
	p.noStructLiteral = true
	cond := p.parseExpr()
	p.noStructLiteral = saved
	return cond
}

// parseArrayOrDictLiteral parses `[elem, ...]` or `[key: val, ...]`,
// disambiguated by whether a `:` follows the first element.
func (p *Parser) parseArrayOrDictLiteral() ast.ExprRef {
	p.advance() // '['
	p.skipNewlines()

	if p.cur.Kind == lexer.RBRACKET {
		p.advance()
		return p.prog.Exprs.AddArrayLiteral(nil)
	}

	first := p.parseExpr()
	p.skipNewlines()

	if p.cur.Kind == lexer.COLON {
		p.advance()
		val := p.parseExpr()
		entries := []ast.DictEntry{{Key: first, Val: val}}
		p.skipNewlines()
		iterations := 0
		for p.cur.Kind == lexer.COMMA {
			iterations++
			if iterations > maxBlockStatements {
				p.errorf("dict literal too long")
				break
			}
			p.advance()
			p.skipNewlines()
			if p.cur.Kind == lexer.RBRACKET {
				break
			}
			k := p.parseExpr()
			p.expect(lexer.COLON, "':' between dict key and value")
			v := p.parseExpr()
			entries = append(entries, ast.DictEntry{Key: k, Val: v})
			p.skipNewlines()
		}
		p.expect(lexer.RBRACKET, "']' closing dict literal")
		return p.prog.Exprs.AddDictLiteral(entries)
	}

	elems := []ast.ExprRef{first}
	iterations := 0
	for p.cur.Kind == lexer.COMMA {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("array literal too long")
			break
		}
		p.advance()
		p.skipNewlines()
		if p.cur.Kind == lexer.RBRACKET {
			break
		}
		elems = append(elems, p.parseExpr())
		p.skipNewlines()
	}
	p.expect(lexer.RBRACKET, "']' closing array literal")
	return p.prog.Exprs.AddArrayLiteral(elems)
}

// parseParenOrTuple parses `()` (empty tuple), `(e,)` (one-tuple), `(e, ...)`
// (n-tuple) and bare `(e)` (grouping), per "Tuple literals".
func (p *Parser) parseParenOrTuple() ast.ExprRef {
	p.advance() // '('
	saved := p.noStructLiteral
	p.noStructLiteral = false
	p.skipNewlines()

	if p.cur.Kind == lexer.RPAREN {
		p.advance()
		p.noStructLiteral = saved
		return p.prog.Exprs.AddTupleLiteral(nil)
	}

	first := p.parseExpr()
	p.skipNewlines()

	if p.cur.Kind == lexer.COMMA {
		elems := []ast.ExprRef{first}
		iterations := 0
		for p.cur.Kind == lexer.COMMA {
			iterations++
			if iterations > maxBlockStatements {
				p.errorf("tuple literal too long")
				break
			}
			p.advance()
			p.skipNewlines()
			if p.cur.Kind == lexer.RPAREN {
				break
			}
			elems = append(elems, p.parseExpr())
			p.skipNewlines()
		}
		p.expect(lexer.RPAREN, "')' closing tuple literal")
		p.noStructLiteral = saved
		return p.prog.Exprs.AddTupleLiteral(elems)
	}

	p.expect(lexer.RPAREN, "')' closing parenthesized expression")
	p.noStructLiteral = saved
	return first
}

// parseStructLiteralBody parses the `{ field: expr, ... }` suffix of a
// struct literal.
func (p *Parser) parseStructLiteralBody(name symbols.Symbol) ast.ExprRef {
	p.advance() // '{'
	p.skipNewlines()

	var fields []ast.StructFieldInit
	iterations := 0
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		iterations++
		if iterations > maxBlockStatements {
			p.errorf("struct literal has too many fields (limit %d)", maxBlockStatements)
			break
		}
		if p.cur.Kind != lexer.IDENT {
			p.errorf("expected field name, got %q", p.cur.Literal)
			p.advance()
			continue
		}
		fname := p.intern2(p.cur.Literal)
		p.advance()
		p.expect(lexer.COLON, "':' after struct literal field name")
		val := p.parseExpr()
		fields = append(fields, ast.StructFieldInit{Name: fname, Expr: val})
		p.skipNewlines()
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE, "'}' closing struct literal")
	return p.prog.Exprs.AddStructLiteral(name, fields)
}
