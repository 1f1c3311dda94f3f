package parser

import (
	"strconv"

	"github.com/toylang/toylang/internal/lexer"
	"github.com/toylang/toylang/internal/types"
)

// parseType parses a type annotation, following the natural reading of
// TypeDecl's variants: `[T; N]` for Array, `Dict<K, V>` for Dict, and
// `(T1, T2, ...)` for Tuple.
func (p *Parser) parseType() types.TypeDecl {
	switch p.cur.Kind {
	case lexer.TY_BOOL:
		p.advance()
		return types.Simple(types.Bool)
	case lexer.TY_I64:
		p.advance()
		return types.Simple(types.Int64)
	case lexer.TY_U64:
		p.advance()
		return types.Simple(types.UInt64)
	case lexer.TY_STRING:
		p.advance()
		return types.Simple(types.String)
	case lexer.TY_PTR:
		p.advance()
		return types.Simple(types.Ptr)
	case lexer.SELFKW:
		p.advance()
		return types.TypeDecl{Kind: types.SelfKind}
	case lexer.LBRACKET:
		return p.parseArrayType()
	case lexer.LPAREN:
		return p.parseTupleType()
	case lexer.IDENT:
		return p.parseIdentifierType()
	default:
		p.errorf("expected a type, got %q", p.cur.Literal)
		p.advance()
		return types.Simple(types.Unknown)
	}
}

func (p *Parser) parseArrayType() types.TypeDecl {
	p.advance() // '['
	elem := p.parseType()
	p.expect(lexer.SEMI, "';' in array type")
	size := 0
	if p.cur.Kind == lexer.INTEGER || p.cur.Kind == lexer.UINT64LIT || p.cur.Kind == lexer.INT64LIT {
		if n, err := strconv.Atoi(p.cur.Literal); err == nil {
			size = n
		}
		p.advance()
	} else {
		p.errorf("expected array size, got %q", p.cur.Literal)
	}
	p.expect(lexer.RBRACKET, "']' closing array type")
	return types.Array(elem, size)
}

func (p *Parser) parseTupleType() types.TypeDecl {
	p.advance() // '('
	var elems []types.TypeDecl
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		elems = append(elems, p.parseType())
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')' closing tuple type")
	return types.Tuple(elems...)
}

// parseIdentifierType handles a bare struct/generic-parameter name, and
// the one special-cased generic container spelled `Dict<K, V>`, which
// follows the same `<...>` generic-argument convention used for struct
// generic parameters.
func (p *Parser) parseIdentifierType() types.TypeDecl {
	text := p.cur.Literal
	name := p.intern2(text)
	p.advance()

	if text == "Dict" && p.cur.Kind == lexer.LT {
		p.advance()
		key := p.parseType()
		p.expect(lexer.COMMA, "',' between Dict key and value types")
		val := p.parseType()
		p.expect(lexer.GT, "'>' closing Dict type")
		return types.Dict(key, val)
	}

	return types.Identifier(name)
}
