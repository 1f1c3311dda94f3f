package lexer

import "testing"

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	toks := collect(`val x = 10u64 + 5i64`)
	want := []TokenKind{VAL, IDENT, ASSIGN, UINT64LIT, PLUS, INT64LIT, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexUnsuffixedIntegerStaysNumber(t *testing.T) {
	toks := collect(`5`)
	if toks[0].Kind != INTEGER || toks[0].Literal != "5" {
		t.Fatalf("got %+v, want INTEGER(5)", toks[0])
	}
}

func TestLexNewlineIsSignificant(t *testing.T) {
	toks := collect("val x = 1\nval y = 2")
	foundNewline := false
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			foundNewline = true
		}
	}
	if !foundNewline {
		t.Fatalf("expected a NEWLINE token, got %v", kinds(toks))
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks := collect(`"hi\nthere"`)
	if toks[0].Kind != STRINGLIT || toks[0].Literal != "hi\nthere" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexUnterminatedString(t *testing.T) {
	toks := collect(`"hi`)
	if toks[0].Kind != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %+v", toks[0])
	}
}

func TestLexQualifiedAndSlicePunctuation(t *testing.T) {
	toks := collect(`a::b[1..2]`)
	want := []TokenKind{IDENT, COLONCOLON, IDENT, LBRACKET, INTEGER, DOTDOT, INTEGER, RBRACKET, EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLexKeywordsAndComment(t *testing.T) {
	l := New("fn main() { # comment\n}", WithPreserveComments(true))
	var kindsGot []TokenKind
	for {
		tok := l.NextToken()
		kindsGot = append(kindsGot, tok.Kind)
		if tok.Kind == EOF {
			break
		}
	}
	foundComment := false
	for _, k := range kindsGot {
		if k == COMMENT {
			foundComment = true
		}
	}
	if !foundComment {
		t.Fatalf("expected COMMENT token when preserveComments is set, got %v", kindsGot)
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	l := New("ab\ncd")
	tok := l.NextToken() // "ab"
	if tok.Pos.Line != 1 {
		t.Fatalf("got line %d, want 1", tok.Pos.Line)
	}
	l.NextToken() // newline
	tok = l.NextToken() // "cd"
	if tok.Pos.Line != 2 {
		t.Fatalf("got line %d, want 2", tok.Pos.Line)
	}
}
