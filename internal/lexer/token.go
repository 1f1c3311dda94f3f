package lexer

// TokenKind identifies the lexical category of a Token. Kinds are
// grouped by category: literals first, then keywords, then operators
// and punctuation.
type TokenKind int

const (
	ILLEGAL TokenKind = iota
	EOF
	NEWLINE // statement separator inside blocks; preserved, not skipped
	COMMENT // "#" to end of line; emitted so the parser can skip it explicitly

	IDENT
	INT64LIT  // literal with an i64 suffix
	UINT64LIT // literal with a u64 suffix
	INTEGER   // unsuffixed integer literal, text kept for later inference
	STRINGLIT

	literalEnd

	// Keywords
	FN
	VAL
	VAR
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	TO
	BREAK
	CONTINUE
	RETURN
	STRUCT
	IMPL
	PUB
	PACKAGE
	IMPORT
	TRUE
	FALSE
	NULLKW
	SELFKW

	// Primitive type keywords
	TY_BOOL
	TY_I64
	TY_U64
	TY_STRING
	TY_PTR

	keywordEnd

	// Operators and punctuation
	ASSIGN    // =
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	AMP       // &
	PIPE      // |
	CARET     // ^
	TILDE     // ~
	BANG      // !
	ANDAND    // &&
	OROR      // ||
	EQ        // ==
	NEQ       // !=
	LT        // <
	LE        // <=
	GT        // >
	GE        // >=
	SHL       // <<
	SHR       // >>
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	DOT       // .
	DOTDOT    // ..
	COLON     // :
	COLONCOLON // ::
	ARROW     // ->
	SEMI      // ;
)

var keywords = map[string]TokenKind{
	"fn": FN, "val": VAL, "var": VAR, "if": IF, "elif": ELIF, "else": ELSE,
	"while": WHILE, "for": FOR, "in": IN, "to": TO, "break": BREAK,
	"continue": CONTINUE, "return": RETURN, "struct": STRUCT, "impl": IMPL,
	"pub": PUB, "package": PACKAGE, "import": IMPORT, "true": TRUE,
	"false": FALSE, "null": NULLKW, "self": SELFKW,
	"bool": TY_BOOL, "i64": TY_I64, "u64": TY_U64, "string": TY_STRING, "ptr": TY_PTR,
}

// LookupIdent classifies text as a keyword TokenKind, or IDENT if it is not
// one of the reserved words.
func LookupIdent(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return IDENT
}

func (k TokenKind) IsKeyword() bool {
	return k > literalEnd && k < keywordEnd
}

var tokenKindNames = [...]string{
	"ILLEGAL", "EOF", "NEWLINE", "COMMENT",
	"IDENT", "INT64LIT", "UINT64LIT", "INTEGER", "STRINGLIT",
	"",
	"FN", "VAL", "VAR", "IF", "ELIF", "ELSE", "WHILE", "FOR", "IN", "TO",
	"BREAK", "CONTINUE", "RETURN", "STRUCT", "IMPL", "PUB", "PACKAGE",
	"IMPORT", "TRUE", "FALSE", "NULL", "SELF",
	"BOOL", "I64", "U64", "STRING", "PTR",
	"",
	"ASSIGN", "PLUS", "MINUS", "STAR", "SLASH", "AMP", "PIPE", "CARET",
	"TILDE", "BANG", "ANDAND", "OROR", "EQ", "NEQ", "LT", "LE", "GT", "GE",
	"SHL", "SHR", "LPAREN", "RPAREN", "LBRACE", "RBRACE", "LBRACKET",
	"RBRACKET", "COMMA", "DOT", "DOTDOT", "COLON", "COLONCOLON", "ARROW",
	"SEMI",
}

// String returns the name of a TokenKind constant, used by the CLI's
// --show-type flag and diagnostic-adjacent debugging output.
func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) && tokenKindNames[k] != "" {
		return tokenKindNames[k]
	}
	return "UNKNOWN"
}

// Position is a 1-based line/column plus a 0-based byte offset, used
// throughout diagnostics to point at the offending source location.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is the unit the Lexer produces and the Parser consumes.
type Token struct {
	Kind    TokenKind
	Literal string // raw source text, used for Integer/Ident/String payloads
	Pos     Position
}

func (t Token) String() string {
	return t.Literal
}
