// Package symbols implements the string interner shared by every later
// compilation stage. Identifiers, string literals, and field names are all
// resolved to a Symbol once and compared by integer equality afterward.
package symbols

// Symbol is an opaque, interned reference to a piece of source text.
// Two Symbols are equal iff the text they were interned from is equal.
type Symbol uint32

// Invalid is never returned by Intern; it is a convenient zero value for
// "no symbol yet" fields in the AST pools.
const Invalid Symbol = 0

// Interner maps source text to stable Symbols and back. It is append-only
// for the lifetime of a single compilation: once a Symbol is handed out it
// resolves to the same text forever.
type Interner struct {
	strings []string
	index   map[string]Symbol
}

// New creates an empty Interner. Symbol 0 (Invalid) is reserved, so the
// first call to Intern returns Symbol(1).
func New() *Interner {
	return &Interner{
		strings: []string{""},
		index:   make(map[string]Symbol),
	}
}

// Intern returns the Symbol for text, interning it if this is the first
// time text has been seen. Intern(s) == Intern(s) for any repeated call
// with equal text.
func (in *Interner) Intern(text string) Symbol {
	if sym, ok := in.index[text]; ok {
		return sym
	}
	sym := Symbol(len(in.strings))
	in.strings = append(in.strings, text)
	in.index[text] = sym
	return sym
}

// Resolve returns the text a Symbol was interned from. It panics on an
// out-of-range Symbol since that can only indicate a compiler bug (a
// Symbol from a different Interner, or index corruption).
func (in *Interner) Resolve(sym Symbol) string {
	return in.strings[sym]
}

// Len reports how many distinct symbols have been interned so far,
// excluding the reserved Invalid entry.
func (in *Interner) Len() int {
	return len(in.strings) - 1
}
