// Package types defines toylang's TypeDecl model: the small closed set of
// type kinds the checker reasons over, plus the compatibility rules that
// are shared between the type checker and the evaluator's defensive
// runtime checks.
package types

import (
	"fmt"

	"github.com/toylang/toylang/internal/symbols"
)

// Kind discriminates the variants of TypeDecl.
type Kind int

const (
	Unknown Kind = iota // no concrete type yet: null literals, empty containers
	Number              // undecided integer literal kind; must finalize before evaluation
	Unit
	Bool
	Int64
	UInt64
	String
	Ptr
	IdentifierKind // a bare name, resolved later to Struct or a module member
	StructKind
	ArrayKind
	DictKind
	TupleKind
	GenericKind
	SelfKind
)

// TypeDecl is toylang's type value. Composite kinds carry extra payload in
// the Elems/Size/Key/Val fields; which fields are meaningful depends on
// Kind, the same discipline the AST pool uses for its side-arrays.
type TypeDecl struct {
	Kind Kind

	Name symbols.Symbol // IdentifierKind, StructKind, GenericKind

	Elems []TypeDecl // ArrayKind element types (width 1 outside tuples), TupleKind members
	Size  int        // ArrayKind fixed size

	Key *TypeDecl // DictKind, pointer to break the recursive value type
	Val *TypeDecl // DictKind, pointer to break the recursive value type
}

func Simple(k Kind) TypeDecl { return TypeDecl{Kind: k} }

func Identifier(name symbols.Symbol) TypeDecl { return TypeDecl{Kind: IdentifierKind, Name: name} }

func Struct(name symbols.Symbol) TypeDecl { return TypeDecl{Kind: StructKind, Name: name} }

func Generic(name symbols.Symbol) TypeDecl { return TypeDecl{Kind: GenericKind, Name: name} }

func Array(elem TypeDecl, size int) TypeDecl {
	return TypeDecl{Kind: ArrayKind, Elems: []TypeDecl{elem}, Size: size}
}

func (t TypeDecl) ArrayElem() TypeDecl {
	if len(t.Elems) == 0 {
		return Simple(Unknown)
	}
	return t.Elems[0]
}

func Dict(key, val TypeDecl) TypeDecl {
	return TypeDecl{Kind: DictKind, Key: &key, Val: &val}
}

func Tuple(elems ...TypeDecl) TypeDecl {
	return TypeDecl{Kind: TupleKind, Elems: elems}
}

// IsInteger reports whether t is one of the two concrete integer kinds.
func (t TypeDecl) IsInteger() bool {
	return t.Kind == Int64 || t.Kind == UInt64
}

// IsConcrete reports whether t is fully resolved: neither Number nor
// Unknown, recursively through container element types. The checker's
// finalization pass relies on this to confirm every untyped Number
// literal has been defaulted before evaluation begins.
func (t TypeDecl) IsConcrete() bool {
	switch t.Kind {
	case Number, Unknown:
		return false
	case ArrayKind:
		return t.ArrayElem().IsConcrete()
	case DictKind:
		return t.Key != nil && t.Key.IsConcrete() && t.Val != nil && t.Val.IsConcrete()
	case TupleKind:
		for _, e := range t.Elems {
			if !e.IsConcrete() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Equal reports structural equality, treating IdentifierKind and
// StructKind with the same Name as synonyms or Identifier(name) — treated as synonyms for lookup").
func (t TypeDecl) Equal(other TypeDecl) bool {
	nk := normalizeSynonym(t.Kind)
	on := normalizeSynonym(other.Kind)
	if nk != on {
		return false
	}
	switch nk {
	case IdentifierKind, GenericKind:
		return t.Name == other.Name
	case ArrayKind:
		return t.Size == other.Size && t.ArrayElem().Equal(other.ArrayElem())
	case DictKind:
		if t.Val == nil || other.Val == nil {
			return t.Val == other.Val
		}
		if t.Key == nil || other.Key == nil {
			return t.Key == other.Key
		}
		return t.Key.Equal(*other.Key) && t.Val.Equal(*other.Val)
	case TupleKind:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// normalizeSynonym folds StructKind into IdentifierKind for comparison
// purposes only; the caller still compares Name.
func normalizeSynonym(k Kind) Kind {
	if k == StructKind {
		return IdentifierKind
	}
	return k
}

// String renders a TypeDecl for diagnostics. It does not need an
// Interner for primitive kinds; IdentifierKind/StructKind/GenericKind
// render their symbol's numeric id since callers needing text pass
// through diag formatting with an Interner instead.
func (t TypeDecl) String() string {
	switch t.Kind {
	case Unknown:
		return "<unknown>"
	case Number:
		return "<number>"
	case Unit:
		return "unit"
	case Bool:
		return "bool"
	case Int64:
		return "i64"
	case UInt64:
		return "u64"
	case String:
		return "string"
	case Ptr:
		return "ptr"
	case IdentifierKind:
		return fmt.Sprintf("ident#%d", t.Name)
	case StructKind:
		return fmt.Sprintf("struct#%d", t.Name)
	case ArrayKind:
		return fmt.Sprintf("[%s; %d]", t.ArrayElem(), t.Size)
	case DictKind:
		if t.Val == nil || t.Key == nil {
			return "dict<?>"
		}
		return fmt.Sprintf("dict<%s, %s>", *t.Key, *t.Val)
	case TupleKind:
		return fmt.Sprintf("tuple%v", t.Elems)
	case GenericKind:
		return fmt.Sprintf("generic#%d", t.Name)
	case SelfKind:
		return "Self"
	default:
		return "?"
	}
}
