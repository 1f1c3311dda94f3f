package types

import (
	"testing"

	"github.com/toylang/toylang/internal/symbols"
)

func TestIsIntegerOnlyInt64AndUInt64(t *testing.T) {
	if !Simple(Int64).IsInteger() || !Simple(UInt64).IsInteger() {
		t.Fatalf("Int64/UInt64 must report IsInteger")
	}
	if Simple(Bool).IsInteger() || Simple(String).IsInteger() {
		t.Fatalf("non-integer kinds must not report IsInteger")
	}
}

func TestIsConcreteRejectsNumberAndUnknown(t *testing.T) {
	if Simple(Number).IsConcrete() || Simple(Unknown).IsConcrete() {
		t.Fatalf("Number/Unknown must not be concrete")
	}
	if !Simple(Int64).IsConcrete() {
		t.Fatalf("Int64 must be concrete")
	}
}

func TestIsConcreteRecursesIntoContainers(t *testing.T) {
	arr := Array(Simple(Number), 3)
	if arr.IsConcrete() {
		t.Fatalf("array of Number must not be concrete")
	}
	arr2 := Array(Simple(Int64), 3)
	if !arr2.IsConcrete() {
		t.Fatalf("array of Int64 must be concrete")
	}
	d := Dict(Simple(String), Simple(Number))
	if d.IsConcrete() {
		t.Fatalf("dict with Number value must not be concrete")
	}
	tup := Tuple(Simple(Int64), Simple(Number))
	if tup.IsConcrete() {
		t.Fatalf("tuple containing Number must not be concrete")
	}
}

func TestEqualTreatsIdentifierAndStructAsSynonyms(t *testing.T) {
	in := symbols.New()
	name := in.Intern("Point")
	a := Identifier(name)
	b := Struct(name)
	if !a.Equal(b) {
		t.Fatalf("Identifier(name) and Struct(name) must compare equal")
	}
}

func TestEqualArrayComparesSizeAndElem(t *testing.T) {
	a := Array(Simple(Int64), 3)
	b := Array(Simple(Int64), 3)
	c := Array(Simple(Int64), 4)
	d := Array(Simple(UInt64), 3)
	if !a.Equal(b) {
		t.Fatalf("identical arrays must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("arrays with different sizes must not be equal")
	}
	if a.Equal(d) {
		t.Fatalf("arrays with different elem types must not be equal")
	}
}

func TestEqualDictComparesKeyAndVal(t *testing.T) {
	a := Dict(Simple(String), Simple(Int64))
	b := Dict(Simple(String), Simple(Int64))
	c := Dict(Simple(String), Simple(UInt64))
	if !a.Equal(b) {
		t.Fatalf("identical dicts must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("dicts with different value types must not be equal")
	}
}

func TestEqualGenericComparesName(t *testing.T) {
	in := symbols.New()
	t1 := in.Intern("T")
	u := in.Intern("U")
	if !Generic(t1).Equal(Generic(t1)) {
		t.Fatalf("same-named generics must be equal")
	}
	if Generic(t1).Equal(Generic(u)) {
		t.Fatalf("differently-named generics must not be equal")
	}
}
