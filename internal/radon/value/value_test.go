package value

import (
	"math/big"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{KindBoolean, "Boolean"},
		{KindInteger, "Integer"},
		{KindMap, "Map"},
		{Kind(200), "Kind(200)"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestFloatString(t *testing.T) {
	cases := []struct {
		f    Float
		want string
	}{
		{Float(3.5), "3.5"},
		{Float(4), "4.0"},
		{Float(0), "0.0"},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.want {
			t.Errorf("Float(%v).String() = %q, want %q", c.f, got, c.want)
		}
	}
}

func TestArrayIsHomogeneous(t *testing.T) {
	if !(Array{}).IsHomogeneous() {
		t.Fatal("empty array must be vacuously homogeneous")
	}
	homog := Array{NewInteger(1), NewInteger(2), NewInteger(3)}
	if !homog.IsHomogeneous() {
		t.Fatal("all-Integer array should be homogeneous")
	}
	mixed := Array{NewInteger(1), String("x")}
	if mixed.IsHomogeneous() {
		t.Fatal("Integer+String array must not be homogeneous")
	}
}

func TestMapPreservesInsertionOrderOnOverwrite(t *testing.T) {
	m := NewMap()
	m.Set("b", NewInteger(1))
	m.Set("a", NewInteger(2))
	m.Set("b", NewInteger(3))

	if got := m.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("Keys() = %v, want [b a]", got)
	}
	v, ok := m.Get("b")
	if !ok || v.(Integer).V.Int64() != 3 {
		t.Fatalf("Get(b) = %v, want overwritten value 3", v)
	}
}

func TestMapSortedKeys(t *testing.T) {
	m := NewMap()
	m.Set("zeta", Boolean(true))
	m.Set("alpha", Boolean(false))
	got := m.SortedKeys()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Fatalf("SortedKeys() = %v, want [alpha zeta]", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := NewMap()
	m.Set("count", NewInteger(42))
	m.Set("ok", Boolean(true))

	cases := []Value{
		Boolean(true),
		NewInteger(-7),
		Float(1.25),
		String("hello"),
		Bytes([]byte{0x01, 0x02, 0x03}),
		Array{NewInteger(1), NewInteger(2)},
		m,
		NewError(DivisionByZero, StageAggregate, 3, "division by zero").WithField("opcode", "0x25"),
	}

	for _, want := range cases {
		data, err := Encode(want)
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", want, err)
		}
		got, err := DecodeAny(data)
		if err != nil {
			t.Fatalf("DecodeAny(%x) error: %v", data, err)
		}
		if got.Kind() != want.Kind() {
			t.Fatalf("round trip kind mismatch: got %v, want %v", got.Kind(), want.Kind())
		}
		if got.String() != want.String() {
			t.Fatalf("round trip mismatch: got %q, want %q", got.String(), want.String())
		}
	}
}

func TestEncodeMapIsKeySorted(t *testing.T) {
	a := NewMap()
	a.Set("zeta", NewInteger(1))
	a.Set("alpha", NewInteger(2))

	b := NewMap()
	b.Set("alpha", NewInteger(2))
	b.Set("zeta", NewInteger(1))

	encA, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode(a) error: %v", err)
	}
	encB, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode(b) error: %v", err)
	}
	if string(encA) != string(encB) {
		t.Fatalf("maps inserted in different order must encode identically: %x != %x", encA, encB)
	}
}

func TestAsIntegerFromFloat(t *testing.T) {
	i, errv := AsInteger(Float(4))
	if errv != nil {
		t.Fatalf("AsInteger(4.0) unexpected error: %v", errv)
	}
	if i.V.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("AsInteger(4.0) = %v, want 4", i)
	}

	i, errv = AsInteger(Float(4.5))
	if errv != nil {
		t.Fatalf("AsInteger(4.5) unexpected error: %v", errv)
	}
	if i.V.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("AsInteger(4.5) = %v, want 4 (truncated toward zero)", i)
	}

	i, errv = AsInteger(Float(-4.7))
	if errv != nil {
		t.Fatalf("AsInteger(-4.7) unexpected error: %v", errv)
	}
	if i.V.Cmp(big.NewInt(-4)) != 0 {
		t.Fatalf("AsInteger(-4.7) = %v, want -4 (truncated toward zero)", i)
	}

	_, errv = AsInteger(Float(1e40))
	if errv == nil || errv.ErrorKind != Overflow {
		t.Fatalf("AsInteger(1e40) should fail with Overflow, got %v", errv)
	}
}

func TestAsBooleanRejectsNonBoolLikeInteger(t *testing.T) {
	_, errv := AsBoolean(NewInteger(2))
	if errv == nil {
		t.Fatal("AsBoolean(2) should fail: only 0/1 are boolean-like")
	}
	b, errv := AsBoolean(NewInteger(1))
	if errv != nil || !bool(b) {
		t.Fatalf("AsBoolean(1) = %v, %v, want true, nil", b, errv)
	}
}

func TestAsFloatRejectsLossyLargeInteger(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 60)
	_, errv := AsFloat(Integer{V: huge})
	if errv == nil {
		t.Fatal("AsFloat of a >2^53 integer should be refused as lossy")
	}
}
