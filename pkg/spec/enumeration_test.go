package spec

import (
	"math/big"
	"testing"
)

func strPtr(s string) *string { return &s }

func row(key int64, value string, requires *string) Enumeration {
	return NewEnumeration(EnumerationDef{Key: big.NewInt(key), Value: value, Requires: requires})
}

func TestFindByKey(t *testing.T) {
	table := NewEnumerations([]Enumeration{
		row(0, "zero", nil),
		row(1, "one", strPtr("C1")),
		row(1, "one-again", strPtr("C9")),
	})

	e, ok := table.FindByKey(big.NewInt(1))
	if !ok {
		t.Fatal("expected key 1 to be found")
	}
	if e.Value() != "one" {
		t.Errorf("value = %q, want first matching row", e.Value())
	}

	if _, ok := table.FindByKey(big.NewInt(2)); ok {
		t.Error("key 2 should not be found")
	}
	if _, ok := table.FindByKey(nil); ok {
		t.Error("nil key should not be found")
	}

	var absent *Enumerations
	if _, ok := absent.FindByKey(big.NewInt(0)); ok {
		t.Error("nil table should find nothing")
	}
	if _, ok := NewEnumerations(nil).FindByKey(big.NewInt(0)); ok {
		t.Error("empty table should find nothing")
	}
}

func TestFindByKey_ArbitraryPrecision(t *testing.T) {
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // 2^128-1
	table := NewEnumerations([]Enumeration{
		NewEnumeration(EnumerationDef{Key: huge, Value: "max", Requires: strPtr("MAX")}),
	})

	key := new(big.Int).Lsh(big.NewInt(1), 128)
	key.Sub(key, big.NewInt(1))
	if e, ok := table.FindByKey(key); !ok || e.Value() != "max" {
		t.Errorf("FindByKey(2^128-1) = %v, %v", e.Value(), ok)
	}

	key.Sub(key, big.NewInt(1))
	if _, ok := table.FindByKey(key); ok {
		t.Error("2^128-2 should not match")
	}
}

func TestEnumerationKeyIsCopied(t *testing.T) {
	key := big.NewInt(7)
	e := NewEnumeration(EnumerationDef{Key: key})
	key.SetInt64(8)
	if !e.KeyEquals(big.NewInt(7)) {
		t.Error("mutating the definition key changed the row")
	}
	e.Key().SetInt64(9)
	if !e.KeyEquals(big.NewInt(7)) {
		t.Error("mutating Key() result changed the row")
	}
}

func TestFindAllByValue(t *testing.T) {
	table := NewEnumerations([]Enumeration{
		row(0, "a", nil),
		row(1, "b", nil),
		row(2, "a", nil),
	})

	got := table.FindAllByValue("a")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].KeyEquals(big.NewInt(0)) || !got[1].KeyEquals(big.NewInt(2)) {
		t.Error("rows not in table order")
	}

	if got := table.FindAllByValue(""); len(got) != 0 {
		t.Errorf("empty value matched %d rows", len(got))
	}
	if got := table.FindAllByValue("z"); got == nil || len(got) != 0 {
		t.Errorf("missing value = %v, want empty non-nil", got)
	}
	var absent *Enumerations
	if got := absent.FindAllByValue("a"); len(got) != 0 {
		t.Errorf("nil table matched %d rows", len(got))
	}
}

func TestRequiresOf(t *testing.T) {
	table := NewEnumerations([]Enumeration{
		row(0, "none", nil),
		row(1, "multi", strPtr("X, Y")),
		row(2, "empty", strPtr("")),
	})

	if tags := RequiresOf(table.FindByKey(big.NewInt(1))); !tags.Equal(NewTags("X", "Y")) {
		t.Errorf("tags = %v, want X, Y", tags)
	}
	if tags := RequiresOf(table.FindByKey(big.NewInt(0))); tags.Len() != 0 {
		t.Errorf("absent requires = %v, want empty", tags)
	}
	if tags := RequiresOf(table.FindByKey(big.NewInt(2))); tags.Len() != 0 {
		t.Errorf("empty requires = %v, want empty", tags)
	}
	if tags := RequiresOf(table.FindByKey(big.NewInt(5))); tags.Len() != 0 {
		t.Errorf("not found = %v, want empty", tags)
	}
}

func TestReserved(t *testing.T) {
	table := NewEnumerations(
		[]Enumeration{row(0, "a", nil)},
		NewReserved(big.NewInt(2), big.NewInt(255)),
	)

	if table.IsReserved(big.NewInt(1)) {
		t.Error("1 should not be reserved")
	}
	if !table.IsReserved(big.NewInt(2)) || !table.IsReserved(big.NewInt(255)) {
		t.Error("range bounds should be inclusive")
	}
	if table.IsReserved(big.NewInt(256)) {
		t.Error("256 should not be reserved")
	}
	if NewReserved(nil, nil).Contains(big.NewInt(0)) {
		t.Error("unbounded empty range should match nothing")
	}
	if !NewReserved(big.NewInt(10), nil).Contains(big.NewInt(1000)) {
		t.Error("open end should match everything above start")
	}
}
