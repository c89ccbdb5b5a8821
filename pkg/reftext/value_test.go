package reftext

import (
	"math"
	"math/big"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	type custom struct{}
	tests := []struct {
		name     string
		value    any
		wantType ValueType
		wantOK   bool
	}{
		{"Nil", nil, TypeNull, true},
		{"Undefined", Undefined, TypeUndefined, true},
		{"Bool", true, TypeBoolean, true},
		{"Int", 1, TypeNumber, true},
		{"Uint8", uint8(1), TypeNumber, true},
		{"BigInt", big.NewInt(1), TypeBigInt, true},
		{"String", "s", TypeString, true},
		{"Time", time.Now(), TypeDate, true},
		{"Date", Date{}, TypeDate, true},
		{"Array", NewArray(), TypeArray, true},
		{"Slice", []any{}, TypeArray, true},
		{"Object", NewObject(), TypeObject, true},
		{"Map", map[string]any{}, TypeObject, true},
		{"NilArray", (*Array)(nil), TypeNull, true},
		{"Func", func() {}, TypeUndefined, false},
		{"Chan", make(chan int), TypeUndefined, false},
		{"Complex", complex64(1), TypeUndefined, false},
		{"Struct", custom{}, TypeUndefined, false},
		{"TypedSlice", []int{1}, TypeUndefined, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotOK := KindOf(tt.value)
			if gotType != tt.wantType || gotOK != tt.wantOK {
				t.Errorf("KindOf() = %v, %v; want %v, %v", gotType, gotOK, tt.wantType, tt.wantOK)
			}
		})
	}
}

func TestValueTypeString(t *testing.T) {
	if TypeReferencePath.String() != "referencePath" {
		t.Errorf("TypeReferencePath = %q", TypeReferencePath.String())
	}
	if ValueType(99).String() != "unknown" {
		t.Errorf("ValueType(99) = %q", ValueType(99).String())
	}
	for _, vt := range []ValueType{TypeArray, TypeObject} {
		if !vt.IsReference() {
			t.Errorf("%v should be a reference type", vt)
		}
	}
	if TypeDate.IsReference() {
		t.Error("date should be a value type")
	}
}

func TestObject(t *testing.T) {
	var o Object
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	if got := o.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", got)
	}
	if v, _ := o.Get("b"); v != 3 {
		t.Errorf("Get(b) = %v, want 3", v)
	}

	o.Delete("b")
	o.Delete("missing")
	if o.Has("b") || o.Len() != 1 {
		t.Errorf("after Delete: Has(b) = %v, Len() = %d", o.Has("b"), o.Len())
	}
}

func TestArray(t *testing.T) {
	src := []any{1, 2}
	a := NewArray(src...)
	src[0] = 99
	if a.At(0) != 1 {
		t.Error("NewArray did not copy its input")
	}

	a.Append(3)
	a.Set(1, "two")
	vals := a.Values()
	vals[0] = "changed"
	if a.Len() != 3 || a.At(0) != 1 || a.At(1) != "two" {
		t.Errorf("unexpected array state %v", a.Values())
	}
}

func TestEntries(t *testing.T) {
	m := map[string]any{"z": 1, "a": 2, "m": 3}
	entries := Entries(m)
	want := []string{"a", "m", "z"}
	for i, e := range entries {
		if e.Piece.Key != want[i] || e.Piece.Type != TypeObject {
			t.Errorf("entries[%d] = %+v, want key %q", i, e.Piece, want[i])
		}
	}

	if Entries(42) != nil {
		t.Error("scalar should have no entries")
	}
}

func TestEqual(t *testing.T) {
	cyc1 := NewArray()
	cyc1.Append(cyc1)
	cyc2 := NewArray()
	cyc2.Append(cyc2)

	// two-step cycle against one-step cycle: bisimilar, so equal
	cyc3 := NewArray()
	cyc3b := NewArray(cyc3)
	cyc3.Append(cyc3b)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"IntFloat", 1, 1.0, true},
		{"NaN", math.NaN(), math.NaN(), true},
		{"DifferentKinds", 1, "1", false},
		{"NullUndefined", nil, Undefined, false},
		{"BigInt", big.NewInt(5), *big.NewInt(5), true},
		{"BigIntDiffers", big.NewInt(5), big.NewInt(6), false},
		{"DatesByMillis", time.UnixMilli(5), time.UnixMilli(5).Add(300 * time.Microsecond), true},
		{"InvalidDates", ParseDate("x"), ParseDate("y"), true},
		{"InvalidVsValid", ParseDate("x"), time.Unix(0, 0), false},
		{"SliceVsArray", []any{1, "a"}, NewArray(1, "a"), true},
		{"MapVsObject", map[string]any{"a": 1}, func() any { o := NewObject(); o.Set("a", 1); return o }(), true},
		{"MissingKey", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"LengthDiffers", []any{1}, []any{1, 2}, false},
		{"Cycles", cyc1, cyc2, true},
		{"UnrolledCycle", cyc1, cyc3, true},
		{"CycleVsFinite", cyc1, NewArray(NewArray()), false},
		{"Func", func() {}, func() {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
