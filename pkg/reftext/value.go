package reftext

import (
	"math/big"
	"reflect"
	"slices"
	"time"
	"unsafe"
)

// ValueType identifies the kind of a value in the reftext data model.
// Exactly one kind applies to every value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeUndefined
	TypeBoolean
	TypeNumber
	TypeBigInt
	TypeString
	TypeDate
	TypeReferencePath
	TypeArray
	TypeObject
)

var valueTypeNames = [...]string{
	TypeNull:          "null",
	TypeUndefined:     "undefined",
	TypeBoolean:       "boolean",
	TypeNumber:        "number",
	TypeBigInt:        "bigint",
	TypeString:        "string",
	TypeDate:          "date",
	TypeReferencePath: "referencePath",
	TypeArray:         "array",
	TypeObject:        "object",
}

// String returns the value type name.
func (t ValueType) String() string {
	if t < 0 || int(t) >= len(valueTypeNames) {
		return "unknown"
	}
	return valueTypeNames[t]
}

// IsReference reports whether values of this type carry identity.
// Only arrays and objects may be shared or take part in cycles.
func (t ValueType) IsReference() bool {
	return t == TypeArray || t == TypeObject
}

// UndefinedType is the type of [Undefined].
type UndefinedType struct{}

// String returns "undefined".
func (UndefinedType) String() string { return keywordUndefined }

// Undefined is the "missing" primitive. It is distinct from nil, which
// stands for null.
var Undefined UndefinedType

// Array is an ordered, identity-bearing sequence of values.
// An *Array may contain itself, directly or through other containers.
type Array struct {
	elems []any
}

// NewArray creates an array holding a copy of elems.
func NewArray(elems ...any) *Array {
	return &Array{elems: slices.Clone(elems)}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i. It panics if i is out of range.
func (a *Array) At(i int) any { return a.elems[i] }

// Set replaces the element at index i. It panics if i is out of range.
func (a *Array) Set(i int, v any) { a.elems[i] = v }

// Append adds values to the end of the array.
func (a *Array) Append(v ...any) { a.elems = append(a.elems, v...) }

// Values returns a copy of the elements.
func (a *Array) Values() []any { return slices.Clone(a.elems) }

// Object is an identity-bearing set of named members that remembers the
// order in which keys were first inserted. The zero value is an empty object.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set assigns v to key. A new key is appended to the key order; assigning an
// existing key keeps its original position.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return slices.Clone(o.keys) }

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// valueClass separates values the format can carry from values it silently
// skips and values it refuses.
type valueClass int

const (
	classRepresentable valueClass = iota
	classNonRepresentable
	classUnsupported
)

// classify maps a Go value onto the data model.
func classify(v any) (ValueType, valueClass) {
	switch x := v.(type) {
	case nil:
		return TypeNull, classRepresentable
	case UndefinedType:
		return TypeUndefined, classRepresentable
	case bool:
		return TypeBoolean, classRepresentable
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber, classRepresentable
	case *big.Int:
		if x == nil {
			return TypeNull, classRepresentable
		}
		return TypeBigInt, classRepresentable
	case big.Int:
		return TypeBigInt, classRepresentable
	case string:
		return TypeString, classRepresentable
	case time.Time, Date:
		return TypeDate, classRepresentable
	case *Array:
		if x == nil {
			return TypeNull, classRepresentable
		}
		return TypeArray, classRepresentable
	case *Object:
		if x == nil {
			return TypeNull, classRepresentable
		}
		return TypeObject, classRepresentable
	case []any:
		if x == nil {
			return TypeNull, classRepresentable
		}
		return TypeArray, classRepresentable
	case map[string]any:
		if x == nil {
			return TypeNull, classRepresentable
		}
		return TypeObject, classRepresentable
	case complex64, complex128, unsafe.Pointer:
		return TypeUndefined, classNonRepresentable
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return TypeUndefined, classNonRepresentable
	}
	return TypeUndefined, classUnsupported
}

// KindOf reports the value type of v and whether the format can represent it.
// Functions, channels and other non-data values report false, as do Go types
// outside the data model.
func KindOf(v any) (ValueType, bool) {
	t, class := classify(v)
	return t, class == classRepresentable
}

// Entry is one child of an array or object together with its path piece.
type Entry struct {
	Piece PathPiece
	Value any
}

// Entries enumerates the children of an array or object in serialization
// order: index order for arrays, insertion order for *Object and sorted key
// order for map[string]any. Other values have no entries.
func Entries(v any) []Entry {
	switch x := v.(type) {
	case *Array:
		if x == nil {
			return nil
		}
		return arrayEntries(x.elems)
	case []any:
		return arrayEntries(x)
	case *Object:
		if x == nil {
			return nil
		}
		out := make([]Entry, len(x.keys))
		for i, k := range x.keys {
			out[i] = Entry{Piece: KeyPiece(k), Value: x.values[k]}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Piece: KeyPiece(k), Value: x[k]}
		}
		return out
	}
	return nil
}

func arrayEntries(elems []any) []Entry {
	out := make([]Entry, len(elems))
	for i, e := range elems {
		out[i] = Entry{Piece: IndexPiece(i), Value: e}
	}
	return out
}

// identity is the comparable identity of a reference value.
type identity struct {
	ptr uintptr
	n   int
}

// identityOf returns the identity of a reference value. Empty []any values
// have no stable identity and report false.
func identityOf(v any) (identity, bool) {
	switch x := v.(type) {
	case *Array:
		return identity{ptr: uintptr(unsafe.Pointer(x)), n: -1}, true
	case *Object:
		return identity{ptr: uintptr(unsafe.Pointer(x)), n: -2}, true
	case []any:
		if len(x) == 0 {
			return identity{}, false
		}
		return identity{ptr: uintptr(unsafe.Pointer(&x[0])), n: len(x)}, true
	case map[string]any:
		return identity{ptr: reflect.ValueOf(x).Pointer(), n: -3}, true
	}
	return identity{}, false
}

// Ref is a comparable handle on the identity of an array or object, usable
// as a map key.
type Ref struct{ id identity }

// RefOf returns the identity handle of an array or object. Scalars and empty
// []any values have none.
func RefOf(v any) (Ref, bool) {
	id, ok := identityOf(v)
	return Ref{id: id}, ok
}

// toFloat converts any Go number accepted by classify to float64.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	}
	return 0
}
