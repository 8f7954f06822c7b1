package wiretype

import (
	"fmt"
	"math"
)

// ValueKind identifies the shape of a Value.
type ValueKind uint8

const (
	ValNull ValueKind = iota
	ValBool
	ValInt
	ValUint
	ValFloat
	ValStr
	ValBytes
	ValList
	ValMap
	ValStruct
	ValUnion
)

// String returns the value kind name.
func (k ValueKind) String() string {
	switch k {
	case ValNull:
		return "null"
	case ValBool:
		return "bool"
	case ValInt:
		return "int"
	case ValUint:
		return "uint"
	case ValFloat:
		return "float"
	case ValStr:
		return "str"
	case ValBytes:
		return "bytes"
	case ValList:
		return "list"
	case ValMap:
		return "map"
	case ValStruct:
		return "struct"
	case ValUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Value is a dynamic runtime value. A Value carries only its own
// shape; whether it conforms to a particular Descriptor is
// established by Validate, never by the Value itself. The same shape
// (say, the integer 3) may conform to several descriptors.
//
// Null doubles as the absence marker for optional positions.
type Value struct {
	kind ValueKind

	// Scalar slots (one valid per kind)
	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	strVal   string
	bytesVal []byte

	// Container slots
	listVal   []*Value
	mapVal    []MapEntry
	structVal []FieldEntry

	// Union slot
	unionVal *UnionValue
}

// MapEntry is one key-value pair in a map value. Entry order is
// irrelevant to equality and to the encoding.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// FieldEntry is one named field in a struct value.
type FieldEntry struct {
	Name  string
	Value *Value
}

// UnionValue is the active variant of a union value. A nil Value
// marks a unit variant.
type UnionValue struct {
	Tag   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null returns the absent value.
func Null() *Value {
	return &Value{kind: ValNull}
}

// Bool returns a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: ValBool, boolVal: v}
}

// Int returns a signed integer value.
func Int(v int64) *Value {
	return &Value{kind: ValInt, intVal: v}
}

// Uint returns an unsigned integer value.
func Uint(v uint64) *Value {
	return &Value{kind: ValUint, uintVal: v}
}

// Float returns a floating point value.
func Float(v float64) *Value {
	return &Value{kind: ValFloat, floatVal: v}
}

// Str returns a string value.
func Str(v string) *Value {
	return &Value{kind: ValStr, strVal: v}
}

// BytesVal returns a byte-sequence value.
func BytesVal(v []byte) *Value {
	return &Value{kind: ValBytes, bytesVal: v}
}

// List returns an ordered sequence value.
func List(elems ...*Value) *Value {
	return &Value{kind: ValList, listVal: elems}
}

// MapVal returns a mapping value from key-value pairs.
func MapVal(entries ...MapEntry) *Value {
	return &Value{kind: ValMap, mapVal: entries}
}

// Pair creates a MapEntry for use in MapVal construction.
func Pair(key, val *Value) MapEntry {
	return MapEntry{Key: key, Value: val}
}

// StructVal returns a struct value from named fields.
func StructVal(fields ...FieldEntry) *Value {
	return &Value{kind: ValStruct, structVal: fields}
}

// FieldVal creates a FieldEntry for use in StructVal construction.
func FieldVal(name string, val *Value) FieldEntry {
	return FieldEntry{Name: name, Value: val}
}

// UnionVal returns a union value with the given active variant. Pass
// a nil payload for unit variants.
func UnionVal(tag string, payload *Value) *Value {
	return &Value{kind: ValUnion, unionVal: &UnionValue{Tag: tag, Value: payload}}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil Value is Null.
func (v *Value) Kind() ValueKind {
	if v == nil {
		return ValNull
	}
	return v.kind
}

// IsNull reports whether this is the absent value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == ValNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil || v.kind != ValBool {
		return false, fmt.Errorf("wiretype: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsInt returns the signed integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil || v.kind != ValInt {
		return 0, fmt.Errorf("wiretype: expected int, got %s", v.Kind())
	}
	return v.intVal, nil
}

// AsUint returns the unsigned integer value.
func (v *Value) AsUint() (uint64, error) {
	if v == nil || v.kind != ValUint {
		return 0, fmt.Errorf("wiretype: expected uint, got %s", v.Kind())
	}
	return v.uintVal, nil
}

// AsFloat returns the floating point value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil || v.kind != ValFloat {
		return 0, fmt.Errorf("wiretype: expected float, got %s", v.Kind())
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil || v.kind != ValStr {
		return "", fmt.Errorf("wiretype: expected str, got %s", v.Kind())
	}
	return v.strVal, nil
}

// AsBytes returns the byte-sequence value.
func (v *Value) AsBytes() ([]byte, error) {
	if v == nil || v.kind != ValBytes {
		return nil, fmt.Errorf("wiretype: expected bytes, got %s", v.Kind())
	}
	return v.bytesVal, nil
}

// AsList returns the sequence elements.
func (v *Value) AsList() ([]*Value, error) {
	if v == nil || v.kind != ValList {
		return nil, fmt.Errorf("wiretype: expected list, got %s", v.Kind())
	}
	return v.listVal, nil
}

// AsMap returns the map entries in insertion order.
func (v *Value) AsMap() ([]MapEntry, error) {
	if v == nil || v.kind != ValMap {
		return nil, fmt.Errorf("wiretype: expected map, got %s", v.Kind())
	}
	return v.mapVal, nil
}

// AsStruct returns the struct fields in insertion order.
func (v *Value) AsStruct() ([]FieldEntry, error) {
	if v == nil || v.kind != ValStruct {
		return nil, fmt.Errorf("wiretype: expected struct, got %s", v.Kind())
	}
	return v.structVal, nil
}

// AsUnion returns the active union variant.
func (v *Value) AsUnion() (*UnionValue, error) {
	if v == nil || v.kind != ValUnion {
		return nil, fmt.Errorf("wiretype: expected union, got %s", v.Kind())
	}
	return v.unionVal, nil
}

// Len returns the length of a list, map or struct, 0 otherwise.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case ValList:
		return len(v.listVal)
	case ValMap:
		return len(v.mapVal)
	case ValStruct:
		return len(v.structVal)
	default:
		return 0
	}
}

// Get returns a struct field value by name, or nil if absent.
func (v *Value) Get(name string) *Value {
	if v == nil || v.kind != ValStruct {
		return nil
	}
	for _, f := range v.structVal {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of a list.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != ValList {
		return nil, fmt.Errorf("wiretype: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("wiretype: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// ============================================================
// Structural equality
// ============================================================

// Equal reports structural equality: primitives by value, lists
// element-wise in order, maps by key-set and per-key value ignoring
// entry order, structs by field-set ignoring field order (a
// Null-valued field counts as absent), unions by (tag, payload).
// NaN floats compare equal to NaN.
func Equal(a, b *Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case ValBool:
		return a.boolVal == b.boolVal
	case ValInt:
		return a.intVal == b.intVal
	case ValUint:
		return a.uintVal == b.uintVal
	case ValFloat:
		if math.IsNaN(a.floatVal) || math.IsNaN(b.floatVal) {
			return math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal)
		}
		return a.floatVal == b.floatVal
	case ValStr:
		return a.strVal == b.strVal
	case ValBytes:
		if len(a.bytesVal) != len(b.bytesVal) {
			return false
		}
		for i := range a.bytesVal {
			if a.bytesVal[i] != b.bytesVal[i] {
				return false
			}
		}
		return true

	case ValList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true

	case ValMap:
		return mapEqual(a.mapVal, b.mapVal)

	case ValStruct:
		return structEqual(a.structVal, b.structVal)

	case ValUnion:
		if a.unionVal.Tag != b.unionVal.Tag {
			return false
		}
		return Equal(a.unionVal.Value, b.unionVal.Value)
	}
	return false
}

func mapEqual(a, b []MapEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for _, ea := range a {
		found := false
		for _, eb := range b {
			if Equal(ea.Key, eb.Key) {
				if !Equal(ea.Value, eb.Value) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func structEqual(a, b []FieldEntry) bool {
	// Null-valued fields count as absent on both sides.
	for _, fa := range a {
		if fa.Value.IsNull() {
			continue
		}
		fb := lookupField(b, fa.Name)
		if fb == nil || !Equal(fa.Value, fb) {
			return false
		}
	}
	for _, fb := range b {
		if fb.Value.IsNull() {
			continue
		}
		if lookupField(a, fb.Name) == nil {
			return false
		}
	}
	return true
}

func lookupField(fields []FieldEntry, name string) *Value {
	for _, f := range fields {
		if f.Name == name && !f.Value.IsNull() {
			return f.Value
		}
	}
	return nil
}
