package wiretype

import (
	"errors"
	"math"
	"testing"
)

func conformancePath(t *testing.T, err error) string {
	t.Helper()
	var conf *ConformanceError
	if !errors.As(err, &conf) {
		t.Fatalf("expected *ConformanceError, got %v", err)
	}
	return conf.Path
}

// ============================================================
// Kind Matching
// ============================================================

func TestValidate_NoImplicitNumericConversion(t *testing.T) {
	cases := []struct {
		name string
		desc *Descriptor
		val  *Value
	}{
		{"uint into int32", Int32Type(), Uint(1)},
		{"int into uint32", Uint32Type(), Int(1)},
		{"int into float64", Float64Type(), Int(1)},
		{"float into int64", Int64Type(), Float(1)},
		{"bool into int32", Int32Type(), Bool(true)},
		{"string into bytes", BytesType(), Str("x")},
		{"bytes into string", StringType(), BytesVal([]byte("x"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.val, tc.desc, nil); err == nil {
				t.Error("expected conformance failure, got nil")
			}
		})
	}
}

func TestValidate_FixedWidthRanges(t *testing.T) {
	if err := Validate(Int(math.MaxInt32+1), Int32Type(), nil); err == nil {
		t.Error("int32 accepted a value above its range")
	}
	if err := Validate(Int(math.MinInt32-1), Int32Type(), nil); err == nil {
		t.Error("int32 accepted a value below its range")
	}
	if err := Validate(Uint(math.MaxUint32+1), Uint32Type(), nil); err == nil {
		t.Error("uint32 accepted a value above its range")
	}
	if err := Validate(Int(math.MaxInt32), Int32Type(), nil); err != nil {
		t.Errorf("int32 rejected its own maximum: %v", err)
	}
}

func TestValidate_Float32Representability(t *testing.T) {
	if err := Validate(Float(1.5), Float32Type(), nil); err != nil {
		t.Errorf("1.5 is exactly representable, got %v", err)
	}
	// 0.1 picks up extra precision in binary64 that binary32 cannot hold.
	if err := Validate(Float(0.1), Float32Type(), nil); err == nil {
		t.Error("expected rejection of a value that loses precision in float32")
	}
	if err := Validate(Float(math.NaN()), Float32Type(), nil); err != nil {
		t.Errorf("NaN is a valid float32, got %v", err)
	}
	if err := Validate(Float(math.Inf(-1)), Float32Type(), nil); err != nil {
		t.Errorf("-Inf is a valid float32, got %v", err)
	}
}

func TestValidate_StringMustBeUTF8(t *testing.T) {
	if err := Validate(Str(string([]byte{0xFF, 0xFE})), StringType(), nil); err == nil {
		t.Error("expected rejection of invalid UTF-8")
	}
}

// ============================================================
// Declared Bounds
// ============================================================

func TestValidate_DeclaredBounds(t *testing.T) {
	port := Uint32Type(WithMinUint(1), WithMaxUint(65535))
	if err := Validate(Uint(8080), port, nil); err != nil {
		t.Errorf("in-range value rejected: %v", err)
	}
	if err := Validate(Uint(0), port, nil); err == nil {
		t.Error("below-minimum value accepted")
	}
	if err := Validate(Uint(70000), port, nil); err == nil {
		t.Error("above-maximum value accepted")
	}

	temp := Float64Type(WithMinFloat(-273.15))
	if err := Validate(Float(-300), temp, nil); err == nil {
		t.Error("below-minimum float accepted")
	}

	delta := Int64Type(WithMinInt(-10), WithMaxInt(10))
	if err := Validate(Int(11), delta, nil); err == nil {
		t.Error("above-maximum int accepted")
	}
}

// ============================================================
// Composite Conformance and Paths
// ============================================================

func TestValidate_ListElementPath(t *testing.T) {
	desc := ListOf(Int32Type())
	err := Validate(List(Int(1), Str("oops"), Int(3)), desc, nil)
	if got := conformancePath(t, err); got != "[1]" {
		t.Errorf("path = %q, want [1]", got)
	}
}

func TestValidate_NestedFieldPath(t *testing.T) {
	desc := StructOf(
		Field("user", StructOf(
			Field("emails", ListOf(StringType())),
		)),
	)
	v := StructVal(FieldVal("user", StructVal(
		FieldVal("emails", List(Str("a@b"), Int(7))),
	)))
	err := Validate(v, desc, nil)
	if got := conformancePath(t, err); got != "user.emails[1]" {
		t.Errorf("path = %q, want user.emails[1]", got)
	}
}

func TestValidate_MapValuePath(t *testing.T) {
	desc := MapOf(StringType(), Int32Type())
	err := Validate(MapVal(Pair(Str("k"), Bool(true))), desc, nil)
	if got := conformancePath(t, err); got != `["k"]` {
		t.Errorf("path = %q, want [\"k\"]", got)
	}
}

func TestValidate_MapDuplicateKeys(t *testing.T) {
	desc := MapOf(StringType(), Int32Type())
	err := Validate(MapVal(
		Pair(Str("a"), Int(1)),
		Pair(Str("a"), Int(2)),
	), desc, nil)
	if err == nil {
		t.Error("duplicate map keys accepted")
	}
}

func TestValidate_StructRequiredAndUnknown(t *testing.T) {
	desc := StructOf(
		Field("name", StringType()),
		Field("nick", StringType(), WithOptional()),
	)

	if err := Validate(StructVal(FieldVal("name", Str("ada"))), desc, nil); err != nil {
		t.Errorf("absent optional field rejected: %v", err)
	}

	err := Validate(StructVal(FieldVal("nick", Str("al"))), desc, nil)
	if got := conformancePath(t, err); got != "name" {
		t.Errorf("missing-field path = %q, want name", got)
	}

	// Closed field set: an undeclared field is a violation, not noise.
	err = Validate(StructVal(
		FieldVal("name", Str("ada")),
		FieldVal("extra", Bool(true)),
	), desc, nil)
	if got := conformancePath(t, err); got != "extra" {
		t.Errorf("unknown-field path = %q, want extra", got)
	}

	err = Validate(StructVal(
		FieldVal("name", Str("ada")),
		FieldVal("name", Str("bel")),
	), desc, nil)
	if err == nil {
		t.Error("duplicate struct field accepted")
	}
}

func TestValidate_OptionalTypedField(t *testing.T) {
	// A field declared optional<T> (without the field-level optional
	// flag) accepts absence through its own type.
	desc := StructOf(
		Field("value", Int32Type()),
		Field("next", OptionalOf(Int32Type())),
	)

	if err := Validate(StructVal(FieldVal("value", Int(1))), desc, nil); err != nil {
		t.Errorf("absent optional-typed field rejected: %v", err)
	}
	if err := Validate(StructVal(
		FieldVal("value", Int(1)),
		FieldVal("next", Null()),
	), desc, nil); err != nil {
		t.Errorf("null optional-typed field rejected: %v", err)
	}
	if err := Validate(StructVal(
		FieldVal("value", Int(1)),
		FieldVal("next", Int(2)),
	), desc, nil); err != nil {
		t.Errorf("present optional-typed field rejected: %v", err)
	}
	if err := Validate(StructVal(
		FieldVal("value", Int(1)),
		FieldVal("next", Str("x")),
	), desc, nil); err == nil {
		t.Error("wrong inner kind accepted through optional-typed field")
	}
}

func TestValidate_RecursiveChainTerminates(t *testing.T) {
	reg := NewRegistry()
	node := StructOf(
		Field("value", Int32Type()),
		Field("next", OptionalOf(Ref("Node"))),
	)
	if err := reg.Register("Node", node); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Terminated chain of depth 1: the innermost next is absent.
	v := StructVal(
		FieldVal("value", Int(1)),
		FieldVal("next", StructVal(FieldVal("value", Int(2)))),
	)
	if err := Validate(v, Ref("Node"), reg); err != nil {
		t.Errorf("terminated chain rejected: %v", err)
	}
}

func TestValidate_UnionExclusivity(t *testing.T) {
	desc := UnionOf(
		UnionVariant("num", Int64Type()),
		UnitVariant("none"),
	)

	if err := Validate(UnionVal("num", Int(5)), desc, nil); err != nil {
		t.Errorf("valid variant rejected: %v", err)
	}
	if err := Validate(UnionVal("none", nil), desc, nil); err != nil {
		t.Errorf("unit variant rejected: %v", err)
	}
	if err := Validate(UnionVal("bogus", Int(5)), desc, nil); err == nil {
		t.Error("undeclared variant tag accepted")
	}
	if err := Validate(UnionVal("none", Int(5)), desc, nil); err == nil {
		t.Error("unit variant with payload accepted")
	}
	if err := Validate(UnionVal("num", Str("x")), desc, nil); err == nil {
		t.Error("payload of the wrong kind accepted")
	}
}

func TestValidate_OptionalPassthrough(t *testing.T) {
	desc := OptionalOf(Int32Type())
	if err := Validate(Null(), desc, nil); err != nil {
		t.Errorf("Null rejected by optional: %v", err)
	}
	if err := Validate(Int(7), desc, nil); err != nil {
		t.Errorf("present value rejected by optional: %v", err)
	}
	if err := Validate(Str("x"), desc, nil); err == nil {
		t.Error("wrong inner kind accepted by optional")
	}
	// Null against a non-optional descriptor is a violation.
	if err := Validate(Null(), Int32Type(), nil); err == nil {
		t.Error("Null accepted by required int32")
	}
}

func TestValidate_ThroughNamedRef(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("Port", Uint32Type(WithMaxUint(65535))); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := Validate(Uint(8080), Ref("Port"), reg); err != nil {
		t.Errorf("conforming value rejected through ref: %v", err)
	}
	if err := Validate(Uint(100000), Ref("Port"), reg); err == nil {
		t.Error("bound violation missed through ref")
	}
	if err := Validate(Uint(1), Ref("Ghost"), reg); err == nil {
		t.Error("unresolvable ref passed validation")
	}
}
