package wiretype

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

// ============================================================
// Round-trip Tests
// ============================================================

func TestRoundTrip_Primitives(t *testing.T) {
	cases := []struct {
		name string
		desc *Descriptor
		val  *Value
	}{
		{"bool true", BoolType(), Bool(true)},
		{"bool false", BoolType(), Bool(false)},
		{"int32 zero", Int32Type(), Int(0)},
		{"int32 negative", Int32Type(), Int(-42)},
		{"int32 min", Int32Type(), Int(math.MinInt32)},
		{"int32 max", Int32Type(), Int(math.MaxInt32)},
		{"int64 min", Int64Type(), Int(math.MinInt64)},
		{"int64 max", Int64Type(), Int(math.MaxInt64)},
		{"uint32 max", Uint32Type(), Uint(math.MaxUint32)},
		{"uint64 max", Uint64Type(), Uint(math.MaxUint64)},
		{"float32", Float32Type(), Float(1.5)},
		{"float32 neg zero", Float32Type(), Float(math.Copysign(0, -1))},
		{"float64", Float64Type(), Float(math.Pi)},
		{"float64 inf", Float64Type(), Float(math.Inf(1))},
		{"float64 nan", Float64Type(), Float(math.NaN())},
		{"string empty", StringType(), Str("")},
		{"string ascii", StringType(), Str("hello")},
		{"string multibyte", StringType(), Str("héllo wörld ☃")},
		{"bytes empty", BytesType(), BytesVal(nil)},
		{"bytes", BytesType(), BytesVal([]byte{0, 1, 2, 255})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.val, tc.desc, nil)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := Decode(data, tc.desc, nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !Equal(got, tc.val) {
				t.Errorf("round-trip changed value: got %v, want %v", got, tc.val)
			}
		})
	}
}

func TestRoundTrip_Composites(t *testing.T) {
	point := StructOf(
		Field("x", Int32Type()),
		Field("y", Int32Type()),
	)
	shape := UnionOf(
		UnionVariant("circle", Float64Type()),
		UnionVariant("point", point),
		UnitVariant("empty"),
	)

	cases := []struct {
		name string
		desc *Descriptor
		val  *Value
	}{
		{"optional present", OptionalOf(Int32Type()), Int(7)},
		{"optional absent", OptionalOf(Int32Type()), Null()},
		{"nested optional", OptionalOf(OptionalOf(StringType())), Str("x")},
		{"empty list", ListOf(Int32Type()), List()},
		{"int list", ListOf(Int32Type()), List(Int(1), Int(2), Int(3))},
		{"list of lists", ListOf(ListOf(StringType())), List(List(Str("a")), List())},
		{"empty map", MapOf(StringType(), Int64Type()), MapVal()},
		{"string map", MapOf(StringType(), Int64Type()),
			MapVal(Pair(Str("a"), Int(1)), Pair(Str("b"), Int(2)))},
		{"int-keyed map", MapOf(Int32Type(), BoolType()),
			MapVal(Pair(Int(-1), Bool(true)), Pair(Int(5), Bool(false)))},
		{"struct", point, StructVal(FieldVal("x", Int(3)), FieldVal("y", Int(-4)))},
		{"union payload", shape, UnionVal("circle", Float(2.5))},
		{"union struct payload", shape,
			UnionVal("point", StructVal(FieldVal("x", Int(1)), FieldVal("y", Int(2))))},
		{"union unit", shape, UnionVal("empty", nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.val, tc.desc, nil)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := Decode(data, tc.desc, nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !Equal(got, tc.val) {
				t.Errorf("round-trip changed value: got %v, want %v", got, tc.val)
			}
		})
	}
}

func TestRoundTrip_OptionalStructFields(t *testing.T) {
	desc := StructOf(
		Field("name", StringType()),
		Field("nick", StringType(), WithOptional()),
	)

	// Present optional field survives.
	full := StructVal(FieldVal("name", Str("ada")), FieldVal("nick", Str("al")))
	data, err := Encode(full, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data, desc, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !Equal(got, full) {
		t.Errorf("present optional lost: got %v", got)
	}

	// Absent and explicit-Null forms encode identically.
	absent := StructVal(FieldVal("name", Str("ada")))
	explicit := StructVal(FieldVal("name", Str("ada")), FieldVal("nick", Null()))
	da, err := Encode(absent, desc, nil)
	if err != nil {
		t.Fatalf("Encode absent failed: %v", err)
	}
	de, err := Encode(explicit, desc, nil)
	if err != nil {
		t.Fatalf("Encode explicit null failed: %v", err)
	}
	if !bytes.Equal(da, de) {
		t.Errorf("absent and null-valued optional field encode differently:\n  %x\n  %x", da, de)
	}
	back, err := Decode(da, desc, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !Equal(back, absent) || !Equal(back, explicit) {
		t.Errorf("decoded struct %v not equal to both source forms", back)
	}
}

// ============================================================
// Golden Byte Vectors
// ============================================================

// Pins the exact wire layout: one-byte tags, big-endian fixed-width
// numbers, u32 length and count prefixes.
func TestGoldenVectors(t *testing.T) {
	point := StructOf(
		Field("x", Int32Type()),
		Field("y", Int32Type()),
	)
	color := EnumOf("red", "green", "blue")

	cases := []struct {
		name string
		desc *Descriptor
		val  *Value
		want []byte
	}{
		{"bool true", BoolType(), Bool(true), []byte{0x01, 0x01}},
		{"int32", Int32Type(), Int(3), []byte{0x02, 0x00, 0x00, 0x00, 0x03}},
		{"int32 negative", Int32Type(), Int(-4), []byte{0x02, 0xFF, 0xFF, 0xFF, 0xFC}},
		{"int64", Int64Type(), Int(1), []byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"uint32", Uint32Type(), Uint(256), []byte{0x04, 0x00, 0x00, 0x01, 0x00}},
		{"float64 1.5", Float64Type(), Float(1.5), []byte{0x07, 0x3F, 0xF8, 0, 0, 0, 0, 0, 0}},
		{"string", StringType(), Str("hi"), []byte{0x08, 0, 0, 0, 2, 'h', 'i'}},
		{"bytes", BytesType(), BytesVal([]byte{0xAB}), []byte{0x09, 0, 0, 0, 1, 0xAB}},
		{"optional absent", OptionalOf(Int32Type()), Null(), []byte{0x0A, 0x00}},
		{"optional present", OptionalOf(Int32Type()), Int(7),
			[]byte{0x0A, 0x01, 0x02, 0, 0, 0, 7}},
		{"list", ListOf(Int32Type()), List(Int(1), Int(2)),
			[]byte{0x0B, 0, 0, 0, 2, 0x02, 0, 0, 0, 1, 0x02, 0, 0, 0, 2}},
		{"map", MapOf(StringType(), Int32Type()),
			MapVal(Pair(Str("a"), Int(1))),
			[]byte{0x0C, 0, 0, 0, 1, 0x08, 0, 0, 0, 1, 'a', 0x02, 0, 0, 0, 1}},
		{"point struct", point,
			StructVal(FieldVal("x", Int(3)), FieldVal("y", Int(-4))),
			[]byte{0x0D, 0x02, 0, 0, 0, 3, 0x02, 0xFF, 0xFF, 0xFF, 0xFC}},
		{"enum variant", color, UnionVal("green", nil), []byte{0x0E, 0, 0, 0, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.val, tc.desc, nil)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("wire bytes mismatch\n  got:  %x\n  want: %x", got, tc.want)
			}
		})
	}
}

// ============================================================
// Canonical Encoding
// ============================================================

func TestCanonical_MapInsertionOrderIrrelevant(t *testing.T) {
	desc := MapOf(StringType(), Int32Type())
	a := MapVal(Pair(Str("x"), Int(1)), Pair(Str("a"), Int(2)), Pair(Str("m"), Int(3)))
	b := MapVal(Pair(Str("m"), Int(3)), Pair(Str("x"), Int(1)), Pair(Str("a"), Int(2)))

	da, err := Encode(a, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	db, err := Encode(b, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(da, db) {
		t.Errorf("insertion order leaked into encoding:\n  %x\n  %x", da, db)
	}

	// Decoded entries come back in canonical key order.
	got, err := Decode(da, desc, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	entries, _ := got.AsMap()
	var keys []string
	for _, e := range entries {
		k, _ := e.Key.AsStr()
		keys = append(keys, k)
	}
	if strings.Join(keys, ",") != "a,m,x" {
		t.Errorf("decoded key order = %v, want ascending", keys)
	}
}

func TestCanonical_IntKeyOrderIsNumeric(t *testing.T) {
	desc := MapOf(Int32Type(), StringType())
	v := MapVal(
		Pair(Int(10), Str("ten")),
		Pair(Int(-3), Str("neg")),
		Pair(Int(2), Str("two")),
	)
	data, err := Encode(v, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data, desc, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	entries, _ := got.AsMap()
	var order []int64
	for _, e := range entries {
		k, _ := e.Key.AsInt()
		order = append(order, k)
	}
	if len(order) != 3 || order[0] != -3 || order[1] != 2 || order[2] != 10 {
		t.Errorf("decoded key order = %v, want [-3 2 10]", order)
	}
}

func TestCanonical_StructFieldOrderIsDeclared(t *testing.T) {
	desc := StructOf(
		Field("x", Int32Type()),
		Field("y", Int32Type()),
	)
	a := StructVal(FieldVal("x", Int(3)), FieldVal("y", Int(-4)))
	b := StructVal(FieldVal("y", Int(-4)), FieldVal("x", Int(3)))

	da, err := Encode(a, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	db, err := Encode(b, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(da, db) {
		t.Errorf("field insertion order leaked into encoding:\n  %x\n  %x", da, db)
	}
}

// ============================================================
// Malformed and Truncated Input
// ============================================================

func TestDecode_RejectsTrailingBytes(t *testing.T) {
	data, err := Encode(Int(5), Int32Type(), nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data = append(data, 0x00)
	_, err = Decode(data, Int32Type(), nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for trailing bytes, got %v", err)
	}
}

func TestDecode_RejectsWrongTag(t *testing.T) {
	data, err := Encode(Int(5), Int32Type(), nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = Decode(data, StringType(), nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for tag mismatch, got %v", err)
	}
}

func TestDecode_RejectsBadBoolByte(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02}, BoolType(), nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for bool byte 0x02, got %v", err)
	}
}

func TestDecode_RejectsInvalidUTF8(t *testing.T) {
	data := []byte{0x08, 0, 0, 0, 2, 0xFF, 0xFE}
	_, err := Decode(data, StringType(), nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for invalid UTF-8, got %v", err)
	}
}

func TestDecode_RejectsUnsortedMapKeys(t *testing.T) {
	desc := MapOf(StringType(), Int32Type())
	// Two pairs with keys "b" then "a": count is right, order is not.
	data := []byte{
		0x0C, 0, 0, 0, 2,
		0x08, 0, 0, 0, 1, 'b', 0x02, 0, 0, 0, 1,
		0x08, 0, 0, 0, 1, 'a', 0x02, 0, 0, 0, 2,
	}
	_, err := Decode(data, desc, nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for unsorted map keys, got %v", err)
	}
}

func TestDecode_RejectsDuplicateMapKeys(t *testing.T) {
	desc := MapOf(StringType(), Int32Type())
	data := []byte{
		0x0C, 0, 0, 0, 2,
		0x08, 0, 0, 0, 1, 'a', 0x02, 0, 0, 0, 1,
		0x08, 0, 0, 0, 1, 'a', 0x02, 0, 0, 0, 2,
	}
	_, err := Decode(data, desc, nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for duplicate map keys, got %v", err)
	}
}

func TestDecode_RejectsUnionIndexOutOfRange(t *testing.T) {
	desc := EnumOf("red", "green")
	data := []byte{0x0E, 0, 0, 0, 9}
	_, err := Decode(data, desc, nil)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedDataError for variant index 9, got %v", err)
	}
}

func TestDecode_HugeCountDoesNotAllocate(t *testing.T) {
	// Claims 4 billion elements with a near-empty buffer. Must fail
	// on the count sanity check, not attempt the allocation.
	data := []byte{0x0B, 0xFF, 0xFF, 0xFF, 0xFF}
	_, err := Decode(data, ListOf(Int32Type()), nil)
	var truncated *TruncatedInputError
	if !errors.As(err, &truncated) {
		t.Fatalf("expected *TruncatedInputError for oversized count, got %v", err)
	}
}

// Every strict prefix of a valid encoding must fail cleanly with a
// typed error, never panic and never decode.
func TestDecode_AllPrefixesFail(t *testing.T) {
	desc := StructOf(
		Field("name", StringType()),
		Field("tags", ListOf(StringType())),
		Field("meta", MapOf(StringType(), Int64Type())),
		Field("alias", StringType(), WithOptional()),
	)
	v := StructVal(
		FieldVal("name", Str("node")),
		FieldVal("tags", List(Str("a"), Str("b"))),
		FieldVal("meta", MapVal(Pair(Str("k"), Int(1)))),
		FieldVal("alias", Str("n")),
	)
	data, err := Encode(v, desc, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for i := 0; i < len(data); i++ {
		_, err := Decode(data[:i], desc, nil)
		if err == nil {
			t.Fatalf("prefix of length %d decoded successfully", i)
		}
		var truncated *TruncatedInputError
		var malformed *MalformedDataError
		if !errors.As(err, &truncated) && !errors.As(err, &malformed) {
			t.Fatalf("prefix of length %d: untyped error %v", i, err)
		}
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	_, err := Decode(nil, BoolType(), nil)
	var truncated *TruncatedInputError
	if !errors.As(err, &truncated) {
		t.Fatalf("expected *TruncatedInputError for empty input, got %v", err)
	}
}

// ============================================================
// Encoding Errors
// ============================================================

func TestEncode_NonConformingValueFails(t *testing.T) {
	_, err := Encode(Str("nope"), Int32Type(), nil)
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
	var conf *ConformanceError
	if !errors.As(err, &conf) {
		t.Fatalf("expected wrapped *ConformanceError, got %v", errors.Unwrap(err))
	}
}

// ============================================================
// Recursive Types
// ============================================================

func TestRoundTrip_RecursiveList(t *testing.T) {
	reg := NewRegistry()
	node := StructOf(
		Field("value", Int32Type()),
		Field("next", OptionalOf(Ref("Node"))),
	)
	if err := reg.Register("Node", node); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	chain := func(vals ...int64) *Value {
		var next *Value = Null()
		for i := len(vals) - 1; i >= 0; i-- {
			next = StructVal(FieldVal("value", Int(vals[i])), FieldVal("next", next))
		}
		return next
	}

	cases := []struct {
		name string
		val  *Value
	}{
		{"depth 0", chain(1)},
		{"depth 1", chain(1, 2)},
		{"depth 4", chain(1, 2, 3, 4, 5)},
	}

	desc := Ref("Node")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.val, desc, reg)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := Decode(data, desc, reg)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !Equal(got, tc.val) {
				t.Errorf("round-trip changed value: got %v, want %v", got, tc.val)
			}
		})
	}
}

func TestEncode_UnresolvableRefFails(t *testing.T) {
	_, err := Encode(Int(1), Ref("Ghost"), NewRegistry())
	if err == nil {
		t.Fatal("expected error for unresolvable reference")
	}
	_, err = Encode(Int(1), Ref("Ghost"), nil)
	if err == nil {
		t.Fatal("expected error for reference without registry")
	}
}
