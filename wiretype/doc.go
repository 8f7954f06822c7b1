// Package wiretype implements a runtime type system and structured
// data codec for processes that need to agree on typed values
// without sharing a compiled schema.
//
// The pieces:
//   - Descriptor: runtime type descriptions (primitives, optionals,
//     lists, maps, structs, tagged unions, named references)
//   - Value: a dynamic tagged value, independent of any schema
//   - Registry: a process-wide name → descriptor catalog with
//     deferred reference resolution for recursive types
//   - Validate: conformance checking with paths to violations
//   - Encode/Decode: a canonical binary wire format
//
// # Wire Format
//
// Big-endian throughout. Every node starts with a one-byte kind tag;
// strings, bytes, lists and maps carry a 4-byte unsigned length or
// count prefix. Booleans are one payload byte, integers and floats
// their declared width (32/64-bit, floats IEEE-754). Optionals are a
// presence byte plus the inner node. Struct fields follow the
// descriptor's declared order with no per-field keys; optional
// fields keep their slot through the optional presence flag. Unions
// are a 4-byte declared-variant index plus the payload node.
//
// Map pairs are always emitted in ascending key order, so equal
// values encode to identical bytes regardless of construction order.
// That canonical form is what Digest hashes.
//
// # Conformance
//
// A Value carries no type tag beyond its own shape; Validate
// establishes whether it conforms to a given Descriptor. Struct
// schemas are closed: fields outside the declared set are
// conformance errors, not extensions.
//
// # Example
//
//	reg := wiretype.NewRegistry()
//	reg.Register("Point", wiretype.StructOf(
//		wiretype.Field("x", wiretype.Int32Type()),
//		wiretype.Field("y", wiretype.Int32Type()),
//	))
//
//	point := wiretype.StructVal(
//		wiretype.FieldVal("x", wiretype.Int(3)),
//		wiretype.FieldVal("y", wiretype.Int(-4)),
//	)
//
//	desc, _ := reg.Resolve("Point")
//	data, _ := wiretype.Encode(point, desc, reg)
//	back, _ := wiretype.Decode(data, desc, reg)
//	// wiretype.Equal(point, back) == true
//
// Bridges to JSON (FromJSON/ToJSON) and deterministic CBOR
// (MarshalCBOR/UnmarshalCBOR) cover interop with peers that do not
// speak the native format; descriptors themselves marshal to a
// tagged JSON form so schemas can be shipped at runtime.
package wiretype
