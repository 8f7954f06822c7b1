package wiretype

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// ============================================================
// CBOR Bridge
// ============================================================
//
// Descriptor-guided conversion between Value and CBOR, for interop
// with peers that speak CBOR instead of the native wire format.
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items,
// so logically equal values marshal to identical bytes here too.
//
// The mapping mirrors the JSON bridge except that CBOR carries
// bytes and non-string map keys natively: unions are single-entry
// {tag: payload} maps (a bare tag string for unit variants).

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wiretype: CBOR encoder initialization failed: " + err.Error())
	}
}

// MarshalCBOR encodes a value of the described type as deterministic
// CBOR. The value is validated first.
func MarshalCBOR(v *Value, desc *Descriptor, reg *Registry) ([]byte, error) {
	if err := Validate(v, desc, reg); err != nil {
		return nil, err
	}
	raw, err := toCBOR(v, desc, reg)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(raw)
}

// UnmarshalCBOR interprets CBOR data as a value of the described
// type. Shape mismatches are reported as *ConformanceError with a
// path, like Validate.
func UnmarshalCBOR(data []byte, desc *Descriptor, reg *Registry) (*Value, error) {
	var raw interface{}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wiretype: CBOR parse error: %w", err)
	}
	return fromCBOR(raw, desc, reg, "")
}

func toCBOR(v *Value, desc *Descriptor, reg *Registry) (interface{}, error) {
	desc, err := resolve(desc, reg)
	if err != nil {
		return nil, err
	}

	if desc.kind == KindOptional {
		if v.IsNull() {
			return nil, nil
		}
		return toCBOR(v, desc.elem, reg)
	}

	switch desc.kind {
	case KindBool:
		return v.boolVal, nil
	case KindInt32, KindInt64:
		return v.intVal, nil
	case KindUint32, KindUint64:
		return v.uintVal, nil
	case KindFloat32:
		return float32(v.floatVal), nil
	case KindFloat64:
		return v.floatVal, nil
	case KindString:
		return v.strVal, nil
	case KindBytes:
		return v.bytesVal, nil

	case KindList:
		arr := make([]interface{}, len(v.listVal))
		for i, elem := range v.listVal {
			arr[i], err = toCBOR(elem, desc.elem, reg)
			if err != nil {
				return nil, err
			}
		}
		return arr, nil

	case KindMap:
		obj := make(map[interface{}]interface{}, len(v.mapVal))
		for _, entry := range v.mapVal {
			key, err := toCBOR(entry.Key, desc.key, reg)
			if err != nil {
				return nil, err
			}
			val, err := toCBOR(entry.Value, desc.val, reg)
			if err != nil {
				return nil, err
			}
			obj[key] = val
		}
		return obj, nil

	case KindStruct:
		obj := make(map[interface{}]interface{}, len(v.structVal))
		for _, fd := range desc.fields {
			fv := v.Get(fd.Name)
			if fv.IsNull() {
				continue
			}
			val, err := toCBOR(fv, fd.Type, reg)
			if err != nil {
				return nil, err
			}
			obj[fd.Name] = val
		}
		return obj, nil

	case KindUnion:
		uv := v.unionVal
		variant, _ := desc.VariantByTag(uv.Tag)
		if variant.Type == nil {
			return uv.Tag, nil
		}
		payload, err := toCBOR(uv.Value, variant.Type, reg)
		if err != nil {
			return nil, err
		}
		return map[interface{}]interface{}{uv.Tag: payload}, nil
	}

	return nil, fmt.Errorf("wiretype: descriptor kind %s has no CBOR form", desc.kind)
}

func fromCBOR(raw interface{}, desc *Descriptor, reg *Registry, path string) (*Value, error) {
	desc, err := resolve(desc, reg)
	if err != nil {
		return nil, &ConformanceError{Path: path, Reason: err.Error()}
	}

	if desc.kind == KindOptional {
		if raw == nil {
			return Null(), nil
		}
		return fromCBOR(raw, desc.elem, reg, path)
	}
	if raw == nil {
		return nil, conformErr(path, "CBOR null, expected %s", desc.kind)
	}

	switch desc.kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		return Bool(b), nil

	case KindInt32, KindInt64:
		n, ok := cborInt(raw)
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		return Int(n), nil

	case KindUint32, KindUint64:
		n, ok := cborUint(raw)
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		return Uint(n), nil

	case KindFloat32, KindFloat64:
		switch f := raw.(type) {
		case float64:
			return Float(f), nil
		case float32:
			return Float(float64(f)), nil
		}
		return nil, cborMismatch(path, desc, raw)

	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		return Str(s), nil

	case KindBytes:
		b, ok := raw.([]byte)
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		return BytesVal(b), nil

	case KindList:
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		elems := make([]*Value, len(arr))
		for i, e := range arr {
			elems[i], err = fromCBOR(e, desc.elem, reg, indexPath(path, i))
			if err != nil {
				return nil, err
			}
		}
		return List(elems...), nil

	case KindMap:
		obj, ok := raw.(map[interface{}]interface{})
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		entries := make([]MapEntry, 0, len(obj))
		for k, e := range obj {
			key, err := fromCBOR(k, desc.key, reg, path)
			if err != nil {
				return nil, err
			}
			val, err := fromCBOR(e, desc.val, reg, keyPath(path, key))
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key, Value: val})
		}
		return MapVal(entries...), nil

	case KindStruct:
		obj, ok := raw.(map[interface{}]interface{})
		if !ok {
			return nil, cborMismatch(path, desc, raw)
		}
		fields := make([]FieldEntry, 0, len(obj))
		for _, fd := range desc.fields {
			e, present := obj[interface{}(fd.Name)]
			if !present || e == nil {
				if fd.Optional {
					continue
				}
				ft, err := resolve(fd.Type, reg)
				if err != nil {
					return nil, &ConformanceError{Path: joinPath(path, fd.Name), Reason: err.Error()}
				}
				if ft.kind == KindOptional {
					continue
				}
				return nil, conformErr(joinPath(path, fd.Name), "required field missing")
			}
			fv, err := fromCBOR(e, fd.Type, reg, joinPath(path, fd.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldEntry{Name: fd.Name, Value: fv})
		}
		for k := range obj {
			name, ok := k.(string)
			if !ok {
				return nil, conformErr(path, "non-string struct key")
			}
			if desc.FieldByName(name) == nil {
				return nil, conformErr(joinPath(path, name), "unknown field")
			}
		}
		return StructVal(fields...), nil

	case KindUnion:
		if tag, ok := raw.(string); ok {
			variant, _ := desc.VariantByTag(tag)
			if variant == nil {
				return nil, conformErr(path, "unknown variant %q", tag)
			}
			if variant.Type != nil {
				return nil, conformErr(path, "variant %q requires a payload", tag)
			}
			return UnionVal(tag, nil), nil
		}
		obj, ok := raw.(map[interface{}]interface{})
		if !ok || len(obj) != 1 {
			return nil, conformErr(path, "union must be a single-entry map or a tag string")
		}
		for k, e := range obj {
			tag, ok := k.(string)
			if !ok {
				return nil, conformErr(path, "union tag must be a string")
			}
			variant, _ := desc.VariantByTag(tag)
			if variant == nil {
				return nil, conformErr(path, "unknown variant %q", tag)
			}
			if variant.Type == nil {
				if e != nil {
					return nil, conformErr(joinPath(path, tag), "unit variant carries a payload")
				}
				return UnionVal(tag, nil), nil
			}
			payload, err := fromCBOR(e, variant.Type, reg, joinPath(path, tag))
			if err != nil {
				return nil, err
			}
			return UnionVal(tag, payload), nil
		}
	}

	return nil, conformErr(path, "descriptor kind %s has no CBOR form", desc.kind)
}

// cborInt normalizes the integer types the CBOR decoder hands back
// for an any-typed target.
func cborInt(raw interface{}) (int64, bool) {
	switch n := raw.(type) {
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func cborUint(raw interface{}) (uint64, bool) {
	switch n := raw.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func cborMismatch(path string, desc *Descriptor, raw interface{}) error {
	return conformErr(path, "CBOR %T, expected %s", raw, desc.kind)
}
