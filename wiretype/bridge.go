package wiretype

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Descriptor-guided conversion between JSON and Value. JSON has no
// native notion of fixed integer widths, byte sequences or tagged
// unions, so the bridge leans on the descriptor: numbers land on the
// declared width, bytes travel as standard base64 strings, unions as
// single-key {"tag": payload} objects (or a bare tag string for unit
// variants), and map keys as their string renderings.

// FromJSON interprets JSON data as a value of the described type.
// Shape mismatches are reported as *ConformanceError with a path,
// like Validate.
func FromJSON(data []byte, desc *Descriptor, reg *Registry) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("wiretype: JSON parse error: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("wiretype: trailing JSON after value")
	}
	return fromJSON(raw, desc, reg, "")
}

func fromJSON(raw interface{}, desc *Descriptor, reg *Registry, path string) (*Value, error) {
	desc, err := resolve(desc, reg)
	if err != nil {
		return nil, &ConformanceError{Path: path, Reason: err.Error()}
	}

	if desc.kind == KindOptional {
		if raw == nil {
			return Null(), nil
		}
		return fromJSON(raw, desc.elem, reg, path)
	}
	if raw == nil {
		return nil, conformErr(path, "JSON null, expected %s", desc.kind)
	}

	switch desc.kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		return Bool(b), nil

	case KindInt32, KindInt64:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		n, err := strconv.ParseInt(num.String(), 10, 64)
		if err != nil {
			return nil, conformErr(path, "not a %s: %s", desc.kind, num)
		}
		return Int(n), nil

	case KindUint32, KindUint64:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		n, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			return nil, conformErr(path, "not a %s: %s", desc.kind, num)
		}
		return Uint(n), nil

	case KindFloat32, KindFloat64:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		f, err := strconv.ParseFloat(num.String(), 64)
		if err != nil {
			return nil, conformErr(path, "not a %s: %s", desc.kind, num)
		}
		return Float(f), nil

	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		return Str(s), nil

	case KindBytes:
		s, ok := raw.(string)
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, conformErr(path, "invalid base64: %v", err)
		}
		return BytesVal(b), nil

	case KindList:
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		elems := make([]*Value, len(arr))
		for i, e := range arr {
			elems[i], err = fromJSON(e, desc.elem, reg, indexPath(path, i))
			if err != nil {
				return nil, err
			}
		}
		return List(elems...), nil

	case KindMap:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		entries := make([]MapEntry, 0, len(obj))
		for k, e := range obj {
			key, err := keyFromString(k, desc.key, reg, path)
			if err != nil {
				return nil, err
			}
			val, err := fromJSON(e, desc.val, reg, keyPath(path, key))
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key, Value: val})
		}
		return MapVal(entries...), nil

	case KindStruct:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, jsonMismatch(path, desc, raw)
		}
		fields := make([]FieldEntry, 0, len(obj))
		for _, fd := range desc.fields {
			e, present := obj[fd.Name]
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
			fv, err := fromJSON(e, fd.Type, reg, joinPath(path, fd.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldEntry{Name: fd.Name, Value: fv})
		}
		for k := range obj {
			if desc.FieldByName(k) == nil {
				return nil, conformErr(joinPath(path, k), "unknown field")
			}
		}
		return StructVal(fields...), nil

	case KindUnion:
		// Unit variants may appear as a bare tag string.
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
		obj, ok := raw.(map[string]interface{})
		if !ok || len(obj) != 1 {
			return nil, conformErr(path, "union must be a single-key object or a tag string")
		}
		for tag, e := range obj {
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
			payload, err := fromJSON(e, variant.Type, reg, joinPath(path, tag))
			if err != nil {
				return nil, err
			}
			return UnionVal(tag, payload), nil
		}
	}

	return nil, conformErr(path, "descriptor kind %s has no JSON form", desc.kind)
}

// keyFromString parses a JSON object key into a map key value of the
// descriptor's key kind.
func keyFromString(s string, keyDesc *Descriptor, reg *Registry, path string) (*Value, error) {
	kd, err := resolve(keyDesc, reg)
	if err != nil {
		return nil, &ConformanceError{Path: path, Reason: err.Error()}
	}
	switch kd.kind {
	case KindString:
		return Str(s), nil
	case KindBool:
		switch s {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, conformErr(path, "invalid bool key %q", s)
	case KindInt32, KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, conformErr(path, "invalid integer key %q", s)
		}
		return Int(n), nil
	case KindUint32, KindUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, conformErr(path, "invalid integer key %q", s)
		}
		return Uint(n), nil
	}
	return nil, conformErr(path, "%s is not a valid map key kind", kd.kind)
}

// ToJSON renders a value of the described type as JSON. The value is
// validated first. The rendering inverts FromJSON: maps become
// objects keyed by the key's string form, unions single-key objects
// (unit variants a bare tag string), bytes base64 strings.
func ToJSON(v *Value, desc *Descriptor, reg *Registry) ([]byte, error) {
	if err := Validate(v, desc, reg); err != nil {
		return nil, err
	}
	raw, err := toJSON(v, desc, reg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func toJSON(v *Value, desc *Descriptor, reg *Registry) (interface{}, error) {
	desc, err := resolve(desc, reg)
	if err != nil {
		return nil, err
	}

	if desc.kind == KindOptional {
		if v.IsNull() {
			return nil, nil
		}
		return toJSON(v, desc.elem, reg)
	}

	switch desc.kind {
	case KindBool:
		return v.boolVal, nil
	case KindInt32, KindInt64:
		return json.Number(strconv.FormatInt(v.intVal, 10)), nil
	case KindUint32, KindUint64:
		return json.Number(strconv.FormatUint(v.uintVal, 10)), nil
	case KindFloat32, KindFloat64:
		return v.floatVal, nil
	case KindString:
		return v.strVal, nil
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.bytesVal), nil

	case KindList:
		arr := make([]interface{}, len(v.listVal))
		for i, elem := range v.listVal {
			arr[i], err = toJSON(elem, desc.elem, reg)
			if err != nil {
				return nil, err
			}
		}
		return arr, nil

	case KindMap:
		obj := make(map[string]interface{}, len(v.mapVal))
		for _, entry := range v.mapVal {
			val, err := toJSON(entry.Value, desc.val, reg)
			if err != nil {
				return nil, err
			}
			obj[plainKeyString(entry.Key)] = val
		}
		return obj, nil

	case KindStruct:
		obj := make(map[string]interface{}, len(v.structVal))
		for _, fd := range desc.fields {
			fv := v.Get(fd.Name)
			if fv.IsNull() {
				continue
			}
			val, err := toJSON(fv, fd.Type, reg)
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
		payload, err := toJSON(uv.Value, variant.Type, reg)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{uv.Tag: payload}, nil
	}

	return nil, fmt.Errorf("wiretype: descriptor kind %s has no JSON form", desc.kind)
}

// plainKeyString renders a map key as a JSON object key.
func plainKeyString(v *Value) string {
	switch v.kind {
	case ValBool:
		return strconv.FormatBool(v.boolVal)
	case ValInt:
		return strconv.FormatInt(v.intVal, 10)
	case ValUint:
		return strconv.FormatUint(v.uintVal, 10)
	default:
		return v.strVal
	}
}

func jsonMismatch(path string, desc *Descriptor, raw interface{}) error {
	return conformErr(path, "JSON %s, expected %s", jsonTypeName(raw), desc.kind)
}

func jsonTypeName(raw interface{}) string {
	switch raw.(type) {
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
