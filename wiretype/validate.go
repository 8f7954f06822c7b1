package wiretype

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Validate checks that a value structurally and semantically
// conforms to a descriptor, resolving named references through the
// registry. It stops at the first violation and returns a
// *ConformanceError carrying the path to the offending sub-value.
//
// Conformance is exact: no implicit numeric widening or narrowing, a
// signed descriptor takes only Int values and an unsigned one only
// Uint values, and struct field sets are closed (a field outside the
// declared set is a violation, not ignored).
func Validate(v *Value, desc *Descriptor, reg *Registry) error {
	return validate(v, desc, reg, "")
}

func validate(v *Value, desc *Descriptor, reg *Registry, path string) error {
	desc, err := resolve(desc, reg)
	if err != nil {
		return &ConformanceError{Path: path, Reason: err.Error()}
	}

	if desc.kind == KindOptional {
		if v.IsNull() {
			return nil
		}
		return validate(v, desc.elem, reg, path)
	}

	if v.IsNull() {
		return conformErr(path, "value absent, expected %s", desc.kind)
	}

	switch desc.kind {
	case KindBool:
		if v.kind != ValBool {
			return kindMismatch(path, desc, v)
		}

	case KindInt32:
		if v.kind != ValInt {
			return kindMismatch(path, desc, v)
		}
		if v.intVal < math.MinInt32 || v.intVal > math.MaxInt32 {
			return conformErr(path, "value %d out of int32 range", v.intVal)
		}
		return checkIntBounds(path, desc, v.intVal)

	case KindInt64:
		if v.kind != ValInt {
			return kindMismatch(path, desc, v)
		}
		return checkIntBounds(path, desc, v.intVal)

	case KindUint32:
		if v.kind != ValUint {
			return kindMismatch(path, desc, v)
		}
		if v.uintVal > math.MaxUint32 {
			return conformErr(path, "value %d out of uint32 range", v.uintVal)
		}
		return checkUintBounds(path, desc, v.uintVal)

	case KindUint64:
		if v.kind != ValUint {
			return kindMismatch(path, desc, v)
		}
		return checkUintBounds(path, desc, v.uintVal)

	case KindFloat32:
		if v.kind != ValFloat {
			return kindMismatch(path, desc, v)
		}
		f := v.floatVal
		if !math.IsNaN(f) && float64(float32(f)) != f {
			return conformErr(path, "value %v is not exactly representable as float32", f)
		}
		return checkFloatBounds(path, desc, f)

	case KindFloat64:
		if v.kind != ValFloat {
			return kindMismatch(path, desc, v)
		}
		return checkFloatBounds(path, desc, v.floatVal)

	case KindString:
		if v.kind != ValStr {
			return kindMismatch(path, desc, v)
		}
		if !utf8.ValidString(v.strVal) {
			return conformErr(path, "string is not valid UTF-8")
		}

	case KindBytes:
		if v.kind != ValBytes {
			return kindMismatch(path, desc, v)
		}

	case KindList:
		if v.kind != ValList {
			return kindMismatch(path, desc, v)
		}
		for i, elem := range v.listVal {
			if err := validate(elem, desc.elem, reg, indexPath(path, i)); err != nil {
				return err
			}
		}

	case KindMap:
		if v.kind != ValMap {
			return kindMismatch(path, desc, v)
		}
		for i, entry := range v.mapVal {
			if err := validate(entry.Key, desc.key, reg, indexPath(path, i)); err != nil {
				return err
			}
			for _, prior := range v.mapVal[:i] {
				if Equal(prior.Key, entry.Key) {
					return conformErr(path, "duplicate map key %s", keyString(entry.Key))
				}
			}
			if err := validate(entry.Value, desc.val, reg, keyPath(path, entry.Key)); err != nil {
				return err
			}
		}

	case KindStruct:
		if v.kind != ValStruct {
			return kindMismatch(path, desc, v)
		}
		// Declared fields: required present and conforming,
		// optional absent or conforming.
		for _, fd := range desc.fields {
			fieldPath := joinPath(path, fd.Name)
			fv := v.Get(fd.Name)
			if fv.IsNull() {
				if fd.Optional {
					continue
				}
				// A field declared optional<T> accepts absence
				// through its own type.
				ft, err := resolve(fd.Type, reg)
				if err != nil {
					return &ConformanceError{Path: fieldPath, Reason: err.Error()}
				}
				if ft.kind == KindOptional {
					continue
				}
				return conformErr(fieldPath, "required field missing")
			}
			if err := validate(fv, fd.Type, reg, fieldPath); err != nil {
				return err
			}
		}
		// Closed schema: nothing beyond the declared set.
		seen := make(map[string]bool, len(v.structVal))
		for _, f := range v.structVal {
			if seen[f.Name] {
				return conformErr(joinPath(path, f.Name), "duplicate field")
			}
			seen[f.Name] = true
			if desc.FieldByName(f.Name) == nil {
				return conformErr(joinPath(path, f.Name), "unknown field")
			}
		}

	case KindUnion:
		if v.kind != ValUnion {
			return kindMismatch(path, desc, v)
		}
		uv := v.unionVal
		if uv == nil || uv.Tag == "" {
			return conformErr(path, "union without active variant")
		}
		variant, _ := desc.VariantByTag(uv.Tag)
		if variant == nil {
			return conformErr(path, "unknown variant %q", uv.Tag)
		}
		variantPath := joinPath(path, uv.Tag)
		if variant.Type == nil {
			if !uv.Value.IsNull() {
				return conformErr(variantPath, "unit variant carries a payload")
			}
			return nil
		}
		return validate(uv.Value, variant.Type, reg, variantPath)

	default:
		return conformErr(path, "descriptor kind %s cannot be validated directly", desc.kind)
	}

	return nil
}

func checkIntBounds(path string, desc *Descriptor, v int64) error {
	if desc.minInt != nil && v < *desc.minInt {
		return conformErr(path, "value %d is less than minimum %d", v, *desc.minInt)
	}
	if desc.maxInt != nil && v > *desc.maxInt {
		return conformErr(path, "value %d is greater than maximum %d", v, *desc.maxInt)
	}
	return nil
}

func checkUintBounds(path string, desc *Descriptor, v uint64) error {
	if desc.minU != nil && v < *desc.minU {
		return conformErr(path, "value %d is less than minimum %d", v, *desc.minU)
	}
	if desc.maxU != nil && v > *desc.maxU {
		return conformErr(path, "value %d is greater than maximum %d", v, *desc.maxU)
	}
	return nil
}

func checkFloatBounds(path string, desc *Descriptor, v float64) error {
	if desc.minF != nil && v < *desc.minF {
		return conformErr(path, "value %v is less than minimum %v", v, *desc.minF)
	}
	if desc.maxF != nil && v > *desc.maxF {
		return conformErr(path, "value %v is greater than maximum %v", v, *desc.maxF)
	}
	return nil
}

func kindMismatch(path string, desc *Descriptor, v *Value) error {
	return conformErr(path, "expected %s, got %s", desc.kind, v.Kind())
}

func conformErr(path, format string, args ...interface{}) *ConformanceError {
	return &ConformanceError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Path helpers

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

func keyPath(base string, key *Value) string {
	return fmt.Sprintf("%s[%s]", base, keyString(key))
}

// keyString renders a map key for paths and error messages.
func keyString(v *Value) string {
	if v == nil {
		return "<nil>"
	}
	switch v.kind {
	case ValBool:
		return fmt.Sprintf("%t", v.boolVal)
	case ValInt:
		return fmt.Sprintf("%d", v.intVal)
	case ValUint:
		return fmt.Sprintf("%d", v.uintVal)
	case ValStr:
		return fmt.Sprintf("%q", v.strVal)
	default:
		return v.kind.String()
	}
}
