package wiretype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes a value under the given descriptor. The value is
// validated first; a non-conforming value fails with *EncodeError
// wrapping the conformance failure, and nothing is emitted.
//
// The encoding is canonical: logically equal values always produce
// identical bytes (map pairs are emitted in ascending key order,
// struct fields in the descriptor's declared order).
func Encode(v *Value, desc *Descriptor, reg *Registry) ([]byte, error) {
	if err := Validate(v, desc, reg); err != nil {
		return nil, &EncodeError{Err: err}
	}

	var buf bytes.Buffer
	if err := encodeValue(&buf, v, desc, reg); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v *Value, desc *Descriptor, reg *Registry) error {
	desc, err := resolve(desc, reg)
	if err != nil {
		return err
	}

	switch desc.kind {
	case KindBool:
		buf.WriteByte(tagBool)
		if v.boolVal {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}

	case KindInt32:
		buf.WriteByte(tagInt32)
		writeU32(buf, uint32(int32(v.intVal)))

	case KindInt64:
		buf.WriteByte(tagInt64)
		writeU64(buf, uint64(v.intVal))

	case KindUint32:
		buf.WriteByte(tagUint32)
		writeU32(buf, uint32(v.uintVal))

	case KindUint64:
		buf.WriteByte(tagUint64)
		writeU64(buf, v.uintVal)

	case KindFloat32:
		buf.WriteByte(tagFloat32)
		writeU32(buf, math.Float32bits(float32(v.floatVal)))

	case KindFloat64:
		buf.WriteByte(tagFloat64)
		writeU64(buf, math.Float64bits(v.floatVal))

	case KindString:
		buf.WriteByte(tagString)
		if err := writeLen(buf, len(v.strVal)); err != nil {
			return err
		}
		buf.WriteString(v.strVal)

	case KindBytes:
		buf.WriteByte(tagBytes)
		if err := writeLen(buf, len(v.bytesVal)); err != nil {
			return err
		}
		buf.Write(v.bytesVal)

	case KindOptional:
		buf.WriteByte(tagOptional)
		if v.IsNull() {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return encodeValue(buf, v, desc.elem, reg)

	case KindList:
		buf.WriteByte(tagList)
		if err := writeLen(buf, len(v.listVal)); err != nil {
			return err
		}
		for _, elem := range v.listVal {
			if err := encodeValue(buf, elem, desc.elem, reg); err != nil {
				return err
			}
		}

	case KindMap:
		buf.WriteByte(tagMap)
		if err := writeLen(buf, len(v.mapVal)); err != nil {
			return err
		}
		for _, entry := range sortedEntries(v.mapVal) {
			if err := encodeValue(buf, entry.Key, desc.key, reg); err != nil {
				return err
			}
			if err := encodeValue(buf, entry.Value, desc.val, reg); err != nil {
				return err
			}
		}

	case KindStruct:
		buf.WriteByte(tagStruct)
		for _, fd := range desc.fields {
			fv := v.Get(fd.Name)
			if fd.Optional {
				// An optional field occupies its slot through the
				// optional presence flag even when absent.
				buf.WriteByte(tagOptional)
				if fv.IsNull() {
					buf.WriteByte(0)
					continue
				}
				buf.WriteByte(1)
			}
			if err := encodeValue(buf, fv, fd.Type, reg); err != nil {
				return err
			}
		}

	case KindUnion:
		buf.WriteByte(tagUnion)
		variant, idx := desc.VariantByTag(v.unionVal.Tag)
		writeU32(buf, uint32(idx))
		if variant.Type != nil {
			return encodeValue(buf, v.unionVal.Value, variant.Type, reg)
		}

	default:
		return fmt.Errorf("wiretype: cannot encode descriptor kind %s", desc.kind)
	}

	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeLen(buf *bytes.Buffer, n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return fmt.Errorf("wiretype: length %d exceeds the 4-byte prefix", n)
	}
	writeU32(buf, uint32(n))
	return nil
}
