package wiretype

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Decode reconstructs a value from its canonical encoding under the
// given descriptor. Decoding is all-or-nothing: any structural
// mismatch aborts with *MalformedDataError, a buffer shorter than
// its declared lengths require aborts with *TruncatedInputError, and
// an unresolved named reference aborts with *UnknownTypeError. No
// partially populated value is ever returned.
func Decode(data []byte, desc *Descriptor, reg *Registry) (*Value, error) {
	d := &decoder{buf: data}
	v, err := d.value(desc, reg)
	if err != nil {
		return nil, err
	}
	if d.off != len(d.buf) {
		return nil, &MalformedDataError{Offset: d.off, Reason: fmt.Sprintf("%d trailing bytes after value", len(d.buf)-d.off)}
	}
	return v, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) readByte() (byte, error) {
	if d.off >= len(d.buf) {
		return 0, &TruncatedInputError{Offset: d.off, Need: 1}
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) readN(n int) ([]byte, error) {
	if n > len(d.buf)-d.off {
		return nil, &TruncatedInputError{Offset: d.off, Need: n}
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) readU32() (uint32, error) {
	b, err := d.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) readU64() (uint64, error) {
	b, err := d.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readCount reads a u32 count prefix and rejects counts that cannot
// possibly fit in the remaining buffer (each counted item occupies
// at least one byte), before any allocation happens.
func (d *decoder) readCount() (int, error) {
	off := d.off
	n, err := d.readU32()
	if err != nil {
		return 0, err
	}
	if int64(n) > int64(len(d.buf)-d.off) {
		return 0, &TruncatedInputError{Offset: off, Need: int(n)}
	}
	return int(n), nil
}

func (d *decoder) expectTag(want byte, kind Kind) error {
	off := d.off
	got, err := d.readByte()
	if err != nil {
		return err
	}
	if got != want {
		return &MalformedDataError{
			Offset: off,
			Reason: fmt.Sprintf("expected %s tag 0x%02x, got 0x%02x", kind, want, got),
		}
	}
	return nil
}

func (d *decoder) value(desc *Descriptor, reg *Registry) (*Value, error) {
	desc, err := resolve(desc, reg)
	if err != nil {
		return nil, err
	}

	if err := d.expectTag(wireTag(desc.kind), desc.kind); err != nil {
		return nil, err
	}

	switch desc.kind {
	case KindBool:
		off := d.off
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, &MalformedDataError{Offset: off, Reason: fmt.Sprintf("bool byte 0x%02x", b)}
		}
		return Bool(b == 1), nil

	case KindInt32:
		u, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return Int(int64(int32(u))), nil

	case KindInt64:
		u, err := d.readU64()
		if err != nil {
			return nil, err
		}
		return Int(int64(u)), nil

	case KindUint32:
		u, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return Uint(uint64(u)), nil

	case KindUint64:
		u, err := d.readU64()
		if err != nil {
			return nil, err
		}
		return Uint(u), nil

	case KindFloat32:
		u, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return Float(float64(math.Float32frombits(u))), nil

	case KindFloat64:
		u, err := d.readU64()
		if err != nil {
			return nil, err
		}
		return Float(math.Float64frombits(u)), nil

	case KindString:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		off := d.off
		b, err := d.readN(n)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, &MalformedDataError{Offset: off, Reason: "string is not valid UTF-8"}
		}
		return Str(string(b)), nil

	case KindBytes:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		b, err := d.readN(n)
		if err != nil {
			return nil, err
		}
		out := make([]byte, n)
		copy(out, b)
		return BytesVal(out), nil

	case KindOptional:
		present, err := d.presence()
		if err != nil {
			return nil, err
		}
		if !present {
			return Null(), nil
		}
		return d.value(desc.elem, reg)

	case KindList:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		elems := make([]*Value, n)
		for i := range elems {
			elems[i], err = d.value(desc.elem, reg)
			if err != nil {
				return nil, err
			}
		}
		return List(elems...), nil

	case KindMap:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		entries := make([]MapEntry, n)
		for i := range entries {
			keyOff := d.off
			key, err := d.value(desc.key, reg)
			if err != nil {
				return nil, err
			}
			if i > 0 && compareKeys(entries[i-1].Key, key) >= 0 {
				return nil, &MalformedDataError{Offset: keyOff, Reason: "map keys not in ascending canonical order"}
			}
			val, err := d.value(desc.val, reg)
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: key, Value: val}
		}
		return MapVal(entries...), nil

	case KindStruct:
		fields := make([]FieldEntry, 0, len(desc.fields))
		for _, fd := range desc.fields {
			if fd.Optional {
				if err := d.expectTag(tagOptional, KindOptional); err != nil {
					return nil, err
				}
				present, err := d.presence()
				if err != nil {
					return nil, err
				}
				if !present {
					continue
				}
			}
			fv, err := d.value(fd.Type, reg)
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldEntry{Name: fd.Name, Value: fv})
		}
		return StructVal(fields...), nil

	case KindUnion:
		off := d.off
		idx, err := d.readU32()
		if err != nil {
			return nil, err
		}
		if int64(idx) >= int64(len(desc.variants)) {
			return nil, &MalformedDataError{
				Offset: off,
				Reason: fmt.Sprintf("variant index %d out of range (%d variants)", idx, len(desc.variants)),
			}
		}
		variant := desc.variants[idx]
		if variant.Type == nil {
			return UnionVal(variant.Tag, nil), nil
		}
		payload, err := d.value(variant.Type, reg)
		if err != nil {
			return nil, err
		}
		return UnionVal(variant.Tag, payload), nil
	}

	return nil, &MalformedDataError{Offset: d.off, Reason: fmt.Sprintf("descriptor kind %s cannot be decoded", desc.kind)}
}

func (d *decoder) presence() (bool, error) {
	off := d.off
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, &MalformedDataError{Offset: off, Reason: fmt.Sprintf("presence byte 0x%02x", b)}
	}
	return b == 1, nil
}
