package wiretype

// Wire format constants. Every encoded node starts with a one-byte
// kind tag; variable-length kinds carry a 4-byte big-endian unsigned
// length or count prefix. All multi-byte integers and IEEE-754
// floats are big-endian. The tag is deliberately redundant with the
// descriptor so a decoder can tell structural corruption from a
// schema mismatch without external context.
const (
	tagBool     byte = 0x01 // 1 payload byte, 0x00 or 0x01
	tagInt32    byte = 0x02 // 4 bytes, two's complement
	tagInt64    byte = 0x03 // 8 bytes, two's complement
	tagUint32   byte = 0x04 // 4 bytes
	tagUint64   byte = 0x05 // 8 bytes
	tagFloat32  byte = 0x06 // 4 bytes, IEEE-754 binary32
	tagFloat64  byte = 0x07 // 8 bytes, IEEE-754 binary64
	tagString   byte = 0x08 // u32 byte length + UTF-8 bytes
	tagBytes    byte = 0x09 // u32 byte length + raw bytes
	tagOptional byte = 0x0A // 1 presence byte, then inner node if 0x01
	tagList     byte = 0x0B // u32 element count + elements in order
	tagMap      byte = 0x0C // u32 pair count + pairs in ascending key order
	tagStruct   byte = 0x0D // fields in declared order, no per-field key
	tagUnion    byte = 0x0E // u32 declared-variant index + payload node
)

// wireTag returns the wire tag for a resolved (non-Ref,
// non-Optional-transparent) descriptor kind.
func wireTag(k Kind) byte {
	switch k {
	case KindBool:
		return tagBool
	case KindInt32:
		return tagInt32
	case KindInt64:
		return tagInt64
	case KindUint32:
		return tagUint32
	case KindUint64:
		return tagUint64
	case KindFloat32:
		return tagFloat32
	case KindFloat64:
		return tagFloat64
	case KindString:
		return tagString
	case KindBytes:
		return tagBytes
	case KindOptional:
		return tagOptional
	case KindList:
		return tagList
	case KindMap:
		return tagMap
	case KindStruct:
		return tagStruct
	case KindUnion:
		return tagUnion
	default:
		return 0
	}
}
