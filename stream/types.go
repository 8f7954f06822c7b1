// Package stream implements the WTS1 byte envelope for wiretype
// payloads. A frame wraps one encoded payload with:
//   - Magic and version for resync and format evolution
//   - A payload kind (value vs. schema)
//   - Optional compression (lz4 or zstd) with a tag byte
//   - Integrity via CRC-32 of the stored bytes
//
// Frames are a storage and hand-off container, not a transport:
// connection handling, ordering and replication belong to whatever
// moves the bytes.
package stream

import "fmt"

// Version is the WTS1 envelope version.
const Version uint8 = 1

// Magic identifies a WTS1 frame. ASCII "WTS1".
var Magic = [4]byte{'W', 'T', 'S', '1'}

// PayloadKind indicates what the frame's payload contains.
type PayloadKind uint8

const (
	// KindValue is a wiretype binary value encoding.
	KindValue PayloadKind = 0

	// KindSchema is a descriptor in JSON interchange form, for
	// shipping type definitions to peers at runtime.
	KindSchema PayloadKind = 1

	// KindDigest is a 32-byte content hash of a value, for cheap
	// equality probes before transferring the value itself.
	KindDigest PayloadKind = 2
)

// String returns the kind name.
func (k PayloadKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindSchema:
		return "schema"
	case KindDigest:
		return "digest"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Frame is one decoded envelope: a payload plus its classification.
// Payload always holds the uncompressed bytes; compression is a
// storage detail chosen at encode time.
type Frame struct {
	Kind    PayloadKind
	Payload []byte
}
