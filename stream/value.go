package stream

import (
	"encoding/json"
	"fmt"

	"github.com/Neumenon/wiretype/wiretype"
)

// EncodeValue serializes a value under its descriptor and wraps the
// encoding in a KindValue frame.
func EncodeValue(v *wiretype.Value, desc *wiretype.Descriptor, reg *wiretype.Registry, tag CompressionTag) ([]byte, error) {
	payload, err := wiretype.Encode(v, desc, reg)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(Frame{Kind: KindValue, Payload: payload}, tag)
}

// DecodeValue unwraps one KindValue frame and decodes its payload
// under the descriptor. Returns the value and the number of envelope
// bytes consumed.
func DecodeValue(data []byte, desc *wiretype.Descriptor, reg *wiretype.Registry) (*wiretype.Value, int, error) {
	frame, n, err := DecodeFrame(data)
	if err != nil {
		return nil, 0, err
	}
	if frame.Kind != KindValue {
		return nil, 0, fmt.Errorf("stream: expected value frame, got %s", frame.Kind)
	}
	v, err := wiretype.Decode(frame.Payload, desc, reg)
	if err != nil {
		return nil, 0, err
	}
	return v, n, nil
}

// EncodeSchema wraps a descriptor's JSON interchange form in a
// KindSchema frame, for shipping type definitions to peers. Schema
// JSON compresses well, so zstd is the usual tag here.
func EncodeSchema(desc *wiretype.Descriptor, tag CompressionTag) ([]byte, error) {
	payload, err := json.Marshal(desc)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(Frame{Kind: KindSchema, Payload: payload}, tag)
}

// DecodeSchema unwraps one KindSchema frame into a descriptor.
func DecodeSchema(data []byte) (*wiretype.Descriptor, int, error) {
	frame, n, err := DecodeFrame(data)
	if err != nil {
		return nil, 0, err
	}
	if frame.Kind != KindSchema {
		return nil, 0, fmt.Errorf("stream: expected schema frame, got %s", frame.Kind)
	}
	desc := new(wiretype.Descriptor)
	if err := json.Unmarshal(frame.Payload, desc); err != nil {
		return nil, 0, err
	}
	return desc, n, nil
}

// EncodeDigest wraps a value's content hash in a KindDigest frame.
// Digests are 32 incompressible bytes; no compression tag applies.
func EncodeDigest(v *wiretype.Value, desc *wiretype.Descriptor, reg *wiretype.Registry) ([]byte, error) {
	h, err := wiretype.Digest(v, desc, reg)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(Frame{Kind: KindDigest, Payload: h[:]}, CompressionNone)
}

// DecodeDigest unwraps one KindDigest frame.
func DecodeDigest(data []byte) (wiretype.Hash, int, error) {
	frame, n, err := DecodeFrame(data)
	if err != nil {
		return wiretype.Hash{}, 0, err
	}
	if frame.Kind != KindDigest {
		return wiretype.Hash{}, 0, fmt.Errorf("stream: expected digest frame, got %s", frame.Kind)
	}
	if len(frame.Payload) != len(wiretype.Hash{}) {
		return wiretype.Hash{}, 0, fmt.Errorf("stream: digest payload is %d bytes, want %d", len(frame.Payload), len(wiretype.Hash{}))
	}
	var h wiretype.Hash
	copy(h[:], frame.Payload)
	return h, n, nil
}
