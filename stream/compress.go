package stream

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm applied to a
// frame's payload. Tags are stored in the frame header (1 byte);
// changing the values breaks envelope compatibility.
type CompressionTag uint8

const (
	// CompressionNone stores the payload uncompressed. The right
	// choice for small payloads and already-dense binary data.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 uses LZ4 block compression: fast, modest
	// ratio. Good default for mixed binary payloads.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd uses zstd at the default level: better
	// ratios for text-like payloads such as schema JSON.
	CompressionZstd CompressionTag = 2
)

// String returns the tag name.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// errIncompressible signals that compression would not shrink the
// payload; callers fall back to storing it uncompressed.
var errIncompressible = errors.New("stream: payload is incompressible")

// zstd coders are reused across calls; both are safe for concurrent
// use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("stream: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("stream: zstd decoder initialization failed: " + err.Error())
	}
}

// compress applies the tagged algorithm. For CompressionNone the
// input is returned unchanged. Returns errIncompressible when the
// output would not be smaller than the input.
func compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		dst := make([]byte, bound)
		written, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("stream: lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return dst[:written], nil

	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil

	default:
		return nil, fmt.Errorf("stream: unsupported compression tag: %d", tag)
	}
}

// decompress reverses compress. rawLen must match the original
// payload length exactly; a mismatch is corruption.
func decompress(stored []byte, tag CompressionTag, rawLen int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(stored) != rawLen {
			return nil, fmt.Errorf("stream: stored length %d does not match declared %d", len(stored), rawLen)
		}
		return stored, nil

	case CompressionLZ4:
		dst := make([]byte, rawLen)
		read, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, fmt.Errorf("stream: lz4 decompress: %w", err)
		}
		if read != rawLen {
			return nil, fmt.Errorf("stream: lz4 decompress: got %d bytes, expected %d", read, rawLen)
		}
		return dst, nil

	case CompressionZstd:
		dst, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("stream: zstd decompress: %w", err)
		}
		if len(dst) != rawLen {
			return nil, fmt.Errorf("stream: zstd decompress: got %d bytes, expected %d", len(dst), rawLen)
		}
		return dst, nil

	default:
		return nil, fmt.Errorf("stream: unsupported compression tag: %d", tag)
	}
}
