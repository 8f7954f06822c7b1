package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// headerSize is the fixed WTS1 header length:
// magic(4) version(1) kind(1) compression(1) rawLen(4) storedLen(4) crc(4).
const headerSize = 19

// Typed corruption errors. Truncation readers get io.ErrUnexpectedEOF
// from ReadFrame, or ErrTruncated from DecodeFrame.
var (
	ErrBadMagic   = errors.New("stream: bad magic")
	ErrBadVersion = errors.New("stream: unsupported version")
	ErrChecksum   = errors.New("stream: checksum mismatch")
	ErrTruncated  = errors.New("stream: truncated frame")
)

// EncodeFrame wraps a payload in a WTS1 envelope. When the requested
// compression does not shrink the payload the frame silently falls
// back to CompressionNone, so decoding never depends on the caller's
// choice.
func EncodeFrame(frame Frame, tag CompressionTag) ([]byte, error) {
	if uint64(len(frame.Payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("stream: payload of %d bytes exceeds the 4-byte length prefix", len(frame.Payload))
	}

	stored, err := compress(frame.Payload, tag)
	if err != nil {
		if !errors.Is(err, errIncompressible) {
			return nil, err
		}
		stored, tag = frame.Payload, CompressionNone
	}

	out := make([]byte, headerSize+len(stored))
	copy(out[0:4], Magic[:])
	out[4] = Version
	out[5] = byte(frame.Kind)
	out[6] = byte(tag)
	binary.BigEndian.PutUint32(out[7:11], uint32(len(frame.Payload)))
	binary.BigEndian.PutUint32(out[11:15], uint32(len(stored)))
	binary.BigEndian.PutUint32(out[15:19], checksum(stored))
	copy(out[headerSize:], stored)
	return out, nil
}

// DecodeFrame parses one WTS1 envelope from a byte slice and returns
// the frame and the number of bytes consumed, so frames can be
// unpacked back-to-back from one buffer.
func DecodeFrame(data []byte) (Frame, int, error) {
	if len(data) < headerSize {
		return Frame{}, 0, ErrTruncated
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return Frame{}, 0, ErrBadMagic
	}
	if data[4] != Version {
		return Frame{}, 0, fmt.Errorf("%w: %d", ErrBadVersion, data[4])
	}

	kind := PayloadKind(data[5])
	tag := CompressionTag(data[6])
	rawLen := binary.BigEndian.Uint32(data[7:11])
	storedLen := binary.BigEndian.Uint32(data[11:15])
	wantCRC := binary.BigEndian.Uint32(data[15:19])

	total := headerSize + int(storedLen)
	if len(data) < total {
		return Frame{}, 0, ErrTruncated
	}
	stored := data[headerSize:total]

	if checksum(stored) != wantCRC {
		return Frame{}, 0, ErrChecksum
	}

	payload, err := decompress(stored, tag, int(rawLen))
	if err != nil {
		return Frame{}, 0, err
	}
	return Frame{Kind: kind, Payload: payload}, total, nil
}

// WriteFrame encodes a frame and writes it to w.
func WriteFrame(w io.Writer, frame Frame, tag CompressionTag) error {
	data, err := EncodeFrame(frame, tag)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFrame reads exactly one frame from r. Returns io.EOF if the
// reader is empty, io.ErrUnexpectedEOF if it ends mid-frame.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			if err == io.EOF {
				return Frame{}, io.EOF
			}
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}

	storedLen := binary.BigEndian.Uint32(header[11:15])
	buf := make([]byte, headerSize+int(storedLen))
	copy(buf, header[:])
	if _, err := io.ReadFull(r, buf[headerSize:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}

	frame, _, err := DecodeFrame(buf)
	return frame, err
}
