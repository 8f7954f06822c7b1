package wiretype

import "fmt"

// DuplicateTypeError reports an attempt to register an identifier
// that is already taken. Registration never overwrites: the first
// descriptor stays in force for the process lifetime.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("wiretype: type %q is already registered", e.Name)
}

// UnknownTypeError reports a lookup or reference to an identifier
// with no registered descriptor.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("wiretype: unknown type %q", e.Name)
}

// ConformanceError reports the first point at which a value fails to
// conform to a descriptor. Path locates the offending sub-value in
// dotted field / [index] form.
type ConformanceError struct {
	Path   string
	Reason string
}

func (e *ConformanceError) Error() string {
	if e.Path == "" {
		return "wiretype: " + e.Reason
	}
	return fmt.Sprintf("wiretype: %s: %s", e.Path, e.Reason)
}

// EncodeError wraps the conformance failure that stopped an encode.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "wiretype: encode: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// MalformedDataError reports structural corruption detected during
// decode: an unexpected kind tag, an out-of-range length or variant
// index, a bad presence byte, invalid UTF-8, or map keys out of
// canonical order. Offset is the byte position where the mismatch
// was detected.
type MalformedDataError struct {
	Offset int
	Reason string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("wiretype: malformed data at offset %d: %s", e.Offset, e.Reason)
}

// TruncatedInputError reports a buffer shorter than its declared
// lengths require. Offset is where the read started; Need is how
// many bytes it wanted.
type TruncatedInputError struct {
	Offset int
	Need   int
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("wiretype: truncated input: need %d bytes at offset %d", e.Need, e.Offset)
}
