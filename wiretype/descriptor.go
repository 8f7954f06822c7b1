package wiretype

import (
	"fmt"
	"strings"
)

// Kind identifies the shape a Descriptor describes.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindOptional
	KindList
	KindMap
	KindStruct
	KindUnion
	KindRef
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Descriptor describes one type. Descriptors are immutable once
// constructed; composite descriptors share their children by
// reference, which is safe for the same reason.
type Descriptor struct {
	kind Kind

	// Composite children (valid per kind)
	elem     *Descriptor // Optional inner, List element
	key      *Descriptor // Map key
	val      *Descriptor // Map value
	fields   []*FieldDef // Struct fields, in declared order
	variants []*Variant  // Union variants, in declared order
	refName  string      // Ref target identifier

	// Numeric bounds (int/uint/float kinds). Unset when nil.
	minInt *int64
	maxInt *int64
	minU   *uint64
	maxU   *uint64
	minF   *float64
	maxF   *float64

	// Default value for primitive kinds, nil if none.
	def *Value
}

// FieldDef is one struct field: name, type and whether the field may
// be absent.
type FieldDef struct {
	Name     string
	Type     *Descriptor
	Optional bool
	Default  *Value // Default for the field, nil if none
}

// Variant is one union alternative. A nil Type marks a unit variant
// that carries no payload (the original enum case).
type Variant struct {
	Tag  string
	Type *Descriptor
}

// Kind returns the descriptor kind.
func (d *Descriptor) Kind() Kind {
	return d.kind
}

// Elem returns the inner descriptor of an Optional or the element
// descriptor of a List, nil otherwise.
func (d *Descriptor) Elem() *Descriptor {
	return d.elem
}

// KeyType returns the key descriptor of a Map, nil otherwise.
func (d *Descriptor) KeyType() *Descriptor {
	return d.key
}

// ValType returns the value descriptor of a Map, nil otherwise.
func (d *Descriptor) ValType() *Descriptor {
	return d.val
}

// Fields returns the declared struct fields in order.
func (d *Descriptor) Fields() []*FieldDef {
	return d.fields
}

// FieldByName returns the field with the given name, or nil.
func (d *Descriptor) FieldByName(name string) *FieldDef {
	for _, f := range d.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Variants returns the declared union variants in order.
func (d *Descriptor) Variants() []*Variant {
	return d.variants
}

// VariantByTag returns the variant with the given tag and its
// declared index, or (nil, -1).
func (d *Descriptor) VariantByTag(tag string) (*Variant, int) {
	for i, v := range d.variants {
		if v.Tag == tag {
			return v, i
		}
	}
	return nil, -1
}

// RefName returns the target identifier of a Ref descriptor.
func (d *Descriptor) RefName() string {
	return d.refName
}

// ============================================================
// Constructors
// ============================================================

// BoolType returns a boolean descriptor.
func BoolType(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindBool}, opts)
}

// Int32Type returns a 32-bit signed integer descriptor.
func Int32Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindInt32}, opts)
}

// Int64Type returns a 64-bit signed integer descriptor.
func Int64Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindInt64}, opts)
}

// Uint32Type returns a 32-bit unsigned integer descriptor.
func Uint32Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindUint32}, opts)
}

// Uint64Type returns a 64-bit unsigned integer descriptor.
func Uint64Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindUint64}, opts)
}

// Float32Type returns a 32-bit IEEE-754 float descriptor.
func Float32Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindFloat32}, opts)
}

// Float64Type returns a 64-bit IEEE-754 float descriptor.
func Float64Type(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindFloat64}, opts)
}

// StringType returns a UTF-8 string descriptor.
func StringType(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindString}, opts)
}

// BytesType returns a byte-sequence descriptor.
func BytesType(opts ...TypeOption) *Descriptor {
	return applyOpts(&Descriptor{kind: KindBytes}, opts)
}

// OptionalOf returns a descriptor whose values are either absent or
// conform to inner.
func OptionalOf(inner *Descriptor) *Descriptor {
	return &Descriptor{kind: KindOptional, elem: inner}
}

// ListOf returns an ordered-sequence descriptor.
func ListOf(elem *Descriptor) *Descriptor {
	return &Descriptor{kind: KindList, elem: elem}
}

// MapOf returns a key-unique mapping descriptor. Key kinds are
// restricted to bool, integer and string so every mapping has a
// canonical encoding order; the restriction is enforced by Check.
func MapOf(key, val *Descriptor) *Descriptor {
	return &Descriptor{kind: KindMap, key: key, val: val}
}

// StructOf returns a struct descriptor with the given fields, in
// declared order.
func StructOf(fields ...*FieldDef) *Descriptor {
	return &Descriptor{kind: KindStruct, fields: fields}
}

// UnionOf returns a tagged-union descriptor with the given variants,
// in declared order.
func UnionOf(variants ...*Variant) *Descriptor {
	return &Descriptor{kind: KindUnion, variants: variants}
}

// EnumOf returns a union of unit variants, one per name.
func EnumOf(names ...string) *Descriptor {
	variants := make([]*Variant, len(names))
	for i, n := range names {
		variants[i] = &Variant{Tag: n}
	}
	return &Descriptor{kind: KindUnion, variants: variants}
}

// Ref returns a deferred reference to a type registered under the
// given identifier. The reference is resolved through a Registry at
// validation and codec time, which is what makes recursive and
// mutually recursive type graphs possible.
func Ref(name string) *Descriptor {
	return &Descriptor{kind: KindRef, refName: name}
}

// Field creates a struct field definition.
func Field(name string, typ *Descriptor, opts ...FieldOption) *FieldDef {
	f := &FieldDef{Name: name, Type: typ}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UnionVariant creates a union variant carrying a payload type.
func UnionVariant(tag string, typ *Descriptor) *Variant {
	return &Variant{Tag: tag, Type: typ}
}

// UnitVariant creates a payload-less union variant.
func UnitVariant(tag string) *Variant {
	return &Variant{Tag: tag}
}

// ============================================================
// Options
// ============================================================

// TypeOption modifies a primitive descriptor under construction.
type TypeOption func(*Descriptor)

func applyOpts(d *Descriptor, opts []TypeOption) *Descriptor {
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithDefault sets the descriptor's default value. The default must
// conform to the descriptor; Check rejects mismatches.
func WithDefault(v *Value) TypeOption {
	return func(d *Descriptor) {
		d.def = v
	}
}

// WithMinInt sets the inclusive lower bound of a signed integer type.
func WithMinInt(min int64) TypeOption {
	return func(d *Descriptor) {
		d.minInt = &min
	}
}

// WithMaxInt sets the inclusive upper bound of a signed integer type.
func WithMaxInt(max int64) TypeOption {
	return func(d *Descriptor) {
		d.maxInt = &max
	}
}

// WithMinUint sets the inclusive lower bound of an unsigned integer type.
func WithMinUint(min uint64) TypeOption {
	return func(d *Descriptor) {
		d.minU = &min
	}
}

// WithMaxUint sets the inclusive upper bound of an unsigned integer type.
func WithMaxUint(max uint64) TypeOption {
	return func(d *Descriptor) {
		d.maxU = &max
	}
}

// WithMinFloat sets the inclusive lower bound of a float type.
func WithMinFloat(min float64) TypeOption {
	return func(d *Descriptor) {
		d.minF = &min
	}
}

// WithMaxFloat sets the inclusive upper bound of a float type.
func WithMaxFloat(max float64) TypeOption {
	return func(d *Descriptor) {
		d.maxF = &max
	}
}

// FieldOption modifies a field definition under construction.
type FieldOption func(*FieldDef)

// WithOptional marks a field as allowed to be absent.
func WithOptional() FieldOption {
	return func(f *FieldDef) {
		f.Optional = true
	}
}

// WithFieldDefault sets a default value for the field.
func WithFieldDefault(v *Value) FieldOption {
	return func(f *FieldDef) {
		f.Default = v
	}
}

// ============================================================
// Defaults
// ============================================================

// HasDefault reports whether the descriptor provides a default value.
// Lists and maps always default to empty.
func (d *Descriptor) HasDefault() bool {
	switch d.kind {
	case KindList, KindMap:
		return true
	default:
		return d.def != nil
	}
}

// DefaultValue returns the descriptor's default value, or nil if it
// has none. Lists and maps default to their empty form.
func (d *Descriptor) DefaultValue() *Value {
	switch d.kind {
	case KindList:
		return List()
	case KindMap:
		return MapVal()
	default:
		return d.def
	}
}

// ============================================================
// String rendering
// ============================================================

// String renders a compact type expression, e.g.
// struct{x:int32 y:int32} or list<ref(Node)>.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.kind {
	case KindOptional:
		return "optional<" + d.elem.String() + ">"
	case KindList:
		return "list<" + d.elem.String() + ">"
	case KindMap:
		return "map<" + d.key.String() + "," + d.val.String() + ">"
	case KindStruct:
		var sb strings.Builder
		sb.WriteString("struct{")
		for i, f := range d.fields {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			sb.WriteString(f.Type.String())
			if f.Optional {
				sb.WriteString("?")
			}
		}
		sb.WriteByte('}')
		return sb.String()
	case KindUnion:
		var sb strings.Builder
		sb.WriteString("union{")
		for i, v := range d.variants {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(v.Tag)
			if v.Type != nil {
				sb.WriteByte('(')
				sb.WriteString(v.Type.String())
				sb.WriteByte(')')
			}
		}
		sb.WriteByte('}')
		return sb.String()
	case KindRef:
		return "ref(" + d.refName + ")"
	default:
		return d.kind.String()
	}
}

// ============================================================
// Structural validity
// ============================================================

// Check verifies the descriptor's structural validity rules: unique
// struct field names, unique union variant tags, map keys restricted
// to ordering-comparable primitive kinds, coherent numeric bounds and
// conforming defaults. Check does not resolve Refs; that is the
// registry's job (see Registry.ResolveRefs).
func (d *Descriptor) Check() error {
	return d.check("")
}

func (d *Descriptor) check(path string) error {
	if d == nil {
		return fmt.Errorf("wiretype: nil descriptor at %q", path)
	}

	switch d.kind {
	case KindInt32, KindInt64:
		if d.minInt != nil && d.maxInt != nil && *d.minInt > *d.maxInt {
			return fmt.Errorf("wiretype: invalid range %d > %d at %q", *d.minInt, *d.maxInt, path)
		}
	case KindUint32, KindUint64:
		if d.minU != nil && d.maxU != nil && *d.minU > *d.maxU {
			return fmt.Errorf("wiretype: invalid range %d > %d at %q", *d.minU, *d.maxU, path)
		}
	case KindFloat32, KindFloat64:
		if d.minF != nil && d.maxF != nil && *d.minF > *d.maxF {
			return fmt.Errorf("wiretype: invalid range %v > %v at %q", *d.minF, *d.maxF, path)
		}

	case KindOptional, KindList:
		if d.elem == nil {
			return fmt.Errorf("wiretype: %s without element type at %q", d.kind, path)
		}
		return d.elem.check(path)

	case KindMap:
		if d.key == nil || d.val == nil {
			return fmt.Errorf("wiretype: map without key or value type at %q", path)
		}
		if !isKeyKind(d.key.kind) {
			return fmt.Errorf("wiretype: %s is not a valid map key kind at %q", d.key.kind, path)
		}
		if err := d.key.check(path); err != nil {
			return err
		}
		return d.val.check(path)

	case KindStruct:
		seen := make(map[string]bool, len(d.fields))
		for _, f := range d.fields {
			if f.Name == "" {
				return fmt.Errorf("wiretype: empty field name at %q", path)
			}
			if seen[f.Name] {
				return fmt.Errorf("wiretype: duplicate field %q at %q", f.Name, path)
			}
			seen[f.Name] = true
			if err := f.Type.check(joinPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case KindUnion:
		if len(d.variants) == 0 {
			return fmt.Errorf("wiretype: union with no variants at %q", path)
		}
		seen := make(map[string]bool, len(d.variants))
		for _, v := range d.variants {
			if v.Tag == "" {
				return fmt.Errorf("wiretype: empty variant tag at %q", path)
			}
			if seen[v.Tag] {
				return fmt.Errorf("wiretype: duplicate variant %q at %q", v.Tag, path)
			}
			seen[v.Tag] = true
			if v.Type != nil {
				if err := v.Type.check(joinPath(path, v.Tag)); err != nil {
					return err
				}
			}
		}
		return nil

	case KindRef:
		if d.refName == "" {
			return fmt.Errorf("wiretype: ref without target name at %q", path)
		}
		return nil
	}

	if d.def != nil {
		if err := Validate(d.def, d, nil); err != nil {
			return fmt.Errorf("wiretype: default value does not conform at %q: %w", path, err)
		}
	}

	return nil
}

// isKeyKind reports whether a kind may serve as a map key. Only
// kinds with a total natural ordering qualify, since map pairs are
// encoded in ascending key order.
func isKeyKind(k Kind) bool {
	switch k {
	case KindBool, KindInt32, KindInt64, KindUint32, KindUint64, KindString:
		return true
	default:
		return false
	}
}
