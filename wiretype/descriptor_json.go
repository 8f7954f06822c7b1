package wiretype

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// Descriptor JSON interchange
// ============================================================
//
// Descriptors serialize as tagged objects,
//
//	{"type": "int32", "attributes": {"min": 0, "default": 1}}
//	{"type": "struct", "attributes": {"fields": [...]}}
//	{"type": "ref", "attributes": {"name": "Point"}}
//
// so independent processes can ship their schemas at runtime and
// register them on the receiving side.

type descriptorJSON struct {
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

type fieldJSON struct {
	Name     string          `json:"name"`
	Type     *Descriptor     `json:"type"`
	Optional bool            `json:"optional,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`
}

type variantJSON struct {
	Tag  string      `json:"tag"`
	Type *Descriptor `json:"type,omitempty"`
}

// kindName maps kinds to their wire names. The names follow the
// original schema interchange vocabulary (array, dictionary,
// boolean) rather than the Go-side constructor names.
func kindName(k Kind) string {
	switch k {
	case KindBool:
		return "boolean"
	case KindList:
		return "array"
	case KindMap:
		return "dictionary"
	default:
		return k.String()
	}
}

func kindFromName(name string) (Kind, bool) {
	switch name {
	case "boolean":
		return KindBool, true
	case "int32":
		return KindInt32, true
	case "int64":
		return KindInt64, true
	case "uint32":
		return KindUint32, true
	case "uint64":
		return KindUint64, true
	case "float32":
		return KindFloat32, true
	case "float64":
		return KindFloat64, true
	case "string":
		return KindString, true
	case "bytes":
		return KindBytes, true
	case "optional":
		return KindOptional, true
	case "array":
		return KindList, true
	case "dictionary":
		return KindMap, true
	case "struct":
		return KindStruct, true
	case "union":
		return KindUnion, true
	case "ref":
		return KindRef, true
	default:
		return 0, false
	}
}

// MarshalJSON renders the descriptor in tagged interchange form.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	attrs := make(map[string]interface{})

	switch d.kind {
	case KindBool, KindString:
		if err := putDefault(attrs, d); err != nil {
			return nil, err
		}

	case KindInt32, KindInt64:
		if d.minInt != nil {
			attrs["min"] = *d.minInt
		}
		if d.maxInt != nil {
			attrs["max"] = *d.maxInt
		}
		if err := putDefault(attrs, d); err != nil {
			return nil, err
		}

	case KindUint32, KindUint64:
		if d.minU != nil {
			attrs["min"] = *d.minU
		}
		if d.maxU != nil {
			attrs["max"] = *d.maxU
		}
		if err := putDefault(attrs, d); err != nil {
			return nil, err
		}

	case KindFloat32, KindFloat64:
		if d.minF != nil {
			attrs["min"] = *d.minF
		}
		if d.maxF != nil {
			attrs["max"] = *d.maxF
		}
		if err := putDefault(attrs, d); err != nil {
			return nil, err
		}

	case KindBytes:
		// No attributes.

	case KindOptional:
		attrs["inner"] = d.elem

	case KindList:
		attrs["items"] = d.elem

	case KindMap:
		attrs["keys"] = d.key
		attrs["values"] = d.val

	case KindStruct:
		fields := make([]fieldJSON, len(d.fields))
		for i, f := range d.fields {
			fj := fieldJSON{Name: f.Name, Type: f.Type, Optional: f.Optional}
			if f.Default != nil {
				raw, err := defaultToJSON(f.Default, f.Type)
				if err != nil {
					return nil, err
				}
				fj.Default = raw
			}
			fields[i] = fj
		}
		attrs["fields"] = fields

	case KindUnion:
		variants := make([]variantJSON, len(d.variants))
		for i, v := range d.variants {
			variants[i] = variantJSON{Tag: v.Tag, Type: v.Type}
		}
		attrs["variants"] = variants

	case KindRef:
		attrs["name"] = d.refName

	default:
		return nil, fmt.Errorf("wiretype: cannot marshal descriptor kind %d", d.kind)
	}

	rawAttrs, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(descriptorJSON{Type: kindName(d.kind), Attributes: rawAttrs})
}

func putDefault(attrs map[string]interface{}, d *Descriptor) error {
	if d.def == nil {
		return nil
	}
	raw, err := defaultToJSON(d.def, d)
	if err != nil {
		return err
	}
	attrs["default"] = raw
	return nil
}

func defaultToJSON(v *Value, desc *Descriptor) (json.RawMessage, error) {
	// Defaults live on primitive descriptors, which are ref-free.
	data, err := ToJSON(v, stripOptions(desc), nil)
	if err != nil {
		return nil, fmt.Errorf("wiretype: default value: %w", err)
	}
	return json.RawMessage(data), nil
}

// stripOptions returns a bare descriptor of the same kind, so that a
// default outside the declared bounds still marshals (Check reports
// that problem separately with a better message).
func stripOptions(d *Descriptor) *Descriptor {
	return &Descriptor{kind: d.kind, elem: d.elem, key: d.key, val: d.val, fields: d.fields, variants: d.variants, refName: d.refName}
}

// UnmarshalJSON parses the tagged interchange form.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var tagged descriptorJSON
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	kind, ok := kindFromName(tagged.Type)
	if !ok {
		return fmt.Errorf("wiretype: unknown descriptor type %q", tagged.Type)
	}

	*d = Descriptor{kind: kind}
	attrs := tagged.Attributes
	if len(attrs) == 0 {
		attrs = json.RawMessage("{}")
	}

	switch kind {
	case KindBool, KindString:
		return d.unmarshalPrimitiveAttrs(attrs)

	case KindInt32, KindInt64:
		var a struct {
			Min     *int64          `json:"min"`
			Max     *int64          `json:"max"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		d.minInt, d.maxInt = a.Min, a.Max
		return d.setDefaultJSON(a.Default)

	case KindUint32, KindUint64:
		var a struct {
			Min     *uint64         `json:"min"`
			Max     *uint64         `json:"max"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		d.minU, d.maxU = a.Min, a.Max
		return d.setDefaultJSON(a.Default)

	case KindFloat32, KindFloat64:
		var a struct {
			Min     *float64        `json:"min"`
			Max     *float64        `json:"max"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		d.minF, d.maxF = a.Min, a.Max
		return d.setDefaultJSON(a.Default)

	case KindBytes:
		return nil

	case KindOptional:
		var a struct {
			Inner *Descriptor `json:"inner"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		if a.Inner == nil {
			return fmt.Errorf("wiretype: optional without inner type")
		}
		d.elem = a.Inner
		return nil

	case KindList:
		var a struct {
			Items *Descriptor `json:"items"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		if a.Items == nil {
			return fmt.Errorf("wiretype: array without items type")
		}
		d.elem = a.Items
		return nil

	case KindMap:
		var a struct {
			Keys   *Descriptor `json:"keys"`
			Values *Descriptor `json:"values"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		if a.Keys == nil || a.Values == nil {
			return fmt.Errorf("wiretype: dictionary without keys or values type")
		}
		d.key, d.val = a.Keys, a.Values
		return nil

	case KindStruct:
		var a struct {
			Fields []fieldJSON `json:"fields"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		d.fields = make([]*FieldDef, len(a.Fields))
		for i, fj := range a.Fields {
			fd := &FieldDef{Name: fj.Name, Type: fj.Type, Optional: fj.Optional}
			if len(fj.Default) > 0 {
				def, err := FromJSON(fj.Default, stripOptions(fj.Type), nil)
				if err != nil {
					return fmt.Errorf("wiretype: field %q default: %w", fj.Name, err)
				}
				fd.Default = def
			}
			d.fields[i] = fd
		}
		return nil

	case KindUnion:
		var a struct {
			Variants []variantJSON `json:"variants"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		d.variants = make([]*Variant, len(a.Variants))
		for i, vj := range a.Variants {
			d.variants[i] = &Variant{Tag: vj.Tag, Type: vj.Type}
		}
		return nil

	case KindRef:
		var a struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(attrs, &a); err != nil {
			return err
		}
		if a.Name == "" {
			return fmt.Errorf("wiretype: ref without target name")
		}
		d.refName = a.Name
		return nil
	}

	return fmt.Errorf("wiretype: unknown descriptor type %q", tagged.Type)
}

func (d *Descriptor) unmarshalPrimitiveAttrs(attrs json.RawMessage) error {
	var a struct {
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(attrs, &a); err != nil {
		return err
	}
	return d.setDefaultJSON(a.Default)
}

func (d *Descriptor) setDefaultJSON(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	def, err := FromJSON(raw, stripOptions(d), nil)
	if err != nil {
		return fmt.Errorf("wiretype: default value: %w", err)
	}
	d.def = def
	return nil
}
