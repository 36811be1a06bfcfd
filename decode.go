package notestore

import "fmt"

// Value is the generic output of the binary decoder: a mapping from field
// name to a scalar (uint64, float32, float64), a string, a []byte, a nested
// Value, or a []any of those for repeated fields. Repeated entries keep the
// byte stream's encounter order.
type Value map[string]any

// Decode walks data as a sequence of tag-prefixed fields and interprets each
// one through schema.
//
// Wire type 0 decodes a varint, 1 a little-endian double, 5 a little-endian
// float. Wire type 2 decodes a length-prefixed byte string, recursed into a
// nested schema when the descriptor is message-typed, interpreted as UTF-8
// text when it is string-typed, and kept raw otherwise. Wire types 3 and 4
// (legacy group encoding) fail with ErrMalformedInput.
//
// Fields whose number is absent from schema are fully consumed to keep the
// stream aligned, then discarded. Repeated fields append in order;
// non-repeated fields overwrite, so the last value wins. Decoding succeeds
// only when the cursor lands exactly on the end of data.
func Decode(data []byte, schema Schema) (Value, error) {
	c := &cursor{buf: data}
	out := Value{}
	for !c.done() {
		field, wire, err := c.tag()
		if err != nil {
			return nil, err
		}
		desc, known := schema[field]

		var v any
		switch wire {
		case wireVarint:
			v, err = c.varint()
		case wireFixed64:
			v, err = c.fixed64()
		case wireFixed32:
			v, err = c.fixed32()
		case wireBytes:
			var raw []byte
			raw, err = c.bytes()
			if err == nil && known {
				switch desc.Type {
				case TypeMessage:
					v, err = Decode(raw, desc.Schema)
				case TypeString:
					v = string(raw)
				default:
					v = raw
				}
			} else {
				v = raw
			}
		case wireGroup3, wireGroup4:
			return nil, fmt.Errorf("%w: unsupported wire type %d for field %d", ErrMalformedInput, wire, field)
		default:
			return nil, fmt.Errorf("%w: unknown wire type %d for field %d", ErrMalformedInput, wire, field)
		}
		if err != nil {
			return nil, err
		}
		if !known {
			continue
		}

		if desc.Repeated {
			list, _ := out[desc.Name].([]any)
			out[desc.Name] = append(list, v)
		} else {
			out[desc.Name] = v
		}
	}
	return out, nil
}

// Typed accessors over Value. Each reports whether the field is present with
// the expected dynamic type; callers decide whether absence is an error.

func (v Value) Uint(name string) (uint64, bool) {
	u, ok := v[name].(uint64)
	return u, ok
}

func (v Value) Str(name string) (string, bool) {
	s, ok := v[name].(string)
	return s, ok
}

func (v Value) Bytes(name string) ([]byte, bool) {
	b, ok := v[name].([]byte)
	return b, ok
}

func (v Value) Msg(name string) (Value, bool) {
	m, ok := v[name].(Value)
	return m, ok
}

func (v Value) List(name string) []any {
	list, _ := v[name].([]any)
	return list
}
