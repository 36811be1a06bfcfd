package notestore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

// Test encoder helpers: hand-rolled wire writing, kept deliberately
// independent of the decoder under test.

func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendTag(b []byte, field uint64, wire int) []byte {
	return appendVarint(b, field<<3|uint64(wire))
}

func appendBytesField(b []byte, field uint64, payload []byte) []byte {
	b = appendTag(b, field, wireBytes)
	b = appendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

func appendVarintField(b []byte, field, v uint64) []byte {
	return appendVarint(appendTag(b, field, wireVarint), v)
}

func TestDecodeVarintField(t *testing.T) {
	got, err := Decode([]byte{0x08, 0x05}, Schema{1: scalar("x", TypeVarint)})
	if err != nil {
		t.Fatal(err)
	}
	want := Value{"x": uint64(5)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestDecodeStringField(t *testing.T) {
	got, err := Decode([]byte{0x12, 0x02, 0x68, 0x69}, Schema{2: scalar("s", TypeString)})
	if err != nil {
		t.Fatal(err)
	}
	want := Value{"s": "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestDecodeSkipsUnknownField(t *testing.T) {
	// Field 1 is an unknown varint (42); field 2 must still decode.
	got, err := Decode([]byte{0x08, 0x2A, 0x10, 0x07}, Schema{2: scalar("y", TypeVarint)})
	if err != nil {
		t.Fatal(err)
	}
	want := Value{"y": uint64(7)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestDecodeSkipsUnknownLengthDelimited(t *testing.T) {
	var data []byte
	data = appendBytesField(data, 7, []byte("ignored"))
	data = appendVarintField(data, 2, 9)
	got, err := Decode(data, Schema{2: scalar("y", TypeVarint)})
	if err != nil {
		t.Fatal(err)
	}
	if got["y"] != uint64(9) {
		t.Fatalf("got %#v", got)
	}
}

func TestDecodeRepeatedKeepsOrder(t *testing.T) {
	var data []byte
	for _, v := range []uint64{3, 1, 2} {
		data = appendVarintField(data, 4, v)
	}
	got, err := Decode(data, Schema{4: repeated(scalar("n", TypeVarint))})
	if err != nil {
		t.Fatal(err)
	}
	want := []any{uint64(3), uint64(1), uint64(2)}
	if !reflect.DeepEqual(got["n"], want) {
		t.Fatalf("got %#v want %#v", got["n"], want)
	}
}

func TestDecodeLastWriteWins(t *testing.T) {
	var data []byte
	data = appendVarintField(data, 1, 10)
	data = appendVarintField(data, 1, 20)
	got, err := Decode(data, Schema{1: scalar("x", TypeVarint)})
	if err != nil {
		t.Fatal(err)
	}
	if got["x"] != uint64(20) {
		t.Fatalf("got %#v, want last value 20", got["x"])
	}
}

func TestDecodeNestedMessage(t *testing.T) {
	inner := appendVarintField(nil, 1, 6)
	data := appendBytesField(nil, 3, inner)
	schema := Schema{3: msg("m", Schema{1: scalar("v", TypeVarint)})}
	got, err := Decode(data, schema)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := got.Msg("m")
	if !ok || m["v"] != uint64(6) {
		t.Fatalf("got %#v", got)
	}
}

func TestDecodeFixedWidths(t *testing.T) {
	var data []byte
	data = appendTag(data, 1, wireFixed64)
	data = binary.LittleEndian.AppendUint64(data, math.Float64bits(2.5))
	data = appendTag(data, 2, wireFixed32)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1.5))

	got, err := Decode(data, Schema{1: scalar("d", TypeDouble), 2: scalar("f", TypeFloat)})
	if err != nil {
		t.Fatal(err)
	}
	if got["d"] != float64(2.5) || got["f"] != float32(1.5) {
		t.Fatalf("got %#v", got)
	}
}

func TestDecodeRawBytesField(t *testing.T) {
	payload := []byte{0xDE, 0xAD}
	data := appendBytesField(nil, 1, payload)
	got, err := Decode(data, Schema{1: scalar("b", TypeBytes)})
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := got.Bytes("b"); !ok || !bytes.Equal(b, payload) {
		t.Fatalf("got %#v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	schema := Schema{1: scalar("x", TypeVarint)}
	cases := []struct {
		name string
		data []byte
	}{
		{"truncated varint payload", []byte{0x08}},
		{"dangling continuation bit", []byte{0x08, 0x80}},
		{"group wire type 3", []byte{0x0B}},
		{"group wire type 4", []byte{0x0C}},
		{"truncated length delimited", []byte{0x0A, 0x05, 0x01}},
		{"truncated fixed64", []byte{0x09, 0x01, 0x02}},
		{"truncated fixed32", []byte{0x0D, 0x01}},
		{"field number zero", []byte{0x00}},
		{"varint overflow", append([]byte{0x08}, bytes.Repeat([]byte{0xFF}, 10)...)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data, schema)
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("got %v, want ErrMalformedInput", err)
			}
		})
	}
}
