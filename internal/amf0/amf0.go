// Package amf0 implements the AMF0 (Action Message Format) binary value
// codec used by the game server's shipped wire format.
//
// Supported markers: 0x00 Number, 0x01 Boolean, 0x02 String, 0x03 Object,
// 0x05 Null, 0x0A Strict Array. Undefined (0x06), Reference (0x07), Date
// (0x0B) and anything above are rejected as unsupported.
package amf0

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// EncodeValue encodes a single AMF0 value to w using dynamic dispatch based
// on the Go type. Supported Go types:
//
//	nil -> Null (0x05)
//	float64 -> Number (0x00)
//	bool -> Boolean (0x01)
//	string -> String (0x02)
//	map[string]interface{} -> Object (0x03)
//	[]interface{} -> Strict Array (0x0A)
//
// Any other type results in a FormatError.
func EncodeValue(w io.Writer, v interface{}) error {
	if err := encodeAny(w, v); err != nil {
		return gameerrors.NewFormatError("amf0.encode.value", err)
	}
	return nil
}

// EncodeAll encodes a sequence of AMF0 values in order and returns the
// concatenated bytes, suitable for a command message payload such as
// ["invoke", 1, {...}].
func EncodeAll(values ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for i, v := range values {
		if err := EncodeValue(&buf, v); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeValue decodes a single AMF0 value from r, reading the leading marker
// byte and dispatching to the concrete decoder.
func DecodeValue(r io.Reader) (interface{}, error) {
	var marker [1]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return nil, gameerrors.NewFormatError("amf0.decode.value.marker.read", err)
	}
	switch marker[0] {
	case markerNumber, markerBoolean, markerString, markerNull, markerObject, markerStrictArray:
		v, err := decodeValueWithMarker(marker[0], r)
		if err != nil {
			return nil, gameerrors.NewFormatError("amf0.decode.value.dispatch", err)
		}
		return v, nil
	}
	if unsupportedMarker(marker[0]) {
		return nil, gameerrors.NewFormatError("amf0.decode.value.unsupported", fmt.Errorf("unsupported marker 0x%02x", marker[0]))
	}
	return nil, gameerrors.NewFormatError("amf0.decode.value.unsupported", fmt.Errorf("unsupported marker 0x%02x", marker[0]))
}

// DecodeAll decodes a concatenated sequence of AMF0 values from data until
// the buffer is exhausted.
func DecodeAll(data []byte) ([]interface{}, error) {
	r := bytes.NewReader(data)
	var out []interface{}
	for r.Len() > 0 {
		v, err := DecodeValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Marshal is a convenience alias for EncodeAll with a single value.
func Marshal(v interface{}) ([]byte, error) { return EncodeAll(v) }

// Unmarshal decodes a single AMF0 value from data. Trailing bytes after the
// first value are ignored.
func Unmarshal(data []byte) (interface{}, error) {
	r := bytes.NewReader(data)
	return DecodeValue(r)
}

// unsupportedMarker reports whether m is explicitly out of scope (Undefined,
// Reference, or anything from the Date marker upward).
func unsupportedMarker(m byte) bool {
	if m == 0x06 || m == 0x07 {
		return true
	}
	if m >= 0x0B {
		return true
	}
	return false
}
