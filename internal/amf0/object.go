package amf0

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// markerObject is the AMF0 type marker for Object (0x03). The object end
// marker is an empty-key sentinel followed by 0x09.
const (
	markerObject    = 0x03
	markerObjectEnd = 0x09
)

// EncodeObject encodes an AMF0 Object value (map[string]interface{}). Keys
// are emitted in lexicographic order for deterministic output.
func EncodeObject(w io.Writer, m map[string]interface{}) error {
	if m == nil {
		if _, err := w.Write([]byte{markerObject, 0x00, 0x00, markerObjectEnd}); err != nil {
			return gameerrors.NewFormatError("amf0.encode.object.empty.write", err)
		}
		return nil
	}

	if _, err := w.Write([]byte{markerObject}); err != nil {
		return gameerrors.NewFormatError("amf0.encode.object.marker.write", err)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var hdr [2]byte
	for _, k := range keys {
		kb := []byte(k)
		if len(kb) > 0xFFFF {
			return gameerrors.NewFormatError("amf0.encode.object.key.length", fmt.Errorf("key %q length %d exceeds 65535", k, len(kb)))
		}
		binary.BigEndian.PutUint16(hdr[:], uint16(len(kb)))
		if _, err := w.Write(hdr[:]); err != nil {
			return gameerrors.NewFormatError("amf0.encode.object.key.length.write", err)
		}
		if len(kb) > 0 {
			if _, err := w.Write(kb); err != nil {
				return gameerrors.NewFormatError("amf0.encode.object.key.write", err)
			}
		}
		if err := encodeAny(w, m[k]); err != nil {
			return gameerrors.NewFormatError("amf0.encode.object.value", fmt.Errorf("key %q: %w", k, err))
		}
	}

	if _, err := w.Write([]byte{0x00, 0x00, markerObjectEnd}); err != nil {
		return gameerrors.NewFormatError("amf0.encode.object.end.write", err)
	}
	return nil
}

// encodeAny dispatches to the appropriate Encode* function based on v's
// dynamic Go type.
func encodeAny(w io.Writer, v interface{}) error {
	switch vv := v.(type) {
	case nil:
		return EncodeNull(w)
	case float64:
		return EncodeNumber(w, vv)
	case bool:
		return EncodeBoolean(w, vv)
	case string:
		return EncodeString(w, vv)
	case map[string]interface{}:
		return EncodeObject(w, vv)
	case []interface{}:
		return EncodeStrictArray(w, vv)
	default:
		return fmt.Errorf("unsupported AMF0 value type %T", v)
	}
}

// DecodeObject decodes an AMF0 Object into a map[string]interface{}.
func DecodeObject(r io.Reader) (map[string]interface{}, error) {
	var mMarker [1]byte
	if _, err := io.ReadFull(r, mMarker[:]); err != nil {
		return nil, gameerrors.NewFormatError("amf0.decode.object.marker.read", err)
	}
	if mMarker[0] != markerObject {
		return nil, gameerrors.NewFormatError("amf0.decode.object.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerObject, mMarker[0]))
	}
	out := make(map[string]interface{})
	for {
		var klenBuf [2]byte
		if _, err := io.ReadFull(r, klenBuf[:]); err != nil {
			return nil, gameerrors.NewFormatError("amf0.decode.object.key.length.read", err)
		}
		klen := binary.BigEndian.Uint16(klenBuf[:])
		if klen == 0 {
			var end [1]byte
			if _, err := io.ReadFull(r, end[:]); err != nil {
				return nil, gameerrors.NewFormatError("amf0.decode.object.end.read", err)
			}
			if end[0] != markerObjectEnd {
				return nil, gameerrors.NewFormatError("amf0.decode.object.end.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerObjectEnd, end[0]))
			}
			break
		}
		keyBytes := make([]byte, klen)
		if _, err := io.ReadFull(r, keyBytes); err != nil {
			return nil, gameerrors.NewFormatError("amf0.decode.object.key.read", err)
		}
		key := string(keyBytes)

		var valMarker [1]byte
		if _, err := io.ReadFull(r, valMarker[:]); err != nil {
			return nil, gameerrors.NewFormatError("amf0.decode.object.value.marker.read", err)
		}
		val, err := decodeValueWithMarker(valMarker[0], r)
		if err != nil {
			return nil, gameerrors.NewFormatError("amf0.decode.object.value", fmt.Errorf("key %q: %w", key, err))
		}
		out[key] = val
	}
	return out, nil
}

// decodeValueWithMarker dispatches based on an already-consumed marker byte.
func decodeValueWithMarker(marker byte, r io.Reader) (interface{}, error) {
	switch marker {
	case markerNumber:
		return DecodeNumber(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	case markerBoolean:
		return DecodeBoolean(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	case markerString:
		return DecodeString(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	case markerNull:
		return DecodeNull(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	case markerObject:
		return DecodeObject(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	case markerStrictArray:
		return DecodeStrictArray(io.MultiReader(bytes.NewReader([]byte{marker}), r))
	default:
		return nil, fmt.Errorf("unsupported marker 0x%02x", marker)
	}
}
