package amf0

import (
	"fmt"
	"io"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// markerNull is the AMF0 type marker for Null (0x05).
const markerNull = 0x05

// EncodeNull writes an AMF0 Null value (single marker byte 0x05) to w.
func EncodeNull(w io.Writer) error {
	if _, err := w.Write([]byte{markerNull}); err != nil {
		return gameerrors.NewFormatError("amf0.encode.null.write", err)
	}
	return nil
}

// DecodeNull reads an AMF0 Null value from r, returning (nil, nil) on success.
func DecodeNull(r io.Reader) (interface{}, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, gameerrors.NewFormatError("amf0.decode.null.marker.read", err)
	}
	if b[0] != markerNull {
		return nil, gameerrors.NewFormatError("amf0.decode.null.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerNull, b[0]))
	}
	return nil, nil
}
