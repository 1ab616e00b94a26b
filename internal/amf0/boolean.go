package amf0

import (
	"fmt"
	"io"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// markerBoolean is the AMF0 type marker for Boolean (0x01).
const markerBoolean = 0x01

// EncodeBoolean writes an AMF0 Boolean value to w: marker 0x01 followed by
// a single byte 0x00 (false) or 0x01 (true).
func EncodeBoolean(w io.Writer, v bool) error {
	var buf [2]byte
	buf[0] = markerBoolean
	if v {
		buf[1] = 0x01
	}
	if _, err := w.Write(buf[:]); err != nil {
		return gameerrors.NewFormatError("amf0.encode.boolean.write", err)
	}
	return nil
}

// DecodeBoolean reads an AMF0 Boolean from r.
func DecodeBoolean(r io.Reader) (bool, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:1]); err != nil {
		return false, gameerrors.NewFormatError("amf0.decode.boolean.marker.read", err)
	}
	if hdr[0] != markerBoolean {
		return false, gameerrors.NewFormatError("amf0.decode.boolean.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerBoolean, hdr[0]))
	}
	if _, err := io.ReadFull(r, hdr[1:2]); err != nil {
		return false, gameerrors.NewFormatError("amf0.decode.boolean.read", err)
	}
	return hdr[1] != 0x00, nil
}
