package amf0

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// markerString is the AMF0 type marker for String (0x02).
const markerString = 0x02

// EncodeString writes an AMF0 String to w: 0x02 | 2-byte big-endian length |
// UTF-8 bytes. Rejects strings whose byte length exceeds 65535.
func EncodeString(w io.Writer, s string) error {
	b := []byte(s)
	if len(b) > 0xFFFF {
		return gameerrors.NewFormatError("amf0.encode.string.length", fmt.Errorf("string length %d exceeds 65535", len(b)))
	}
	var hdr [1 + 2]byte
	hdr[0] = markerString
	binary.BigEndian.PutUint16(hdr[1:], uint16(len(b)))
	if _, err := w.Write(hdr[:]); err != nil {
		return gameerrors.NewFormatError("amf0.encode.string.write.header", err)
	}
	if len(b) == 0 {
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return gameerrors.NewFormatError("amf0.encode.string.write.body", err)
	}
	return nil
}

// DecodeString reads an AMF0 String from r.
func DecodeString(r io.Reader) (string, error) {
	var m [1]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return "", gameerrors.NewFormatError("amf0.decode.string.marker.read", err)
	}
	if m[0] != markerString {
		return "", gameerrors.NewFormatError("amf0.decode.string.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerString, m[0]))
	}
	var ln [2]byte
	if _, err := io.ReadFull(r, ln[:]); err != nil {
		return "", gameerrors.NewFormatError("amf0.decode.string.length.read", err)
	}
	l := binary.BigEndian.Uint16(ln[:])
	if l == 0 {
		return "", nil
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", gameerrors.NewFormatError("amf0.decode.string.read", err)
	}
	return string(buf), nil
}
