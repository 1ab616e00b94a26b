package amf0

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/alxayo/go-arcade/internal/gameerrors"
)

// AMF0 type markers (subset implemented here).
const (
	markerNumber = 0x00
)

// EncodeNumber writes an AMF0 Number (marker 0x00 + 8-byte IEEE754 double,
// big-endian) to w. Always writes exactly 9 bytes on success.
func EncodeNumber(w io.Writer, v float64) error {
	var buf [1 + 8]byte
	buf[0] = markerNumber
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v))
	if _, err := w.Write(buf[:]); err != nil {
		return gameerrors.NewFormatError("amf0.encode.number.write", err)
	}
	return nil
}

// DecodeNumber reads an AMF0 Number from r.
func DecodeNumber(r io.Reader) (float64, error) {
	var m [1]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return 0, gameerrors.NewFormatError("amf0.decode.number.marker.read", err)
	}
	if m[0] != markerNumber {
		return 0, gameerrors.NewFormatError("amf0.decode.number.marker", fmt.Errorf("expected 0x%02x got 0x%02x", markerNumber, m[0]))
	}
	var num [8]byte
	if _, err := io.ReadFull(r, num[:]); err != nil {
		return 0, gameerrors.NewFormatError("amf0.decode.number.read", err)
	}
	u := binary.BigEndian.Uint64(num[:])
	return math.Float64frombits(u), nil
}
