package wire

import (
	"strings"
	"unicode"
)

// DefaultMessageType is the fixed, distinct type identifier produced by the
// built-in fallback format. It is the same string as the Connection
// Server's undetermined player id; the dispatcher's default handler is
// keyed by "*", not by this value.
const DefaultMessageType = "[Undetermined]"

// DefaultMessage is materialized by DefaultFormat when no registered format
// matched, or as the single candidate the registry always falls back to.
type DefaultMessage struct {
	// Raw is the ASCII-safe rendering of the original packet bytes.
	Raw string
}

// Type implements Message.
func (DefaultMessage) Type() string { return DefaultMessageType }

// defaultFormat is the built-in fallback: verify always matches, tryDecode
// never fails, materialize always succeeds. Its presence guarantees
// IdentifyFormat is total.
type defaultFormat struct{}

// DefaultFormat is the built-in fallback format appended whenever no
// registered format's Verify returns true.
var DefaultFormat Format = defaultFormat{}

func (defaultFormat) Name() string { return "default" }

func (defaultFormat) Verify(_ []byte) bool { return true }

func (defaultFormat) TryDecode(data []byte) (any, error) {
	return asciiSafe(data), nil
}

func (defaultFormat) Materialize(decoded any) Message {
	s, _ := decoded.(string)
	return DefaultMessage{Raw: s}
}

// asciiSafe renders data as a string, replacing any non-printable byte with
// '.', matching the distilled spec's "ASCII-safe string rendering" wording.
func asciiSafe(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c < unicode.MaxASCII && (unicode.IsPrint(rune(c)) || c == ' ') {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// HexAsciiPeek renders up to n bytes of data as "hex | ascii" for verbose
// logs (format.Verify panics, decode failures), mirroring the preview helper
// the teacher repo used for AMF0 command payloads.
func HexAsciiPeek(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	var hex strings.Builder
	for i, b := range data {
		if i > 0 {
			hex.WriteByte(' ')
		}
		const hexDigits = "0123456789abcdef"
		hex.WriteByte(hexDigits[b>>4])
		hex.WriteByte(hexDigits[b&0x0f])
	}
	return hex.String() + " | " + asciiSafe(data)
}
