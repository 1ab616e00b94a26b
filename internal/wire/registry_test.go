package wire

import (
	"errors"
	"testing"
)

type byteFormat struct {
	name   string
	marker byte
}

func (f byteFormat) Name() string { return f.name }
func (f byteFormat) Verify(data []byte) bool {
	for _, b := range data {
		if b == f.marker {
			return true
		}
	}
	return false
}
func (f byteFormat) TryDecode(data []byte) (any, error) { return string(data), nil }
func (f byteFormat) Materialize(decoded any) Message {
	s, _ := decoded.(string)
	return stubMessage{typ: f.name, raw: s}
}

type stubMessage struct {
	typ string
	raw string
}

func (m stubMessage) Type() string { return m.typ }

type panicFormat struct{}

func (panicFormat) Name() string                     { return "panic" }
func (panicFormat) Verify(data []byte) bool           { panic("boom") }
func (panicFormat) TryDecode(data []byte) (any, error) { return nil, errors.New("unreachable") }
func (panicFormat) Materialize(decoded any) Message    { return DefaultMessage{} }

// P4: if no registered format's verify returns true, IdentifyFormat returns
// [DefaultFormat].
func TestIdentifyFormatFallsBackToDefault(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(byteFormat{name: "a-format", marker: 'a'})

	got := r.IdentifyFormat([]byte("no hits here"))
	if len(got) != 1 || got[0] != DefaultFormat {
		t.Fatalf("expected [DefaultFormat], got %v", got)
	}
}

func TestIdentifyFormatEmptyRegistryFallsBackToDefault(t *testing.T) {
	r := NewRegistry(nil)
	got := r.IdentifyFormat([]byte("anything"))
	if len(got) != 1 || got[0] != DefaultFormat {
		t.Fatalf("expected [DefaultFormat] for empty registry, got %v", got)
	}
}

// A panicking Verify is recovered and the offending format is skipped rather
// than taking down the caller.
func TestIdentifyFormatRecoversFromVerifyPanic(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(panicFormat{})
	r.Register(byteFormat{name: "b-format", marker: 'b'})

	got := r.IdentifyFormat([]byte("xbx"))
	if len(got) != 1 || got[0].Name() != "b-format" {
		t.Fatalf("expected only b-format to match, got %v", got)
	}
}

// P5 / S1 / S2: first-registered-wins determinism when multiple formats
// match the same packet.
func TestIdentifyFormatPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(byteFormat{name: "F3", marker: 'a'})
	r.Register(byteFormat{name: "F4", marker: 'b'})
	r.Register(byteFormat{name: "F5", marker: 'c'})
	r.Register(byteFormat{name: "F6", marker: 'c'})

	got := r.IdentifyFormat([]byte("c12345"))
	if len(got) != 2 || got[0].Name() != "F5" || got[1].Name() != "F6" {
		t.Fatalf("expected [F5, F6] in registration order, got %v", namesOf(got))
	}
}

func namesOf(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.Name()
	}
	return out
}

func TestDefaultFormatMaterializesAsciiSafeString(t *testing.T) {
	msg, err := DefaultFormat.TryDecode([]byte{0x41, 0x00, 0x42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rendered := DefaultFormat.Materialize(msg)
	dm, ok := rendered.(DefaultMessage)
	if !ok {
		t.Fatalf("expected DefaultMessage, got %T", rendered)
	}
	if dm.Raw != "A.B" {
		t.Fatalf("expected ASCII-safe rendering %q, got %q", "A.B", dm.Raw)
	}
	if dm.Type() != DefaultMessageType {
		t.Fatalf("expected type %q, got %q", DefaultMessageType, dm.Type())
	}
}
