package amf0

import (
	"testing"

	"github.com/alxayo/go-arcade/internal/amf0"
)

func TestVerifyAcceptsKnownMarkers(t *testing.T) {
	f := New()
	for _, marker := range []byte{0x00, 0x01, 0x02, 0x03, 0x05, 0x0A} {
		if !f.Verify([]byte{marker, 0, 0, 0}) {
			t.Fatalf("expected Verify to accept marker 0x%02x", marker)
		}
	}
}

func TestVerifyRejectsUnknownMarkerAndEmpty(t *testing.T) {
	f := New()
	if f.Verify(nil) {
		t.Fatal("expected Verify to reject empty packet")
	}
	if f.Verify([]byte{0x06}) {
		t.Fatal("expected Verify to reject Undefined marker")
	}
}

func TestTryDecodeAndMaterializeProducesCommandMessage(t *testing.T) {
	f := New()
	data, err := amf0.EncodeAll("connect", 1.0, map[string]interface{}{"app": "live"})
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	decoded, err := f.TryDecode(data)
	if err != nil {
		t.Fatalf("TryDecode: %v", err)
	}
	msg := f.Materialize(decoded)
	cmd, ok := msg.(CommandMessage)
	if !ok {
		t.Fatalf("expected CommandMessage, got %T", msg)
	}
	if cmd.Name != "connect" {
		t.Fatalf("expected Name=connect, got %q", cmd.Name)
	}
	if cmd.TransactionID != 1.0 {
		t.Fatalf("expected TransactionID=1.0, got %v", cmd.TransactionID)
	}
	if cmd.Type() != "connect" {
		t.Fatalf("expected Type()=connect, got %q", cmd.Type())
	}
}

func TestMaterializeFallsBackToUnnamed(t *testing.T) {
	f := New()
	decoded, err := amf0.DecodeAll(mustEncode(t, 42.0))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	msg := f.Materialize(decoded)
	cmd := msg.(CommandMessage)
	if cmd.Type() != typeUnnamed {
		t.Fatalf("expected fallback type %q, got %q", typeUnnamed, cmd.Type())
	}
}

func mustEncode(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := amf0.EncodeAll(v)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	return data
}
