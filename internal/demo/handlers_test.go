package demo

import (
	"context"
	"testing"

	"github.com/alxayo/go-arcade/internal/amf0"
	"github.com/alxayo/go-arcade/internal/dispatch"
	wireamf0 "github.com/alxayo/go-arcade/internal/wireformats/amf0"
)

func materialize(t *testing.T, values ...interface{}) wireamf0.CommandMessage {
	t.Helper()
	f := wireamf0.New()
	data, err := amf0.EncodeAll(values...)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	decoded, err := f.TryDecode(data)
	if err != nil {
		t.Fatalf("TryDecode: %v", err)
	}
	return f.Materialize(decoded).(wireamf0.CommandMessage)
}

func TestEchoHandlerWritesValuesBack(t *testing.T) {
	msg := materialize(t, "echo", 1.0, "payload")

	var written []byte
	hctx := dispatch.NewHandlerContext(context.Background(), "[Undetermined]", msg,
		func(b []byte, logOutput, logFull bool) error { written = b; return nil },
		func(string) {})

	if err := (EchoHandler{}).Handle(hctx); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	decoded, err := amf0.DecodeAll(written)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if decoded[0] != "echo" || decoded[2] != "payload" {
		t.Fatalf("unexpected echoed values: %v", decoded)
	}
}

func TestPingHandlerRepliesPongAndClaimsPlayerID(t *testing.T) {
	msg := materialize(t, "ping", 7.0, "player-42")

	var written []byte
	var claimed string
	hctx := dispatch.NewHandlerContext(context.Background(), "[Undetermined]", msg,
		func(b []byte, logOutput, logFull bool) error { written = b; return nil },
		func(id string) { claimed = id })

	if err := (PingHandler{}).Handle(hctx); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if claimed != "player-42" {
		t.Fatalf("expected player id claimed as player-42, got %q", claimed)
	}

	decoded, err := amf0.DecodeAll(written)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if decoded[0] != "pong" || decoded[1] != 7.0 {
		t.Fatalf("unexpected pong reply: %v", decoded)
	}
}

func TestPingHandlerDoesNotReclaimAlreadyDeterminedPlayerID(t *testing.T) {
	msg := materialize(t, "ping", 1.0, "someone-else")

	var claimed string
	hctx := dispatch.NewHandlerContext(context.Background(), "player-1", msg,
		func(b []byte, logOutput, logFull bool) error { return nil },
		func(id string) { claimed = id })

	if err := (PingHandler{}).Handle(hctx); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if claimed != "" {
		t.Fatalf("expected no player id claim, got %q", claimed)
	}
}
