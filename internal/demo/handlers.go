// Package demo ships worked examples of the three extension points
// (internal/wire.Format, internal/dispatch.Handler, internal/command.Command)
// against the shipped internal/wireformats/amf0 format, exercised by the
// test suite rather than any production concern.
package demo

import (
	"github.com/alxayo/go-arcade/internal/amf0"
	"github.com/alxayo/go-arcade/internal/dispatch"
	"github.com/alxayo/go-arcade/internal/wire"
	wireamf0 "github.com/alxayo/go-arcade/internal/wireformats/amf0"
)

// EchoHandler answers every "echo" CommandMessage by writing its own
// encoded values back to the connection unchanged.
type EchoHandler struct{}

// MessageType implements dispatch.Handler.
func (EchoHandler) MessageType() string { return "echo" }

// ExpectedClass implements dispatch.Handler.
func (EchoHandler) ExpectedClass() wire.Class { return wire.ClassOf(wireamf0.CommandMessage{}) }

// Handle implements dispatch.Handler, re-encoding the message's values and
// writing them back verbatim.
func (EchoHandler) Handle(ctx *dispatch.HandlerContext) error {
	msg := ctx.Message.(wireamf0.CommandMessage)
	reply, err := amf0.EncodeAll(msg.Values...)
	if err != nil {
		return err
	}
	return ctx.SendRaw(reply, true, false)
}

// PingHandler answers every "ping" CommandMessage with a "pong" command
// carrying the same transaction id, and claims the connection's player id
// from the third value (by convention, the caller's desired player id) if
// one was supplied and none is set yet.
type PingHandler struct{}

// MessageType implements dispatch.Handler.
func (PingHandler) MessageType() string { return "ping" }

// ExpectedClass implements dispatch.Handler.
func (PingHandler) ExpectedClass() wire.Class { return wire.ClassOf(wireamf0.CommandMessage{}) }

// Handle implements dispatch.Handler.
func (PingHandler) Handle(ctx *dispatch.HandlerContext) error {
	msg := ctx.Message.(wireamf0.CommandMessage)

	if ctx.PlayerID == "[Undetermined]" && len(msg.Values) > 2 {
		if playerID, ok := msg.Values[2].(string); ok && playerID != "" {
			ctx.UpdatePlayerID(playerID)
		}
	}

	reply, err := amf0.EncodeAll("pong", msg.TransactionID)
	if err != nil {
		return err
	}
	return ctx.SendRaw(reply, true, false)
}
