// Package dispatch implements the Handler Dispatcher: a registry of typed
// handlers bound to a (MessageType, ExpectedClass) pair, enforcing a
// one-class-per-type invariant at registration and resolving the list of
// handlers to invoke for a given message.
package dispatch

import (
	"context"

	"github.com/alxayo/go-arcade/internal/wire"
)

// HandlerContext is built fresh for every (message, handler) pairing.
type HandlerContext struct {
	ctx      context.Context
	PlayerID string
	Message  wire.Message

	sendRaw        func(b []byte, logOutput, logFull bool) error
	updatePlayerID func(newID string)
}

// NewHandlerContext builds a HandlerContext bound to one connection/message.
func NewHandlerContext(
	ctx context.Context,
	playerID string,
	msg wire.Message,
	sendRaw func(b []byte, logOutput, logFull bool) error,
	updatePlayerID func(newID string),
) *HandlerContext {
	return &HandlerContext{ctx: ctx, PlayerID: playerID, Message: msg, sendRaw: sendRaw, updatePlayerID: updatePlayerID}
}

// Context returns the connection-scoped context, cancelled when the owning
// connection's goroutine tears down.
func (h *HandlerContext) Context() context.Context { return h.ctx }

// SendRaw writes bytes back to the connection's socket. logOutput requests a
// receive-style structured log line for the write; logFull additionally logs
// the full payload rather than a preview.
func (h *HandlerContext) SendRaw(b []byte, logOutput, logFull bool) error {
	if h.sendRaw == nil {
		return nil
	}
	return h.sendRaw(b, logOutput, logFull)
}

// UpdatePlayerID transitions the owning connection's player id exactly once.
func (h *HandlerContext) UpdatePlayerID(newID string) {
	if h.updatePlayerID != nil {
		h.updatePlayerID(newID)
	}
	h.PlayerID = newID
}

// Handler is bound to exactly one (MessageType, ExpectedClass) pair.
type Handler interface {
	// MessageType is the logical type this handler wants to see.
	MessageType() string

	// ExpectedClass is the concrete Message implementation this handler
	// knows how to cast to. FindHandlerFor re-verifies this at runtime
	// (see isInstance) and only returns handlers whose class matches.
	ExpectedClass() wire.Class

	// Handle processes one message. Any panic is recovered by the
	// Connection Server's per-connection boundary and terminates only that
	// connection.
	Handle(ctx *HandlerContext) error
}

// ShouldHandler is an optional secondary predicate evaluated after the
// dispatcher's own type check passes. Returning false skips the handler
// silently (no log, no error).
type ShouldHandler interface {
	ShouldHandle(msg wire.Message) bool
}
