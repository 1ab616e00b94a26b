package dispatch

import (
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/wire"
)

// defaultHandler matches any message, logs a warning naming the unknown
// message type, and performs no writes. Its presence guarantees
// FindHandlerFor always returns a non-empty list.
type defaultHandler struct {
	log *logging.Logger
}

func (defaultHandler) MessageType() string       { return "*" }
func (defaultHandler) ExpectedClass() wire.Class { return nil }

func (d defaultHandler) Handle(ctx *HandlerContext) error {
	if d.log != nil {
		d.log.Warn("unhandled message type", "type", ctx.Message.Type())
	}
	return nil
}
