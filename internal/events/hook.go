package events

import "context"

// Hook receives fired Events. Execute is invoked from a pool worker, never
// directly from the caller of Manager.Fire — implementations may block
// without affecting dispatch latency, but should still respect ctx.
type Hook interface {
	ID() string
	Type() string
	Execute(ctx context.Context, event Event) error
}
