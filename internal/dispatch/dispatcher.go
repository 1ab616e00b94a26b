package dispatch

import (
	"fmt"
	"sync"

	"github.com/alxayo/go-arcade/internal/gameerrors"
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/wire"
)

// Dispatcher holds registered handlers keyed by message type, enforcing that
// every handler bucketed under a given type shares the same ExpectedClass.
// Registration is expected to happen once during initialization (single
// writer); FindHandlerFor runs continuously while serving (many readers) —
// the same read-heavy shape as the teacher's hook manager, guarded the same
// way with a sync.RWMutex.
type Dispatcher struct {
	mu      sync.RWMutex
	all     []Handler
	byType  map[string][]Handler
	classOf map[string]wire.Class
	log     *logging.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.NoOp()
	}
	return &Dispatcher{
		byType:  make(map[string][]Handler),
		classOf: make(map[string]wire.Class),
		log:     log.WithTag("dispatch.dispatcher"),
	}
}

// Register adds h to the dispatcher. If a handler is already registered for
// h.MessageType() with a different ExpectedClass, registration fails — this
// is the handler invariant from SPEC_FULL.md §3, a programmer mistake that
// must fail fast rather than surface as a runtime dispatch anomaly.
func (d *Dispatcher) Register(h Handler) error {
	if h == nil {
		return gameerrors.NewDispatchError("register", fmt.Errorf("nil handler"))
	}
	msgType := h.MessageType()
	expected := h.ExpectedClass()

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.classOf[msgType]; ok && existing != expected {
		return gameerrors.NewDispatchError("register", fmt.Errorf(
			"message type %q already bound to class %s, cannot also bind %s", msgType, existing, expected))
	}

	d.classOf[msgType] = expected
	d.all = append(d.all, h)
	d.byType[msgType] = append(d.byType[msgType], h)
	return nil
}

// FindHandlerFor resolves the non-empty list of handlers to invoke for msg.
// An unregistered message type always falls through to DefaultHandler —
// the bucket's domain predicate (ShouldHandle) is only ever consulted for
// handlers already bucketed under msg.Type() (see SPEC_FULL.md §9 open
// question resolution).
func (d *Dispatcher) FindHandlerFor(msg wire.Message) []Handler {
	d.mu.RLock()
	bucket := d.byType[msg.Type()]
	candidates := make([]Handler, len(bucket))
	copy(candidates, bucket)
	d.mu.RUnlock()

	var matched []Handler
	for _, h := range candidates {
		if h.MessageType() != msg.Type() {
			continue
		}
		if !isInstance(h.ExpectedClass(), msg) {
			continue
		}
		if sh, ok := h.(ShouldHandler); ok && !sh.ShouldHandle(msg) {
			continue
		}
		matched = append(matched, h)
	}
	if len(matched) == 0 {
		d.log.Warn("no handler matched message, falling back to default handler", "type", msg.Type())
		return []Handler{defaultHandler{log: d.log}}
	}
	return matched
}

// isInstance is the single centralized unsafe-cast bridge: every dispatch
// path re-verifies the message's concrete class against what the handler
// declared before ever calling Handle.
func isInstance(expected wire.Class, msg wire.Message) bool {
	return wire.ClassOf(msg) == expected
}
