package dispatch

import (
	"testing"

	"github.com/alxayo/go-arcade/internal/wire"
)

type classA struct{ typ string }

func (m classA) Type() string { return m.typ }

type classB struct{ typ string }

func (m classB) Type() string { return m.typ }

type recordingHandler struct {
	msgType string
	class   wire.Class
	handled *[]string
	name    string
}

func (h recordingHandler) MessageType() string       { return h.msgType }
func (h recordingHandler) ExpectedClass() wire.Class { return h.class }
func (h recordingHandler) Handle(ctx *HandlerContext) error {
	*h.handled = append(*h.handled, h.name)
	return nil
}

// P1: FindHandlerFor is always non-empty — empty dispatcher falls back to
// the default handler.
func TestFindHandlerForIsTotal(t *testing.T) {
	d := NewDispatcher(nil)
	handled := d.FindHandlerFor(classA{typ: "unregistered"})
	if len(handled) != 1 {
		t.Fatalf("expected exactly one (default) handler, got %d", len(handled))
	}
}

// P2: registering two handlers for the same type with different expected
// classes fails; with the same class it succeeds.
func TestRegisterEnforcesOneClassPerType(t *testing.T) {
	d := NewDispatcher(nil)
	var handled []string

	if err := d.Register(recordingHandler{msgType: "t", class: wire.ClassOf(classA{}), handled: &handled, name: "h1"}); err != nil {
		t.Fatalf("unexpected error registering h1: %v", err)
	}
	if err := d.Register(recordingHandler{msgType: "t", class: wire.ClassOf(classA{}), handled: &handled, name: "h2"}); err != nil {
		t.Fatalf("unexpected error registering h2 with same class: %v", err)
	}
	if err := d.Register(recordingHandler{msgType: "t", class: wire.ClassOf(classB{}), handled: &handled, name: "h3"}); err == nil {
		t.Fatalf("expected error registering conflicting expected class")
	}
}

// P3: dispatch filtering — a handler for type t2 never fires for a message
// of type t even if the class matches.
func TestFindHandlerForFiltersByTypeAndClass(t *testing.T) {
	d := NewDispatcher(nil)
	var handled []string

	h1 := recordingHandler{msgType: "t", class: wire.ClassOf(classA{}), handled: &handled, name: "H1"}
	h2 := recordingHandler{msgType: "t2", class: wire.ClassOf(classA{}), handled: &handled, name: "H2"}
	mustRegister(t, d, h1)
	mustRegister(t, d, h2)

	msg := classA{typ: "t"}
	got := d.FindHandlerFor(msg)
	if len(got) != 1 {
		t.Fatalf("expected exactly [H1], got %d handlers", len(got))
	}
	invoke(t, got, msg)
	if len(handled) != 1 || handled[0] != "H1" {
		t.Fatalf("expected only H1 to run, got %v", handled)
	}
}

// S6: duplicate registration for the same (type, class) succeeds and both
// handlers run, in registration order.
func TestDuplicateHandlerRegistrationRunsBothInOrder(t *testing.T) {
	d := NewDispatcher(nil)
	var handled []string

	h1 := recordingHandler{msgType: "t", class: wire.ClassOf(classA{}), handled: &handled, name: "first"}
	h2 := recordingHandler{msgType: "t", class: wire.ClassOf(classA{}), handled: &handled, name: "second"}
	mustRegister(t, d, h1)
	mustRegister(t, d, h2)

	msg := classA{typ: "t"}
	got := d.FindHandlerFor(msg)
	invoke(t, got, msg)

	if len(handled) != 2 || handled[0] != "first" || handled[1] != "second" {
		t.Fatalf("expected [first second] in registration order, got %v", handled)
	}
}

func mustRegister(t *testing.T, d *Dispatcher, h Handler) {
	t.Helper()
	if err := d.Register(h); err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}
}

func invoke(t *testing.T, handlers []Handler, msg wire.Message) {
	t.Helper()
	for _, h := range handlers {
		ctx := NewHandlerContext(nil, "[Undetermined]", msg, nil, nil)
		if err := h.Handle(ctx); err != nil {
			t.Fatalf("unexpected handle error: %v", err)
		}
	}
}
