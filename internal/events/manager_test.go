package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingHook struct {
	id   string
	typ  string
	mu   *sync.Mutex
	seen *[]Type
}

func (h recordingHook) ID() string   { return h.id }
func (h recordingHook) Type() string { return h.typ }
func (h recordingHook) Execute(ctx context.Context, event Event) error {
	h.mu.Lock()
	*h.seen = append(*h.seen, event.Type)
	h.mu.Unlock()
	return nil
}

func TestManagerFiresOnlyRegisteredEventType(t *testing.T) {
	m := NewManager(2, nil)
	defer m.Close()

	var mu sync.Mutex
	var seen []Type
	m.Register(SessionIssued, recordingHook{id: "h1", typ: "test", mu: &mu, seen: &seen})

	m.Fire(context.Background(), New(SessionIssued))
	m.Fire(context.Background(), New(ConnectionClose))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != SessionIssued {
		t.Fatalf("expected exactly [SessionIssued], got %v", seen)
	}
}

func TestManagerStdioHookFiresForEveryEventType(t *testing.T) {
	m := NewManager(2, nil)
	defer m.Close()

	var mu sync.Mutex
	var seen []Type
	m.SetStdioHook(recordingHook{id: "stdio", typ: "stdio", mu: &mu, seen: &seen})

	m.Fire(context.Background(), New(ConnectionAccept))
	m.Fire(context.Background(), New(DispatchMiss))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected stdio hook to fire for both events, got %v", seen)
	}
}

func TestEventWithDataIsImmutable(t *testing.T) {
	base := New(CommandExecuted)
	derived := base.WithData("command", "whoami")

	if len(base.Data) != 0 {
		t.Fatalf("expected base event untouched, got %v", base.Data)
	}
	if derived.Data["command"] != "whoami" {
		t.Fatalf("expected derived event to carry new key, got %v", derived.Data)
	}
}
