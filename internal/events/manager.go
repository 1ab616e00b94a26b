package events

import (
	"context"
	"sync"
	"time"

	"github.com/alxayo/go-arcade/internal/logging"
)

// Manager fans events out to registered hooks over a bounded worker pool, so
// a slow or stuck hook degrades to dropped throughput rather than blocking
// the connection that fired the event.
type Manager struct {
	mu   sync.RWMutex
	log  *logging.Logger
	pool *executionPool

	hooks     map[Type][]Hook
	stdioHook Hook
}

// NewManager creates a Manager whose hook executions run on a pool of the
// given size (defaults to 10 when size <= 0).
func NewManager(poolSize int, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NoOp()
	}
	log = log.WithTag("events.manager")
	return &Manager{
		log:   log,
		pool:  newExecutionPool(poolSize, log),
		hooks: make(map[Type][]Hook),
	}
}

// Register adds h to the set of hooks invoked whenever an Event of t fires.
func (m *Manager) Register(t Type, h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[t] = append(m.hooks[t], h)
}

// SetStdioHook installs (or, with nil, removes) a hook invoked for every
// event type regardless of registration, mirroring a tee to stdio.
func (m *Manager) SetStdioHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stdioHook = h
}

// Fire dispatches event to every hook registered for event.Type, plus the
// stdio hook if set. Execution happens asynchronously on the pool; Fire
// itself never blocks on a hook.
func (m *Manager) Fire(ctx context.Context, event Event) {
	m.mu.RLock()
	hooks := append([]Hook(nil), m.hooks[event.Type]...)
	stdio := m.stdioHook
	m.mu.RUnlock()

	if stdio != nil {
		m.pool.execute(ctx, stdio, event)
	}
	for _, h := range hooks {
		m.pool.execute(ctx, h, event)
	}
}

// Stats reports a snapshot of registration and pool state, intended for an
// operational status endpoint.
func (m *Manager) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[string]int, len(m.hooks))
	total := 0
	for t, hooks := range m.hooks {
		byType[string(t)] = len(hooks)
		total += len(hooks)
	}
	return map[string]any{
		"event_types":   len(m.hooks),
		"total_hooks":   total,
		"hooks_by_type": byType,
		"stdio_enabled": m.stdioHook != nil,
		"pool_size":     m.pool.size,
		"pool_active":   m.pool.active,
	}
}

// Close waits for in-flight hook executions to drain.
func (m *Manager) Close() error {
	m.pool.close()
	m.log.Info("event manager closed")
	return nil
}

// executionPool bounds concurrent hook execution with a semaphore channel.
type executionPool struct {
	workers chan struct{}
	size    int
	active  int
	mu      sync.Mutex
	log     *logging.Logger
}

func newExecutionPool(size int, log *logging.Logger) *executionPool {
	if size <= 0 {
		size = 10
	}
	return &executionPool{workers: make(chan struct{}, size), size: size, log: log}
}

func (ep *executionPool) execute(ctx context.Context, hook Hook, event Event) {
	go func() {
		ep.workers <- struct{}{}
		defer func() { <-ep.workers }()

		ep.mu.Lock()
		ep.active++
		ep.mu.Unlock()
		defer func() {
			ep.mu.Lock()
			ep.active--
			ep.mu.Unlock()
		}()

		start := time.Now()
		err := hook.Execute(ctx, event)
		elapsed := time.Since(start)

		if err != nil {
			ep.log.Error("hook execution failed", "hook_type", hook.Type(), "hook_id", hook.ID(),
				"event_type", event.Type, "duration_ms", elapsed.Milliseconds(), "error", err)
			return
		}
		ep.log.Debug(func() string { return "hook executed" }, "hook_type", hook.Type(), "hook_id", hook.ID(),
			"event_type", event.Type, "duration_ms", elapsed.Milliseconds())
	}()
}

func (ep *executionPool) close() {
	for i := 0; i < cap(ep.workers); i++ {
		ep.workers <- struct{}{}
	}
}
