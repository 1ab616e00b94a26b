package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/alxayo/go-arcade/internal/clock"
	"github.com/alxayo/go-arcade/internal/events"
	"github.com/alxayo/go-arcade/internal/gameerrors"
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/metrics"
)

// Options configures a Manager. Zero-value fields fall back to defaults:
// the real clock, a 5 minute CleanupInterval, a 1 hour
// SingleSessionDuration, a 6 hour Lifetime, a no-op logger and
// unregistered metrics. A nil Events fires nothing.
type Options struct {
	Clock                 clock.Clock
	CleanupInterval       time.Duration
	SingleSessionDuration time.Duration
	Lifetime              time.Duration
	Logger                *logging.Logger
	Events                *events.Manager
	Metrics               *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 5 * time.Minute
	}
	if o.SingleSessionDuration <= 0 {
		o.SingleSessionDuration = time.Hour
	}
	if o.Lifetime <= 0 {
		o.Lifetime = 6 * time.Hour
	}
	if o.Logger == nil {
		o.Logger = logging.NoOp()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Noop()
	}
	return o
}

// Manager owns the live token table and an optional background sweeper.
type Manager struct {
	opts  Options
	log   *logging.Logger
	table *tokenTable

	scheduler gocron.Scheduler
}

// NewManager creates a Manager. Call Start to begin the background sweeper;
// a Manager with no sweeper running still serves Create/Verify/Refresh, it
// simply relies on a later sweep (or never sweeps) to reclaim expired
// entries.
func NewManager(opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:  opts,
		log:   opts.Logger.WithTag("session.manager"),
		table: newTokenTable(),
	}
}

// Start launches the gocron-driven sweeper. Safe to call at most once.
func (m *Manager) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return gameerrors.NewSessionError("start", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(m.opts.CleanupInterval),
		gocron.NewTask(m.sweep),
	); err != nil {
		return gameerrors.NewSessionError("start", err)
	}
	m.scheduler = s
	s.Start()
	return nil
}

// Create issues a new UserSession for userID. validFor and lifetime
// override the manager defaults when non-zero.
func (m *Manager) Create(userID string, validFor, lifetime time.Duration) (*UserSession, error) {
	if userID == "" {
		return nil, gameerrors.NewSessionError("create", fmt.Errorf("userID must not be empty"))
	}
	if validFor <= 0 {
		validFor = m.opts.SingleSessionDuration
	}
	if lifetime <= 0 {
		lifetime = m.opts.Lifetime
	}

	now := m.opts.Clock.Now()
	sess := &UserSession{
		UserID:                userID,
		Token:                 newToken(userID),
		IssuedAt:              now,
		ExpiresAt:             now.Add(validFor),
		SingleSessionDuration: validFor,
		Lifetime:              lifetime,
	}

	m.table.mu.Lock()
	m.table.byToken[sess.Token] = sess
	count := len(m.table.byToken)
	m.table.mu.Unlock()

	m.opts.Metrics.ActiveSessions.Set(float64(count))
	m.fire(events.SessionIssued, sess)
	return sess, nil
}

// Verify reports whether token names a live (not-yet-ExpiresAt) session. It
// never mutates the table; an entry past ExpiresAt stays in the table until
// its Lifetime has passed and Refresh or the sweeper removes it.
func (m *Manager) Verify(token string) bool {
	now := m.opts.Clock.Now()
	m.table.mu.Lock()
	defer m.table.mu.Unlock()

	sess, ok := m.table.byToken[token]
	if !ok {
		return false
	}
	return sess.live(now)
}

// Refresh extends token's ExpiresAt by its SingleSessionDuration, regardless
// of whether ExpiresAt has already passed, as long as the session is still
// within its absolute Lifetime. Returns false if token is unknown or its
// Lifetime has elapsed, in which case the entry is removed.
func (m *Manager) Refresh(token string) bool {
	now := m.opts.Clock.Now()
	m.table.mu.Lock()
	sess, ok := m.table.byToken[token]
	if !ok {
		m.table.mu.Unlock()
		return false
	}
	if sess.lifetimeExpired(now) {
		delete(m.table.byToken, token)
		m.table.mu.Unlock()
		return false
	}
	sess.ExpiresAt = now.Add(sess.SingleSessionDuration)
	m.table.mu.Unlock()

	m.fire(events.SessionRefreshed, sess)
	return true
}

// GetUserID returns the UserID bound to token, if live. Like Verify, this
// never mutates the table.
func (m *Manager) GetUserID(token string) (string, bool) {
	now := m.opts.Clock.Now()
	m.table.mu.Lock()
	defer m.table.mu.Unlock()

	sess, ok := m.table.byToken[token]
	if !ok || !sess.live(now) {
		return "", false
	}
	return sess.UserID, true
}

// sweep removes every entry whose absolute lifetime has expired. Run by the
// gocron job on CleanupInterval.
func (m *Manager) sweep() {
	now := m.opts.Clock.Now()
	var expired []*UserSession

	m.table.mu.Lock()
	for token, sess := range m.table.byToken {
		if sess.lifetimeExpired(now) {
			expired = append(expired, sess)
			delete(m.table.byToken, token)
		}
	}
	count := len(m.table.byToken)
	m.table.mu.Unlock()

	m.opts.Metrics.ActiveSessions.Set(float64(count))
	if len(expired) > 0 {
		m.log.Info("swept expired sessions", "count", len(expired))
	}
	for _, sess := range expired {
		m.fire(events.SessionExpired, sess)
	}
}

// Shutdown stops the sweeper, if running, and blocks until any in-flight
// tick finishes.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	if err := m.scheduler.Shutdown(); err != nil {
		return gameerrors.NewSessionError("shutdown", err)
	}
	return nil
}

// Count reports the number of entries in the table, including ones past
// ExpiresAt that have not been swept, for metrics wiring.
func (m *Manager) Count() int {
	m.table.mu.Lock()
	defer m.table.mu.Unlock()
	return len(m.table.byToken)
}

func (m *Manager) fire(t events.Type, sess *UserSession) {
	if m.opts.Events == nil {
		return
	}
	m.opts.Events.Fire(context.Background(), events.New(t).WithPlayerID(sess.UserID).WithData("token", sess.Token))
}
