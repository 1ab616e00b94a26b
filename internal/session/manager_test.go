package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alxayo/go-arcade/internal/clock"
	"github.com/alxayo/go-arcade/internal/metrics"
)

func newTestManager(t *testing.T, fake *clock.Fake) *Manager {
	t.Helper()
	return NewManager(Options{
		Clock:                 fake,
		SingleSessionDuration: time.Minute,
		Lifetime:              time.Hour,
	})
}

// P6: a live session verifies true; once now passes ExpiresAt it verifies
// false.
func TestVerifyExpiresAfterSingleSessionDuration(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)

	sess, err := m.Create("alice", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Verify(sess.Token) {
		t.Fatalf("expected fresh session to verify")
	}

	fake.Advance(2 * time.Minute)
	if m.Verify(sess.Token) {
		t.Fatalf("expected session to have expired")
	}
}

// Refreshing before expiry extends ExpiresAt; refreshing once the Lifetime
// cap has passed fails.
func TestRefreshExtendsButNotPastLifetime(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)

	sess, _ := m.Create("bob", 0, 0)

	fake.Advance(30 * time.Second)
	if !m.Refresh(sess.Token) {
		t.Fatalf("expected refresh to succeed before expiry")
	}
	if !m.Verify(sess.Token) {
		t.Fatalf("expected session to remain live after refresh")
	}

	fake.Advance(2 * time.Hour)
	if m.Refresh(sess.Token) {
		t.Fatalf("expected refresh to fail once lifetime cap has passed")
	}
}

// S5: refreshing a session whose ExpiresAt has already passed still
// succeeds as long as its absolute Lifetime has not elapsed.
func TestRefreshSucceedsPastExpiresAtWithinLifetime(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)

	sess, _ := m.Create("dave", time.Hour, 6*time.Hour)

	fake.Advance(61 * time.Minute)
	if m.Verify(sess.Token) {
		t.Fatalf("expected session to report not-live past ExpiresAt")
	}
	if !m.Refresh(sess.Token) {
		t.Fatalf("expected refresh to succeed: ExpiresAt passed but Lifetime has not")
	}
	if !m.Verify(sess.Token) {
		t.Fatalf("expected session to verify live again after refresh")
	}
}

func TestCreateIssuesFixedTokenForAdmin(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)

	sess, err := m.Create(AdminUserID, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != AdminToken {
		t.Fatalf("expected fixed admin token, got %q", sess.Token)
	}
}

// S5: GetUserID round-trips the issuing user id for a live token and
// reports false once expired.
func TestGetUserIDRoundTrips(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)

	sess, _ := m.Create("carol", 0, 0)

	got, ok := m.GetUserID(sess.Token)
	if !ok || got != "carol" {
		t.Fatalf("expected (carol, true), got (%q, %v)", got, ok)
	}

	fake.Advance(2 * time.Minute)
	if _, ok := m.GetUserID(sess.Token); ok {
		t.Fatalf("expected expired token to report false")
	}
}

// ActiveSessions reflects the live table count after Create and after a
// sweep reclaims a lifetime-expired entry.
func TestActiveSessionsGaugeTracksTableSize(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := metrics.Noop()
	mgr := NewManager(Options{
		Clock:                 fake,
		SingleSessionDuration: time.Minute,
		Lifetime:              time.Hour,
		Metrics:               m,
	})

	if _, err := mgr.Create("alice", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 1 {
		t.Fatalf("expected ActiveSessions=1 after Create, got %v", got)
	}

	fake.Advance(2 * time.Hour)
	mgr.sweep()
	if got := testutil.ToFloat64(m.ActiveSessions); got != 0 {
		t.Fatalf("expected ActiveSessions=0 after sweep, got %v", got)
	}
}

func TestShutdownWithoutStartIsNoop(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	m := newTestManager(t, fake)
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
