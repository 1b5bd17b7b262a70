package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/identity/session"
	id "storefront/pkg/domain"
)

func TestRegistry(t *testing.T) {
	sessionA := id.SessionID(uuid.New())
	sessionB := id.SessionID(uuid.New())
	product := Product{ID: id.ProductID(uuid.New()), Price: 100}

	t.Run("same session gets the same ledger", func(t *testing.T) {
		r := NewRegistry()
		r.For(sessionA).Add(product, 1)
		assert.Equal(t, 1, r.For(sessionA).Len())
		assert.Zero(t, r.For(sessionB).Len())
		assert.Equal(t, 2, r.Len())
	})

	t.Run("ended sessions drop their ledger", func(t *testing.T) {
		r := NewRegistry()
		n := session.NewNotifier()
		unsubscribe := r.Observe(n)
		defer unsubscribe()

		r.For(sessionA).Add(product, 1)
		r.For(sessionB).Add(product, 1)

		n.Started(sessionA, id.UserID(uuid.New()))
		assert.Equal(t, 2, r.Len())

		n.Ended(sessionA, id.UserID(uuid.New()))
		assert.Equal(t, 1, r.Len())
		assert.Zero(t, r.For(sessionA).Len(), "a fresh ledger replaces the dropped one")
	})

	t.Run("unsubscribed registry keeps ledgers", func(t *testing.T) {
		r := NewRegistry()
		n := session.NewNotifier()
		r.Observe(n)()

		r.For(sessionA).Add(product, 1)
		n.Ended(sessionA, id.UserID(uuid.New()))
		assert.Equal(t, 1, r.For(sessionA).Len())
	})
}

// expiringSessions answers liveness from fixed expiry times against a
// movable clock.
type expiringSessions struct {
	now     time.Time
	expires map[id.SessionID]time.Time
	broken  map[id.SessionID]bool
}

func (e *expiringSessions) IsSessionActive(_ context.Context, sid id.SessionID) (bool, error) {
	if e.broken[sid] {
		return false, errors.New("session store unavailable")
	}
	exp, ok := e.expires[sid]
	return ok && e.now.Before(exp), nil
}

func TestRegistrySweep(t *testing.T) {
	product := Product{ID: id.ProductID(uuid.New()), Price: 100}
	start := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("expired sessions lose their ledger", func(t *testing.T) {
		shortLived := id.SessionID(uuid.New())
		longLived := id.SessionID(uuid.New())
		sessions := &expiringSessions{now: start, expires: map[id.SessionID]time.Time{
			shortLived: start.Add(time.Minute),
			longLived:  start.Add(24 * time.Hour),
		}}
		r := NewRegistry()
		r.For(shortLived).Add(product, 1)
		r.For(longLived).Add(product, 1)

		dropped, err := r.Sweep(context.Background(), sessions)
		require.NoError(t, err)
		assert.Zero(t, dropped)
		assert.Equal(t, 2, r.Len())

		sessions.now = start.Add(2 * time.Hour)
		dropped, err = r.Sweep(context.Background(), sessions)
		require.NoError(t, err)
		assert.Equal(t, 1, dropped)
		assert.Equal(t, 1, r.Len())
		assert.Equal(t, 1, r.For(longLived).Len())
	})

	t.Run("unreadable sessions keep their ledger", func(t *testing.T) {
		sid := id.SessionID(uuid.New())
		gone := id.SessionID(uuid.New())
		sessions := &expiringSessions{now: start, broken: map[id.SessionID]bool{sid: true}}
		r := NewRegistry()
		r.For(sid).Add(product, 1)
		r.For(gone).Add(product, 1)

		dropped, err := r.Sweep(context.Background(), sessions)
		require.Error(t, err)
		assert.Equal(t, 1, dropped)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("sweeper stops with its context", func(t *testing.T) {
		sessions := &expiringSessions{now: start}
		r := NewRegistry()
		r.For(id.SessionID(uuid.New())).Add(product, 1)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- r.RunSweeper(ctx, sessions, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		}()

		assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	})
}
