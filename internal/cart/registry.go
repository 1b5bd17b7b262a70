package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/identity/session"
	id "storefront/pkg/domain"
)

// Registry owns one Ledger per session.
type Registry struct {
	mu      sync.RWMutex
	ledgers map[id.SessionID]*Ledger
}

func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[id.SessionID]*Ledger)}
}

// For returns the session's ledger, creating an empty one on first use.
func (r *Registry) For(sessionID id.SessionID) *Ledger {
	r.mu.RLock()
	l, ok := r.ledgers[sessionID]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[sessionID]; ok {
		return l
	}
	l = NewLedger()
	r.ledgers[sessionID] = l
	return l
}

func (r *Registry) Drop(sessionID id.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ledgers, sessionID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}

// Observe drops ledgers as their sessions end. Call the returned function on
// shutdown to stop observing.
func (r *Registry) Observe(n *session.Notifier) (unsubscribe func()) {
	return n.Subscribe(func(e session.Event) {
		if e.Kind == session.EventEnded {
			r.Drop(e.SessionID)
		}
	})
}

// SessionChecker reports whether a session can still be used. Sessions that
// expired or were removed read as inactive.
type SessionChecker interface {
	IsSessionActive(ctx context.Context, sessionID id.SessionID) (bool, error)
}

// Sweep drops the ledgers of sessions that are no longer active. Expired
// sessions publish no end event, so Observe alone never sees them. A
// session whose state cannot be read keeps its ledger until the next sweep.
func (r *Registry) Sweep(ctx context.Context, sessions SessionChecker) (dropped int, err error) {
	r.mu.RLock()
	ids := make([]id.SessionID, 0, len(r.ledgers))
	for sid := range r.ledgers {
		ids = append(ids, sid)
	}
	r.mu.RUnlock()

	for _, sid := range ids {
		active, checkErr := sessions.IsSessionActive(ctx, sid)
		if checkErr != nil {
			err = checkErr
			continue
		}
		if !active {
			r.Drop(sid)
			dropped++
		}
	}
	return dropped, err
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, sessions SessionChecker, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			dropped, err := r.Sweep(ctx, sessions)
			if err != nil {
				logger.WarnContext(ctx, "cart sweep could not check every session", "error", err)
			}
			if dropped > 0 {
				logger.DebugContext(ctx, "dropped carts of expired sessions", "count", dropped)
			}
		}
	}
}
