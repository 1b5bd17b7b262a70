// Package session broadcasts session lifecycle changes to in-process
// observers such as the cart registry.
package session

import (
	"sync"

	id "storefront/pkg/domain"
)

type EventKind string

const (
	EventStarted EventKind = "started"
	EventEnded   EventKind = "ended"
)

// Event describes one session transition.
type Event struct {
	Kind      EventKind
	SessionID id.SessionID
	UserID    id.UserID
}

type Listener func(Event)

// Notifier fans events out to subscribed listeners synchronously, in
// subscription order. Listeners must not call back into the Notifier.
type Notifier struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
}

func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[uint64]Listener)}
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (n *Notifier) Subscribe(l Listener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	key := n.nextID
	n.listeners[key] = l
	n.order = append(n.order, key)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners, key)
			for i, k := range n.order {
				if k == key {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	snapshot := make([]Listener, 0, len(n.order))
	for _, k := range n.order {
		snapshot = append(snapshot, n.listeners[k])
	}
	n.mu.RUnlock()

	for _, l := range snapshot {
		l(e)
	}
}

func (n *Notifier) Started(sessionID id.SessionID, userID id.UserID) {
	n.Publish(Event{Kind: EventStarted, SessionID: sessionID, UserID: userID})
}

func (n *Notifier) Ended(sessionID id.SessionID, userID id.UserID) {
	n.Publish(Event{Kind: EventEnded, SessionID: sessionID, UserID: userID})
}
