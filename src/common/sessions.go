package common

import (
	"context"
	"log"
	"sync"

	"tourbook/src/types"
)

// SessionRegistry keeps one BookingStore per signed-in actor so the
// periodic refresh only touches live sessions. Stores are dropped on
// logout; nothing keeps refreshing a session that ended.
type SessionRegistry struct {
	api        BookingAPI
	dispatcher *Dispatcher

	mu     sync.Mutex
	stores map[uint]*BookingStore
}

func NewSessionRegistry(api BookingAPI, dispatcher *Dispatcher) *SessionRegistry {
	return &SessionRegistry{
		api:        api,
		dispatcher: dispatcher,
		stores:     make(map[uint]*BookingStore),
	}
}

// Get returns the actor's store, creating it on first use.
func (r *SessionRegistry) Get(actor types.Actor) *BookingStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[actor.ID]; ok && s.Actor().Role == actor.Role {
		return s
	}
	s := NewBookingStore(r.api, r.dispatcher, actor)
	r.stores[actor.ID] = s
	return s
}

// Drop evicts a session on sign-out or identity change.
func (r *SessionRegistry) Drop(actorID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, actorID)
}

// RefreshAll re-fetches every live session's partitions, absorbing
// out-of-band changes such as counterparty actions and sweep completions.
func (r *SessionRegistry) RefreshAll(ctx context.Context) {
	r.mu.Lock()
	stores := make([]*BookingStore, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	for _, s := range stores {
		if err := s.Refresh(ctx); err != nil {
			log.Printf("[refresh] Error refreshing session for user %d: %s\n", s.Actor().ID, err.Error())
		}
	}
}
