package common

import (
	"context"
	"log"
	"time"

	"tourbook/src/types"
)

// AutoCompleter is the unattended sweep that drives overdue paid bookings
// to completed. It reuses the BookingStore update path under the system
// actor, so the same authorization, cache and notification pipeline
// applies; its failures are logged only, never shown to a user.
type AutoCompleter struct {
	store *BookingStore
	api   BookingAPI
	now   func() time.Time
}

func NewAutoCompleter(api BookingAPI, dispatcher *Dispatcher) *AutoCompleter {
	return &AutoCompleter{
		store: NewBookingStore(api, dispatcher, types.Actor{Role: types.ROLE_SYSTEM}),
		api:   api,
		now:   time.Now,
	}
}

// WithClock replaces the time source on the sweep and its store.
func (a *AutoCompleter) WithClock(now func() time.Time) *AutoCompleter {
	a.now = now
	a.store.WithClock(now)
	return a
}

// Run performs one sweep. Racing explicit actions are fine: the remote
// store arbitrates and a booking that is no longer paid surfaces as an
// invalid transition, which the sweep drops.
func (a *AutoCompleter) Run(ctx context.Context) {
	bookings, err := a.api.FetchBookings(ctx, BookingFilter{Status: types.BOOKING_PAID})
	if err != nil {
		log.Printf("[sweep] Error fetching paid bookings: %s\n", err.Error())
		return
	}
	completed := 0
	for _, b := range bookings {
		if !ShouldAutoComplete(b.BookingDate, b.Status, b.PreferredTime, a.now()) {
			continue
		}
		if _, err := a.store.UpdateStatus(ctx, b.ID, types.BOOKING_COMPLETED); err != nil {
			log.Printf("[sweep] Could not complete booking %s: %s\n", b.ID.String(), err.Error())
			continue
		}
		completed++
	}
	if completed > 0 {
		log.Printf("[sweep] Auto-completed %d booking(s)\n", completed)
	}
}
