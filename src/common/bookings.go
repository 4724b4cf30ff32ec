package common

import (
	"context"
	"log"
	"sync"
	"time"

	"tourbook/src/models"
	"tourbook/src/types"

	"github.com/google/uuid"
)

// BookingStore holds one actor's view of their bookings, partitioned into
// incoming (the actor is expected to act next) and outgoing (the actor is
// waiting on the counterparty). Every mutation runs through the transition
// authorizer before touching the remote store, and the local cache only
// reflects writes the store confirmed.
type BookingStore struct {
	api        BookingAPI
	dispatcher *Dispatcher
	actor      types.Actor
	now        func() time.Time

	mu       sync.Mutex
	incoming []models.Booking
	outgoing []models.Booking
}

func NewBookingStore(api BookingAPI, dispatcher *Dispatcher, actor types.Actor) *BookingStore {
	return &BookingStore{
		api:        api,
		dispatcher: dispatcher,
		actor:      actor,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Test hook, same spirit as db.NewDB.
func (s *BookingStore) WithClock(now func() time.Time) *BookingStore {
	s.now = now
	return s
}

func (s *BookingStore) Actor() types.Actor {
	return s.actor
}

// Create inserts a new booking. A tourist creates a request, a guide
// creates an offer addressed to one specific tourist.
func (s *BookingStore) Create(ctx context.Context, body types.CreateBookingRequestBody) (*models.Booking, error) {
	if !s.actor.Authenticated() || s.actor.Role == types.ROLE_SYSTEM {
		return nil, NewError(KindUnauthenticated, "you must be signed in to create a booking")
	}
	if _, err := TourStart(body.BookingDate, body.PreferredTime); err != nil {
		return nil, NewError(KindInvalidArgument, "%s", err.Error())
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		TourID:        body.TourID,
		PartySize:     body.PartySize,
		BookingDate:   body.BookingDate,
		PreferredTime: body.PreferredTime,
		TotalPrice:    body.TotalPrice,
		Notes:         body.Notes,
	}
	switch s.actor.Role {
	case types.ROLE_TOURIST:
		booking.Status = types.BOOKING_REQUESTED
		booking.TouristID = s.actor.ID
		booking.GuideID = body.CounterpartID
	case types.ROLE_GUIDE:
		booking.Status = types.BOOKING_OFFERED
		booking.GuideID = s.actor.ID
		booking.TouristID = body.CounterpartID
	default:
		return nil, NewError(KindPermissionDenied, "unknown role %q", s.actor.Role)
	}

	if err := s.api.InsertBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.place(*booking)
	s.mu.Unlock()

	s.dispatcher.BookingEvent(ctx, types.NOTIFY_BOOKING_CREATED, booking, s.actor, booking.Counterpart(s.actor.ID))
	return booking, nil
}

// UpdateStatus drives one transition. It returns true only after the
// remote store confirmed the write; the cache is updated afterwards, never
// optimistically.
func (s *BookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, target types.BookingStatus) (bool, error) {
	if !s.actor.Authenticated() {
		return false, NewError(KindUnauthenticated, "you must be signed in to update a booking")
	}
	if !target.Valid() {
		return false, NewError(KindInvalidArgument, "unknown booking status %q", target)
	}

	// Authorization runs against freshly fetched state whenever feasible;
	// the cache may trail the counterparty. The remote store still has the
	// last word either way.
	booking, err := s.api.FindBooking(ctx, id)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return false, err
		}
		if booking = s.cached(id); booking == nil {
			return false, err
		}
	}

	if err := CheckTransition(s.actor, booking, target, s.now()); err != nil {
		return false, err
	}
	if err := s.api.UpdateBookingStatus(ctx, id, booking.Status, target); err != nil {
		return false, err
	}

	booking.Status = target
	booking.UpdatedAt = s.now()
	s.mu.Lock()
	s.remove(id)
	s.place(*booking)
	s.mu.Unlock()

	eventType := EventTypeFor(target)
	if s.actor.Role == types.ROLE_SYSTEM {
		// Nobody triggered an auto-completion explicitly, so both parties
		// hear about it.
		s.dispatcher.BookingEvent(ctx, eventType, booking, s.actor, booking.TouristID)
		s.dispatcher.BookingEvent(ctx, eventType, booking, s.actor, booking.GuideID)
	} else {
		s.dispatcher.BookingEvent(ctx, eventType, booking, s.actor, booking.Counterpart(s.actor.ID))
	}
	return true, nil
}

// Refresh re-fetches both partitions, fully replacing local state. On
// failure the previous view is kept.
func (s *BookingStore) Refresh(ctx context.Context) error {
	if !s.actor.Authenticated() || s.actor.Role == types.ROLE_SYSTEM {
		return NewError(KindUnauthenticated, "no session to refresh")
	}
	filter := BookingFilter{}
	if s.actor.Role == types.ROLE_GUIDE {
		filter.GuideID = s.actor.ID
	} else {
		filter.TouristID = s.actor.ID
	}
	bookings, err := s.api.FetchBookings(ctx, filter)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.incoming = s.incoming[:0]
	s.outgoing = s.outgoing[:0]
	for _, b := range bookings {
		s.place(b)
	}
	s.mu.Unlock()
	return nil
}

func (s *BookingStore) Incoming() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, len(s.incoming))
	copy(out, s.incoming)
	return out
}

func (s *BookingStore) Outgoing() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, len(s.outgoing))
	copy(out, s.outgoing)
	return out
}

// HasCompletedTour reports whether the actor, as a tourist, has a
// completed booking on the tour. Review eligibility fails closed: any
// query failure degrades to false.
func (s *BookingStore) HasCompletedTour(ctx context.Context, tourID uint) bool {
	if s.actor.ID == 0 {
		return false
	}
	bookings, err := s.api.FetchBookings(ctx, BookingFilter{
		TouristID: s.actor.ID,
		TourID:    tourID,
		Status:    types.BOOKING_COMPLETED,
	})
	if err != nil {
		log.Printf("Error checking completed bookings for tour %d: %s\n", tourID, err.Error())
		return false
	}
	return len(bookings) > 0
}

// HasCompletedGuideBooking is the guide-scoped counterpart of
// HasCompletedTour, gating guide reviews.
func (s *BookingStore) HasCompletedGuideBooking(ctx context.Context, guideID uint) bool {
	if s.actor.ID == 0 {
		return false
	}
	bookings, err := s.api.FetchBookings(ctx, BookingFilter{
		TouristID: s.actor.ID,
		GuideID:   guideID,
		Status:    types.BOOKING_COMPLETED,
	})
	if err != nil {
		log.Printf("Error checking completed bookings for guide %d: %s\n", guideID, err.Error())
		return false
	}
	return len(bookings) > 0
}

// place slots a booking into the partition the actor sees it in. Offers
// wait on the tourist: they are incoming for the tourist and outgoing for
// the guide who sent them; everything else waits on the guide first and on
// the tourist's own lifecycle after that. Callers hold s.mu.
func (s *BookingStore) place(b models.Booking) {
	switch s.actor.Role {
	case types.ROLE_GUIDE:
		if b.GuideID != s.actor.ID {
			return
		}
		if b.Status == types.BOOKING_OFFERED {
			s.outgoing = append(s.outgoing, b)
		} else {
			s.incoming = append(s.incoming, b)
		}
	case types.ROLE_TOURIST:
		if b.TouristID != s.actor.ID {
			return
		}
		if b.Status == types.BOOKING_OFFERED {
			s.incoming = append(s.incoming, b)
		} else {
			s.outgoing = append(s.outgoing, b)
		}
	}
}

func (s *BookingStore) remove(id uuid.UUID) {
	for i := range s.incoming {
		if s.incoming[i].ID == id {
			s.incoming = append(s.incoming[:i], s.incoming[i+1:]...)
			return
		}
	}
	for i := range s.outgoing {
		if s.outgoing[i].ID == id {
			s.outgoing = append(s.outgoing[:i], s.outgoing[i+1:]...)
			return
		}
	}
}

func (s *BookingStore) cached(id uuid.UUID) *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incoming {
		if s.incoming[i].ID == id {
			b := s.incoming[i]
			return &b
		}
	}
	for i := range s.outgoing {
		if s.outgoing[i].ID == id {
			b := s.outgoing[i]
			return &b
		}
	}
	return nil
}
