package common

import (
	"context"
	"sync"

	"tourbook/src/models"
	"tourbook/src/types"

	"github.com/google/uuid"
)

// fakeAPI is an in-memory BookingAPI with the same arbitration semantics
// as the gorm adapter: status updates are compare-and-swap.
type fakeAPI struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking

	failFetch  error
	failUpdate error
	failInsert error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeAPI) seed(b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := b
	f.bookings[b.ID] = &cp
}

func (f *fakeAPI) get(id uuid.UUID) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.bookings[id]
}

func (f *fakeAPI) FetchBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch != nil {
		return nil, f.failFetch
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if filter.TouristID != 0 && b.TouristID != filter.TouristID {
			continue
		}
		if filter.GuideID != 0 && b.GuideID != filter.GuideID {
			continue
		}
		if filter.TourID != 0 && b.TourID != filter.TourID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeAPI) FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, NewError(KindNotFound, "booking not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeAPI) InsertBooking(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return f.failInsert
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeAPI) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to types.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	b, ok := f.bookings[id]
	if !ok {
		return NewError(KindNotFound, "booking not found")
	}
	if b.Status != from {
		return NewError(KindInvalidTransition, "booking is no longer %s (now %s)", from, b.Status)
	}
	b.Status = to
	return nil
}

// captureSink records every delivered notification.
type captureSink struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Send(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, *n)
	return nil
}

func (s *captureSink) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *captureSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

func (s *captureSink) byType(t types.NotificationType) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
