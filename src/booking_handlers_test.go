package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"tourbook/src/common"
	"tourbook/src/middlewares"
	"tourbook/src/models"
	"tourbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

const (
	testTouristID  = uint(1)
	testGuideID    = uint(2)
	testStrangerID = uint(99)
)

// stubAPI mirrors the remote store contract in memory, with the same
// compare-and-swap arbitration as the real adapter.
type stubAPI struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
}

func newStubAPI() *stubAPI {
	return &stubAPI{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *stubAPI) FetchBookings(ctx context.Context, filter common.BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func (f *stubAPI) FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, common.NewError(common.KindNotFound, "booking not found")
	}
	cp := *b
	return &cp, nil
}

func (f *stubAPI) InsertBooking(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *stubAPI) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to types.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return common.NewError(common.KindNotFound, "booking not found")
	}
	if b.Status != from {
		return common.NewError(common.KindInvalidTransition, "booking is no longer %s (now %s)", from, b.Status)
	}
	b.Status = to
	return nil
}

type memSink struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Send(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, *n)
	return nil
}

type TestSuite struct {
	suite.Suite
	router   *gin.Engine
	api      *stubAPI
	sink     *memSink
	sessions *common.SessionRegistry

	touristToken  string
	guideToken    string
	strangerToken string
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()

	s.api = newStubAPI()
	s.sink = &memSink{}
	s.sessions = common.NewSessionRegistry(s.api, common.NewDispatcher(s.sink))

	s.router = setupRouter()
	apiv1 := apiv1Group(s.router)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1, s.sessions)

	var err error
	s.touristToken, err = generateJWT("t1", testTouristID, types.ROLE_TOURIST)
	s.Require().NoError(err)
	s.guideToken, err = generateJWT("g1", testGuideID, types.ROLE_GUIDE)
	s.Require().NoError(err)
	s.strangerToken, err = generateJWT("g2", testStrangerID, types.ROLE_GUIDE)
	s.Require().NoError(err)
}

func (s *TestSuite) request(method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestAuthRequired() {
	w := s.request("GET", "/api/v1/bookings", "", "")
	assert.Equal(s.T(), 401, w.Code)

	w = s.request("GET", "/api/v1/bookings", "not-a-token", "")
	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestBookingValidation() {
	s.Run("past booking date is rejected", func() {
		body := `{"tour":7,"counterpart":2,"party_size":2,"booking_date":"2020-01-01"}`
		w := s.request("POST", "/api/v1/bookings", s.touristToken, body)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("malformed preferred time is rejected", func() {
		body := `{"tour":7,"counterpart":2,"party_size":2,"booking_date":"2030-05-01","preferred_time":"noonish"}`
		w := s.request("POST", "/api/v1/bookings", s.touristToken, body)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("malformed booking id is rejected", func() {
		w := s.request("PUT", "/api/v1/bookings/42/status", s.touristToken, `{"status":"accepted"}`)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("unknown booking returns 404", func() {
		path := fmt.Sprintf("/api/v1/bookings/%s/status", uuid.New())
		w := s.request("PUT", path, s.touristToken, `{"status":"cancelled"}`)
		assert.Equal(s.T(), 404, w.Code)
	})
}

func (s *TestSuite) TestBookingFlow() {
	var bookingID string

	s.Run("tourist creates a request", func() {
		body := `{"tour":7,"counterpart":2,"party_size":2,"booking_date":"2030-05-01","preferred_time":"10:00","total_price":150}`
		w := s.request("POST", "/api/v1/bookings", s.touristToken, body)
		assert.Equal(s.T(), 201, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		bookingID = gjson.Get(sjson, "data.id").String()
		assert.NotEmpty(s.T(), bookingID)
		assert.Equal(s.T(), "requested", gjson.Get(sjson, "data.status").String())
	})

	s.Run("request lands in the guide's incoming view", func() {
		w := s.request("GET", "/api/v1/bookings", s.guideToken, "")
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		sjson := string(rbytes)
		assert.Equal(s.T(), int64(1), gjson.Get(sjson, "incoming.#").Int())
		assert.Equal(s.T(), int64(0), gjson.Get(sjson, "outgoing.#").Int())
	})

	s.Run("stranger cannot accept", func() {
		path := fmt.Sprintf("/api/v1/bookings/%s/status", bookingID)
		w := s.request("PUT", path, s.strangerToken, `{"status":"accepted"}`)
		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("guide accepts once", func() {
		path := fmt.Sprintf("/api/v1/bookings/%s/status", bookingID)
		w := s.request("PUT", path, s.guideToken, `{"status":"accepted"}`)
		assert.Equal(s.T(), 200, w.Code)

		w = s.request("PUT", path, s.guideToken, `{"status":"accepted"}`)
		assert.Equal(s.T(), 409, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.NotEmpty(s.T(), gjson.Get(string(rbytes), "error").String())
	})

	s.Run("tourist pays before the deadline", func() {
		path := fmt.Sprintf("/api/v1/bookings/%s/status", bookingID)
		w := s.request("PUT", path, s.touristToken, `{"status":"paid"}`)
		assert.Equal(s.T(), 200, w.Code)
	})

	s.Run("review eligibility opens after completion", func() {
		w := s.request("GET", "/api/v1/bookings/reviewable?tour=7", s.touristToken, "")
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.False(s.T(), gjson.Get(string(rbytes), "eligible").Bool())

		path := fmt.Sprintf("/api/v1/bookings/%s/status", bookingID)
		w = s.request("PUT", path, s.touristToken, `{"status":"completed"}`)
		assert.Equal(s.T(), 200, w.Code)

		w = s.request("GET", "/api/v1/bookings/reviewable?tour=7", s.touristToken, "")
		rbytes, _ = io.ReadAll(w.Body)
		assert.True(s.T(), gjson.Get(string(rbytes), "eligible").Bool())
	})

	s.Run("refresh replaces the cached view", func() {
		w := s.request("POST", "/api/v1/bookings/refresh", s.touristToken, "")
		assert.Equal(s.T(), 204, w.Code)

		w = s.request("GET", "/api/v1/bookings", s.touristToken, "")
		rbytes, _ := io.ReadAll(w.Body)
		sjson := string(rbytes)
		assert.Equal(s.T(), "completed", gjson.Get(sjson, "outgoing.0.status").String())
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
