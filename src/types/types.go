package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

const (
	DATE_PARSE_FORMAT = "2006-01-02"
	TIME_PARSE_FORMAT = "15:04"
)

type BookingStatus string

const (
	BOOKING_REQUESTED BookingStatus = "requested"
	BOOKING_OFFERED   BookingStatus = "offered"
	BOOKING_ACCEPTED  BookingStatus = "accepted"
	BOOKING_DECLINED  BookingStatus = "declined"
	BOOKING_PAID      BookingStatus = "paid"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BOOKING_REQUESTED, BOOKING_OFFERED, BOOKING_ACCEPTED,
		BOOKING_DECLINED, BOOKING_PAID, BOOKING_COMPLETED, BOOKING_CANCELED:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BOOKING_DECLINED, BOOKING_COMPLETED, BOOKING_CANCELED:
		return true
	}
	return false
}

type Role string

const (
	ROLE_TOURIST Role = "tourist"
	ROLE_GUIDE   Role = "guide"
	// ROLE_SYSTEM is reserved for the auto-completion sweep. It is never
	// minted into a token.
	ROLE_SYSTEM Role = "system"
)

// Actor is the identity a mutation runs under.
type Actor struct {
	ID   uint
	Role Role
}

func (a Actor) Authenticated() bool {
	return a.Role == ROLE_SYSTEM || a.ID != 0
}

type NotificationType string

const (
	NOTIFY_BOOKING_CREATED   NotificationType = "booking_created"
	NOTIFY_BOOKING_ACCEPTED  NotificationType = "booking_accepted"
	NOTIFY_BOOKING_DECLINED  NotificationType = "booking_declined"
	NOTIFY_BOOKING_PAID      NotificationType = "booking_paid"
	NOTIFY_BOOKING_COMPLETED NotificationType = "booking_completed"
	NOTIFY_BOOKING_CANCELED  NotificationType = "booking_cancelled"
	NOTIFY_TOUR_RATED        NotificationType = "tour_rated"
)

type CreateBookingRequestBody struct {
	TourID        uint    `json:"tour" binding:"required"`
	CounterpartID uint    `json:"counterpart" binding:"required"`
	PartySize     uint8   `json:"party_size" binding:"required,min=1"`
	BookingDate   string  `json:"booking_date" binding:"required,bookabledate"`
	PreferredTime *string `json:"preferred_time,omitempty" binding:"omitempty,timeofday"`
	TotalPrice    float32 `json:"total_price" binding:"omitempty,min=0"`
	Notes         string  `json:"notes,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	Status BookingStatus `json:"status" binding:"required"`
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type ReviewableQueryFilters struct {
	Tour  uint `form:"tour,omitempty" binding:"omitempty"`
	Guide uint `form:"guide,omitempty" binding:"omitempty"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type APIResponseBooking struct {
	ID            string     `json:"id,omitempty"`
	TourID        uint       `json:"tour_id,omitempty"`
	TouristID     uint       `json:"tourist_id,omitempty"`
	GuideID       uint       `json:"guide_id,omitempty"`
	Status        string     `json:"status,omitempty"`
	PartySize     uint8      `json:"party_size,omitempty"`
	BookingDate   string     `json:"booking_date,omitempty"`
	PreferredTime *string    `json:"preferred_time,omitempty"`
	TotalPrice    float32    `json:"total_price,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`

	TourTitle    string `json:"tour_title,omitempty"`
	TourLocation string `json:"tour_location,omitempty"`
	PartnerName  string `json:"partner_name,omitempty"`
}
