package models

import (
	"tourbook/src/types"

	"github.com/google/uuid"
)

type Booking struct {
	ID            uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	TourID        uint                `json:"tour_id,omitempty"`
	TouristID     uint                `json:"tourist_id,omitempty"`
	GuideID       uint                `json:"guide_id,omitempty"`
	Status        types.BookingStatus `gorm:"default:'requested'" json:"status,omitempty"`
	PartySize     uint8               `json:"party_size,omitempty"`
	BookingDate   string              `json:"booking_date,omitempty"`
	PreferredTime *string             `json:"preferred_time,omitempty"`
	TotalPrice    float32             `json:"total_price,omitempty"`
	Notes         string              `json:"notes,omitempty"`

	Tour    *Tour `gorm:"foreignKey:tour_id" json:"tour,omitempty"`
	Tourist *User `gorm:"foreignKey:tourist_id" json:"tourist,omitempty"`
	Guide   *User `gorm:"foreignKey:guide_id" json:"guide,omitempty"`

	types.Timestamps
}

// Counterpart returns the party opposite to actorId on the booking.
func (b *Booking) Counterpart(actorId uint) uint {
	if actorId == b.TouristID {
		return b.GuideID
	}
	return b.TouristID
}

func (b *Booking) OwnedBy(actorId uint) bool {
	return actorId == b.TouristID || actorId == b.GuideID
}
