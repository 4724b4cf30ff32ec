package models

import (
	"tourbook/src/types"
)

type Tour struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	GuideID     uint    `json:"guide_id,omitempty"`
	Title       string  `json:"title,omitempty"`
	Location    string  `json:"location,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float32 `json:"price,omitempty"`

	Guide    *User     `gorm:"foreignKey:guide_id" json:"guide,omitempty"`
	Bookings []Booking `gorm:"foreignKey:tour_id" json:"bookings,omitempty"`

	types.Timestamps
}
