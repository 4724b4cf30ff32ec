package models

import (
	"tourbook/src/types"
)

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`

	Bookings []Booking `gorm:"foreignKey:tourist_id" json:"bookings,omitempty"`
	Tours    []Tour    `gorm:"foreignKey:guide_id" json:"tours,omitempty"`

	types.Timestamps
}
