package models

import "gorm.io/gorm"

// Gender restrictions a room can carry.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderMixed  = "mixed"
)

// Room is a rental listing published by a landlord.
type Room struct {
	gorm.Model   `json:"-"`
	ID           uint    `json:"id" gorm:"primaryKey"`
	LandlordID   uint    `json:"landlord_id" gorm:"index"`
	Title        string  `json:"title"`
	MonthlyRent  float64 `json:"monthly_rent"`
	RoomType     string  `json:"room_type" gorm:"type:varchar(20)"` // single, shared, studio, apartment
	MaxOccupants int     `json:"max_occupants"`
	// Who the room accepts: male, female or mixed
	GenderPreference string `json:"gender_preference" gorm:"type:varchar(10);index"`
	Address          string `json:"address"`
	City             string `json:"city" gorm:"index"`
	IsAvailable      bool   `json:"is_available" gorm:"default:true"`
	IsApproved       bool   `json:"is_approved" gorm:"default:true"`
}

type CreateRoomRequest struct {
	Title            string  `json:"title" validate:"required,min=3,max=100"`
	MonthlyRent      float64 `json:"monthly_rent" validate:"required,gt=0"`
	RoomType         string  `json:"room_type" validate:"required,oneof=single shared studio apartment"`
	MaxOccupants     int     `json:"max_occupants" validate:"required,min=1,max=10"`
	GenderPreference string  `json:"gender_preference" validate:"required,oneof=male female mixed"`
	Address          string  `json:"address" validate:"required"`
	City             string  `json:"city" validate:"required"`
}

// RoomSummary is the trimmed room shape embedded in matching responses.
type RoomSummary struct {
	ID               uint    `json:"id"`
	Title            string  `json:"title"`
	MonthlyRent      float64 `json:"monthly_rent"`
	GenderPreference string  `json:"gender_preference"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:               r.ID,
		Title:            r.Title,
		MonthlyRent:      r.MonthlyRent,
		GenderPreference: r.GenderPreference,
		Address:          r.Address,
		City:             r.City,
	}
}
