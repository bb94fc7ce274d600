package domain

import "time"

// PeakSeasonRate replaces a room's base price on every day of [StartDate, EndDate].
type PeakSeasonRate struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	RoomID    int64     `json:"room_id" gorm:"index"`
	Price     int64     `json:"price"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsDeleted bool      `json:"-" gorm:"index;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

func (PeakSeasonRate) TableName() string { return "peak_season_rates" }

// RoomNonAvailability blocks a room on every day of [StartDate, EndDate]
// regardless of stock.
type RoomNonAvailability struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	RoomID    int64     `json:"room_id" gorm:"index"`
	Reason    string    `json:"reason"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsDeleted bool      `json:"-" gorm:"index;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

func (RoomNonAvailability) TableName() string { return "room_non_availabilities" }
