package models

import "time"

// Room represents a rentable room in the boarding house
type Room struct {
	ID         int64     `json:"id"`
	RoomNumber string    `json:"room_number"`
	CreatedAt  time.Time `json:"created_at"`
}
