package models

import "time"

const (
	BookingStatusBooked    = "booked"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID        ID        `json:"id"`
	ClassID   ID        `json:"class_id"`
	UserID    ID        `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingDetail struct {
	Booking
	Class *Class `json:"class,omitempty"`
}
