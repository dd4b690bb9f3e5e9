package model

import "time"

// Booking is the durable record of a created calendar event.
type Booking struct {
	ID              string    `db:"id" json:"id"`
	SessionID       string    `db:"session_id" json:"sessionId"`
	EventID         string    `db:"event_id" json:"eventId"`
	Title           string    `db:"title" json:"title"`
	StartTime       time.Time `db:"start_time" json:"startTime"`
	EndTime         time.Time `db:"end_time" json:"endTime"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

type CreateBookingParams struct {
	SessionID       string
	EventID         string
	Title           string
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
}
