package domain

import "time"

// Attendant is owned by the HR records module; this service only reads it.
type Attendant struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Evaluation is a customer rating of an attendant, 1 to 5 stars.
type Evaluation struct {
	ID          uint      `json:"id"`
	AttendantID uint      `json:"attendant_id"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}
