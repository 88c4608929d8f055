package domain

import "time"

const (
	MinSeasonMultiplier = 0.1
	MinSeasonDuration   = 24 * time.Hour
)

type Season struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Active     bool      `json:"active"`
	Multiplier float64   `json:"multiplier"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Overlaps reports whether the closed interval [start, end] intersects the
// season's own window.
func (s Season) Overlaps(start, end time.Time) bool {
	return !s.EndDate.Before(start) && !end.Before(s.StartDate)
}
