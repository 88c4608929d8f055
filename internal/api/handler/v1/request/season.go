package request

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type SeasonRequest struct {
	Name       string  `json:"name"`
	StartDate  string  `json:"start_date" format:"YYYY-MM-DD"`
	EndDate    string  `json:"end_date" format:"YYYY-MM-DD"`
	Multiplier float64 `json:"multiplier"`
}

func (req *SeasonRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.StartDate, validation.Required, validation.Date(time.DateOnly)),
		validation.Field(&req.EndDate, validation.Required, validation.Date(time.DateOnly)),
		validation.Field(&req.Multiplier, validation.Required),
	)
}

// Period parses the dates. StartDate is the first instant of its day and
// EndDate the last, both in the server's zone.
func (req *SeasonRequest) Period() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, req.StartDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, req.EndDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}

	return start, end.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

type MultiplierRequest struct {
	Multiplier float64 `json:"multiplier"`
}

func (req *MultiplierRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Multiplier, validation.Required),
	)
}

// ActiveRequest toggles the active flag of a configuration entry.
type ActiveRequest struct {
	Active *bool `json:"active"`
}

func (req *ActiveRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Active, validation.NotNil),
	)
}
