package domain

import (
	"errors"
	"fmt"
)

// Kinds of failure a caller can act on. Concrete error values wrap one of them
// so handlers can match with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrLimitExceeded  = errors.New("limit exceeded")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNoActiveSeason = errors.New("no active season")
	ErrStorage        = errors.New("storage unavailable")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Limit rules reported by the grant engine.
const (
	RulePointsBounds   = "points_bounds"
	RuleDailyPoints    = "daily_points"
	RuleDailyGrants    = "daily_grants"
	RuleAttendantDaily = "attendant_daily_grants"
	RuleCooldown       = "cooldown"
	RuleWeekend        = "weekend"
	RuleHoliday        = "holiday"
)

type LimitExceededError struct {
	Rule    string
	Limit   int
	Current int
	Message string
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit %s exceeded: %s", e.Rule, e.Message)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

type NotFoundError struct {
	Entity string
	ID     any
}

func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

const (
	ConflictOverlappingPeriod = "overlapping_period"
	ConflictSeasonHasEvents   = "season_has_events"
	ConflictSeasonActive      = "season_active"
	ConflictDuplicate         = "duplicate"
	ConflictAlreadyRecorded   = "already_recorded"
)

type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StorageError hides a persistence failure behind a retryable error. Nothing
// was committed when it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }
