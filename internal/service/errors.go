package service

import (
	"errors"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository"
)

var (
	ErrSeasonNotFound      = repository.ErrSeasonNotFound
	ErrXpEventNotFound     = repository.ErrXpEventNotFound
	ErrXpTypeNotFound      = repository.ErrXpTypeNotFound
	ErrXpTypeNameExists    = repository.ErrXpTypeNameExists
	ErrAchievementNotFound = repository.ErrAchievementNotFound
	ErrAttendantNotFound   = repository.ErrAttendantNotFound
	ErrEvaluationNotFound  = repository.ErrEvaluationNotFound
)

var domainKinds = []error{
	domain.ErrValidation,
	domain.ErrLimitExceeded,
	domain.ErrNotFound,
	domain.ErrConflict,
	domain.ErrNoActiveSeason,
	domain.ErrStorage,
}

// storageError passes typed domain errors through and hides anything else
// behind a StorageError tagged with op.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainKinds {
		if errors.Is(err, kind) {
			return err
		}
	}

	return &domain.StorageError{Op: op, Err: err}
}

// notFound turns the repository sentinel into a NotFoundError for entity and
// falls back to storageError otherwise.
func notFound(op string, err, sentinel error, entity string, id any) error {
	if errors.Is(err, sentinel) {
		return domain.NewNotFoundError(entity, id)
	}

	return storageError(op, err)
}
