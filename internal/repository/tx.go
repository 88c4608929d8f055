package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

type TxDAO interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Lock(ctx context.Context, namespace int32, key uint) error
}

// Transactor scopes repository calls to one database transaction and
// serializes critical sections with advisory locks.
type Transactor struct {
	dao TxDAO
}

func NewTransactor(dao TxDAO) *Transactor {
	return &Transactor{
		dao: dao,
	}
}

func (t *Transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.dao.Transaction(ctx, fn)
}

func (t *Transactor) LockSeasons(ctx context.Context) error {
	if err := t.dao.Lock(ctx, dao.LockSeasons, 0); err != nil {
		return fmt.Errorf("t.dao.Lock(seasons) -> %w", err)
	}
	return nil
}

func (t *Transactor) LockGranter(ctx context.Context, granterID uint) error {
	if err := t.dao.Lock(ctx, dao.LockGranter, granterID); err != nil {
		return fmt.Errorf("t.dao.Lock(granter) -> %w", err)
	}
	return nil
}

func (t *Transactor) LockAttendant(ctx context.Context, attendantID uint) error {
	if err := t.dao.Lock(ctx, dao.LockAttendant, attendantID); err != nil {
		return fmt.Errorf("t.dao.Lock(attendant) -> %w", err)
	}
	return nil
}
