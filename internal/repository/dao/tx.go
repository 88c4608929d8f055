package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNoTransaction = errors.New("advisory lock requested outside a transaction")

// Advisory lock namespaces. A lock key is the namespace in the top 16 bits of
// a bigint and the id in the low 48.
const (
	LockSeasons   int32 = 1
	LockGranter   int32 = 2
	LockAttendant int32 = 3
)

type txKey struct{}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

type TxDAO struct {
	db *gorm.DB
}

func NewTxDAO(db *gorm.DB) *TxDAO {
	return &TxDAO{
		db: db,
	}
}

// Transaction runs fn in a database transaction. DAO calls made with the
// context handed to fn use that transaction, and a nested Transaction call
// joins it instead of opening a new one.
func (d *TxDAO) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Lock takes a transaction-scoped advisory lock released at commit or rollback.
func (d *TxDAO) Lock(ctx context.Context, namespace int32, key uint) error {
	if !inTx(ctx) {
		return ErrNoTransaction
	}

	return conn(ctx, d.db).Exec("SELECT pg_advisory_xact_lock(?)", lockKey(namespace, key)).Error
}

// lockKey packs namespace and key into one bigint. Ids beyond 2^48 wrap onto
// smaller ones, which only serializes more than needed.
func lockKey(namespace int32, key uint) int64 {
	return int64(namespace)<<48 | int64(uint64(key)&lockIDMask)
}

const lockIDMask = 1<<48 - 1
