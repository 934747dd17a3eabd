package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner runs a function inside one database transaction. Services use it
// as the unit-of-work boundary for borrow/return: either every row change in
// fn commits, or none of them do.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
