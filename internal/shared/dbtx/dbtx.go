// Package dbtx carries a gorm transaction through context.Context so that
// engine calls made inside another operation share its transaction.
package dbtx

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type txContextKey struct{}

// With stores tx in ctx.
func With(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// From returns the transaction stored in ctx, if any.
func From(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction in ctx or fallback bound to ctx.
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// Run executes fn inside a transaction. When ctx already carries one, fn joins it
// and the outer caller owns commit/rollback.
func Run(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if fn == nil {
		return errors.New("dbtx: transaction function is required")
	}

	if tx, ok := From(ctx); ok {
		return fn(ctx, tx)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(With(ctx, tx), tx)
	})
}
