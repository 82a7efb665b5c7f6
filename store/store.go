// Package store is the only code that reads or writes persistent state.
// A Store wraps one gorm handle; inside Transaction the handle is the
// transaction, so every method composes into a single atomic commit.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/luntan/apperror"
)

// Store provides entity and relation persistence on top of gorm.
type Store struct {
	db *gorm.DB
}

// New wraps an initialised gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single database transaction.
// Any error returned by fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping verifies the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func lookupErr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, id)
	}
	return fmt.Errorf("load %s %v: %w", resource, id, err)
}
