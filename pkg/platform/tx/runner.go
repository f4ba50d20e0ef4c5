package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Runner provides the transactional boundary for mutating operations. Every
// registry mutation runs its guard checks, writes, and audit append inside a
// single RunInTx call so a failure anywhere leaves no partial effects.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Serial serializes all mutations behind one mutex. It pairs with the
// in-memory stores, where guards run before any write and therefore a
// returned error means nothing was mutated.
type Serial struct {
	mu sync.Mutex
}

func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

// SQL wraps mutations in a database transaction carried through context so
// stores pick it up via From.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, dbTx)); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
