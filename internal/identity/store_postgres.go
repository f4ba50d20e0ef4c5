package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"caseledger/pkg/domain"
	"caseledger/pkg/platform/sentinel"
	txcontext "caseledger/pkg/platform/tx"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, principal domain.Principal) error {
	query := `INSERT INTO registrants (principal, registered_at) VALUES ($1, NOW())`
	_, err := s.execer(ctx).ExecContext(ctx, query, principal.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registrant: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsRegistered(ctx context.Context, principal domain.Principal) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM registrants WHERE principal = $1)`
	var registered bool
	if err := s.execer(ctx).QueryRowContext(ctx, query, principal.String()).Scan(&registered); err != nil {
		return false, fmt.Errorf("query registrant: %w", err)
	}
	return registered, nil
}
