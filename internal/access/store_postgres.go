package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"caseledger/pkg/domain"
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

func (s *PostgresStore) Set(ctx context.Context, caseID domain.CaseID, principal domain.Principal, granted bool) error {
	query := `
		INSERT INTO access_grants (case_id, principal, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (case_id, principal) DO UPDATE SET granted = EXCLUDED.granted
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, int64(caseID), principal.String(), granted); err != nil {
		return fmt.Errorf("set access grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Granted(ctx context.Context, caseID domain.CaseID, principal domain.Principal) (bool, error) {
	query := `SELECT granted FROM access_grants WHERE case_id = $1 AND principal = $2`
	var granted bool
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(caseID), principal.String()).Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query access grant: %w", err)
	}
	return granted, nil
}
