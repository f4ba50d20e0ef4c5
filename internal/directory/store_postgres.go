package directory

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

func (s *PostgresStore) SetApproved(ctx context.Context, org domain.Principal, approved bool) error {
	query := `
		INSERT INTO organizations (principal, approved)
		VALUES ($1, $2)
		ON CONFLICT (principal) DO UPDATE SET approved = EXCLUDED.approved
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, org.String(), approved); err != nil {
		return fmt.Errorf("set organization approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsApproved(ctx context.Context, org domain.Principal) (bool, error) {
	query := `SELECT approved FROM organizations WHERE principal = $1`
	var approved bool
	err := s.execer(ctx).QueryRowContext(ctx, query, org.String()).Scan(&approved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query organization approval: %w", err)
	}
	return approved, nil
}
