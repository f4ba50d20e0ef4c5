package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"caseledger/pkg/domain"
	"caseledger/pkg/platform/sentinel"
	txcontext "caseledger/pkg/platform/tx"
)

// PostgresStore implements Store on PostgreSQL. ID allocation uses
// MAX(id)+1 inside the caller's transaction rather than a sequence: sequences
// leave gaps on rollback, and the allocation contract forbids gaps. Concurrent
// creates serialize on a transaction-scoped advisory lock so the read-then-
// insert never races; the lock is released at commit or rollback.
type PostgresStore struct {
	db *sql.DB
}

// caseIDLockKey identifies the advisory lock guarding MAX(id)+1 allocation.
const caseIDLockKey = 7201

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, c Case) (domain.CaseID, error) {
	if _, err := s.execer(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, caseIDLockKey); err != nil {
		return 0, fmt.Errorf("acquire case id lock: %w", err)
	}

	query := `
		INSERT INTO cases (id, owner, evidence_ref, status, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4 FROM cases
		RETURNING id
	`
	var id int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		c.Owner.String(), c.EvidenceRef, c.Status.String(), c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert case: %w", err)
	}
	return domain.CaseID(id), nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.CaseID) (Case, error) {
	query := `SELECT id, owner, evidence_ref, status, created_at FROM cases WHERE id = $1`
	var (
		c      Case
		caseID int64
		owner  string
		status string
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(id)).Scan(
		&caseID, &owner, &c.EvidenceRef, &status, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("query case: %w", err)
	}
	c.ID = domain.CaseID(caseID)
	c.Owner = domain.Principal(owner)
	c.Status = domain.CaseStatus(status)
	return c, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.CaseID, status domain.CaseStatus) error {
	query := `UPDATE cases SET status = $2 WHERE id = $1`
	res, err := s.execer(ctx).ExecContext(ctx, query, int64(id), status.String())
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListOwnedIDs(ctx context.Context, owner domain.Principal) ([]domain.CaseID, error) {
	query := `SELECT id FROM cases WHERE owner = $1 ORDER BY id ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list owned cases: %w", err)
	}
	defer rows.Close()

	var ids []domain.CaseID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan case id: %w", err)
		}
		ids = append(ids, domain.CaseID(id))
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Owner(ctx context.Context, id domain.CaseID) (domain.Principal, error) {
	query := `SELECT owner FROM cases WHERE id = $1`
	var owner string
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(id)).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query case owner: %w", err)
	}
	return domain.Principal(owner), nil
}
