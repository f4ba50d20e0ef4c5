package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"caseledger/internal/audit"
	"caseledger/pkg/domain"
	txcontext "caseledger/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL. Appends join the caller's
// transaction when one is carried in context, so an event is only durable if
// the mutation it describes committed.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, ts, action, principal, case_id, owner, org,
			evidence_ref, old_status, new_status, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var caseID *int64
	if !event.CaseID.IsNil() {
		v := int64(event.CaseID)
		caseID = &v
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Principal.String(),
		caseID,
		event.Owner.String(),
		event.Org.String(),
		event.EvidenceRef,
		event.OldStatus.String(),
		event.NewStatus.String(),
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPrincipal(ctx context.Context, principal domain.Principal) ([]audit.Event, error) {
	query := `
		SELECT id, category, ts, action, principal, case_id, owner, org,
		       evidence_ref, old_status, new_status, request_id
		FROM audit_events
		WHERE principal = $1
		ORDER BY ts ASC
	`
	rows, err := s.db.QueryContext(ctx, query, principal.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, ts, action, principal, case_id, owner, org,
		       evidence_ref, old_status, new_status, request_id
		FROM audit_events
		ORDER BY ts DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e         audit.Event
			category  string
			principal string
			caseID    sql.NullInt64
			owner     string
			org       string
			oldStatus string
			newStatus string
		)
		if err := rows.Scan(
			&e.ID, &category, &e.Timestamp, &e.Action, &principal, &caseID,
			&owner, &org, &e.EvidenceRef, &oldStatus, &newStatus, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.Principal = domain.Principal(principal)
		if caseID.Valid {
			e.CaseID = domain.CaseID(caseID.Int64)
		}
		e.Owner = domain.Principal(owner)
		e.Org = domain.Principal(org)
		e.OldStatus = domain.CaseStatus(oldStatus)
		e.NewStatus = domain.CaseStatus(newStatus)
		events = append(events, e)
	}
	return events, rows.Err()
}
