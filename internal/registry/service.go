package registry

import (
	"context"
	"errors"

	"caseledger/internal/audit"
	"caseledger/internal/authz"
	"caseledger/internal/platform/metrics"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/platform/sentinel"
	"caseledger/pkg/platform/tx"
	"caseledger/pkg/requestcontext"
)

// RegistrantDirectory answers registration checks. Implemented by the
// identity service.
type RegistrantDirectory interface {
	IsRegistered(ctx context.Context, principal domain.Principal) (bool, error)
}

// OrgDirectory answers organization approval checks. Implemented by the
// directory service.
type OrgDirectory interface {
	IsApproved(ctx context.Context, org domain.Principal) (bool, error)
}

// AccessChecker answers per-case grant lookups. Implemented by the access
// store.
type AccessChecker interface {
	Granted(ctx context.Context, caseID domain.CaseID, principal domain.Principal) (bool, error)
}

// Service owns the case lifecycle: creation, status transitions, and reads.
// All guard checks run before any write; a failed precondition is a clean
// no-op with no audit emission.
type Service struct {
	cases       Store
	registrants RegistrantDirectory
	orgs        OrgDirectory
	grants      AccessChecker
	audit       *audit.Publisher
	metrics     *metrics.Metrics
	tx          tx.Runner
}

func NewService(
	cases Store,
	registrants RegistrantDirectory,
	orgs OrgDirectory,
	grants AccessChecker,
	auditPublisher *audit.Publisher,
	m *metrics.Metrics,
	runner tx.Runner,
) *Service {
	return &Service{
		cases:       cases,
		registrants: registrants,
		orgs:        orgs,
		grants:      grants,
		audit:       auditPublisher,
		metrics:     m,
		tx:          runner,
	}
}

// CreateCase records a new case owned by the caller. This is the only
// creation path; cases cannot be created on behalf of another principal.
func (s *Service) CreateCase(ctx context.Context, caller domain.Principal, evidenceRef string) (Case, error) {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return Case{}, err
	}
	if evidenceRef == "" {
		return Case{}, dErrors.New(dErrors.CodeInvalidInput, "evidence reference cannot be empty")
	}

	var created Case
	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		registered, err := s.registrants.IsRegistered(txCtx, caller)
		if err != nil {
			return err
		}
		if err := authz.Registered(registered).Err(); err != nil {
			return err
		}

		c := Case{
			Owner:       caller,
			EvidenceRef: evidenceRef,
			Status:      domain.CaseStatusCreated,
			CreatedAt:   requestcontext.Now(txCtx),
		}
		id, err := s.cases.Create(txCtx, c)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
		}
		c.ID = id
		created = c

		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:      audit.ActionCaseCreated.String(),
			Principal:   caller,
			CaseID:      c.ID,
			Owner:       c.Owner,
			EvidenceRef: c.EvidenceRef,
			Timestamp:   c.CreatedAt,
		})
		return err
	})
	if err != nil {
		return Case{}, err
	}

	s.audit.Mirror(event)
	s.metrics.IncrementCasesCreated()
	s.metrics.IncrementAuditEvents(audit.ActionCaseCreated.String())
	return created, nil
}

// UpdateStatus replaces the case status. The caller must be an approved
// organization and either own the case or hold an access grant. The old
// status is carried in the audit event for replay.
//
// There is no forward-only ordering on statuses: any value may follow any
// other. Callers wanting stricter sequencing enforce it themselves.
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Principal, caseID domain.CaseID, newStatus domain.CaseStatus) (Case, error) {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return Case{}, err
	}
	if !newStatus.IsValid() {
		return Case{}, dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}

	var updated Case
	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.getExisting(txCtx, caseID)
		if err != nil {
			return err
		}

		approved, err := s.orgs.IsApproved(txCtx, caller)
		if err != nil {
			return err
		}
		if err := authz.ApprovedOrganization(approved).Err(); err != nil {
			return err
		}

		granted, err := s.grants.Granted(txCtx, caseID, caller)
		if err != nil {
			return err
		}
		if err := authz.CaseViewer(c.Owner, caller, granted).Err(); err != nil {
			return err
		}

		oldStatus := c.Status
		if err := s.cases.UpdateStatus(txCtx, caseID, newStatus); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update case status")
		}
		c.Status = newStatus
		updated = c

		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:    audit.ActionCaseStatusUpdated.String(),
			Principal: caller,
			CaseID:    caseID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		})
		return err
	})
	if err != nil {
		return Case{}, err
	}

	s.audit.Mirror(event)
	s.metrics.IncrementStatusUpdates()
	s.metrics.IncrementAuditEvents(audit.ActionCaseStatusUpdated.String())
	return updated, nil
}

// GetCase returns the full record for the owner or a grant holder.
func (s *Service) GetCase(ctx context.Context, caller domain.Principal, caseID domain.CaseID) (Case, error) {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return Case{}, err
	}

	c, err := s.getExisting(ctx, caseID)
	if err != nil {
		return Case{}, err
	}

	granted, err := s.grants.Granted(ctx, caseID, caller)
	if err != nil {
		return Case{}, err
	}
	if err := authz.CaseViewer(c.Owner, caller, granted).Err(); err != nil {
		return Case{}, err
	}
	return c, nil
}

// ListOwned returns the caller's case IDs in creation order. Unregistered
// callers get an error, never an empty-but-valid result.
func (s *Service) ListOwned(ctx context.Context, caller domain.Principal) ([]domain.CaseID, error) {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return nil, err
	}

	registered, err := s.registrants.IsRegistered(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := authz.Registered(registered).Err(); err != nil {
		return nil, err
	}

	ids, err := s.cases.ListOwnedIDs(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	return ids, nil
}

func (s *Service) getExisting(ctx context.Context, caseID domain.CaseID) (Case, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Case{}, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}
