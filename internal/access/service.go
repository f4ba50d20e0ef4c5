package access

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
)

// CaseOwners answers case existence and ownership lookups. Implemented by the
// registry store.
type CaseOwners interface {
	Owner(ctx context.Context, id domain.CaseID) (domain.Principal, error)
}

// OrgDirectory answers organization approval checks. Implemented by the
// directory service.
type OrgDirectory interface {
	IsApproved(ctx context.Context, org domain.Principal) (bool, error)
}

// Service manages per-case access grants. Grant and revoke are owner-only
// capabilities; approval is checked only at grant time, so grants survive
// later removal of the organization until the owner revokes them.
type Service struct {
	grants  Store
	cases   CaseOwners
	orgs    OrgDirectory
	audit   *audit.Publisher
	metrics *metrics.Metrics
	tx      tx.Runner
	cache   *Cache
}

func NewService(
	grants Store,
	cases CaseOwners,
	orgs OrgDirectory,
	auditPublisher *audit.Publisher,
	m *metrics.Metrics,
	runner tx.Runner,
	cache *Cache,
) *Service {
	return &Service{
		grants:  grants,
		cases:   cases,
		orgs:    orgs,
		audit:   auditPublisher,
		metrics: m,
		tx:      runner,
		cache:   cache,
	}
}

// Grant gives org read/update capability over the case. The organization must
// be approved at the time of the grant; a grant rejected for a not-yet
// approved organization is not retroactively fixed by later approval.
func (s *Service) Grant(ctx context.Context, caller domain.Principal, caseID domain.CaseID, org domain.Principal) error {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return err
	}
	if org.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "organization principal cannot be empty")
	}

	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		owner, err := s.ownerOf(txCtx, caseID)
		if err != nil {
			return err
		}
		if err := authz.CaseOwner(owner, caller).Err(); err != nil {
			return err
		}

		approved, err := s.orgs.IsApproved(txCtx, org)
		if err != nil {
			return err
		}
		if err := authz.OrganizationApproved(approved).Err(); err != nil {
			return err
		}

		if err := s.grants.Set(txCtx, caseID, org, true); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant access")
		}
		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:    audit.ActionAccessGranted.String(),
			Principal: caller,
			CaseID:    caseID,
			Owner:     owner,
			Org:       org,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.audit.Mirror(event)
	s.cache.Invalidate(ctx, caseID, org)
	s.metrics.IncrementGrantChanges("grant")
	s.metrics.IncrementAuditEvents(audit.ActionAccessGranted.String())
	return nil
}

// Revoke clears org's grant on the case. Revoking an absent grant succeeds
// and is a no-op apart from the audit event.
func (s *Service) Revoke(ctx context.Context, caller domain.Principal, caseID domain.CaseID, org domain.Principal) error {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return err
	}
	if org.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "organization principal cannot be empty")
	}

	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		owner, err := s.ownerOf(txCtx, caseID)
		if err != nil {
			return err
		}
		if err := authz.CaseOwner(owner, caller).Err(); err != nil {
			return err
		}

		if err := s.grants.Set(txCtx, caseID, org, false); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke access")
		}
		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:    audit.ActionAccessRevoked.String(),
			Principal: caller,
			CaseID:    caseID,
			Owner:     owner,
			Org:       org,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.audit.Mirror(event)
	s.cache.Invalidate(ctx, caseID, org)
	s.metrics.IncrementGrantChanges("revoke")
	s.metrics.IncrementAuditEvents(audit.ActionAccessRevoked.String())
	return nil
}

// HasAccess reports whether viewer may read the case: true for the owner,
// otherwise the stored grant flag. Any authenticated principal may query it.
func (s *Service) HasAccess(ctx context.Context, caseID domain.CaseID, viewer domain.Principal) (bool, error) {
	if allowed, hit := s.cache.Get(ctx, caseID, viewer); hit {
		return allowed, nil
	}

	owner, err := s.ownerOf(ctx, caseID)
	if err != nil {
		return false, err
	}
	if viewer == owner {
		s.cache.Set(ctx, caseID, viewer, true)
		return true, nil
	}

	granted, err := s.grants.Granted(ctx, caseID, viewer)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access")
	}
	s.cache.Set(ctx, caseID, viewer, granted)
	return granted, nil
}

func (s *Service) ownerOf(ctx context.Context, caseID domain.CaseID) (domain.Principal, error) {
	owner, err := s.cases.Owner(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return owner, nil
}
