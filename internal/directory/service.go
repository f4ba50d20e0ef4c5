package directory

import (
	"context"

	"caseledger/internal/audit"
	"caseledger/internal/authz"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/platform/tx"
)

// Service curates the organization allow-list. Both operations are restricted
// to the admin principal, which is fixed at initialization; there is no
// transfer-of-admin operation.
//
// Removing an organization does not cascade into already issued per-case
// access grants. Those stay valid until the case owner revokes them. Known
// policy gap, kept deliberately.
type Service struct {
	store Store
	admin domain.Principal
	audit *audit.Publisher
	tx    tx.Runner
}

func NewService(store Store, admin domain.Principal, auditPublisher *audit.Publisher, runner tx.Runner) *Service {
	return &Service{store: store, admin: admin, audit: auditPublisher, tx: runner}
}

// Approve marks org as eligible to receive case-access grants and to perform
// status updates. Approving an already-approved organization succeeds
// silently.
func (s *Service) Approve(ctx context.Context, caller, org domain.Principal) error {
	return s.setApproval(ctx, caller, org, true, audit.ActionOrganizationApproved)
}

// Remove clears org's approval. Removing an unknown or already-removed
// organization succeeds silently.
func (s *Service) Remove(ctx context.Context, caller, org domain.Principal) error {
	return s.setApproval(ctx, caller, org, false, audit.ActionOrganizationRemoved)
}

func (s *Service) setApproval(ctx context.Context, caller, org domain.Principal, approved bool, action audit.Action) error {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return err
	}
	if err := authz.Admin(s.admin, caller).Err(); err != nil {
		return err
	}
	if org.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "organization principal cannot be empty")
	}

	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.SetApproved(txCtx, org, approved); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization approval")
		}
		var err error
		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:    action.String(),
			Principal: caller,
			Org:       org,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.audit.Mirror(event)
	return nil
}

// IsApproved reports whether org currently holds approval.
func (s *Service) IsApproved(ctx context.Context, org domain.Principal) (bool, error) {
	approved, err := s.store.IsApproved(ctx, org)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check organization approval")
	}
	return approved, nil
}
