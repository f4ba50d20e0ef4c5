package identity

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

// Service handles registrant admission. Registration is idempotent by
// rejection: the second attempt is an error, not a no-op, so callers can tell
// a fresh registration from a replay.
type Service struct {
	store   Store
	audit   *audit.Publisher
	metrics *metrics.Metrics
	tx      tx.Runner
}

func NewService(store Store, auditPublisher *audit.Publisher, m *metrics.Metrics, runner tx.Runner) *Service {
	return &Service{store: store, audit: auditPublisher, metrics: m, tx: runner}
}

// Register admits the caller as a registrant.
func (s *Service) Register(ctx context.Context, caller domain.Principal) error {
	if err := authz.Authenticated(caller).Err(); err != nil {
		return err
	}

	var event audit.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, caller); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "principal already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register principal")
		}
		var err error
		event, err = s.audit.Emit(txCtx, audit.Event{
			Action:    audit.ActionUserRegistered.String(),
			Principal: caller,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.audit.Mirror(event)
	s.metrics.IncrementRegistrations()
	s.metrics.IncrementAuditEvents(audit.ActionUserRegistered.String())
	return nil
}

// IsRegistered reports whether the principal completed registration.
func (s *Service) IsRegistered(ctx context.Context, principal domain.Principal) (bool, error) {
	registered, err := s.store.IsRegistered(ctx, principal)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration")
	}
	return registered, nil
}
