package directory

import (
	"context"

	"caseledger/pkg/domain"
)

// Store persists the admin-curated organization allow-list.
type Store interface {
	// SetApproved sets or clears the approval flag. Both directions are
	// idempotent; writing the current value succeeds silently.
	SetApproved(ctx context.Context, org domain.Principal, approved bool) error

	// IsApproved reports whether the organization currently holds approval.
	// Unknown principals are simply not approved.
	IsApproved(ctx context.Context, org domain.Principal) (bool, error)
}
