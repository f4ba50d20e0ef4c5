package access

import (
	"context"

	"caseledger/pkg/domain"
)

// Store persists the per-case access relation. The owner is implicitly always
// authorized and is never represented here; only third-party grants are
// stored.
type Store interface {
	// Set writes the grant flag for (caseID, principal). Clearing an absent
	// grant succeeds silently.
	Set(ctx context.Context, caseID domain.CaseID, principal domain.Principal, granted bool) error

	// Granted returns the stored grant flag; false for unknown pairs.
	Granted(ctx context.Context, caseID domain.CaseID, principal domain.Principal) (bool, error)
}
