package registry

import (
	"context"

	"caseledger/pkg/domain"
)

// Store persists case records and owns ID allocation.
//
// IDs are sequential starting at 1 with no gaps and no reuse: allocation
// happens only when a create actually commits, so failed attempts never
// consume an ID. CaseID 0 is never assigned.
type Store interface {
	// Create persists a new case, allocating its ID and recording ownership.
	Create(ctx context.Context, c Case) (domain.CaseID, error)

	// Get returns the case by ID. Returns sentinel.ErrNotFound for IDs that
	// were never assigned.
	Get(ctx context.Context, id domain.CaseID) (Case, error)

	// UpdateStatus replaces the case status. Returns sentinel.ErrNotFound
	// when the case does not exist.
	UpdateStatus(ctx context.Context, id domain.CaseID, status domain.CaseStatus) error

	// ListOwnedIDs returns the owner's case IDs in creation order; possibly
	// empty, never an error for unknown owners.
	ListOwnedIDs(ctx context.Context, owner domain.Principal) ([]domain.CaseID, error)

	// Owner returns the case owner, or sentinel.ErrNotFound.
	Owner(ctx context.Context, id domain.CaseID) (domain.Principal, error)
}
