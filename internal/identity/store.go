package identity

import (
	"context"

	"caseledger/pkg/domain"
)

// Store persists registrant state. Stores are interface-driven to keep the
// domain logic testable and to allow swapping in-memory and PostgreSQL
// persistence without rewiring business code.
//
// Registrants are never deleted; there is no unregister path.
type Store interface {
	// Create records a new registrant. Returns sentinel.ErrConflict when the
	// principal is already registered.
	Create(ctx context.Context, principal domain.Principal) error

	// IsRegistered reports whether the principal completed registration.
	IsRegistered(ctx context.Context, principal domain.Principal) (bool, error)
}
