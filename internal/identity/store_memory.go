package identity

import (
	"context"
	"sync"

	"caseledger/pkg/domain"
	"caseledger/pkg/platform/sentinel"
)

// InMemoryStore keeps registrants in process memory. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu          sync.RWMutex
	registrants map[domain.Principal]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{registrants: make(map[domain.Principal]bool)}
}

func (s *InMemoryStore) Create(_ context.Context, principal domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registrants[principal] {
		return sentinel.ErrConflict
	}
	s.registrants[principal] = true
	return nil
}

func (s *InMemoryStore) IsRegistered(_ context.Context, principal domain.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registrants[principal], nil
}
