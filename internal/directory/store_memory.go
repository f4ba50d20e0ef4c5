package directory

import (
	"context"
	"sync"

	"caseledger/pkg/domain"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	approved map[domain.Principal]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{approved: make(map[domain.Principal]bool)}
}

func (s *InMemoryStore) SetApproved(_ context.Context, org domain.Principal, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if approved {
		s.approved[org] = true
	} else {
		delete(s.approved, org)
	}
	return nil
}

func (s *InMemoryStore) IsApproved(_ context.Context, org domain.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approved[org], nil
}
