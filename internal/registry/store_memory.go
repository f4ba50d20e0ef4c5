package registry

import (
	"context"
	"sync"

	"caseledger/pkg/domain"
	"caseledger/pkg/platform/sentinel"
)

// InMemoryStore keeps cases in process memory. The counter increments only on
// successful creates, matching the no-gap allocation contract.
type InMemoryStore struct {
	mu      sync.RWMutex
	counter uint64
	cases   map[domain.CaseID]Case
	byOwner map[domain.Principal][]domain.CaseID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases:   make(map[domain.CaseID]Case),
		byOwner: make(map[domain.Principal][]domain.CaseID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c Case) (domain.CaseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	c.ID = domain.CaseID(s.counter)
	s.cases[c.ID] = c
	s.byOwner[c.Owner] = append(s.byOwner[c.Owner], c.ID)
	return c.ID, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.CaseID) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cases[id]; ok {
		return c, nil
	}
	return Case{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.CaseID, status domain.CaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Status = status
	s.cases[id] = c
	return nil
}

func (s *InMemoryStore) ListOwnedIDs(_ context.Context, owner domain.Principal) ([]domain.CaseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CaseID{}, s.byOwner[owner]...), nil
}

func (s *InMemoryStore) Owner(_ context.Context, id domain.CaseID) (domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cases[id]; ok {
		return c.Owner, nil
	}
	return "", sentinel.ErrNotFound
}
