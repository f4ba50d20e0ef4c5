package access

import (
	"context"
	"sync"

	"caseledger/pkg/domain"
)

type grantKey struct {
	caseID    domain.CaseID
	principal domain.Principal
}

type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[grantKey]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[grantKey]bool)}
}

func (s *InMemoryStore) Set(_ context.Context, caseID domain.CaseID, principal domain.Principal, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := grantKey{caseID: caseID, principal: principal}
	if granted {
		s.grants[key] = true
	} else {
		delete(s.grants, key)
	}
	return nil
}

func (s *InMemoryStore) Granted(_ context.Context, caseID domain.CaseID, principal domain.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[grantKey{caseID: caseID, principal: principal}], nil
}
