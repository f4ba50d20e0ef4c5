package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"caseledger/internal/audit"
	auditmem "caseledger/internal/audit/store/memory"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/platform/tx"
)

type IdentityServiceSuite struct {
	suite.Suite
	auditStore *auditmem.InMemoryStore
	service    *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.auditStore = auditmem.NewInMemoryStore()
	s.service = NewService(NewInMemoryStore(), audit.NewPublisher(s.auditStore), nil, tx.NewSerial())
}

func (s *IdentityServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("unauthenticated caller is rejected", func() {
		err := s.service.Register(ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Empty(s.auditStore.All())
	})

	s.Run("first registration succeeds and emits one event", func() {
		s.Require().NoError(s.service.Register(ctx, "alice"))

		registered, err := s.service.IsRegistered(ctx, "alice")
		s.Require().NoError(err)
		s.True(registered)

		events := s.auditStore.All()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionUserRegistered.String(), events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("second registration conflicts and emits nothing", func() {
		err := s.service.Register(ctx, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.auditStore.All(), 1)
	})
}

func (s *IdentityServiceSuite) TestIsRegistered() {
	ctx := context.Background()

	registered, err := s.service.IsRegistered(ctx, "nobody")
	s.Require().NoError(err)
	s.False(registered)
}
