package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"caseledger/internal/audit"
	auditmem "caseledger/internal/audit/store/memory"
	"caseledger/internal/directory"
	"caseledger/internal/registry"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/platform/tx"
)

// =============================================================================
// Access Service Test Suite
// =============================================================================
// Grant/revoke are owner-only and approval is checked at grant time only.
// Those temporal rules are the point of this suite.

type AccessServiceSuite struct {
	suite.Suite
	grants     *InMemoryStore
	cases      *registry.InMemoryStore
	orgs       *directory.InMemoryStore
	auditStore *auditmem.InMemoryStore
	service    *Service
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceSuite))
}

func (s *AccessServiceSuite) SetupTest() {
	s.grants = NewInMemoryStore()
	s.cases = registry.NewInMemoryStore()
	s.orgs = directory.NewInMemoryStore()
	s.auditStore = auditmem.NewInMemoryStore()
	s.service = NewService(
		s.grants,
		s.cases,
		s.orgs,
		audit.NewPublisher(s.auditStore),
		nil,
		tx.NewSerial(),
		nil,
	)

	ctx := context.Background()
	_, err := s.cases.Create(ctx, registry.Case{Owner: "alice", EvidenceRef: "bafy123", Status: domain.CaseStatusCreated})
	s.Require().NoError(err)
	s.Require().NoError(s.orgs.SetApproved(ctx, "org-b", true))
}

func (s *AccessServiceSuite) TestGrant() {
	ctx := context.Background()

	s.Run("missing case reports not found", func() {
		err := s.service.Grant(ctx, "alice", 99, "org-b")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-owner cannot grant, even to an approved organization", func() {
		err := s.service.Grant(ctx, "org-b", 1, "org-b")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Empty(s.auditStore.All())
	})

	s.Run("granting to an unapproved organization is rejected", func() {
		err := s.service.Grant(ctx, "alice", 1, "org-c")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		granted, err := s.grants.Granted(ctx, 1, "org-c")
		s.Require().NoError(err)
		s.False(granted)
	})

	s.Run("later approval does not resurrect the rejected grant", func() {
		s.Require().NoError(s.orgs.SetApproved(ctx, "org-c", true))

		has, err := s.service.HasAccess(ctx, 1, "org-c")
		s.Require().NoError(err)
		s.False(has)
	})

	s.Run("owner grants to an approved organization", func() {
		s.Require().NoError(s.service.Grant(ctx, "alice", 1, "org-b"))

		has, err := s.service.HasAccess(ctx, 1, "org-b")
		s.Require().NoError(err)
		s.True(has)

		events := s.auditStore.All()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionAccessGranted.String(), last.Action)
		s.Equal(domain.Principal("org-b"), last.Org)
		s.Equal(domain.Principal("alice"), last.Owner)
	})
}

func (s *AccessServiceSuite) TestGrantSurvivesOrganizationRemoval() {
	ctx := context.Background()
	s.Require().NoError(s.service.Grant(ctx, "alice", 1, "org-b"))

	// Removal from the directory does not cascade into issued grants; only
	// the owner's revoke clears them.
	s.Require().NoError(s.orgs.SetApproved(ctx, "org-b", false))

	has, err := s.service.HasAccess(ctx, 1, "org-b")
	s.Require().NoError(err)
	s.True(has)
}

func (s *AccessServiceSuite) TestRevoke() {
	ctx := context.Background()

	s.Run("non-owner cannot revoke", func() {
		err := s.service.Revoke(ctx, "org-b", 1, "org-b")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("revoking an absent grant succeeds and still audits", func() {
		s.Require().NoError(s.service.Revoke(ctx, "alice", 1, "org-b"))

		events := s.auditStore.All()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionAccessRevoked.String(), events[0].Action)
	})

	s.Run("revoke clears an existing grant", func() {
		s.Require().NoError(s.service.Grant(ctx, "alice", 1, "org-b"))
		s.Require().NoError(s.service.Revoke(ctx, "alice", 1, "org-b"))

		has, err := s.service.HasAccess(ctx, 1, "org-b")
		s.Require().NoError(err)
		s.False(has)
	})
}

func (s *AccessServiceSuite) TestHasAccess() {
	ctx := context.Background()

	s.Run("owner always has access", func() {
		has, err := s.service.HasAccess(ctx, 1, "alice")
		s.Require().NoError(err)
		s.True(has)
	})

	s.Run("stranger has no access", func() {
		has, err := s.service.HasAccess(ctx, 1, "stranger")
		s.Require().NoError(err)
		s.False(has)
	})

	s.Run("missing case reports not found", func() {
		_, err := s.service.HasAccess(ctx, 99, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
