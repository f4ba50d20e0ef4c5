package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"caseledger/internal/access"
	"caseledger/internal/audit"
	auditmem "caseledger/internal/audit/store/memory"
	"caseledger/internal/directory"
	"caseledger/internal/identity"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/platform/tx"
)

// =============================================================================
// Registry Service Test Suite
// =============================================================================
// Justification for unit tests: ID allocation, the guard ordering on status
// updates, and audit emission on the success path only are easier to pin down
// here than through full HTTP round trips.

type RegistryServiceSuite struct {
	suite.Suite
	cases       *InMemoryStore
	registrants *identity.InMemoryStore
	orgs        *directory.InMemoryStore
	grants      *access.InMemoryStore
	auditStore  *auditmem.InMemoryStore
	service     *Service
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.cases = NewInMemoryStore()
	s.registrants = identity.NewInMemoryStore()
	s.orgs = directory.NewInMemoryStore()
	s.grants = access.NewInMemoryStore()
	s.auditStore = auditmem.NewInMemoryStore()
	s.service = NewService(
		s.cases,
		s.registrants,
		s.orgs,
		s.grants,
		audit.NewPublisher(s.auditStore),
		nil,
		tx.NewSerial(),
	)
}

func (s *RegistryServiceSuite) register(p domain.Principal) {
	s.Require().NoError(s.registrants.Create(context.Background(), p))
}

func (s *RegistryServiceSuite) createCase(owner domain.Principal, ref string) Case {
	c, err := s.service.CreateCase(context.Background(), owner, ref)
	s.Require().NoError(err)
	return c
}

// =============================================================================
// CreateCase Tests
// =============================================================================

func (s *RegistryServiceSuite) TestCreateCase() {
	ctx := context.Background()

	s.Run("unauthenticated caller is rejected", func() {
		_, err := s.service.CreateCase(ctx, "", "bafy123")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("empty evidence reference is rejected", func() {
		s.register("alice")
		_, err := s.service.CreateCase(ctx, "alice", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Empty(s.auditStore.All())
	})

	s.Run("unregistered caller is rejected without audit", func() {
		_, err := s.service.CreateCase(ctx, "ghost", "bafy123")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Empty(s.auditStore.All())
	})

	s.Run("registered caller creates a case with status created", func() {
		c := s.createCase("alice", "bafy123")
		s.Equal(domain.CaseID(1), c.ID)
		s.Equal(domain.Principal("alice"), c.Owner)
		s.Equal("bafy123", c.EvidenceRef)
		s.Equal(domain.CaseStatusCreated, c.Status)

		events := s.auditStore.All()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionCaseCreated.String(), events[0].Action)
		s.Equal(domain.CaseID(1), events[0].CaseID)
		s.Equal("bafy123", events[0].EvidenceRef)
	})
}

func (s *RegistryServiceSuite) TestCaseIDsAreSequentialWithoutGaps() {
	s.register("alice")
	s.register("bob")

	s.Equal(domain.CaseID(1), s.createCase("alice", "ref-1").ID)
	s.Equal(domain.CaseID(2), s.createCase("bob", "ref-2").ID)

	// A rejected creation must not consume an ID.
	_, err := s.service.CreateCase(context.Background(), "ghost", "ref-3")
	s.Require().Error(err)

	s.Equal(domain.CaseID(3), s.createCase("alice", "ref-4").ID)
}

// =============================================================================
// UpdateStatus Tests
// =============================================================================

func (s *RegistryServiceSuite) TestUpdateStatus() {
	ctx := context.Background()
	s.register("alice")
	s.createCase("alice", "bafy123")
	s.auditStore.Clear()

	s.Run("invalid status is rejected", func() {
		_, err := s.service.UpdateStatus(ctx, "alice", 1, domain.CaseStatus("escalated"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing case reports not found before any role check", func() {
		_, err := s.service.UpdateStatus(ctx, "stranger", 99, domain.CaseStatusClosed)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("owner without organization approval is rejected", func() {
		_, err := s.service.UpdateStatus(ctx, "alice", 1, domain.CaseStatusUnderReview)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("approved organization without grant or ownership is rejected", func() {
		s.Require().NoError(s.orgs.SetApproved(ctx, "org-b", true))
		_, err := s.service.UpdateStatus(ctx, "org-b", 1, domain.CaseStatusUnderReview)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("approved owner updates and audit carries both statuses", func() {
		s.Require().NoError(s.orgs.SetApproved(ctx, "alice", true))
		c, err := s.service.UpdateStatus(ctx, "alice", 1, domain.CaseStatusUnderReview)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusUnderReview, c.Status)

		events := s.auditStore.All()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionCaseStatusUpdated.String(), last.Action)
		s.Equal(domain.CaseStatusCreated, last.OldStatus)
		s.Equal(domain.CaseStatusUnderReview, last.NewStatus)
	})

	s.Run("approved grant holder updates", func() {
		s.Require().NoError(s.orgs.SetApproved(ctx, "org-b", true))
		s.Require().NoError(s.grants.Set(ctx, 1, "org-b", true))
		c, err := s.service.UpdateStatus(ctx, "org-b", 1, domain.CaseStatusResolved)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusResolved, c.Status)
	})

	s.Run("statuses may move backwards", func() {
		s.Require().NoError(s.orgs.SetApproved(ctx, "alice", true))
		c, err := s.service.UpdateStatus(ctx, "alice", 1, domain.CaseStatusCreated)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusCreated, c.Status)
	})
}

func (s *RegistryServiceSuite) TestFailedUpdateEmitsNoAudit() {
	ctx := context.Background()
	s.register("alice")
	s.createCase("alice", "bafy123")
	s.auditStore.Clear()

	_, err := s.service.UpdateStatus(ctx, "alice", 1, domain.CaseStatusClosed)
	s.Require().Error(err)
	s.Empty(s.auditStore.All())

	c, err := s.service.GetCase(ctx, "alice", 1)
	s.Require().NoError(err)
	s.Equal(domain.CaseStatusCreated, c.Status)
}

// commitFailRunner runs the closure and then fails, standing in for a
// transaction whose COMMIT is rejected by the database.
type commitFailRunner struct{}

func (commitFailRunner) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errors.New("commit failed")
}

func TestStreamMirrorWaitsForCommit(t *testing.T) {
	ctx := context.Background()
	registrants := identity.NewInMemoryStore()
	require.NoError(t, registrants.Create(ctx, "alice"))

	t.Run("failed commit keeps the stream silent", func(t *testing.T) {
		stream := make(chan audit.Event, 1)
		service := NewService(
			NewInMemoryStore(),
			registrants,
			directory.NewInMemoryStore(),
			access.NewInMemoryStore(),
			audit.NewPublisher(auditmem.NewInMemoryStore(), audit.WithTee(stream)),
			nil,
			commitFailRunner{},
		)

		_, err := service.CreateCase(ctx, "alice", "bafy123")
		require.Error(t, err)
		assert.Empty(t, stream)
	})

	t.Run("committed create reaches the stream", func(t *testing.T) {
		stream := make(chan audit.Event, 1)
		service := NewService(
			NewInMemoryStore(),
			registrants,
			directory.NewInMemoryStore(),
			access.NewInMemoryStore(),
			audit.NewPublisher(auditmem.NewInMemoryStore(), audit.WithTee(stream)),
			nil,
			tx.NewSerial(),
		)

		c, err := service.CreateCase(ctx, "alice", "bafy123")
		require.NoError(t, err)

		select {
		case got := <-stream:
			assert.Equal(t, audit.ActionCaseCreated.String(), got.Action)
			assert.Equal(t, c.ID, got.CaseID)
		default:
			t.Fatal("expected the committed event on the stream")
		}
	})
}

// =============================================================================
// GetCase Tests
// =============================================================================

func (s *RegistryServiceSuite) TestGetCase() {
	ctx := context.Background()
	s.register("alice")
	s.createCase("alice", "bafy123")

	s.Run("owner reads the full record", func() {
		c, err := s.service.GetCase(ctx, "alice", 1)
		s.Require().NoError(err)
		s.Equal("bafy123", c.EvidenceRef)
	})

	s.Run("grant holder reads the full record", func() {
		s.Require().NoError(s.grants.Set(ctx, 1, "org-b", true))
		_, err := s.service.GetCase(ctx, "org-b", 1)
		s.NoError(err)
	})

	s.Run("stranger is rejected", func() {
		_, err := s.service.GetCase(ctx, "stranger", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing case reports not found", func() {
		_, err := s.service.GetCase(ctx, "alice", 42)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// ListOwned Tests
// =============================================================================

func (s *RegistryServiceSuite) TestListOwned() {
	ctx := context.Background()
	s.register("alice")
	s.register("bob")

	s.Run("unregistered caller gets an error, not an empty list", func() {
		_, err := s.service.ListOwned(ctx, "ghost")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("registered caller with no cases gets an empty list", func() {
		ids, err := s.service.ListOwned(ctx, "bob")
		s.Require().NoError(err)
		s.Empty(ids)
	})

	s.Run("owned IDs come back in creation order", func() {
		s.createCase("alice", "ref-1")
		s.createCase("bob", "ref-2")
		s.createCase("alice", "ref-3")

		ids, err := s.service.ListOwned(ctx, "alice")
		s.Require().NoError(err)
		s.Equal([]domain.CaseID{1, 3}, ids)
	})
}
