package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"caseledger/internal/access"
	"caseledger/internal/audit"
	auditmem "caseledger/internal/audit/store/memory"
	"caseledger/internal/directory"
	"caseledger/internal/identity"
	"caseledger/internal/registry"
	"caseledger/pkg/platform/tx"
	"caseledger/pkg/testutil"
)

// Handler tests validate HTTP concerns only: request parsing, identity
// binding, and status/error mapping. Domain rules are covered in the service
// suites; real in-memory stores back the service here, no mocks.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	registrants := identity.NewInMemoryStore()
	s.Require().NoError(registrants.Create(context.Background(), "alice"))

	service := registry.NewService(
		registry.NewInMemoryStore(),
		registrants,
		directory.NewInMemoryStore(),
		access.NewInMemoryStore(),
		audit.NewPublisher(auditmem.NewInMemoryStore()),
		nil,
		tx.NewSerial(),
	)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) TestCreateCase() {
	s.Run("invalid JSON returns 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", nil)
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("missing principal returns 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": "bafy123"})
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})

	s.Run("valid request returns 201 with the new case", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": "bafy123"})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Require().Equal(http.StatusCreated, rr.Code)

		var resp struct {
			ID          uint64 `json:"id"`
			Owner       string `json:"owner"`
			EvidenceRef string `json:"evidence_ref"`
			Status      string `json:"status"`
		}
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal(uint64(1), resp.ID)
		s.Equal("alice", resp.Owner)
		s.Equal("bafy123", resp.EvidenceRef)
		s.Equal("created", resp.Status)
	})

	s.Run("unregistered caller returns 403", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": "bafy123"})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "ghost"))
		s.Equal(http.StatusForbidden, rr.Code)

		var resp map[string]string
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal("forbidden", resp["error"])
	})
}

func (s *HandlerSuite) TestGetCase() {
	create := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": "bafy123"})
	s.Require().Equal(http.StatusCreated, testutil.DoRequest(s.router, testutil.WithPrincipal(create, "alice")).Code)

	s.Run("malformed ID returns 400", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/zero")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("unknown ID returns 404", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/99")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("unauthorized viewer returns 403", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/1")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "stranger"))
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("owner reads the record", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/1")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusOK, rr.Code)
	})
}

func (s *HandlerSuite) TestListMine() {
	s.Run("unregistered caller returns 403, not an empty list", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/mine")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "ghost"))
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("registered caller gets IDs in creation order", func() {
		for _, ref := range []string{"ref-1", "ref-2"} {
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": ref})
			s.Require().Equal(http.StatusCreated, testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice")).Code)
		}

		req := testutil.NewRequest(s.T(), http.MethodGet, "/cases/mine")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Require().Equal(http.StatusOK, rr.Code)

		var resp map[string][]uint64
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.Equal([]uint64{1, 2}, resp["case_ids"])
	})
}

func (s *HandlerSuite) TestUpdateStatus() {
	create := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"evidence_ref": "bafy123"})
	s.Require().Equal(http.StatusCreated, testutil.DoRequest(s.router, testutil.WithPrincipal(create, "alice")).Code)

	s.Run("unsupported status returns 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases/1/status", map[string]string{"status": "escalated"})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("unapproved caller returns 403", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases/1/status", map[string]string{"status": "under_review"})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusForbidden, rr.Code)
	})
}
