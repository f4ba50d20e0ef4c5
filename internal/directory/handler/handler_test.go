package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"caseledger/internal/audit"
	auditmem "caseledger/internal/audit/store/memory"
	"caseledger/internal/directory"
	"caseledger/pkg/platform/tx"
	"caseledger/pkg/testutil"
)

const admin = "admin@main"

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	service := directory.NewService(
		directory.NewInMemoryStore(),
		admin,
		audit.NewPublisher(auditmem.NewInMemoryStore()),
		tx.NewSerial(),
	)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) approve(org string) {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/organizations", map[string]string{"principal": org})
	rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, admin))
	s.Require().Equal(http.StatusNoContent, rr.Code)
}

func (s *HandlerSuite) TestApprove() {
	s.Run("invalid JSON returns 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/organizations", nil)
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, admin))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("empty principal returns 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/organizations", map[string]string{"principal": ""})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, admin))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("non-admin returns 403", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/organizations", map[string]string{"principal": "org-b"})
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "alice"))
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("admin approval returns 204 and flips the flag", func() {
		s.approve("org-b")

		req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/organizations/org-b")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, admin))
		s.Require().Equal(http.StatusOK, rr.Code)

		var resp map[string]bool
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.True(resp["approved"])
	})
}

func (s *HandlerSuite) TestRemove() {
	s.approve("org-b")

	s.Run("non-admin returns 403", func() {
		req := testutil.NewRequest(s.T(), http.MethodDelete, "/admin/organizations/org-b")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, "org-b"))
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("admin removal returns 204 and clears the flag", func() {
		req := testutil.NewRequest(s.T(), http.MethodDelete, "/admin/organizations/org-b")
		rr := testutil.DoRequest(s.router, testutil.WithPrincipal(req, admin))
		s.Require().Equal(http.StatusNoContent, rr.Code)

		get := testutil.NewRequest(s.T(), http.MethodGet, "/admin/organizations/org-b")
		rr = testutil.DoRequest(s.router, testutil.WithPrincipal(get, admin))
		s.Require().Equal(http.StatusOK, rr.Code)

		var resp map[string]bool
		testutil.DecodeJSON(s.T(), rr, &resp)
		s.False(resp["approved"])
	})
}
