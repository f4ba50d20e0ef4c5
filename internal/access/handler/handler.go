package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caseledger/internal/platform/middleware"
	"caseledger/internal/transport/http/shared"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/requestcontext"
)

// Service defines the interface for access grant operations.
type Service interface {
	Grant(ctx context.Context, caller domain.Principal, caseID domain.CaseID, org domain.Principal) error
	Revoke(ctx context.Context, caller domain.Principal, caseID domain.CaseID, org domain.Principal) error
	HasAccess(ctx context.Context, caseID domain.CaseID, viewer domain.Principal) (bool, error)
}

// Handler handles access grant endpoints.
type Handler struct {
	logger *slog.Logger
	access Service
}

func New(access Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, access: access}
}

// Register registers the access routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/grants", h.handleGrant)
	r.Delete("/cases/{caseID}/grants/{org}", h.handleRevoke)
	r.Get("/cases/{caseID}/grants/{viewer}", h.handleHasAccess)
}

type grantRequest struct {
	Organization string `json:"organization"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	org, err := domain.ParsePrincipal(req.Organization)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.access.Grant(ctx, caller, caseID, org); err != nil {
		h.logger.WarnContext(ctx, "access grant rejected",
			"principal", caller.String(),
			"case_id", caseID.String(),
			"org", org.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	org, err := domain.ParsePrincipal(chi.URLParam(r, "org"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.access.Revoke(ctx, caller, caseID, org); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHasAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	viewer, err := domain.ParsePrincipal(chi.URLParam(r, "viewer"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	allowed, err := h.access.HasAccess(ctx, caseID, viewer)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]bool{"has_access": allowed})
}
