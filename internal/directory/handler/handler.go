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

// Service defines the interface for organization directory operations.
type Service interface {
	Approve(ctx context.Context, caller, org domain.Principal) error
	Remove(ctx context.Context, caller, org domain.Principal) error
	IsApproved(ctx context.Context, org domain.Principal) (bool, error)
}

// Handler handles the admin organization directory endpoints. Admin
// authorization lives in the service; the handler only binds identities.
type Handler struct {
	logger *slog.Logger
	orgs   Service
}

func New(orgs Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, orgs: orgs}
}

// Register registers the directory routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/organizations", h.handleApprove)
	r.Delete("/admin/organizations/{org}", h.handleRemove)
	r.Get("/admin/organizations/{org}", h.handleGet)
}

type approveRequest struct {
	Principal string `json:"principal"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	org, err := domain.ParsePrincipal(req.Principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.orgs.Approve(ctx, caller, org); err != nil {
		h.logger.WarnContext(ctx, "organization approval rejected",
			"principal", caller.String(),
			"org", org.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	org, err := domain.ParsePrincipal(chi.URLParam(r, "org"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.orgs.Remove(ctx, caller, org); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := domain.ParsePrincipal(chi.URLParam(r, "org"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	approved, err := h.orgs.IsApproved(ctx, org)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]bool{"approved": approved})
}
