package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"caseledger/internal/platform/middleware"
	"caseledger/internal/registry"
	"caseledger/internal/transport/http/shared"
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
	"caseledger/pkg/requestcontext"
)

// Service defines the interface for case operations.
type Service interface {
	CreateCase(ctx context.Context, caller domain.Principal, evidenceRef string) (registry.Case, error)
	UpdateStatus(ctx context.Context, caller domain.Principal, caseID domain.CaseID, newStatus domain.CaseStatus) (registry.Case, error)
	GetCase(ctx context.Context, caller domain.Principal, caseID domain.CaseID) (registry.Case, error)
	ListOwned(ctx context.Context, caller domain.Principal) ([]domain.CaseID, error)
}

// Handler handles case endpoints.
type Handler struct {
	logger *slog.Logger
	cases  Service
}

func New(cases Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, cases: cases}
}

// Register registers the case routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.handleCreateCase)
	r.Get("/cases/mine", h.handleListMine)
	r.Get("/cases/{caseID}", h.handleGetCase)
	r.Post("/cases/{caseID}/status", h.handleUpdateStatus)
}

type createCaseRequest struct {
	EvidenceRef string `json:"evidence_ref"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type caseResponse struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	EvidenceRef string    `json:"evidence_ref"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCaseResponse(c registry.Case) caseResponse {
	return caseResponse{
		ID:          uint64(c.ID),
		Owner:       c.Owner.String(),
		EvidenceRef: c.EvidenceRef,
		Status:      c.Status.String(),
		CreatedAt:   c.CreatedAt,
	}
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.cases.CreateCase(ctx, caller, req.EvidenceRef)
	if err != nil {
		h.logger.WarnContext(ctx, "case creation rejected",
			"principal", caller.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toCaseResponse(created))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	ids, err := h.cases.ListOwned(ctx, caller)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]uint64{"case_ids": out})
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.cases.GetCase(ctx, caller, caseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	newStatus, err := domain.ParseCaseStatus(req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.cases.UpdateStatus(ctx, caller, caseID, newStatus)
	if err != nil {
		h.logger.WarnContext(ctx, "status update rejected",
			"principal", caller.String(),
			"case_id", caseID.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toCaseResponse(updated))
}
