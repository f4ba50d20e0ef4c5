package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"caseledger/internal/audit"
	"caseledger/internal/authz"
	"caseledger/internal/platform/middleware"
	"caseledger/internal/transport/http/shared"
	"caseledger/pkg/domain"
)

const defaultListLimit = 100

// Handler exposes the admin audit query surface. The primary consumer of the
// audit trail is the external stream; this endpoint exists for spot checks.
type Handler struct {
	logger *slog.Logger
	audit  *audit.Publisher
	admin  domain.Principal
}

func New(auditPublisher *audit.Publisher, admin domain.Principal, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, audit: auditPublisher, admin: admin}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit", h.handleList)
}

type eventResponse struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	Principal   string    `json:"principal"`
	CaseID      uint64    `json:"case_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Org         string    `json:"org,omitempty"`
	EvidenceRef string    `json:"evidence_ref,omitempty"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	if err := authz.Admin(h.admin, caller).Err(); err != nil {
		shared.WriteError(w, err)
		return
	}

	var events []audit.Event
	var err error
	if principal := r.URL.Query().Get("principal"); principal != "" {
		events, err = h.audit.ListByPrincipal(ctx, domain.Principal(principal))
	} else {
		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, parseErr := strconv.Atoi(raw); parseErr == nil && n > 0 {
				limit = n
			}
		}
		events, err = h.audit.ListRecent(ctx, limit)
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:          e.ID.String(),
			Category:    string(e.Category),
			Timestamp:   e.Timestamp,
			Action:      e.Action,
			Principal:   e.Principal.String(),
			CaseID:      uint64(e.CaseID),
			Owner:       e.Owner.String(),
			Org:         e.Org.String(),
			EvidenceRef: e.EvidenceRef,
			OldStatus:   e.OldStatus.String(),
			NewStatus:   e.NewStatus.String(),
			RequestID:   e.RequestID,
		})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}
