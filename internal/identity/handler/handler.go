package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caseledger/internal/platform/middleware"
	"caseledger/internal/transport/http/shared"
	"caseledger/pkg/domain"
	"caseledger/pkg/requestcontext"
)

// Service defines the interface for registration operations.
type Service interface {
	Register(ctx context.Context, caller domain.Principal) error
}

// Handler handles registration endpoints.
type Handler struct {
	logger   *slog.Logger
	identity Service
}

func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, identity: identity}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	if err := h.identity.Register(ctx, caller); err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"principal", caller.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"principal": caller.String(),
	})
}
