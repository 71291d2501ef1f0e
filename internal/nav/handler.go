package nav

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// CatalogSource supplies the full module catalog.
type CatalogSource interface {
	ListModules(ctx context.Context) ([]rbac.Module, error)
}

// Handler serves the composed navigation for the current actor.
type Handler struct {
	logger  *slog.Logger
	catalog CatalogSource
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, catalog CatalogSource) *Handler {
	return &Handler{logger: logger, catalog: catalog}
}

// MountRoutes registers the navigation route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.navigation)
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	snap := authz.SnapshotFromContext(r.Context())
	if snap == nil {
		shared.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	catalog, err := h.catalog.ListModules(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, Compose(catalog, snap))
}
