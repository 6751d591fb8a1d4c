// internal/server/handlers/admin.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"localvibe/internal/service/catalog"
)

// CatalogSyncer syncs third-party catalogs on demand
type CatalogSyncer interface {
	Sync(ctx context.Context, provider, city string) (catalog.Report, error)
	Providers() []string
}

// AdminHandler handles the admin panel's catalog actions
type AdminHandler struct {
	syncer CatalogSyncer
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(syncer CatalogSyncer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		syncer: syncer,
		logger: logger,
	}
}

// ListProviders returns the registered catalog providers
func (h *AdminHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": h.syncer.Providers(),
	})
}

// SyncProvider pulls one provider's catalog for a city
func (h *AdminHandler) SyncProvider(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "City is required", nil)
		return
	}

	report, err := h.syncer.Sync(r.Context(), provider, city)
	if errors.Is(err, catalog.ErrUnknownProvider) {
		respondWithError(w, h.logger, http.StatusNotFound, "Unknown provider", nil)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "Catalog sync failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
