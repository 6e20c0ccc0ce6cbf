package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/settings"
)

type SettingsHandler struct {
	settings *settings.Manager
	logger   *slog.Logger
}

func NewSettingsHandler(settings *settings.Manager, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.settings.Get())
}

func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.settings.Update(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("settings updated", "site_name", updated.SiteName)
	writeJSON(w, h.logger, http.StatusOK, updated)
}
