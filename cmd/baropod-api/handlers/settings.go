package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

// SettingsHandler serves key bootstrap and the non-secret config view.
type SettingsHandler struct {
	logger       *observability.Logger
	settingsPath string
	providers    []config.Provider
}

// NewSettingsHandler creates the settings handler. The providers are the
// same resolution chain the pipeline uses, so the config view reflects
// what a request would actually see.
func NewSettingsHandler(logger *observability.Logger, settingsPath string, providers []config.Provider) *SettingsHandler {
	return &SettingsHandler{
		logger:       logger,
		settingsPath: settingsPath,
		providers:    providers,
	}
}

// BootstrapRequestDTO is the POST /api/bootstrap-key body.
type BootstrapRequestDTO struct {
	APIKey        string `json:"apiKey"`
	Model         string `json:"model,omitempty"`
	Language      string `json:"language,omitempty"`
	VectorStoreID string `json:"vectorStoreId,omitempty"`
	Rotate        bool   `json:"rotate,omitempty"`
}

// BootstrapResponseDTO reports the outcome without echoing the key.
type BootstrapResponseDTO struct {
	Saved             bool   `json:"saved"`
	AlreadyConfigured bool   `json:"alreadyConfigured,omitempty"`
	Last4             string `json:"last4,omitempty"`
}

// Bootstrap handles POST /api/bootstrap-key.
func (h *SettingsHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var dto BootstrapRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.APIKey == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	res, err := config.Bootstrap(h.settingsPath, config.BootstrapRequest{
		APIKey:        dto.APIKey,
		Model:         dto.Model,
		Language:      dto.Language,
		VectorStoreID: dto.VectorStoreID,
		Rotate:        dto.Rotate,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Bootstrap failed")
		writeError(w, statusFor(err), messageFor(err))
		return
	}

	h.logger.Info().
		Bool("saved", res.Saved).
		Bool("already_configured", res.AlreadyConfigured).
		Msg("Bootstrap request handled")

	writeData(w, http.StatusOK, BootstrapResponseDTO{
		Saved:             res.Saved,
		AlreadyConfigured: res.AlreadyConfigured,
		Last4:             res.Last4,
	})
}

// ConfigViewDTO is the GET /api/config payload. The key never appears.
type ConfigViewDTO struct {
	Model         string `json:"model"`
	Language      string `json:"language"`
	VectorStoreID string `json:"vectorStoreId,omitempty"`
	HasAPIKey     bool   `json:"hasApiKey"`
}

// View handles GET /api/config.
func (h *SettingsHandler) View(w http.ResponseWriter, r *http.Request) {
	settings := config.Resolve(h.providers...)
	writeData(w, http.StatusOK, ConfigViewDTO{
		Model:         settings.Model,
		Language:      settings.Language,
		VectorStoreID: settings.VectorStoreID,
		HasAPIKey:     settings.HasAPIKey(),
	})
}
