package handlers

import (
	"net/http"
	"os"
	"runtime"

	"github.com/mcftira/baropodometry-web/internal/config"
)

// HealthHandler serves liveness and environment introspection.
type HealthHandler struct {
	cfg          *config.Config
	settingsPath string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(cfg *config.Config, settingsPath string) *HealthHandler {
	return &HealthHandler{cfg: cfg, settingsPath: settingsPath}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy","service":"baropod-api"}`))
}

// TestInfoDTO is the GET /api/test payload, used to diagnose a deployment
// without touching the oracle.
type TestInfoDTO struct {
	GoVersion        string  `json:"goVersion"`
	Model            string  `json:"model"`
	Language         string  `json:"language"`
	RenderPages      []int   `json:"renderPages"`
	RenderScale      float64 `json:"renderScale"`
	SettingsFile     string  `json:"settingsFile"`
	SettingsFileSeen bool    `json:"settingsFileSeen"`
	EnvKeySeen       bool    `json:"envKeySeen"`
}

// Test handles GET /api/test.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	settings := config.Resolve(config.DefaultProviders(h.settingsPath)...)
	_, fileErr := os.Stat(h.settingsPath)
	writeData(w, http.StatusOK, TestInfoDTO{
		GoVersion:        runtime.Version(),
		Model:            settings.Model,
		Language:         settings.Language,
		RenderPages:      h.cfg.Render.Pages,
		RenderScale:      h.cfg.Render.Scale,
		SettingsFile:     h.settingsPath,
		SettingsFileSeen: fileErr == nil,
		EnvKeySeen:       os.Getenv(config.EnvAPIKey) != "",
	})
}
