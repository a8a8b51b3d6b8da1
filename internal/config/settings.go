// Package config provides configuration loading for the analysis service:
// server settings from YAML with environment overrides, and per-request
// analysis settings resolved through an ordered provider chain.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

// Settings keys resolved through the provider chain.
const (
	KeyAPIKey        = "api_key"
	KeyModel         = "model"
	KeyLanguage      = "language"
	KeyVectorStoreID = "vector_store_id"
	KeyVerboseOracle = "verbose_oracle"
)

// Environment variable names for analysis settings.
const (
	EnvAPIKey        = "OPENAI_API_KEY"
	EnvModel         = "BAROPOD_MODEL"
	EnvLanguage      = "BAROPOD_LANGUAGE"
	EnvVectorStoreID = "BAROPOD_VECTOR_STORE_ID"
	EnvVerboseOracle = "BAROPOD_VERBOSE_OPENAI"
	EnvSettingsFile  = "BAROPOD_SETTINGS_FILE"
)

// Hardcoded defaults used when neither environment nor the settings file
// define a value.
const (
	DefaultModel    = "gpt-5"
	DefaultLanguage = "it"
)

// DefaultSettingsFile is the settings file location, deliberately outside
// the web root so a static file server never exposes it.
const DefaultSettingsFile = "../baropod-settings.json"

// Settings is the merged, read-only per-request configuration.
type Settings struct {
	APIKey        string
	Model         string
	Language      string
	VectorStoreID string
	VerboseOracle bool
}

// HasAPIKey reports whether an API key was resolved from any source.
func (s Settings) HasAPIKey() bool {
	return s.APIKey != ""
}

// Provider supplies settings values from one source. Lookup returns the
// value and whether the source defines the key at all.
type Provider interface {
	Lookup(key string) (string, bool)
}

// EnvProvider resolves settings from process environment variables.
type EnvProvider struct{}

var envNames = map[string]string{
	KeyAPIKey:        EnvAPIKey,
	KeyModel:         EnvModel,
	KeyLanguage:      EnvLanguage,
	KeyVectorStoreID: EnvVectorStoreID,
	KeyVerboseOracle: EnvVerboseOracle,
}

func (EnvProvider) Lookup(key string) (string, bool) {
	name, ok := envNames[key]
	if !ok {
		return "", false
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// settingsFile is the on-disk JSON document written by the bootstrap
// endpoint.
type settingsFile struct {
	APIKey        string `json:"apiKey,omitempty"`
	Model         string `json:"model,omitempty"`
	Language      string `json:"language,omitempty"`
	VectorStoreID string `json:"vectorStoreId,omitempty"`
}

// FileProvider resolves settings from the local JSON settings file. The file
// is re-read on each resolution; a missing or unreadable file simply defines
// no keys.
type FileProvider struct {
	Path string
}

func (p FileProvider) Lookup(key string) (string, bool) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", false
	}
	var f settingsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false
	}
	var v string
	switch key {
	case KeyAPIKey:
		v = f.APIKey
	case KeyModel:
		v = f.Model
	case KeyLanguage:
		v = f.Language
	case KeyVectorStoreID:
		v = f.VectorStoreID
	default:
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// StaticProvider resolves settings from a fixed map, used for hardcoded
// defaults and for injecting sources in tests.
type StaticProvider map[string]string

func (p StaticProvider) Lookup(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SettingsFilePath returns the effective settings file location.
func SettingsFilePath() string {
	if v := os.Getenv(EnvSettingsFile); v != "" {
		return v
	}
	return DefaultSettingsFile
}

// DefaultProviders returns the standard resolution chain: environment, then
// the JSON settings file at path, then hardcoded defaults.
func DefaultProviders(path string) []Provider {
	return []Provider{
		EnvProvider{},
		FileProvider{Path: path},
		StaticProvider{
			KeyModel:    DefaultModel,
			KeyLanguage: DefaultLanguage,
		},
	}
}

// Resolve merges the providers in order, first defined value per key wins.
// It never fails; a missing API key is surfaced by callers as a request
// failure, not here.
func Resolve(providers ...Provider) Settings {
	lookup := func(key string) string {
		for _, p := range providers {
			if v, ok := p.Lookup(key); ok {
				return v
			}
		}
		return ""
	}
	verbose := lookup(KeyVerboseOracle)
	return Settings{
		APIKey:        lookup(KeyAPIKey),
		Model:         lookup(KeyModel),
		Language:      lookup(KeyLanguage),
		VectorStoreID: lookup(KeyVectorStoreID),
		VerboseOracle: verbose == "1" || strings.EqualFold(verbose, "true"),
	}
}

// BootstrapRequest is the one-time provisioning payload.
type BootstrapRequest struct {
	APIKey        string `json:"apiKey"`
	Model         string `json:"model,omitempty"`
	Language      string `json:"language,omitempty"`
	VectorStoreID string `json:"vectorStoreId,omitempty"`
	Rotate        bool   `json:"rotate,omitempty"`
}

// BootstrapResult reports the outcome of a bootstrap attempt.
type BootstrapResult struct {
	Saved             bool
	AlreadyConfigured bool
	Last4             string
}

// Bootstrap writes the settings file once. An existing key is never
// overwritten unless Rotate is set; that models first-run provisioning on a
// shared workstation. Concurrent writes are not guarded, matching the
// expected single-operator usage.
func Bootstrap(path string, req BootstrapRequest) (BootstrapResult, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		return BootstrapResult{}, domain.ValidationError("apiKey is required", nil)
	}

	var existing settingsFile
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &existing)
	}
	if existing.APIKey != "" && !req.Rotate {
		return BootstrapResult{AlreadyConfigured: true, Last4: last4(existing.APIKey)}, nil
	}

	next := settingsFile{
		APIKey:        key,
		Model:         strings.TrimSpace(req.Model),
		Language:      strings.TrimSpace(req.Language),
		VectorStoreID: strings.TrimSpace(req.VectorStoreID),
	}
	// Preserve previously provisioned preferences the request leaves blank.
	if next.Model == "" {
		next.Model = existing.Model
	}
	if next.Language == "" {
		next.Language = existing.Language
	}
	if next.VectorStoreID == "" {
		next.VectorStoreID = existing.VectorStoreID
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return BootstrapResult{}, domain.IOError("marshal settings file", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return BootstrapResult{}, domain.IOError("create settings directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return BootstrapResult{}, domain.IOError("write settings file", err)
	}
	return BootstrapResult{Saved: true, Last4: last4(key)}, nil
}

func last4(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
