package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/logger"
)

// ConfigStore is the market/channel/settings surface of the store.
type ConfigStore interface {
	ListMarkets(ctx context.Context) ([]store.Market, error)
	ListChannels(ctx context.Context) ([]store.ChannelConfig, error)
	UpdateChannel(ctx context.Context, name string, cfg store.ChannelConfig) error
	CTSMatrix(ctx context.Context) ([]store.CTSCell, error)
	UpdateCTS(ctx context.Context, market, channel string, totalPct float64) error
	GetSettings(ctx context.Context) (store.Settings, error)
	UpdateSettings(ctx context.Context, settings store.Settings) error
}

// ConfigHandler passes market/channel/settings reads and writes through
// to the store so the dashboard has a single origin to talk to
// ⭐ SSOT: 설정 패스스루 핸들러는 이 구조체에서만
type ConfigHandler struct {
	store  ConfigStore
	logger *logger.Logger
}

// NewConfigHandler creates a new config passthrough handler
func NewConfigHandler(store ConfigStore, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{store: store, logger: log}
}

// GetMarkets lists the configured markets
// GET /api/markets
func (h *ConfigHandler) GetMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.store.ListMarkets(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch markets")
		return
	}
	respondJSON(w, http.StatusOK, markets)
}

// GetChannels lists the channel configurations
// GET /api/channels
func (h *ConfigHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.ListChannels(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch channels")
		return
	}
	respondJSON(w, http.StatusOK, channels)
}

// UpdateChannel replaces one channel configuration
// PUT /api/channels/{name}
func (h *ConfigHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var cfg store.ChannelConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateChannel(r.Context(), name, cfg); err != nil {
		respondStoreError(w, h.logger, err, "Failed to update channel")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Success"})
}

// GetCTSMatrix returns the market-by-channel cost-to-serve matrix
// GET /api/channels/cts
func (h *ConfigHandler) GetCTSMatrix(w http.ResponseWriter, r *http.Request) {
	cells, err := h.store.CTSMatrix(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch CTS matrix")
		return
	}
	respondJSON(w, http.StatusOK, cells)
}

// CTSRequest carries one cost-to-serve cell value.
type CTSRequest struct {
	TotalCtsPct float64 `json:"total_cts_pct"`
}

// UpdateCTSCell updates one cost-to-serve cell
// PUT /api/channels/cts/{market}/{channel}
func (h *ConfigHandler) UpdateCTSCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req CTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateCTS(r.Context(), vars["market"], vars["channel"], req.TotalCtsPct); err != nil {
		respondStoreError(w, h.logger, err, "Failed to update CTS cell")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Success"})
}

// GetSettings returns the global weight and adjustment settings
// GET /api/settings
func (h *ConfigHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the global settings
// PUT /api/settings
func (h *ConfigHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
		respondStoreError(w, h.logger, err, "Failed to update settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Success"})
}
