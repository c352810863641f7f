package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/portfolio"
	"github.com/wonny/skudeck/pkg/logger"
)

// PortfolioHandler handles the filtered catalog view and row selection
// ⭐ SSOT: 포트폴리오 API 핸들러는 이 구조체에서만
type PortfolioHandler struct {
	skus      SkuSource
	selection *portfolio.Selection
	logger    *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(skus SkuSource, selection *portfolio.Selection, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{skus: skus, selection: selection, logger: log}
}

// PortfolioResponse is the filtered-view payload.
type PortfolioResponse struct {
	Skus     []catalog.Sku          `json:"skus"`
	Total    int                    `json:"total"`
	Filters  portfolio.FilterValues `json:"filters"`
	Selected []string               `json:"selected"`
}

// GetPortfolio returns the catalog filtered by the query parameters.
// Filter options are always derived from the full catalog, not the
// filtered subset, so narrowing one dimension never hides the others.
// GET /api/portfolio?brand=&market=&channel=
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skus, err := h.skus.ListSkus(ctx)
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch SKU collection")
		return
	}

	opts := portfolio.Options{
		Brand:   r.URL.Query().Get("brand"),
		Market:  r.URL.Query().Get("market"),
		Channel: r.URL.Query().Get("channel"),
	}

	filtered := portfolio.Filter(skus, opts)

	respondJSON(w, http.StatusOK, PortfolioResponse{
		Skus:     filtered,
		Total:    len(filtered),
		Filters:  portfolio.Values(skus),
		Selected: h.selection.IDs(),
	})
}

// SelectionRequest mutates the selection set.
type SelectionRequest struct {
	SkuID  string   `json:"sku_id,omitempty"`
	SkuIDs []string `json:"sku_ids,omitempty"`
}

// ToggleSelection toggles one SKU in or out of the selection
// POST /api/portfolio/selection/toggle
func (h *PortfolioHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SkuID == "" {
		respondError(w, http.StatusBadRequest, "sku_id is required")
		return
	}

	selected := h.selection.Toggle(req.SkuID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sku_id":   req.SkuID,
		"selected": selected,
		"count":    h.selection.Len(),
	})
}

// ReplaceSelection replaces the whole selection, typically select-all
// PUT /api/portfolio/selection
func (h *PortfolioHandler) ReplaceSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.selection.SelectAll(req.SkuIDs)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"selected": h.selection.IDs(),
		"count":    h.selection.Len(),
	})
}

// ClearSelection empties the selection
// DELETE /api/portfolio/selection
func (h *PortfolioHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.selection.Clear()
	respondJSON(w, http.StatusOK, map[string]interface{}{"count": 0})
}
