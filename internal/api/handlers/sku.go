package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/portfolio"
	"github.com/wonny/skudeck/pkg/logger"
)

// SkuWriter is the mutation side of the remote SKU store.
type SkuWriter interface {
	UpdateSku(ctx context.Context, skuID string, sku catalog.Sku) (*catalog.Sku, error)
	ExportSkus(ctx context.Context, skuIDs []string) ([]byte, error)
}

// SkuHandler proxies whole-record edits and exports to the store
// ⭐ SSOT: SKU 편집/내보내기 프록시는 이 구조체에서만
type SkuHandler struct {
	store     SkuWriter
	selection *portfolio.Selection
	logger    *logger.Logger
}

// NewSkuHandler creates a new SKU handler
func NewSkuHandler(store SkuWriter, selection *portfolio.Selection, log *logger.Logger) *SkuHandler {
	return &SkuHandler{store: store, selection: selection, logger: log}
}

// UpdateSku replaces one SKU record. The store recalculates scores,
// so the response carries the fresh cache for the edited row.
// PUT /api/skus/{id}
func (h *SkuHandler) UpdateSku(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skuID := mux.Vars(r)["id"]

	var sku catalog.Sku
	if err := json.NewDecoder(r.Body).Decode(&sku); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.store.UpdateSku(ctx, skuID, sku)
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to update SKU")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// ExportRequest names the rows to export. With no explicit IDs the
// server-side selection is used.
type ExportRequest struct {
	SkuIDs []string `json:"sku_ids,omitempty"`
}

// ExportSkus streams the store's xlsx export back as an attachment
// POST /api/skus/export
func (h *SkuHandler) ExportSkus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExportRequest
	if r.Body != nil {
		// An empty body means "export the current selection"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	ids := req.SkuIDs
	if len(ids) == 0 {
		ids = h.selection.IDs()
	}
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "No SKUs selected for export")
		return
	}

	contents, err := h.store.ExportSkus(ctx, ids)
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to export SKUs")
		return
	}

	filename := fmt.Sprintf("sku_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(contents)
}
