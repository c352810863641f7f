package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/skudeck/internal/analytics"
	"github.com/wonny/skudeck/internal/audit"
	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/pkg/logger"
)

// SkuSource is the read side of the remote SKU store.
type SkuSource interface {
	ListSkus(ctx context.Context) ([]catalog.Sku, error)
}

// SnapshotSource is the audit trail's metrics-snapshot side.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (*audit.MetricsSnapshot, error)
	SnapshotHistory(ctx context.Context, limit int) ([]audit.MetricsSnapshot, error)
}

// DashboardHandler handles the executive metrics endpoints
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type DashboardHandler struct {
	skus      SkuSource
	snapshots SnapshotSource
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler. snapshots may be
// nil when the audit trail is disabled.
func NewDashboardHandler(skus SkuSource, snapshots SnapshotSource, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{skus: skus, snapshots: snapshots, logger: log}
}

// MetricsResponse wraps the bundle with an explicit empty-catalog flag.
type MetricsResponse struct {
	NoData  bool                     `json:"no_data"`
	Metrics *analytics.MetricsBundle `json:"metrics,omitempty"`
}

// GetMetrics returns the full aggregated dashboard bundle
// GET /api/dashboard/metrics
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skus, err := h.skus.ListSkus(ctx)
	if err != nil {
		respondStoreError(w, h.logger, err, "Failed to fetch SKU collection")
		return
	}

	bundle, err := analytics.Compute(skus)
	if errors.Is(err, analytics.ErrNoData) {
		respondJSON(w, http.StatusOK, MetricsResponse{NoData: true})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute metrics")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, MetricsResponse{Metrics: bundle})
}

// HistoryResponse carries persisted dashboard snapshots, newest first.
type HistoryResponse struct {
	Latest  *audit.MetricsSnapshot  `json:"latest,omitempty"`
	History []audit.MetricsSnapshot `json:"history"`
}

// GetHistory returns the audited snapshot trail so metric drift between
// refreshes can be inspected
// GET /api/dashboard/history
func (h *DashboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		respondError(w, http.StatusNotFound, "Audit trail not enabled")
		return
	}
	ctx := r.Context()

	latest, err := h.snapshots.LatestSnapshot(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot history")
		return
	}

	history, err := h.snapshots.SnapshotHistory(ctx, historyLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load snapshot history")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot history")
		return
	}

	respondJSON(w, http.StatusOK, HistoryResponse{Latest: latest, History: history})
}
