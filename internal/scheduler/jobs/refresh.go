// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/skudeck/internal/analytics"
	"github.com/wonny/skudeck/internal/audit"
	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/realtime"
	"github.com/wonny/skudeck/pkg/logger"
)

// SkuSource is the read side of the remote SKU store.
type SkuSource interface {
	ListSkus(ctx context.Context) ([]catalog.Sku, error)
}

// RefreshJob re-fetches the SKU collection, recomputes dashboard
// metrics, persists an audit snapshot, and pushes the fresh bundle to
// connected dashboards.
// ⭐ SSOT: 대시보드 주기 갱신은 이 잡에서만
type RefreshJob struct {
	skus     SkuSource
	hub      *realtime.Hub
	auditRep *audit.Repository
	logger   *logger.Logger
	schedule string
}

// NewRefreshJob creates the dashboard refresh job.
// hub and auditRep may be nil; the matching step is skipped.
func NewRefreshJob(skus SkuSource, hub *realtime.Hub, auditRep *audit.Repository, log *logger.Logger, schedule string) *RefreshJob {
	return &RefreshJob{
		skus:     skus,
		hub:      hub,
		auditRep: auditRep,
		logger:   log,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dashboard_refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one refresh cycle
func (j *RefreshJob) Run(ctx context.Context) error {
	skus, err := j.skus.ListSkus(ctx)
	if err != nil {
		return fmt.Errorf("refresh: fetch skus: %w", err)
	}

	bundle, err := analytics.Compute(skus)
	if errors.Is(err, analytics.ErrNoData) {
		j.logger.Debug("Refresh skipped, catalog is empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh: compute metrics: %w", err)
	}

	if j.auditRep != nil {
		snapshot := &audit.MetricsSnapshot{
			TakenAt:             time.Now(),
			TotalSkus:           bundle.TotalSkus,
			LaunchNow:           bundle.LaunchNow,
			PhaseLater:          bundle.PhaseLater,
			DoNotLaunch:         bundle.DoNotLaunch,
			Unknown:             bundle.Unknown,
			TotalMonthlyRevenue: bundle.TotalMonthlyRevenue,
			TotalGmDollars:      bundle.TotalGmDollars,
			AvgGmPct:            bundle.AvgGmPct,
			MarketChannel:       bundle.MarketChannel,
		}
		// Audit is best-effort; a dead database must not stop the push
		if err := j.auditRep.SaveSnapshot(ctx, snapshot); err != nil {
			j.logger.WithError(err).Warn("Failed to save audit snapshot")
		}
	}

	if j.hub != nil {
		j.hub.Broadcast("metrics", bundle)
	}

	j.logger.WithFields(map[string]interface{}{
		"total_skus": bundle.TotalSkus,
		"launch_now": bundle.LaunchNow,
	}).Info("Dashboard metrics refreshed")

	return nil
}
