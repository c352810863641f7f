package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles audit data persistence
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot saves a dashboard refresh snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *MetricsSnapshot) error {
	pivotJSON, err := json.Marshal(snapshot.MarketChannel)
	if err != nil {
		return fmt.Errorf("failed to marshal pivot: %w", err)
	}

	query := `
		INSERT INTO audit.metrics_snapshots (
			taken_at, total_skus, launch_now, phase_later, do_not_launch, unknown,
			total_monthly_revenue, total_gm_dollars, avg_gm_pct, market_channel
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.TakenAt, snapshot.TotalSkus, snapshot.LaunchNow, snapshot.PhaseLater,
		snapshot.DoNotLaunch, snapshot.Unknown, snapshot.TotalMonthlyRevenue,
		snapshot.TotalGmDollars, snapshot.AvgGmPct, pivotJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot retrieves the most recent snapshot
func (r *Repository) LatestSnapshot(ctx context.Context) (*MetricsSnapshot, error) {
	query := `
		SELECT taken_at, total_skus, launch_now, phase_later, do_not_launch, unknown,
		       total_monthly_revenue, total_gm_dollars, avg_gm_pct, market_channel
		FROM audit.metrics_snapshots
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var snapshot MetricsSnapshot
	var pivotJSON []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&snapshot.TakenAt, &snapshot.TotalSkus, &snapshot.LaunchNow, &snapshot.PhaseLater,
		&snapshot.DoNotLaunch, &snapshot.Unknown, &snapshot.TotalMonthlyRevenue,
		&snapshot.TotalGmDollars, &snapshot.AvgGmPct, &pivotJSON,
	)

	if err == pgx.ErrNoRows {
		return nil, nil // No snapshot yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if len(pivotJSON) > 0 {
		if err := json.Unmarshal(pivotJSON, &snapshot.MarketChannel); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pivot: %w", err)
		}
	}

	return &snapshot, nil
}

// SnapshotHistory retrieves the most recent snapshots, newest first
func (r *Repository) SnapshotHistory(ctx context.Context, limit int) ([]MetricsSnapshot, error) {
	query := `
		SELECT taken_at, total_skus, launch_now, phase_later, do_not_launch, unknown,
		       total_monthly_revenue, total_gm_dollars, avg_gm_pct, market_channel
		FROM audit.metrics_snapshots
		ORDER BY taken_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]MetricsSnapshot, 0)

	for rows.Next() {
		var snapshot MetricsSnapshot
		var pivotJSON []byte

		err := rows.Scan(
			&snapshot.TakenAt, &snapshot.TotalSkus, &snapshot.LaunchNow, &snapshot.PhaseLater,
			&snapshot.DoNotLaunch, &snapshot.Unknown, &snapshot.TotalMonthlyRevenue,
			&snapshot.TotalGmDollars, &snapshot.AvgGmPct, &pivotJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		if len(pivotJSON) > 0 {
			if err := json.Unmarshal(pivotJSON, &snapshot.MarketChannel); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pivot: %w", err)
			}
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}

// SaveImportRecord saves one import attempt
func (r *Repository) SaveImportRecord(ctx context.Context, record *ImportRecord) error {
	query := `
		INSERT INTO audit.import_records (
			session_id, filename, started_at, finished_at, skus, status, detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			skus = EXCLUDED.skus,
			status = EXCLUDED.status,
			detail = EXCLUDED.detail
	`

	_, err := r.pool.Exec(ctx, query,
		record.SessionID, record.Filename, record.StartedAt, record.FinishedAt,
		record.Skus, record.Status, record.Detail,
	)

	if err != nil {
		return fmt.Errorf("failed to save import record: %w", err)
	}

	return nil
}

// ImportHistory retrieves the most recent import attempts, newest first
func (r *Repository) ImportHistory(ctx context.Context, limit int) ([]ImportRecord, error) {
	query := `
		SELECT session_id, filename, started_at, finished_at, skus, status, detail
		FROM audit.import_records
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import records: %w", err)
	}
	defer rows.Close()

	records := make([]ImportRecord, 0)

	for rows.Next() {
		var record ImportRecord
		err := rows.Scan(
			&record.SessionID, &record.Filename, &record.StartedAt, &record.FinishedAt,
			&record.Skus, &record.Status, &record.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}
