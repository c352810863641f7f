package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

type stubSource struct {
	skus []catalog.Sku
	err  error
}

func (s *stubSource) ListSkus(ctx context.Context) ([]catalog.Sku, error) {
	return s.skus, s.err
}

func strPtr(s string) *string { return &s }

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestRefreshJob_Run(t *testing.T) {
	source := &stubSource{skus: []catalog.Sku{
		{SkuID: "S1", Cache: &catalog.ScoreCache{FinalRecommendation: strPtr("Launch Now")}},
	}}

	job := NewRefreshJob(source, nil, nil, testLogger(), "0 */10 * * * *")
	assert.Equal(t, "dashboard_refresh", job.Name())
	assert.Equal(t, "0 */10 * * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
}

func TestRefreshJob_EmptyCatalogIsNotAnError(t *testing.T) {
	job := NewRefreshJob(&stubSource{}, nil, nil, testLogger(), "@hourly")
	assert.NoError(t, job.Run(context.Background()))
}

func TestRefreshJob_FetchFailure(t *testing.T) {
	job := NewRefreshJob(&stubSource{err: errors.New("store down")}, nil, nil, testLogger(), "@hourly")

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}
