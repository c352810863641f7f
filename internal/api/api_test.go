package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/skudeck/internal/api/handlers"
	"github.com/wonny/skudeck/internal/audit"
	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/importer"
	"github.com/wonny/skudeck/internal/portfolio"
	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

// fakeStore satisfies the handler-facing store interfaces in memory.
type fakeStore struct {
	skus       []catalog.Sku
	listErr    error
	updated    map[string]catalog.Sku
	exported   [][]string
	headers    []string
	importErr  error
	imports    int
	ctsUpdates []string
}

func (f *fakeStore) ListSkus(ctx context.Context) ([]catalog.Sku, error) {
	return f.skus, f.listErr
}

func (f *fakeStore) UpdateSku(ctx context.Context, skuID string, sku catalog.Sku) (*catalog.Sku, error) {
	if f.updated == nil {
		f.updated = make(map[string]catalog.Sku)
	}
	f.updated[skuID] = sku
	out := sku
	out.Cache = &catalog.ScoreCache{FinalRecommendation: strPtr("Launch Now")}
	return &out, nil
}

func (f *fakeStore) ExportSkus(ctx context.Context, skuIDs []string) ([]byte, error) {
	f.exported = append(f.exported, skuIDs)
	return []byte("xlsx"), nil
}

func (f *fakeStore) ExtractHeaders(ctx context.Context, filename string, contents []byte) ([]string, error) {
	return f.headers, nil
}

func (f *fakeStore) Import(ctx context.Context, filename string, contents []byte, mapping map[string]string, defaultMarket string) (importer.ImportStats, error) {
	if f.importErr != nil {
		return importer.ImportStats{}, f.importErr
	}
	f.imports++
	return importer.ImportStats{Skus: 10}, nil
}

func (f *fakeStore) ListMarkets(ctx context.Context) ([]store.Market, error) {
	return []store.Market{{MarketName: "Vietnam"}}, nil
}

func (f *fakeStore) ListChannels(ctx context.Context) ([]store.ChannelConfig, error) {
	return []store.ChannelConfig{{ChannelName: "Modern Trade"}}, nil
}

func (f *fakeStore) UpdateChannel(ctx context.Context, name string, cfg store.ChannelConfig) error {
	return nil
}

func (f *fakeStore) CTSMatrix(ctx context.Context) ([]store.CTSCell, error) {
	return nil, nil
}

func (f *fakeStore) UpdateCTS(ctx context.Context, market, channel string, totalPct float64) error {
	f.ctsUpdates = append(f.ctsUpdates, market+"/"+channel)
	return nil
}

func (f *fakeStore) GetSettings(ctx context.Context) (store.Settings, error) {
	return store.Settings{"gm_floor": 0.15}, nil
}

func (f *fakeStore) UpdateSettings(ctx context.Context, settings store.Settings) error {
	return nil
}

// fakeAudit collects audit writes in memory.
type fakeAudit struct {
	records   []audit.ImportRecord
	snapshots []audit.MetricsSnapshot
}

func (f *fakeAudit) SaveImportRecord(ctx context.Context, record *audit.ImportRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAudit) ImportHistory(ctx context.Context, limit int) ([]audit.ImportRecord, error) {
	return f.records, nil
}

func (f *fakeAudit) LatestSnapshot(ctx context.Context) (*audit.MetricsSnapshot, error) {
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	return &f.snapshots[0], nil
}

func (f *fakeAudit) SnapshotHistory(ctx context.Context, limit int) ([]audit.MetricsSnapshot, error) {
	return f.snapshots, nil
}

func testRouter(t *testing.T, fake *fakeStore) http.Handler {
	router, _ := auditedRouter(t, fake, nil)
	return router
}

func auditedRouter(t *testing.T, fake *fakeStore, trail *fakeAudit) (http.Handler, *fakeAudit) {
	t.Helper()

	cfg := &config.Config{Env: "development", LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)
	selection := portfolio.NewSelection()
	sessions := importer.NewSessions(fake, log, 0)

	// A typed nil would defeat the handlers' disabled-trail checks
	var snapshots handlers.SnapshotSource
	var auditor handlers.ImportAuditor
	if trail != nil {
		snapshots = trail
		auditor = trail
	}

	router := NewRouter(Handlers{
		Dashboard: handlers.NewDashboardHandler(fake, snapshots, log),
		Portfolio: handlers.NewPortfolioHandler(fake, selection, log),
		Sku:       handlers.NewSkuHandler(fake, selection, log),
		Config:    handlers.NewConfigHandler(fake, log),
		Import:    handlers.NewImportHandler(sessions, auditor, log, nil),
	}, log)
	return router, trail
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleSkus() []catalog.Sku {
	return []catalog.Sku{
		{
			SkuID:          "S1",
			Brand:          strPtr("Haio"),
			TargetMarket:   strPtr("Vietnam"),
			PrimaryChannel: strPtr("Modern Trade"),
			Cache: &catalog.ScoreCache{
				FinalRecommendation: strPtr("Launch Now"),
				MonthlyRevenue:      f64Ptr(100),
			},
		},
		{
			SkuID:        "S2",
			Brand:        strPtr("Greenfield"),
			TargetMarket: strPtr("Thailand"),
			Cache: &catalog.ScoreCache{
				FinalRecommendation: strPtr("Do Not Launch"),
			},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(t, &fakeStore{})
	rec := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "skudeck-api")
}

func TestGetMetrics(t *testing.T) {
	router := testRouter(t, &fakeStore{skus: sampleSkus()})
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.NoData)
	require.NotNil(t, resp.Metrics)
	assert.Equal(t, 2, resp.Metrics.TotalSkus)
	assert.Equal(t, 1, resp.Metrics.LaunchNow)
	assert.Equal(t, 100.0, resp.Metrics.TotalMonthlyRevenue)
}

func TestGetMetrics_EmptyCatalog(t *testing.T) {
	router := testRouter(t, &fakeStore{})
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NoData)
	assert.Nil(t, resp.Metrics)
}

func TestGetMetrics_StoreDown(t *testing.T) {
	fake := &fakeStore{listErr: &store.APIError{StatusCode: 503, Detail: "maintenance"}}
	router := testRouter(t, fake)
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/metrics", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintenance")
}

func TestGetPortfolio_Filtered(t *testing.T) {
	router := testRouter(t, &fakeStore{skus: sampleSkus()})
	rec := doJSON(t, router, http.MethodGet, "/api/portfolio?brand=Haio", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.PortfolioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "S1", resp.Skus[0].SkuID)

	// filter options reflect the whole catalog, not the filtered view
	assert.Equal(t, []string{"Greenfield", "Haio"}, resp.Filters.Brands)
}

func TestSelectionLifecycle(t *testing.T) {
	fake := &fakeStore{skus: sampleSkus()}
	router := testRouter(t, fake)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/selection/toggle",
		map[string]string{"sku_id": "S1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"selected":true`)

	rec = doJSON(t, router, http.MethodPut, "/api/portfolio/selection",
		map[string][]string{"sku_ids": {"S2", "S1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	// export with an empty body falls back to the selection
	rec = doJSON(t, router, http.MethodPost, "/api/skus/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.Len(t, fake.exported, 1)
	assert.Equal(t, []string{"S2", "S1"}, fake.exported[0])

	rec = doJSON(t, router, http.MethodDelete, "/api/portfolio/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/skus/export", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigPassthroughs(t *testing.T) {
	fake := &fakeStore{}
	router := testRouter(t, fake)

	rec := doJSON(t, router, http.MethodGet, "/api/markets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vietnam")

	rec = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gm_floor")

	rec = doJSON(t, router, http.MethodPut, "/api/channels/cts/Vietnam/GT",
		handlers.CTSRequest{TotalCtsPct: 0.2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Vietnam/GT"}, fake.ctsUpdates)
}

func TestUpdateSku(t *testing.T) {
	fake := &fakeStore{}
	router := testRouter(t, fake)

	rec := doJSON(t, router, http.MethodPut, "/api/skus/S9",
		catalog.Sku{SkuID: "S9", SkuName: "New Name"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "New Name", fake.updated["S9"].SkuName)
	assert.Contains(t, rec.Body.String(), "Launch Now")
}

func uploadRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "skus.xlsx")
	require.NoError(t, err)
	part.Write([]byte("xlsx-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportSessionLifecycle(t *testing.T) {
	fake := &fakeStore{headers: []string{"SKU Code", "Item Title", "Category"}}
	router := testRouter(t, fake)

	// create: upload, extract headers, automap
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.SessionID)
	assert.Equal(t, "headers_extracted", created.State)
	assert.Equal(t, "SKU Code", created.Mapping[importer.ColSkuID])
	assert.Equal(t, "Item Title", created.Mapping[importer.ColSkuName])
	assert.Equal(t, "Category", created.Mapping[importer.ColCategory])
	assert.Empty(t, created.MissingFields)

	// clear a required field, submit must fail with 422
	rec = doJSON(t, router, http.MethodPut, "/api/import/sessions/"+created.SessionID+"/mapping",
		handlers.MappingRequest{Mapping: map[string]string{importer.ColSkuID: ""}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "SKU ID")

	// fix the mapping and submit for real
	rec = doJSON(t, router, http.MethodPut, "/api/import/sessions/"+created.SessionID+"/mapping",
		handlers.MappingRequest{Mapping: map[string]string{importer.ColSkuID: "SKU Code"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"skus":10`)
	assert.Equal(t, 1, fake.imports)

	// session is discarded after a successful submit
	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportAuditTrail(t *testing.T) {
	fake := &fakeStore{headers: []string{"SKU Code", "Item Title", "Category"}}
	router, trail := auditedRouter(t, fake, &fakeAudit{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// a successful submit leaves one succeeded record behind
	require.Len(t, trail.records, 1)
	record := trail.records[0]
	assert.Equal(t, created.SessionID, record.SessionID)
	assert.Equal(t, "skus.xlsx", record.Filename)
	assert.Equal(t, audit.ImportStatusSucceeded, record.Status)
	assert.Equal(t, 10, record.Skus)
	assert.False(t, record.FinishedAt.Before(record.StartedAt))

	rec = doJSON(t, router, http.MethodGet, "/api/import/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.SessionID)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestImportAuditTrail_StoreFailure(t *testing.T) {
	fake := &fakeStore{
		headers:   []string{"SKU Code", "Item Title", "Category"},
		importErr: &store.APIError{StatusCode: 500, Detail: "parse error"},
	}
	router, trail := auditedRouter(t, fake, &fakeAudit{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Len(t, trail.records, 1)
	assert.Equal(t, audit.ImportStatusFailed, trail.records[0].Status)
	assert.Contains(t, trail.records[0].Detail, "parse error")
	assert.Zero(t, trail.records[0].Skus)
}

func TestImportAuditTrail_ValidationFailureNotRecorded(t *testing.T) {
	fake := &fakeStore{headers: []string{"Item Title"}} // no SKU id column
	router, trail := auditedRouter(t, fake, &fakeAudit{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/api/import/sessions/"+created.SessionID+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// nothing reached the store, so no attempt is recorded
	assert.Empty(t, trail.records)
}

func TestDashboardHistory(t *testing.T) {
	trail := &fakeAudit{snapshots: []audit.MetricsSnapshot{
		{TotalSkus: 12, LaunchNow: 4},
		{TotalSkus: 10, LaunchNow: 3},
	}}
	router, _ := auditedRouter(t, &fakeStore{}, trail)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Latest)
	assert.Equal(t, 12, resp.Latest.TotalSkus)
	assert.Len(t, resp.History, 2)
}

func TestHistoryEndpoints_AuditDisabled(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/import/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportSession_UnknownHeaderRejected(t *testing.T) {
	fake := &fakeStore{headers: []string{"SKU Code"}}
	router := testRouter(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPut, "/api/import/sessions/"+created.SessionID+"/mapping",
		handlers.MappingRequest{Mapping: map[string]string{importer.ColSkuName: "Nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteImportSession(t *testing.T) {
	fake := &fakeStore{headers: []string{"SKU Code"}}
	router := testRouter(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/import/sessions"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodDelete, "/api/import/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/import/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
