package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

// fakeUploadService is a scriptable UploadService for wizard tests
type fakeUploadService struct {
	headers    []string
	headersErr error

	stats     ImportStats
	importErr error

	lastMapping map[string]string
	lastMarket  string
	importCalls int
}

func (f *fakeUploadService) ExtractHeaders(_ context.Context, _ string, _ []byte) ([]string, error) {
	if f.headersErr != nil {
		return nil, f.headersErr
	}
	return f.headers, nil
}

func (f *fakeUploadService) Import(_ context.Context, _ string, _ []byte, mapping map[string]string, defaultMarket string) (ImportStats, error) {
	f.importCalls++
	f.lastMapping = mapping
	f.lastMarket = defaultMarket
	if f.importErr != nil {
		return ImportStats{}, f.importErr
	}
	return f.stats, nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestWizard_SelectFileHappyPath(t *testing.T) {
	svc := &fakeUploadService{headers: []string{"SKU Code", "Item Title", "Category"}}
	w := NewWizard(svc, testLogger())

	require.Equal(t, StateIdle, w.State())

	err := w.SelectFile(context.Background(), "skus.xlsx", []byte("xlsx-bytes"))
	require.NoError(t, err)

	assert.Equal(t, StateHeadersExtracted, w.State())
	assert.Equal(t, "skus.xlsx", w.FileName())
	assert.Equal(t, []string{"SKU Code", "Item Title", "Category"}, w.Headers())

	// Mapping is initialized automatically on entry
	mapping := w.Mapping()
	assert.Equal(t, "SKU Code", mapping[ColSkuID])
	assert.Equal(t, "Item Title", mapping[ColSkuName])
	assert.Equal(t, "Category", mapping[ColCategory])
}

func TestWizard_SelectFileFailureClearsSelection(t *testing.T) {
	svc := &fakeUploadService{headersErr: errors.New("not a spreadsheet")}
	w := NewWizard(svc, testLogger())

	err := w.SelectFile(context.Background(), "broken.xlsx", []byte("junk"))
	require.Error(t, err)

	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.FileName())
	assert.Empty(t, w.Headers())
}

func TestWizard_SelectFileTwiceRejected(t *testing.T) {
	svc := &fakeUploadService{headers: []string{"SKU ID", "SKU Name", "Category"}}
	w := NewWizard(svc, testLogger())

	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", nil))
	err := w.SelectFile(context.Background(), "b.xlsx", nil)
	assert.ErrorIs(t, err, ErrFileSelected)
}

func TestWizard_SetColumn(t *testing.T) {
	svc := &fakeUploadService{headers: []string{"SKU ID", "SKU Name", "Cat", "Extra"}}
	w := NewWizard(svc, testLogger())
	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", nil))

	// Manual mapping of a column the resolver left unmapped
	require.NoError(t, w.SetColumn(ColCategory, "Cat"))
	assert.Equal(t, "Cat", w.Mapping()[ColCategory])

	// Clearing a mapping
	require.NoError(t, w.SetColumn(ColCategory, ""))
	_, ok := w.Mapping()[ColCategory]
	assert.False(t, ok)

	// Unknown canonical key
	assert.ErrorIs(t, w.SetColumn("Nope", "Extra"), ErrUnknownKey)

	// Header not present in the file
	assert.ErrorIs(t, w.SetColumn(ColCategory, "Ghost Column"), ErrBadHeader)
}

func TestWizard_SetColumnRequiresHeaders(t *testing.T) {
	w := NewWizard(&fakeUploadService{}, testLogger())
	assert.ErrorIs(t, w.SetColumn(ColCategory, "Cat"), ErrNoFile)
}

func TestWizard_SubmitBlockedByValidation(t *testing.T) {
	// "Cat" does not exact-match Category and gets no fallback
	svc := &fakeUploadService{headers: []string{"SKU ID", "SKU Name", "Cat"}}
	w := NewWizard(svc, testLogger())
	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", nil))

	_, err := w.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Category"}, verr.Missing)

	// State unchanged, nothing submitted
	assert.Equal(t, StateHeadersExtracted, w.State())
	assert.Zero(t, svc.importCalls)
}

func TestWizard_SubmitSuccessResetsToIdle(t *testing.T) {
	svc := &fakeUploadService{
		headers: []string{"SKU ID", "SKU Name", "Category"},
		stats:   ImportStats{Skus: 42},
	}
	w := NewWizard(svc, testLogger())
	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", []byte("data")))
	w.SetDefaultMarket("Vietnam")

	stats, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, stats.Skus)
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.FileName())

	// The global market override rides along with the submission
	assert.Equal(t, "Vietnam", svc.lastMarket)
	assert.Equal(t, "SKU ID", svc.lastMapping[ColSkuID])
}

func TestWizard_SubmitFailurePreservesSession(t *testing.T) {
	svc := &fakeUploadService{
		headers:   []string{"SKU ID", "SKU Name", "Category"},
		importErr: errors.New("store unavailable"),
	}
	w := NewWizard(svc, testLogger())
	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", []byte("data")))

	_, err := w.Submit(context.Background())
	require.Error(t, err)

	// Back on the mapping view with everything intact for a retry
	assert.Equal(t, StateHeadersExtracted, w.State())
	assert.Equal(t, "a.xlsx", w.FileName())
	assert.NotEmpty(t, w.Mapping())

	// Retry succeeds once the store recovers
	svc.importErr = nil
	svc.stats = ImportStats{Skus: 7}
	stats, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Skus)
	assert.Equal(t, StateIdle, w.State())
}

func TestWizard_SubmitWithoutFile(t *testing.T) {
	w := NewWizard(&fakeUploadService{}, testLogger())
	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestWizard_CancelFromMappingView(t *testing.T) {
	svc := &fakeUploadService{headers: []string{"SKU ID", "SKU Name", "Category"}}
	w := NewWizard(svc, testLogger())
	require.NoError(t, w.SelectFile(context.Background(), "a.xlsx", nil))

	require.NoError(t, w.Cancel())
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.FileName())
	assert.Empty(t, w.Mapping())
}

func TestSessions(t *testing.T) {
	svc := &fakeUploadService{headers: []string{"SKU ID", "SKU Name", "Category"}}
	registry := NewSessions(svc, testLogger(), 0)

	session := registry.Create()
	require.NotEmpty(t, session.ID)
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = registry.Get("no-such-id")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	registry.Remove(session.ID)
	assert.Zero(t, registry.Count())
}
