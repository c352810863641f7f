package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wonny/skudeck/pkg/logger"
)

// State is the wizard's explicit step. The legal transitions are
// Idle → HeadersExtracted → Importing → Idle (success) and
// Importing → HeadersExtracted (remote failure, file/mapping preserved).
// Cancellation from any state returns to Idle.
type State int

const (
	StateIdle State = iota
	StateHeadersExtracted
	StateImporting
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeadersExtracted:
		return "headers_extracted"
	case StateImporting:
		return "importing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Wizard state errors
var (
	ErrBusy         = errors.New("an upload request is already outstanding")
	ErrNoFile       = errors.New("no file selected")
	ErrFileSelected = errors.New("a file is already selected; cancel first")
	ErrUnknownKey   = errors.New("unknown canonical column key")
	ErrBadHeader    = errors.New("header not present in the uploaded file")
)

// ValidationError reports required columns left unmapped, blocking submission
type ValidationError struct {
	Missing []string // display labels, schema order
}

func (e *ValidationError) Error() string {
	return "please map all required fields: " + strings.Join(e.Missing, ", ")
}

// ImportStats is the remote import service's summary of a completed import
type ImportStats struct {
	Skus int `json:"skus"`
}

// UploadService is the slice of the remote store the wizard drives
type UploadService interface {
	// ExtractHeaders submits the raw file and returns its column headers
	ExtractHeaders(ctx context.Context, filename string, contents []byte) ([]string, error)

	// Import submits the file with the confirmed mapping. A non-empty
	// defaultMarket overrides any mapped per-row target market uniformly.
	Import(ctx context.Context, filename string, contents []byte, mapping map[string]string, defaultMarket string) (ImportStats, error)
}

// Wizard sequences header extraction, mapping confirmation, and import
// submission for one operator session.
// ⭐ SSOT: 임포트 세션 상태 전이는 이 타입에서만
type Wizard struct {
	svc    UploadService
	schema []Column
	logger *logger.Logger

	mu            sync.Mutex
	state         State
	busy          bool
	fileName      string
	fileContents  []byte
	headers       []string
	mapping       Mapping
	defaultMarket string
}

// NewWizard creates a wizard in the Idle state
func NewWizard(svc UploadService, log *logger.Logger) *Wizard {
	return &Wizard{
		svc:    svc,
		schema: CanonicalSchema,
		logger: log,
		state:  StateIdle,
	}
}

// State returns the current wizard state
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// FileName returns the selected file's name, empty when Idle
func (w *Wizard) FileName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fileName
}

// Headers returns the raw headers extracted from the selected file
func (w *Wizard) Headers() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.headers))
	copy(out, w.headers)
	return out
}

// Mapping returns a copy of the current column mapping
func (w *Wizard) Mapping() Mapping {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(Mapping, len(w.mapping))
	for k, v := range w.mapping {
		out[k] = v
	}
	return out
}

// Schema returns the canonical schema the wizard validates against
func (w *Wizard) Schema() []Column {
	return w.schema
}

// SelectFile submits the file for header extraction and, on success,
// initializes the mapping via AutoMap and moves to HeadersExtracted.
// On extraction failure the file selection is cleared and the wizard
// stays Idle.
func (w *Wizard) SelectFile(ctx context.Context, name string, contents []byte) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.state != StateIdle {
		w.mu.Unlock()
		return ErrFileSelected
	}
	w.busy = true
	w.mu.Unlock()

	headers, err := w.svc.ExtractHeaders(ctx, name, contents)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		// Stay Idle, discard the selection
		w.reset()
		w.logger.WithError(err).WithField("file", name).Error("Header extraction failed")
		return fmt.Errorf("extract headers: %w", err)
	}

	w.fileName = name
	w.fileContents = contents
	w.headers = headers
	w.mapping = AutoMap(headers, w.schema)
	w.state = StateHeadersExtracted

	w.logger.WithFields(map[string]interface{}{
		"file":    name,
		"headers": len(headers),
		"mapped":  len(w.mapping),
	}).Info("Headers extracted, mapping initialized")

	return nil
}

// SetColumn maps a canonical key to a raw header. An empty header clears
// the mapping for that key. Only legal while headers are extracted.
func (w *Wizard) SetColumn(key, header string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateHeadersExtracted {
		return ErrNoFile
	}
	if !w.knownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if header == "" {
		delete(w.mapping, key)
		return nil
	}

	for _, h := range w.headers {
		if h == header {
			w.mapping[key] = header
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrBadHeader, header)
}

// SetDefaultMarket sets the global target-market override. Applied uniformly
// to every imported row, superseding any mapped per-row value.
func (w *Wizard) SetDefaultMarket(market string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.defaultMarket = market
}

// Submit validates the mapping and, if clean, runs the remote import.
// Violations return a *ValidationError and leave the state unchanged.
// A remote failure returns to HeadersExtracted with file and mapping
// preserved so the operator can correct and retry.
func (w *Wizard) Submit(ctx context.Context) (ImportStats, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ImportStats{}, ErrBusy
	}
	if w.state != StateHeadersExtracted {
		w.mu.Unlock()
		return ImportStats{}, ErrNoFile
	}

	if missing := Validate(w.mapping, w.schema); len(missing) > 0 {
		w.mu.Unlock()
		return ImportStats{}, &ValidationError{Missing: missing}
	}

	w.busy = true
	w.state = StateImporting
	name := w.fileName
	contents := w.fileContents
	mapping := make(map[string]string, len(w.mapping))
	for k, v := range w.mapping {
		mapping[k] = v
	}
	market := w.defaultMarket
	w.mu.Unlock()

	stats, err := w.svc.Import(ctx, name, contents, mapping, market)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		// Back to the mapping view; keep file and mapping for retry
		w.state = StateHeadersExtracted
		w.logger.WithError(err).WithField("file", name).Error("Import failed")
		return ImportStats{}, fmt.Errorf("import: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"file": name,
		"skus": stats.Skus,
	}).Info("Import completed")

	w.reset()
	return stats, nil
}

// Cancel discards the file and mapping and returns to Idle.
// Rejected while a remote call is outstanding.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return ErrBusy
	}
	w.reset()
	return nil
}

// reset clears session state. Caller holds the lock.
func (w *Wizard) reset() {
	w.state = StateIdle
	w.fileName = ""
	w.fileContents = nil
	w.headers = nil
	w.mapping = nil
	w.defaultMarket = ""
}

func (w *Wizard) knownKey(key string) bool {
	for _, col := range w.schema {
		if col.Key == key {
			return true
		}
	}
	return false
}
