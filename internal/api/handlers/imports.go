package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/skudeck/internal/audit"
	"github.com/wonny/skudeck/internal/importer"
	"github.com/wonny/skudeck/pkg/logger"
)

// maxUploadBytes caps accepted spreadsheet uploads.
const maxUploadBytes = 20 << 20

// historyLimit caps audit history responses.
const historyLimit = 50

// ImportAuditor is the audit trail's import-record side.
type ImportAuditor interface {
	SaveImportRecord(ctx context.Context, record *audit.ImportRecord) error
	ImportHistory(ctx context.Context, limit int) ([]audit.ImportRecord, error)
}

// ImportHandler exposes the import wizard as server-side sessions
// ⭐ SSOT: 임포트 API 핸들러는 이 구조체에서만
type ImportHandler struct {
	sessions *importer.Sessions
	auditor  ImportAuditor
	logger   *logger.Logger

	// onImported runs after a successful submit, e.g. metrics refresh
	onImported func(stats importer.ImportStats)
}

// NewImportHandler creates a new import handler. auditor and onImported
// may be nil.
func NewImportHandler(sessions *importer.Sessions, auditor ImportAuditor, log *logger.Logger, onImported func(importer.ImportStats)) *ImportHandler {
	return &ImportHandler{sessions: sessions, auditor: auditor, logger: log, onImported: onImported}
}

// SessionResponse is the wizard state snapshot returned by every
// session endpoint.
type SessionResponse struct {
	SessionID     string            `json:"session_id"`
	State         string            `json:"state"`
	Filename      string            `json:"filename,omitempty"`
	Headers       []string          `json:"headers,omitempty"`
	Mapping       importer.Mapping  `json:"mapping,omitempty"`
	Schema        []importer.Column `json:"schema"`
	MissingFields []string          `json:"missing_fields"`
}

func sessionResponse(session *importer.Session) SessionResponse {
	wizard := session.Wizard
	mapping := wizard.Mapping()
	return SessionResponse{
		SessionID:     session.ID,
		State:         wizard.State().String(),
		Filename:      wizard.FileName(),
		Headers:       wizard.Headers(),
		Mapping:       mapping,
		Schema:        wizard.Schema(),
		MissingFields: importer.Validate(mapping, wizard.Schema()),
	}
}

// CreateSession starts a wizard session from an uploaded spreadsheet.
// The file goes to the store for header extraction and the canonical
// schema is auto-mapped against the returned headers.
// POST /api/import/sessions  (multipart, field "file")
func (h *ImportHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	session := h.sessions.Create()
	if err := session.Wizard.SelectFile(ctx, header.Filename, contents); err != nil {
		h.sessions.Remove(session.ID)
		respondStoreError(w, h.logger, err, "Failed to extract headers")
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse(session))
}

// MappingRequest adjusts column assignments and the market override.
type MappingRequest struct {
	Mapping       map[string]string `json:"mapping"`
	DefaultMarket *string           `json:"default_market,omitempty"`
}

// UpdateMapping applies manual mapping corrections to a session.
// An empty header clears the assignment for that canonical column.
// PUT /api/import/sessions/{id}/mapping
func (h *ImportHandler) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Import session not found")
		return
	}

	var req MappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for key, header := range req.Mapping {
		if err := session.Wizard.SetColumn(key, header); err != nil {
			switch {
			case errors.Is(err, importer.ErrUnknownKey):
				respondError(w, http.StatusBadRequest, "Unknown column key: "+key)
			case errors.Is(err, importer.ErrBadHeader):
				respondError(w, http.StatusBadRequest, "Header not in uploaded file: "+header)
			case errors.Is(err, importer.ErrNoFile):
				respondError(w, http.StatusConflict, "No file selected for this session")
			default:
				respondError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
	}

	if req.DefaultMarket != nil {
		session.Wizard.SetDefaultMarket(*req.DefaultMarket)
	}

	respondJSON(w, http.StatusOK, sessionResponse(session))
}

// SubmitResponse reports a completed import.
type SubmitResponse struct {
	Imported importer.ImportStats `json:"imported"`
}

// Submit runs the final import. Required-field validation failures come
// back as 422 with the missing labels; the session survives so the
// operator can fix the mapping and resubmit.
// POST /api/import/sessions/{id}/submit
func (h *ImportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Import session not found")
		return
	}

	stats, err := session.Wizard.Submit(r.Context())
	if err != nil {
		var validationErr *importer.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":          validationErr.Error(),
				"missing_fields": validationErr.Missing,
			})
		case errors.Is(err, importer.ErrBusy):
			respondError(w, http.StatusConflict, "Import already in progress")
		case errors.Is(err, importer.ErrNoFile):
			respondError(w, http.StatusConflict, "No file selected for this session")
		default:
			// The store rejected or lost the run; that counts as an attempt
			h.recordImport(r.Context(), session, importer.ImportStats{}, err)
			respondStoreError(w, h.logger, err, "Import failed")
		}
		return
	}

	h.recordImport(r.Context(), session, stats, nil)
	h.sessions.Remove(session.ID)
	h.logger.WithFields(map[string]interface{}{
		"session_id": session.ID,
		"skus":       stats.Skus,
	}).Info("Import completed")

	if h.onImported != nil {
		h.onImported(stats)
	}

	respondJSON(w, http.StatusOK, SubmitResponse{Imported: stats})
}

// recordImport persists one terminal import outcome. Validation failures
// are not recorded; the session stays open and nothing reached the store.
// Best-effort, like the refresh snapshot.
func (h *ImportHandler) recordImport(ctx context.Context, session *importer.Session, stats importer.ImportStats, submitErr error) {
	if h.auditor == nil {
		return
	}

	record := &audit.ImportRecord{
		SessionID:  session.ID,
		Filename:   session.Wizard.FileName(),
		StartedAt:  session.CreatedAt,
		FinishedAt: time.Now(),
		Skus:       stats.Skus,
		Status:     audit.ImportStatusSucceeded,
	}
	if submitErr != nil {
		record.Status = audit.ImportStatusFailed
		record.Detail = submitErr.Error()
	}

	if err := h.auditor.SaveImportRecord(ctx, record); err != nil {
		h.logger.WithError(err).Warn("Failed to save import record")
	}
}

// History returns recent import attempts from the audit trail
// GET /api/import/history
func (h *ImportHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		respondError(w, http.StatusNotFound, "Audit trail not enabled")
		return
	}

	records, err := h.auditor.ImportHistory(r.Context(), historyLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load import history")
		respondError(w, http.StatusInternalServerError, "Failed to load import history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imports": records,
		"total":   len(records),
	})
}

// DeleteSession cancels the wizard and discards the session
// DELETE /api/import/sessions/{id}
func (h *ImportHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Import session not found")
		return
	}

	if err := session.Wizard.Cancel(); err != nil {
		respondError(w, http.StatusConflict, "Import in progress, cannot cancel")
		return
	}

	h.sessions.Remove(id)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session discarded"})
}
