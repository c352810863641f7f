// Package handlers implements the HTTP handlers behind the BFF routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondStoreError maps remote store failures onto BFF status codes.
// Store API errors keep their status so the frontend sees the same
// contract it would talking to the store directly.
func respondStoreError(w http.ResponseWriter, log *logger.Logger, err error, message string) {
	log.WithError(err).Error(message)

	var apiErr *store.APIError
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.StatusCode, apiErr.Detail)
		return
	}
	if errors.Is(err, store.ErrInvalidResponse) {
		respondError(w, http.StatusBadGateway, "SKU store returned an invalid response")
		return
	}
	respondError(w, http.StatusBadGateway, message)
}
