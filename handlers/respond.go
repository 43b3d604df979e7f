package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"examprep/models"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps the domain sentinels onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoQuestionsAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrBankUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrPaperYearConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrSectionGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
