package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"examprep/db"
	"examprep/services"
)

// ProgressHandler serves the dashboard views: weak topics and session
// history.
type ProgressHandler struct {
	tracker     *services.TrackerService
	sessionRepo db.SessionRepository
}

func NewProgressHandler(tracker *services.TrackerService, sessionRepo db.SessionRepository) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, sessionRepo: sessionRepo}
}

func (h *ProgressHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/progress/{subject}/weak-topics", h.GetWeakTopics).Methods("GET")
	router.HandleFunc("/progress/{subject}/history", h.GetHistory).Methods("GET")
}

func (h *ProgressHandler) GetWeakTopics(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.tracker.TopWeakTopics(subject, limit)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load weak topics")
		return
	}
	writeJSONResponse(w, http.StatusOK, records)
}

func (h *ProgressHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.sessionRepo.ListBySubject(subject, limit)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load session history")
		return
	}
	writeJSONResponse(w, http.StatusOK, records)
}
