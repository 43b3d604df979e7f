package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"examprep/models"
	"examprep/services"
)

// SessionHandler exposes the practice-session lifecycle over HTTP.
type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions", h.StartSession).Methods("POST")
	router.HandleFunc("/sessions/weak-topics", h.StartWeakTopicSession).Methods("POST")
	router.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	router.HandleFunc("/sessions/{id}/answers", h.RecordAnswer).Methods("POST")
	router.HandleFunc("/sessions/{id}/flag", h.ToggleFlag).Methods("POST")
	router.HandleFunc("/sessions/{id}/submit", h.Submit).Methods("POST")
	router.HandleFunc("/sessions/{id}/results", h.GetResults).Methods("GET")
	router.HandleFunc("/sessions/{id}/retry-wrong", h.RetryWrong).Methods("POST")
	router.HandleFunc("/sessions/{id}", h.Abandon).Methods("DELETE")
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var cfg models.SessionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	session, err := h.sessionService.StartSession(r.Context(), cfg)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusCreated, session)
}

type weakTopicSessionRequest struct {
	Subject       string `json:"subject"`
	QuestionCount int    `json:"question_count"`
}

func (h *SessionHandler) StartWeakTopicSession(w http.ResponseWriter, r *http.Request) {
	var req weakTopicSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	session, err := h.sessionService.StartWeakTopicSession(r.Context(), req.Subject, req.QuestionCount)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.GetSession(mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, session)
}

// recordAnswerRequest mirrors the flat Answer wire shape; exactly one
// payload field should be set.
type recordAnswerRequest struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option,omitempty"`
	TextAnswer     string `json:"text_answer,omitempty"`
	CodeAnswer     string `json:"code_answer,omitempty"`
	CodeLanguage   string `json:"code_language,omitempty"`
	ImageBase64    string `json:"image_base64,omitempty"`
}

func (req *recordAnswerRequest) payload() models.AnswerPayload {
	switch {
	case req.ImageBase64 != "":
		return models.ImageAnswer{ImageBase64: req.ImageBase64}
	case req.CodeAnswer != "":
		return models.CodeAnswer{Code: req.CodeAnswer, Language: req.CodeLanguage}
	case req.TextAnswer != "":
		return models.TextAnswer{Text: req.TextAnswer}
	case req.SelectedOption != "":
		return models.OptionAnswer{Selected: req.SelectedOption}
	default:
		return nil
	}
}

func (h *SessionHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req recordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	if err := h.sessionService.RecordAnswer(sessionID, req.QuestionID, req.payload()); err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleFlagRequest struct {
	QuestionID string `json:"question_id"`
}

func (h *SessionHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req toggleFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	flagged, err := h.sessionService.ToggleFlag(sessionID, req.QuestionID)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]bool{"is_flagged": flagged})
}

func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	results, err := h.sessionService.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, results)
}

func (h *SessionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.sessionService.Results(mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, results)
}

func (h *SessionHandler) RetryWrong(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.RetryWrong(mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusCreated, session)
}

func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.Abandon(mux.Vars(r)["id"]); err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
