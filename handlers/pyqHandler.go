package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"examprep/db"
	"examprep/models"
)

// PYQHandler serves the question-bank browse and index endpoints.
type PYQHandler struct {
	questionRepo db.QuestionRepository
}

func NewPYQHandler(questionRepo db.QuestionRepository) *PYQHandler {
	return &PYQHandler{questionRepo: questionRepo}
}

func (h *PYQHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/pyq", h.GetSubjectIndex).Methods("GET")
	router.HandleFunc("/pyq/{subject}/questions", h.GetQuestions).Methods("GET")
	router.HandleFunc("/pyq/{subject}/papers", h.GetPapers).Methods("GET")
}

func (h *PYQHandler) GetSubjectIndex(w http.ResponseWriter, r *http.Request) {
	index, err := h.questionRepo.SubjectIndex()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load subject index")
		return
	}
	writeJSONResponse(w, http.StatusOK, index)
}

func (h *PYQHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]

	filters, err := parseQuestionFilters(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.questionRepo.FetchQuestions(subject, filters)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load questions")
		return
	}
	writeJSONResponse(w, http.StatusOK, questions)
}

func (h *PYQHandler) GetPapers(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]

	papers, err := h.questionRepo.FetchPapers(subject)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load papers")
		return
	}
	writeJSONResponse(w, http.StatusOK, papers)
}

func parseQuestionFilters(r *http.Request) (models.QuestionFilters, error) {
	query := r.URL.Query()
	filters := models.QuestionFilters{
		Topic:   query.Get("topic"),
		Section: query.Get("section"),
	}

	var err error
	if filters.Marks, err = parseIntList(query.Get("marks")); err != nil {
		return filters, err
	}
	if filters.Years, err = parseIntList(query.Get("years")); err != nil {
		return filters, err
	}
	return filters, nil
}

// parseIntList parses a comma-separated query value like "1,2,5".
func parseIntList(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
