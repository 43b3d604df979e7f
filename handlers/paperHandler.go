package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"examprep/db"
	"examprep/models"
	"examprep/services"
	"examprep/services/genpaper"
)

// PaperHandler exposes mock-paper assembly and AI paper generation.
type PaperHandler struct {
	assembler    *services.AssemblerService
	generator    *genpaper.Service
	questionRepo db.QuestionRepository
}

func NewPaperHandler(assembler *services.AssemblerService, generator *genpaper.Service, questionRepo db.QuestionRepository) *PaperHandler {
	return &PaperHandler{assembler: assembler, generator: generator, questionRepo: questionRepo}
}

func (h *PaperHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/papers/structure/{subject}", h.GetStructure).Methods("GET")
	router.HandleFunc("/papers/mock", h.AssembleMock).Methods("POST")
	router.HandleFunc("/papers/generate", h.GeneratePaper).Methods("POST")
	router.HandleFunc("/papers/generate-section", h.GenerateSection).Methods("POST")
	router.HandleFunc("/papers", h.SavePaper).Methods("POST")
}

func (h *PaperHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	structure, err := services.PaperStructureFor(mux.Vars(r)["subject"])
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, structure)
}

type paperRequest struct {
	Subject string `json:"subject"`
	Section string `json:"section,omitempty"`
}

func (h *PaperHandler) AssembleMock(w http.ResponseWriter, r *http.Request) {
	var req paperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !services.IsValidSubject(req.Subject) {
		writeErrorResponse(w, http.StatusBadRequest, "Unknown subject")
		return
	}

	questions, err := h.assembler.AssembleMockPaper(r.Context(), req.Subject)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *PaperHandler) GeneratePaper(w http.ResponseWriter, r *http.Request) {
	var req paperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !services.IsValidSubject(req.Subject) {
		writeErrorResponse(w, http.StatusBadRequest, "Unknown subject")
		return
	}
	if h.generator == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Paper generation is not configured")
		return
	}

	bundles, err := h.assembler.BuildPaperBundles(r.Context(), req.Subject)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	outcomes := h.generator.GeneratePaper(r.Context(), req.Subject, bundles)

	// Failed sections come back with an error message and stay
	// retryable through the generate-section endpoint.
	type sectionView struct {
		Section   string            `json:"section"`
		Questions []models.Question `json:"questions,omitempty"`
		Error     string            `json:"error,omitempty"`
	}
	views := make([]sectionView, len(outcomes))
	for i, outcome := range outcomes {
		views[i] = sectionView{Section: outcome.Section, Questions: outcome.Questions}
		if outcome.Err != nil {
			views[i].Error = outcome.Err.Error()
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"sections": views})
}

func (h *PaperHandler) GenerateSection(w http.ResponseWriter, r *http.Request) {
	var req paperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !services.IsValidSubject(req.Subject) {
		writeErrorResponse(w, http.StatusBadRequest, "Unknown subject")
		return
	}
	if req.Section == "" {
		writeErrorResponse(w, http.StatusBadRequest, "section is required")
		return
	}
	if h.generator == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Paper generation is not configured")
		return
	}

	bundle, err := h.assembler.BuildSingleSectionBundle(r.Context(), req.Subject, req.Section)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	questions, err := h.generator.GenerateSection(r.Context(), req.Subject, bundle)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *PaperHandler) SavePaper(w http.ResponseWriter, r *http.Request) {
	var paper models.Paper
	if err := json.NewDecoder(r.Body).Decode(&paper); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if paper.ID == "" || paper.Subject == "" || paper.Year == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "id, subject and year are required")
		return
	}

	if err := h.questionRepo.SavePaper(&paper); err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}
	writeJSONResponse(w, http.StatusCreated, paper)
}
