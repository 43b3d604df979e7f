package main

import (
	"fmt"
	"log"
	"net/http"

	"examprep/config"
	"examprep/db"
	"examprep/handlers"
	"examprep/services"
	"examprep/services/genpaper"
	"examprep/services/grading"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	questionRepo, err := db.NewPostgresQuestionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize question database: %v", err)
	}
	defer questionRepo.Close()

	sessionRepo, err := db.NewPostgresSessionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize session database: %v", err)
	}
	defer sessionRepo.Close()

	weakTopicRepo, err := db.NewPostgresWeakTopicRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize weak-topic database: %v", err)
	}
	defer weakTopicRepo.Close()

	gradingService, err := grading.NewService(cfg.AnthropicAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize grading service: %v", err)
	}

	// Paper generation is optional; without an OpenAI key the app still
	// serves bank-only practice and mock papers.
	var genpaperService *genpaper.Service
	if cfg.OpenAIAPIKey != "" {
		genpaperService, err = genpaper.NewService(cfg.OpenAIAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize paper generation service: %v", err)
		}
	} else {
		log.Printf("[INFO] OPENAI_API_KEY not set, paper generation disabled")
	}

	opts := services.DefaultOptions()
	assembler := services.NewAssemblerService(questionRepo, opts)
	grader := services.NewGraderService(gradingService)
	aggregator := services.NewAggregatorService(opts)
	tracker := services.NewTrackerService(weakTopicRepo, opts)

	var generator services.SimilarQuestionGenerator
	if genpaperService != nil {
		generator = genpaperService
	}
	sessionService := services.NewSessionService(assembler, grader, aggregator, tracker, sessionRepo, generator)

	pyqHandler := handlers.NewPYQHandler(questionRepo)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	paperHandler := handlers.NewPaperHandler(assembler, genpaperService, questionRepo)
	progressHandler := handlers.NewProgressHandler(tracker, sessionRepo)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	pyqHandler.RegisterRoutes(router)
	sessionHandler.RegisterRoutes(router)
	paperHandler.RegisterRoutes(router)
	progressHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
