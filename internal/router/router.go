package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/handlers"
	"github.com/BerylCAtieno/cheatsheet-api/internal/middleware"
	"github.com/BerylCAtieno/cheatsheet-api/internal/services"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

type Dependencies struct {
	Analysis       services.AnalysisService
	Summaries      services.SummaryService
	Identities     *auth.Resolver
	MaxMemory      int64
	AllowedOrigins []string
	Logger         *utils.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	logger := deps.Logger

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(middleware.Recovery(logger))

	analyzeHandler := handlers.NewAnalyzeHandler(deps.Analysis, deps.MaxMemory, logger)
	summaryHandler := handlers.NewSummaryHandler(deps.Summaries, deps.Identities, logger)

	api := r.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/analyze", analyzeHandler.Analyze).Methods(http.MethodPost, http.MethodOptions)

	// Fixed paths go before /summaries/{id}.
	api.HandleFunc("/summaries", summaryHandler.List).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/summaries/export.xlsx", summaryHandler.ExportHistory).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/summaries/stream", summaryHandler.Stream).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/summaries/{id}", summaryHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/summaries/{id}/export", summaryHandler.Export).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/summaries/{id}/document", summaryHandler.Document).Methods(http.MethodGet, http.MethodOptions)

	return r
}
