package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coursedeck/syllabus-extractor/internal/handlers"
	"github.com/coursedeck/syllabus-extractor/internal/middleware"
	"github.com/coursedeck/syllabus-extractor/internal/services"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

func NewRouter(service services.SyllabusService, maxFileSize int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	extractHandler := handlers.NewExtractHandler(service, maxFileSize, logger)
	assignmentHandler := handlers.NewAssignmentHandler(service, logger)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/upload/extract", extractHandler.Extract).Methods(http.MethodPost)
	api.HandleFunc("/assignments/approve", assignmentHandler.Approve).Methods(http.MethodPost)
	api.HandleFunc("/assignments", assignmentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/assignments/{id}/submitted", assignmentHandler.SetSubmitted).Methods(http.MethodPatch)

	return r
}
