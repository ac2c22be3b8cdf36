package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/services"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

type AssignmentHandler struct {
	service services.SyllabusService
	logger  *utils.Logger
}

func NewAssignmentHandler(service services.SyllabusService, logger *utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger,
	}
}

// Approve persists a user-selected subset of extracted assignments. Partial
// failure is reported per item; the call only fails outright when nothing
// could be saved.
func (h *AssignmentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	resp := h.service.ApproveAssignments(r.Context(), &req)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, h.logger, status, resp)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	courseName := r.URL.Query().Get("course")
	if courseName == "" {
		respondError(w, h.logger, utils.NewBadRequestError("course query parameter is required"))
		return
	}

	assignments, err := h.service.ListAssignments(r.Context(), courseName)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, assignments)
}

// SetSubmitted flips the user-facing submitted flag. The extraction and
// upsert paths never touch this field.
func (h *AssignmentHandler) SetSubmitted(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Assignment ID is required"))
		return
	}

	var body struct {
		Submitted bool `json:"submitted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	if err := h.service.SetSubmitted(r.Context(), id, body.Submitted); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]bool{"submitted": body.Submitted})
}
