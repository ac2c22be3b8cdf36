package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coursedeck/syllabus-extractor/internal/analyzer"
	"github.com/coursedeck/syllabus-extractor/internal/config"
	"github.com/coursedeck/syllabus-extractor/internal/extractor"
	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/pipeline"
	"github.com/coursedeck/syllabus-extractor/internal/repository"
	"github.com/coursedeck/syllabus-extractor/internal/storage"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

type SyllabusService interface {
	// RunExtraction drives one upload through the extraction pipeline,
	// sending progress events into events. It always ends with exactly one
	// terminal event and then closes the channel.
	RunExtraction(ctx context.Context, req *models.UploadRequest, events chan<- models.ProgressEvent)
	ApproveAssignments(ctx context.Context, req *models.ApproveRequest) *models.ApproveResponse
	ListAssignments(ctx context.Context, courseName string) ([]models.Assignment, error)
	SetSubmitted(ctx context.Context, id string, submitted bool) error
}

type syllabusService struct {
	repo     repository.AssignmentRepository
	storage  storage.Storage
	pipeline *pipeline.Pipeline
	logger   *utils.Logger
}

// NewService wires the extraction pipeline. Collaborators are injected so
// tests can substitute the extractor and storage.
func NewService(repo repository.AssignmentRepository, store storage.Storage, ext analyzer.Extractor, cfg *config.Config, logger *utils.Logger) SyllabusService {
	return &syllabusService{
		repo:     repo,
		storage:  store,
		pipeline: pipeline.New(ext, cfg.ExtractTimeout, logger),
		logger:   logger,
	}
}

func (s *syllabusService) RunExtraction(ctx context.Context, req *models.UploadRequest, events chan<- models.ProgressEvent) {
	defer close(events)

	events <- models.NewProgressEvent(models.StageUploading, "Reading document")

	text, err := extractor.ExtractText(req.File, req.ContentType)
	if err != nil {
		s.logger.Error("failed to extract document text", "error", err, "filename", req.Filename, "content_type", req.ContentType)
		events <- errorEvent(fmt.Sprintf("could not read document: %v", err))
		return
	}

	key := fmt.Sprintf("syllabi/%s/%s", utils.GenerateID(), req.Filename)
	if err := s.storage.Upload(ctx, key, req.File, req.ContentType); err != nil {
		s.logger.Error("failed to store document", "error", err, "key", key)
		events <- errorEvent("could not store document")
		return
	}

	s.logger.Info("starting extraction", "filename", req.Filename, "text_length", len(text), "key", key)
	s.pipeline.Run(ctx, text, events)
}

func (s *syllabusService) ApproveAssignments(ctx context.Context, req *models.ApproveRequest) *models.ApproveResponse {
	if strings.TrimSpace(req.CourseName) == "" {
		return &models.ApproveResponse{Success: false, Error: "course_name is required"}
	}
	if len(req.Assignments) == 0 {
		return &models.ApproveResponse{Success: false, Error: "no assignments selected"}
	}

	var itemErrors []string
	count := 0

	// Each item is its own write; one bad item must not roll back the rest.
	for _, draft := range req.Assignments {
		due, err := combineDueDateTime(draft.DueDate, draft.DueTime)
		if err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("%s: %v", draft.Name, err))
			continue
		}

		a := &models.Assignment{
			ID:             utils.GenerateID(),
			CourseName:     req.CourseName,
			AssignmentName: draft.Name,
			DueDateTime:    due,
		}
		if desc := strings.TrimSpace(draft.Description); desc != "" {
			a.Description = &desc
		}

		if err := s.repo.Upsert(ctx, a); err != nil {
			s.logger.Error("failed to upsert assignment", "error", err, "course", req.CourseName, "assignment", draft.Name)
			itemErrors = append(itemErrors, fmt.Sprintf("%s: could not be saved", draft.Name))
			continue
		}
		count++
	}

	resp := &models.ApproveResponse{
		Success: true,
		Count:   count,
		Errors:  itemErrors,
	}
	if count == 0 && len(itemErrors) > 0 {
		resp.Success = false
		resp.Error = "no assignments could be saved"
	}

	s.logger.Info("assignments approved", "course", req.CourseName, "saved", count, "failed", len(itemErrors))
	return resp
}

func (s *syllabusService) ListAssignments(ctx context.Context, courseName string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListByCourse(ctx, courseName)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "course", courseName)
		return nil, utils.NewInternalError("Failed to list assignments")
	}
	return assignments, nil
}

func (s *syllabusService) SetSubmitted(ctx context.Context, id string, submitted bool) error {
	err := s.repo.SetSubmitted(ctx, id, submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewNotFoundError("Assignment not found")
	}
	if err != nil {
		s.logger.Error("failed to update submitted flag", "error", err, "id", id)
		return utils.NewInternalError("Failed to update assignment")
	}
	return nil
}

// combineDueDateTime merges a draft's date and optional time into one
// timestamp. This is the single point where a missing or null due time
// becomes end of day; earlier pipeline stages keep "unspecified" intact.
func combineDueDateTime(dueDate string, dueTime *string) (time.Time, error) {
	clock := "23:59"
	if dueTime != nil && strings.TrimSpace(*dueTime) != "" {
		clock = strings.TrimSpace(*dueTime)
	}

	due, err := time.ParseInLocation("2006-01-02 15:04", dueDate+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date/time %q %q", dueDate, clock)
	}
	return due, nil
}

func errorEvent(message string) models.ProgressEvent {
	event := models.NewProgressEvent(models.StageError, "")
	event.Error = message
	return event
}
