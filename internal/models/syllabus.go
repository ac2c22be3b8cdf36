package models

import (
	"time"
)

// Pipeline stages in expected order of occurrence. Error is reachable from
// any non-terminal stage; Complete and Error are terminal.
const (
	StageUploading  = "uploading"
	StageAnalyzing  = "analyzing"
	StageExtracting = "extracting"
	StageValidating = "validating"
	StageComplete   = "complete"
	StageError      = "error"
)

// IsTerminalStage reports whether a stage ends the event stream.
func IsTerminalStage(stage string) bool {
	return stage == StageComplete || stage == StageError
}

// ProgressEvent is one frame of the extraction event stream. Exactly one
// event carries Data (the accepted result); zero or more carry PartialData.
type ProgressEvent struct {
	Stage       string             `json:"stage"`
	Message     string             `json:"message,omitempty"`
	Data        *SyllabusStructure `json:"data,omitempty"`
	PartialData *SyllabusStructure `json:"partialData,omitempty"`
	Error       string             `json:"error,omitempty"`
	Timestamp   int64              `json:"timestamp"`
}

// NewProgressEvent stamps a bare stage/message event with the current time.
func NewProgressEvent(stage, message string) ProgressEvent {
	return ProgressEvent{Stage: stage, Message: message, Timestamp: time.Now().UnixMilli()}
}

// SyllabusStructure is the validated shape extracted from a syllabus.
type SyllabusStructure struct {
	Course      string            `json:"course"`
	Assignments []AssignmentDraft `json:"assignments"`
}

// AssignmentDraft is one extracted assignment, not yet persisted.
// DueTime is a pointer because "no due time given" and "invalid due time"
// are different things; the end-of-day default is applied only at persistence.
type AssignmentDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	DueDate     string  `json:"due_date"`
	DueTime     *string `json:"due_time"`
}

// Assignment is a persisted schedule record. (CourseName, AssignmentName)
// is the dedup key; colliding writes update in place.
type Assignment struct {
	ID               string    `json:"id" db:"id"`
	CourseName       string    `json:"course_name" db:"course_name"`
	AssignmentName   string    `json:"assignment_name" db:"assignment_name"`
	Description      *string   `json:"description,omitempty" db:"description"`
	DueDateTime      time.Time `json:"due_date_time" db:"due_date_time"`
	NotificationSent bool      `json:"notification_sent" db:"notification_sent"`
	Submitted        bool      `json:"submitted" db:"submitted"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type ApproveRequest struct {
	CourseName  string            `json:"course_name"`
	Assignments []AssignmentDraft `json:"assignments"`
}

type ApproveResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}
