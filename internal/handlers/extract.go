package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/coursedeck/syllabus-extractor/internal/extractor"
	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/services"
	"github.com/coursedeck/syllabus-extractor/internal/sse"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

type ExtractHandler struct {
	service     services.SyllabusService
	logger      *utils.Logger
	maxFileSize int64
}

func NewExtractHandler(service services.SyllabusService, maxFileSize int64, logger *utils.Logger) *ExtractHandler {
	return &ExtractHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// Extract accepts a multipart syllabus upload and streams extraction
// progress back as Server-Sent Events. Ingress failures are rejected as
// plain JSON errors before any streaming begins; once the stream is open,
// failures arrive as a terminal error-stage event instead.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	contentType := determineContentType(header.Filename, header.Header.Get("Content-Type"))

	h.logger.Info("syllabus upload",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"determined_content_type", contentType)

	if !extractor.IsSupportedContentType(contentType) {
		respondError(w, h.logger, utils.NewBadRequestError("Only PDF, DOCX and TXT files are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds upload limit"))
		return
	}
	if len(data) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Streaming not supported"))
		return
	}

	req := &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}

	events := make(chan models.ProgressEvent, 16)
	go h.service.RunExtraction(r.Context(), req, events)

	// Single writer loop. The service closes the channel after the terminal
	// event; on a write failure we keep draining so the producer can finish,
	// after one best-effort attempt to put a terminal error on the wire.
	writeFailed := false
	for event := range events {
		if writeFailed {
			continue
		}
		if err := writer.WriteEvent(event); err != nil {
			h.logger.Error("failed to write progress event", "error", err, "stage", event.Stage)
			writeFailed = true
			if !models.IsTerminalStage(event.Stage) {
				failure := models.NewProgressEvent(models.StageError, "")
				failure.Error = "stream write failed"
				_ = writer.WriteEvent(failure)
			}
		}
	}
}

// determineContentType resolves the media type from the filename extension,
// falling back to the client-declared header.
func determineContentType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractor.MIMEPDF
	case ".docx":
		return extractor.MIMEDOCX
	case ".txt":
		return extractor.MIMETXT
	}
	return headerContentType
}
