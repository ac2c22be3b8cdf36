// Package pipeline drives one extraction request through its stages:
// analyzing -> extracting -> validating, with at most one automatic retry,
// ending in exactly one terminal complete or error event.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursedeck/syllabus-extractor/internal/analyzer"
	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
	"github.com/coursedeck/syllabus-extractor/internal/validator"
)

// maxRetries is the number of automatic re-invocations after a failed
// attempt. Bounded to keep worst-case latency and cost predictable.
const maxRetries = 1

type Pipeline struct {
	extractor analyzer.Extractor
	timeout   time.Duration
	logger    *utils.Logger
}

func New(extractor analyzer.Extractor, timeout time.Duration, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run extracts a syllabus structure from document text, sending progress
// events into emit. It sends exactly one terminal event (complete or error)
// and returns after sending it. It never closes the channel; the caller owns
// channel lifetime.
func (p *Pipeline) Run(ctx context.Context, text string, emit chan<- models.ProgressEvent) {
	var feedback string
	var lastFailure error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt == 0 {
			p.send(emit, models.NewProgressEvent(models.StageAnalyzing, "Analyzing document"))
		} else {
			p.logger.Warn("retrying extraction", "attempt", attempt, "reason", lastFailure.Error())
			p.send(emit, models.NewProgressEvent(models.StageAnalyzing, "Retrying extraction"))
		}

		raw, err := p.invoke(ctx, text, feedback, attempt, emit)
		if err != nil {
			lastFailure = &UpstreamError{Err: err}
			feedback = lastFailure.Error()
			continue
		}

		p.send(emit, models.NewProgressEvent(models.StageValidating, "Validating extracted data"))

		result, defects, parseErr := validator.Validate(raw)
		switch {
		case parseErr != nil:
			lastFailure = &ParseError{Excerpt: excerpt(raw)}
			feedback = "the response was not valid JSON"
		case len(defects) > 0:
			lastFailure = &ValidationError{Defects: defects}
			feedback = "the response did not match the required structure: " + validator.FormatDefects(defects)
		default:
			event := models.NewProgressEvent(models.StageComplete,
				fmt.Sprintf("Extracted %d assignments for %s", len(result.Assignments), result.Course))
			event.Data = result
			p.send(emit, event)
			return
		}

		p.logger.Warn("extraction attempt failed", "attempt", attempt, "error", lastFailure.Error())
	}

	event := models.NewProgressEvent(models.StageError, "")
	event.Error = terminalMessage(lastFailure)
	p.send(emit, event)
}

// invoke issues one upstream call under the configured timeout. The first
// attempt uses the streaming shape when available so partial results reach
// the client; the retry always uses the blocking shape, since re-streaming
// partials would walk the client's preview backwards.
func (p *Pipeline) invoke(ctx context.Context, text, feedback string, attempt int, emit chan<- models.ProgressEvent) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if streamer, ok := p.extractor.(analyzer.StreamExtractor); ok && attempt == 0 {
		p.send(emit, models.NewProgressEvent(models.StageExtracting, "Extracting assignments"))
		return streamer.ExtractStream(cctx, text, func(partial models.SyllabusStructure) {
			event := models.NewProgressEvent(models.StageExtracting, "")
			event.PartialData = &partial
			p.send(emit, event)
		})
	}

	raw, err := p.extractor.Extract(cctx, text, feedback)
	if err != nil {
		return nil, err
	}
	p.send(emit, models.NewProgressEvent(models.StageExtracting, "Extraction response received"))
	return raw, nil
}

func (p *Pipeline) send(emit chan<- models.ProgressEvent, event models.ProgressEvent) {
	emit <- event
}

// terminalMessage renders the second failure for the client: field-level
// messages for validation failures, a truncated excerpt for parse failures.
func terminalMessage(failure error) string {
	var verr *ValidationError
	var perr *ParseError
	var uerr *UpstreamError

	switch {
	case errors.As(failure, &verr):
		return "extraction failed validation after retry: " + validator.FormatDefects(verr.Defects)
	case errors.As(failure, &perr):
		return fmt.Sprintf("extraction returned unparseable output after retry: %q", perr.Excerpt)
	case errors.As(failure, &uerr):
		return uerr.Error()
	default:
		return "extraction failed"
	}
}
