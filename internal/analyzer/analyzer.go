// Package analyzer invokes the external document-understanding service.
// It is a pure producer of candidate JSON; validation happens in the pipeline.
package analyzer

import (
	"context"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

// Extractor is the blocking invoker shape: one call, one candidate JSON blob.
// feedback carries the prior attempt's failure description on a retry and is
// empty on the first attempt.
type Extractor interface {
	Extract(ctx context.Context, text string, feedback string) ([]byte, error)
}

// StreamExtractor is the incremental invoker shape. onPartial is called with
// increasingly complete snapshots of the result while the response streams
// in; the returned bytes are the final candidate.
type StreamExtractor interface {
	Extractor
	ExtractStream(ctx context.Context, text string, onPartial func(models.SyllabusStructure)) ([]byte, error)
}
