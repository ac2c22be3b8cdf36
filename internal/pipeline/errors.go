package pipeline

import (
	"fmt"

	"github.com/coursedeck/syllabus-extractor/internal/validator"
)

// maxExcerptLen bounds how much raw upstream output leaks into error
// messages. Enough to diagnose, not enough to expose the document.
const maxExcerptLen = 200

// ParseError means the upstream response was not decodable JSON. Excerpt is
// a truncated slice of the raw response.
type ParseError struct {
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extraction response is not valid JSON: %q", e.Excerpt)
}

// ValidationError means the response decoded but does not conform to the
// syllabus shape. Defects are ordered field-level messages.
type ValidationError struct {
	Defects []validator.Defect
}

func (e *ValidationError) Error() string {
	return "extraction result failed validation: " + validator.FormatDefects(e.Defects)
}

// UpstreamError means the extraction service itself failed or timed out.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "extraction service failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func excerpt(raw []byte) string {
	if len(raw) > maxExcerptLen {
		return string(raw[:maxExcerptLen]) + "..."
	}
	return string(raw)
}
