// Package extractor turns uploaded document bytes into plain text for the
// extraction pipeline. Supported formats: PDF, DOCX, and plain text.
package extractor

import (
	"fmt"
	"strings"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETXT  = "text/plain"
)

// ExtractText dispatches on the declared media type and returns the document
// text. The returned text is trimmed and never empty on success.
func ExtractText(data []byte, contentType string) (string, error) {
	switch {
	case contentType == MIMEPDF:
		return ExtractPDF(data)
	case IsDOCXContentType(contentType):
		return ExtractDOCX(data)
	case IsTextContentType(contentType):
		return ExtractTXT(data)
	default:
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
}

// IsDOCXContentType accepts the MIME type variants browsers send for DOCX.
func IsDOCXContentType(contentType string) bool {
	switch contentType {
	case MIMEDOCX,
		"application/vnd.openxmlformats-officedocument.wordprocessingml",
		"application/docx",
		"application/x-docx":
		return true
	}
	return false
}

func IsTextContentType(contentType string) bool {
	switch contentType {
	case MIMETXT, "text/txt", "application/txt", "application/x-txt":
		return true
	}
	return strings.HasPrefix(contentType, "text/plain;")
}

// IsSupportedContentType reports whether the pipeline can read this media type.
func IsSupportedContentType(contentType string) bool {
	return contentType == MIMEPDF || IsDOCXContentType(contentType) || IsTextContentType(contentType)
}
