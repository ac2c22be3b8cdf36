package extractor

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestIsSupportedContentType(t *testing.T) {
	supported := []string{
		MIMEPDF,
		MIMEDOCX,
		"application/docx",
		MIMETXT,
		"text/plain; charset=utf-8",
		"text/txt",
	}
	for _, ct := range supported {
		if !IsSupportedContentType(ct) {
			t.Errorf("%q should be supported", ct)
		}
	}

	unsupported := []string{"", "image/png", "application/json", "text/html"}
	for _, ct := range unsupported {
		if IsSupportedContentType(ct) {
			t.Errorf("%q should not be supported", ct)
		}
	}
}

func TestExtractTextRejectsUnknownType(t *testing.T) {
	_, err := ExtractText([]byte("data"), "image/png")
	if err == nil {
		t.Fatal("expected error for unsupported content type")
	}
}

func TestExtractTXT(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "plain utf8",
			data: []byte("Course: CS 405\nHW1 due Feb 15\n"),
			want: "Course: CS 405\nHW1 due Feb 15",
		},
		{
			name: "utf8 bom",
			data: []byte{0xEF, 0xBB, 0xBF, 'h', 'i'},
			want: "hi",
		},
		{
			name: "utf16 le bom",
			data: []byte{0xFF, 0xFE, 'h', 0, 'i', 0},
			want: "hi",
		},
		{
			name: "utf16 be bom",
			data: []byte{0xFE, 0xFF, 0, 'h', 0, 'i'},
			want: "hi",
		},
		{
			name: "windows line endings and blank lines",
			data: []byte("line one\r\n\r\n  line two  \r\n"),
			want: "line one\nline two",
		},
		{
			name: "windows-1252 fallback",
			data: []byte{'c', 'a', 'f', 0xE9},
			want: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTXT(tt.data)
			if err != nil {
				t.Fatalf("ExtractTXT returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractTXT = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTXTEmpty(t *testing.T) {
	if _, err := ExtractTXT(nil); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := ExtractTXT([]byte("   \n\n  ")); err == nil {
		t.Error("expected error for whitespace-only file")
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Course: CS 405</w:t></w:r></w:p>
    <w:p><w:r><w:t>HW1 due </w:t></w:r><w:r><w:t>2026-02-15</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := ExtractDOCX(buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("ExtractDOCX returned error: %v", err)
	}
	if !strings.Contains(got, "Course: CS 405") {
		t.Errorf("missing first paragraph: %q", got)
	}
	// Runs within a paragraph join without separators.
	if !strings.Contains(got, "HW1 due 2026-02-15") {
		t.Errorf("runs not joined: %q", got)
	}
}

func TestExtractDOCXNotAZip(t *testing.T) {
	if _, err := ExtractDOCX([]byte("plain text pretending")); err == nil {
		t.Fatal("expected error for non-ZIP input")
	}
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/other.xml"); err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	if _, err := ExtractDOCX(buf.Bytes()); err == nil {
		t.Fatal("expected error when document.xml is absent")
	}
}
