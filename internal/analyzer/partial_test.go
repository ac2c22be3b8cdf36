package analyzer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

func TestRepairPartialJSONCompleteInput(t *testing.T) {
	in := `{"course":"CS 405","assignments":[]}`
	got, ok := repairPartialJSON(in)
	if !ok || got != in {
		t.Fatalf("complete input should pass through, got %q ok=%v", got, ok)
	}
}

func TestRepairPartialJSONTruncatedCases(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"open object after value", `{"course":"CS 405"`},
		{"dangling comma", `{"course":"CS 405",`},
		{"open array", `{"course":"CS 405","assignments":[`},
		{"open element object", `{"course":"CS 405","assignments":[{"name":"HW1"`},
		{"mid key", `{"course":"CS 405","assignments":[{"na`},
		{"element plus dangling comma", `{"course":"CS 405","assignments":[{"name":"HW1","due_date":"2026-02-15"},`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := repairPartialJSON(tt.in)
			if !ok {
				t.Fatalf("no valid prefix found for %q", tt.in)
			}
			if !json.Valid([]byte(got)) {
				t.Fatalf("repaired output not valid JSON: %q", got)
			}

			var s models.SyllabusStructure
			if err := json.Unmarshal([]byte(got), &s); err != nil {
				t.Fatalf("repaired output does not decode: %v", err)
			}
			if s.Course != "CS 405" {
				t.Errorf("repair lost the course field: %q", got)
			}
		})
	}
}

func TestRepairPartialJSONKeepsClosedElements(t *testing.T) {
	in := `{"course":"CS 405","assignments":[{"name":"HW1","due_date":"2026-02-15"},{"name":"HW2","due`
	got, ok := repairPartialJSON(in)
	if !ok {
		t.Fatal("expected a valid prefix")
	}

	var s models.SyllabusStructure
	if err := json.Unmarshal([]byte(got), &s); err != nil {
		t.Fatalf("repaired output does not decode: %v", err)
	}
	if len(s.Assignments) != 2 {
		t.Fatalf("expected both elements in the prefix, got %+v", s.Assignments)
	}
	if s.Assignments[0].DueDate != "2026-02-15" {
		t.Errorf("completed element lost its due date: %+v", s.Assignments[0])
	}
	if s.Assignments[1].Name != "HW2" || s.Assignments[1].DueDate != "" {
		t.Errorf("in-flight element should keep only its closed fields: %+v", s.Assignments[1])
	}
}

func TestRepairPartialJSONNoValidPrefix(t *testing.T) {
	for _, in := range []string{"", "   ", `{"cou`, `{`, "not even json }"} {
		if got, ok := repairPartialJSON(in); ok {
			t.Errorf("expected no prefix for %q, got %q", in, got)
		}
	}
}

func TestRepairPartialJSONEscapedQuotes(t *testing.T) {
	in := `{"course":"CS \"Advanced\" 405","assignments":[`
	got, ok := repairPartialJSON(in)
	if !ok {
		t.Fatal("expected a valid prefix")
	}

	var s models.SyllabusStructure
	if err := json.Unmarshal([]byte(got), &s); err != nil {
		t.Fatalf("repaired output does not decode: %v", err)
	}
	if !strings.Contains(s.Course, `"Advanced"`) {
		t.Errorf("escaped quotes mangled: %q", s.Course)
	}
}

func TestExtractJSONStripsFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"course":"CS1"}`, `{"course":"CS1"}`},
		{"fenced", "```json\n{\"course\":\"CS1\"}\n```", `{"course":"CS1"}`},
		{"fenced no language", "```\n{\"course\":\"CS1\"}\n```", `{"course":"CS1"}`},
		{"surrounding whitespace", "  {\"course\":\"CS1\"}\n", `{"course":"CS1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildPromptFeedback(t *testing.T) {
	plain := buildPrompt("syllabus text", "")
	if strings.Contains(plain, "previous response was rejected") {
		t.Error("first attempt prompt must not mention a previous response")
	}

	retry := buildPrompt("syllabus text", "assignments[0].name: required")
	if !strings.Contains(retry, "previous response was rejected") {
		t.Error("retry prompt must carry the rejection")
	}
	if !strings.Contains(retry, "assignments[0].name: required") {
		t.Error("retry prompt must include the specific defects")
	}
}

func TestBuildPromptTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("a", maxDocumentChars*2)
	got := buildPrompt(long, "")
	if strings.Contains(got, strings.Repeat("a", maxDocumentChars+1)) {
		t.Error("document text not truncated")
	}
}
