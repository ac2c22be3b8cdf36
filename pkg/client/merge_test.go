package client

import (
	"testing"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

func TestPreviewApplyAccumulates(t *testing.T) {
	var p Preview

	p.Apply(models.SyllabusStructure{Course: "CS 405"})
	p.Apply(models.SyllabusStructure{
		Assignments: []models.AssignmentDraft{{Name: "HW1", DueDate: "2026-02-15"}},
	})

	got := p.Current()
	if got.Course != "CS 405" {
		t.Errorf("course = %q, want CS 405", got.Course)
	}
	if len(got.Assignments) != 1 || got.Assignments[0].Name != "HW1" {
		t.Errorf("unexpected assignments %+v", got.Assignments)
	}
}

func TestPreviewEmptyFragmentDoesNotClobber(t *testing.T) {
	var p Preview

	p.Apply(models.SyllabusStructure{
		Course:      "CS 405",
		Assignments: []models.AssignmentDraft{{Name: "HW1", DueDate: "2026-02-15"}},
	})
	p.Apply(models.SyllabusStructure{})

	got := p.Current()
	if got.Course != "CS 405" || len(got.Assignments) != 1 {
		t.Errorf("empty fragment erased state: %+v", got)
	}
}

func TestPreviewCumulativeListReplacesWholesale(t *testing.T) {
	var p Preview

	p.Apply(models.SyllabusStructure{
		Assignments: []models.AssignmentDraft{{Name: "HW1", DueDate: "2026-02-15"}},
	})
	p.Apply(models.SyllabusStructure{
		Course: "CS 406",
		Assignments: []models.AssignmentDraft{
			{Name: "HW1", DueDate: "2026-02-15"},
			{Name: "HW2", DueDate: "2026-03-01"},
		},
	})

	got := p.Current()
	if got.Course != "CS 406" {
		t.Errorf("later non-empty course should win, got %q", got.Course)
	}
	if len(got.Assignments) != 2 {
		t.Errorf("expected wholesale replacement with 2 assignments, got %+v", got.Assignments)
	}
}
