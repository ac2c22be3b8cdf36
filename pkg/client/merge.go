package client

import "github.com/coursedeck/syllabus-extractor/internal/models"

// Preview folds partial extraction results into a monotonically more
// complete working value for live display. It is never used for
// persistence.
type Preview struct {
	current models.SyllabusStructure
}

// Apply merges one fragment: the course is replaced by any non-empty value
// (last non-empty wins), and the assignment list is replaced wholesale by a
// non-empty incoming list. The upstream service emits cumulative assignment
// lists, so whole-array replacement is the correct merge.
func (p *Preview) Apply(partial models.SyllabusStructure) {
	if partial.Course != "" {
		p.current.Course = partial.Course
	}
	if len(partial.Assignments) > 0 {
		p.current.Assignments = partial.Assignments
	}
}

// Current returns the merged value accumulated so far.
func (p *Preview) Current() models.SyllabusStructure {
	return p.current
}
