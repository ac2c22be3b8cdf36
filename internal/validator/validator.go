// Package validator checks candidate extraction results against the syllabus
// shape and reports field-level defects instead of a single opaque error.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

// Defect is one field-level validation failure, e.g.
// {Path: "assignments[2].due_date", Message: "required"}.
type Defect struct {
	Path    string
	Message string
}

func (d Defect) String() string {
	if d.Path == "" {
		return d.Message
	}
	return d.Path + ": " + d.Message
}

// FormatDefects joins defects into the human-readable form used in terminal
// error events.
func FormatDefects(defects []Defect) string {
	parts := make([]string, len(defects))
	for i, d := range defects {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// syllabusSchema returns the JSON-Schema for an extraction result as a
// generic map. due_time is nullable on purpose: "no due time" must survive
// validation as a distinct value, not be coerced here.
func syllabusSchema() map[string]any {
	assignment := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"due_date":    map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"due_time":    map[string]any{"type": []any{"string", "null"}, "pattern": `^\d{2}:\d{2}$`},
		},
		"required": []string{"name", "due_date"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course":      map[string]any{"type": "string", "minLength": 1},
			"assignments": map[string]any{"type": "array", "items": assignment},
		},
		"required": []string{"course", "assignments"},
	}
}

var compiledSchema = mustCompile(syllabusSchema())

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("syllabus.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("syllabus.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// Validate checks a candidate result. A non-nil error means the bytes were
// not decodable JSON at all. A non-empty defect list means the JSON was
// decodable but does not conform. On success the accepted structure is
// returned with defects nil.
func Validate(raw []byte) (*models.SyllabusStructure, []Defect, error) {
	var candidate any
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return nil, nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if err := compiledSchema.Validate(candidate); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, defectsFromError(verr), nil
		}
		return nil, []Defect{{Message: err.Error()}}, nil
	}

	var result models.SyllabusStructure
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("decode validated result: %w", err)
	}
	if result.Assignments == nil {
		result.Assignments = []models.AssignmentDraft{}
	}

	// The schema pins the lexical shape; calendar validity needs a real parse.
	if defects := dateDefects(result.Assignments); len(defects) > 0 {
		return nil, defects, nil
	}

	return &result, nil, nil
}

var missingPropRe = regexp.MustCompile(`^missing properties: '([^']+)'`)

// defectsFromError flattens the validator's basic output into ordered
// path/message pairs, skipping the aggregate "doesn't validate" units.
func defectsFromError(verr *jsonschema.ValidationError) []Defect {
	var defects []Defect
	for _, unit := range verr.BasicOutput().Errors {
		if strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}

		path := pointerToPath(unit.InstanceLocation)
		message := unit.Error

		// Rewrite "missing properties: 'x'" onto the missing field itself.
		if m := missingPropRe.FindStringSubmatch(message); m != nil {
			if path != "" {
				path += "."
			}
			path += m[1]
			message = "required"
		}

		defects = append(defects, Defect{Path: path, Message: message})
	}

	if len(defects) == 0 {
		defects = append(defects, Defect{Message: verr.Message})
	}
	return defects
}

// pointerToPath converts a JSON pointer like /assignments/2/due_date into
// assignments[2].due_date.
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}

	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// dateDefects verifies that every due_date is a real calendar date and every
// present due_time is a real clock time.
func dateDefects(assignments []models.AssignmentDraft) []Defect {
	var defects []Defect
	for i, a := range assignments {
		if _, err := time.Parse("2006-01-02", a.DueDate); err != nil {
			defects = append(defects, Defect{
				Path:    fmt.Sprintf("assignments[%d].due_date", i),
				Message: fmt.Sprintf("%q is not a valid calendar date", a.DueDate),
			})
		}
		if a.DueTime != nil {
			if _, err := time.Parse("15:04", *a.DueTime); err != nil {
				defects = append(defects, Defect{
					Path:    fmt.Sprintf("assignments[%d].due_time", i),
					Message: fmt.Sprintf("%q is not a valid 24-hour time", *a.DueTime),
				})
			}
		}
	}
	return defects
}
