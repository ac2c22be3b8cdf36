package analyzer

import (
	"fmt"
	"strings"
)

// maxDocumentChars bounds how much of the syllabus is sent upstream.
const maxDocumentChars = 8000

func buildPrompt(text, feedback string) string {
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars] + "..."
	}

	var b strings.Builder
	b.WriteString(`Extract the course schedule from the following syllabus.

Syllabus text:
`)
	b.WriteString(text)
	b.WriteString(`

Respond ONLY with a valid JSON object (no markdown, no code blocks) with the following structure:
{
  "course": "The course identifier, e.g. 'CS 405'",
  "assignments": [
    {
      "name": "Assignment name (required)",
      "description": "Short description, omit if none",
      "due_date": "Due date in YYYY-MM-DD format (required)",
      "due_time": "Due time in 24-hour HH:MM format, or null if the syllabus gives no time"
    }
  ]
}

Include every assignment, homework, project, quiz and exam that has a due date. If the syllabus contains none, return an empty assignments array.`)

	if feedback != "" {
		fmt.Fprintf(&b, `

Your previous response was rejected: %s
Return JSON that conforms exactly to the structure above this time.`, feedback)
	}

	return b.String()
}
