package utils

import "github.com/google/uuid"

// GenerateID returns a new random identifier for documents and assignments.
func GenerateID() string {
	return uuid.New().String()
}
