package services

import (
	"strings"

	"github.com/google/uuid"
)

// randomID returns prefix followed by n lowercase hex characters.
func randomID(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + hex[:n]
}

// NewRecordID returns an id like qrid_3f9a1c07b.
func NewRecordID() string { return randomID("qrid_", 9) }

// NewQuizID returns an id like quiz_8d2e4b10.
func NewQuizID() string { return randomID("quiz_", 8) }

func newQuestionID() string { return uuid.NewString() }
