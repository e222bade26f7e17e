package models

import "time"

// QRCode is one printed code's configuration. Type-specific data lives in
// Mappings (mapped types), QuizID/QuizMappings (quiz) or PromptText/ImageURL
// (shikho_ai).
type QRCode struct {
	ID        string `gorm:"primaryKey"` // e.g., qrid_8f3b2a9c
	CreatedAt time.Time
	UpdatedAt time.Time

	Name   string
	Type   string `gorm:"index"` // chapter | quiz | lecture_class | ...
	Status string // Published | Unpublished

	QuizID     string
	PromptText string
	ImageURL   string

	Mappings     []Mapping     `gorm:"constraint:OnDelete:CASCADE"`
	QuizMappings []QuizMapping `gorm:"constraint:OnDelete:CASCADE"`
}

type Mapping struct {
	ID       uint   `gorm:"primaryKey"`
	QRCodeID string `gorm:"index;not null"`
	Position int

	ClassVal       string
	Program        string
	Phase          string
	Subject        string
	ChapterID      string
	ChapterName    string
	IsContentReady bool

	LectureClassID string
	LiveExamID     string
	TopicID        string

	FallbackClassVal       string
	FallbackProgram        string
	FallbackPhase          string
	FallbackSubject        string
	FallbackChapterID      string
	FallbackLectureClassID string
	FallbackLiveExamID     string
}

type QuizMapping struct {
	ID       uint   `gorm:"primaryKey"`
	QRCodeID string `gorm:"index;not null"`
	Position int

	ClassVal    string
	Program     string
	Phase       string
	Subject     string
	ChapterID   string
	ChapterName string
	QuizID      string
	QuizName    string
}

type Quiz struct {
	ID        string `gorm:"primaryKey"` // e.g., quiz_1a2b3c4d
	CreatedAt time.Time
	UpdatedAt time.Time

	Name           string
	ClassVal       string
	Program        string
	Phase          string
	Subject        string
	ChapterID      string
	ChapterName    string
	ExamType       string // MCQ
	Status         string // Active | Inactive
	SolutionPDFURL string

	Questions []Question `gorm:"constraint:OnDelete:CASCADE"`
}

// Question ids are unique within their quiz only.
type Question struct {
	QuizID   string `gorm:"primaryKey"`
	ID       string `gorm:"primaryKey"`
	Position int

	Number   string
	Title    string
	OptionA  string
	OptionB  string
	OptionC  string
	OptionD  string
	Correct  string // A | B | C | D
	Solution string
	Topic    string
}

// Viewer is a simulated app user: their class, active program and
// per-program access.
type Viewer struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ClassVal      string
	ActiveProgram string

	Entitlements []Entitlement `gorm:"constraint:OnDelete:CASCADE"`
}

type Entitlement struct {
	ID       uint   `gorm:"primaryKey"`
	ViewerID string `gorm:"uniqueIndex:idx_viewer_program;not null"`
	Program  string `gorm:"uniqueIndex:idx_viewer_program;not null"`
	Access   string // full | none
}

// ScanEvent records one resolution attempt.
type ScanEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ViewerID string `gorm:"index" json:"viewerId"`
	Payload  string `json:"payload"`
	RecordID string `gorm:"index" json:"recordId,omitempty"`
	Outcome  string `json:"outcome"` // show | switch_program | purchase | error
	Detail   string `json:"detail"`  // destination kind, target program or error kind
}
