// Package records is the authoring side of QR codes and quizzes: the JSON
// shapes the admin panel and seed files send, their normalization and
// validation, and the conversion into stored models and resolver records.
package records

// QRInput is a QR code as authored. It accepts both the current shape (a
// mappings list) and the legacy single-target shape (flat class/program/...
// fields plus a fallback object). Normalize folds the legacy shape into
// Mappings.
type QRInput struct {
	ID     string `json:"id" validate:"omitempty,max=64,excludesall=&?#/."`
	Name   string `json:"name" validate:"max=200"`
	QRType string `json:"qrType" validate:"required,oneof=chapter quiz lecture_class live_exam animated_video shikho_ai report_card"`
	Status string `json:"status" validate:"required,oneof=Published Unpublished"`

	Mappings []MappingInput `json:"mappings" validate:"dive"`

	QuizID       string             `json:"quizId,omitempty"`
	QuizMappings []QuizMappingInput `json:"quizMappings,omitempty" validate:"dive"`

	PromptText string `json:"promptText,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty" validate:"omitempty,url"`

	// Legacy single-target fields.
	Class          string          `json:"class,omitempty"`
	Program        string          `json:"program,omitempty"`
	Phase          string          `json:"phase,omitempty"`
	Subject        string          `json:"subject,omitempty"`
	ChapterID      string          `json:"chapterId,omitempty"`
	IsContentReady bool            `json:"isContentReady,omitempty"`
	Fallback       *LegacyFallback `json:"fallback,omitempty"`
}

// LegacyFallback is the nested fallback object of legacy records and
// mappings.
type LegacyFallback struct {
	Class     string `json:"class,omitempty"`
	Program   string `json:"program,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Subject   string `json:"subject,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
}

type MappingInput struct {
	ClassVal       string `json:"classVal" validate:"required,oneof=c9 c10 c11 c12"`
	Program        string `json:"program"`
	Phase          string `json:"phase"`
	Subject        string `json:"subject"`
	ChapterID      string `json:"chapterId"`
	ChapterName    string `json:"chapterName,omitempty"`
	IsContentReady bool   `json:"isContentReady"`

	LectureClassID string `json:"lectureClassId,omitempty"`
	LiveExamID     string `json:"liveExamId,omitempty"`
	TopicID        string `json:"topicId,omitempty"`

	FallbackClassVal       string `json:"fallbackClassVal,omitempty" validate:"omitempty,oneof=c9 c10 c11 c12"`
	FallbackProgram        string `json:"fallbackProgram,omitempty"`
	FallbackPhase          string `json:"fallbackPhase,omitempty"`
	FallbackSubject        string `json:"fallbackSubject,omitempty"`
	FallbackChapterID      string `json:"fallbackChapterId,omitempty"`
	FallbackLectureClassID string `json:"fallbackLectureClassId,omitempty"`
	FallbackLiveExamID     string `json:"fallbackLiveExamId,omitempty"`

	// Older mapping entries used "class" and a nested fallback object.
	LegacyClass string          `json:"class,omitempty"`
	Fallback    *LegacyFallback `json:"fallback,omitempty"`
}

type QuizMappingInput struct {
	ClassVal    string `json:"classVal" validate:"required,oneof=c9 c10 c11 c12"`
	Program     string `json:"program" validate:"required"`
	Phase       string `json:"phase" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	ChapterID   string `json:"chapterId" validate:"required"`
	ChapterName string `json:"chapterName,omitempty"`
	QuizID      string `json:"quizId" validate:"required"`
	QuizName    string `json:"quizName,omitempty"`
}

// QuizInput is a quiz's metadata as authored.
type QuizInput struct {
	ID             string `json:"id" validate:"omitempty,max=64"`
	Name           string `json:"name" validate:"required,max=200"`
	ClassVal       string `json:"classVal" validate:"required,oneof=c9 c10 c11 c12"`
	Program        string `json:"program" validate:"required"`
	Phase          string `json:"phase" validate:"required"`
	Subject        string `json:"subject" validate:"required"`
	ChapterID      string `json:"chapterId" validate:"required"`
	ExamType       string `json:"examType" validate:"omitempty,oneof=MCQ"`
	Status         string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	SolutionPDFURL string `json:"solutionPdfUrl,omitempty" validate:"omitempty,url"`

	Questions []QuestionInput `json:"questions,omitempty" validate:"unique=ID,dive"`
}

type QuestionInput struct {
	ID       string            `json:"id,omitempty"`
	Number   string            `json:"number" validate:"required"`
	Title    string            `json:"title,omitempty"`
	Options  map[string]string `json:"options" validate:"required,dive,keys,oneof=A B C D,endkeys"`
	Correct  string            `json:"correct" validate:"required,oneof=A B C D"`
	Solution string            `json:"solution,omitempty"`
	Topic    string            `json:"topic,omitempty"`
}
