// Package resolver maps a scanned QR payload to the in-app destination a
// viewer should land on. Resolve is pure: every input is passed in and every
// outcome, including failures, comes back as a Result value.
package resolver

// Type is the qrType tag of a record.
type Type string

const (
	TypeChapter       Type = "chapter"
	TypeQuiz          Type = "quiz"
	TypeLectureClass  Type = "lecture_class"
	TypeLiveExam      Type = "live_exam"
	TypeAnimatedVideo Type = "animated_video"
	TypeShikhoAI      Type = "shikho_ai"
	TypeReportCard    Type = "report_card"
)

// Types lists every known record type.
var Types = []Type{
	TypeChapter, TypeQuiz, TypeLectureClass, TypeLiveExam,
	TypeAnimatedVideo, TypeShikhoAI, TypeReportCard,
}

// ParseType reads a stored qrType tag. Records written before the tag existed
// carry no type, and those, like anything unrecognised, resolve as chapters.
func ParseType(s string) Type {
	for _, t := range Types {
		if string(t) == s {
			return t
		}
	}
	return TypeChapter
}

// UsesMappings reports whether records of this type carry a class mapping list.
func (t Type) UsesMappings() bool {
	return t != TypeQuiz && t != TypeShikhoAI
}

// Gated reports whether destinations of this type are subject to the program
// switch and entitlement checks. Animated videos are class-wide.
func (t Type) Gated() bool {
	return t != TypeAnimatedVideo
}

// Mapping is one class-specific destination inside a mapped record.
type Mapping struct {
	ClassVal       string
	Program        string
	Phase          string
	Subject        string
	ChapterID      string
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

// Record is a QR code configuration. The concrete variants are MappedRecord,
// QuizLinkRecord and AssistantRecord.
type Record interface {
	RecordID() string
	RecordType() Type
}

// MappedRecord covers every type that resolves through a per-class mapping
// list: chapter, lecture_class, live_exam, animated_video and report_card.
type MappedRecord struct {
	ID       string
	Type     Type
	Mappings []Mapping
}

func (r MappedRecord) RecordID() string { return r.ID }
func (r MappedRecord) RecordType() Type { return r.Type }

// QuizMapping selects the quiz shown to one class.
type QuizMapping struct {
	ClassVal string
	QuizID   string
}

// QuizLinkRecord opens a quiz. QuizMappings, when present, win over QuizID.
type QuizLinkRecord struct {
	ID           string
	QuizID       string
	QuizMappings []QuizMapping
}

func (r QuizLinkRecord) RecordID() string { return r.ID }
func (QuizLinkRecord) RecordType() Type   { return TypeQuiz }

// AssistantRecord opens the AI assistant with a seeded prompt.
type AssistantRecord struct {
	ID         string
	PromptText string
	ImageURL   string
}

func (r AssistantRecord) RecordID() string { return r.ID }
func (AssistantRecord) RecordType() Type   { return TypeShikhoAI }

// Quiz is the part of a quiz record the resolver reads.
type Quiz struct {
	ID        string
	Program   string
	Phase     string
	Subject   string
	ChapterID string
}

// Access is a viewer's entitlement level for one program.
type Access string

const (
	AccessFull Access = "full"
	AccessNone Access = "none"
)

// Entitlements maps program name to access. Missing programs read as none.
type Entitlements map[string]Access

// Full reports whether the program is fully unlocked.
func (e Entitlements) Full(program string) bool {
	return e[program] == AccessFull
}

// Viewer is the scanning user's current context.
type Viewer struct {
	Class         string
	ActiveProgram string
	Entitlements  Entitlements
}

// RecordSource looks records up by exact id.
type RecordSource interface {
	Record(id string) (Record, bool)
}

// QuizSource looks quizzes up by exact id.
type QuizSource interface {
	Quiz(id string) (Quiz, bool)
}

// Records is an in-memory RecordSource.
type Records []Record

func (rs Records) Record(id string) (Record, bool) {
	for _, r := range rs {
		if r.RecordID() == id {
			return r, true
		}
	}
	return nil, false
}

// Quizzes is an in-memory QuizSource.
type Quizzes []Quiz

func (qs Quizzes) Quiz(id string) (Quiz, bool) {
	for _, q := range qs {
		if q.ID == id {
			return q, true
		}
	}
	return Quiz{}, false
}
