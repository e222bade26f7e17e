package resolver

import "fmt"

// Outcome names the variant of a Result.
type Outcome string

const (
	OutcomeShow     Outcome = "show"
	OutcomeSwitch   Outcome = "switch_program"
	OutcomePurchase Outcome = "purchase"
	OutcomeError    Outcome = "error"
)

// Result is one of ShowDestination, RequireProgramSwitch, RequirePurchase or
// ResolutionError.
type Result interface {
	Outcome() Outcome
}

// ShowDestination is the screen the app should open.
type ShowDestination struct {
	Kind           Type   `json:"kind"`
	Program        string `json:"program,omitempty"`
	Phase          string `json:"phase,omitempty"`
	Subject        string `json:"subject,omitempty"`
	ChapterID      string `json:"chapterId,omitempty"`
	QuizID         string `json:"quizId,omitempty"`
	LectureClassID string `json:"lectureClassId,omitempty"`
	LiveExamID     string `json:"liveExamId,omitempty"`
	TopicID        string `json:"topicId,omitempty"`
	PromptText     string `json:"promptText,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

func (ShowDestination) Outcome() Outcome { return OutcomeShow }

// RequireProgramSwitch asks the viewer to confirm moving to TargetProgram.
// Pending is what resolution yields once the switch is confirmed.
type RequireProgramSwitch struct {
	TargetProgram string
	Pending       Result
}

func (RequireProgramSwitch) Outcome() Outcome { return OutcomeSwitch }

// RequirePurchase means the viewer lacks full access to RequiredProgram.
type RequirePurchase struct {
	RequiredProgram string
}

func (RequirePurchase) Outcome() Outcome { return OutcomePurchase }

// ErrorKind enumerates resolution failures.
type ErrorKind string

const (
	MalformedPayload   ErrorKind = "malformed_payload"
	RecordNotFound     ErrorKind = "record_not_found"
	LinkedQuizNotFound ErrorKind = "linked_quiz_not_found"
	InvalidMapping     ErrorKind = "invalid_mapping"
)

// ResolutionError is a terminal failure for one resolution attempt.
type ResolutionError struct {
	Kind   ErrorKind
	Detail string
}

func (ResolutionError) Outcome() Outcome { return OutcomeError }

func (e ResolutionError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
