package records

import (
	"fmt"
	"sort"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/shikho/dynqr/internal/resolver"
	"github.com/shikho/dynqr/internal/validation"
)

// ValidationError carries field path → message for a rejected save.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

func init() {
	v := validation.Engine()
	v.RegisterStructValidation(qrInputRules, QRInput{})
	validation.RegisterMessage("fallback_required", "{0} is required while content is not ready")
	validation.RegisterMessage("min_mappings", "at least one destination mapping is required")
	validation.RegisterMessage("quiz_link", "{0} needs a quiz or at least one quiz mapping")
	validation.RegisterMessage("class_group", "{0} must name a single class")
}

// Validate checks a normalized record against the save-time invariants:
// known type and status, at least one mapping for mapped types, complete ready
// fields, and a complete fallback wherever content is not ready.
func Validate(in QRInput) error {
	if fields := validation.Struct(in); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateQuiz checks quiz metadata and questions.
func ValidateQuiz(in QuizInput) error {
	if fields := validation.Struct(in); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func qrInputRules(sl govalidator.StructLevel) {
	in := sl.Current().Interface().(QRInput)
	t := resolver.Type(in.QRType)

	switch t {
	case resolver.TypeQuiz:
		if in.QuizID == "" && len(in.QuizMappings) == 0 {
			sl.ReportError(in.QuizID, "quizId", "QuizID", "quiz_link", "")
		}
		for i, m := range in.QuizMappings {
			if isGroup(m.ClassVal) {
				sl.ReportError(m.ClassVal, fmt.Sprintf("quizMappings[%d].classVal", i), "ClassVal", "class_group", "")
			}
		}
		return
	case resolver.TypeShikhoAI:
		if in.PromptText == "" {
			sl.ReportError(in.PromptText, "promptText", "PromptText", "required", "")
		}
		return
	}
	if resolver.ParseType(in.QRType) != t {
		// Unknown type; the oneof tag already reported it.
		return
	}

	if len(in.Mappings) == 0 {
		sl.ReportError(in.Mappings, "mappings", "Mappings", "min_mappings", "")
		return
	}
	for i, m := range in.Mappings {
		rm := m.toResolver()
		for _, f := range rm.MissingReady(t) {
			sl.ReportError("", fmt.Sprintf("mappings[%d].%s", i, f), f, "required", "")
		}
		if !m.IsContentReady {
			for _, f := range rm.MissingFallback(t) {
				sl.ReportError("", fmt.Sprintf("mappings[%d].%s", i, f), f, "fallback_required", "")
			}
		}
		if isGroup(m.ClassVal) {
			sl.ReportError(m.ClassVal, fmt.Sprintf("mappings[%d].classVal", i), "ClassVal", "class_group", "")
		}
	}
}

type questionList struct {
	Questions []QuestionInput `json:"questions" validate:"unique=ID,dive"`
}

// ValidateQuestions checks a replacement question list.
func ValidateQuestions(qs []QuestionInput) error {
	if fields := validation.Struct(questionList{Questions: qs}); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}
