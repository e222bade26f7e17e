package records

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shikho/dynqr/internal/catalog"
	"github.com/shikho/dynqr/internal/resolver"
)

const (
	StatusPublished   = "Published"
	StatusUnpublished = "Unpublished"
)

// Normalize brings an authored record into the one shape the store and the
// resolver understand:
//   - a missing qrType becomes chapter and a missing status Published;
//   - legacy single-target fields become a one-element mapping list;
//   - legacy mapping keys (class, fallback{...}) move to their current names;
//   - ssc/hsc class tokens expand into one entry per concrete class;
//   - fields that do not apply to the record's type are dropped.
//
// It never fails; Validate runs on its output.
func Normalize(in QRInput) QRInput {
	out := QRInput{
		ID:         strings.TrimSpace(in.ID),
		Name:       strings.TrimSpace(in.Name),
		QRType:     strings.TrimSpace(in.QRType),
		Status:     strings.TrimSpace(in.Status),
		PromptText: strings.TrimSpace(in.PromptText),
		ImageURL:   strings.TrimSpace(in.ImageURL),
	}
	if out.QRType == "" {
		out.QRType = string(resolver.TypeChapter)
	}
	if out.Status == "" {
		out.Status = StatusPublished
	}

	switch resolver.Type(out.QRType) {
	case resolver.TypeQuiz:
		out.PromptText, out.ImageURL = "", ""
		out.QuizID = strings.TrimSpace(in.QuizID)
		out.QuizMappings = expandQuizMappings(in.QuizMappings)
		if len(out.QuizMappings) > 0 {
			out.QuizID = out.QuizMappings[0].QuizID
		}
	case resolver.TypeShikhoAI:
	default:
		out.PromptText, out.ImageURL = "", ""
		ms := in.Mappings
		if len(ms) == 0 && in.hasLegacyTarget() {
			ms = []MappingInput{in.legacyMapping()}
		}
		out.Mappings = expandMappings(ms)
	}
	return out
}

func (in QRInput) hasLegacyTarget() bool {
	return in.Class != "" || in.Program != "" || in.Phase != "" ||
		in.Subject != "" || in.ChapterID != "" || in.Fallback != nil
}

func (in QRInput) legacyMapping() MappingInput {
	return MappingInput{
		ClassVal:       in.Class,
		Program:        in.Program,
		Phase:          in.Phase,
		Subject:        in.Subject,
		ChapterID:      in.ChapterID,
		IsContentReady: in.IsContentReady,
		Fallback:       in.Fallback,
	}
}

func normalizeMapping(m MappingInput) MappingInput {
	if m.ClassVal == "" {
		m.ClassVal = m.LegacyClass
	}
	if fb := m.Fallback; fb != nil {
		m.FallbackClassVal = firstNonEmpty(m.FallbackClassVal, fb.Class)
		m.FallbackProgram = firstNonEmpty(m.FallbackProgram, fb.Program)
		m.FallbackPhase = firstNonEmpty(m.FallbackPhase, fb.Phase)
		m.FallbackSubject = firstNonEmpty(m.FallbackSubject, fb.Subject)
		m.FallbackChapterID = firstNonEmpty(m.FallbackChapterID, fb.ChapterID)
	}
	m.LegacyClass, m.Fallback = "", nil

	for _, f := range []*string{
		&m.ClassVal, &m.Program, &m.Phase, &m.Subject, &m.ChapterID,
		&m.LectureClassID, &m.LiveExamID, &m.TopicID,
		&m.FallbackClassVal, &m.FallbackProgram, &m.FallbackPhase, &m.FallbackSubject,
		&m.FallbackChapterID, &m.FallbackLectureClassID, &m.FallbackLiveExamID,
	} {
		*f = strings.TrimSpace(*f)
	}
	m.ClassVal = strings.ToLower(m.ClassVal)
	m.FallbackClassVal = strings.ToLower(m.FallbackClassVal)

	// The authoring form has no fallback class or subject: a fallback stays
	// within the mapping's own class and subject unless told otherwise.
	if !m.IsContentReady {
		m.FallbackClassVal = firstNonEmpty(m.FallbackClassVal, m.ClassVal)
		m.FallbackSubject = firstNonEmpty(m.FallbackSubject, m.Subject)
	}
	if m.ChapterName == "" {
		m.ChapterName = catalog.ChapterName(m.Subject, m.Phase, m.ChapterID)
	}
	return m
}

func expandMappings(ms []MappingInput) []MappingInput {
	out := make([]MappingInput, 0, len(ms))
	for _, m := range ms {
		m = normalizeMapping(m)
		token := m.ClassVal
		for _, class := range catalog.ExpandClass(token) {
			c := m
			c.ClassVal = class
			if c.FallbackClassVal == token || isGroup(c.FallbackClassVal) {
				c.FallbackClassVal = class
			}
			out = append(out, c)
		}
	}
	return out
}

func expandQuizMappings(ms []QuizMappingInput) []QuizMappingInput {
	out := make([]QuizMappingInput, 0, len(ms))
	for _, m := range ms {
		m.ClassVal = strings.ToLower(strings.TrimSpace(m.ClassVal))
		m.QuizID = strings.TrimSpace(m.QuizID)
		if m.ChapterName == "" {
			m.ChapterName = catalog.ChapterName(m.Subject, m.Phase, m.ChapterID)
		}
		for _, class := range catalog.ExpandClass(m.ClassVal) {
			c := m
			c.ClassVal = class
			out = append(out, c)
		}
	}
	return out
}

func isGroup(class string) bool {
	_, ok := catalog.ClassGroups[strings.ToLower(class)]
	return ok
}

// DefaultName builds the name shown in the admin table for records saved
// without one, e.g. "[C9] Physics - অধ্যায় ০১ - ভৌত রাশি...".
func DefaultName(in QRInput) string {
	switch resolver.Type(in.QRType) {
	case resolver.TypeQuiz:
		if len(in.QuizMappings) == 0 {
			return "Quiz " + in.QuizID
		}
		m := in.QuizMappings[0]
		return fmt.Sprintf("[%s] %s %s - %s - %s", strings.ToUpper(m.ClassVal), m.Program, m.Subject, m.ChapterName, m.QuizName)
	case resolver.TypeShikhoAI:
		return "Shikho AI - " + truncate(in.PromptText, 20) + "..."
	}
	if len(in.Mappings) == 0 {
		return in.ID
	}
	m := in.Mappings[0]
	return fmt.Sprintf("[%s] %s - %s...", strings.ToUpper(m.ClassVal), m.Subject, truncate(m.ChapterName, 20))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
