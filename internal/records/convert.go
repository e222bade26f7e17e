package records

import (
	"sort"
	"time"

	"github.com/shikho/dynqr/internal/catalog"
	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/resolver"
)

// QRView is a stored record as the admin API returns it.
type QRView struct {
	QRInput
	URL       string    `json:"url"`
	Live      bool      `json:"live"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Live reports whether every mapping of a record points at ready content.
// The admin table shows the others as "Fallback Active".
func Live(qr models.QRCode) bool {
	for _, m := range qr.Mappings {
		if !m.IsContentReady {
			return false
		}
	}
	return true
}

// ToModel converts a normalized record into its stored form.
func ToModel(in QRInput) models.QRCode {
	qr := models.QRCode{
		ID:         in.ID,
		Name:       in.Name,
		Type:       in.QRType,
		Status:     in.Status,
		QuizID:     in.QuizID,
		PromptText: in.PromptText,
		ImageURL:   in.ImageURL,
	}
	for i, m := range in.Mappings {
		qr.Mappings = append(qr.Mappings, models.Mapping{
			QRCodeID:               in.ID,
			Position:               i,
			ClassVal:               m.ClassVal,
			Program:                m.Program,
			Phase:                  m.Phase,
			Subject:                m.Subject,
			ChapterID:              m.ChapterID,
			ChapterName:            m.ChapterName,
			IsContentReady:         m.IsContentReady,
			LectureClassID:         m.LectureClassID,
			LiveExamID:             m.LiveExamID,
			TopicID:                m.TopicID,
			FallbackClassVal:       m.FallbackClassVal,
			FallbackProgram:        m.FallbackProgram,
			FallbackPhase:          m.FallbackPhase,
			FallbackSubject:        m.FallbackSubject,
			FallbackChapterID:      m.FallbackChapterID,
			FallbackLectureClassID: m.FallbackLectureClassID,
			FallbackLiveExamID:     m.FallbackLiveExamID,
		})
	}
	for i, m := range in.QuizMappings {
		qr.QuizMappings = append(qr.QuizMappings, models.QuizMapping{
			QRCodeID:    in.ID,
			Position:    i,
			ClassVal:    m.ClassVal,
			Program:     m.Program,
			Phase:       m.Phase,
			Subject:     m.Subject,
			ChapterID:   m.ChapterID,
			ChapterName: m.ChapterName,
			QuizID:      m.QuizID,
			QuizName:    m.QuizName,
		})
	}
	return qr
}

// FromModel converts a stored record back into its authoring shape.
func FromModel(qr models.QRCode) QRInput {
	in := QRInput{
		ID:         qr.ID,
		Name:       qr.Name,
		QRType:     qr.Type,
		Status:     qr.Status,
		QuizID:     qr.QuizID,
		PromptText: qr.PromptText,
		ImageURL:   qr.ImageURL,
	}
	for _, m := range sortedMappings(qr.Mappings) {
		in.Mappings = append(in.Mappings, MappingInput{
			ClassVal:               m.ClassVal,
			Program:                m.Program,
			Phase:                  m.Phase,
			Subject:                m.Subject,
			ChapterID:              m.ChapterID,
			ChapterName:            m.ChapterName,
			IsContentReady:         m.IsContentReady,
			LectureClassID:         m.LectureClassID,
			LiveExamID:             m.LiveExamID,
			TopicID:                m.TopicID,
			FallbackClassVal:       m.FallbackClassVal,
			FallbackProgram:        m.FallbackProgram,
			FallbackPhase:          m.FallbackPhase,
			FallbackSubject:        m.FallbackSubject,
			FallbackChapterID:      m.FallbackChapterID,
			FallbackLectureClassID: m.FallbackLectureClassID,
			FallbackLiveExamID:     m.FallbackLiveExamID,
		})
	}
	qms := append([]models.QuizMapping(nil), qr.QuizMappings...)
	sort.SliceStable(qms, func(i, j int) bool { return qms[i].Position < qms[j].Position })
	for _, m := range qms {
		in.QuizMappings = append(in.QuizMappings, QuizMappingInput{
			ClassVal:    m.ClassVal,
			Program:     m.Program,
			Phase:       m.Phase,
			Subject:     m.Subject,
			ChapterID:   m.ChapterID,
			ChapterName: m.ChapterName,
			QuizID:      m.QuizID,
			QuizName:    m.QuizName,
		})
	}
	return in
}

// View wraps a stored record for the admin API.
func View(qr models.QRCode, baseURL string) QRView {
	return QRView{
		QRInput:   FromModel(qr),
		URL:       resolver.BuildPayload(baseURL, qr.ID),
		Live:      Live(qr),
		CreatedAt: qr.CreatedAt,
		UpdatedAt: qr.UpdatedAt,
	}
}

// ToResolver converts a stored record into the resolver's tagged variant.
func ToResolver(qr models.QRCode) resolver.Record {
	switch resolver.ParseType(qr.Type) {
	case resolver.TypeQuiz:
		r := resolver.QuizLinkRecord{ID: qr.ID, QuizID: qr.QuizID}
		qms := append([]models.QuizMapping(nil), qr.QuizMappings...)
		sort.SliceStable(qms, func(i, j int) bool { return qms[i].Position < qms[j].Position })
		for _, m := range qms {
			r.QuizMappings = append(r.QuizMappings, resolver.QuizMapping{ClassVal: m.ClassVal, QuizID: m.QuizID})
		}
		return r
	case resolver.TypeShikhoAI:
		return resolver.AssistantRecord{ID: qr.ID, PromptText: qr.PromptText, ImageURL: qr.ImageURL}
	}

	r := resolver.MappedRecord{ID: qr.ID, Type: resolver.ParseType(qr.Type)}
	for _, m := range sortedMappings(qr.Mappings) {
		r.Mappings = append(r.Mappings, resolver.Mapping{
			ClassVal:               m.ClassVal,
			Program:                m.Program,
			Phase:                  m.Phase,
			Subject:                m.Subject,
			ChapterID:              m.ChapterID,
			IsContentReady:         m.IsContentReady,
			LectureClassID:         m.LectureClassID,
			LiveExamID:             m.LiveExamID,
			TopicID:                m.TopicID,
			FallbackClassVal:       m.FallbackClassVal,
			FallbackProgram:        m.FallbackProgram,
			FallbackPhase:          m.FallbackPhase,
			FallbackSubject:        m.FallbackSubject,
			FallbackChapterID:      m.FallbackChapterID,
			FallbackLectureClassID: m.FallbackLectureClassID,
			FallbackLiveExamID:     m.FallbackLiveExamID,
		})
	}
	return r
}

func (m MappingInput) toResolver() resolver.Mapping {
	return resolver.Mapping{
		ClassVal:               m.ClassVal,
		Program:                m.Program,
		Phase:                  m.Phase,
		Subject:                m.Subject,
		ChapterID:              m.ChapterID,
		IsContentReady:         m.IsContentReady,
		LectureClassID:         m.LectureClassID,
		LiveExamID:             m.LiveExamID,
		TopicID:                m.TopicID,
		FallbackClassVal:       m.FallbackClassVal,
		FallbackProgram:        m.FallbackProgram,
		FallbackPhase:          m.FallbackPhase,
		FallbackSubject:        m.FallbackSubject,
		FallbackChapterID:      m.FallbackChapterID,
		FallbackLectureClassID: m.FallbackLectureClassID,
		FallbackLiveExamID:     m.FallbackLiveExamID,
	}
}

func sortedMappings(ms []models.Mapping) []models.Mapping {
	out := append([]models.Mapping(nil), ms...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// QuizToModel converts quiz metadata and questions into stored form.
func QuizToModel(in QuizInput) models.Quiz {
	q := models.Quiz{
		ID:             in.ID,
		Name:           in.Name,
		ClassVal:       in.ClassVal,
		Program:        in.Program,
		Phase:          in.Phase,
		Subject:        in.Subject,
		ChapterID:      in.ChapterID,
		ChapterName:    catalog.ChapterName(in.Subject, in.Phase, in.ChapterID),
		ExamType:       in.ExamType,
		Status:         in.Status,
		SolutionPDFURL: in.SolutionPDFURL,
	}
	q.Questions = QuestionsToModel(in.ID, in.Questions)
	return q
}

// QuestionsToModel converts authored questions, keeping their order. Callers
// assign ids to questions that lack one.
func QuestionsToModel(quizID string, qs []QuestionInput) []models.Question {
	out := make([]models.Question, 0, len(qs))
	for i, q := range qs {
		out = append(out, models.Question{
			ID:       q.ID,
			QuizID:   quizID,
			Position: i,
			Number:   q.Number,
			Title:    q.Title,
			OptionA:  q.Options["A"],
			OptionB:  q.Options["B"],
			OptionC:  q.Options["C"],
			OptionD:  q.Options["D"],
			Correct:  q.Correct,
			Solution: q.Solution,
			Topic:    q.Topic,
		})
	}
	return out
}

// QuizFromModel converts a stored quiz back into its authoring shape.
func QuizFromModel(q models.Quiz) QuizInput {
	in := QuizInput{
		ID:             q.ID,
		Name:           q.Name,
		ClassVal:       q.ClassVal,
		Program:        q.Program,
		Phase:          q.Phase,
		Subject:        q.Subject,
		ChapterID:      q.ChapterID,
		ExamType:       q.ExamType,
		Status:         q.Status,
		SolutionPDFURL: q.SolutionPDFURL,
	}
	qs := append([]models.Question(nil), q.Questions...)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Position < qs[j].Position })
	for _, x := range qs {
		in.Questions = append(in.Questions, QuestionInput{
			ID:     x.ID,
			Number: x.Number,
			Title:  x.Title,
			Options: map[string]string{
				"A": x.OptionA, "B": x.OptionB, "C": x.OptionC, "D": x.OptionD,
			},
			Correct:  x.Correct,
			Solution: x.Solution,
			Topic:    x.Topic,
		})
	}
	return in
}

// QuizToResolver keeps the fields the resolver reads.
func QuizToResolver(q models.Quiz) resolver.Quiz {
	return resolver.Quiz{
		ID:        q.ID,
		Program:   q.Program,
		Phase:     q.Phase,
		Subject:   q.Subject,
		ChapterID: q.ChapterID,
	}
}
