package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shikho/dynqr/internal/catalog"
	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/records"
)

type QuizService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewQuizService(gdb *gorm.DB, log zerolog.Logger) *QuizService {
	return &QuizService{db: gdb, log: log.With().Str("service", "quizzes").Logger()}
}

func normalizeQuiz(in records.QuizInput) records.QuizInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.ClassVal = strings.ToLower(strings.TrimSpace(in.ClassVal))
	if in.ExamType == "" {
		in.ExamType = "MCQ"
	}
	if in.Status == "" {
		in.Status = "Active"
	}
	for i := range in.Questions {
		if in.Questions[i].ID == "" {
			in.Questions[i].ID = newQuestionID()
		}
	}
	return in
}

func (s *QuizService) Create(ctx context.Context, in records.QuizInput) (models.Quiz, error) {
	in = normalizeQuiz(in)
	if err := records.ValidateQuiz(in); err != nil {
		return models.Quiz{}, err
	}
	if in.ID == "" {
		in.ID = NewQuizID()
	}

	q := records.QuizToModel(in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Quiz{}).Where("id = ?", q.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("quiz %s: %w", q.ID, ErrConflict)
		}
		return tx.Create(&q).Error
	})
	if err != nil {
		return models.Quiz{}, err
	}

	s.log.Info().Str("id", q.ID).Int("questions", len(q.Questions)).Msg("quiz created")
	return s.Get(ctx, q.ID)
}

// Update changes quiz metadata. Questions are left alone; see
// ReplaceQuestions.
func (s *QuizService) Update(ctx context.Context, id string, in records.QuizInput) (models.Quiz, error) {
	in.ID = id
	in.Questions = nil
	in = normalizeQuiz(in)
	if err := records.ValidateQuiz(in); err != nil {
		return models.Quiz{}, err
	}

	var q models.Quiz
	if err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return q, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return q, err
	}
	q.Name = in.Name
	q.ClassVal = in.ClassVal
	q.Program = in.Program
	q.Phase = in.Phase
	q.Subject = in.Subject
	q.ChapterID = in.ChapterID
	q.ChapterName = catalog.ChapterName(in.Subject, in.Phase, in.ChapterID)
	q.ExamType = in.ExamType
	q.Status = in.Status
	q.SolutionPDFURL = in.SolutionPDFURL
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&q).Error; err != nil {
		return q, err
	}

	s.log.Info().Str("id", id).Msg("quiz updated")
	return s.Get(ctx, id)
}

// ReplaceQuestions swaps the whole question list of a quiz.
func (s *QuizService) ReplaceQuestions(ctx context.Context, id string, qs []records.QuestionInput) (models.Quiz, error) {
	for i := range qs {
		if qs[i].ID == "" {
			qs[i].ID = newQuestionID()
		}
	}
	if err := records.ValidateQuestions(qs); err != nil {
		return models.Quiz{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Quiz{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		rows := records.QuestionsToModel(id, qs)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return models.Quiz{}, err
	}

	s.log.Info().Str("id", id).Int("questions", len(qs)).Msg("quiz questions replaced")
	return s.Get(ctx, id)
}

func (s *QuizService) Get(ctx context.Context, id string) (models.Quiz, error) {
	var q models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return q, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q, err
}

// List returns quizzes without their questions.
func (s *QuizService) List(ctx context.Context) ([]models.Quiz, error) {
	var qs []models.Quiz
	err := s.db.WithContext(ctx).Order("created_at desc, id asc").Find(&qs).Error
	return qs, err
}

// Delete removes a quiz and its questions. QR codes linking to it stay and
// resolve to a linked-quiz-not-found error until they are repointed.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Quiz{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("quiz deleted")
	return nil
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Number     string `json:"number"`
	Chosen     string `json:"chosen,omitempty"`
	Correct    string `json:"correct"`
	IsCorrect  bool   `json:"isCorrect"`
	Solution   string `json:"solution,omitempty"`
}

type GradeResult struct {
	QuizID   string           `json:"quizId"`
	Total    int              `json:"total"`
	Answered int              `json:"answered"`
	Correct  int              `json:"correct"`
	Results  []QuestionResult `json:"results"`
}

// Grade scores answers (question id → option letter). Unanswered questions
// count as wrong; answers to unknown questions are ignored.
func (s *QuizService) Grade(ctx context.Context, id string, answers map[string]string) (GradeResult, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return GradeResult{}, err
	}

	res := GradeResult{QuizID: q.ID, Total: len(q.Questions), Results: make([]QuestionResult, 0, len(q.Questions))}
	for _, qu := range q.Questions {
		chosen := strings.ToUpper(strings.TrimSpace(answers[qu.ID]))
		r := QuestionResult{
			QuestionID: qu.ID,
			Number:     qu.Number,
			Chosen:     chosen,
			Correct:    qu.Correct,
			IsCorrect:  chosen != "" && chosen == qu.Correct,
			Solution:   qu.Solution,
		}
		if chosen != "" {
			res.Answered++
		}
		if r.IsCorrect {
			res.Correct++
		}
		res.Results = append(res.Results, r)
	}
	return res, nil
}
