package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/resolver"
)

// QRCodeService stores QR code records. Every save normalizes and validates
// the input first, so stored records are always in the current shape.
type QRCodeService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewQRCodeService(gdb *gorm.DB, log zerolog.Logger) *QRCodeService {
	return &QRCodeService{db: gdb, log: log.With().Str("service", "qrcodes").Logger()}
}

// Create saves a new record. A missing id is generated and a missing name is
// derived from the first mapping.
func (s *QRCodeService) Create(ctx context.Context, in records.QRInput) (models.QRCode, error) {
	in = records.Normalize(in)
	if in.ID == "" {
		in.ID = NewRecordID()
	}
	if err := s.prepare(ctx, &in); err != nil {
		return models.QRCode{}, err
	}

	qr := records.ToModel(in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.QRCode{}).Where("id = ?", qr.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("qr code %s: %w", qr.ID, ErrConflict)
		}
		return tx.Create(&qr).Error
	})
	if err != nil {
		return models.QRCode{}, err
	}

	s.log.Info().Str("id", qr.ID).Str("type", qr.Type).Int("mappings", len(qr.Mappings)).Msg("qr code created")
	return s.Get(ctx, qr.ID)
}

// Update replaces a record's configuration, mappings included. The id is
// taken from the path, never from the body.
func (s *QRCodeService) Update(ctx context.Context, id string, in records.QRInput) (models.QRCode, error) {
	in.ID = id
	in = records.Normalize(in)
	if err := s.prepare(ctx, &in); err != nil {
		return models.QRCode{}, err
	}

	qr := records.ToModel(in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.QRCode
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("qr code %s: %w", id, ErrNotFound)
			}
			return err
		}
		if err := deleteChildren(tx, id); err != nil {
			return err
		}

		qr.CreatedAt = existing.CreatedAt
		if err := tx.Omit(clause.Associations).Save(&qr).Error; err != nil {
			return err
		}
		if len(qr.Mappings) > 0 {
			if err := tx.Create(&qr.Mappings).Error; err != nil {
				return err
			}
		}
		if len(qr.QuizMappings) > 0 {
			if err := tx.Create(&qr.QuizMappings).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.QRCode{}, err
	}

	s.log.Info().Str("id", id).Str("type", qr.Type).Msg("qr code updated")
	return s.Get(ctx, id)
}

// prepare validates a normalized record, checks its quiz links and fills
// derived names.
func (s *QRCodeService) prepare(ctx context.Context, in *records.QRInput) error {
	if err := records.Validate(*in); err != nil {
		return err
	}
	if err := s.linkQuizzes(ctx, in); err != nil {
		return err
	}
	if in.Name == "" {
		in.Name = records.DefaultName(*in)
	}
	return nil
}

// linkQuizzes rejects quiz records pointing at quizzes that do not exist, and
// fills quiz names on the mappings.
func (s *QRCodeService) linkQuizzes(ctx context.Context, in *records.QRInput) error {
	if resolver.Type(in.QRType) != resolver.TypeQuiz {
		return nil
	}

	ids := []string{in.QuizID}
	for _, m := range in.QuizMappings {
		ids = append(ids, m.QuizID)
	}
	var quizzes []models.Quiz
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&quizzes).Error; err != nil {
		return err
	}
	names := make(map[string]string, len(quizzes))
	for _, q := range quizzes {
		names[q.ID] = q.Name
	}

	fields := map[string]string{}
	if len(in.QuizMappings) == 0 {
		if _, ok := names[in.QuizID]; !ok {
			fields["quizId"] = "quiz " + in.QuizID + " does not exist"
		}
	}
	for i := range in.QuizMappings {
		m := &in.QuizMappings[i]
		name, ok := names[m.QuizID]
		if !ok {
			fields[fmt.Sprintf("quizMappings[%d].quizId", i)] = "quiz " + m.QuizID + " does not exist"
			continue
		}
		if m.QuizName == "" {
			m.QuizName = name
		}
	}
	if len(fields) > 0 {
		return &records.ValidationError{Fields: fields}
	}
	return nil
}

func (s *QRCodeService) Get(ctx context.Context, id string) (models.QRCode, error) {
	var qr models.QRCode
	err := preloadQR(s.db.WithContext(ctx)).First(&qr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return qr, fmt.Errorf("qr code %s: %w", id, ErrNotFound)
	}
	return qr, err
}

// List returns every record, newest first.
func (s *QRCodeService) List(ctx context.Context) ([]models.QRCode, error) {
	var qrs []models.QRCode
	err := preloadQR(s.db.WithContext(ctx)).Order("created_at desc, id asc").Find(&qrs).Error
	return qrs, err
}

func (s *QRCodeService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.QRCode{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("qr code %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("qr code deleted")
	return nil
}

func deleteChildren(tx *gorm.DB, qrID string) error {
	if err := tx.Where("qr_code_id = ?", qrID).Delete(&models.Mapping{}).Error; err != nil {
		return err
	}
	return tx.Where("qr_code_id = ?", qrID).Delete(&models.QuizMapping{}).Error
}

func preloadQR(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Mappings", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Preload("QuizMappings", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") })
}
