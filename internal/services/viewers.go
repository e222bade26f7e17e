package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shikho/dynqr/internal/catalog"
	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/resolver"
	"github.com/shikho/dynqr/internal/validation"
)

const defaultViewerClass = "c9"

// ViewerService keeps the simulated app users: class, active program and
// per-program access.
type ViewerService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewViewerService(gdb *gorm.DB, log zerolog.Logger) *ViewerService {
	return &ViewerService{db: gdb, log: log.With().Str("service", "viewers").Logger()}
}

// ViewerInput changes a viewer's context. Empty fields keep their value; a
// class change without a program moves the viewer to the class's default
// program.
type ViewerInput struct {
	ClassVal      string `json:"classVal" validate:"omitempty,oneof=c9 c10 c11 c12"`
	ActiveProgram string `json:"activeProgram" validate:"max=100"`
}

// EntitlementInput sets one program's access level.
type EntitlementInput struct {
	Program string `json:"program" validate:"required,max=100"`
	Access  string `json:"access" validate:"required,oneof=full none"`
}

type entitlementList struct {
	Entitlements []EntitlementInput `json:"entitlements" validate:"dive"`
}

// Get returns the viewer, creating it with the default class and program on
// first use.
func (s *ViewerService) Get(ctx context.Context, id string) (models.Viewer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Viewer{}, fmt.Errorf("viewer: %w", ErrNotFound)
	}

	var v models.Viewer
	err := s.db.WithContext(ctx).Preload("Entitlements").First(&v, "id = ?", id).Error
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return v, err
	}

	v = models.Viewer{
		ID:            id,
		ClassVal:      defaultViewerClass,
		ActiveProgram: catalog.DefaultProgram(defaultViewerClass),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&v).Error; err != nil {
		return v, err
	}
	s.log.Info().Str("viewer", id).Msg("viewer created")
	return v, nil
}

func (s *ViewerService) Update(ctx context.Context, id string, in ViewerInput) (models.Viewer, error) {
	in.ClassVal = strings.TrimSpace(in.ClassVal)
	in.ActiveProgram = strings.TrimSpace(in.ActiveProgram)
	if fields := validation.Struct(in); fields != nil {
		return models.Viewer{}, &records.ValidationError{Fields: fields}
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return v, err
	}
	if in.ClassVal != "" && in.ClassVal != v.ClassVal {
		v.ClassVal = in.ClassVal
		if in.ActiveProgram == "" {
			v.ActiveProgram = catalog.DefaultProgram(in.ClassVal)
		}
	}
	if in.ActiveProgram != "" {
		v.ActiveProgram = in.ActiveProgram
	}
	if err := s.save(ctx, v); err != nil {
		return v, err
	}
	return s.Get(ctx, id)
}

// SwitchProgram makes program the viewer's active program.
func (s *ViewerService) SwitchProgram(ctx context.Context, id, program string) (models.Viewer, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return v, err
	}
	v.ActiveProgram = program
	if err := s.save(ctx, v); err != nil {
		return v, err
	}
	s.log.Info().Str("viewer", id).Str("program", program).Msg("program switched")
	return v, nil
}

func (s *ViewerService) save(ctx context.Context, v models.Viewer) error {
	return s.db.WithContext(ctx).
		Model(&models.Viewer{}).
		Where("id = ?", v.ID).
		Updates(map[string]any{"class_val": v.ClassVal, "active_program": v.ActiveProgram}).Error
}

// SetEntitlements upserts access levels. Programs not listed keep theirs.
func (s *ViewerService) SetEntitlements(ctx context.Context, id string, in []EntitlementInput) (resolver.Entitlements, error) {
	for i := range in {
		in[i].Program = strings.TrimSpace(in[i].Program)
		in[i].Access = strings.TrimSpace(in[i].Access)
	}
	if fields := validation.Struct(entitlementList{Entitlements: in}); fields != nil {
		return nil, &records.ValidationError{Fields: fields}
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rows := make([]models.Entitlement, 0, len(in))
	for _, e := range in {
		rows = append(rows, models.Entitlement{ViewerID: id, Program: e.Program, Access: e.Access})
	}
	if len(rows) > 0 {
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "program"}},
			DoUpdates: clause.AssignmentColumns([]string{"access"}),
		}).Create(&rows).Error
		if err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("viewer", id).Int("programs", len(rows)).Msg("entitlements set")
	return s.Entitlements(ctx, id)
}

func (s *ViewerService) Entitlements(ctx context.Context, id string) (resolver.Entitlements, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToResolverViewer(v).Entitlements, nil
}

// ToResolverViewer converts a stored viewer into the resolver's input.
func ToResolverViewer(v models.Viewer) resolver.Viewer {
	ent := make(resolver.Entitlements, len(v.Entitlements))
	for _, e := range v.Entitlements {
		ent[e.Program] = resolver.Access(e.Access)
	}
	return resolver.Viewer{Class: v.ClassVal, ActiveProgram: v.ActiveProgram, Entitlements: ent}
}

// EntitlementList flattens entitlements into a stable, program-sorted list.
func EntitlementList(e resolver.Entitlements) []EntitlementInput {
	out := make([]EntitlementInput, 0, len(e))
	for p, a := range e {
		out = append(out, EntitlementInput{Program: p, Access: string(a)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Program < out[j].Program })
	return out
}
