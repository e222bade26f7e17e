package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shikho/dynqr/internal/events"
	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/qrimage"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/resolver"
)

// ScanService runs the app's scan flow: look the viewer up, resolve the
// payload against the store, record the attempt.
type ScanService struct {
	db      *gorm.DB
	log     zerolog.Logger
	viewers *ViewerService
}

func NewScanService(gdb *gorm.DB, log zerolog.Logger, viewers *ViewerService) *ScanService {
	return &ScanService{db: gdb, log: log.With().Str("service", "scans").Logger(), viewers: viewers}
}

// storeSource adapts the database to the resolver's lookups. The resolver
// only sees found/not found, so query failures are kept in err and checked
// after resolution.
type storeSource struct {
	ctx context.Context
	db  *gorm.DB
	err error
}

func (s *storeSource) Record(id string) (resolver.Record, bool) {
	var qr models.QRCode
	err := preloadQR(s.db.WithContext(s.ctx)).First(&qr, "id = ?", id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.err = err
		}
		return nil, false
	}
	return records.ToResolver(qr), true
}

func (s *storeSource) Quiz(id string) (resolver.Quiz, bool) {
	var q models.Quiz
	err := s.db.WithContext(s.ctx).First(&q, "id = ?", id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.err = err
		}
		return resolver.Quiz{}, false
	}
	return records.QuizToResolver(q), true
}

func (s *ScanService) resolve(ctx context.Context, viewerID, payload string) (resolver.Result, error) {
	v, err := s.viewers.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	src := &storeSource{ctx: ctx, db: s.db}
	res := resolver.Resolve(payload, src, src, ToResolverViewer(v))
	if src.err != nil {
		return nil, fmt.Errorf("resolve %q: %w", payload, src.err)
	}
	return res, nil
}

// Scan resolves payload for the viewer and records the attempt.
func (s *ScanService) Scan(ctx context.Context, viewerID, payload string) (resolver.Result, error) {
	res, err := s.resolve(ctx, viewerID, payload)
	if err != nil {
		return nil, err
	}
	s.record(ctx, viewerID, payload, res)
	return res, nil
}

// ScanImage reads the QR code in an uploaded image and scans its text. The
// decoded payload is returned alongside the result.
func (s *ScanService) ScanImage(ctx context.Context, viewerID string, img io.Reader) (string, resolver.Result, error) {
	payload, err := qrimage.Decode(img)
	if err != nil {
		s.log.Debug().Err(err).Str("viewer", viewerID).Msg("image scan failed")
		return "", nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	res, err := s.Scan(ctx, viewerID, payload)
	return payload, res, err
}

// ConfirmSwitch accepts a program switch prompt. program must be the target
// the prompt named; the viewer is moved there and the payload resolved again,
// so entitlement is checked against the new program. A scan that no longer
// needs a switch records and returns its current result.
func (s *ScanService) ConfirmSwitch(ctx context.Context, viewerID, payload, program string) (resolver.Result, error) {
	res, err := s.resolve(ctx, viewerID, payload)
	if err != nil {
		return nil, err
	}
	sw, ok := res.(resolver.RequireProgramSwitch)
	if !ok {
		s.record(ctx, viewerID, payload, res)
		return res, nil
	}
	if program != sw.TargetProgram {
		return nil, fmt.Errorf("confirm %q, pending %q: %w", program, sw.TargetProgram, ErrSwitchMismatch)
	}

	if _, err := s.viewers.SwitchProgram(ctx, viewerID, program); err != nil {
		return nil, err
	}
	return s.Scan(ctx, viewerID, payload)
}

// RecentScans returns the latest scan events, newest first.
func (s *ScanService) RecentScans(ctx context.Context, limit int) ([]models.ScanEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var evs []models.ScanEvent
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&evs).Error
	return evs, err
}

func (s *ScanService) record(ctx context.Context, viewerID, payload string, res resolver.Result) {
	ev := models.ScanEvent{
		ViewerID: viewerID,
		Payload:  payload,
		Outcome:  string(res.Outcome()),
		Detail:   detail(res),
	}
	if id, err := resolver.ParsePayload(payload); err == nil {
		ev.RecordID = id
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		s.log.Error().Err(err).Str("viewer", viewerID).Msg("record scan event")
		return
	}
	if events.OnScan != nil {
		events.OnScan(ev)
	}
}

func detail(res resolver.Result) string {
	switch r := res.(type) {
	case resolver.ShowDestination:
		return string(r.Kind)
	case resolver.RequireProgramSwitch:
		return r.TargetProgram
	case resolver.RequirePurchase:
		return r.RequiredProgram
	case resolver.ResolutionError:
		return string(r.Kind)
	}
	return ""
}
