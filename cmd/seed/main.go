// Command seed loads QR codes, quizzes and viewers from a JSON file into the
// configured database. Records that already exist are skipped.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shikho/dynqr/internal/config"
	"github.com/shikho/dynqr/internal/db"
	"github.com/shikho/dynqr/internal/logger"
	"github.com/shikho/dynqr/internal/records"
	svc "github.com/shikho/dynqr/internal/services"
)

type seedFile struct {
	Quizzes []records.QuizInput `json:"quizzes"`
	QRCodes []records.QRInput   `json:"qrcodes"`
	Viewers []struct {
		ID           string                 `json:"id"`
		ClassVal     string                 `json:"classVal"`
		Program      string                 `json:"activeProgram"`
		Entitlements []svc.EntitlementInput `json:"entitlements"`
	} `json:"viewers"`
}

func main() {
	path := flag.String("file", "seed/demo.json", "seed file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabasePath == "" {
		log.Fatal().Msg("DATABASE_PATH must be set; an in-memory store would be lost on exit")
	}
	if err := db.Init(cfg.DatabasePath, log); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("parse seed file")
	}

	if err := load(context.Background(), db.Conn(), log, seed); err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("seed failed")
	}

	log.Info().
		Int("quizzes", len(seed.Quizzes)).
		Int("qrcodes", len(seed.QRCodes)).
		Int("viewers", len(seed.Viewers)).
		Msg("seed complete")
}

func load(ctx context.Context, gdb *gorm.DB, log zerolog.Logger, seed seedFile) error {
	quizzes := svc.NewQuizService(gdb, log)
	qrs := svc.NewQRCodeService(gdb, log)
	viewers := svc.NewViewerService(gdb, log)

	// Quizzes first: quiz QR codes must point at existing quizzes.
	for _, q := range seed.Quizzes {
		if _, err := quizzes.Create(ctx, q); err != nil && !errors.Is(err, svc.ErrConflict) {
			return fmt.Errorf("quiz %s: %w", q.ID, err)
		}
	}
	for _, qr := range seed.QRCodes {
		if _, err := qrs.Create(ctx, qr); err != nil && !errors.Is(err, svc.ErrConflict) {
			return fmt.Errorf("qr code %s: %w", qr.ID, err)
		}
	}
	for _, v := range seed.Viewers {
		if _, err := viewers.Update(ctx, v.ID, svc.ViewerInput{ClassVal: v.ClassVal, ActiveProgram: v.Program}); err != nil {
			return fmt.Errorf("viewer %s: %w", v.ID, err)
		}
		if _, err := viewers.SetEntitlements(ctx, v.ID, v.Entitlements); err != nil {
			return fmt.Errorf("viewer %s entitlements: %w", v.ID, err)
		}
	}
	return nil
}
