package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/shikho/dynqr/internal/cache"
	"github.com/shikho/dynqr/internal/config"
	"github.com/shikho/dynqr/internal/db"
	"github.com/shikho/dynqr/internal/events"
	"github.com/shikho/dynqr/internal/handlers"
	"github.com/shikho/dynqr/internal/logger"
	"github.com/shikho/dynqr/internal/models"
	svc "github.com/shikho/dynqr/internal/services"
	"github.com/shikho/dynqr/internal/web"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("addr", cfg.Addr).
		Str("base_url", cfg.PublicBaseURL).
		Str("log_level", cfg.LogLevel).
		Msg("starting dynamic qr server")

	if err := db.Init(cfg.DatabasePath, log); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pngs cache.PNGCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, png cache disabled")
		} else {
			defer rdb.Close()
			pngs = cache.NewRedis(rdb, cfg.QRCacheTTL)
		}
	}

	events.OnScan = func(ev models.ScanEvent) {
		log.Info().
			Str("viewer", ev.ViewerID).
			Str("record", ev.RecordID).
			Str("outcome", ev.Outcome).
			Str("detail", ev.Detail).
			Msg("scan")
	}

	gdb := db.Conn()
	viewers := svc.NewViewerService(gdb, log)
	h, err := handlers.New(cfg, log,
		svc.NewQRCodeService(gdb, log),
		svc.NewQuizService(gdb, log),
		viewers,
		svc.NewScanService(gdb, log, viewers),
		pngs,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("handlers init")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Router(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	log.Info().Msg("shutdown complete")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
