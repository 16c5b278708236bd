// Command server runs the Brasil Beauty API: the profile directory proxy,
// the chat widget backend and visitor accounts.
//
//	@title			Brasil Beauty API
//	@version		1.0
//	@description	Profile directory, chat widget and visitor accounts.
//	@BasePath		/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in				header
//	@name			Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/brasil-beauty-backend/internal/config"
	httpapi "github.com/tbourn/brasil-beauty-backend/internal/http"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/observability"
	"github.com/tbourn/brasil-beauty-backend/internal/repo"
	"github.com/tbourn/brasil-beauty-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=..." and
// can be overridden by APP_VERSION.
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	purgeEvery      = time.Hour
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal().Err(err).Msg("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	version = sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	lg := sysutil.NewLogger(nil, cfg.LogPretty, cfg.OTEL.ServiceName)
	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = lg

	if !i18n.SetDefault(cfg.DefaultLocale) {
		lg.Warn().Str("locale", cfg.DefaultLocale).Msg("unsupported DEFAULT_LOCALE, keeping pt-BR")
	}
	if cfg.Session.SecretGenerated {
		lg.Warn().Msg("SESSION_SECRET not set; using a per-process secret, sessions end on restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version, cfg.Upstream.BaseURL)
	if err != nil {
		lg.Fatal().Err(err).Msg("setup tracing")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		lg.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migrate database")
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	svc := httpapi.NewServices(db, cfg, lg)
	httpapi.RegisterRoutes(engine, svc, cfg)

	go purgeSessions(ctx, lg, svc)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		lg.Info().
			Str("port", cfg.Port).
			Str("upstream", cfg.Upstream.BaseURL).
			Str("version", version).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shCtx); err != nil {
		lg.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownOTel(shCtx); err != nil {
		lg.Error().Err(err).Msg("flush traces")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	lg.Info().Msg("server exited")
}

// purgeSessions removes expired sessions until ctx ends.
func purgeSessions(ctx context.Context, lg zerolog.Logger, svc httpapi.Services) {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.Accounts.PurgeExpiredSessions(ctx)
			if err != nil {
				lg.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				lg.Info().Int64("removed", n).Msg("expired sessions purged")
			}
		}
	}
}
