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
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"mediadrop/internal/config"
	"mediadrop/internal/database"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/domain/upload"
	"mediadrop/internal/logging"
	"mediadrop/internal/metrics"
	"mediadrop/internal/notify"
	"mediadrop/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New(logging.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Debug: !cfg.Production(),
	})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logging.NewGinWriter(log, zerolog.DebugLevel)
	gin.DefaultErrorWriter = logging.NewGinWriter(log, zerolog.ErrorLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	db := openDatabase(cfg, log)

	storage, err := upload.NewDiskStorage(cfg.UploadsDir)
	if err != nil {
		return err
	}
	if err := storage.EnsureDirs(upload.Kinds()...); err != nil {
		return err
	}

	m := metrics.New()
	hub := notify.NewHub(log)
	webhook := notify.NewWebhook(notify.WebhookOptions{
		URL:             cfg.WebhookURL,
		Timeout:         cfg.WebhookTimeout,
		BreakerFailures: cfg.WebhookBreakerFailures,
		BreakerCooldown: cfg.WebhookBreakerCooldown,
	})
	dispatcher := notify.NewDispatcher(log, m, cfg.WebhookTimeout, webhook, hub)

	var public afero.Fs
	if fi, err := os.Stat(cfg.PublicDir); err == nil && fi.IsDir() {
		public = afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.PublicDir))
	} else {
		log.Warn().Str("dir", cfg.PublicDir).Msg("public directory not found, client assets disabled")
	}

	router := server.New(server.Options{
		Log:            log,
		Metrics:        m,
		DB:             db,
		Storage:        storage,
		Dispatcher:     dispatcher,
		Hub:            hub,
		Public:         public,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.AppEnv).
			Str("webhook", webhook.URL()).
			Bool("database", db != nil).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notifications still in flight at exit")
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return shutdownErr
}

// openDatabase returns nil when the metadata store cannot be prepared; the
// server then runs degraded.
func openDatabase(cfg *config.Config, log zerolog.Logger) *gorm.DB {
	db, err := database.Connect(cfg.DatabaseURL, cfg.Production(), log)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed, starting without metadata store")
		return nil
	}
	if err := server.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed, starting without metadata store")
		return nil
	}
	if err := database.RegisterMetrics(db, "mediadrop"); err != nil {
		log.Warn().Err(err).Msg("database metrics disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := topic.NewService(topic.NewRepository(db), log).EnsureDefault(ctx); err != nil {
		log.Warn().Err(err).Msg("could not create default topic")
	}
	return db
}
