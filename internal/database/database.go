package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormprometheus "gorm.io/plugin/prometheus"

	// pure-Go driver registered as "sqlite"
	_ "modernc.org/sqlite"
)

const metricsRefreshInterval = 15

// Connect opens Postgres for postgres:// URLs and SQLite for anything else.
// In production Postgres connections require TLS.
func Connect(dsn string, production bool, log zerolog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:                                   newLogger(log),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if IsPostgres(dsn) {
		if production {
			dsn = RequireSSL(dsn)
		}
		log.Info().Bool("ssl_required", production).Msg("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info().Str("dsn", dsn).Msg("using SQLite for local development")

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// RequireSSL adds sslmode=require unless the DSN already chooses a mode.
// Certificates are not verified, matching the hosted Postgres setups the
// service is deployed against.
func RequireSSL(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return dsn
	}
	q.Set("sslmode", "require")
	u.RawQuery = q.Encode()
	return u.String()
}

// RegisterMetrics exports connection pool stats through the default
// Prometheus registry.
func RegisterMetrics(db *gorm.DB, name string) error {
	err := db.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          name,
		RefreshInterval: metricsRefreshInterval,
		StartServer:     false,
	}))
	if err != nil {
		return fmt.Errorf("register gorm prometheus plugin: %w", err)
	}
	return nil
}

// zerologWriter adapts zerolog to gorm's logger.Writer.
type zerologWriter struct {
	log zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}

func newLogger(log zerolog.Logger) logger.Interface {
	return logger.New(zerologWriter{log: log.With().Str("component", "gorm").Logger()}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
