// Package server assembles the HTTP surface of the service.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"mediadrop/internal/domain/content"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/domain/upload"
	"mediadrop/internal/metrics"
	"mediadrop/internal/middleware"
	"mediadrop/internal/notify"
	"mediadrop/internal/pkg/response"
)

// MediaPrefix is the URL prefix uploaded files are served under.
const MediaPrefix = "/uploads"

const unavailableMessage = "Base de datos no disponible"

// Options carries everything the router needs. A nil DB runs the server in
// degraded mode.
type Options struct {
	Log            zerolog.Logger
	Metrics        *metrics.Metrics
	DB             *gorm.DB
	Storage        *upload.Storage
	Dispatcher     upload.Dispatcher
	Hub            *notify.Hub
	Public         afero.Fs
	AllowedOrigins []string
}

// Migrate creates the topics table and one table per upload kind.
func Migrate(db *gorm.DB) error {
	if err := topic.Migrate(db); err != nil {
		return err
	}
	return upload.Migrate(db, upload.Kinds()...)
}

func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(opts.Log),
		middleware.RequestLogger(opts.Log),
		opts.Metrics.Middleware(),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.GET("/health", health(opts.DB))
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	api := r.Group("/api")
	if opts.DB != nil {
		registerAPI(api, opts)
	} else {
		opts.Log.Warn().Msg("database unavailable, metadata routes answer 503")
		registerDegraded(api)
	}

	notify.RegisterRoutes(r, notify.NewInboundHandler(opts.Log), opts.Hub)

	for _, k := range upload.Kinds() {
		r.StaticFS(MediaPrefix+"/"+k.Directory, mediaFS(opts.Storage.Fs(), k.Directory))
	}

	r.NoRoute(publicFiles(opts.Public))
	return r
}

func registerAPI(api *gin.RouterGroup, opts Options) {
	topics := topic.NewService(topic.NewRepository(opts.DB), opts.Log)
	topic.RegisterRoutes(api, topic.NewHandler(topics))

	media := upload.NewRepository(opts.DB)
	uploads := upload.NewService(media, opts.Storage, opts.Dispatcher, opts.Metrics, opts.Log)
	upload.RegisterRoutes(api, upload.NewHandler(uploads))

	compressed := api.Group("", gzip.Gzip(gzip.DefaultCompression))
	content.RegisterRoutes(compressed, content.NewHandler(content.NewService(media, MediaPrefix)))
}

func registerDegraded(api *gin.RouterGroup) {
	unavailable := func(c *gin.Context) {
		response.Error(c, http.StatusServiceUnavailable, unavailableMessage)
	}
	api.GET("/topics", unavailable)
	api.POST("/topics", unavailable)
	api.POST("/upload/image", unavailable)
	api.POST("/upload/video", unavailable)
	api.GET("/content", unavailable)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "up"
		if db == nil {
			status = "unavailable"
		} else if err := ping(c.Request.Context(), db); err != nil {
			status = "down"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": status})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
