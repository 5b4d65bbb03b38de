// Command import ingests files already on disk as if they had been uploaded:
//
//	import [-kind image|video] [-topic 3] [-description "..."] [-notify] FILE...
//
// The kind defaults to the one matching each file's extension.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"mediadrop/internal/config"
	"mediadrop/internal/database"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/domain/upload"
	"mediadrop/internal/logging"
	"mediadrop/internal/metrics"
	"mediadrop/internal/notify"
	"mediadrop/internal/server"
)

func main() {
	kindName := flag.String("kind", "", "force a kind (image or video)")
	topicID := flag.Uint("topic", 0, "topic id to file the uploads under")
	description := flag.String("description", "", "description stored with every file")
	notifyWebhook := flag.Bool("notify", false, "send each import to the webhook and feed")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := logging.New(logging.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel})

	if flag.NArg() == 0 {
		log.Fatal().Msg("no files given")
	}

	var forced *upload.Kind
	if *kindName != "" {
		k, ok := upload.Lookup(*kindName)
		if !ok {
			log.Fatal().Str("kind", *kindName).Msg("unknown kind")
		}
		forced = &k
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.Production(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := server.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	meta := upload.Meta{Description: *description}
	if *topicID > 0 {
		id := *topicID
		ok, err := topic.NewService(topic.NewRepository(db), log).Exists(ctx, id)
		if err != nil {
			log.Fatal().Err(err).Msg("topic lookup failed")
		}
		if !ok {
			log.Fatal().Uint("topic", id).Msg("topic does not exist")
		}
		meta.TopicID = &id
	}

	storage, err := upload.NewDiskStorage(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("storage unavailable")
	}

	var dispatcher *notify.Dispatcher
	var sink upload.Dispatcher
	if *notifyWebhook {
		dispatcher = notify.NewDispatcher(log, nil, cfg.WebhookTimeout, notify.NewWebhook(notify.WebhookOptions{
			URL:             cfg.WebhookURL,
			Timeout:         cfg.WebhookTimeout,
			BreakerFailures: cfg.WebhookBreakerFailures,
			BreakerCooldown: cfg.WebhookBreakerCooldown,
		}))
		sink = dispatcher
	}

	svc := upload.NewService(upload.NewRepository(db), storage, sink, metrics.New(), log)

	imported, failed := 0, 0
	for _, path := range flag.Args() {
		if err := importFile(ctx, log, svc, forced, path, meta); err != nil {
			failed++
			continue
		}
		imported++
	}

	if dispatcher != nil {
		if err := dispatcher.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("notifications still in flight at exit")
		}
	}

	log.Info().Int("imported", imported).Int("failed", failed).Msg("import complete")
	if failed > 0 {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, log zerolog.Logger, svc *upload.Service, forced *upload.Kind, path string, meta upload.Meta) error {
	name := filepath.Base(path)

	kind, ok := upload.KindFor(name)
	if forced != nil {
		kind, ok = *forced, true
	}
	if !ok {
		log.Warn().Str("file", path).Msg("unsupported extension, skipped")
		return errors.New("unsupported extension")
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("cannot read file")
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("cannot open file")
		return err
	}
	defer f.Close()

	rec, err := svc.Ingest(ctx, kind, upload.FileInput{
		Name:     name,
		MimeType: detected.String(),
		Reader:   f,
	}, meta)
	if err != nil {
		log.Error().Err(err).Str("file", path).Str("mimetype", detected.String()).Msg("import failed")
		return err
	}

	log.Info().Str("file", path).Uint("id", rec.ID).Str("filename", rec.Filename).Msg("imported")
	return nil
}
