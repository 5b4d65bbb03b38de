package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"mediadrop/internal/config"
	"mediadrop/internal/database"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/logging"
	"mediadrop/internal/server"
)

type seedTopic struct {
	name        string
	description string
}

// Topics created by a bare `seed` run.
var defaultTopics = []seedTopic{
	{name: topic.DefaultName, description: "Contenido sin clasificar"},
	{name: "Eventos", description: "Fotos y videos de eventos"},
	{name: "Productos", description: "Material de catálogo"},
}

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := logging.New(logging.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel})

	db, err := database.Connect(cfg.DatabaseURL, cfg.Production(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}

	log.Info().Msg("running migrations")
	if err := server.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc := topic.NewService(topic.NewRepository(db), log)

	seeds := defaultTopics
	if args := flag.Args(); len(args) > 0 {
		seeds = make([]seedTopic, 0, len(args))
		for _, name := range args {
			seeds = append(seeds, seedTopic{name: name})
		}
	}

	created := 0
	for _, t := range seeds {
		_, err := svc.Create(ctx, t.name, t.description)
		switch {
		case err == nil:
			created++
		case errors.Is(err, topic.ErrTopicExists):
			log.Info().Str("topic", t.name).Msg("already exists")
		default:
			log.Fatal().Err(err).Str("topic", t.name).Msg("create topic failed")
		}
	}

	log.Info().Int("created", created).Msg("seed complete")
}
