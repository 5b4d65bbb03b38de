package topic

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "topic").Logger()}
}

func (s *Service) List(ctx context.Context) ([]Topic, error) {
	return s.repo.List(ctx)
}

// Create stores a new topic. Names are trimmed and must be unique.
func (s *Service) Create(ctx context.Context, name, description string) (*Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTopicNameRequired
	}

	t := &Topic{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Uint("topic_id", t.ID).Str("name", t.Name).Msg("topic created")
	return t, nil
}

// Exists reports whether id refers to a stored topic.
func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrTopicNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureDefault creates the General topic when the table is empty.
func (s *Service) EnsureDefault(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = s.Create(ctx, DefaultName, "")
	if errors.Is(err, ErrTopicExists) {
		return nil
	}
	return err
}
