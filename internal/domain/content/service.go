package content

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mediadrop/internal/domain/topic"
	"mediadrop/internal/domain/upload"
)

var ErrInvalidFilter = errors.New("invalid topic filter")

// Filter selects the feed. A nil TopicID means "all".
type Filter struct {
	TopicID *uint
}

// ParseFilter accepts "", "all" or a positive topic id.
func ParseFilter(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return Filter{}, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return Filter{}, ErrInvalidFilter
	}
	id := uint(n)
	return Filter{TopicID: &id}, nil
}

// Item is one entry of the merged feed.
type Item struct {
	Type         string       `json:"type"`
	ID           uint         `json:"id"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"originalName"`
	Description  string       `json:"description"`
	FilePath     string       `json:"filePath"`
	URL          string       `json:"url"`
	Size         int64        `json:"size"`
	Mimetype     string       `json:"mimetype"`
	TopicID      *uint        `json:"topicId"`
	Topic        *topic.Topic `json:"topic,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type Feed struct {
	Images []upload.Media `json:"images"`
	Videos []upload.Media `json:"videos"`
	Items  []Item         `json:"items"`
}

// Service merges image and video metadata into one feed.
type Service struct {
	repo      upload.Repository
	urlPrefix string
}

func NewService(repo upload.Repository, urlPrefix string) *Service {
	return &Service{repo: repo, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// List returns the filtered images and videos plus the merged feed, newest
// first. An empty feed is not an error.
func (s *Service) List(ctx context.Context, f Filter) (*Feed, error) {
	var images, videos []upload.Media

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = s.repo.List(gctx, upload.Image, f.TopicID)
		return err
	})
	g.Go(func() error {
		var err error
		videos, err = s.repo.List(gctx, upload.Video, f.TopicID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images = filterByTopic(images, f)
	videos = filterByTopic(videos, f)

	items := make([]Item, 0, len(images)+len(videos))
	for _, m := range images {
		items = append(items, s.item(upload.Image, m))
	}
	for _, m := range videos {
		items = append(items, s.item(upload.Video, m))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return &Feed{Images: images, Videos: videos, Items: items}, nil
}

func (s *Service) item(kind upload.Kind, m upload.Media) Item {
	return Item{
		Type:         kind.Name,
		ID:           m.ID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		Description:  m.Description,
		FilePath:     m.FilePath,
		URL:          s.urlPrefix + "/" + kind.Directory + "/" + m.Filename,
		Size:         m.Size,
		Mimetype:     m.Mimetype,
		TopicID:      m.TopicID,
		Topic:        m.Topic,
		CreatedAt:    m.CreatedAt,
	}
}

// filterByTopic keeps only exact topic matches. Repositories already filter;
// this guards implementations that ignore the argument.
func filterByTopic(items []upload.Media, f Filter) []upload.Media {
	if f.TopicID == nil {
		return items
	}
	out := items[:0]
	for _, m := range items {
		if m.TopicID != nil && *m.TopicID == *f.TopicID {
			out = append(out, m)
		}
	}
	return out
}
