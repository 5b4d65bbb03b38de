package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mediadrop/internal/database"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/domain/upload"
)

type fixture struct {
	db      *gorm.DB
	repo    upload.Repository
	service *Service
	base    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenMemory("content_test_" + t.Name())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, topic.Migrate(db))
	require.NoError(t, upload.Migrate(db))

	repo := upload.NewRepository(db)
	return &fixture{
		db:      db,
		repo:    repo,
		service: NewService(repo, "/uploads/"),
		base:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) topic(t *testing.T, name string) uint {
	t.Helper()
	tp := &topic.Topic{Name: name}
	require.NoError(t, f.db.Create(tp).Error)
	return tp.ID
}

func (f *fixture) add(t *testing.T, kind upload.Kind, name string, minutes int, topicID *uint) {
	t.Helper()
	at := f.base.Add(time.Duration(minutes) * time.Minute)
	m := &upload.Media{
		Filename:     kind.Name + "-" + name,
		OriginalName: name,
		FilePath:     kind.Directory + "/" + kind.Name + "-" + name,
		Size:         10,
		Mimetype:     kind.MimeTypes[0],
		TopicID:      topicID,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, f.repo.Create(context.Background(), kind, m))
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.OriginalName)
	}
	return out
}

func TestService_MergesNewestFirst(t *testing.T) {
	f := setup(t)
	general := f.topic(t, "General")

	f.add(t, upload.Image, "a.png", 1, &general)
	f.add(t, upload.Video, "b.mp4", 3, nil)
	f.add(t, upload.Image, "c.jpg", 5, nil)
	f.add(t, upload.Video, "d.webm", 2, &general)

	feed, err := f.service.List(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"c.jpg", "b.mp4", "d.webm", "a.png"}, names(feed.Items))
	assert.Len(t, feed.Images, 2)
	assert.Len(t, feed.Videos, 2)

	for i := 1; i < len(feed.Items); i++ {
		assert.False(t, feed.Items[i].CreatedAt.After(feed.Items[i-1].CreatedAt))
	}

	last := feed.Items[3]
	assert.Equal(t, "image", last.Type)
	assert.Equal(t, "/uploads/images/image-a.png", last.URL)
	require.NotNil(t, last.Topic)
	assert.Equal(t, "General", last.Topic.Name)
	assert.Equal(t, "video", feed.Items[1].Type)
	assert.Nil(t, feed.Items[1].Topic)
}

func TestService_FiltersByExactTopic(t *testing.T) {
	f := setup(t)
	travel := f.topic(t, "Viajes")
	food := f.topic(t, "Comida")

	f.add(t, upload.Image, "beach.png", 1, &travel)
	f.add(t, upload.Video, "paella.mp4", 2, &food)
	f.add(t, upload.Video, "plane.mp4", 3, &travel)
	f.add(t, upload.Image, "loose.png", 4, nil)

	feed, err := f.service.List(context.Background(), Filter{TopicID: &travel})
	require.NoError(t, err)

	assert.Equal(t, []string{"plane.mp4", "beach.png"}, names(feed.Items))
	for _, it := range feed.Items {
		require.NotNil(t, it.TopicID)
		assert.Equal(t, travel, *it.TopicID)
	}
	assert.Len(t, feed.Images, 1)
	assert.Len(t, feed.Videos, 1)
}

func TestService_EmptyFilterResultIsNotError(t *testing.T) {
	f := setup(t)
	general := f.topic(t, "General")
	f.add(t, upload.Image, "a.png", 1, nil)

	feed, err := f.service.List(context.Background(), Filter{TopicID: &general})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.NotNil(t, feed.Items)
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, upload.Kind, *upload.Media) error { return nil }

func (failingRepo) List(_ context.Context, kind upload.Kind, _ *uint) ([]upload.Media, error) {
	if kind.Name == upload.Video.Name {
		return nil, errors.New("videos table missing")
	}
	return []upload.Media{}, nil
}

type unfilteredRepo struct {
	items []upload.Media
}

func (unfilteredRepo) Create(context.Context, upload.Kind, *upload.Media) error { return nil }

func (r unfilteredRepo) List(_ context.Context, kind upload.Kind, _ *uint) ([]upload.Media, error) {
	if kind.Name != upload.Image.Name {
		return []upload.Media{}, nil
	}
	return append([]upload.Media(nil), r.items...), nil
}

func TestService_PropagatesStoreErrors(t *testing.T) {
	_, err := NewService(failingRepo{}, "/uploads").List(context.Background(), Filter{})
	assert.EqualError(t, err, "videos table missing")
}

func TestService_FiltersEvenWhenStoreDoesNot(t *testing.T) {
	one, two := uint(1), uint(2)
	repo := unfilteredRepo{items: []upload.Media{
		{ID: 1, OriginalName: "x", TopicID: &one},
		{ID: 2, OriginalName: "y", TopicID: &two},
		{ID: 3, OriginalName: "z"},
	}}

	feed, err := NewService(repo, "/uploads").List(context.Background(), Filter{TopicID: &two})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, names(feed.Items))
}

func TestParseFilter(t *testing.T) {
	for _, raw := range []string{"", "all", "ALL", " all "} {
		f, err := ParseFilter(raw)
		require.NoError(t, err, raw)
		assert.Nil(t, f.TopicID, raw)
	}

	f, err := ParseFilter("7")
	require.NoError(t, err)
	assert.Equal(t, uint(7), *f.TopicID)

	for _, raw := range []string{"0", "-3", "general", "1e3"} {
		_, err := ParseFilter(raw)
		assert.ErrorIs(t, err, ErrInvalidFilter, raw)
	}
}

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(svc))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHandler_ListShapes(t *testing.T) {
	f := setup(t)
	travel := f.topic(t, "Viajes")
	f.add(t, upload.Image, "beach.png", 1, &travel)
	f.add(t, upload.Video, "plane.mp4", 2, nil)
	r := setupRouter(f.service)

	rr := get(r, "/api/content")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Images []map[string]any `json:"images"`
		Videos []map[string]any `json:"videos"`
		Items  []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Images, 1)
	require.Len(t, body.Videos, 1)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "beach.png", body.Images[0]["originalName"])
	assert.Equal(t, "Viajes", body.Images[0]["topic"].(map[string]any)["name"])
	assert.Equal(t, "plane.mp4", body.Items[0]["originalName"])
	assert.Equal(t, "video", body.Items[0]["type"])

	rr = get(r, fmt.Sprintf("/api/content?topic=%d", travel))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "beach.png", body.Items[0]["originalName"])
}

func TestHandler_EmptyFeedUsesArrays(t *testing.T) {
	f := setup(t)
	r := setupRouter(f.service)

	rr := get(r, "/api/content?topicId=99")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"images":[],"videos":[],"items":[]}`, rr.Body.String())
}

func TestHandler_Errors(t *testing.T) {
	f := setup(t)

	rr := get(setupRouter(f.service), "/api/content?topic=nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = get(setupRouter(NewService(failingRepo{}, "/uploads")), "/api/content")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error"`)
}
