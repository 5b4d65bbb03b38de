package upload

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mediadrop/internal/database"
	"mediadrop/internal/domain/topic"
	"mediadrop/internal/metrics"
	"mediadrop/internal/notify"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	payloads []notify.Payload
}

func (d *fakeDispatcher) Dispatch(_ context.Context, p notify.Payload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, p)
}

func (d *fakeDispatcher) received() []notify.Payload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Payload(nil), d.payloads...)
}

type failingRepository struct {
	err error
}

func (r failingRepository) Create(context.Context, Kind, *Media) error { return r.err }

func (r failingRepository) List(context.Context, Kind, *uint) ([]Media, error) { return nil, r.err }

type testEnv struct {
	db         *gorm.DB
	repo       Repository
	fs         afero.Fs
	storage    *Storage
	dispatcher *fakeDispatcher
	metrics    *metrics.Metrics
	service    *Service
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenMemory("upload_test_" + name)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, topic.Migrate(db))
	require.NoError(t, Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:         db,
		repo:       NewRepository(db),
		fs:         afero.NewMemMapFs(),
		dispatcher: &fakeDispatcher{},
		metrics:    metrics.New(),
	}
	env.storage = NewStorage(env.fs)
	require.NoError(t, env.storage.EnsureDirs(Kinds()...))
	env.service = NewService(env.repo, env.storage, env.dispatcher, env.metrics, zerolog.Nop())
	return env
}

func (e *testEnv) files(t *testing.T, kind Kind) []string {
	t.Helper()
	infos, err := afero.ReadDir(e.fs, kind.Directory)
	require.NoError(t, err)
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names
}

func (e *testEnv) rows(t *testing.T, kind Kind) []Media {
	t.Helper()
	items, err := e.repo.List(context.Background(), kind, nil)
	require.NoError(t, err)
	return items
}

func createTopic(t *testing.T, db *gorm.DB, name string) *topic.Topic {
	t.Helper()
	tp := &topic.Topic{Name: name}
	require.NoError(t, db.Create(tp).Error)
	return tp
}

func uintPtr(v uint) *uint { return &v }
