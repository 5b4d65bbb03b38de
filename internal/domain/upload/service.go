package upload

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"mediadrop/internal/metrics"
	"mediadrop/internal/notify"
)

const (
	sniffLen        = 3072
	maxNameAttempts = 3
)

// Dispatcher receives completed uploads. It must not block and has no way
// to report failure back.
type Dispatcher interface {
	Dispatch(ctx context.Context, p notify.Payload)
}

// Service runs the ingestion pipeline: validate, write, record, notify.
type Service struct {
	repo       Repository
	storage    *Storage
	namer      *Namer
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(repo Repository, storage *Storage, dispatcher Dispatcher, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		storage:    storage,
		namer:      NewNamer(),
		dispatcher: dispatcher,
		metrics:    m,
		log:        log.With().Str("component", "upload").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest stores one file and records it.
func (s *Service) Ingest(ctx context.Context, kind Kind, in FileInput, meta Meta) (*Record, error) {
	stored, err := s.Store(ctx, kind, in)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, kind, stored, meta)
}

// Store validates the input and streams it to a freshly named file. On any
// failure nothing is left on disk.
func (s *Service) Store(ctx context.Context, kind Kind, in FileInput) (*StoredFile, error) {
	stored, err := s.store(ctx, kind, in)
	if err != nil {
		s.metrics.ObserveUpload(kind.Name, resultLabel(err), 0)
		return nil, err
	}
	return stored, nil
}

func (s *Service) store(ctx context.Context, kind Kind, in FileInput) (*StoredFile, error) {
	if in.Reader == nil || in.Name == "" {
		return nil, newError(ErrMissingFile, kind.MissingMessage, nil)
	}
	if err := kind.Validate(in.Name, in.MimeType); err != nil {
		s.log.Info().Str("kind", kind.Name).Str("original_name", in.Name).Str("mimetype", in.MimeType).Err(err).Msg("upload rejected")
		return nil, err
	}
	declared := NormalizeMimeType(in.MimeType)

	f, p, filename, err := s.create(kind, in.Name)
	if err != nil {
		return nil, newError(ErrStorage, "No se pudo guardar el archivo", err)
	}

	br := bufio.NewReaderSize(in.Reader, sniffLen)
	head, _ := br.Peek(sniffLen)
	if detected := mimetype.Detect(head); len(head) > 0 && !detected.Is(declared) {
		s.log.Warn().
			Str("kind", kind.Name).
			Str("original_name", in.Name).
			Str("declared", declared).
			Str("detected", detected.String()).
			Msg("declared mime type does not match content")
	}

	limited := &io.LimitedReader{R: &ctxReader{ctx: ctx, r: br}, N: kind.MaxSize + 1}
	n, copyErr := io.Copy(f, limited)
	if copyErr == nil && n > kind.MaxSize {
		copyErr = errTooLarge
	}
	if copyErr == nil {
		copyErr = f.Sync()
	}
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}

	if copyErr != nil {
		if rmErr := s.storage.Remove(p); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Error().Err(rmErr).Str("path", p).Msg("failed to remove partial upload")
		}
		if isTooLarge(copyErr) {
			return nil, newError(ErrFileTooLarge, kind.TooLargeMessage(), copyErr)
		}
		s.log.Warn().Err(copyErr).Str("kind", kind.Name).Str("path", p).Msg("upload aborted while writing")
		return nil, newError(ErrStorage, "No se pudo guardar el archivo", copyErr)
	}

	return &StoredFile{
		Kind:         kind,
		Filename:     filename,
		OriginalName: in.Name,
		Path:         p,
		Size:         n,
		MimeType:     declared,
		StoredAt:     s.now(),
	}, nil
}

func (s *Service) create(kind Kind, originalName string) (afero.File, string, string, error) {
	var err error
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		dir, name := s.namer.Name(kind, originalName)
		f, p, createErr := s.storage.Create(dir, name)
		if createErr == nil {
			return f, p, name, nil
		}
		err = createErr
		if !errors.Is(createErr, os.ErrExist) {
			break
		}
	}
	return nil, "", "", err
}

// Commit records a stored file and hands it to the dispatcher. A failed
// insert leaves the file on disk and logs it for manual cleanup.
func (s *Service) Commit(ctx context.Context, kind Kind, stored *StoredFile, meta Meta) (*Record, error) {
	m := &Media{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		Description:  meta.Description,
		FilePath:     stored.Path,
		Size:         stored.Size,
		Mimetype:     stored.MimeType,
		TopicID:      meta.TopicID,
		CreatedAt:    stored.StoredAt,
		UpdatedAt:    stored.StoredAt,
	}

	if err := s.repo.Create(ctx, kind, m); err != nil {
		s.log.Error().
			Err(err).
			Str("kind", kind.Name).
			Str("orphan_path", stored.Path).
			Int64("size", stored.Size).
			Msg("metadata insert failed, file left on disk")
		s.metrics.ObserveUpload(kind.Name, resultLabel(ErrPersistence), 0)
		return nil, newError(ErrPersistence, "No se pudo registrar el archivo", err)
	}

	rec := newRecord(kind, m)
	s.metrics.ObserveUpload(kind.Name, "ok", rec.Size)
	s.log.Info().
		Str("kind", kind.Name).
		Uint("id", rec.ID).
		Str("filename", rec.Filename).
		Str("original_name", rec.OriginalName).
		Str("size", humanize.IBytes(uint64(rec.Size))).
		Msg("upload stored")

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, rec.Payload())
	}
	return rec, nil
}

// Discard removes a stored file that will not be committed.
func (s *Service) Discard(stored *StoredFile) {
	if stored == nil {
		return
	}
	if err := s.storage.Remove(stored.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error().Err(err).Str("path", stored.Path).Msg("failed to discard upload")
	}
}

var errTooLarge = errors.New("size limit exceeded")

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.Is(err, errTooLarge) || errors.As(err, &maxErr)
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
