package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"bizreport/internal/config"
	apperrors "bizreport/internal/errors"
)

// Writer is an output that is published by Close or dropped by Abort
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Store opens and creates locations. Object locations share one lazily
// created client.
type Store struct {
	cfg    config.StorageConfig
	logger *slog.Logger

	once    sync.Once
	objects ObjectStore
	initErr error
}

// Option configures a Store
type Option func(*Store)

// WithObjectStore replaces the minio client
func WithObjectStore(o ObjectStore) Option {
	return func(s *Store) {
		s.objects = o
		s.once.Do(func() {})
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a store for the given credentials
func NewStore(cfg config.StorageConfig, opts ...Option) *Store {
	s := &Store{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) objectStore() (ObjectStore, error) {
	s.once.Do(func() {
		s.objects, s.initErr = NewMinioStore(s.cfg)
	})
	return s.objects, s.initErr
}

// Open opens a location for reading
func (s *Store) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	if loc.IsObject() {
		objects, err := s.objectStore()
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Opening object",
			slog.String("bucket", loc.Bucket),
			slog.String("key", loc.Key))
		return objects.GetObject(ctx, loc.Bucket, loc.Key)
	}

	f, err := os.Open(loc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("file %s", loc.Path))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", loc.Path)
	}
	return f, nil
}

// Create opens a location for writing. Nothing is visible at the location
// until Close returns nil: local files are written to a temporary file and
// renamed, objects are buffered and uploaded.
func (s *Store) Create(ctx context.Context, loc Location, contentType string) (Writer, error) {
	if loc.IsObject() {
		objects, err := s.objectStore()
		if err != nil {
			return nil, err
		}
		return &objectWriter{ctx: ctx, store: objects, loc: loc, contentType: contentType, logger: s.logger}, nil
	}

	dir := filepath.Dir(loc.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(loc.Path)+".*.tmp")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err).WithContext("path", loc.Path)
	}
	return &fileWriter{tmp: tmp, path: loc.Path, logger: s.logger}, nil
}

type fileWriter struct {
	tmp    *os.File
	path   string
	logger *slog.Logger
	closed bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

func (w *fileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", w.path)
	}
	if err := os.Chmod(w.tmp.Name(), 0644); err != nil {
		os.Remove(w.tmp.Name())
		return apperrors.NewStorageError("failed to write file", err).WithContext("path", w.path)
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		os.Remove(w.tmp.Name())
		return apperrors.NewStorageError("failed to move file into place", err).WithContext("path", w.path)
	}

	w.logger.Info("Wrote file", slog.String("path", w.path))
	return nil
}

func (w *fileWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.tmp.Close()
	return os.Remove(w.tmp.Name())
}

type objectWriter struct {
	ctx         context.Context
	store       ObjectStore
	loc         Location
	contentType string
	logger      *slog.Logger

	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.store.PutObject(w.ctx, w.loc.Bucket, w.loc.Key, w.buf.Bytes(), w.contentType); err != nil {
		return err
	}
	w.logger.Info("Uploaded object",
		slog.String("location", w.loc.String()),
		slog.Int("size_bytes", w.buf.Len()))
	return nil
}

func (w *objectWriter) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}
