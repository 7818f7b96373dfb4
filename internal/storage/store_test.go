package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/config"
	apperrors "bizreport/internal/errors"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, apperrors.NewNotFoundError("object " + bucket + "/" + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjects) PutObject(_ context.Context, bucket, key string, data []byte, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = append([]byte(nil), data...)
	m.types[bucket+"/"+key] = contentType
	return nil
}

func newTestStore(opts ...Option) *Store {
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewStore(config.StorageConfig{}, opts...)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Location
		expectError bool
	}{
		{"plain path", "data/financials.csv", Location{Scheme: SchemeFile, Path: filepath.Clean("data/financials.csv")}, false},
		{"file url", "file:///tmp/out.csv", Location{Scheme: SchemeFile, Path: "/tmp/out.csv"}, false},
		{"s3", "s3://reports/2014/cleaned.parquet", Location{Scheme: SchemeS3, Bucket: "reports", Key: "2014/cleaned.parquet"}, false},
		{"minio upper case scheme", "MINIO://raw/financials.csv", Location{Scheme: SchemeMinio, Bucket: "raw", Key: "financials.csv"}, false},
		{"empty", "", Location{}, true},
		{"bucket only", "s3://reports", Location{}, true},
		{"empty key", "s3://reports/", Location{}, true},
		{"unknown scheme", "gs://bucket/key", Location{}, true},
		{"empty file url", "file://", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_NameAndString(t *testing.T) {
	obj := Location{Scheme: SchemeS3, Bucket: "reports", Key: "cleaned.xlsx"}
	assert.True(t, obj.IsObject())
	assert.Equal(t, "cleaned.xlsx", obj.Name())
	assert.Equal(t, "s3://reports/cleaned.xlsx", obj.String())

	file := Location{Scheme: SchemeFile, Path: "out/cleaned.csv"}
	assert.False(t, file.IsObject())
	assert.Equal(t, "out/cleaned.csv", file.Name())
	assert.Equal(t, "out/cleaned.csv", file.String())
}

func TestStore_FileCreateAndOpen(t *testing.T) {
	dir := t.TempDir()
	loc := Location{Scheme: SchemeFile, Path: filepath.Join(dir, "nested", "cleaned.csv")}
	store := newTestStore()

	w, err := store.Create(context.Background(), loc, "text/csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("segment\nGovernment\n"))
	require.NoError(t, err)

	// Not visible before Close
	_, statErr := os.Stat(loc.Path)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	r, err := store.Open(context.Background(), loc)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "segment\nGovernment\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(loc.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestStore_FileAbort(t *testing.T) {
	dir := t.TempDir()
	loc := Location{Scheme: SchemeFile, Path: filepath.Join(dir, "cleaned.csv")}
	store := newTestStore()

	w, err := store.Create(context.Background(), loc, "text/csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_OpenMissingFile(t *testing.T) {
	_, err := newTestStore().Open(context.Background(), Location{Scheme: SchemeFile, Path: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestStore_Objects(t *testing.T) {
	objects := newMemoryObjects()
	store := newTestStore(WithObjectStore(objects))
	loc := Location{Scheme: SchemeMinio, Bucket: "reports", Key: "cleaned.csv"}

	w, err := store.Create(context.Background(), loc, "text/csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("segment\n"))
	require.NoError(t, err)
	assert.Empty(t, objects.objects, "uploaded before Close")
	require.NoError(t, w.Close())

	assert.Equal(t, "text/csv", objects.types["reports/cleaned.csv"])

	r, err := store.Open(context.Background(), loc)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "segment\n", string(data))
}

func TestStore_ObjectAbortAndFailure(t *testing.T) {
	objects := newMemoryObjects()
	store := newTestStore(WithObjectStore(objects))
	loc := Location{Scheme: SchemeS3, Bucket: "reports", Key: "cleaned.csv"}

	w, err := store.Create(context.Background(), loc, "text/csv")
	require.NoError(t, err)
	_, _ = w.Write([]byte("partial"))
	require.NoError(t, w.Abort())
	require.NoError(t, w.Close())
	assert.Empty(t, objects.objects)

	objects.putErr = apperrors.NewStorageError("object store request failed", errors.New("connection refused"))
	w, err = store.Create(context.Background(), loc, "text/csv")
	require.NoError(t, err)
	assert.Error(t, w.Close())
}

func TestStore_ObjectsRequireConfig(t *testing.T) {
	_, err := newTestStore().Open(context.Background(), Location{Scheme: SchemeS3, Bucket: "b", Key: "k"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}

func TestNewMinioStore(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.StorageConfig
		expectError bool
	}{
		{"host and port", config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "minio", SecretKey: "minio123"}, false},
		{"https url", config.StorageConfig{Endpoint: "https://s3.amazonaws.com", AccessKey: "a", SecretKey: "b", Region: "us-east-1"}, false},
		{"missing endpoint", config.StorageConfig{AccessKey: "a", SecretKey: "b"}, true},
		{"missing credentials", config.StorageConfig{Endpoint: "localhost:9000"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMinioStore(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, store.client)
		})
	}
}
