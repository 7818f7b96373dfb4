package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogRecord is one captured log call with its attributes flattened,
// including those bound with Logger.With.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type captureStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records every log call for assertions.
type CaptureHandler struct {
	store *captureStore
	bound []slog.Attr
}

// NewTestLogger returns a logger backed by a fresh CaptureHandler.
func NewTestLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{store: &captureStore{}}
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(h.bound)+len(attrs))
	bound = append(bound, h.bound...)
	bound = append(bound, attrs...)
	return &CaptureHandler{store: h.store, bound: bound}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// Find returns the records at level whose message contains msg.
func (h *CaptureHandler) Find(level slog.Level, msg string) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			out = append(out, r)
		}
	}
	return out
}
