package logger

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
)

// NewTestLogger returns a WARN-level text logger on stdout for tests.
// Setting TEST_DEBUG lowers the level to DEBUG.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Recorder collects log output in memory so tests can assert on it.
type Recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// String returns everything logged so far.
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// NewRecordingLogger returns a DEBUG-level text logger writing to a Recorder.
func NewRecordingLogger() (*slog.Logger, *Recorder) {
	rec := &Recorder{}
	return slog.New(slog.NewTextHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})), rec
}
