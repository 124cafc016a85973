package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileState is the rotation state shared by a handler and every child
// produced by WithAttrs/WithGroup, so all of them write to the same file.
type fileState struct {
	mu       sync.Mutex
	file     *os.File
	fileName string
	logDir   string
	prefix   string
}

// DailyFileHandler writes slog records to a per-day log file and mirrors
// them to stdout through a standard text handler.
type DailyFileHandler struct {
	state          *fileState
	defaultHandler slog.Handler
}

func NewDailyFileHandler(logDir, prefix string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		state:          &fileState{logDir: logDir, prefix: prefix},
		defaultHandler: slog.NewTextHandler(os.Stdout, opts),
	}

	if err := h.state.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

func (s *fileState) rotateIfNeeded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileName := fmt.Sprintf("%s-%s.log", s.prefix, time.Now().Format("2006-01-02"))
	if fileName == s.fileName {
		return nil
	}

	if s.file != nil {
		s.file.Close()
	}

	f, err := os.OpenFile(filepath.Join(s.logDir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.file = f
	s.fileName = fileName
	return nil
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.state.rotateIfNeeded(); err != nil {
		// If rotation fails, at least log to stdout
		return h.defaultHandler.Handle(ctx, r)
	}

	var attrs string
	r.Attrs(func(a slog.Attr) bool {
		attrs += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	logLine := fmt.Sprintf("[%s] %-5s %s%s\n",
		r.Time.Format("2006/01/02 15:04:05.000"), r.Level.String(), r.Message, attrs)

	h.state.mu.Lock()
	_, err := h.state.file.WriteString(logLine)
	h.state.mu.Unlock()

	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil {
		if err == nil {
			err = err2
		}
	}

	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DailyFileHandler{
		state:          h.state,
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	return &DailyFileHandler{
		state:          h.state,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}
