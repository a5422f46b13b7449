// Package logging builds the run-scoped logger: a debug-level text log in
// the run directory plus a color-coded console stream for errors. The
// logger is constructed per run and closed with it; there is no
// process-global logger state.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogFileName is the append-only event log inside each run directory.
const LogFileName = "processing.log"

// Run owns the logging resources of one batch invocation.
type Run struct {
	Logger *slog.Logger
	file   *os.File
}

// NewRun opens dir/processing.log and returns a logger that writes every
// event there and mirrors error-level events to stderr with severity
// colors. Safe for concurrent workers.
func NewRun(dir string) (*Run, error) {
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	logger := slog.New(multiHandler{
		newLineHandler(&syncWriter{w: f}, slog.LevelDebug, false),
		newLineHandler(os.Stderr, slog.LevelError, true),
	})
	return &Run{Logger: logger, file: f}, nil
}

// Close releases the log file. The logger must not be used afterwards.
func (r *Run) Close() error {
	return r.file.Close()
}

// Console returns a logger for contexts that have no run directory yet
// (configuration loading, CLI errors).
func Console() *slog.Logger {
	return slog.New(newLineHandler(os.Stderr, slog.LevelInfo, true))
}

// Severity colors mirror the classic colorlog scheme.
var levelStyles = map[slog.Level]lipgloss.Style{
	slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// lineHandler formats records as single human-readable lines:
// timestamp - LEVEL - message key=value ...
type lineHandler struct {
	w     io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

func newLineHandler(w io.Writer, level slog.Level, color bool) *lineHandler {
	return &lineHandler{w: w, level: level, color: color}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(rec.Time.Format(time.DateTime))
	b.WriteString(" - ")
	b.WriteString(rec.Level.String())
	b.WriteString(" - ")
	b.WriteString(rec.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	line := b.String()
	if h.color {
		if style, ok := levelStyles[rec.Level]; ok {
			line = style.Render(line)
		}
	}
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *lineHandler) WithGroup(string) slog.Handler { return h }

// multiHandler fans a record out to every child whose level admits it.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, rec slog.Record) error {
	var firstErr error
	for _, h := range m {
		if h.Enabled(ctx, rec.Level) {
			if err := h.Handle(ctx, rec); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make(multiHandler, len(m))
	for i, h := range m {
		children[i] = h.WithAttrs(attrs)
	}
	return children
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	children := make(multiHandler, len(m))
	for i, h := range m {
		children[i] = h.WithGroup(name)
	}
	return children
}

// syncWriter serializes writes from concurrent mode workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
