package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Level separates success toasts from destructive ones.
type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

// Notification is one user-facing message.
type Notification struct {
	Level       Level  `json:"level"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// Sink receives notifications. It is write-only; implementations must not block.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// ================================================
// LOG SINK
// ================================================

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) {
	ev := s.log.Info()
	if n.Level == LevelFailure {
		ev = s.log.Warn()
	}
	ev.Str("kind", string(n.Level)).
		Str("title", n.Title).
		Str("description", n.Description).
		Msg("[NOTIFY] notification")
}

// ================================================
// CONSOLE SINK
// ================================================

// ConsoleSink prints notifications as single lines, for the CLI.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) Notify(ctx context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mark := "✔"
	if n.Level == LevelFailure {
		mark = "✘"
	}
	if n.Title != "" {
		fmt.Fprintf(s.out, "%s %s: %s\n", mark, n.Title, n.Description)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", mark, n.Description)
}

// ================================================
// MEMORY SINK
// ================================================

// MemorySink records notifications in order. Useful in tests and for
// callers that render notifications themselves.
type MemorySink struct {
	mu    sync.Mutex
	items []Notification
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Notify(ctx context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
}

// All returns a copy of everything recorded so far.
func (s *MemorySink) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Last returns the most recent notification.
func (s *MemorySink) Last() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Notification{}, false
	}
	return s.items[len(s.items)-1], true
}

// ================================================
// FAN-OUT
// ================================================

// Multi delivers each notification to every sink in order.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		s.Notify(ctx, n)
	}
}
