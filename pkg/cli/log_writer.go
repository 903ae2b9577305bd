package cli

import (
	"strings"
	"sync"
)

// LogWriter implements io.Writer and captures log output for TUI display.
// It keeps the most recent lines in a sliding window and notifies via a
// channel.
type LogWriter struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	ch       chan string
}

// NewLogWriter creates a new log writer keeping at most maxLines lines.
func NewLogWriter(maxLines int) *LogWriter {
	return &LogWriter{
		maxLines: maxLines,
		ch:       make(chan string, 100),
	}
}

// Write implements io.Writer.
// Handles multi-line input by splitting on newlines.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	text := strings.TrimRight(string(p), "\n")

	w.mu.Lock()
	for _, line := range strings.Split(text, "\n") {
		w.lines = append(w.lines, line)
		if len(w.lines) > w.maxLines {
			w.lines = w.lines[len(w.lines)-w.maxLines:]
		}

		// Non-blocking send to channel
		select {
		case w.ch <- line:
		default:
		}
	}
	w.mu.Unlock()
	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (w *LogWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}

// Channel returns the notification channel for new lines.
func (w *LogWriter) Channel() <-chan string {
	return w.ch
}
