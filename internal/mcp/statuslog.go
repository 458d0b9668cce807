package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// statusLogTimeFormat matches ISO-8601 UTC with milliseconds, e.g. 2026-10-19T08:15:30.123Z.
const statusLogTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// StatusLog appends one timestamped line per status check. A nil *StatusLog is a no-op.
type StatusLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStatusLog returns a log appending to path, or nil when path is empty.
func NewStatusLog(path string) *StatusLog {
	if path == "" {
		return nil
	}
	return &StatusLog{path: path, now: time.Now}
}

// Path returns the log file path.
func (l *StatusLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes "[timestamp] message" to the log, creating it and its directory if needed.
func (l *StatusLog) Append(message string) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create status log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open status log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", l.now().UTC().Format(statusLogTimeFormat), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write status log: %w", err)
	}
	return nil
}
