// Package logbook keeps the per-run diagnostics file: one timestamped,
// leveled line per event, written through a single handle that stays open
// for the whole run.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook appends entries to a text file. It is safe for concurrent use.
// Write failures are remembered (see Err) but never returned to callers of
// Append, so diagnostics cannot break the work being logged.
type Logbook struct {
	path string

	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
	err  error
}

// Open creates (or appends to) the logbook at path.
func Open(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logbook: open: %w", err)
	}
	return &Logbook{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry stamped with the current time.
func (l *Logbook) Append(level Level, message string) {
	l.AppendAt(time.Now(), level, message)
}

// AppendAt writes a single entry with an explicit timestamp.
func (l *Logbook) AppendAt(at time.Time, level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return
	}
	line := fmt.Sprintf("%s %-5s %s\n",
		at.UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	if _, err := l.w.WriteString(line); err != nil && l.err == nil {
		l.err = err
	}
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

// Flush pushes buffered entries to disk.
func (l *Logbook) Flush() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

func (l *Logbook) flushLocked() error {
	if l.w == nil {
		return l.err
	}
	if err := l.w.Flush(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}

// Err returns the first write error seen, if any.
func (l *Logbook) Err() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close flushes and releases the file handle. Later appends are dropped.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return l.err
	}
	flushErr := l.flushLocked()
	closeErr := l.file.Close()
	l.file, l.w = nil, nil
	if flushErr != nil {
		return fmt.Errorf("logbook: flush: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("logbook: close: %w", closeErr)
	}
	return nil
}

// Tail returns up to maxLines of the most recent entries plus the total
// number of entries in the file.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.flushLocked()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}
