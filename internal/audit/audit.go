// Package audit provides append-only JSONL logging of command lifecycle
// events, with size-based rotation into an archive directory.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultMaxLogSize caps the live log at 16MB before rotation.
	DefaultMaxLogSize = 16 * 1024 * 1024
	archiveDir        = "archive"
)

// Event is one audit entry.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger appends events to a JSONL file.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	path        string
	runID       string
	currentSize int64
	maxSize     int64
	rotations   int
}

// New opens (or creates) the audit log at path. runID is stamped on every
// event the logger records.
func New(path, runID string, maxSize int64) (*Logger, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxLogSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat audit log: %w", err)
	}
	return &Logger{
		file:        f,
		path:        path,
		runID:       runID,
		currentSize: info.Size(),
		maxSize:     maxSize,
	}, nil
}

// Record implements the processor's event sink.
func (l *Logger) Record(event string, details map[string]any) {
	// Audit failures must never fail the workflow; drop the entry instead.
	_ = l.Append(Event{Type: event, Details: details})
}

// Append writes one event. Timestamp and run id are filled in when unset.
func (l *Logger) Append(e Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("audit logger is closed")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.RunID == "" {
		e.RunID = l.runID
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	line = append(line, '\n')

	if l.currentSize+int64(len(line)) > l.maxSize {
		if err := l.rotate(); err != nil {
			return err
		}
	}
	n, err := l.file.Write(line)
	l.currentSize += int64(n)
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

func (l *Logger) rotate() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close audit log for rotation: %w", err)
	}
	dir := filepath.Join(filepath.Dir(l.path), archiveDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	l.rotations++
	archived := filepath.Join(dir, fmt.Sprintf("%s.%s.%d",
		filepath.Base(l.path), time.Now().UTC().Format("20060102T150405"), l.rotations))
	if err := os.Rename(l.path, archived); err != nil {
		return fmt.Errorf("archive audit log: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("reopen audit log: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
