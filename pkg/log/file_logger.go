package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a .glog file, one CBOR item per event, in
// the form Reader reads back. It is safe for concurrent use.
//
// Write failures do not reach the resolver. The first one is kept, later
// events are dropped, and Err and Close report it.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	enc     *cbor.Encoder
	written int
	err     error
}

// NewFileLogger opens path for appending, creating the file and its parent
// directories if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &FileLogger{path: path, file: f, enc: NewEncoder(f)}, nil
}

// Log appends event. It is a no-op once the file is closed or has failed.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.err != nil {
		return
	}
	if err := l.enc.Encode(event); err != nil {
		l.err = fmt.Errorf("writing event %s to %s: %w", event.ID, l.path, err)
		return
	}
	l.written++
}

// Path returns the file being appended to.
func (l *FileLogger) Path() string { return l.path }

// Written returns how many events this logger appended.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Err returns the first write failure.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the file and returns the first write failure, if any.
// Later calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if l.err != nil {
		return l.err
	}
	return err
}

var _ Logger = (*FileLogger)(nil)
