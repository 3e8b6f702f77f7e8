package log

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resolve.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now(),
		ID:        "evt-123",
		Kind:      KindFlags,
		Outcome:   OutcomeResolved,
		Tags:      []string{"C1"},
	})
	if logger.Written() != 1 {
		t.Errorf("Written = %d, want 1", logger.Written())
	}
	if logger.Path() != path {
		t.Errorf("Path = %q, want %q", logger.Path(), path)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.ID != "evt-123" {
		t.Errorf("ID = %q, want %q", decoded.ID, "evt-123")
	}
	if len(decoded.Tags) != 1 || decoded.Tags[0] != "C1" {
		t.Errorf("Tags = %v, want [C1]", decoded.Tags)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.glog")

	for _, id := range []string{"first", "second"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), ID: id})
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "first" || events[1].ID != "second" {
		t.Errorf("events out of order: %q, %q", events[0].ID, events[1].ID)
	}
}

func TestFileLoggerThreadSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const goroutines = 10
	const eventsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				logger.Log(Event{
					Timestamp: time.Now(),
					ID:        "evt",
					Kind:      KindOpCode,
					Offset:    i,
				})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != goroutines*eventsPerGoroutine {
		t.Errorf("got %d events, want %d", len(events), goroutines*eventsPerGoroutine)
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Log after close is ignored
	logger.Log(Event{ID: "late"})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file size = %d, want 0", info.Size())
	}
}

func TestFileLoggerBadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileLogger(filepath.Join(blocker, "resolve.glog")); err == nil {
		t.Error("expected error when parent is a file")
	}
}

func TestFileLoggerKeepsFirstWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolve.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{ID: "kept"})

	// pull the file out from under the encoder
	logger.file.Close()
	logger.Log(Event{ID: "lost"})
	logger.Log(Event{ID: "dropped"})

	err = logger.Err()
	if err == nil {
		t.Fatal("expected a write error")
	}
	if !strings.Contains(err.Error(), "writing event lost") {
		t.Errorf("error = %v, want it to name the first failed event", err)
	}
	if logger.Written() != 1 {
		t.Errorf("Written = %d, want 1", logger.Written())
	}
	if cerr := logger.Close(); cerr != err {
		t.Errorf("Close = %v, want %v", cerr, err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}
