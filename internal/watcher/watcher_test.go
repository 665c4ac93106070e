package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(planPath, []byte("# Plan\n"), 0644); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}

	w, err := New(planPath, 100*time.Millisecond, func(string) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
}

func TestNewInvalidDirectory(t *testing.T) {
	_, err := New("/nonexistent/dir/plan.md", 100*time.Millisecond, func(string) {})
	if err == nil {
		t.Fatal("New() should return error when the plan directory does not exist")
	}
}

func TestPlanWatcher_FiresOnEdit(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(planPath, []byte("# Plan\n"), 0644); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}

	var mu sync.Mutex
	var fired []string

	w, err := New(planPath, 50*time.Millisecond, func(path string) {
		mu.Lock()
		fired = append(fired, path)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Give the watcher time to start
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(planPath, []byte("# Plan\n\nedited\n"), 0644); err != nil {
		t.Fatalf("failed to edit plan file: %v", err)
	}

	// Wait for debounce and event processing
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(fired) == 0 {
		t.Fatal("expected the callback to fire after an edit")
	}
	if fired[0] != planPath {
		t.Errorf("callback path = %q, want %q", fired[0], planPath)
	}
}

func TestPlanWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(planPath, []byte("# Plan\n"), 0644); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}

	var mu sync.Mutex
	count := 0

	w, err := New(planPath, 50*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write sibling file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("callback fired %d times for an unrelated file", count)
	}
}

func TestPlanWatcher_StartAfterClose(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.md")
	os.WriteFile(planPath, []byte("x"), 0644)

	w, err := New(planPath, time.Millisecond, func(string) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("Start() after Close() should fail")
	}
	// Close is idempotent
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
