package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsNewMediaFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, DefaultConfig())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	for _, name := range []string{"notes.txt", "IMG_20230704_143000.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case c := <-w.Events():
		if c.Name != "IMG_20230704_143000.jpg" || c.Class != ClassImage {
			t.Errorf("Unexpected candidate: %+v", c)
		}
	case err := <-w.Errors():
		t.Fatalf("Watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for the new image")
	}
}

func TestWatcher_MissingFolder(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), DefaultConfig()); err == nil {
		t.Error("Expected an error watching a missing folder")
	}
}
