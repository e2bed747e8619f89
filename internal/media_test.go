package internal

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()
	tests := map[string]MediaClass{
		"a.jpg":           ClassImage,
		"a.JPEG":          ClassImage,
		"b.HEIC":          ClassImage,
		"c.mov":           ClassVideo,
		"c.MP4":           ClassVideo,
		"notes.txt":       ClassOther,
		"README":          ClassOther,
		"archive.jpg.zip": ClassOther,
	}
	for name, want := range tests {
		if got := cfg.Classify(name); got != want {
			t.Errorf("Classify(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestScanMediaFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.mov", "notes.txt", "c.PNG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub.jpg"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub.jpg", "nested.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ScanMediaFiles(dir, DefaultConfig())
	if err != nil {
		t.Fatalf("ScanMediaFiles failed: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Expected absolute path, got %s", f.Path)
		}
	}
	if want := []string{"a.mov", "b.jpg", "c.PNG"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ScanMediaFiles = %v, want %v", names, want)
	}
	if files[0].Class != ClassVideo || files[2].Class != ClassImage {
		t.Errorf("Unexpected classes: %s, %s", files[0].Class, files[2].Class)
	}
}
