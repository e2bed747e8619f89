package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var takenAt = time.Date(2023, 7, 4, 14, 30, 0, 0, time.Local)

func createFile(t *testing.T, dir, name string) Candidate {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data "+name), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	c, err := DefaultConfig().NewCandidate(path)
	if err != nil {
		t.Fatalf("NewCandidate failed: %v", err)
	}
	return c
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		class MediaClass
		ext   string
		want  string
	}{
		{ClassImage, ".jpg", "IMG-20230704-143000.jpg"},
		{ClassImage, ".JPG", "IMG-20230704-143000.jpg"},
		{ClassVideo, ".MOV", "VID-20230704-143000.mov"},
		{ClassImage, "", "IMG-20230704-143000"},
	}
	for _, tt := range tests {
		got, err := CanonicalName(tt.class, takenAt, tt.ext)
		if err != nil {
			t.Fatalf("CanonicalName(%s, %q) failed: %v", tt.class, tt.ext, err)
		}
		if got != tt.want {
			t.Errorf("CanonicalName(%s, %q) = %q, want %q", tt.class, tt.ext, got, tt.want)
		}
	}

	if _, err := CanonicalName(ClassOther, takenAt, ".txt"); !errors.Is(err, ErrNoCanonicalName) {
		t.Errorf("Expected ErrNoCanonicalName for other class, got %v", err)
	}
}

func TestRenamer_Rename(t *testing.T) {
	dir := t.TempDir()
	c := createFile(t, dir, "IMG_2023-07-04_14-30-00.JPG")
	r := NewRenamer()

	got, err := r.Rename(c, takenAt)
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	want := filepath.Join(dir, "IMG-20230704-143000.jpg")
	if got != want {
		t.Errorf("Rename returned %s, want %s", got, want)
	}
	if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
		t.Errorf("Original file still present: %s", c.Path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Renamed file missing: %v", err)
	}
}

func TestRenamer_Idempotent(t *testing.T) {
	dir := t.TempDir()
	c := createFile(t, dir, "IMG-20230704-143000.jpg")
	r := NewRenamer()

	got, err := r.Rename(c, takenAt)
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got != c.Path {
		t.Errorf("Already canonical file moved to %s", got)
	}
}

func TestRenamer_Collisions(t *testing.T) {
	dir := t.TempDir()
	r := NewRenamer()

	var got []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p, err := r.Rename(createFile(t, dir, name), takenAt)
		if err != nil {
			t.Fatalf("Rename %s failed: %v", name, err)
		}
		got = append(got, filepath.Base(p))
	}

	want := []string{"IMG-20230704-143000.jpg", "IMG-20230704-143000_1.jpg", "IMG-20230704-143000_2.jpg"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rename %d = %s, want %s", i, got[i], want[i])
		}
	}

	// Every source survived under its own name
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("Expected 3 files after renaming, found %d", len(entries))
	}
}

func TestRenamer_SuffixedFileStays(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "IMG-20230704-143000.jpg")
	c := createFile(t, dir, "IMG-20230704-143000_1.jpg")
	r := NewRenamer()

	got, err := r.Rename(c, takenAt)
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got != c.Path {
		t.Errorf("Suffixed canonical file moved to %s", got)
	}
}

func TestRenamer_OtherClassUntouched(t *testing.T) {
	dir := t.TempDir()
	c := createFile(t, dir, "notes.txt")
	r := NewRenamer()

	got, err := r.Rename(c, takenAt)
	if err != nil || got != c.Path {
		t.Errorf("Expected no-op for other class, got %s, %v", got, err)
	}
}

func TestRenamer_MissingSource(t *testing.T) {
	dir := t.TempDir()
	c, _ := DefaultConfig().NewCandidate(filepath.Join(dir, "gone.jpg"))
	r := NewRenamer()

	got, err := r.Rename(c, takenAt)
	if err == nil {
		t.Fatal("Expected an error for a missing source")
	}
	if got != c.Path {
		t.Errorf("Expected the original path back on failure, got %s", got)
	}
}

func TestRenamer_PlanDoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "IMG-20230704-143000.jpg")
	c := createFile(t, dir, "b.jpg")
	r := NewRenamer()

	if got := r.Plan(c, takenAt); filepath.Base(got) != "IMG-20230704-143000_1.jpg" {
		t.Errorf("Plan = %s, want IMG-20230704-143000_1.jpg", got)
	}
	if _, err := os.Stat(c.Path); err != nil {
		t.Errorf("Plan must not move the file: %v", err)
	}
}

func TestRenamer_PlanClaimsTargets(t *testing.T) {
	dir := t.TempDir()
	a := createFile(t, dir, "a_2023-07-04_14-30-00.jpg")
	b := createFile(t, dir, "b_2023-07-04_14-30-00.jpg")
	r := NewRenamer()

	first, second := filepath.Base(r.Plan(a, takenAt)), filepath.Base(r.Plan(b, takenAt))
	if first != "IMG-20230704-143000.jpg" || second != "IMG-20230704-143000_1.jpg" {
		t.Errorf("Plan = %s, %s; want IMG-20230704-143000.jpg, IMG-20230704-143000_1.jpg", first, second)
	}

	// Every claim stays taken
	if again := filepath.Base(r.Plan(createFile(t, dir, "c.jpg"), takenAt)); again != "IMG-20230704-143000_2.jpg" {
		t.Errorf("Plan for a third file = %s, want IMG-20230704-143000_2.jpg", again)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("Plan must not create or move files, found %d entries", len(entries))
	}
}
