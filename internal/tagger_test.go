package internal

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestTagArgs(t *testing.T) {
	ts := time.Date(2023, 7, 4, 14, 30, 0, 0, time.Local)
	args := TagArgs("/photos/IMG-20230704-143000.jpg", ts)

	if args[0] != "/photos/IMG-20230704-143000.jpg" || args[1] != "-overwrite_original_in_place" {
		t.Errorf("Unexpected leading args: %v", args[:2])
	}
	if len(args) != 2+len(tagFields) {
		t.Fatalf("Expected %d args, got %d", 2+len(tagFields), len(args))
	}
	for i, field := range tagFields {
		want := "-" + field + "=2023:07:04 14:30:00"
		if args[2+i] != want {
			t.Errorf("arg %d = %q, want %q", 2+i, args[2+i], want)
		}
	}
}

// fakeExiftool writes a shell script that records its arguments next to
// itself and exits with code.
func fakeExiftool(t *testing.T, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for exiftool")
	}
	path := filepath.Join(t.TempDir(), "exiftool")
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done > \"$0.args\"\nexit " + code + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExiftoolWriter_Success(t *testing.T) {
	bin := fakeExiftool(t, "0")
	w := NewExiftoolWriter(bin)

	ts := time.Date(2021, 1, 1, 9, 0, 0, 0, time.Local)
	if err := w.WriteTimestamp("/photos/a.jpg", ts); err != nil {
		t.Fatalf("WriteTimestamp failed: %v", err)
	}

	data, err := os.ReadFile(bin + ".args")
	if err != nil {
		t.Fatalf("exiftool was not invoked: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 9 {
		t.Fatalf("Expected 9 arguments, got %d: %v", len(lines), lines)
	}
	if lines[0] != "/photos/a.jpg" || lines[2] != "-DateTimeOriginal=2021:01:01 09:00:00" {
		t.Errorf("Unexpected arguments: %v", lines)
	}
}

func TestExiftoolWriter_NonZeroExit(t *testing.T) {
	w := NewExiftoolWriter(fakeExiftool(t, "1"))

	err := w.WriteTimestamp("/photos/a.jpg", time.Now())
	if err == nil {
		t.Fatal("Expected an error for a non-zero exit")
	}
	if pe := CategorizeError("/photos/a.jpg", err); pe.Category != ErrorCategoryTool {
		t.Errorf("Expected tool category, got %s", pe.Category)
	}
}

func TestExiftoolWriter_Missing(t *testing.T) {
	w := NewExiftoolWriter(filepath.Join(t.TempDir(), "no-such-exiftool"))

	if err := w.WriteTimestamp("/photos/a.jpg", time.Now()); err == nil {
		t.Fatal("Expected a launch error")
	}
}

func TestCheckExiftool(t *testing.T) {
	if err := CheckExiftool(fakeExiftool(t, "0")); err != nil {
		t.Errorf("CheckExiftool rejected an executable: %v", err)
	}
	err := CheckExiftool("snapsync-no-such-tool")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}
