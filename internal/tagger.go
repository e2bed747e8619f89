package internal

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// MetadataWriter overwrites the embedded timestamp fields of a file.
type MetadataWriter interface {
	WriteTimestamp(path string, t time.Time) error
}

// tagFields are the exiftool tags set to the same value on every file:
// still-image fields first, then the QuickTime container and track fields.
var tagFields = []string{
	"DateTimeOriginal",
	"CreateDate",
	"ModifyDate",
	"TrackCreateDate",
	"TrackModifyDate",
	"MediaCreateDate",
	"MediaModifyDate",
}

// ExiftoolWriter starts one exiftool process per file and waits for it.
// There is no timeout: a hung exiftool holds its slot until it exits.
type ExiftoolWriter struct {
	Binary string
}

func NewExiftoolWriter(binary string) *ExiftoolWriter {
	if binary == "" {
		binary = "exiftool"
	}
	return &ExiftoolWriter{Binary: binary}
}

// TagArgs returns the exiftool arguments that stamp t onto path in place.
func TagArgs(path string, t time.Time) []string {
	ts := t.Format(exifLayout)
	args := []string{path, "-overwrite_original_in_place"}
	for _, field := range tagFields {
		args = append(args, fmt.Sprintf("-%s=%s", field, ts))
	}
	return args
}

// WriteTimestamp runs exiftool on path. Output is discarded; only the exit
// status is observed.
func (w *ExiftoolWriter) WriteTimestamp(path string, t time.Time) error {
	cmd := exec.Command(w.Binary, TagArgs(path, t)...)
	hideConsole(cmd)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("exiftool failed on %s: %w", path, err)
	}
	return nil
}

// CheckExiftool verifies the tagging executable can be found.
func CheckExiftool(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s not found in PATH. %s", binary, exiftoolInstallHint())
	}
	return nil
}

func exiftoolInstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install exiftool"
	case "linux":
		return "Install with: apt-get install libimage-exiftool-perl (Ubuntu/Debian) or dnf install perl-Image-ExifTool (Fedora)"
	case "windows":
		return "Download from https://exiftool.org and add exiftool.exe to PATH"
	default:
		return "Download from https://exiftool.org"
	}
}
