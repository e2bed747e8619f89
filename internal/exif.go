package internal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
)

// ErrMetadata marks failures to read embedded tags. Callers drop the source
// and fall back to filesystem times.
var ErrMetadata = errors.New("metadata unreadable")

// MetadataReader returns the raw embedded tag values of an image, keyed by
// EXIF tag name (DateTimeOriginal, DateTimeDigitized, DateTime).
type MetadataReader interface {
	ReadTags(path string) (map[string]string, error)
}

// ExifReader decodes EXIF blocks natively with goexif.
type ExifReader struct{}

var exifFields = map[string]exif.FieldName{
	"DateTimeOriginal":  exif.DateTimeOriginal,
	"DateTimeDigitized": exif.DateTimeDigitized,
	"DateTime":          exif.DateTime,
}

// ReadTags decodes the EXIF block of path. Fields that are absent or not
// strings are omitted from the result.
func (ExifReader) ReadTags(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: exif decode %s: %w", ErrMetadata, path, err)
	}

	tags := make(map[string]string, len(exifFields))
	for name, field := range exifFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		val, err := tag.StringVal()
		if err != nil {
			continue
		}
		tags[name] = val
	}
	return tags, nil
}

// ExiftoolReader reads tags through a long-running exiftool process. It
// handles formats goexif cannot decode (HEIC, PNG, RAW). The process is
// started on first use.
type ExiftoolReader struct {
	Binary string

	mu       sync.Mutex
	et       *exiftool.Exiftool
	startErr error
}

// exiftool reports DateTimeDigitized as CreateDate and DateTime as ModifyDate.
var exiftoolFields = map[string]string{
	"DateTimeOriginal": "DateTimeOriginal",
	"CreateDate":       "DateTimeDigitized",
	"ModifyDate":       "DateTime",
}

func NewExiftoolReader(binary string) *ExiftoolReader {
	return &ExiftoolReader{Binary: binary}
}

func (r *ExiftoolReader) ensure() (*exiftool.Exiftool, error) {
	if r.et != nil || r.startErr != nil {
		return r.et, r.startErr
	}
	var opts []func(*exiftool.Exiftool) error
	if r.Binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(r.Binary))
	}
	r.et, r.startErr = exiftool.NewExiftool(opts...)
	if r.startErr != nil {
		r.startErr = fmt.Errorf("%w: exiftool reader unavailable: %w", ErrMetadata, r.startErr)
	}
	return r.et, r.startErr
}

func (r *ExiftoolReader) ReadTags(path string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	et, err := r.ensure()
	if err != nil {
		return nil, err
	}

	infos := et.ExtractMetadata(path)
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: exiftool returned nothing for %s", ErrMetadata, path)
	}
	if infos[0].Err != nil {
		return nil, fmt.Errorf("%w: exiftool %s: %w", ErrMetadata, path, infos[0].Err)
	}

	tags := make(map[string]string, len(exiftoolFields))
	for key, name := range exiftoolFields {
		if val, err := infos[0].GetString(key); err == nil {
			tags[name] = val
		}
	}
	return tags, nil
}

// Close stops the exiftool process if it was started.
func (r *ExiftoolReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.et == nil {
		return nil
	}
	err := r.et.Close()
	r.et = nil
	return err
}

// FallbackReader asks Primary first and Secondary only when Primary fails.
type FallbackReader struct {
	Primary   MetadataReader
	Secondary MetadataReader
}

func (r FallbackReader) ReadTags(path string) (map[string]string, error) {
	tags, err := r.Primary.ReadTags(path)
	if err == nil || r.Secondary == nil {
		return tags, err
	}
	tags, err2 := r.Secondary.ReadTags(path)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return tags, nil
}

// NewMetadataReader builds the reader chain described by cfg and a function
// releasing any helper process.
func NewMetadataReader(cfg *Config) (MetadataReader, func() error) {
	if !cfg.ExifToolReader {
		return ExifReader{}, func() error { return nil }
	}
	et := NewExiftoolReader(cfg.ExifTool)
	return FallbackReader{Primary: ExifReader{}, Secondary: et}, et.Close
}
