package internal

import (
	"regexp"
	"strconv"
	"time"

	"github.com/djherbis/times"
)

// Provenance names the source a timestamp was taken from.
type Provenance string

const (
	SourceFilename      Provenance = "filename-pattern"
	SourceExifOriginal  Provenance = "exif-original"
	SourceExifDigitized Provenance = "exif-digitized"
	SourceExifModify    Provenance = "exif-modify"
	SourceMtime         Provenance = "filesystem-mtime"
	SourceCtime         Provenance = "filesystem-ctime"
)

// TimestampGuess is an inferred capture time and where it came from.
type TimestampGuess struct {
	Time   time.Time
	Source Provenance
}

// PatternMatch is one regex hit inside a filename: the byte span and the
// numeric capture groups.
type PatternMatch struct {
	Start  int
	End    int
	Groups []int
	// YearFirst is set when Groups came from splitting one 8-digit run.
	YearFirst bool
}

// Overlaps reports whether the spans of m and o intersect.
func (m PatternMatch) Overlaps(o PatternMatch) bool {
	return m.Start < o.End && o.Start < m.End
}

const exifLayout = "2006:01:02 15:04:05"

var dateOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})[-_:.](\d{2})[-_:.](\d{2})`), // YYYY-MM-DD
	regexp.MustCompile(`(\d{2})[-_:.](\d{2})[-_:.](\d{4})`), // DD-MM-YYYY
	regexp.MustCompile(`(\d{8})`),                           // YYYYMMDD
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),             // YYYYMMDD
}

var timeOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{2})[-_:.](\d{2})[-_:.](\d{2})`), // HH-MM-SS
	regexp.MustCompile(`(\d{6})`),                           // HHMMSS
}

// exifTags maps the EXIF fields read during fallback to their provenance.
var exifTags = []struct {
	Name   string
	Source Provenance
}{
	{"DateTimeOriginal", SourceExifOriginal},
	{"DateTimeDigitized", SourceExifDigitized},
	{"DateTime", SourceExifModify},
}

// toMatch converts a FindStringSubmatchIndex result, shifted by offset, into a
// PatternMatch. A lone group of 6 or 8 digits is split into 2- or 4-2-2 parts;
// the 8-digit split is always year first.
func toMatch(name string, loc []int, offset int) PatternMatch {
	m := PatternMatch{Start: loc[0] + offset, End: loc[1] + offset}
	for i := 2; i+1 < len(loc); i += 2 {
		s := name[loc[i]+offset : loc[i+1]+offset]
		switch len(s) {
		case 8:
			m.Groups = append(m.Groups, atoi(s[:4]), atoi(s[4:6]), atoi(s[6:]))
			m.YearFirst = len(loc) == 4
		case 6:
			m.Groups = append(m.Groups, atoi(s[:2]), atoi(s[2:4]), atoi(s[4:]))
		default:
			m.Groups = append(m.Groups, atoi(s))
		}
	}
	return m
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// findDate returns the first hit of the first date pattern that matches anywhere in name.
func findDate(name string) (PatternMatch, bool) {
	for _, re := range dateOnlyPatterns {
		if loc := re.FindStringSubmatchIndex(name); loc != nil {
			return toMatch(name, loc, 0), true
		}
	}
	return PatternMatch{}, false
}

// findTime walks every time pattern in order and returns the leftmost hit
// whose span does not intersect date. Hits are tried at each start offset,
// so a time directly after a run of date digits is still found.
func findTime(name string, date PatternMatch) (PatternMatch, bool) {
	for _, re := range timeOnlyPatterns {
		pos := 0
		for pos < len(name) {
			loc := re.FindStringSubmatchIndex(name[pos:])
			if loc == nil {
				break
			}
			m := toMatch(name, loc, pos)
			if !m.Overlaps(date) {
				return m, true
			}
			pos = m.Start + 1
		}
	}
	return PatternMatch{}, false
}

// validDate builds a local calendar time and rejects values time.Date would normalize.
func validDate(y, mo, d, h, mi, s int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || h > 23 || mi > 59 || s > 59 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.Local)
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

// ParseFilenameTimestamp extracts a date and a non-overlapping time from a
// filename. A first date group above 31 is read as the year; otherwise the
// match is read day first. A date without a usable time yields false.
func ParseFilenameTimestamp(name string) (time.Time, bool) {
	date, ok := findDate(name)
	if !ok || len(date.Groups) != 3 {
		return time.Time{}, false
	}
	clock, ok := findTime(name, date)
	if !ok || len(clock.Groups) != 3 {
		return time.Time{}, false
	}

	g := date.Groups
	y, mo, d := g[0], g[1], g[2]
	if !date.YearFirst && g[0] <= 31 {
		d, mo, y = g[0], g[1], g[2]
	}
	return validDate(y, mo, d, clock.Groups[0], clock.Groups[1], clock.Groups[2])
}

// DateExtractor infers a capture timestamp for one candidate.
type DateExtractor struct {
	// Reader supplies embedded tags for image candidates; nil disables EXIF.
	Reader MetadataReader
	// Stat reads filesystem times; nil means times.Stat.
	Stat   func(path string) (times.Timespec, error)
	Logger *Logger
}

// NewDateExtractor returns an extractor reading EXIF through reader.
func NewDateExtractor(reader MetadataReader, logger *Logger) *DateExtractor {
	return &DateExtractor{Reader: reader, Logger: logger}
}

// Infer tries the filename first and falls back to the earliest metadata or
// filesystem timestamp. It reports false when no source produced a value.
func (e *DateExtractor) Infer(c Candidate) (TimestampGuess, bool) {
	if t, ok := ParseFilenameTimestamp(c.Name); ok {
		return TimestampGuess{Time: t, Source: SourceFilename}, true
	}

	guesses, errs := e.MetadataCandidates(c)
	for _, err := range errs {
		e.Logger.Debug("%s: timestamp source dropped: %v", c.Path, err)
	}
	return Earliest(guesses)
}

// MetadataCandidates collects every fallback timestamp for c. Sources that
// fail are reported in errs and left out of guesses; callers decide whether
// to surface them.
func (e *DateExtractor) MetadataCandidates(c Candidate) (guesses []TimestampGuess, errs []error) {
	stat := e.Stat
	if stat == nil {
		stat = times.Stat
	}

	if ts, err := stat(c.Path); err != nil {
		errs = append(errs, &ProcessError{FilePath: c.Path, Category: ErrorCategoryIO, Severity: ErrorSeverityWarning, OriginalErr: err})
	} else {
		guesses = append(guesses, TimestampGuess{Time: ts.ModTime().Local(), Source: SourceMtime})
		if ts.HasChangeTime() {
			guesses = append(guesses, TimestampGuess{Time: ts.ChangeTime().Local(), Source: SourceCtime})
		}
	}

	if c.Class != ClassImage || e.Reader == nil {
		return guesses, errs
	}

	tags, err := e.Reader.ReadTags(c.Path)
	if err != nil {
		errs = append(errs, CategorizeError(c.Path, err))
		return guesses, errs
	}
	for _, tag := range exifTags {
		raw, ok := tags[tag.Name]
		if !ok {
			continue
		}
		t, err := time.ParseInLocation(exifLayout, raw, time.Local)
		if err != nil {
			errs = append(errs, &ProcessError{FilePath: c.Path, Category: ErrorCategoryMetadata, Severity: ErrorSeverityWarning, OriginalErr: err})
			continue
		}
		guesses = append(guesses, TimestampGuess{Time: t, Source: tag.Source})
	}
	return guesses, errs
}

// Earliest returns the guess with the smallest instant. Ties keep the first.
func Earliest(guesses []TimestampGuess) (TimestampGuess, bool) {
	if len(guesses) == 0 {
		return TimestampGuess{}, false
	}
	best := guesses[0]
	for _, g := range guesses[1:] {
		if g.Time.Before(best.Time) {
			best = g
		}
	}
	return best, true
}
