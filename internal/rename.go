package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNoCanonicalName is returned when a media class has no naming prefix.
var ErrNoCanonicalName = errors.New("no canonical name for media class")

const nameLayout = "20060102-150405"

// CanonicalName returns IMG-/VID-YYYYMMDD-HHMMSS with the lower-cased ext.
func CanonicalName(class MediaClass, t time.Time, ext string) (string, error) {
	var prefix string
	switch class {
	case ClassImage:
		prefix = "IMG"
	case ClassVideo:
		prefix = "VID"
	default:
		return "", fmt.Errorf("%w: %s", ErrNoCanonicalName, class)
	}
	return prefix + "-" + t.Format(nameLayout) + strings.ToLower(ext), nil
}

// Renamer moves candidates to their canonical names. One Renamer must be
// shared by every task working on the same folder: the free-path search and
// the rename happen under its lock.
type Renamer struct {
	mu sync.Mutex
	// targets handed out by Plan; they count as taken for later plans
	planned map[string]bool
}

func NewRenamer() *Renamer {
	return &Renamer{planned: make(map[string]bool)}
}

// freePath returns target, or target with _1, _2, ... before the extension,
// whichever is first either free or already the source file itself.
func freePath(target, source string, taken func(string) bool) string {
	if target == source || !taken(target) {
		return target
	}
	ext := filepath.Ext(target)
	base := target[:len(target)-len(ext)]
	for i := 1; ; i++ {
		try := fmt.Sprintf("%s_%d%s", base, i, ext)
		if try == source || !taken(try) {
			return try
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// Plan returns the path c would be renamed to, without touching the filesystem.
// The result is claimed, so planning a second file with the same timestamp
// yields the _1 name a real run would give it. Classes without a prefix plan
// to their current path.
func (r *Renamer) Plan(c Candidate, t time.Time) string {
	name, err := CanonicalName(c.Class, t, filepath.Ext(c.Name))
	if err != nil {
		return c.Path
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.planned == nil {
		r.planned = make(map[string]bool)
	}
	dest := freePath(filepath.Join(filepath.Dir(c.Path), name), c.Path, func(p string) bool {
		return r.planned[p] || exists(p)
	})
	r.planned[dest] = true
	return dest
}

// Rename moves c to its canonical name and returns the new path. Already
// canonical files and other-class files are left in place. On failure the
// original path is returned together with the error.
func (r *Renamer) Rename(c Candidate, t time.Time) (string, error) {
	name, err := CanonicalName(c.Class, t, filepath.Ext(c.Name))
	if err != nil {
		return c.Path, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dest := freePath(filepath.Join(filepath.Dir(c.Path), name), c.Path, exists)
	if dest == c.Path {
		return c.Path, nil
	}
	if err := os.Rename(c.Path, dest); err != nil {
		return c.Path, fmt.Errorf("failed to rename %s to %s: %w", c.Path, filepath.Base(dest), err)
	}
	return dest, nil
}
