package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MediaClass is the coarse content category of a file, derived from its extension.
type MediaClass string

const (
	ClassImage MediaClass = "image"
	ClassVideo MediaClass = "video"
	ClassOther MediaClass = "other"
)

// Candidate is one file queued for timestamp inference. Path and Name follow
// the file across a rename.
type Candidate struct {
	Path  string
	Name  string
	Class MediaClass
}

// Classify returns the media class for name using the configured extension lists.
func (cfg *Config) Classify(name string) MediaClass {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ClassOther
	}
	for _, e := range cfg.ImageExt {
		if ext == e {
			return ClassImage
		}
	}
	for _, e := range cfg.VideoExt {
		if ext == e {
			return ClassVideo
		}
	}
	return ClassOther
}

// NewCandidate builds a Candidate for path with an absolute Path.
func (cfg *Config) NewCandidate(path string) (Candidate, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Candidate{}, err
	}
	name := filepath.Base(abs)
	return Candidate{Path: abs, Name: name, Class: cfg.Classify(name)}, nil
}

// ScanMediaFiles lists the regular image and video files directly inside dir.
// Subdirectories are not descended into.
func ScanMediaFiles(dir string, cfg *Config) ([]Candidate, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}

	var files []Candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		class := cfg.Classify(entry.Name())
		if class == ClassOther {
			continue
		}
		files = append(files, Candidate{
			Path:  filepath.Join(abs, entry.Name()),
			Name:  entry.Name(),
			Class: class,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
