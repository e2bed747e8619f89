package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal appends one JSON line per processed file to a run log, so a run
// can be audited (and reversed by hand) afterwards.
type Journal struct {
	ID     string // Run ID (timestamp: 2025-01-15-103045)
	Path   string
	Folder string

	mu    sync.Mutex
	file  *os.File
	stats JournalStats
}

// JournalStats counts the events written during a run
type JournalStats struct {
	Renamed int
	Tagged  int
	Failed  int
	Skipped int
}

// JournalEvent represents a single line in the journal
type JournalEvent struct {
	Event  string `json:"event"`
	Run    string `json:"run"`
	Ts     string `json:"ts"`
	Src    string `json:"src,omitempty"`
	Dest   string `json:"dest,omitempty"`
	Taken  string `json:"taken,omitempty"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`

	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	// Run start/end fields
	Folder     string `json:"folder,omitempty"`
	TotalFiles int    `json:"total_files,omitempty"`
	Renamed    int    `json:"renamed,omitempty"`
	Tagged     int    `json:"tagged,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
}

// OpenJournal opens path for append-only writes, creating parent directories.
func OpenJournal(path, folder string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{
		ID:     time.Now().Format("2006-01-02-150405"),
		Path:   path,
		Folder: folder,
		file:   f,
	}, nil
}

// LogStart writes the run start event
func (j *Journal) LogStart() error {
	return j.writeEvent(JournalEvent{
		Event:  "run_start",
		Folder: j.Folder,
	})
}

// OnResult records r. A failed write loses that line only; the run goes on.
func (j *Journal) OnResult(r Result) {
	ev := JournalEvent{Src: r.Original}
	if r.Inferred {
		ev.Taken = r.Guess.Time.Format(time.RFC3339)
		ev.Source = string(r.Guess.Source)
	}
	if r.Candidate.Path != r.Original {
		ev.Dest = r.Candidate.Path
	}

	j.mu.Lock()
	switch r.Outcome {
	case OutcomeTagged:
		ev.Event = "tagged"
		j.stats.Tagged++
		if ev.Dest != "" {
			j.stats.Renamed++
		}
	case OutcomeRenamedOnly:
		ev.Event = "tag_failed"
		j.stats.Failed++
		if ev.Dest != "" {
			j.stats.Renamed++
		}
		j.describe(&ev, r.Candidate.Path, r.TagErr)
	case OutcomeFailed:
		ev.Event = "rename_failed"
		j.stats.Failed++
		j.describe(&ev, r.Original, r.RenameErr)
	case OutcomeSkipped:
		ev.Event = "skipped"
		j.stats.Skipped++
	default:
		ev.Event = "untouched"
	}
	j.mu.Unlock()

	_ = j.writeEvent(ev)
}

func (j *Journal) describe(ev *JournalEvent, path string, err error) {
	if err == nil {
		return
	}
	pe := CategorizeError(path, err)
	ev.Error = err.Error()
	ev.ErrorCategory = string(pe.Category)
	ev.ErrorSuggestion = pe.Suggestion
}

// Stats returns the counts written so far
func (j *Journal) Stats() JournalStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// LogEnd writes the run end event with the accumulated counts
func (j *Journal) LogEnd(totalFiles int) error {
	st := j.Stats()
	return j.writeEvent(JournalEvent{
		Event:      "run_end",
		TotalFiles: totalFiles,
		Renamed:    st.Renamed,
		Tagged:     st.Tagged,
		Failed:     st.Failed,
		Skipped:    st.Skipped,
	})
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// writeEvent writes a journal event as a JSON line
func (j *Journal) writeEvent(ev JournalEvent) error {
	ev.Run = j.ID
	ev.Ts = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return fmt.Errorf("journal %s is closed", j.Path)
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	return j.file.Sync()
}
