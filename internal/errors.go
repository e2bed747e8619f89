package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"sort"
	"strings"
)

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryIO       ErrorCategory = "io_error"       // File system, permissions, vanished files
	ErrorCategoryMetadata ErrorCategory = "metadata_error" // EXIF/metadata extraction failed
	ErrorCategoryTool     ErrorCategory = "tool_error"     // exiftool missing or exited non-zero
	ErrorCategoryUnknown  ErrorCategory = "unknown_error"  // Unexpected errors
)

// ErrorSeverity indicates how the error affected the file
type ErrorSeverity string

const (
	ErrorSeverityError   ErrorSeverity = "error"   // A step was not applied (rename or tag write)
	ErrorSeverityWarning ErrorSeverity = "warning" // A timestamp source was dropped
)

// ProcessError represents a categorized error during file processing
type ProcessError struct {
	FilePath    string
	Step        string // "infer", "rename" or "tag"
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error {
	return e.OriginalErr
}

// CategorizeError analyzes an error and returns a ProcessError with category and severity
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}
	var procErr *ProcessError
	if errors.As(err, &procErr) {
		return procErr
	}

	errStr := strings.ToLower(err.Error())
	procErr = &ProcessError{
		FilePath:    filePath,
		OriginalErr: err,
		Severity:    ErrorSeverityError,
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound) || strings.Contains(errStr, "executable file not found"):
		procErr.Category = ErrorCategoryTool
		procErr.Suggestion = "Install exiftool or point the exiftool setting at it"

	case errors.As(err, &exitErr) || strings.Contains(errStr, "exit status"):
		procErr.Category = ErrorCategoryTool
		procErr.Suggestion = "exiftool rejected the file - run it manually on the file to see why"

	case errors.Is(err, fs.ErrPermission) || strings.Contains(errStr, "permission denied"):
		procErr.Category = ErrorCategoryIO
		procErr.Suggestion = "Check file permissions on the folder"

	case errors.Is(err, fs.ErrNotExist) || strings.Contains(errStr, "no such file"):
		procErr.Category = ErrorCategoryIO
		procErr.Suggestion = "File disappeared while processing - was the folder modified?"

	case strings.Contains(errStr, "cross-device") || strings.Contains(errStr, "read-only file system"):
		procErr.Category = ErrorCategoryIO
		procErr.Suggestion = "Folder is not writable in place - check mount options"

	case errors.Is(err, ErrMetadata):
		procErr.Category = ErrorCategoryMetadata
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Embedded metadata could not be read - filesystem times were used"

	default:
		procErr.Category = ErrorCategoryUnknown
		procErr.Suggestion = "Unexpected error - check the log for details"
	}

	return procErr
}

// ErrorStats tracks per-file failures of a run
type ErrorStats struct {
	Total      int // problems recorded; a file can have more than one
	Files      int // distinct files with problems
	Errors     int
	Warnings   int
	ByCategory map[ErrorCategory]int
	LastErrors []*ProcessError // Last 5 errors for quick diagnosis

	seen map[string]bool
}

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
		seen:       make(map[string]bool),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.ByCategory[err.Category]++
	if !s.seen[err.FilePath] {
		s.seen[err.FilePath] = true
		s.Files++
	}

	switch err.Severity {
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// OnResult records the rename and tag failures of r.
func (s *ErrorStats) OnResult(r Result) {
	if r.RenameErr != nil {
		pe := CategorizeError(r.Original, r.RenameErr)
		pe.Step = "rename"
		s.Add(pe)
	}
	if r.TagErr != nil {
		pe := CategorizeError(r.Candidate.Path, r.TagErr)
		pe.Step = "tag"
		s.Add(pe)
	}
}

// GenerateReport creates a human-readable error report
func (s *ErrorStats) GenerateReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("\n%d problems (files affected: %d):\n\n", s.Total, s.Files))
	if s.Errors > 0 {
		report.WriteString(fmt.Sprintf("  Errors:   %d (rename or tag write not applied)\n", s.Errors))
	}
	if s.Warnings > 0 {
		report.WriteString(fmt.Sprintf("  Warnings: %d (recoverable issues)\n", s.Warnings))
	}

	report.WriteString("\nError categories:\n")
	cats := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		report.WriteString(fmt.Sprintf("  - %s: %d\n", cat, s.ByCategory[ErrorCategory(cat)]))
	}

	report.WriteString("\nRecent errors:\n")
	for i, err := range s.LastErrors {
		report.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, err.FilePath))
		if err.Step != "" {
			report.WriteString(fmt.Sprintf("   Step: %s | ", err.Step))
		} else {
			report.WriteString("   ")
		}
		report.WriteString(fmt.Sprintf("Category: %s | Severity: %s\n", err.Category, err.Severity))
		report.WriteString(fmt.Sprintf("   Error: %v\n", err.OriginalErr))
		if err.Suggestion != "" {
			report.WriteString(fmt.Sprintf("   Suggestion: %s\n", err.Suggestion))
		}
	}

	return report.String()
}
