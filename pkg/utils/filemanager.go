// =============================================================================
// CSV Gratuity Report - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the report tool:
//   - Input discovery for batch runs
//   - Default report naming
//   - Temporary output paths and replacement of an existing report
//   - Batch processing summaries
//
// REPLACEMENT STRATEGY:
//   Reports are first written to a temporary file next to the destination.
//   Only when the workbook has been fully written is the old destination
//   removed and the temporary file renamed over it. A failed run leaves the
//   previous report (if any) untouched.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportExtension is the extension of produced reports.
const ReportExtension = ".xlsx"

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files in dir whose extension matches
// extension (case-insensitive), sorted by name.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not descended into.
//   - extension: The file extension to match (e.g., ".csv").
//
// RETURNS:
//   - A sorted slice of file paths.
//   - An error if the directory cannot be read.
func DiscoverInputFiles(dir, extension string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if extension == "" || strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			result = append(result, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// DefaultOutputPath derives the report path for an input file.
//
// PARAMETERS:
//   - inputPath: The CSV file being processed.
//   - outputDir: Directory for the report. Empty means next to the input.
//   - suffix: Appended to the input base name.
//
// EXAMPLE:
//
//	DefaultOutputPath("in/receipts.csv", "", "_processed")
//	  -> "in/receipts_processed.xlsx"
func DefaultOutputPath(inputPath, outputDir, suffix string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}

	return filepath.Join(dir, name+suffix+ReportExtension)
}

// TempPath returns a unique hidden path in the same directory as dest, so
// that the final rename does not cross file systems.
func TempPath(dest string) string {
	dir, base := filepath.Split(dest)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.New().String()))
}

// ReplaceFile moves src to dst, replacing an existing file in one rename.
// A directory at dst is refused. On failure dst is left as it was.
func ReplaceFile(src, dst string) error {
	info, err := os.Stat(dst)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", dst, err)
	}
	if err == nil && info.IsDir() {
		return fmt.Errorf("failed to move %s into place: destination is a directory", dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dst, err)
	}

	return nil
}

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	Rows        int
	FinalTotal  float64
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// NewProcessingSummary starts a summary at the given time.
func NewProcessingSummary(start time.Time) *ProcessingSummary {
	return &ProcessingSummary{StartTime: start}
}

// AddProcessed records a successful file.
func (s *ProcessingSummary) AddProcessed(info ProcessedFileInfo) {
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddFailed records a failed file.
func (s *ProcessingSummary) AddFailed(info FailedFileInfo) {
	s.FailedFilesList = append(s.FailedFilesList, info)
}

// Finish stamps the end time.
func (s *ProcessingSummary) Finish(end time.Time) {
	s.EndTime = end
}

// TotalFiles returns the number of files attempted.
func (s *ProcessingSummary) TotalFiles() int {
	return len(s.ProcessedFiles) + len(s.FailedFilesList)
}

// Duration returns the wall time of the batch.
func (s *ProcessingSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
