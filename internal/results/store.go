package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipcheck/internal/config"
)

// ErrNotFound is returned when no result exists for a job id.
var ErrNotFound = errors.New("result not found")

// Store persists analysis results as one JSON document per job id. Results
// are immutable once written; a retried job overwrites its own document.
type Store struct {
	dir           string
	screenshotDir string
}

// NewStore constructs a result store rooted at the configured directories.
func NewStore(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return &Store{
		dir:           cfg.Paths.ResultsDir,
		screenshotDir: cfg.Paths.ScreenshotDir,
	}, nil
}

// Save writes the result document for its job id.
func (s *Store) Save(result *AnalysisResult) error {
	if result == nil || strings.TrimSpace(result.JobID) == "" {
		return errors.New("result requires a job id")
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result %s: %w", result.JobID, err)
	}
	path := s.resultPath(result.JobID)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", result.JobID, err)
	}
	return nil
}

// Get loads the result for a job id. The stored screenshot path is rewritten
// to the serving route when the screenshot file still exists, and cleared
// when it does not.
func (s *Store) Get(jobID string) (*AnalysisResult, error) {
	data, err := os.ReadFile(s.resultPath(jobID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", jobID, err)
	}
	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", jobID, err)
	}

	if _, err := os.Stat(s.ScreenshotFile(jobID)); err == nil {
		route := "/screenshots/" + jobID + ".png"
		result.ScreenshotPath = &route
	} else {
		result.ScreenshotPath = nil
	}
	return &result, nil
}

// ScreenshotFile returns the on-disk screenshot location for a job id.
func (s *Store) ScreenshotFile(jobID string) string {
	return filepath.Join(s.screenshotDir, jobID+".png")
}

func (s *Store) resultPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}
