// Package local exports extracted texts to the local filesystem.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

const (
	// ManifestName is the run summary written by Finish.
	ManifestName = "manifest.json"
	// DefaultSource labels the manifest when Config.Source is empty.
	DefaultSource = "Institute for the Study of War - Russian Offensive Campaign Assessment"
)

// Config captures the parameters for the filesystem exporter.
type Config struct {
	// BaseDir is the directory the text files and manifest are written to.
	BaseDir string `mapstructure:"dir" yaml:"dir"`
	Source  string `mapstructure:"source" yaml:"source"`
}

// Exporter writes one text file per date plus a manifest.
type Exporter struct {
	baseDir string
	source  string
	clock   clockwork.Clock
}

// Manifest summarizes one export run.
type Manifest struct {
	TotalDocuments int    `json:"total_documents"`
	ExtractionDate string `json:"extraction_date"`
	Source         string `json:"source"`
}

// New creates an Exporter rooted at cfg.BaseDir, creating the directory when needed.
func New(cfg Config, clock clockwork.Clock) (*Exporter, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	source := cfg.Source
	if source == "" {
		source = DefaultSource
	}
	return &Exporter{baseDir: cfg.BaseDir, source: source, clock: clock}, nil
}

// FileName returns the export file name for date.
func FileName(date time.Time) string {
	return fmt.Sprintf("isw_report_%s.txt", bulletin.FormatDate(date))
}

// Write stores text as isw_report_<date>.txt, overwriting an earlier export.
func (e *Exporter) Write(_ context.Context, text bulletin.ExtractedText) error {
	if text.Date.IsZero() {
		return fmt.Errorf("text date is required")
	}
	return e.writeFile(FileName(text.Date), []byte(text.CleanedText))
}

// Finish writes the manifest for a run that exported total documents.
func (e *Exporter) Finish(_ context.Context, total int) error {
	payload, err := json.MarshalIndent(Manifest{
		TotalDocuments: total,
		ExtractionDate: e.clock.Now().UTC().Format(time.RFC3339),
		Source:         e.source,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return e.writeFile(ManifestName, payload)
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.baseDir
}

func (e *Exporter) writeFile(name string, data []byte) error {
	fullPath := filepath.Join(e.baseDir, name)

	cleanBaseDir := filepath.Clean(e.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBaseDir+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected")
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
