// Package report writes a YAML summary of the last run into the project
// directory, next to the generated migrations.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// reportDir is the project subdirectory holding schemagen metadata.
const reportDir = ".schemagen"

// Report is the serialized shape of a run summary.
type Report struct {
	RunID        string    `yaml:"run_id"`
	Idea         string    `yaml:"idea"`
	StartedAt    time.Time `yaml:"started_at"`
	Duration     string    `yaml:"duration"`
	NumTurns     int       `yaml:"num_turns"`
	TotalCostUSD float64   `yaml:"total_cost_usd,omitempty"`
	IsError      bool      `yaml:"is_error"`
	Files        []string  `yaml:"files,omitempty"`
}

// Path returns the report location for a project.
func Path(projectPath string) string {
	return filepath.Join(projectPath, reportDir, "last-run.yaml")
}

// Write saves the run summary, overwriting any previous report.
func Write(projectPath string, record *models.RunRecord, files []string) error {
	r := Report{
		RunID:        record.ID,
		Idea:         record.Idea,
		StartedAt:    record.StartedAt,
		Duration:     (time.Duration(record.DurationMS) * time.Millisecond).String(),
		NumTurns:     record.NumTurns,
		TotalCostUSD: record.TotalCostUSD,
		IsError:      record.IsError,
		Files:        files,
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	dir := filepath.Join(projectPath, reportDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := os.WriteFile(Path(projectPath), data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read loads the last run report for a project.
func Read(projectPath string) (*Report, error) {
	data, err := os.ReadFile(Path(projectPath))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}
