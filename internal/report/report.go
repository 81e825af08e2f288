// Package report persists the outcome of a run: one JSON report covering
// every artifact plus the final artifact contents, laid out under a
// per-run directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"maestro/internal/control"
	"maestro/internal/errors"
)

// ArtifactResult pairs an artifact name with its terminal outcome.
type ArtifactResult struct {
	Artifact string          `json:"artifact"`
	Result   *control.Result `json:"result"`
}

// RunReport is the persisted record of one maestro invocation.
type RunReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Goal       string           `json:"goal"`
	Mode       string           `json:"mode"`
	Artifacts  []ArtifactResult `json:"artifacts"`
}

// Summary tallies the terminal statuses across all artifacts.
func (r *RunReport) Summary() map[control.TerminalStatus]int {
	counts := make(map[control.TerminalStatus]int)
	for _, a := range r.Artifacts {
		counts[a.Result.TerminalStatus]++
	}
	return counts
}

// NewRunID derives a sortable run identifier from the start time.
func NewRunID(now time.Time) string {
	return now.UTC().Format("20060102-150405")
}

// Writer persists run output under {baseDir}/{runID}/.
type Writer struct {
	baseDir string
	runID   string
}

// NewWriter creates the run directory and returns a Writer for it.
func NewWriter(baseDir, runID string) (*Writer, error) {
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(filepath.Join(dir, "artifacts"), 0755); err != nil {
		return nil, errors.Wrap(err, "creating run directory")
	}
	return &Writer{baseDir: baseDir, runID: runID}, nil
}

// Dir returns the run directory path.
func (w *Writer) Dir() string {
	return filepath.Join(w.baseDir, w.runID)
}

// Write persists the report as report.json and every final artifact under
// artifacts/. Artifact results are written in name order so reports diff
// cleanly between runs.
func (w *Writer) Write(r *RunReport) error {
	sort.Slice(r.Artifacts, func(i, j int) bool {
		return r.Artifacts[i].Artifact < r.Artifacts[j].Artifact
	})

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run report")
	}
	if err := os.WriteFile(filepath.Join(w.Dir(), "report.json"), data, 0644); err != nil {
		return errors.Wrap(err, "writing run report")
	}

	for _, a := range r.Artifacts {
		path := filepath.Join(w.Dir(), "artifacts", filepath.FromSlash(a.Artifact))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrap(err, fmt.Sprintf("creating artifact directory for %s", a.Artifact))
		}
		if err := os.WriteFile(path, []byte(a.Result.Final.Content), 0644); err != nil {
			return errors.Wrap(err, fmt.Sprintf("writing final artifact %s", a.Artifact))
		}
	}
	return nil
}

// Read loads a previously written report.json from a run directory.
func Read(runDir string) (*RunReport, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "report.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("run report", runDir).WithCause(err)
		}
		return nil, errors.Wrap(err, "reading run report")
	}

	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "decoding run report")
	}
	return &r, nil
}
