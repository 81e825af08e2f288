package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"maestro/internal/artifact"
	"maestro/internal/control"
	"maestro/internal/errors"
	"maestro/internal/score"
)

func sampleReport() *RunReport {
	return &RunReport{
		RunID:     "20260101-120000",
		StartedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Goal:      "Balance",
		Mode:      "rule-based",
		Artifacts: []ArtifactResult{
			{
				Artifact: "pkg/util.go",
				Result: &control.Result{
					TerminalStatus: control.TerminalSuccess,
					Final:          artifact.Artifact{Name: "pkg/util.go", Content: "package util\n"},
					Reports:        []score.QualityReport{{Total: 100, Decision: score.DecisionSuccess}},
					Rationale:      "total 100 meets threshold 85",
					Attempts:       1,
				},
			},
			{
				Artifact: "main.go",
				Result: &control.Result{
					TerminalStatus: control.TerminalNoOp,
					Final:          artifact.Artifact{Name: "main.go", Content: "package main\n"},
					Rationale:      "no analyzer produced suggestions; artifact accepted unchanged",
				},
			},
		},
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	base := t.TempDir()
	w, err := NewWriter(base, "20260101-120000")
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}

	if err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got, err := Read(w.Dir())
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.RunID != "20260101-120000" {
		t.Errorf("RunID = %q", got.RunID)
	}
	if len(got.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(got.Artifacts))
	}
	// Sorted by artifact name on write.
	if got.Artifacts[0].Artifact != "main.go" {
		t.Errorf("first artifact = %q, want main.go", got.Artifacts[0].Artifact)
	}
	if got.Artifacts[1].Result.TerminalStatus != control.TerminalSuccess {
		t.Errorf("terminal = %s", got.Artifacts[1].Result.TerminalStatus)
	}
}

func TestWriter_PersistsFinalArtifacts(t *testing.T) {
	base := t.TempDir()
	w, err := NewWriter(base, "run-1")
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}
	if err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir(), "artifacts", "pkg", "util.go"))
	if err != nil {
		t.Fatalf("reading final artifact: %v", err)
	}
	if string(data) != "package util\n" {
		t.Errorf("artifact content = %q", data)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent"))
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	counts := sampleReport().Summary()
	if counts[control.TerminalSuccess] != 1 || counts[control.TerminalNoOp] != 1 {
		t.Errorf("Summary() = %v", counts)
	}
}

func TestNewRunID_Sortable(t *testing.T) {
	early := NewRunID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	late := NewRunID(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if early >= late {
		t.Errorf("run ids not sortable: %q >= %q", early, late)
	}
}
