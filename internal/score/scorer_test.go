package score

import (
	"context"
	"testing"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/oracle"
)

type fixedSecurity struct {
	finding SecurityFinding
	err     error
}

func (f fixedSecurity) Measure(context.Context, artifact.Artifact) (SecurityFinding, error) {
	return f.finding, f.err
}

type fixedReadability struct {
	complexity int
	err        error
}

func (f fixedReadability) Measure(context.Context, artifact.Artifact) (int, error) {
	return f.complexity, f.err
}

type fixedPerformance struct {
	improvement float64
	err         error
}

func (f fixedPerformance) Measure(context.Context, artifact.Artifact, artifact.Artifact) (float64, error) {
	return f.improvement, f.err
}

func fixedCollectors(finding SecurityFinding, complexity int, improvement float64) Collectors {
	return Collectors{
		Security:    fixedSecurity{finding: finding},
		Readability: fixedReadability{complexity: complexity},
		Performance: fixedPerformance{improvement: improvement},
	}
}

var (
	baseline  = artifact.Artifact{Name: "main.go", Content: "package main\n\nfunc main() {}\n"}
	candidate = artifact.Artifact{Name: "main.go", Content: "package main\n\nfunc main() { println(1) }\n"}
)

func TestScorer_Evaluate(t *testing.T) {
	s := NewScorer(artifact.SyntaxValidator{}, fixedCollectors(FindingNone, 5, 20), nil)

	report, err := s.Evaluate(context.Background(), baseline, candidate)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !report.Passed() {
		t.Errorf("report = %+v, want Success", report)
	}
	if report.Metrics == nil || report.Metrics.SecurityHighestSeverity != FindingNone {
		t.Error("report should echo the raw metrics")
	}
}

func TestScorer_StructuralDefectShortCircuits(t *testing.T) {
	// The collectors would score a pass, but the gate never lets the
	// candidate reach them.
	broken := candidate.WithContent("package main\n\nfunc main( {\n")
	s := NewScorer(artifact.SyntaxValidator{}, fixedCollectors(FindingNone, 5, 20), nil)

	report, err := s.Evaluate(context.Background(), baseline, broken)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !report.StructuralDefect {
		t.Error("expected a structural-defect report")
	}
	if report.Total != 0 {
		t.Errorf("Total = %d, want 0", report.Total)
	}
}

func TestScorer_CollectorFailure(t *testing.T) {
	collectors := fixedCollectors(FindingNone, 5, 20)
	collectors.Readability = fixedReadability{err: errors.ErrMetricUnavailable}
	s := NewScorer(nil, collectors, nil)

	_, err := s.Evaluate(context.Background(), baseline, candidate)
	var scoreErr *errors.ScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
	if scoreErr.Dimension != "readability" {
		t.Errorf("Dimension = %q, want readability", scoreErr.Dimension)
	}
}

func TestScorer_MalformedCollectorOutput(t *testing.T) {
	s := NewScorer(nil, fixedCollectors(SecurityFinding("Catastrophic"), 5, 20), nil)

	_, err := s.Evaluate(context.Background(), baseline, candidate)
	if err == nil {
		t.Fatal("expected error for malformed metrics")
	}
}

func TestComplexityCollector(t *testing.T) {
	src := `package demo

func simple() int { return 1 }

func tangled(xs []int) int {
	n := 0
	for _, x := range xs {
		if x > 0 && x < 100 {
			switch {
			case x%2 == 0:
				n += x
			case x%3 == 0:
				n -= x
			}
		}
	}
	return n
}
`
	got, err := ComplexityCollector{}.Measure(context.Background(), artifact.Artifact{Name: "demo.go", Content: src})
	if err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	// tangled: 1 + range + if + && + 2 case clauses = 6.
	if got != 6 {
		t.Errorf("complexity = %d, want 6", got)
	}
}

func TestComplexityCollector_NonGo(t *testing.T) {
	got, err := ComplexityCollector{}.Measure(context.Background(), artifact.Artifact{Name: "notes.md", Content: "x"})
	if err != nil || got != 1 {
		t.Errorf("Measure = (%d, %v), want (1, nil)", got, err)
	}
}

func TestOracleSecurityCollector(t *testing.T) {
	o := oracle.NewScripted(`{"highest_severity": "Medium"}`)
	got, err := OracleSecurityCollector{Oracle: o}.Measure(context.Background(), candidate)
	if err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	if got != FindingMedium {
		t.Errorf("finding = %s, want Medium", got)
	}
}

func TestOracleSecurityCollector_UnknownSeverity(t *testing.T) {
	o := oracle.NewScripted(`{"highest_severity": "Apocalyptic"}`)
	_, err := OracleSecurityCollector{Oracle: o}.Measure(context.Background(), candidate)
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("expected ErrMetricUnavailable, got %v", err)
	}
}

func TestOraclePerformanceCollector(t *testing.T) {
	o := oracle.NewScripted("```json\n{\"improvement_percent\": 12.5}\n```")
	got, err := OraclePerformanceCollector{Oracle: o}.Measure(context.Background(), baseline, candidate)
	if err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	if got != 12.5 {
		t.Errorf("improvement = %v, want 12.5", got)
	}
}
