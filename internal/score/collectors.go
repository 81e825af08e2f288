package score

import (
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/oracle"
	"maestro/internal/plan"
)

// -----------------------------------------------------------------------------
// Static readability collector
// -----------------------------------------------------------------------------

// ComplexityCollector measures cyclomatic complexity statically by walking
// the Go AST. The artifact-level value is the maximum per-function
// complexity, since one tangled function is what a reader trips over.
type ComplexityCollector struct{}

// Measure returns the artifact's cyclomatic complexity. Non-Go artifacts
// report 1, the floor for a syntactically valid artifact.
func (ComplexityCollector) Measure(_ context.Context, candidate artifact.Artifact) (int, error) {
	if !candidate.IsGo() {
		return 1, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, candidate.Name, candidate.Content, 0)
	if err != nil {
		return 0, errors.Wrap(errors.ErrMetricUnavailable, fmt.Sprintf("parsing candidate: %v", err))
	}

	max := 1
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		if c := funcComplexity(fn); c > max {
			max = c
		}
	}
	return max, nil
}

// funcComplexity counts decision points plus one, the classic McCabe count.
func funcComplexity(fn *ast.FuncDecl) int {
	complexity := 1
	ast.Inspect(fn, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			complexity++
		case *ast.BinaryExpr:
			if n.Op == token.LAND || n.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}

// -----------------------------------------------------------------------------
// Oracle-backed collectors
// -----------------------------------------------------------------------------

const securityAuditPrompt = `You are a security auditor. Examine the artifact and report the single worst security issue you find.

Respond with a JSON object: {"highest_severity": "High" | "Medium" | "Low" | "None"}`

// OracleSecurityCollector asks the oracle for the candidate's worst
// security finding.
type OracleSecurityCollector struct {
	Oracle oracle.Oracle
}

// Measure returns the oracle's highest-severity finding.
func (c OracleSecurityCollector) Measure(ctx context.Context, candidate artifact.Artifact) (SecurityFinding, error) {
	prompt := fmt.Sprintf("## Artifact: %s\n```\n%s\n```", candidate.Name, candidate.Content)
	content, err := c.Oracle.Complete(ctx, oracle.Request{
		System:    securityAuditPrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrMetricUnavailable, err.Error())
	}

	payload, err := plan.ExtractJSON(content)
	if err != nil {
		return "", errors.Wrap(errors.ErrMetricUnavailable, err.Error())
	}

	var result struct {
		HighestSeverity SecurityFinding `json:"highest_severity"`
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return "", errors.Wrap(errors.ErrMetricUnavailable, fmt.Sprintf("decoding security metric: %v", err))
	}
	if !result.HighestSeverity.IsValid() {
		return "", errors.Wrap(errors.ErrMetricUnavailable,
			fmt.Sprintf("unknown severity %q from oracle", result.HighestSeverity))
	}
	return result.HighestSeverity, nil
}

const performanceJudgePrompt = `You are a performance analyst. Compare the candidate against the baseline and estimate the runtime improvement as a percentage (positive = candidate is faster, negative = slower).

Respond with a JSON object: {"improvement_percent": <number>}`

// OraclePerformanceCollector asks the oracle to estimate the candidate's
// performance change against the baseline.
type OraclePerformanceCollector struct {
	Oracle oracle.Oracle
}

// Measure returns the estimated improvement percentage.
func (c OraclePerformanceCollector) Measure(ctx context.Context, baseline, candidate artifact.Artifact) (float64, error) {
	prompt := fmt.Sprintf("## Baseline: %s\n```\n%s\n```\n\n## Candidate\n```\n%s\n```",
		baseline.Name, baseline.Content, candidate.Content)
	content, err := c.Oracle.Complete(ctx, oracle.Request{
		System:    performanceJudgePrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrMetricUnavailable, err.Error())
	}

	payload, err := plan.ExtractJSON(content)
	if err != nil {
		return 0, errors.Wrap(errors.ErrMetricUnavailable, err.Error())
	}

	var result struct {
		ImprovementPercent float64 `json:"improvement_percent"`
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return 0, errors.Wrap(errors.ErrMetricUnavailable, fmt.Sprintf("decoding performance metric: %v", err))
	}
	return result.ImprovementPercent, nil
}
