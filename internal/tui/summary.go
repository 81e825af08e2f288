package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"maestro/internal/control"
	"maestro/internal/report"
	"maestro/internal/util"
)

// Terminal statuses in presentation order.
var summaryOrder = []control.TerminalStatus{
	control.TerminalSuccess,
	control.TerminalSuccessAfterRetry,
	control.TerminalNoOp,
	control.TerminalFinalFailure,
	control.TerminalSynthFailure,
	control.TerminalExecFailure,
}

// RenderSummary formats a finished run for plain terminal output: a
// per-artifact result list plus status totals, boxed to the terminal
// width.
func RenderSummary(r *report.RunReport) string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("run %s", r.RunID)))
	b.WriteString("\n")
	b.WriteString(Subtitle.Render(fmt.Sprintf("goal %s, %s synthesis, %d artifacts", r.Goal, r.Mode, len(r.Artifacts))))
	b.WriteString("\n\n")

	artifacts := make([]report.ArtifactResult, len(r.Artifacts))
	copy(artifacts, r.Artifacts)
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Artifact < artifacts[j].Artifact
	})

	for _, ar := range artifacts {
		b.WriteString(artifactLine(ar))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	counts := r.Summary()
	parts := make([]string, 0, len(summaryOrder))
	for _, status := range summaryOrder {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	b.WriteString(SummaryBox.Width(boxWidth()).Render(strings.Join(parts, "  ")))
	b.WriteString("\n")

	return b.String()
}

func artifactLine(ar report.ArtifactResult) string {
	status := ar.Result.TerminalStatus

	var badge string
	switch {
	case status.Succeeded():
		badge = StatusSuccess.Render("✓")
	case status.Failed():
		badge = StatusFailure.Render("✗")
	default:
		badge = StatusNeutral.Render("-")
	}

	line := fmt.Sprintf("%s %s  %s", badge, ar.Artifact, Muted.Render(string(status)))
	if n := len(ar.Result.Reports); n > 0 {
		last := ar.Result.Reports[n-1]
		line += Muted.Render(fmt.Sprintf("  [%d/100]", last.Total))
	}
	return util.TruncateANSI(line, boxWidth())
}

// boxWidth fits the summary box to the terminal, falling back to 80
// columns when stdout is not a terminal.
func boxWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return min(width-2, 100)
}
