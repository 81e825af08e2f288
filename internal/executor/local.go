package executor

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"maestro/internal/artifact"
	"maestro/internal/errors"
	"maestro/internal/plan"
)

// Line-range locator, e.g. "util.go#L10-L15" or just "L10-L15".
var regionRe = regexp.MustCompile(`^(?:(.+)#)?L(\d+)-L(\d+)$`)

// Local applies plans textually, without an oracle. It understands only
// line-range target regions; anything else is an execution failure. It
// backs the offline synthesize command and rule-based runs.
type Local struct{}

// NewLocal creates a local executor.
func NewLocal() *Local {
	return &Local{}
}

type region struct {
	start, end int // 1-based, inclusive
}

func parseRegion(locator, artifactName string) (region, error) {
	m := regionRe.FindStringSubmatch(locator)
	if m == nil {
		return region{}, fmt.Errorf("target region %q is not a line-range locator", locator)
	}
	if m[1] != "" && m[1] != artifactName {
		return region{}, fmt.Errorf("target region %q names a different artifact than %q", locator, artifactName)
	}
	start, _ := strconv.Atoi(m[2])
	end, _ := strconv.Atoi(m[3])
	if start < 1 || end < start {
		return region{}, fmt.Errorf("target region %q has an invalid line range", locator)
	}
	return region{start: start, end: end}, nil
}

// Apply executes the plan's instructions against the artifact text. A
// no-op plan returns the artifact unchanged. Instructions are applied from
// the bottom of the file upward so earlier line numbers stay valid.
func (e *Local) Apply(_ context.Context, a artifact.Artifact, p *plan.Plan) (artifact.Artifact, error) {
	if p.IsNoOp() {
		return a, nil
	}

	type edit struct {
		plan.Instruction
		region
	}
	edits := make([]edit, 0, len(p.Instructions))
	for _, ins := range p.Instructions {
		r, err := parseRegion(ins.TargetRegion, a.Name)
		if err != nil {
			return artifact.Artifact{}, errors.NewExecutionError(err.Error(), nil).WithPlanID(p.ID)
		}
		edits = append(edits, edit{Instruction: ins, region: r})
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})

	lines := strings.Split(a.Content, "\n")
	for _, ed := range edits {
		if ed.end > len(lines) {
			return artifact.Artifact{}, errors.NewExecutionError(
				fmt.Sprintf("step %d targets line %d beyond artifact end (%d lines)", ed.Step, ed.end, len(lines)), nil).
				WithPlanID(p.ID)
		}

		var err error
		lines, err = applyEdit(lines, ed.Instruction, ed.region)
		if err != nil {
			return artifact.Artifact{}, errors.NewExecutionError(err.Error(), nil).WithPlanID(p.ID)
		}
	}

	return a.WithContent(strings.Join(lines, "\n")), nil
}

func applyEdit(lines []string, ins plan.Instruction, r region) ([]string, error) {
	before := lines[:r.start-1]
	after := lines[r.end:]

	switch ins.Action {
	case plan.ActionReplace, plan.ActionRefactorAndModify:
		replacement := strings.Split(ins.NewContent, "\n")
		return splice(before, replacement, after), nil
	case plan.ActionDelete:
		return splice(before, nil, after), nil
	case plan.ActionAdd:
		// Insert before the region; the region's own lines are kept.
		inserted := strings.Split(ins.NewContent, "\n")
		kept := lines[r.start-1 : r.end]
		return splice(before, append(inserted, kept...), after), nil
	default:
		return nil, fmt.Errorf("step %d has unsupported action %q", ins.Step, ins.Action)
	}
}

func splice(before, middle, after []string) []string {
	out := make([]string, 0, len(before)+len(middle)+len(after))
	out = append(out, before...)
	out = append(out, middle...)
	out = append(out, after...)
	return out
}
