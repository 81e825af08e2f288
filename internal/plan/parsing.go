package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"maestro/internal/errors"
)

// Oracle responses wrap the plan JSON in different ways depending on the
// model: bare JSON, a ```json fenced block, or an XML-style <plan> tag.
// We try the most specific form first.
var (
	planTagRe    = regexp.MustCompile(`(?s)<plan>\s*(.*?)\s*</plan>`)
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?\\s*```")
)

// flexibleInstruction tolerates the field aliases different oracle models
// emit for the same concepts before normalizing to Instruction.
type flexibleInstruction struct {
	Step                int        `json:"step"`
	Description         string     `json:"description"`
	Action              ActionKind `json:"action"`
	TargetRegion        string     `json:"target_region"`
	TargetCodeBlock     string     `json:"target_code_block"`
	NewContent          string     `json:"new_content"`
	NewCode             string     `json:"new_code"`
	SourceSuggestionIDs []string   `json:"source_suggestion_ids"`
	Rationale           string     `json:"rationale"`
}

type flexiblePlan struct {
	ID           string                `json:"plan_id"`
	Goal         Goal                  `json:"synthesis_goal"`
	Instructions []flexibleInstruction `json:"instructions"`
}

// ExtractJSON pulls the JSON payload out of a raw oracle response. It
// checks, in order: a <plan> tag, a fenced code block, and finally the
// first top-level JSON object in the text.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.ErrOracleEmptyResponse
	}

	if m := planTagRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", errors.Wrap(errors.ErrOracleMalformedResponse, "no JSON object found in response")
	}
	return content[start : end+1], nil
}

// Parse extracts and decodes a plan from a raw oracle response, then
// validates its structural invariants against the known suggestion set.
// Decode and validation failures both carry the malformed-response or
// invalid-plan sentinels for the synthesizer's retry decision.
func Parse(content string, knownSuggestions map[string]bool) (*Plan, error) {
	payload, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var raw flexiblePlan
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrOracleMalformedResponse, fmt.Sprintf("decoding plan JSON: %v", err))
	}

	p := &Plan{
		ID:           raw.ID,
		Goal:         raw.Goal,
		Instructions: make([]Instruction, 0, len(raw.Instructions)),
	}
	if p.ID == "" {
		p.ID = DeriveID(p.Goal, nil)
	}
	if p.Goal == "" {
		p.Goal = GoalBalance
	}

	for _, fi := range raw.Instructions {
		ins := Instruction{
			Step:                fi.Step,
			Description:         fi.Description,
			Action:              fi.Action,
			TargetRegion:        fi.TargetRegion,
			NewContent:          fi.NewContent,
			SourceSuggestionIDs: fi.SourceSuggestionIDs,
			Rationale:           fi.Rationale,
		}
		if ins.TargetRegion == "" {
			ins.TargetRegion = fi.TargetCodeBlock
		}
		if ins.NewContent == "" {
			ins.NewContent = fi.NewCode
		}
		p.Instructions = append(p.Instructions, ins)
	}

	if err := p.Validate(knownSuggestions); err != nil {
		return nil, err
	}
	return p, nil
}
