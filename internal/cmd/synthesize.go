package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"maestro/internal/artifact"
	"maestro/internal/executor"
	"maestro/internal/plan"
	"maestro/internal/suggestion"
	"maestro/internal/synth"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <artifact> <suggestions.yaml>",
	Short: "Synthesize a plan from a suggestion file, offline",
	Long: `Synthesize an execution plan from a YAML suggestion file using the
deterministic rule-based strategy. No oracle is contacted. The plan is
printed as JSON; with --apply, the plan is also executed textually and
the rewritten artifact printed.

The suggestion file is a YAML list:

  - suggestion_id: SEC-001
    source: security
    title: Parameterize the query
    target_region: "L10-L14"
    severity: Critical
    rationale: String-built SQL is injectable.
    proposed_change: |
      rows, err := db.QueryContext(ctx, q, id)`,
	Args: cobra.ExactArgs(2),
	RunE: runSynthesize,
}

func init() {
	synthesizeCmd.Flags().String("goal", "Balance", "synthesis goal")
	synthesizeCmd.Flags().Bool("apply", false, "apply the plan and print the rewritten artifact")
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	artifactPath, suggestionPath := args[0], args[1]

	art, err := artifact.Load(filepath.Dir(artifactPath), artifactPath)
	if err != nil {
		return err
	}
	suggestions, err := loadSuggestions(suggestionPath)
	if err != nil {
		return err
	}

	goalFlag, _ := cmd.Flags().GetString("goal")
	goal, err := plan.ParseGoal(goalFlag)
	if err != nil {
		return err
	}

	p, err := synth.NewRuleBased().Synthesize(cmd.Context(), synth.Request{
		Artifact:    art,
		Suggestions: suggestions,
		Goal:        goal,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	apply, _ := cmd.Flags().GetBool("apply")
	if !apply {
		return nil
	}

	candidate, err := executor.NewLocal().Apply(cmd.Context(), art, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "---")
	fmt.Fprint(cmd.OutOrStdout(), candidate.Content)
	return nil
}

// loadSuggestions reads and validates a YAML suggestion list.
func loadSuggestions(path string) ([]suggestion.Suggestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suggestion file: %w", err)
	}

	var suggestions []suggestion.Suggestion
	if err := yaml.Unmarshal(data, &suggestions); err != nil {
		return nil, fmt.Errorf("parsing suggestion file: %w", err)
	}
	if err := suggestion.ValidateSet(suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}
