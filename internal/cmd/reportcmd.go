package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"maestro/internal/config"
	"maestro/internal/report"
	"maestro/internal/tui"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show the summary of a past run",
	Long: `Show the summary of a past run from the report directory. Without a
run ID, the most recent run is shown. Run IDs are timestamps, so the
directory listing is already in chronological order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	} else {
		runID, err = latestRunID(cfg.Run.ReportDir)
		if err != nil {
			return err
		}
	}

	rep, err := report.Read(filepath.Join(cfg.Run.ReportDir, runID))
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(rep))
	return nil
}

// latestRunID returns the newest run directory name under reportDir.
func latestRunID(reportDir string) (string, error) {
	entries, err := os.ReadDir(reportDir)
	if err != nil {
		return "", fmt.Errorf("reading report directory %s: %w", reportDir, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no runs recorded under %s", reportDir)
	}
	sort.Strings(ids)
	return ids[len(ids)-1], nil
}
