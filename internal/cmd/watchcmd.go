package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"maestro/internal/config"
	"maestro/internal/driver"
	"maestro/internal/report"
	"maestro/internal/tui"
	"maestro/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run improvement whenever matching files change",
	Long: `Watch the given path (default: current directory) and re-run the
improvement pipeline over the files that changed, once the changes
settle. Each batch of changes produces its own run report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	logger, err := buildLogger(cfg, "")
	if err != nil {
		return err
	}
	defer logger.Close()

	newLoop, err := newLoopFactory(cfg, logger)
	if err != nil {
		return err
	}
	d, err := driver.New(newLoop, logger, driver.WithParallelism(cfg.Run.MaxParallel))
	if err != nil {
		return err
	}

	w, err := watch.New(root, cfg.Watch.Debounce(), logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (debounce %s)\n", root, cfg.Watch.Debounce())

	return w.Run(cmd.Context(), func(paths []string) {
		// Re-select so include/exclude patterns still apply to the batch.
		selected, err := driver.Select(root, cfg.Run.Include, cfg.Run.Exclude)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "selection failed: %v\n", err)
			return
		}
		changed := make(map[string]bool, len(paths))
		for _, p := range paths {
			changed[p] = true
		}
		batch := selected[:0:0]
		for _, a := range selected {
			if changed[a.Name] {
				batch = append(batch, a)
			}
		}
		if len(batch) == 0 {
			return
		}

		runID := report.NewRunID(time.Now())
		rep, err := d.Run(cmd.Context(), runID, cfg.Synthesis.Goal, cfg.Synthesis.Mode, batch)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s failed: %v\n", runID, err)
			return
		}

		writer, err := report.NewWriter(filepath.Join(root, cfg.Run.ReportDir), runID)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %v\n", runID, err)
			return
		}
		if err := writer.Write(rep); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %v\n", runID, err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(rep))
	})
}
