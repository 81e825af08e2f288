package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"maestro/internal/config"
	"maestro/internal/driver"
	"maestro/internal/logging"
	"maestro/internal/report"
	"maestro/internal/tui"
)

var improveCmd = &cobra.Command{
	Use:   "improve [path]",
	Short: "Run the improvement pipeline over matching artifacts",
	Long: `Run the improvement pipeline over every artifact under the given path
(default: current directory) matching the configured include/exclude
patterns. Each artifact is analyzed, planned, rewritten, and scored;
results and final artifacts land under the report directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImprove,
}

func init() {
	improveCmd.Flags().String("goal", "", "synthesis goal: Balance, Security-Focus, or Performance-Focus")
	improveCmd.Flags().String("mode", "", "synthesis mode: rule-based or reasoning")
	improveCmd.Flags().Int("parallel", 0, "max artifacts processed concurrently")
	improveCmd.Flags().Bool("no-progress", false, "disable the live progress display")
	_ = viperBindFlags(improveCmd, map[string]string{
		"goal":     "synthesis.goal",
		"mode":     "synthesis.mode",
		"parallel": "run.max_parallel",
	})
	rootCmd.AddCommand(improveCmd)
}

func runImprove(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	artifacts, err := driver.Select(root, cfg.Run.Include, cfg.Run.Exclude)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no artifacts match the configured patterns")
		return nil
	}

	runID := report.NewRunID(time.Now())
	writer, err := report.NewWriter(filepath.Join(root, cfg.Run.ReportDir), runID)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, writer.Dir())
	if err != nil {
		return err
	}
	defer logger.Close()
	logger = logger.WithRun(runID)

	newLoop, err := newLoopFactory(cfg, logger)
	if err != nil {
		return err
	}

	opts := []driver.Option{driver.WithParallelism(cfg.Run.MaxParallel)}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	showProgress := cfg.TUI.Progress && !noProgress && term.IsTerminal(int(os.Stdout.Fd()))

	var program *tea.Program
	if showProgress {
		program = tea.NewProgram(tui.NewProgress(len(artifacts)))
		opts = append(opts, driver.WithObserver(tui.Observer(program)))
	}

	d, err := driver.New(newLoop, logger, opts...)
	if err != nil {
		return err
	}

	goal := cfg.Synthesis.Goal
	mode := cfg.Synthesis.Mode

	var rep *report.RunReport
	var runErr error
	run := func() {
		rep, runErr = d.Run(cmd.Context(), runID, goal, mode, artifacts)
	}

	if program != nil {
		go func() {
			run()
			program.Send(tui.RunFinishedMsg{})
		}()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("progress display failed: %w", err)
		}
	} else {
		run()
	}
	if runErr != nil {
		return runErr
	}

	if err := writer.Write(rep); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(rep))
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", writer.Dir())
	return nil
}

// buildLogger creates the run logger, honoring the logging config. The
// debug log lives next to the run report.
func buildLogger(cfg *config.Config, runDir string) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(runDir, cfg.Logging.Level)
}

// viperBindFlags binds command flags to config keys so flags override
// file and environment values. Unchanged flags fall through to the
// config file and defaults.
func viperBindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flag, key := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("flag %q is not defined on %s", flag, cmd.Name())
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
