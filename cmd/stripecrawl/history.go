package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/stripecrawl/internal/config"
	"github.com/nao1215/stripecrawl/internal/database"
	"github.com/nao1215/stripecrawl/internal/report"
)

// defaultHistoryLimit is how many runs history lists without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded crawl runs",
		Long: `History lists crawl runs recorded with crawl --save, newest first.
With a run ID it shows the full report of that run.

Examples:
  # Last 20 runs
  stripecrawl history

  # Last 5 runs as JSON
  stripecrawl history --limit 5 --json

  # Full report of run 12
  stripecrawl history 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "o", "",
		"Write output to specified file path")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}

	var runID int64
	if len(args) == 1 {
		runID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || runID <= 0 {
			return fmt.Errorf("invalid run ID %q: must be a positive integer", args[0])
		}
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		if runID != 0 {
			return fmt.Errorf("run %d not found: no history recorded in %s", runID, cfg.DBDir)
		}
		return outputReport(cfg, cmd.OutOrStdout(), func(w report.Writer) error {
			_, err := w.WriteHistory(nil)
			return err
		})
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if runID != 0 {
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", runID, err)
		}
		if run == nil {
			return fmt.Errorf("run %d: %w", runID, database.ErrRunNotFound)
		}
		return outputReport(cfg, cmd.OutOrStdout(), func(w report.Writer) error {
			_, err := w.Write(run)
			return err
		})
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return outputReport(cfg, cmd.OutOrStdout(), func(w report.Writer) error {
		_, err := w.WriteHistory(runs)
		return err
	})
}
