package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishguard/internal/database"
	"github.com/nao1215/phishguard/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored threat verdicts",
		Long: `History lists the suspicious and phishing verdicts stored in the event
database, newest first. With --system it lists server start-up, shutdown
and classifier recovery events instead.

Examples:
  phishguard history
  phishguard history --limit 100 --json
  phishguard history --system`,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of events (0 for all)")
	cmd.Flags().Bool("system", false, "Show system events instead of verdicts")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return err
	}

	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}

	system, err := flags.GetBool("system")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	newLogger(cmd.ErrOrStderr(), cfg.Verbose, false)

	var events []model.Event
	if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); err == nil {
		opts := database.DefaultOptions()
		opts.CreateIfNotExists = false
		db, err := database.Open(cfg.DBDir, opts)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if system {
			events, err = db.ListSystemEvents(cmd.Context(), limit)
		} else {
			events, err = db.ListAttempts(cmd.Context(), limit)
		}
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check event database: %w", err)
	}

	out, closeFn, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := newReportWriter(cfg, out).WriteHistory(events); err != nil {
		_ = closeFn() //nolint:errcheck // Already returning an error
		return fmt.Errorf("failed to write history: %w", err)
	}
	return closeFn()
}
