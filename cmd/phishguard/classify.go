package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/pipeline"
	"github.com/nao1215/phishguard/internal/report"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [url...]",
		Short: "Classify URLs as safe, suspicious or phishing",
		Long: `Classify runs each URL through the detection pipeline and prints the verdict.

Stages run in a fixed order and the first conclusive stage decides:
  allowlist, reputation, keyword heuristics, local test rules,
  page content, statistical classifier, fallback heuristics.
A URL no stage flags is reported as safe.

Threat verdicts are stored in the event database unless --no-save is set.

Examples:
  # Classify a single URL
  phishguard classify https://example.com/login

  # Classify URLs from a file, one per line, as JSON
  phishguard classify --file urls.txt --json

  # Skip page fetching and write a Markdown report
  phishguard classify --no-fetch --markdown -o report.md https://a.test https://b.test

  # Fetch pages through Tor
  phishguard classify --tor http://suspicious.example/`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("file", "f", "", "Read URLs from a file, one per line ('-' for stdin)")
	cmd.Flags().BoolP("json", "j", false, "Output report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write report to file instead of stdout")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of URLs classified concurrently")
	cmd.Flags().Bool("no-fetch", false, "Skip page content analysis")
	cmd.Flags().Bool("no-save", false, "Do not store verdicts in the event database")
	cmd.Flags().Bool("tor", false, "Fetch pages through an embedded Tor daemon")
	cmd.Flags().StringP("proxy", "x", "", "Fetch pages through a SOCKS5 proxy (host:port)")
	cmd.Flags().Duration("timeout", config.DefaultContentTimeout, "Page fetch timeout (at most 5s)")

	return cmd
}

// buildClassifyConfig applies the classify flags over the shared configuration.
func buildClassifyConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return nil, err
	}

	// Only flags given on the command line override the config file.
	if flags.Changed("batch") {
		cfg.BatchSize, err = flags.GetInt("batch")
		if err != nil {
			return nil, err
		}
	}

	noFetch, err := flags.GetBool("no-fetch")
	if err != nil {
		return nil, err
	}
	if noFetch {
		cfg.FetchContent = false
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		cfg.SaveToDB = false
	}

	if flags.Changed("tor") {
		cfg.UseTor, err = flags.GetBool("tor")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("proxy") {
		cfg.ProxyAddress, err = flags.GetString("proxy")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		cfg.ContentTimeout, err = flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	file, err := flags.GetString("file")
	if err != nil {
		return nil, err
	}

	cfg.Targets = append(cfg.Targets, args...)
	if file != "" {
		urls, err := readTargets(file, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, urls...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateTargets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readTargets reads one URL per line. Blank lines and lines starting
// with '#' are skipped.
func readTargets(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // User-provided target list is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open target list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}
	return urls, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := buildClassifyConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}()

	var results []*model.Result
	if len(cfg.Targets) == 1 {
		results = []*model.Result{a.pipeline.Classify(ctx, cfg.Targets[0])}
	} else {
		bp := pipeline.NewBatchProcessor(a.pipeline,
			pipeline.WithConcurrency(cfg.BatchSize),
			pipeline.WithBatchLogger(logger),
		)
		results, err = bp.ProcessBatch(ctx, cfg.Targets)
		if err != nil {
			logger.Warn("batch interrupted", "error", err)
		}
	}

	return writeResults(cmd, cfg, results)
}

func writeResults(cmd *cobra.Command, cfg *config.Config, results []*model.Result) error {
	out, closeFn, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if _, err := newReportWriter(cfg, out).Write(results); err != nil {
		_ = closeFn() //nolint:errcheck // Already returning an error
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", cfg.ReportFile)
	}
	return nil
}

func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewTextWriter(out, report.WithVerbose(cfg.Verbose))
	}
}
