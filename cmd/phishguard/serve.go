package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishguard/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification HTTP API",
		Long: `Serve exposes the detection pipeline over HTTP.

Endpoints:
  GET  /         health check
  POST /analyze  classify {"url": "..."}
  GET  /history  recent threat verdicts (?limit=N)

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  phishguard serve
  phishguard serve --addr 0.0.0.0:8080 --no-fetch`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8000)")
	cmd.Flags().Bool("no-fetch", false, "Skip page content analysis")
	cmd.Flags().Bool("no-save", false, "Do not store events in the event database")
	cmd.Flags().StringP("proxy", "x", "", "Fetch pages through a SOCKS5 proxy (host:port)")
	cmd.Flags().Bool("log-json", false, "Write logs as JSON")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	addr, err := flags.GetString("addr")
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddress = addr
	}

	noFetch, err := flags.GetBool("no-fetch")
	if err != nil {
		return err
	}
	if noFetch {
		cfg.FetchContent = false
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return err
	}
	if noSave {
		cfg.SaveToDB = false
	}

	if flags.Changed("proxy") {
		cfg.ProxyAddress, err = flags.GetString("proxy")
		if err != nil {
			return err
		}
	}

	logJSON, err := flags.GetBool("log-json")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, logJSON)

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

	opts := []server.Option{server.WithLogger(logger)}
	if a.db != nil {
		opts = append(opts, server.WithRecorder(a.db), server.WithHistory(a.db))
	}
	srv := server.New(a.pipeline, opts...)

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", cfg.ListenAddress)
	return srv.ListenAndServe(ctx, cfg.ListenAddress)
}
