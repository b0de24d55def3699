package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishguard/internal/allowlist"
	"github.com/nao1215/phishguard/internal/classifier"
	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/content"
	"github.com/nao1215/phishguard/internal/database"
	"github.com/nao1215/phishguard/internal/egress"
	"github.com/nao1215/phishguard/internal/heuristic"
	"github.com/nao1215/phishguard/internal/lexical"
	plog "github.com/nao1215/phishguard/internal/log"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/pipeline"
	"github.com/nao1215/phishguard/internal/reputation"
)

// loadConfig builds the configuration shared by all commands:
// defaults, then .env, then the config file, then PHISHGUARD_* variables.
// Command flags are applied by the caller afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.Verbose = verbose

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	if configFile := config.FindConfigFile(configPath); configFile != "" {
		fileConfig, err := config.LoadConfigFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err := fileConfig.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configFile, err)
		}
		cfg.ConfigFilePath = configFile
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the masking logger used by every command and makes it
// the process default.
func newLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	var logger *slog.Logger
	if jsonFormat {
		logger = plog.NewSecureJSONLogger(w, verbose)
	} else {
		logger = plog.NewSecureLogger(w, verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// app holds the wired detection pipeline and the resources behind it.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	db       *database.EventDB
	tor      *egress.EmbeddedTor
	status   classifier.LoadStatus
}

// newApp wires every detection stage from cfg. Stages whose backing
// resource is unavailable are left out of the pipeline; only broken
// configuration is an error. The caller must Close the app.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	safe, err := loadAllowlist(cfg)
	if err != nil {
		return nil, err
	}

	extractor := lexical.New(cfg.Rules.SuspiciousTLDs)

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open event database: %w", err)
		}
		a.db = db
	}

	trainer := &classifier.SyntheticTrainer{
		Samples:   cfg.TrainingSamples,
		Seed:      cfg.TrainingSeed,
		Extractor: extractor,
	}
	m, status, err := classifier.LoadOrRecover(ctx, cfg.ModelPath, trainer, logger)
	a.status = status
	if err != nil {
		logger.Warn("classifier disabled", "error", err)
	}
	if status == classifier.StatusRecovered {
		a.recordSystem(ctx, model.EventRecovery, "classifier artifact retrained: "+cfg.ModelPath)
	}

	components := pipeline.Components{
		Allowlist:  safe,
		Heuristics: heuristic.New(cfg.Rules),
		Classifier: classifier.NewStage(m, logger),
	}

	if cfg.ReputationEndpoint != "" {
		components.Reputation = reputation.New(cfg.ReputationEndpoint,
			reputation.WithAPIKey(cfg.ReputationAPIKey),
			reputation.WithTimeout(cfg.ReputationTimeout),
			reputation.WithLogger(logger),
		)
	}

	if cfg.FetchContent {
		client, err := a.newFetchClient(ctx, progress)
		if err != nil {
			_ = a.Close() //nolint:errcheck // Already returning an error
			return nil, err
		}
		components.Content = content.NewAnalyzer(client, cfg.Rules,
			content.WithUserAgent(cfg.UserAgent),
			content.WithMaxBodySize(cfg.MaxBodySize),
			content.WithLogger(logger),
		)
	}

	var sink pipeline.EventSink = pipeline.NewLogSink(logger)
	if a.db != nil {
		sink = a.db
	}

	a.pipeline = pipeline.NewStandard(components,
		pipeline.WithLogger(logger),
		pipeline.WithEventSink(sink),
		pipeline.WithExtractor(extractor),
	)
	logger.Debug("pipeline ready", "stages", a.pipeline.StageNames(), "classifier", status)
	return a, nil
}

func loadAllowlist(cfg *config.Config) (*allowlist.Set, error) {
	if cfg.SafeDomainsFile == "" {
		return allowlist.Default(), nil
	}
	set, err := allowlist.LoadFile(cfg.SafeDomainsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load safe domains: %w", err)
	}
	return set, nil
}

// newFetchClient returns the page-fetch client: through embedded Tor,
// through a SOCKS5 proxy, or direct.
func (a *app) newFetchClient(ctx context.Context, progress io.Writer) (*http.Client, error) {
	opts := []egress.Option{
		egress.WithTimeout(a.cfg.ContentTimeout),
		egress.WithMaxRedirects(a.cfg.MaxRedirects),
	}

	switch {
	case a.cfg.UseTor:
		tor, err := startEmbeddedTor(ctx, a.cfg, progress)
		if err != nil {
			return nil, err
		}
		a.tor = tor
		return tor.NewHTTPClient(opts...)

	case a.cfg.ProxyAddress != "":
		if !egress.IsValidProxyAddress(a.cfg.ProxyAddress) {
			return nil, fmt.Errorf("invalid proxy address: %s", a.cfg.ProxyAddress)
		}
		if status := egress.CheckProxy(ctx, a.cfg.ProxyAddress); status != egress.ProxyStatusOK {
			return nil, fmt.Errorf("proxy %s is not usable: %s", a.cfg.ProxyAddress, status)
		}
		return egress.NewHTTPClient(append(opts, egress.WithSOCKS5(a.cfg.ProxyAddress))...)

	default:
		return egress.NewHTTPClient(opts...)
	}
}

// startEmbeddedTor starts the embedded Tor daemon.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, progress io.Writer) (*egress.EmbeddedTor, error) {
	fmt.Fprintln(progress, "Starting embedded Tor daemon...")
	fmt.Fprintln(progress, "This may take a few minutes on first run.")

	tor := egress.NewEmbeddedTor(egress.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := tor.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	fmt.Fprintf(progress, "Embedded Tor started (SOCKS: %s)\n", tor.SocksAddr())
	return tor, nil
}

// recordSystem stores a system event. Failures are logged and ignored.
func (a *app) recordSystem(ctx context.Context, eventType, details string) {
	if a.db == nil {
		return
	}
	if err := a.db.Record(context.WithoutCancel(ctx), model.NewSystemEvent(eventType, details)); err != nil {
		a.logger.Warn("failed to record event", "type", eventType, "error", err)
	}
}

// Close releases the database and stops Tor.
func (a *app) Close() error {
	var errs []error
	if a.tor != nil {
		if err := a.tor.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop Tor: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// openOutput returns the report destination: the named file (created with
// 0600 permissions) or w when path is empty.
func openOutput(path string, w io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-specified output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
