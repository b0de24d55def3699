package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phishguard"

	// MaxStageTimeout is the upper bound for any per-stage network timeout.
	// A request must never wait longer than this on a single upstream.
	MaxStageTimeout = 5 * time.Second

	// DefaultReputationTimeout is the per-call timeout of the reputation lookup.
	DefaultReputationTimeout = 5 * time.Second

	// DefaultContentTimeout is the timeout for fetching a page, redirects included.
	DefaultContentTimeout = 5 * time.Second

	// DefaultMaxRedirects caps how many redirects a page fetch follows.
	DefaultMaxRedirects = 5

	// DefaultMaxBodySize limits how much of a page body is read.
	// Phishing kits are small; 2MB covers real login pages comfortably.
	DefaultMaxBodySize = 2 * 1024 * 1024

	// DefaultUserAgent mimics a desktop browser. Phishing kits commonly
	// cloak their content from obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DefaultBatchSize is the number of URLs classified concurrently in batch mode.
	DefaultBatchSize = 10

	// DefaultListenAddress is the address of the HTTP API.
	DefaultListenAddress = "127.0.0.1:8000"

	// DefaultTrainingSamples is the size of the synthetic recovery dataset.
	DefaultTrainingSamples = 2000

	// DefaultTrainingSeed makes recovery training reproducible.
	DefaultTrainingSeed = 42

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// ModelFileName is the file name of the classifier artifact in the data directory.
	ModelFileName = "model.json"
)

// Config holds all configuration options for phishguard.
// It is populated from defaults, the configuration file, environment
// variables and CLI flags (in that order) and passed down explicitly.
type Config struct {
	// ReputationEndpoint is the URL of a PhishTank-compatible lookup API.
	// When empty the reputation stage is disabled.
	ReputationEndpoint string

	// ReputationAPIKey is sent as app_key. Optional.
	ReputationAPIKey string

	// ReputationTimeout is the per-call timeout of the reputation lookup.
	ReputationTimeout time.Duration

	// FetchContent enables the live content stage.
	FetchContent bool

	// ContentTimeout is the timeout of one page fetch.
	ContentTimeout time.Duration

	// MaxRedirects is the number of redirects a page fetch follows.
	MaxRedirects int

	// MaxBodySize is the maximum number of body bytes read per page.
	MaxBodySize int64

	// UserAgent is sent with page fetches.
	UserAgent string

	// ProxyAddress routes page fetches through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes page fetches through it.
	// Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// SafeDomainsFile replaces the built-in allowlist dataset when set.
	SafeDomainsFile string

	// ModelPath is the location of the classifier artifact.
	ModelPath string

	// TrainingSamples is the number of synthetic samples used by recovery training.
	TrainingSamples int

	// TrainingSeed seeds the synthetic dataset generator.
	TrainingSeed int64

	// DBDir is the directory of the SQLite event database.
	// When empty, events are only logged.
	DBDir string

	// SaveToDB enables the SQLite event sink.
	SaveToDB bool

	// BatchSize is the number of concurrent classifications in batch mode.
	BatchSize int

	// ListenAddress is the address the HTTP API binds to.
	ListenAddress string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Targets are the URLs to classify.
	Targets []string

	// Rules are the detection rules.
	Rules Rules
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ReputationTimeout: DefaultReputationTimeout,
		FetchContent:      true,
		ContentTimeout:    DefaultContentTimeout,
		MaxRedirects:      DefaultMaxRedirects,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		TorStartupTimeout: DefaultTorStartupTimeout,
		ModelPath:         filepath.Join(XDGDataDir(), ModelFileName),
		TrainingSamples:   DefaultTrainingSamples,
		TrainingSeed:      DefaultTrainingSeed,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		BatchSize:         DefaultBatchSize,
		ListenAddress:     DefaultListenAddress,
		Rules:             DefaultRules(),
	}
}

// XDGDataDir returns the XDG data directory for phishguard.
// On Linux: ~/.local/share/phishguard
// On macOS: ~/Library/Application Support/phishguard
// On Windows: %LOCALAPPDATA%\phishguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for phishguard.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the runtime options and rules.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.ReputationTimeout <= 0 || c.ReputationTimeout > MaxStageTimeout {
		return ErrInvalidReputationTimeout
	}

	if c.ContentTimeout <= 0 || c.ContentTimeout > MaxStageTimeout {
		return ErrInvalidContentTimeout
	}

	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.TrainingSamples < 2 {
		return ErrInvalidTrainingSamples
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingEgress
	}

	return c.Rules.Validate()
}

// ValidateTargets reports ErrNoTarget when there is nothing to classify.
// Commands that do not classify (serve, train) skip this check.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}
