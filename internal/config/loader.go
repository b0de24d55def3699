package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".phishguard"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .phishguard configuration file.
// Every field is optional; zero values leave the default untouched.
type File struct {
	Reputation struct {
		Endpoint string        `yaml:"endpoint,omitempty"`
		APIKey   string        `yaml:"apiKey,omitempty"`
		Timeout  time.Duration `yaml:"timeout,omitempty"`
	} `yaml:"reputation,omitempty"`

	Content struct {
		Enabled      *bool         `yaml:"enabled,omitempty"`
		Timeout      time.Duration `yaml:"timeout,omitempty"`
		MaxRedirects *int          `yaml:"maxRedirects,omitempty"`
		MaxBodySize  int64         `yaml:"maxBodySize,omitempty"`
		UserAgent    string        `yaml:"userAgent,omitempty"`
		Proxy        string        `yaml:"proxy,omitempty"`
	} `yaml:"content,omitempty"`

	Classifier struct {
		ModelPath       string `yaml:"modelPath,omitempty"`
		TrainingSamples int    `yaml:"trainingSamples,omitempty"`
		TrainingSeed    int64  `yaml:"trainingSeed,omitempty"`
	} `yaml:"classifier,omitempty"`

	SafeDomainsFile string `yaml:"safeDomainsFile,omitempty"`
	DBDir           string `yaml:"dbDir,omitempty"`
	ListenAddress   string `yaml:"listenAddress,omitempty"`
	BatchSize       int    `yaml:"batchSize,omitempty"`

	// Rules overrides individual rule lists; an omitted list keeps its default.
	Rules *FileRules `yaml:"rules,omitempty"`
}

// FileRules mirrors Rules with optional fields.
type FileRules struct {
	HighRiskKeywords []string           `yaml:"highRiskKeywords,omitempty"`
	SoftKeywords     []string           `yaml:"softKeywords,omitempty"`
	DemoKeywords     []string           `yaml:"demoKeywords,omitempty"`
	SuspiciousTLDs   []string           `yaml:"suspiciousTLDs,omitempty"`
	UrgencyPhrases   []string           `yaml:"urgencyPhrases,omitempty"`
	Weights          map[string]int     `yaml:"weights,omitempty"`
	Thresholds       *ContentThresholds `yaml:"thresholds,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply merges the file over cfg.
func (cf *File) Apply(cfg *Config) error {
	if cf.Reputation.Endpoint != "" {
		cfg.ReputationEndpoint = cf.Reputation.Endpoint
	}
	if cf.Reputation.APIKey != "" {
		cfg.ReputationAPIKey = cf.Reputation.APIKey
	}
	if cf.Reputation.Timeout != 0 {
		cfg.ReputationTimeout = cf.Reputation.Timeout
	}

	if cf.Content.Enabled != nil {
		cfg.FetchContent = *cf.Content.Enabled
	}
	if cf.Content.Timeout != 0 {
		cfg.ContentTimeout = cf.Content.Timeout
	}
	if cf.Content.MaxRedirects != nil {
		cfg.MaxRedirects = *cf.Content.MaxRedirects
	}
	if cf.Content.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.Content.MaxBodySize
	}
	if cf.Content.UserAgent != "" {
		cfg.UserAgent = cf.Content.UserAgent
	}
	if cf.Content.Proxy != "" {
		cfg.ProxyAddress = cf.Content.Proxy
	}

	if cf.Classifier.ModelPath != "" {
		cfg.ModelPath = cf.Classifier.ModelPath
	}
	if cf.Classifier.TrainingSamples != 0 {
		cfg.TrainingSamples = cf.Classifier.TrainingSamples
	}
	if cf.Classifier.TrainingSeed != 0 {
		cfg.TrainingSeed = cf.Classifier.TrainingSeed
	}

	if cf.SafeDomainsFile != "" {
		cfg.SafeDomainsFile = cf.SafeDomainsFile
	}
	if cf.DBDir != "" {
		cfg.DBDir = cf.DBDir
	}
	if cf.ListenAddress != "" {
		cfg.ListenAddress = cf.ListenAddress
	}
	if cf.BatchSize != 0 {
		cfg.BatchSize = cf.BatchSize
	}

	if cf.Rules != nil {
		return cf.Rules.apply(&cfg.Rules)
	}
	return nil
}

func (fr *FileRules) apply(r *Rules) error {
	if len(fr.HighRiskKeywords) > 0 {
		r.HighRiskKeywords = fr.HighRiskKeywords
	}
	if len(fr.SoftKeywords) > 0 {
		r.SoftKeywords = fr.SoftKeywords
	}
	if len(fr.DemoKeywords) > 0 {
		r.DemoKeywords = fr.DemoKeywords
	}
	if len(fr.SuspiciousTLDs) > 0 {
		r.SuspiciousTLDs = fr.SuspiciousTLDs
	}
	if len(fr.UrgencyPhrases) > 0 {
		r.UrgencyPhrases = fr.UrgencyPhrases
	}
	if fr.Thresholds != nil {
		r.Thresholds = *fr.Thresholds
	}
	if fr.Weights != nil {
		for name, v := range fr.Weights {
			switch name {
			case "passwordField":
				r.Weights.PasswordField = v
			case "hiddenInput":
				r.Weights.HiddenInput = v
			case "externalForm":
				r.Weights.ExternalForm = v
			case "iframe":
				r.Weights.Iframe = v
			case "externalScript":
				r.Weights.ExternalScript = v
			case "urgencyPhrase":
				r.Weights.UrgencyPhrase = v
			default:
				return fmt.Errorf("unknown content weight %q", name)
			}
		}
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .phishguard in the current directory
// 3. Look for .phishguard in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
