// Package config provides configuration structures and utilities for phishguard.
// It defines the runtime options of the classification pipeline (timeouts,
// reputation endpoint, classifier artifact location, egress settings), the
// detection rules (keyword lists, suspicious TLDs, content weights and
// thresholds), and the loaders that merge the YAML configuration file and
// environment variables over the built-in defaults.
package config
