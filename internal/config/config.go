// Package config provides configuration loading for the influence engine.
package config

import (
	"fmt"

	"github.com/tmoody1973/crate-cli-sub000/internal/graph"
	"github.com/tmoody1973/crate-cli-sub000/internal/influence"
	"github.com/tmoody1973/crate-cli-sub000/internal/logging"
	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

// Config is the full configuration tree. Each section belongs to the
// package that consumes it; this package only loads and validates.
type Config struct {
	Logging   logging.Config   `koanf:"logging"`
	Search    websearch.Config `koanf:"search"`
	Mentions  mentions.Config  `koanf:"mentions"`
	Graph     graph.Config     `koanf:"graph"`
	Influence influence.Config `koanf:"influence"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	cfg.Search.ApplyDefaults()
	cfg.Influence.ApplyDefaults()

	if cfg.Mentions.SnippetLen <= 0 {
		cfg.Mentions.SnippetLen = mentions.DefaultConfig().SnippetLen
	}
	if cfg.Mentions.MinSentenceLen <= 0 {
		cfg.Mentions.MinSentenceLen = mentions.DefaultConfig().MinSentenceLen
	}

	if cfg.Graph.Path == "" {
		cfg.Graph.Path = "~/.config/crate/influence.db"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Influence.StrongThreshold > 1 {
		return fmt.Errorf("influence: strong_threshold must be in [0,1], got %v", c.Influence.StrongThreshold)
	}
	if c.Influence.DirectWeight > 1 {
		return fmt.Errorf("influence: direct_weight must be in [0,1], got %v", c.Influence.DirectWeight)
	}
	if c.Influence.BridgeWeight > 1 {
		return fmt.Errorf("influence: bridge_weight must be in [0,1], got %v", c.Influence.BridgeWeight)
	}
	if c.Search.MaxExtract > 5 {
		return fmt.Errorf("search: max_extract must be at most 5, got %d", c.Search.MaxExtract)
	}
	return nil
}
