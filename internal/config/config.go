// Package config holds compiler configuration: supported DSL spec versions,
// the orchestration feature flag default, and the fallback policy limits
// used when no tenant context is available.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quiltflow/quilt/internal/policy"
)

// Config is the compiler configuration. Zero values are filled in by
// applyDefaults, so a partial YAML document is fine.
type Config struct {
	// SpecVersions is the set of accepted graph spec_version tags.
	SpecVersions []string `yaml:"spec_versions"`

	Orchestration Orchestration `yaml:"orchestration"`
}

// Orchestration configures the multi-agent orchestration feature.
type Orchestration struct {
	// Enabled is the default for tenants without an explicit flag.
	Enabled bool `yaml:"enabled"`

	// Fallback limits applied when no policy provider (or tenant context)
	// is configured.
	MaxDepth         int `yaml:"max_depth"`
	MaxFanout        int `yaml:"max_fanout"`
	MaxChildrenTotal int `yaml:"max_children_total"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes, filling unset fields with
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.SpecVersions) == 0 {
		c.SpecVersions = []string{"1.0", "2.0"}
	}
	defaults := policy.DefaultSnapshot()
	if c.Orchestration.MaxDepth == 0 {
		c.Orchestration.MaxDepth = defaults.MaxDepth
	}
	if c.Orchestration.MaxFanout == 0 {
		c.Orchestration.MaxFanout = defaults.MaxFanout
	}
	if c.Orchestration.MaxChildrenTotal == 0 {
		c.Orchestration.MaxChildrenTotal = defaults.MaxChildrenTotal
	}
}

// SupportsVersion reports whether the given spec_version tag is accepted.
func (c *Config) SupportsVersion(v string) bool {
	for _, s := range c.SpecVersions {
		if s == v {
			return true
		}
	}
	return false
}

// FallbackPolicy builds the policy snapshot used when no provider is
// configured.
func (c *Config) FallbackPolicy() policy.Snapshot {
	return policy.Snapshot{
		MaxDepth:         c.Orchestration.MaxDepth,
		MaxFanout:        c.Orchestration.MaxFanout,
		MaxChildrenTotal: c.Orchestration.MaxChildrenTotal,
	}
}
