// Package mstpdconfig is the daemon's small JSON-backed configuration,
// grounded on the teacher's pkg/config/config.go load/save shape
// (encoding/json over a file path guarded by a mutex), scaled down to
// this module's much smaller surface: a log level and an AF_PACKET
// interface allowlist, rather than the teacher's WAN/routing/FEC
// schema, none of which applies here.
package mstpdconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Config is the adapter daemon's configuration.
type Config struct {
	mu sync.RWMutex

	// LogLevel is the initial logx level ("debug", "info", "error").
	LogLevel string `json:"log_level"`

	// Interfaces, if non-empty, restricts tracking to interfaces whose
	// own name appears in this list; bridge masters and their ports are
	// filtered alike, so a port is tracked only if its own name is
	// listed. An empty list tracks every interface the netlink monitor
	// reports.
	Interfaces []string `json:"interfaces,omitempty"`

	// TickEnabled disables the once-per-second tick when false, for
	// test/offline use.
	TickEnabled bool `json:"tick_enabled"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{LogLevel: "info", TickEnabled: true}
}

// Load reads a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mstpdconfig: read %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("mstpdconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("mstpdconfig: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Tracked reports whether the named interface should be tracked,
// honoring the allowlist when one is configured.
func (c *Config) Tracked(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.Interfaces) == 0 {
		return true
	}
	for _, allowed := range c.Interfaces {
		if allowed == name {
			return true
		}
	}
	return false
}
