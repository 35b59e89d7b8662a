// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration. Precedence, lowest to highest: built-in defaults,
// an optional TOML file named by HIOLOAD_SCHED_CONFIG, then individual
// environment overrides.

package config

import (
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Environment variables recognized by Load.
const (
	EnvConfigFile = "HIOLOAD_SCHED_CONFIG"
	EnvMaxThreads = "HIOLOAD_SCHED_MAX_THREADS"
)

// Config carries the runtime's tunables.
type Config struct {
	// MaxThreads bounds the worker pool used for offloaded blocking
	// calls. Non-positive values fall back to the CPU count.
	MaxThreads int `toml:"max_threads"`

	// PollBatch is the maximum number of readiness events drawn from the
	// OS per poller wait.
	PollBatch int `toml:"poll_batch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxThreads: runtime.NumCPU(),
		PollBatch:  128,
	}
}

// Load resolves the effective configuration from defaults, the optional
// TOML file, and environment overrides.
func Load() *Config {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			log.Printf("config: cannot read %s: %v", path, err)
		}
	}

	if v := os.Getenv(EnvMaxThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: invalid %s=%q: %v", EnvMaxThreads, v, err)
		} else {
			cfg.MaxThreads = n
		}
	}

	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.MaxThreads <= 0 {
		c.MaxThreads = runtime.NumCPU()
	}
	if c.PollBatch <= 0 {
		c.PollBatch = 128
	}
}
