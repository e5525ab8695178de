package driver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes the transpilation run. All fields have working
// defaults; a missing config file is not an error.
type Config struct {
	// Workers bounds the number of units transpiled concurrently.
	Workers int `yaml:"workers"`
	// EscapeGate is the maximum tolerated fraction of bindings that
	// degrade to the dynamic fallback before a unit is rejected.
	EscapeGate float64 `yaml:"escape_gate"`
	// RustcPath locates the feedback compiler, "rustc" when empty.
	RustcPath string `yaml:"rustc_path"`
	// RetryCap bounds retries after compiler timeouts or crashes.
	RetryCap int `yaml:"retry_cap"`
	// TimeoutSeconds is the per-invocation compiler deadline.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Verify runs the feedback compiler over every emitted unit.
	Verify bool `yaml:"verify"`
	// EmitCargo writes a crate manifest next to each unit.
	EmitCargo bool `yaml:"emit_cargo"`
}

func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		EscapeGate:     0.2,
		RustcPath:      "rustc",
		RetryCap:       3,
		TimeoutSeconds: 30,
	}
}

// LoadConfig reads a YAML config, strict about unknown fields so a
// typo never silently falls back to a default. A missing file yields
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
