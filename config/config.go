// Package config loads optional VM resource limits from a YAML file, using
// the same gopkg.in/yaml.v3 struct-tag style as the conformance test
// schema (conformance/schema.go).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits bounds VM resource usage. Zero fields fall back to the VM's
// built-in defaults (see vm.maxFrames).
type Limits struct {
	MaxCallFrames int `yaml:"max_call_frames,omitempty"`
	MaxStackSlots int `yaml:"max_stack_slots,omitempty"`
}

// Config is the top-level shape of a loxvm configuration file.
type Config struct {
	Limits Limits `yaml:"limits,omitempty"`
}

// Default returns a Config with no overrides applied.
func Default() Config {
	return Config{}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
