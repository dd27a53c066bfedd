// Package config loads the YAML manifest the snarkpack CLI reads to learn
// how to build or load an SRS and how many proofs a given run aggregates.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the on-disk shape of a snarkpack manifest:
//
//	seed: 42
//	num_proofs: 8
//	srs_path: srs.bin
type Config struct {
	Seed      int64  `yaml:"seed"`
	NumProofs uint32 `yaml:"num_proofs"`
	SRSPath   string `yaml:"srs_path"`
}

// Load reads and parses a YAML manifest from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.NumProofs == 0 {
		return fmt.Errorf("num_proofs must be set")
	}
	if c.NumProofs&(c.NumProofs-1) != 0 {
		return fmt.Errorf("num_proofs (%d) must be a power of two", c.NumProofs)
	}
	if c.SRSPath == "" {
		return fmt.Errorf("srs_path must be set")
	}
	return nil
}
