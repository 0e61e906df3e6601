// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Run    RunConfig    `toml:"run"`
	Grader GraderConfig `toml:"grader"`
}

// RunConfig maps input generation settings.
type RunConfig struct {
	Num         *int       `toml:"num"`
	MaxLen      *int       `toml:"max-len"`
	NoiseLevels *[]float64 `toml:"noise-levels"`
}

// GraderConfig maps verdict thresholds and randomness settings.
type GraderConfig struct {
	MinSpeed       *float64 `toml:"min-speed"`
	MinSuccessRate *float64 `toml:"min-success-rate"`
	MaxByteErrors  *int     `toml:"max-byte-errors"`
	NoiseBand      *float64 `toml:"noise-band"`
	Seed           *int64   `toml:"seed"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
