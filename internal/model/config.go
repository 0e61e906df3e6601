package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when grader configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// GraderConfig holds the verdict thresholds and the noise validation band.
type GraderConfig struct {
	// MinSpeed is the lowest mean plaintext/encoded length ratio that passes.
	// Default: 0.2
	MinSpeed float64

	// MinSuccessRate is the lowest fraction of exactly decoded tests that passes.
	// Default: 0.8
	MinSuccessRate float64

	// MaxByteErrors is the number of wrong bytes a single failed test may have
	// before the whole run fails.
	// Default: 2
	MaxByteErrors int

	// NoiseBand excludes noise levels closer than this to 0.5.
	// Default: 0.1
	NoiseBand float64

	// Seed seeds input generation and noise channels.
	// Use 0 for system entropy, or a specific value for reproducibility.
	// Default: 0
	Seed int64
}

// DefaultGraderConfig returns the default configuration.
func DefaultGraderConfig() GraderConfig {
	return GraderConfig{
		MinSpeed:       0.2,
		MinSuccessRate: 0.8,
		MaxByteErrors:  2,
		NoiseBand:      0.1,
	}
}

// Validate checks that the configuration is valid.
func (c *GraderConfig) Validate() error {
	if c.MinSpeed < 0 {
		return fmt.Errorf("%w: MinSpeed must be >= 0, got %f", ErrInvalidConfig, c.MinSpeed)
	}
	if c.MinSuccessRate < 0 || c.MinSuccessRate > 1 {
		return fmt.Errorf("%w: MinSuccessRate must be between 0 and 1, got %f",
			ErrInvalidConfig, c.MinSuccessRate)
	}
	if c.MaxByteErrors < 0 {
		return fmt.Errorf("%w: MaxByteErrors must be >= 0, got %d", ErrInvalidConfig, c.MaxByteErrors)
	}
	if c.NoiseBand < 0 || c.NoiseBand > 0.5 {
		return fmt.Errorf("%w: NoiseBand must be between 0 and 0.5, got %f",
			ErrInvalidConfig, c.NoiseBand)
	}
	return nil
}
