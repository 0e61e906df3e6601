// Package noise simulates a binary symmetric channel over bytes.
package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidNoiseLevel is returned for noise levels outside [0,1] or too close to 0.5.
var ErrInvalidNoiseLevel = errors.New("invalid noise level")

// DefaultBand is the default half-width of the excluded region around 0.5.
const DefaultBand = 0.1

const bandSlack = 1e-9

// Transformer corrupts a single byte.
type Transformer interface {
	Transform(b byte) byte
	// Probability is the per-bit flip probability.
	Probability() float64
}

// Producer hands out transformers bound to a noise setting.
type Producer interface {
	Set(settings Settings) error
	Get() (Transformer, error)
	GetWith(settings Settings) (Transformer, error)
}

// Settings is a noise level together with the band it was validated against.
type Settings struct {
	Level float64
	Band  float64
}

// NewSettings validates level against band and returns the settings.
func NewSettings(level, band float64) (Settings, error) {
	s := Settings{Level: level, Band: band}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks level ∈ [0,1] and |level-0.5| >= band.
func (s Settings) Validate() error {
	if math.IsNaN(s.Level) || s.Level < 0 || s.Level > 1 {
		return fmt.Errorf("%w: %v must be between 0 and 1", ErrInvalidNoiseLevel, s.Level)
	}
	// bandSlack keeps levels such as 0.4 valid despite 0.5-0.4 rounding below 0.1.
	if math.Abs(s.Level-0.5) < s.Band-bandSlack {
		return fmt.Errorf("%w: %v is within %v of 0.5", ErrInvalidNoiseLevel, s.Level, s.Band)
	}
	return nil
}

// Channel flips every bit of a byte independently with a fixed probability.
type Channel struct {
	p   float64
	rnd *rand.Rand
}

func newChannel(p float64, seed int64) *Channel {
	return &Channel{p: p, rnd: rand.New(rand.NewSource(seed))}
}

// Probability implements Transformer.
func (c *Channel) Probability() float64 {
	return c.p
}

// Transform implements Transformer. Bits are visited from the most significant one.
func (c *Channel) Transform(b byte) byte {
	switch c.p {
	case 0:
		return b
	case 1:
		return ^b
	}
	var out byte
	for bit := 7; bit >= 0; bit-- {
		mask := byte(1) << bit
		if c.rnd.Float64() < c.p {
			out |= (b ^ mask) & mask
		} else {
			out |= b & mask
		}
	}
	return out
}

// Options configures a Factory.
type Options struct {
	// Band is the validation band around 0.5, taken as given.
	Band float64
	// Seed makes channels reproducible. Zero means system entropy.
	Seed int64
}

// DefaultOptions returns options with DefaultBand and an entropy seed.
func DefaultOptions() Options {
	return Options{Band: DefaultBand}
}

// Factory validates noise settings and produces channels bound to them.
// Each channel gets its own random source seeded from the factory's seed stream.
type Factory struct {
	settings Settings
	band     float64
	seeds    *rand.Rand
}

// NewFactory returns a Factory holding level as its current setting.
func NewFactory(level float64, opts Options) (*Factory, error) {
	band := opts.Band
	if math.IsNaN(band) || band < 0 || band > 0.5 {
		return nil, fmt.Errorf("%w: band %v must be between 0 and 0.5", ErrInvalidNoiseLevel, band)
	}
	settings, err := NewSettings(level, band)
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		settings: settings,
		band:     band,
		seeds:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Band returns the validation band used by the factory.
func (f *Factory) Band() float64 {
	return f.band
}

// Set replaces the current setting.
func (f *Factory) Set(settings Settings) error {
	settings = f.withBand(settings)
	if err := settings.Validate(); err != nil {
		return err
	}
	f.settings = settings
	return nil
}

// Get builds a channel from the current setting.
func (f *Factory) Get() (Transformer, error) {
	return f.GetWith(f.settings)
}

// GetWith builds a channel from an explicit setting.
func (f *Factory) GetWith(settings Settings) (Transformer, error) {
	settings = f.withBand(settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return newChannel(settings.Level, f.seeds.Int63()), nil
}

// withBand never lets a caller weaken the factory band.
func (f *Factory) withBand(settings Settings) Settings {
	if settings.Band < f.band {
		settings.Band = f.band
	}
	return settings
}
