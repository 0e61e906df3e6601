package noise

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValidation(t *testing.T) {
	cases := []struct {
		level float64
		ok    bool
	}{
		{0, true},
		{0.1, true},
		{0.4, true},
		{0.41, false},
		{0.5, false},
		{0.59, false},
		{0.6, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
	}
	for _, tc := range cases {
		_, err := NewSettings(tc.level, DefaultBand)
		if tc.ok {
			assert.NoError(t, err, "level %v", tc.level)
		} else {
			assert.ErrorIs(t, err, ErrInvalidNoiseLevel, "level %v", tc.level)
		}
	}
}

func TestFactoryRejectsInvalidLevels(t *testing.T) {
	_, err := NewFactory(0.5, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidNoiseLevel)

	f, err := NewFactory(0.1, Options{Band: DefaultBand, Seed: 1})
	require.NoError(t, err)

	require.ErrorIs(t, f.Set(Settings{Level: 0.45}), ErrInvalidNoiseLevel)
	_, err = f.GetWith(Settings{Level: 2})
	require.ErrorIs(t, err, ErrInvalidNoiseLevel)

	// A zero band on the override still gets the factory band.
	_, err = f.GetWith(Settings{Level: 0.55, Band: 0})
	require.ErrorIs(t, err, ErrInvalidNoiseLevel)

	require.NoError(t, f.Set(Settings{Level: 0.9}))
	ch, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 0.9, ch.Probability())
}

func TestFactoryBandIsLiteral(t *testing.T) {
	f, err := NewFactory(0.5, Options{Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Band())

	_, err = NewFactory(0, Options{Band: 0.6})
	require.ErrorIs(t, err, ErrInvalidNoiseLevel)
}

func TestTransformExtremes(t *testing.T) {
	f, err := NewFactory(0, Options{Band: DefaultBand, Seed: 7})
	require.NoError(t, err)
	identity, err := f.Get()
	require.NoError(t, err)
	complement, err := f.GetWith(Settings{Level: 1})
	require.NoError(t, err)

	for i := 0; i < 256; i++ {
		b := byte(i)
		require.Equal(t, b, identity.Transform(b))
		require.Equal(t, ^b, complement.Transform(b))
	}
}

func TestTransformFlipRate(t *testing.T) {
	f, err := NewFactory(0.2, Options{Band: DefaultBand, Seed: 42})
	require.NoError(t, err)
	ch, err := f.Get()
	require.NoError(t, err)

	const rounds = 20000
	flipped := 0
	for i := 0; i < rounds; i++ {
		b := byte(i)
		flipped += bits.OnesCount8(b ^ ch.Transform(b))
	}
	rate := float64(flipped) / float64(rounds*8)
	assert.InDelta(t, 0.2, rate, 0.01)
}

func TestSeededFactoriesAreReproducible(t *testing.T) {
	run := func() []byte {
		f, err := NewFactory(0.3, Options{Band: DefaultBand, Seed: 99})
		require.NoError(t, err)
		out := make([]byte, 0, 64)
		for i := 0; i < 4; i++ {
			ch, err := f.Get()
			require.NoError(t, err)
			for b := 0; b < 16; b++ {
				out = append(out, ch.Transform(byte(b)))
			}
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestChannelsDoNotShareState(t *testing.T) {
	f, err := NewFactory(0.3, Options{Band: DefaultBand, Seed: 5})
	require.NoError(t, err)
	a, err := f.Get()
	require.NoError(t, err)
	b, err := f.Get()
	require.NoError(t, err)
	assert.NotSame(t, a.(*Channel).rnd, b.(*Channel).rnd)
}
