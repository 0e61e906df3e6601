package grader

import (
	"fmt"

	"github.com/verte-zerg/chantest/internal/model"
	"github.com/verte-zerg/chantest/internal/noise"
)

// GenerateNoisedInputs passes every encoded text through a channel at its input's
// noise level. The result never contains CR or LF: such bytes are redrawn from the
// same source byte until they are neither.
func (a *Aggregator) GenerateNoisedInputs(inputs []model.TestInput, encoded []string) ([]model.TestInput, error) {
	if len(inputs) != len(encoded) {
		return nil, fmt.Errorf("%w: %d inputs but %d encoded texts", ErrLengthMismatch, len(inputs), len(encoded))
	}
	result := make([]model.TestInput, 0, len(inputs))
	for i, in := range inputs {
		ch, err := a.noise.GetWith(noise.Settings{Level: in.NoiseLevel})
		if err != nil {
			return nil, fmt.Errorf("test #%d: %w", i+1, err)
		}
		text, err := transmit(ch, encoded[i])
		if err != nil {
			return nil, fmt.Errorf("test #%d: %w", i+1, err)
		}
		result = append(result, model.TestInput{
			Mode:       model.ModeDecode,
			NoiseLevel: in.NoiseLevel,
			Text:       text,
		})
	}
	a.logger.Debug("noised inputs generated", "count", len(result))
	return result, nil
}

func transmit(ch noise.Transformer, text string) (string, error) {
	out := make([]byte, len(text))
	deterministic := ch.Probability() == 0 || ch.Probability() == 1
	for i := 0; i < len(text); i++ {
		b := ch.Transform(text[i])
		for isLineSeparator(b) {
			if deterministic {
				return "", fmt.Errorf("%w: byte 0x%02x at offset %d", ErrUnencodable, text[i], i)
			}
			b = ch.Transform(text[i])
		}
		out[i] = b
	}
	return string(out), nil
}

func isLineSeparator(b byte) bool {
	return b == '\r' || b == '\n'
}
