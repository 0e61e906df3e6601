// Package codec reads and writes the CRLF line-oriented interchange formats.
//
// Test inputs are one per line as "<mode> <noiseLevel> <text>". Coder outputs are
// one text per line. Lines are separated by CRLF, so texts never contain CRLF.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/chantest/internal/model"
)

// LineSeparator separates records in every format.
const LineSeparator = "\r\n"

// ErrMalformedLine is returned for input lines that cannot be parsed.
var ErrMalformedLine = errors.New("malformed line")

// Serializer writes test inputs and coder outputs.
type Serializer interface {
	SerializeInputs(inputs []model.TestInput) string
	SerializeCoderOutput(outputs []string) string
}

// Parser reads test inputs and coder outputs.
type Parser interface {
	ParseInputs(data string) ([]model.TestInput, error)
	ParseCoderOutput(data string) []string
}

// TextCodec is the production Serializer and Parser.
type TextCodec struct{}

// SerializeInputs implements Serializer.
func (TextCodec) SerializeInputs(inputs []model.TestInput) string {
	var b strings.Builder
	for _, in := range inputs {
		b.WriteString(string(in.Mode))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(in.NoiseLevel, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(in.Text)
		b.WriteString(LineSeparator)
	}
	return b.String()
}

// SerializeCoderOutput implements Serializer.
func (TextCodec) SerializeCoderOutput(outputs []string) string {
	var b strings.Builder
	for _, out := range outputs {
		b.WriteString(out)
		b.WriteString(LineSeparator)
	}
	return b.String()
}

// ParseCoderOutput implements Parser. Empty lines are dropped.
func (TextCodec) ParseCoderOutput(data string) []string {
	return Split(data, LineSeparator)
}

// ParseInputs implements Parser. Leading blanks before the mode and the noise
// level are skipped; the text is everything after the single blank that follows
// the noise level.
func (TextCodec) ParseInputs(data string) ([]model.TestInput, error) {
	lines := Split(data, LineSeparator)
	inputs := make([]model.TestInput, 0, len(lines))
	for i, line := range lines {
		in, err := parseInputLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseInputLine(line string) (model.TestInput, error) {
	mode, rest := nextToken(line)
	switch model.Mode(mode) {
	case model.ModeEncode, model.ModeDecode:
	default:
		return model.TestInput{}, fmt.Errorf("%w: unknown mode %q", ErrMalformedLine, mode)
	}
	level, rest := nextToken(rest)
	if level == "" {
		return model.TestInput{}, fmt.Errorf("%w: missing noise level", ErrMalformedLine)
	}
	noiseLevel, err := strconv.ParseFloat(level, 64)
	if err != nil {
		return model.TestInput{}, fmt.Errorf("%w: bad noise level %q", ErrMalformedLine, level)
	}
	if rest != "" {
		rest = rest[1:]
	}
	return model.TestInput{Mode: model.Mode(mode), NoiseLevel: noiseLevel, Text: rest}, nil
}

// nextToken skips leading blanks and returns the token and the remainder, which
// starts at the blank that ended the token.
func nextToken(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

// Split splits s around sep and drops empty pieces.
func Split(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
