package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chantest/internal/model"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, Split("1,2,3,4,5", ","))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, Split("1delim2delim3delim4delim5", "delim"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, Split("1delimdelim2delim3delim4delimdelimdelim5", "delim"))
	assert.Empty(t, Split("", ","))
}

func TestSerializeInputs(t *testing.T) {
	c := TextCodec{}
	out := c.SerializeInputs([]model.TestInput{
		{Mode: model.ModeEncode, NoiseLevel: 0.1, Text: "abc"},
		{Mode: model.ModeDecode, NoiseLevel: 0, Text: " x y"},
	})
	assert.Equal(t, "encode 0.1 abc\r\ndecode 0  x y\r\n", out)
}

func TestParseInputsKeepsTextBlanks(t *testing.T) {
	c := TextCodec{}
	inputs := []model.TestInput{
		{Mode: model.ModeEncode, NoiseLevel: 0.9, Text: "Abc123"},
		{Mode: model.ModeDecode, NoiseLevel: 0.05, Text: " lead\tand trail "},
		{Mode: model.ModeDecode, NoiseLevel: 1, Text: "\x00\xff\x7f"},
	}
	got, err := c.ParseInputs(c.SerializeInputs(inputs))
	require.NoError(t, err)
	assert.Equal(t, inputs, got)
}

func TestParseInputsToleratesExtraLeadingBlanks(t *testing.T) {
	got, err := TextCodec{}.ParseInputs("  encode   0.3 hello world\r\n")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.TestInput{Mode: model.ModeEncode, NoiseLevel: 0.3, Text: "hello world"}, got[0])
}

func TestParseInputsErrors(t *testing.T) {
	c := TextCodec{}
	_, err := c.ParseInputs("encode 0.1 ok\r\nbogus 0.1 text\r\n")
	require.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 2")

	_, err = c.ParseInputs("encode abc text\r\n")
	require.ErrorIs(t, err, ErrMalformedLine)

	_, err = c.ParseInputs("encode\r\n")
	require.ErrorIs(t, err, ErrMalformedLine)
}

func TestCoderOutputRoundTrip(t *testing.T) {
	c := TextCodec{}
	outputs := []string{"first", "second block", "\x01\x02"}
	assert.Equal(t, outputs, c.ParseCoderOutput(c.SerializeCoderOutput(outputs)))
}
