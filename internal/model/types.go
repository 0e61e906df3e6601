// Package model defines shared data structures.
package model

import "time"

// Mode tells whether a test input is plaintext for the encoder or noised text for the decoder.
type Mode string

const (
	ModeEncode Mode = "encode"
	ModeDecode Mode = "decode"
)

// TestInput is a single line of the test-input interchange format.
type TestInput struct {
	Mode       Mode
	NoiseLevel float64
	Text       string
}

// NoisedRecord is the ground truth for one test.
type NoisedRecord struct {
	SourceText string
	NoisedText string
	NoiseLevel float64
}

// Report is the final verdict of a run with its supporting statistics.
type Report struct {
	FailReason                FailReason `yaml:"fail_reason"`
	Passed                    bool       `yaml:"passed"`
	TotalCount                int        `yaml:"total"`
	SuccessCount              int        `yaml:"success"`
	FailedCount               int        `yaml:"failed"`
	FailedIndices             []int      `yaml:"failed_indices"`
	MeanDecodeSuccessRate     float64    `yaml:"mean_decode_success_rate"`
	MeanEncodeSpeed           float64    `yaml:"mean_encode_speed"`
	LeastSuccessfulNoiseLevel float64    `yaml:"least_successful_noise_level"`
}

// RunConfig defines input generation settings.
type RunConfig struct {
	Num         int
	MaxLen      int
	NoiseLevels []float64
}

// HistoryConfig defines filters for stored run listings.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}

// RunRecord is a graded run as persisted in the history store.
type RunRecord struct {
	ID                        string
	CreatedAt                 time.Time
	Passed                    bool
	FailReason                FailReason
	Total                     int
	Success                   int
	Failed                    int
	SuccessRate               float64
	Speed                     float64
	LeastSuccessfulNoiseLevel float64
	ReportPath                string
}

// RunFailure is a failed test of a persisted run.
type RunFailure struct {
	TestIndex  int
	NoiseLevel float64
	Source     string
	Decoded    string
}
