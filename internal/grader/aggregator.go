// Package grader records a candidate's encode and decode responses and grades them.
//
// A run follows a fixed protocol per test: the encode response is registered with
// SetAlgoEncodeResponse strictly before the matching decode response is registered
// with SetAlgoDecodeResponse. Calling them out of order is undefined.
package grader

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/verte-zerg/chantest/internal/generator"
	"github.com/verte-zerg/chantest/internal/model"
	"github.com/verte-zerg/chantest/internal/noise"
)

var (
	// ErrInconsistentState is returned when the registered responses do not match
	// what the caller passed in. It signals a driver bug.
	ErrInconsistentState = errors.New("inconsistent grader state")

	// ErrLengthMismatch is returned when paired slices differ in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrUnencodable is returned when a deterministic channel maps a byte onto CR or LF.
	ErrUnencodable = errors.New("byte cannot be sent without a line separator")
)

// Tester is the grading surface used by the CLI.
type Tester interface {
	GenerateInputs(n int, noiseLevel float64, maxLen int) ([]model.TestInput, error)
	GenerateNoisedInputs(inputs []model.TestInput, encoded []string) ([]model.TestInput, error)
	SetAlgoEncodeResponse(source, encoded string, noiseLevel float64) *model.NoisedRecord
	SetAlgoDecodeResponse(record *model.NoisedRecord, decoded string)
	SuccessRate() float64
	Speed() float64
	Failed() []FailedTest
	GenerateReport(decodedOrdering []string) (model.Report, error)
}

// FailedTest is a copy of a failed record with the decoded text it was graded on.
type FailedTest struct {
	Record  model.NoisedRecord
	Decoded string
}

// Aggregator is the production Tester. Records are keyed by source text, so a
// repeated plaintext overwrites the earlier record.
type Aggregator struct {
	cfg    model.GraderConfig
	gen    *generator.Generator
	noise  noise.Producer
	logger *slog.Logger

	records map[string]*model.NoisedRecord
	decoded map[string]string
	failed  map[string]struct{}

	speed       float64
	successRate float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithProducer replaces the noise producer, mainly for tests.
func WithProducer(p noise.Producer) Option {
	return func(a *Aggregator) {
		a.noise = p
	}
}

// New creates an Aggregator. cfg is used as given; start from
// model.DefaultGraderConfig for the standard thresholds.
func New(cfg model.GraderConfig, opts ...Option) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Aggregator{
		cfg:     cfg,
		gen:     generator.New(cfg.Seed),
		logger:  slog.New(slog.DiscardHandler),
		records: map[string]*model.NoisedRecord{},
		decoded: map[string]string{},
		failed:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.noise == nil {
		factory, err := noise.NewFactory(0, noise.Options{Band: cfg.NoiseBand, Seed: cfg.Seed})
		if err != nil {
			return nil, err
		}
		a.noise = factory
	}
	return a, nil
}

// GenerateInputs returns n encode-mode inputs of alphanumeric text.
func (a *Aggregator) GenerateInputs(n int, noiseLevel float64, maxLen int) ([]model.TestInput, error) {
	if _, err := noise.NewSettings(noiseLevel, a.cfg.NoiseBand); err != nil {
		return nil, err
	}
	return a.gen.Inputs(n, noiseLevel, maxLen)
}

// GenerateInputsForLevels generates n inputs for each noise level, in order.
func (a *Aggregator) GenerateInputsForLevels(n int, levels []float64, maxLen int) ([]model.TestInput, error) {
	var result []model.TestInput
	for _, level := range levels {
		inputs, err := a.GenerateInputs(n, level, maxLen)
		if err != nil {
			return nil, err
		}
		result = append(result, inputs...)
	}
	return result, nil
}

// SetAlgoEncodeResponse stores the record for source and updates the mean speed.
func (a *Aggregator) SetAlgoEncodeResponse(source, encoded string, noiseLevel float64) *model.NoisedRecord {
	_, overwrite := a.records[source]
	rec := &model.NoisedRecord{SourceText: source, NoisedText: encoded, NoiseLevel: noiseLevel}
	a.records[source] = rec

	if overwrite {
		a.speed = a.recomputeSpeed()
	} else {
		n := float64(len(a.records))
		a.speed = a.speed*(n-1)/n + speedRatio(source, encoded)/n
	}
	a.logger.Debug("encode response registered",
		"source_len", len(source), "encoded_len", len(encoded), "noise_level", noiseLevel,
		"overwrite", overwrite, "speed", a.speed)
	return rec
}

// SetAlgoDecodeResponse records the decode attempt for record.
func (a *Aggregator) SetAlgoDecodeResponse(record *model.NoisedRecord, decoded string) {
	key := record.SourceText
	a.decoded[key] = decoded
	if decoded == record.SourceText {
		delete(a.failed, key)
	} else {
		a.failed[key] = struct{}{}
	}
	a.successRate = float64(a.CountSuccess()) / float64(a.CountFinished())
	a.logger.Debug("decode response registered",
		"passed", decoded == record.SourceText, "success_rate", a.successRate)
}

// SuccessRate is the fraction of finished tests decoded exactly.
func (a *Aggregator) SuccessRate() float64 {
	return a.successRate
}

// Speed is the mean ratio of plaintext length to encoded length.
func (a *Aggregator) Speed() float64 {
	return a.speed
}

// CountTotal returns the number of registered encode responses.
func (a *Aggregator) CountTotal() int {
	return len(a.records)
}

// CountFinished returns the number of registered decode responses.
func (a *Aggregator) CountFinished() int {
	return len(a.decoded)
}

// CountSuccess returns the number of exactly decoded tests.
func (a *Aggregator) CountSuccess() int {
	return a.CountFinished() - a.CountFailed()
}

// CountFailed returns the number of failed tests.
func (a *Aggregator) CountFailed() int {
	return len(a.failed)
}

// LeastSuccessfulNoiseLevel returns the noise level with the most failures, the
// lowest such level on ties, or -1 without failures.
func (a *Aggregator) LeastSuccessfulNoiseLevel() float64 {
	counts := map[float64]int{}
	for key := range a.failed {
		counts[a.records[key].NoiseLevel]++
	}
	levels := make([]float64, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	sort.Float64s(levels)

	best, bestCount := -1.0, 0
	for _, level := range levels {
		if counts[level] > bestCount {
			best, bestCount = level, counts[level]
		}
	}
	return best
}

// Failed returns copies of the failed tests sorted by source text.
func (a *Aggregator) Failed() []FailedTest {
	keys := a.failedKeys()
	out := make([]FailedTest, 0, len(keys))
	for _, key := range keys {
		out = append(out, FailedTest{Record: *a.records[key], Decoded: a.decoded[key]})
	}
	return out
}

// GenerateReport snapshots the statistics and verdict. decodedOrdering lists the
// decoded texts in submission order and is used to recover each failed test's index.
func (a *Aggregator) GenerateReport(decodedOrdering []string) (model.Report, error) {
	passed, reason := a.Verdict()
	report := model.Report{
		FailReason:                reason,
		Passed:                    passed,
		TotalCount:                a.CountSuccess() + a.CountFailed(),
		SuccessCount:              a.CountSuccess(),
		FailedCount:               a.CountFailed(),
		FailedIndices:             []int{},
		MeanDecodeSuccessRate:     a.successRate,
		MeanEncodeSpeed:           a.speed,
		LeastSuccessfulNoiseLevel: a.LeastSuccessfulNoiseLevel(),
	}

	for _, key := range a.failedKeys() {
		idx := indexOf(decodedOrdering, a.decoded[key])
		if idx < 0 {
			return model.Report{}, fmt.Errorf("%w: decoded response for %q not found in ordering",
				ErrInconsistentState, key)
		}
		report.FailedIndices = append(report.FailedIndices, idx)
	}
	sort.Ints(report.FailedIndices)
	return report, nil
}

func (a *Aggregator) failedKeys() []string {
	keys := make([]string, 0, len(a.failed))
	for key := range a.failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (a *Aggregator) recomputeSpeed() float64 {
	if len(a.records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range a.records {
		sum += speedRatio(rec.SourceText, rec.NoisedText)
	}
	return sum / float64(len(a.records))
}

func speedRatio(source, encoded string) float64 {
	if len(encoded) == 0 {
		return 0
	}
	return float64(len(source)) / float64(len(encoded))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
