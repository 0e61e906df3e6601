// Package main provides the CLI entrypoint for chantest.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/chantest/internal/codec"
	"github.com/verte-zerg/chantest/internal/config"
	"github.com/verte-zerg/chantest/internal/fileio"
	"github.com/verte-zerg/chantest/internal/grader"
	"github.com/verte-zerg/chantest/internal/model"
	"github.com/verte-zerg/chantest/internal/report"
	"github.com/verte-zerg/chantest/internal/stats"
	"github.com/verte-zerg/chantest/internal/store"
)

const (
	defaultNum           = 10
	defaultMaxLen        = 500
	defaultHistoryWindow = 5
)

var defaultNoiseLevels = []float64{0, 0.1, 0.9}

var (
	configPath string
	verbose    bool
	seed       int64

	generateOut         string
	generateNum         int
	generateMaxLen      int
	generateNoiseLevels []float64

	noiseSource  string
	noiseEncoded string
	noiseOut     string

	reportSource  string
	reportEncoded string
	reportNoised  string
	reportDecoded string
	reportOut     string
	reportSummary string
	reportNoStore bool
	reportDB      string

	historyLast   int
	historySince  string
	historyWindow int
	historyDB     string
)

// env bundles what every subcommand needs.
type env struct {
	logger *slog.Logger
	files  fileio.Writer
	codec  codec.TextCodec
	file   config.FileConfig
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "chantest",
		Short:        "Grade encode/decode algorithms against a noisy channel",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "d", false, "debug logging")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 = system entropy)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newNoiseCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newEnv(cmd *cobra.Command) (*env, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &env{
		logger: newLogger(cmd, verbose),
		files:  fileio.Files{},
		file:   fileCfg,
	}, nil
}

func newLogger(cmd *cobra.Command, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// graderConfig merges config file values with the --seed flag.
func (e *env) graderConfig(cmd *cobra.Command) (model.GraderConfig, error) {
	cfg := model.DefaultGraderConfig()
	g := e.file.Grader
	if g.MinSpeed != nil {
		cfg.MinSpeed = *g.MinSpeed
	}
	if g.MinSuccessRate != nil {
		cfg.MinSuccessRate = *g.MinSuccessRate
	}
	if g.MaxByteErrors != nil {
		cfg.MaxByteErrors = *g.MaxByteErrors
	}
	if g.NoiseBand != nil {
		cfg.NoiseBand = *g.NoiseBand
	}
	cfg.Seed = seed
	applyInt64Config(cmd, "seed", &cfg.Seed, g.Seed)
	if err := cfg.Validate(); err != nil {
		return model.GraderConfig{}, err
	}
	return cfg, nil
}

func (e *env) newAggregator(cmd *cobra.Command) (*grader.Aggregator, error) {
	cfg, err := e.graderConfig(cmd)
	if err != nil {
		return nil, err
	}
	return grader.New(cfg, grader.WithLogger(e.logger))
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate plaintext test inputs",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	cmd.Flags().StringVar(&generateOut, "out", "", "output file for test inputs")
	cmd.Flags().IntVar(&generateNum, "num", defaultNum, "tests per noise level")
	cmd.Flags().IntVar(&generateMaxLen, "max-len", defaultMaxLen, "maximum plaintext length")
	cmd.Flags().Float64SliceVar(&generateNoiseLevels, "noise-levels", defaultNoiseLevels, "noise levels to test")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "num", &generateNum, e.file.Run.Num)
	applyIntConfig(cmd, "max-len", &generateMaxLen, e.file.Run.MaxLen)
	applyFloatSliceConfig(cmd, "noise-levels", &generateNoiseLevels, e.file.Run.NoiseLevels)

	runCfg := model.RunConfig{
		Num:         generateNum,
		MaxLen:      generateMaxLen,
		NoiseLevels: generateNoiseLevels,
	}
	if err := validateRunConfig(runCfg); err != nil {
		return err
	}

	agg, err := e.newAggregator(cmd)
	if err != nil {
		return err
	}
	inputs, err := agg.GenerateInputsForLevels(runCfg.Num, runCfg.NoiseLevels, runCfg.MaxLen)
	if err != nil {
		return err
	}
	if err := e.files.ToFile(generateOut, e.codec.SerializeInputs(inputs)); err != nil {
		return err
	}
	e.logger.Info("test inputs written", "path", generateOut, "count", len(inputs))
	return nil
}

func newNoiseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noise",
		Short: "Pass encoded outputs through the noisy channel",
		Args:  cobra.NoArgs,
		RunE:  runNoiseCmd,
	}
	cmd.Flags().StringVar(&noiseSource, "source", "", "test inputs written by generate")
	cmd.Flags().StringVar(&noiseEncoded, "encoded", "", "encoder output, one text per line")
	cmd.Flags().StringVar(&noiseOut, "out", "", "output file for noised decode inputs")
	for _, name := range []string{"source", "encoded", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runNoiseCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	sources, err := e.readInputs(noiseSource, model.ModeEncode)
	if err != nil {
		return err
	}
	encoded, err := e.readCoderOutput(noiseEncoded)
	if err != nil {
		return err
	}
	agg, err := e.newAggregator(cmd)
	if err != nil {
		return err
	}
	noised, err := agg.GenerateNoisedInputs(sources, encoded)
	if err != nil {
		return err
	}
	if err := e.files.ToFile(noiseOut, e.codec.SerializeInputs(noised)); err != nil {
		return err
	}
	e.logger.Info("noised inputs written", "path", noiseOut, "count", len(noised))
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Grade decoder output and write the report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportSource, "source", "", "test inputs written by generate")
	cmd.Flags().StringVar(&reportEncoded, "encoded", "", "encoder output, one text per line")
	cmd.Flags().StringVar(&reportNoised, "noised", "", "noised inputs written by noise")
	cmd.Flags().StringVar(&reportDecoded, "decoded", "", "decoder output, one text per line")
	cmd.Flags().StringVar(&reportOut, "out", "", "output file for the text report")
	cmd.Flags().StringVar(&reportSummary, "summary", "", "optional YAML summary file")
	cmd.Flags().BoolVar(&reportNoStore, "no-store", false, "do not record the run in history")
	cmd.Flags().StringVar(&reportDB, "db", config.DefaultDBPath(), "history database path")
	for _, name := range []string{"source", "encoded", "noised", "decoded", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	sources, err := e.readInputs(reportSource, model.ModeEncode)
	if err != nil {
		return err
	}
	encoded, err := e.readCoderOutput(reportEncoded)
	if err != nil {
		return err
	}
	noised, err := e.readInputs(reportNoised, model.ModeDecode)
	if err != nil {
		return err
	}
	decoded, err := e.readCoderOutput(reportDecoded)
	if err != nil {
		return err
	}
	if err := sameLength(len(sources), map[string]int{
		reportEncoded: len(encoded),
		reportNoised:  len(noised),
		reportDecoded: len(decoded),
	}); err != nil {
		return err
	}

	agg, err := e.newAggregator(cmd)
	if err != nil {
		return err
	}
	records := make([]*model.NoisedRecord, len(sources))
	for i, src := range sources {
		records[i] = agg.SetAlgoEncodeResponse(src.Text, encoded[i], src.NoiseLevel)
	}
	for i, rec := range records {
		agg.SetAlgoDecodeResponse(rec, decoded[i])
	}
	if agg.CountTotal() != len(sources) {
		e.logger.Warn("duplicate plaintexts overwrote earlier tests",
			"tests", len(sources), "records", agg.CountTotal())
	}

	rep, err := agg.GenerateReport(decoded)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, rep, sources, noised, decoded, time.Now()); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := e.files.ToFile(reportOut, buf.String()); err != nil {
		return err
	}
	e.logger.Info("report written", "path", reportOut)

	if reportSummary != "" {
		var sum bytes.Buffer
		if err := report.WriteSummary(&sum, rep); err != nil {
			return err
		}
		if err := e.files.ToFile(reportSummary, sum.String()); err != nil {
			return err
		}
	}

	if !reportNoStore {
		if err := e.storeRun(cmd.Context(), rep, sources, decoded); err != nil {
			return err
		}
	}

	return printVerdict(cmd.OutOrStdout(), rep, colorEnabled(cmd.OutOrStdout()))
}

func (e *env) storeRun(ctx context.Context, rep model.Report, sources []model.TestInput, decoded []string) error {
	st, err := store.Open(reportDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			e.logger.Error("failed to close db", "error", cerr)
		}
	}()

	reportPath, err := filepath.Abs(reportOut)
	if err != nil {
		reportPath = reportOut
	}
	run := model.RunRecord{
		CreatedAt:                 time.Now(),
		Passed:                    rep.Passed,
		FailReason:                rep.FailReason,
		Total:                     rep.TotalCount,
		Success:                   rep.SuccessCount,
		Failed:                    rep.FailedCount,
		SuccessRate:               rep.MeanDecodeSuccessRate,
		Speed:                     rep.MeanEncodeSpeed,
		LeastSuccessfulNoiseLevel: rep.LeastSuccessfulNoiseLevel,
		ReportPath:                reportPath,
	}
	// Failed tests sharing a decoded text resolve to the same index.
	failures := make([]model.RunFailure, 0, len(rep.FailedIndices))
	seen := make(map[int]struct{}, len(rep.FailedIndices))
	for _, idx := range rep.FailedIndices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		failures = append(failures, model.RunFailure{
			TestIndex:  idx,
			NoiseLevel: sources[idx].NoiseLevel,
			Source:     sources[idx].Text,
			Decoded:    decoded[idx],
		})
	}
	id, err := st.InsertRun(ctxOrBackground(ctx), run, failures)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	e.logger.Debug("run stored", "id", id, "db", reportDB)
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show graded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend")
	cmd.Flags().StringVar(&historyDB, "db", config.DefaultDBPath(), "history database path")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(historyDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(ctxOrBackground(cmd.Context()), model.HistoryConfig{Since: sinceTime, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, headerLine("Graded runs", colorEnabled(out))); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderHistory(out, runs, historyWindow)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func (e *env) readInputs(path string, want model.Mode) ([]model.TestInput, error) {
	data, err := e.files.FromFile(path)
	if err != nil {
		return nil, err
	}
	inputs, err := e.codec.ParseInputs(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, in := range inputs {
		if in.Mode != want {
			return nil, fmt.Errorf("%s line %d: expected %s input, got %s", path, i+1, want, in.Mode)
		}
	}
	return inputs, nil
}

func (e *env) readCoderOutput(path string) ([]string, error) {
	data, err := e.files.FromFile(path)
	if err != nil {
		return nil, err
	}
	return e.codec.ParseCoderOutput(data), nil
}

func sameLength(want int, got map[string]int) error {
	for path, n := range got {
		if n != want {
			return fmt.Errorf("%w: %s has %d entries, expected %d", grader.ErrLengthMismatch, path, n, want)
		}
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatSliceConfig(cmd *cobra.Command, name string, target, value *[]float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]float64(nil), (*value)...)
}

func defaultConfigTemplate() string {
	d := model.DefaultGraderConfig()
	return fmt.Sprintf(`# chantest configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# num = %d                  # Tests per noise level
# max-len = %d             # Maximum plaintext length
# noise-levels = [0.0, 0.1, 0.9]

[grader]
# min-speed = %.2f          # Lowest mean plaintext/encoded length ratio that passes
# min-success-rate = %.2f   # Lowest fraction of exactly decoded tests that passes
# max-byte-errors = %d       # Wrong bytes a single failed test may have
# noise-band = %.2f         # Noise levels closer than this to 0.5 are rejected
# seed = 0                  # 0 = system entropy
`,
		defaultNum,
		defaultMaxLen,
		d.MinSpeed,
		d.MinSuccessRate,
		d.MaxByteErrors,
		d.NoiseBand,
	)
}

func validateRunConfig(cfg model.RunConfig) error {
	if cfg.Num <= 0 {
		return fmt.Errorf("--num must be > 0")
	}
	if cfg.MaxLen <= 0 {
		return fmt.Errorf("--max-len must be > 0")
	}
	if len(cfg.NoiseLevels) == 0 {
		return fmt.Errorf("--noise-levels must not be empty")
	}
	return nil
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
