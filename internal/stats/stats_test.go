package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/chantest/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestSummarizeRuns(t *testing.T) {
	s := SummarizeRuns([]model.RunRecord{
		{Passed: true, SuccessRate: 1, Speed: 0.5},
		{Passed: false, SuccessRate: 0.5, Speed: 0.25},
	})
	if s.Runs != 2 || s.Passed != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.MeanSuccessRate != 0.75 || s.MeanSpeed != 0.375 {
		t.Fatalf("unexpected means: %+v", s)
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil, 3); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found.") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}

	buf.Reset()
	runs := []model.RunRecord{
		{ID: "0123456789abcdef", CreatedAt: time.Unix(0, 0), Passed: true, Total: 4, Success: 4, SuccessRate: 1, Speed: 0.5, LeastSuccessfulNoiseLevel: -1},
		{ID: "fedcba9876543210", CreatedAt: time.Unix(60, 0), FailReason: model.FailReasonEncodeSpeedLow, Total: 4, Success: 2, SuccessRate: 0.5, Speed: 0.1, LeastSuccessfulNoiseLevel: 0.9},
	}
	if err := RenderHistory(&buf, runs, 1); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"01234567", "fedcba98", "encode_speed_low", "FAIL", "4/4", "50.00%", "Runs: 2  Passed: 1", "Success trend: [@ ]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
