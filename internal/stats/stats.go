// Package stats contains run history calculations and rendering.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/chantest/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a list of stored runs.
type Summary struct {
	Runs            int
	Passed          int
	MeanSuccessRate float64
	MeanSpeed       float64
}

// SummarizeRuns computes pass count and mean statistics over runs.
func SummarizeRuns(runs []model.RunRecord) Summary {
	s := Summary{Runs: len(runs)}
	if len(runs) == 0 {
		return s
	}
	for _, r := range runs {
		if r.Passed {
			s.Passed++
		}
		s.MeanSuccessRate += r.SuccessRate
		s.MeanSpeed += r.Speed
	}
	s.MeanSuccessRate /= float64(len(runs))
	s.MeanSpeed /= float64(len(runs))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderHistory prints a table of runs followed by a summary and a success-rate trend.
func RenderHistory(w io.Writer, runs []model.RunRecord, window int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}

	headers := []string{"Run", "When", "Result", "Reason", "Tests", "Success", "Speed", "Worst noise"}
	rows := make([][]string, 0, len(runs))
	rates := make([]float64, 0, len(runs))
	for _, r := range runs {
		result := "pass"
		reason := "-"
		if !r.Passed {
			result = "FAIL"
			reason = r.FailReason.String()
		}
		worst := "-"
		if r.LeastSuccessfulNoiseLevel >= 0 {
			worst = fmt.Sprintf("%.3g", r.LeastSuccessfulNoiseLevel)
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			result,
			reason,
			fmt.Sprintf("%d/%d", r.Success, r.Total),
			fmt.Sprintf("%.2f%%", r.SuccessRate*100),
			fmt.Sprintf("%.3f", r.Speed),
			worst,
		})
		rates = append(rates, r.SuccessRate*100)
	}
	rightAlign := map[int]bool{4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	s := SummarizeRuns(runs)
	if _, err := fmt.Fprintf(w, "\nRuns: %d  Passed: %d  Avg success: %.2f%%  Avg speed: %.3f\n",
		s.Runs, s.Passed, s.MeanSuccessRate*100, s.MeanSpeed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Success trend: [%s]\n", Sparkline(MovingAverage(rates, window))); err != nil {
		return err
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
