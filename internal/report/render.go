package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/chantest/internal/model"
)

const (
	// GlueThreshold is the number of matching bytes that keeps a highlight open.
	GlueThreshold = 3
	// Delimiter surrounds every highlighted range.
	Delimiter = "   "
)

// Render writes the full text report. generated, noised and decoded are indexed
// like report.FailedIndices.
func Render(w io.Writer, r model.Report, generated, noised []model.TestInput, decoded []string, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Report generated at: %s\n\n", now.Format(time.ANSIC))
	b.WriteString("[ GENERAL ]\n")
	fmt.Fprintf(&b, "\tOverall (is passed?): %t\n", r.Passed)
	if !r.Passed {
		fmt.Fprintf(&b, "\tReason to failure: %s\n", r.Describe())
	}
	fmt.Fprintf(&b, "\tTests total: %d\n", r.SuccessCount+len(r.FailedIndices))
	fmt.Fprintf(&b, "\tTests passed: %d\n", r.SuccessCount)
	fmt.Fprintf(&b, "\tTests failed: %d\n", len(r.FailedIndices))
	b.WriteString("[ STATISTICS ]\n")
	fmt.Fprintf(&b, "\tOverall decode success rate: %s\n", formatFloat(r.MeanDecodeSuccessRate))
	fmt.Fprintf(&b, "\tOverall encode speed rate: %s\n", formatFloat(r.MeanEncodeSpeed))
	fmt.Fprintf(&b, "\tNoise level of most errors: %s\n", formatFloat(r.LeastSuccessfulNoiseLevel))

	if len(r.FailedIndices) > 0 {
		b.WriteString("[ FOR DEBUG ]\n")
		b.WriteString("\tFailed tests:\n")
		b.WriteString("(Below are the tests which decoder failed to pass)\n")
		for _, i := range r.FailedIndices {
			if i < 0 || i >= len(generated) || i >= len(noised) || i >= len(decoded) {
				return fmt.Errorf("failed test index %d out of range", i)
			}
			clusters := DetectMismatchClusters(generated[i].Text, decoded[i], GlueThreshold)
			fmt.Fprintf(&b, "TEST #%d. Noise level:%s\n", i+1, formatFloat(generated[i].NoiseLevel))
			fmt.Fprintf(&b, "GENERATED: %s\n", RenderWithBrackets(generated[i].Text, Delimiter, clusters))
			fmt.Fprintf(&b, "NOISED:    %s\n", RenderWithBrackets(noised[i].Text, Delimiter, clusters))
			fmt.Fprintf(&b, "DECODED:   %s\n", RenderWithBrackets(decoded[i], Delimiter, clusters))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
