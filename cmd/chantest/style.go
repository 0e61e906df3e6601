package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/chantest/internal/model"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// colorEnabled reports whether w is an interactive terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

func headerLine(title string, color bool) string {
	return paint(headerStyle, title, color)
}

// verdictLine is the one-line run outcome printed after grading.
func verdictLine(r model.Report, color bool) string {
	stats := fmt.Sprintf("%d/%d decoded, success rate %.4f, speed %.4f",
		r.SuccessCount, r.TotalCount, r.MeanDecodeSuccessRate, r.MeanEncodeSpeed)
	if r.Passed {
		return paint(passStyle, "PASS", color) + " " + paint(mutedStyle, stats, color)
	}
	return paint(failStyle, "FAIL", color) + " " + paint(mutedStyle, stats, color) + "\n" + r.Describe()
}

func printVerdict(w io.Writer, r model.Report, color bool) error {
	if _, err := fmt.Fprintln(w, verdictLine(r, color)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
