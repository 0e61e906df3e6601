// Package report renders graded runs as text.
package report

import "strings"

// Range is an inclusive byte range.
type Range struct {
	Start int
	End   int
}

// DetectMismatchClusters returns the ordered, non-overlapping ranges where actual
// differs from expected. Mismatch runs separated by at most glue matching bytes
// are merged into one range. Only the common prefix length is compared.
func DetectMismatchClusters(expected, actual string, glue int) []Range {
	n := min(len(expected), len(actual))
	var ranges []Range
	open := false
	var cur Range
	matches := 0
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			if !open {
				cur = Range{Start: i}
				open = true
			}
			cur.End = i
			matches = 0
			continue
		}
		if !open {
			continue
		}
		matches++
		if matches > glue {
			ranges = append(ranges, cur)
			open = false
		}
	}
	if open {
		ranges = append(ranges, cur)
	}
	return ranges
}

// RenderWithBrackets writes text with delim before and after every range.
// Ranges beyond the end of text are clipped.
func RenderWithBrackets(text, delim string, ranges []Range) string {
	var b strings.Builder
	prev := 0
	for _, r := range ranges {
		if r.Start >= len(text) {
			break
		}
		end := min(r.End+1, len(text))
		b.WriteString(text[prev:r.Start])
		b.WriteString(delim)
		b.WriteString(text[r.Start:end])
		b.WriteString(delim)
		prev = end
	}
	b.WriteString(text[prev:])
	return b.String()
}
