package stats

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Run", "Success", "Worst"}
	rows := [][]string{
		{"a1b2c3d4", "97.50%", "0.9"},
		{"ff", "8.00%", "-"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Run       Success  Worst" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a1b2c3d4   97.50%  0.9" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "ff          8.00%  -" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"K", "V"}, [][]string{{"日本", "x"}, {"a", "y"}}, nil)
	if lines[1] != "日本  x" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a     y" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestFormatTableHistoryColumns(t *testing.T) {
	sp := func(n int) string { return strings.Repeat(" ", n) }
	headers := []string{"Result", "Reason", "Tests", "Worst noise"}
	rows := [][]string{
		{"pass", "-", "4/4", "-"},
		{"FAIL", "decode_failure_many_errors", "12/20", "0.1"},
	}
	lines := formatTable(headers, rows, map[int]bool{2: true, 3: true})

	want := []string{
		"Result" + sp(2) + "Reason" + sp(22) + "Tests" + sp(2) + "Worst noise",
		"pass" + sp(4) + "-" + sp(27) + "  4/4" + sp(12) + "-",
		"FAIL" + sp(4) + "decode_failure_many_errors" + sp(2) + "12/20" + sp(10) + "0.1",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}
