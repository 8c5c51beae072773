// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mdtable parses Markdown pipe tables into rectangular tables.
// Two parsers share the same width normalization: Parse, a line-oriented
// parser that tolerates ragged rows, and ParseGFM, which defers to the
// goldmark GitHub Flavored Markdown table extension.
package mdtable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/recsheet/pkg/types"
)

// ErrNoTable is returned when the input contains no header row.
var ErrNoTable = errors.New("no valid Markdown table found")

const delimiter = "|"

// Parse reads the first pipe table in raw. The header is the first non-blank
// line that contains a pipe and is not a separator row. Exactly one line after
// the header is skipped as the separator; every later line with a pipe that is
// not itself a separator becomes a data row. Rows narrower than the widest row
// are padded with empty cells and the header grows with Column{N} names, so
// the result is always rectangular.
//
// A table with zero data rows is valid. Parse returns ErrNoTable when no
// header line exists.
func Parse(raw string) (types.StructuredTable, error) {
	lines := nonBlankLines(raw)

	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, delimiter) && !isSeparator(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return types.StructuredTable{}, ErrNoTable
	}

	header := splitRow(lines[headerIdx])

	var rows [][]string
	// headerIdx+2 skips the separator row unconditionally.
	for i := headerIdx + 2; i < len(lines); i++ {
		line := lines[i]
		if !strings.Contains(line, delimiter) || isSeparator(line) {
			continue
		}
		rows = append(rows, splitRow(line))
	}

	return Normalize(header, rows), nil
}

// Normalize makes header and rows rectangular. The width is the maximum of the
// header width and every row width; the header is extended with Column{N}
// (N is the 1-based position) and rows are right-padded with "". Cells are
// never truncated.
func Normalize(header []string, rows [][]string) types.StructuredTable {
	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	cols := make([]string, width)
	copy(cols, header)
	for i := len(header); i < width; i++ {
		cols[i] = syntheticColumn(i + 1)
	}

	out := make([][]string, len(rows))
	for i, r := range rows {
		padded := make([]string, width)
		copy(padded, r)
		out[i] = padded
	}

	return types.StructuredTable{Columns: cols, Rows: out}
}

func syntheticColumn(n int) string {
	return fmt.Sprintf("Column%d", n)
}

// nonBlankLines splits raw into lines and drops those that are empty after
// trimming. Lines are returned untrimmed.
func nonBlankLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isSeparator reports whether line is a header rule such as "|--|--|":
// a pipe immediately followed by at least two hyphens.
func isSeparator(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|--")
}

// splitRow splits a trimmed line on pipes, drops the first and last tokens
// (the artifacts of the outer pipes) and trims each remaining cell.
func splitRow(line string) []string {
	tokens := strings.Split(strings.TrimSpace(line), delimiter)
	if len(tokens) < 2 {
		return nil
	}
	tokens = tokens[1 : len(tokens)-1]
	cells := make([]string, len(tokens))
	for i, tok := range tokens {
		cells[i] = strings.TrimSpace(tok)
	}
	return cells
}
