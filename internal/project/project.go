// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project restricts a parsed table to a column profile and renames
// the surviving columns to their output labels.
package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/recsheet/pkg/types"
)

// ErrMissingColumn is wrapped by every MissingColumnError.
var ErrMissingColumn = errors.New("required column missing")

// MissingColumnError lists the required columns absent from a table.
type MissingColumnError struct {
	Missing []string
	// Available holds the columns the table did have, for the error message.
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%v: %s (table has: %s)", ErrMissingColumn,
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// Project selects the profile's required columns in profile order, appends the
// first column whose name contains the remarks substring (if any), and
// relabels the result. Every missing required column is reported in one
// MissingColumnError.
//
// A required column is also found under its output label, so projecting an
// already projected table returns it unchanged.
func Project(t types.StructuredTable, p types.ColumnProfile) (types.ProjectedTable, error) {
	var (
		indices []int
		labels  []string
		missing []string
	)

	for _, col := range p.Required {
		idx := t.ColumnIndex(col.Source)
		if idx < 0 && col.Rename != "" {
			idx = t.ColumnIndex(col.Rename)
		}
		if idx < 0 {
			missing = append(missing, col.Source)
			continue
		}
		indices = append(indices, idx)
		labels = append(labels, col.Label())
	}

	if len(missing) > 0 {
		return types.ProjectedTable{}, &MissingColumnError{
			Missing:   missing,
			Available: append([]string(nil), t.Columns...),
		}
	}

	remarksIdx := FindRemarks(t.Columns, p.RemarksSubstring)
	if remarksIdx >= 0 {
		indices = append(indices, remarksIdx)
		labels = append(labels, remarksLabel(t.Columns[remarksIdx], p))
	}

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out := make([]string, len(indices))
		for j, idx := range indices {
			if idx < len(r) {
				out[j] = r[idx]
			}
		}
		rows[i] = out
	}

	return types.ProjectedTable{
		StructuredTable: types.StructuredTable{Columns: labels, Rows: rows},
		HasRemarks:      remarksIdx >= 0,
	}, nil
}

// FindRemarks returns the index of the first column whose name contains
// substr, or -1. An empty substr never matches.
func FindRemarks(columns []string, substr string) int {
	if substr == "" {
		return -1
	}
	for i, c := range columns {
		if strings.Contains(c, substr) {
			return i
		}
	}
	return -1
}

func remarksLabel(source string, p types.ColumnProfile) string {
	if p.RemarksLabel != "" {
		return p.RemarksLabel
	}
	return source
}
