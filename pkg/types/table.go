// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StructuredTable is a rectangular table parsed from a Markdown pipe table.
// Every row has exactly len(Columns) cells.
type StructuredTable struct {
	// Columns holds the header names in document order. Synthetic names
	// ("Column4", "Column5", ...) cover rows wider than the original header.
	Columns []string `json:"columns" yaml:"columns"`

	// Rows holds the data rows in document order.
	Rows [][]string `json:"rows" yaml:"rows"`
}

// Width returns the number of columns.
func (t StructuredTable) Width() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the column named name, or -1.
func (t StructuredTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ProjectedTable is a StructuredTable restricted to a column profile and
// renamed to the profile's output labels.
type ProjectedTable struct {
	StructuredTable `yaml:",inline"`

	// HasRemarks reports whether the optional remarks column was found.
	HasRemarks bool `json:"has_remarks" yaml:"has_remarks"`
}

// Table returns the projected data as a plain StructuredTable.
func (p ProjectedTable) Table() StructuredTable {
	return p.StructuredTable
}
