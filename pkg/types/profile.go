// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ColumnProfile describes which columns survive projection, in what order,
// and under which output labels.
type ColumnProfile struct {
	// Name identifies the profile in status output.
	Name string `json:"name" yaml:"name"`

	// Required lists the mandatory columns in output order.
	Required []RequiredColumn `json:"required" yaml:"required"`

	// RemarksSubstring selects the optional trailing column: the first
	// header containing this substring. Empty disables the remarks column.
	RemarksSubstring string `json:"remarks_substring,omitempty" yaml:"remarks_substring,omitempty"`

	// RemarksLabel is the output name of the remarks column.
	RemarksLabel string `json:"remarks_label,omitempty" yaml:"remarks_label,omitempty"`
}

// RequiredColumn is one mandatory column of a profile.
type RequiredColumn struct {
	// Source is the header name looked up in the parsed table.
	Source string `json:"source" yaml:"source"`

	// Rename is the output label. Empty keeps Source.
	Rename string `json:"rename,omitempty" yaml:"rename,omitempty"`
}

// Label returns the output name of the column.
func (c RequiredColumn) Label() string {
	if c.Rename != "" {
		return c.Rename
	}
	return c.Source
}

// RecSheetProfile returns the built-in recording-sheet profile:
// №, 楽曲名 (shown as 曲名), 歌手名, DK№, OrgTime and the optional 備考 column
// relabelled RecSheet備考.
func RecSheetProfile() ColumnProfile {
	return ColumnProfile{
		Name: "recsheet",
		Required: []RequiredColumn{
			{Source: "№"},
			{Source: "楽曲名", Rename: "曲名"},
			{Source: "歌手名"},
			{Source: "DK№"},
			{Source: "OrgTime"},
		},
		RemarksSubstring: "備考",
		RemarksLabel:     "RecSheet備考",
	}
}
