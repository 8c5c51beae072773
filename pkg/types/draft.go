// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DraftStatus indicates the outcome of drafting one PDF.
type DraftStatus string

const (
	DraftDone    DraftStatus = "drafted"
	DraftSkipped DraftStatus = "skipped"
	DraftFailed  DraftStatus = "failed"
)

// DraftMeta is the YAML front matter written at the top of every drafted
// Markdown file.
type DraftMeta struct {
	// SourcePDF is the path of the PDF the table was drafted from.
	SourcePDF string `json:"source_pdf" yaml:"source_pdf"`

	// DraftedAt is when the draft was produced, RFC 3339 in UTC.
	DraftedAt string `json:"drafted_at" yaml:"drafted_at"`

	// Backend names the text-generation service.
	Backend DrafterBackend `json:"backend" yaml:"backend"`

	// Model is the model identifier used by the backend.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Extractor names the PDF text extraction tool.
	Extractor ExtractorBackend `json:"extractor" yaml:"extractor"`
}
