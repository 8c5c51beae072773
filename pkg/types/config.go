package types

import "time"

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "recsheet/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ParserMode selects the Markdown table parser.
type ParserMode string

const (
	// ParserLenient tolerates ragged rows and pads them to the widest row.
	ParserLenient ParserMode = "lenient"
	// ParserGFM parses with a GitHub Flavored Markdown table engine.
	ParserGFM ParserMode = "gfm"
)

// ConvertConfig holds settings for the Markdown-to-CSV conversion.
type ConvertConfig struct {
	// Encodings lists the output encodings, in output order
	// (default utf-8-sig, shift_jis).
	Encodings []string `json:"encodings" yaml:"encodings" mapstructure:"encodings"`

	// OutDir is the directory CSV files are written under. Each requested
	// encoding gets its own subdirectory.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// Parser selects the table parser: lenient (default) or gfm.
	Parser ParserMode `json:"parser" yaml:"parser" mapstructure:"parser"`

	// Profile is an optional path to a YAML column profile. Empty uses the
	// built-in recording-sheet profile.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty" mapstructure:"profile"`

	// CRLF terminates CSV rows with \r\n instead of \n.
	CRLF bool `json:"crlf" yaml:"crlf" mapstructure:"crlf"`
}

// DrafterBackend identifies the text-generation service that drafts
// Markdown tables from PDF text.
type DrafterBackend string

const (
	DrafterClaude DrafterBackend = "claude"
	DrafterGemini DrafterBackend = "gemini"
)

// ExtractorBackend identifies the PDF text extraction tool.
type ExtractorBackend string

const (
	// ExtractorPDF reads the embedded text layer in-process.
	ExtractorPDF ExtractorBackend = "pdf"
	// ExtractorMarkitdown pipes the PDF through the markitdown container.
	ExtractorMarkitdown ExtractorBackend = "markitdown"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxTokens caps the length of the drafted table (default 3000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DraftConfig holds settings for the PDF-to-Markdown drafting stage.
type DraftConfig struct {
	AIConfig   `yaml:",inline" mapstructure:",squash"`
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the text-generation service: claude (default) or gemini.
	Backend DrafterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Extractor selects the PDF text extraction tool: pdf (default) or markitdown.
	Extractor ExtractorBackend `json:"extractor" yaml:"extractor" mapstructure:"extractor"`

	// Runtime is the preferred container runtime for the markitdown
	// extractor: docker or podman. Empty tries docker first.
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty" mapstructure:"runtime"`

	// Image is the markitdown container image (default "markitdown:latest").
	Image string `json:"image,omitempty" yaml:"image,omitempty" mapstructure:"image"`

	// PDFDir is where PDFs given as URLs are downloaded.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir" mapstructure:"pdf_dir"`

	// OutDir is the directory drafted Markdown files are written to.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// Overwrite re-drafts PDFs whose Markdown output already exists.
	Overwrite bool `json:"overwrite" yaml:"overwrite" mapstructure:"overwrite"`
}

// Config groups all stage configurations.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Draft   DraftConfig   `json:"draft" yaml:"draft" mapstructure:"draft"`
}
