package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/recsheet/internal/convert"
	"github.com/pdiddy/recsheet/internal/project"
	"github.com/pdiddy/recsheet/pkg/types"
)

// Defaults shared by flags and config-only keys.
const (
	defaultConvertOutDir = "out"
	defaultDraftOutDir   = "drafts"
	defaultPDFDir        = "pdfs"
	defaultMaxRetries    = 3
	defaultMaxTokens     = 3000
	defaultTimeout       = 2 * time.Minute
)

// loadConfig reads the merged flag, environment and file settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *types.Config) {
	c := &cfg.Convert
	if len(c.Encodings) == 0 {
		for _, e := range types.DefaultEncodings {
			c.Encodings = append(c.Encodings, string(e))
		}
	}
	if c.OutDir == "" {
		c.OutDir = defaultConvertOutDir
	}
	if c.Parser == "" {
		c.Parser = types.ParserLenient
	}

	d := &cfg.Draft
	if d.Backend == "" {
		d.Backend = types.DrafterClaude
	}
	if d.Extractor == "" {
		d.Extractor = types.ExtractorPDF
	}
	if d.OutDir == "" {
		d.OutDir = defaultDraftOutDir
	}
	if d.PDFDir == "" {
		d.PDFDir = defaultPDFDir
	}
	if d.MaxRetries <= 0 {
		d.MaxRetries = defaultMaxRetries
	}
	if d.MaxTokens <= 0 {
		d.MaxTokens = defaultMaxTokens
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.UserAgent == "" {
		d.UserAgent = "recsheet/" + version
	}
}

// convertOptions validates the convert settings and loads the column
// profile.
func convertOptions(c types.ConvertConfig) (convert.Options, error) {
	opts := convert.Options{
		Parser: c.Parser,
		CRLF:   c.CRLF,
		OutDir: c.OutDir,
	}

	switch c.Parser {
	case types.ParserLenient, types.ParserGFM:
	default:
		return opts, fmt.Errorf("unsupported parser %q: use lenient or gfm", c.Parser)
	}

	for _, s := range c.Encodings {
		enc, err := types.ParseEncoding(s)
		if err != nil {
			return opts, err
		}
		opts.Encodings = append(opts.Encodings, enc)
	}

	profile, err := project.LoadProfile(c.Profile)
	if err != nil {
		return opts, err
	}
	opts.Profile = profile
	return opts, nil
}
