// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recsheet/internal/acquire"
	"github.com/pdiddy/recsheet/internal/convert"
	"github.com/pdiddy/recsheet/internal/draft"
	"github.com/pdiddy/recsheet/internal/project"
	"github.com/pdiddy/recsheet/internal/secrets"
	"github.com/pdiddy/recsheet/pkg/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft <pdf files or URLs...>",
	Short: "Draft Markdown recording-sheet tables from PDF files",
	Long: `Draft extracts the text of each PDF recording sheet and asks a text
generation backend (Claude or Gemini) to lay it out as a Markdown table. The
result is written to <out-dir>/<name>.md with YAML front matter recording the
source PDF, backend and model. Arguments that are http(s) URLs are downloaded
to --pdf-dir first.

Text is read from the PDF text layer by default. --extractor markitdown runs
the markitdown container (docker or podman) instead, which keeps table layout
better on some sheets.

API keys are read from the config file or from .secrets/anthropic-api-key and
.secrets/gemini-api-key.

With --convert each drafted table is converted to CSV as by the convert
command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDraft,
}

func runDraft(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dc := cfg.Draft
	log := cmd.ErrOrStderr()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	profile, err := project.LoadProfile(cfg.Convert.Profile)
	if err != nil {
		return err
	}

	ext, err := newExtractor(dc)
	if err != nil {
		return err
	}

	drafter, closeFn, err := newDrafter(ctx, dc, profile, log)
	if err != nil {
		return err
	}
	defer closeFn()

	fetcher := &acquire.Fetcher{
		Client:     &http.Client{Timeout: dc.Timeout},
		Dir:        dc.PDFDir,
		UserAgent:  dc.UserAgent,
		MaxRetries: dc.MaxRetries,
	}
	pdfs, fetchFailed := fetcher.Resolve(ctx, args, log)

	results, summary := draft.DraftBatch(ctx, ext, drafter, pdfs, dc, log)
	if fetchFailed > 0 {
		fmt.Fprintf(log, "Download failures: %d (not included above)\n", fetchFailed)
		summary.Failed += fetchFailed
	}

	if doConvert, _ := cmd.Flags().GetBool("convert"); doConvert {
		opts, err := convertOptions(cfg.Convert)
		if err != nil {
			return err
		}
		var paths []string
		for _, r := range results {
			if r.Status != types.DraftFailed {
				paths = append(paths, r.Path)
			}
		}
		if len(paths) > 0 {
			if cs := convert.ConvertBatch(paths, opts, log); cs.HasFailures() {
				return fmt.Errorf("%d drafted table(s) not fully converted", cs.Partial+cs.Failed)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d PDF(s) failed", summary.Failed, summary.Total())
	}
	return nil
}

func newExtractor(dc types.DraftConfig) (draft.TextExtractor, error) {
	switch dc.Extractor {
	case types.ExtractorPDF:
		return draft.PDFTextExtractor{}, nil
	case types.ExtractorMarkitdown:
		return draft.NewMarkitdownExtractor(dc.Runtime, dc.Image)
	}
	return nil, fmt.Errorf("unsupported extractor %q: use pdf or markitdown", dc.Extractor)
}

// newDrafter builds the configured backend. The returned func releases it.
func newDrafter(ctx context.Context, dc types.DraftConfig, profile types.ColumnProfile, log io.Writer) (draft.Drafter, func(), error) {
	switch dc.Backend {
	case types.DrafterClaude:
		key := loadedSecrets.Lookup(secrets.AnthropicAPIKey, dc.APIKey)
		if key == "" {
			return nil, nil, fmt.Errorf("no Anthropic API key: set draft.api_key or create .secrets/%s", secrets.AnthropicAPIKey)
		}
		d := &draft.ClaudeDrafter{
			APIKey:    key,
			Model:     dc.Model,
			MaxTokens: dc.MaxTokens,
			UserAgent: dc.UserAgent,
			Profile:   profile,
			Client:    &http.Client{Timeout: dc.Timeout},
			Log:       log,
		}
		return d, func() {}, nil

	case types.DrafterGemini:
		ai := dc.AIConfig
		ai.APIKey = loadedSecrets.Lookup(secrets.GeminiAPIKey, dc.APIKey)
		if ai.APIKey == "" {
			return nil, nil, fmt.Errorf("no Gemini API key: set draft.api_key or create .secrets/%s", secrets.GeminiAPIKey)
		}
		d, err := draft.NewGeminiDrafter(ctx, ai, profile)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend %q: use claude or gemini", dc.Backend)
}

func init() {
	draftCmd.Flags().String("backend", string(types.DrafterClaude), "text generation backend: claude or gemini")
	draftCmd.Flags().String("extractor", string(types.ExtractorPDF), "PDF text extractor: pdf or markitdown")
	draftCmd.Flags().String("model", "", "model identifier (default depends on backend)")
	draftCmd.Flags().String("out-dir", defaultDraftOutDir, "directory for drafted Markdown files")
	draftCmd.Flags().String("pdf-dir", defaultPDFDir, "directory PDFs given as URLs are downloaded to")
	draftCmd.Flags().Int("max-retries", defaultMaxRetries, "retries per PDF when the backend fails")
	draftCmd.Flags().Int("max-tokens", defaultMaxTokens, "maximum length of the drafted table in tokens")
	draftCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	draftCmd.Flags().Bool("overwrite", false, "re-draft PDFs whose Markdown already exists")
	draftCmd.Flags().String("runtime", "", "container runtime for markitdown: docker or podman")
	draftCmd.Flags().String("image", draft.DefaultImage, "markitdown container image")
	draftCmd.Flags().Bool("convert", false, "convert drafted tables to CSV")

	for key, flag := range map[string]string{
		"draft.backend":     "backend",
		"draft.extractor":   "extractor",
		"draft.model":       "model",
		"draft.out_dir":     "out-dir",
		"draft.pdf_dir":     "pdf-dir",
		"draft.max_retries": "max-retries",
		"draft.max_tokens":  "max-tokens",
		"draft.timeout":     "timeout",
		"draft.overwrite":   "overwrite",
		"draft.runtime":     "runtime",
		"draft.image":       "image",
	} {
		_ = viper.BindPFlag(key, draftCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(draftCmd)
}
