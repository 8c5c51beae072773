// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft turns PDF recording sheets into Markdown pipe tables by
// extracting the PDF text and asking a text-generation backend to lay it
// out as a table. Drafted files carry YAML front matter describing how they
// were produced.
package draft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recsheet/pkg/types"
)

// Drafter turns extracted PDF text into a Markdown table. Implementations
// may return the table wrapped in prose or code fences; callers clean it.
type Drafter interface {
	Backend() types.DrafterBackend
	ModelName() string
	Draft(ctx context.Context, text string) (string, error)
}

// ErrNoTableDrafted is returned when the backend answer contains no pipe
// table line.
var ErrNoTableDrafted = errors.New("response contains no Markdown table")

// Drafted describes the outcome for one PDF.
type Drafted struct {
	Source string
	Path   string
	Status types.DraftStatus
	Err    error
}

// BatchResult holds counts from a batch drafting run.
type BatchResult struct {
	Drafted int
	Skipped int
	Failed  int
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Drafted + r.Skipped + r.Failed
}

// HasFailures reports whether any PDF failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// now is replaced in tests.
var now = time.Now

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// OutputPath returns where the draft for pdfPath is written.
func OutputPath(outDir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(outDir, base+".md")
}

// DraftFile extracts the text of one PDF, drafts a table from it, and writes
// the Markdown with front matter. An existing output is left alone unless
// cfg.Overwrite is set.
func DraftFile(ctx context.Context, ext TextExtractor, d Drafter, pdfPath string, cfg types.DraftConfig, w io.Writer) Drafted {
	out := OutputPath(cfg.OutDir, pdfPath)
	res := Drafted{Source: pdfPath, Path: out}

	if !cfg.Overwrite {
		if _, err := os.Stat(out); err == nil {
			fmt.Fprintf(w, "skipped:   %s (%s exists)\n", pdfPath, out)
			res.Status = types.DraftSkipped
			return res
		}
	}

	fail := func(err error) Drafted {
		fmt.Fprintf(w, "failed:    %s (%v)\n", pdfPath, err)
		res.Status = types.DraftFailed
		res.Err = err
		return res
	}

	text, err := ext.Extract(ctx, pdfPath)
	if err != nil {
		return fail(fmt.Errorf("extracting text: %w", err))
	}

	table, err := callWithRetry(ctx, d, text, cfg.MaxRetries, w)
	if err != nil {
		return fail(err)
	}

	meta := types.DraftMeta{
		SourcePDF: pdfPath,
		DraftedAt: now().UTC().Format(time.RFC3339),
		Backend:   d.Backend(),
		Model:     d.ModelName(),
		Extractor: ext.Name(),
	}
	if err := writeDraft(out, meta, table); err != nil {
		return fail(err)
	}

	fmt.Fprintf(w, "drafted:   %s -> %s (%s)\n", pdfPath, out, d.Backend())
	res.Status = types.DraftDone
	return res
}

// DraftBatch drafts every PDF in order and prints a summary. It stops early
// only when ctx is cancelled.
func DraftBatch(ctx context.Context, ext TextExtractor, d Drafter, pdfPaths []string, cfg types.DraftConfig, w io.Writer) ([]Drafted, BatchResult) {
	var (
		results []Drafted
		summary BatchResult
	)
	for _, p := range pdfPaths {
		if ctx.Err() != nil {
			break
		}
		r := DraftFile(ctx, ext, d, p, cfg, w)
		results = append(results, r)
		switch r.Status {
		case types.DraftDone:
			summary.Drafted++
		case types.DraftSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d drafted, %d skipped, %d failed (total: %d)\n",
		summary.Drafted, summary.Skipped, summary.Failed, summary.Total())
	return results, summary
}

// callWithRetry drafts with exponential backoff. A response without a table
// counts as a failed attempt.
func callWithRetry(ctx context.Context, d Drafter, text string, maxRetries int, w io.Writer) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			fmt.Fprintf(w, "retry:     %v, waiting %v (attempt %d/%d)\n", lastErr, backoff, attempt, maxRetries)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := d.Draft(ctx, text)
		if err == nil {
			table, terr := extractTable(resp)
			if terr == nil {
				return table, nil
			}
			err = terr
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// extractTable strips code fences from a backend answer and keeps the first
// contiguous block of pipe lines, dropping any prose around it.
func extractTable(resp string) (string, error) {
	lines := strings.Split(stripCodeFence(resp), "\n")
	start := -1
	end := len(lines)
	for i, line := range lines {
		isRow := strings.Contains(line, "|")
		if start < 0 && isRow {
			start = i
			continue
		}
		if start >= 0 && !isRow && strings.TrimSpace(line) != "" {
			end = i
			break
		}
	}
	if start < 0 {
		return "", ErrNoTableDrafted
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n")), nil
}

// writeDraft writes meta as YAML front matter followed by the table.
func writeDraft(path string, meta types.DraftMeta, table string) error {
	fm, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(table)
	buf.WriteString("\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
