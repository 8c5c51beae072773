// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/recsheet/pkg/types"
)

// Options holds settings shared by every document in a batch.
type Options struct {
	Encodings []types.Encoding
	Parser    types.ParserMode
	Profile   types.ColumnProfile
	CRLF      bool

	// OutDir is the base directory. Each document writes
	// OutDir/<name>/<requested encoding>/converted_data.csv.
	OutDir string
}

func (o Options) request(text string) Request {
	return Request{
		Text:      text,
		Encodings: o.Encodings,
		Parser:    o.Parser,
		Profile:   o.Profile,
		CRLF:      o.CRLF,
	}
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	// Partial counts documents where at least one encoding failed but
	// another succeeded.
	Partial int
	Failed  int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Partial + r.Failed
}

// HasFailures reports whether any document lost an output.
func (r BatchResult) HasFailures() bool {
	return r.Partial > 0 || r.Failed > 0
}

// ConvertDocument runs one conversion and writes its outputs under
// opts.OutDir/name. It prints one status line to w and returns the Result;
// the error is non-nil only when writing files failed.
func ConvertDocument(name, text string, opts Options, w io.Writer) (Result, error) {
	res := Run(opts.request(text), w)

	if res.Halted() {
		fmt.Fprintf(w, "failed:    %s (%s)\n", name, res.Failures[0].Message)
		return res, nil
	}

	dir := filepath.Join(opts.OutDir, name)
	paths, err := WriteOutputs(dir, res.Outputs)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return res, err
	}

	for _, f := range res.Failures {
		fmt.Fprintf(w, "failed:    %s %s (%s)\n", name, f.Encoding, f.Message)
	}
	for i, out := range res.Outputs {
		fmt.Fprintf(w, "converted: %s -> %s (%s)\n", name, paths[i], encodingLabel(out))
	}
	return res, nil
}

// ConvertFile reads a Markdown file and converts it. The output directory
// name is the file name without its extension.
func ConvertFile(path string, opts Options, w io.Writer) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ConvertDocument(documentName(path), string(data), opts, w)
}

// Add counts one document outcome as returned by ConvertFile or
// ConvertDocument.
func (r *BatchResult) Add(res Result, err error) {
	switch {
	case err != nil || len(res.Outputs) == 0:
		r.Failed++
	case !res.OK():
		r.Partial++
	default:
		r.Converted++
	}
}

// Report prints the summary line.
func (r BatchResult) Report(w io.Writer) {
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d partial, %d failed (total: %d)\n",
		r.Converted, r.Partial, r.Failed, r.Total())
}

// ConvertBatch converts every path, printing per-file status to w and
// returning a summary.
func ConvertBatch(paths []string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		result.Add(ConvertFile(p, opts, w))
	}
	result.Report(w)
	return result
}

// WriteOutputs writes each output to dir/<requested>/<filename> and returns
// the written paths in output order.
func WriteOutputs(dir string, outputs []types.Output) ([]string, error) {
	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		encDir := filepath.Join(dir, string(out.Requested))
		if err := os.MkdirAll(encDir, 0o755); err != nil {
			return paths, fmt.Errorf("creating %s: %w", encDir, err)
		}
		p := filepath.Join(encDir, out.Filename)
		if err := os.WriteFile(p, out.Data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func documentName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// encodingLabel shows the encoding used, and the requested one if the
// fallback chain was taken.
func encodingLabel(out types.Output) string {
	if out.FellBack() {
		return fmt.Sprintf("%s, requested %s", out.Used, out.Requested)
	}
	return string(out.Used)
}
