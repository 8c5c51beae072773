// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns Markdown recording sheets into CSV files.
// Run is the request boundary: it parses, projects and serializes one
// document and converts every failure into a Failure with a readable
// message. Nothing below it is allowed to crash the host.
package convert

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/recsheet/internal/csvenc"
	"github.com/pdiddy/recsheet/internal/mdtable"
	"github.com/pdiddy/recsheet/internal/project"
	"github.com/pdiddy/recsheet/pkg/types"
)

// Request is one conversion: the Markdown text plus how to read and write it.
type Request struct {
	Text string

	// Encodings lists the outputs to produce, in order. Empty means
	// types.DefaultEncodings.
	Encodings []types.Encoding

	// Parser selects the table parser. Empty means lenient.
	Parser types.ParserMode

	// Profile is the column allowlist. A zero profile means the built-in
	// recording-sheet profile.
	Profile types.ColumnProfile

	CRLF bool
}

// FailureKind classifies a conversion failure.
type FailureKind string

const (
	FailNoTable       FailureKind = "no_table"
	FailMissingColumn FailureKind = "missing_column"
	FailEncoding      FailureKind = "encoding"
	FailUnexpected    FailureKind = "unexpected"
)

// Failure is a user-facing conversion error.
type Failure struct {
	Kind FailureKind

	// Encoding is set for FailEncoding: the requested encoding whose
	// output could not be produced.
	Encoding types.Encoding

	Message string
	Err     error
}

func (f Failure) Error() string {
	return f.Message
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is everything a host needs to present one conversion.
type Result struct {
	// Table is the projected table, nil when the request halted before
	// serialization.
	Table *types.ProjectedTable

	// Meta is the draft front matter, if the document carried one.
	Meta *types.DraftMeta

	Outputs  []types.Output
	Failures []Failure
}

// OK reports whether every requested output was produced.
func (r Result) OK() bool {
	return len(r.Failures) == 0
}

// Halted reports whether the request stopped before producing any output.
func (r Result) Halted() bool {
	return r.Table == nil
}

// Err joins all failures into one error, or returns nil.
func (r Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Run converts req. A missing table or missing required column halts the
// request with no outputs. An encoding failure drops only that output.
// Status lines for fallbacks are written to w.
func Run(req Request, w io.Writer) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Failures: []Failure{unexpected(fmt.Errorf("panic: %v", p))}}
		}
	}()

	body, meta := mdtable.StripFrontMatter(req.Text)
	res.Meta = meta

	table, err := parse(body, req.Parser)
	if err != nil {
		res.Failures = append(res.Failures, classify(err))
		return res
	}

	profile := req.Profile
	if len(profile.Required) == 0 {
		profile = types.RecSheetProfile()
	}

	projected, err := project.Project(table, profile)
	if err != nil {
		res.Failures = append(res.Failures, classify(err))
		return res
	}
	res.Table = &projected

	encodings := req.Encodings
	if len(encodings) == 0 {
		encodings = types.DefaultEncodings
	}

	s := csvenc.Serializer{CRLF: req.CRLF, Log: w}
	for _, enc := range encodings {
		out, err := serialize(s, projected, enc)
		if err != nil {
			f := classify(err)
			f.Kind = FailEncoding
			f.Encoding = enc
			f.Message = fmt.Sprintf("could not write %s CSV: %v", enc, err)
			res.Failures = append(res.Failures, f)
			continue
		}
		res.Outputs = append(res.Outputs, out)
	}
	return res
}

// serialize isolates one encoding so a panic in it cannot take down the
// other outputs.
func serialize(s csvenc.Serializer, t types.ProjectedTable, enc types.Encoding) (out types.Output, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Serialize(t, enc)
}

func parse(text string, mode types.ParserMode) (types.StructuredTable, error) {
	switch mode {
	case "", types.ParserLenient:
		return mdtable.Parse(text)
	case types.ParserGFM:
		return mdtable.ParseGFM(text)
	}
	return types.StructuredTable{}, fmt.Errorf("unknown parser %q", mode)
}

// classify maps an error to its Failure with a readable message.
func classify(err error) Failure {
	var mce *project.MissingColumnError
	switch {
	case errors.Is(err, mdtable.ErrNoTable):
		return Failure{
			Kind:    FailNoTable,
			Message: "no valid Markdown table found: the input needs a header row such as |№|楽曲名|歌手名|DK№|OrgTime|",
			Err:     err,
		}
	case errors.As(err, &mce):
		return Failure{
			Kind:    FailMissingColumn,
			Message: fmt.Sprintf("required columns missing: %s", strings.Join(mce.Missing, ", ")),
			Err:     err,
		}
	case errors.Is(err, csvenc.ErrEncoding):
		return Failure{Kind: FailEncoding, Message: err.Error(), Err: err}
	}
	return unexpected(err)
}

func unexpected(err error) Failure {
	return Failure{
		Kind:    FailUnexpected,
		Message: fmt.Sprintf("unexpected error while converting the table: %v", err),
		Err:     err,
	}
}
