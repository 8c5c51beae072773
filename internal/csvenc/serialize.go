// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvenc serializes projected tables to CSV bytes in a requested
// character encoding. Shift_JIS requests fall back to CP932 and then to
// UTF-8 with BOM; the returned Output always names the encoding actually used.
package csvenc

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/recsheet/pkg/types"
)

// ErrEncoding is matched by every EncodingError.
var ErrEncoding = errors.New("cannot encode CSV")

// EncodingError reports the first cell an encoding cannot represent.
type EncodingError struct {
	Encoding types.Encoding
	// Row is 0 for the header and 1-based for data rows.
	Row    int
	Column string
	Rune   rune
	// Invalid is set when the cell is not valid UTF-8.
	Invalid bool
	// Err is the underlying encoder error, if the encoder itself failed.
	Err error
}

func (e *EncodingError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v as %s: %v", ErrEncoding, e.Encoding, e.Err)
	case e.Invalid:
		return fmt.Sprintf("%v as %s: invalid UTF-8 in row %d, column %q", ErrEncoding, e.Encoding, e.Row, e.Column)
	}
	return fmt.Sprintf("%v as %s: %q (U+%04X) in row %d, column %q is not representable",
		ErrEncoding, e.Encoding, e.Rune, e.Rune, e.Row, e.Column)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Serializer writes CSV. The zero value writes \n-terminated rows and no
// status output.
type Serializer struct {
	// CRLF terminates rows with \r\n.
	CRLF bool

	// Log receives one line per fallback taken. Nil discards.
	Log io.Writer
}

// Serialize encodes t with the default Serializer.
func Serialize(t types.ProjectedTable, enc types.Encoding) (types.Output, error) {
	return Serializer{}.Serialize(t, enc)
}

// Serialize renders t as CSV (header row, comma delimiter, standard quoting,
// no index column) and encodes it as requested. The fallback chain is:
//
//	shift_jis -> cp932 -> utf-8-sig
//	cp932     -> utf-8-sig
//	utf-8-sig -> utf-8-sig with invalid UTF-8 replaced by U+FFFD
//
// An error is returned only when the final UTF-8 fallback fails too.
func (s Serializer) Serialize(t types.ProjectedTable, requested types.Encoding) (types.Output, error) {
	table := t.Table()

	text, err := s.render(table)
	if err != nil {
		return types.Output{}, fmt.Errorf("writing CSV: %w", err)
	}

	chain, err := fallbackChain(requested)
	if err != nil {
		return types.Output{}, err
	}

	var lastErr error
	for _, cs := range chain {
		data, err := encode(cs, table, text)
		if err != nil {
			lastErr = err
			continue
		}
		if cs.name != requested {
			s.logf("fallback: %s -> %s (%v)\n", requested, cs.name, lastErr)
		}
		return newOutput(requested, cs.name, data), nil
	}

	data, err := encodeLenientUTF8(text)
	if err != nil {
		return types.Output{}, &EncodingError{Encoding: types.EncodingUTF8BOM, Err: err}
	}
	s.logf("fallback: %s -> %s (%v)\n", requested, types.EncodingUTF8BOM, lastErr)
	return newOutput(requested, types.EncodingUTF8BOM, data), nil
}

// fallbackChain lists the charsets tried before the final lenient UTF-8 step.
func fallbackChain(enc types.Encoding) ([]charset, error) {
	switch enc {
	case types.EncodingShiftJIS:
		return []charset{shiftJIS, cp932}, nil
	case types.EncodingCP932:
		return []charset{cp932}, nil
	case types.EncodingUTF8BOM:
		return []charset{utf8BOM}, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

func newOutput(requested, used types.Encoding, data []byte) types.Output {
	return types.Output{
		Requested: requested,
		Used:      used,
		Data:      data,
		Filename:  types.OutputFilename,
		MIMEType:  types.OutputMIMEType,
	}
}

func (s Serializer) render(t types.StructuredTable) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = s.CRLF

	if err := w.Write(t.Columns); err != nil {
		return "", err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// encode checks every cell against cs before running the encoder, so a
// failure names the cell.
func encode(cs charset, t types.StructuredTable, text string) ([]byte, error) {
	if err := scan(cs, t); err != nil {
		return nil, err
	}
	data, _, err := transform.Bytes(cs.encoder(), []byte(text))
	if err != nil {
		return nil, &EncodingError{Encoding: cs.name, Err: err}
	}
	return data, nil
}

func scan(cs charset, t types.StructuredTable) error {
	seen := make(map[rune]bool)
	check := func(row int, column, cell string) error {
		for i := 0; i < len(cell); {
			r, size := utf8.DecodeRuneInString(cell[i:])
			i += size
			if r == utf8.RuneError && size == 1 {
				return &EncodingError{Encoding: cs.name, Row: row, Column: column, Invalid: true}
			}
			ok, cached := seen[r]
			if !cached {
				ok = cs.covers(r)
				seen[r] = ok
			}
			if !ok {
				return &EncodingError{Encoding: cs.name, Row: row, Column: column, Rune: r}
			}
		}
		return nil
	}

	for _, name := range t.Columns {
		if err := check(0, name, name); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		for j, cell := range row {
			column := ""
			if j < len(t.Columns) {
				column = t.Columns[j]
			}
			if err := check(i+1, column, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeLenientUTF8 is the last step of every chain. Invalid sequences are
// replaced rather than rejected.
func encodeLenientUTF8(text string) ([]byte, error) {
	return unicode.UTF8BOM.NewEncoder().Bytes([]byte(strings.ToValidUTF8(text, "\uFFFD")))
}

func (s Serializer) logf(format string, args ...any) {
	if s.Log == nil {
		return
	}
	fmt.Fprintf(s.Log, format, args...)
}
