// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encoding names a character encoding for CSV output. The values follow the
// codec labels spreadsheet users already know.
type Encoding string

const (
	EncodingUTF8BOM  Encoding = "utf-8-sig"
	EncodingShiftJIS Encoding = "shift_jis"
	EncodingCP932    Encoding = "cp932"
)

// DefaultEncodings lists the encodings produced when none are requested:
// UTF-8 with BOM first (recommended), then Shift-JIS for Japanese Excel.
var DefaultEncodings = []Encoding{EncodingUTF8BOM, EncodingShiftJIS}

// ParseEncoding maps a user-supplied label to an Encoding. It accepts the
// common aliases for each encoding, case-insensitively.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8-sig", "utf8-sig", "utf-8-bom", "utf8bom":
		return EncodingUTF8BOM, nil
	case "utf-8", "utf8":
		return "", fmt.Errorf("encoding %q: output always carries a BOM, use utf-8-sig", s)
	case "shift_jis", "shift-jis", "sjis", "shiftjis":
		return EncodingShiftJIS, nil
	case "cp932", "windows-31j", "ms932", "windows-932":
		return EncodingCP932, nil
	}
	return "", fmt.Errorf("unknown encoding %q (want utf-8-sig, shift_jis, or cp932)", s)
}

const (
	// OutputFilename is the suggested name for every CSV download.
	OutputFilename = "converted_data.csv"

	// OutputMIMEType is the media type of every CSV download.
	OutputMIMEType = "text/csv"
)

// Output is one serialized CSV file.
type Output struct {
	// Requested is the encoding the caller asked for.
	Requested Encoding `json:"requested" yaml:"requested"`

	// Used is the encoding the bytes are actually in. It differs from
	// Requested when the fallback chain was taken.
	Used Encoding `json:"used" yaml:"used"`

	Data     []byte `json:"-" yaml:"-"`
	Filename string `json:"filename" yaml:"filename"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
}

// FellBack reports whether the output was written in a different encoding
// than requested.
func (o Output) FellBack() bool {
	return o.Used != o.Requested
}

// DataURI returns the output as a base64 data URI.
func (o Output) DataURI() string {
	return "data:file/csv;base64," + base64.StdEncoding.EncodeToString(o.Data)
}

// DownloadLink returns an HTML anchor that downloads the output. The label
// names the encoding actually used.
func (o Output) DownloadLink() string {
	return fmt.Sprintf(`<a href="%s" download="%s">ダウンロード CSV ファイル (%s)</a>`,
		o.DataURI(), o.Filename, o.Used)
}
