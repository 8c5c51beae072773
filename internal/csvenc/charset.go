// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvenc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/pdiddy/recsheet/pkg/types"
)

// charset couples an output encoding with its repertoire test and its
// encoder. covers is checked per rune before encoding so failures can name
// the offending cell. Invalid UTF-8 is rejected by every charset before
// covers is consulted.
type charset struct {
	name    types.Encoding
	covers  func(r rune) bool
	encoder func() transform.Transformer
}

var (
	utf8BOM = charset{
		name:    types.EncodingUTF8BOM,
		covers:  func(rune) bool { return true },
		encoder: func() transform.Transformer { return unicode.UTF8BOM.NewEncoder() },
	}

	cp932 = charset{
		name:    types.EncodingCP932,
		covers:  inCP932,
		encoder: newSJISEncoder,
	}

	shiftJIS = charset{
		name:    types.EncodingShiftJIS,
		covers:  inShiftJIS,
		encoder: newSJISEncoder,
	}
)

// jisVariants maps the JIS X 0208 reading of a code onto the code point the
// x/text tables use for the same bytes. x/text follows the WHATWG index,
// which decodes these positions the way Windows code page 932 does.
var jisVariants = map[rune]rune{
	'〜': '～', // WAVE DASH -> FULLWIDTH TILDE
	'‖': '∥', // DOUBLE VERTICAL LINE -> PARALLEL TO
	'−': '－', // MINUS SIGN -> FULLWIDTH HYPHEN-MINUS
	'¢': '￠', // CENT SIGN
	'£': '￡', // POUND SIGN
	'¬': '￢', // NOT SIGN
}

// cp932Variants are the CP932 readings of the positions above. Plain
// Shift_JIS has no mapping for them.
var cp932Variants = func() map[rune]bool {
	m := make(map[rune]bool, len(jisVariants))
	for _, v := range jisVariants {
		m[v] = true
	}
	return m
}()

func toCP932(r rune) rune {
	if v, ok := jisVariants[r]; ok {
		return v
	}
	return r
}

// newSJISEncoder returns the x/text Shift_JIS encoder (the CP932 repertoire)
// behind a mapping that accepts the JIS X 0208 variants too.
func newSJISEncoder() transform.Transformer {
	return transform.Chain(runes.Map(toCP932), japanese.ShiftJIS.NewEncoder())
}

// encodeRune returns the CP932 bytes for r.
func encodeRune(r rune) ([]byte, error) {
	b, _, err := transform.Bytes(newSJISEncoder(), []byte(string(r)))
	return b, err
}

func inCP932(r rune) bool {
	if r < utf8.RuneSelf {
		return true
	}
	_, err := encodeRune(r)
	return err == nil
}

// inShiftJIS reports whether r is in the JIS X 0201 + JIS X 0208 repertoire
// of plain Shift_JIS. NEC row 13 (lead byte 0x87), the IBM extensions
// (0xED-0xEE, 0xFA-0xFC) and the CP932 variant code points are excluded.
func inShiftJIS(r rune) bool {
	if r < utf8.RuneSelf {
		return true
	}
	if r >= '｡' && r <= 'ﾟ' {
		return true
	}
	if cp932Variants[r] {
		return false
	}

	b, err := encodeRune(r)
	if err != nil || len(b) != 2 {
		return false
	}
	lead := b[0]
	if lead == 0x87 {
		return false
	}
	return (lead >= 0x81 && lead <= 0x9F) || (lead >= 0xE0 && lead <= 0xEA)
}
