// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvenc

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/pdiddy/recsheet/pkg/types"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

func projected(rows ...[]string) types.ProjectedTable {
	return types.ProjectedTable{
		StructuredTable: types.StructuredTable{
			Columns: []string{"№", "曲名", "歌手名", "DK№", "OrgTime", "RecSheet備考"},
			Rows:    rows,
		},
		HasRemarks: true,
	}
}

// readCSV parses data back into records, the way a spreadsheet import would.
func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func decodeSJIS(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	require.NoError(t, err)
	return out
}

func TestSerialize_UTF8BOMRoundTrip(t *testing.T) {
	table := projected(
		[]string{"1", "Song A", "Singer X", "D01", "00:01:23", "note1"},
		[]string{"2", "曲, with comma", `say "hi"`, "D02", "00:02:00", "line1\nline2"},
		[]string{"3", "🎤 emoji", "", "", "", ""},
	)

	out, err := Serialize(table, types.EncodingUTF8BOM)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingUTF8BOM, out.Used)
	assert.Equal(t, types.EncodingUTF8BOM, out.Requested)
	assert.False(t, out.FellBack())
	assert.Equal(t, "converted_data.csv", out.Filename)
	assert.Equal(t, "text/csv", out.MIMEType)
	require.True(t, bytes.HasPrefix(out.Data, bom))

	records := readCSV(t, bytes.TrimPrefix(out.Data, bom))
	want := append([][]string{table.Columns}, table.Rows...)
	assert.Equal(t, want, records)
}

func TestSerialize_RecSheetScenario(t *testing.T) {
	table := projected([]string{"1", "Song A", "Singer X", "D01", "00:01:23", "note1"})

	out, err := Serialize(table, types.EncodingUTF8BOM)
	require.NoError(t, err)

	want := "\uFEFF№,曲名,歌手名,DK№,OrgTime,RecSheet備考\n1,Song A,Singer X,D01,00:01:23,note1\n"
	assert.Equal(t, want, string(out.Data))
}

func TestSerialize_ShiftJIS(t *testing.T) {
	table := types.ProjectedTable{StructuredTable: types.StructuredTable{
		Columns: []string{"番号", "曲名", "歌手名", "OrgTime"},
		Rows:    [][]string{{"1", "さくら", "歌手", "ｶﾗｵｹ"}},
	}}

	out, err := Serialize(table, types.EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingShiftJIS, out.Used)
	assert.False(t, out.FellBack())
	assert.False(t, bytes.HasPrefix(out.Data, bom))

	records := readCSV(t, decodeSJIS(t, out.Data))
	assert.Equal(t, table.Columns, records[0])
	assert.Equal(t, table.Rows[0], records[1])
}

func TestSerialize_NumeroHeaderNeedsCP932(t *testing.T) {
	// № is NEC row 13, so the recording-sheet header alone forces CP932.
	out, err := Serialize(projected([]string{"1", "a", "b", "c", "d", "e"}), types.EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingCP932, out.Used)

	records := readCSV(t, decodeSJIS(t, out.Data))
	assert.Equal(t, "№", records[0][0])
	assert.Equal(t, "DK№", records[0][3])
}

func TestSerialize_ShiftJISFallsBackToCP932(t *testing.T) {
	for _, ch := range []string{"①", "㈱", "髙"} {
		t.Run(ch, func(t *testing.T) {
			table := projected([]string{"1", "Song " + ch, "Singer", "D01", "00:01:23", ""})

			var log bytes.Buffer
			out, err := Serializer{Log: &log}.Serialize(table, types.EncodingShiftJIS)
			require.NoError(t, err)
			assert.Equal(t, types.EncodingCP932, out.Used)
			assert.Equal(t, types.EncodingShiftJIS, out.Requested)
			assert.True(t, out.FellBack())
			assert.Contains(t, log.String(), "fallback: shift_jis -> cp932")
			assert.Contains(t, out.DownloadLink(), "(cp932)")

			records := readCSV(t, decodeSJIS(t, out.Data))
			assert.Equal(t, "Song "+ch, records[1][1])
		})
	}
}

func TestSerialize_FallsBackToUTF8BOM(t *testing.T) {
	for _, enc := range []types.Encoding{types.EncodingShiftJIS, types.EncodingCP932} {
		t.Run(string(enc), func(t *testing.T) {
			table := projected([]string{"1", "🎤 Song", "Singer", "D01", "00:01:23", ""})

			var log bytes.Buffer
			out, err := Serializer{Log: &log}.Serialize(table, enc)
			require.NoError(t, err)
			assert.Equal(t, types.EncodingUTF8BOM, out.Used)
			assert.Equal(t, enc, out.Requested)
			assert.Contains(t, log.String(), "-> utf-8-sig")
			require.True(t, bytes.HasPrefix(out.Data, bom))

			records := readCSV(t, bytes.TrimPrefix(out.Data, bom))
			assert.Equal(t, "🎤 Song", records[1][1])
		})
	}
}

func TestSerialize_InvalidUTF8(t *testing.T) {
	table := projected([]string{"1", "bad \xff byte", "Singer", "D01", "00:01:23", ""})

	var log bytes.Buffer
	out, err := Serializer{Log: &log}.Serialize(table, types.EncodingUTF8BOM)
	require.NoError(t, err)
	assert.Equal(t, types.EncodingUTF8BOM, out.Used)
	assert.Contains(t, log.String(), "invalid UTF-8")

	records := readCSV(t, bytes.TrimPrefix(out.Data, bom))
	assert.Equal(t, "bad \uFFFD byte", records[1][1])
}

func TestSerialize_CRLF(t *testing.T) {
	table := projected([]string{"1", "a", "b", "c", "d", "e"})
	out, err := Serializer{CRLF: true}.Serialize(table, types.EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(out.Data, []byte("\r\n")))
}

func TestSerialize_NoRows(t *testing.T) {
	table := projected()
	out, err := Serialize(table, types.EncodingUTF8BOM)
	require.NoError(t, err)
	records := readCSV(t, bytes.TrimPrefix(out.Data, bom))
	require.Len(t, records, 1)
	assert.Equal(t, table.Columns, records[0])
}

func TestSerialize_UnknownEncoding(t *testing.T) {
	_, err := Serialize(projected(), types.Encoding("latin1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestEncodingError(t *testing.T) {
	table := types.StructuredTable{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"x", "y"}, {"z", "①"}},
	}
	err := scan(shiftJIS, table)
	require.ErrorIs(t, err, ErrEncoding)

	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Row)
	assert.Equal(t, "b", ee.Column)
	assert.Equal(t, '①', ee.Rune)
	assert.True(t, strings.Contains(err.Error(), "U+2460"))

	assert.NoError(t, scan(cp932, table))
}
