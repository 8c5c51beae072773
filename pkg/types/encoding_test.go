// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr string
	}{
		{in: "utf-8-sig", want: EncodingUTF8BOM},
		{in: " UTF-8-BOM ", want: EncodingUTF8BOM},
		{in: "Shift_JIS", want: EncodingShiftJIS},
		{in: "sjis", want: EncodingShiftJIS},
		{in: "windows-31j", want: EncodingCP932},
		{in: "utf-8", wantErr: "use utf-8-sig"},
		{in: "UTF8", wantErr: "use utf-8-sig"},
		{in: "latin1", wantErr: "unknown encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEncoding(tt.in)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
