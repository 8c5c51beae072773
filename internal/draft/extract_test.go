// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recsheet/pkg/types"
)

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	output string
	err    error
	stdin  string
	image  string
}

func (f *fakeRuntime) Name() string             { return "docker" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return nil }

func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.image = image
	data, _ := io.ReadAll(stdin)
	f.stdin = string(data)
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func writePDF(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sheet.pdf")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestMarkitdownExtractor(t *testing.T) {
	path := writePDF(t, "%PDF-1.4 fake")
	rt := &fakeRuntime{output: "\n| № | 楽曲名 |\n|---|---|\n| 1 | A |\n\n"}
	m := &MarkitdownExtractor{Runtime: rt, Image: "markitdown:test"}

	text, err := m.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "| № | 楽曲名 |\n|---|---|\n| 1 | A |", text)
	assert.Equal(t, "%PDF-1.4 fake", rt.stdin)
	assert.Equal(t, "markitdown:test", rt.image)
	assert.Equal(t, types.ExtractorMarkitdown, m.Name())
}

func TestMarkitdownExtractor_Errors(t *testing.T) {
	path := writePDF(t, "x")

	_, err := (&MarkitdownExtractor{Runtime: &fakeRuntime{output: "  \n"}}).Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoText)

	boom := errors.New("container exited 1")
	_, err = (&MarkitdownExtractor{Runtime: &fakeRuntime{err: boom}}).Extract(context.Background(), path)
	assert.ErrorIs(t, err, boom)

	_, err = (&MarkitdownExtractor{Runtime: &fakeRuntime{}}).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFTextExtractor_RejectsNonPDF(t *testing.T) {
	path := writePDF(t, "this is not a pdf")
	_, err := PDFTextExtractor{}.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening PDF")
	assert.Equal(t, types.ExtractorPDF, PDFTextExtractor{}.Name())
}
