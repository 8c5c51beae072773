// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/recsheet/internal/container"
	"github.com/pdiddy/recsheet/pkg/types"
)

// DefaultImage is the markitdown container image used when none is configured.
const DefaultImage = "markitdown:latest"

// ErrNoText is returned when a PDF has no extractable text layer, which is
// usually a scanned document.
var ErrNoText = errors.New("no text extracted from PDF")

// TextExtractor pulls plain text out of a PDF.
type TextExtractor interface {
	Name() types.ExtractorBackend
	Extract(ctx context.Context, path string) (string, error)
}

// PDFTextExtractor reads the embedded text layer in-process.
type PDFTextExtractor struct{}

// Name implements TextExtractor.
func (PDFTextExtractor) Name() types.ExtractorBackend { return types.ExtractorPDF }

// Extract returns the text of every page, pages separated by a blank line.
func (PDFTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return strings.ToValidUTF8(strings.Join(pages, "\n\n"), "\uFFFD"), nil
}

// MarkitdownExtractor pipes the PDF through the markitdown container.
// Markitdown keeps table layout better than the raw text layer.
type MarkitdownExtractor struct {
	Runtime container.Runtime
	Image   string
}

// NewMarkitdownExtractor detects a container runtime, preferring the named
// one, and checks that the image is present.
func NewMarkitdownExtractor(preferredRuntime, image string) (*MarkitdownExtractor, error) {
	rt, err := container.DetectRuntime(preferredRuntime)
	if err != nil {
		return nil, err
	}
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("%w (build it with: mage init)", err)
	}
	return &MarkitdownExtractor{Runtime: rt, Image: image}, nil
}

// Name implements TextExtractor.
func (m *MarkitdownExtractor) Name() types.ExtractorBackend { return types.ExtractorMarkitdown }

// Extract runs the container with the PDF on stdin and returns its stdout.
func (m *MarkitdownExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.Runtime.Run(ctx, m.Image, f, &out); err != nil {
		return "", err
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}
