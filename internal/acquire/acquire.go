// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads remote PDF recording sheets so the draft stage
// can treat URLs and local paths alike.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/recsheet/internal/httputil"
)

// pdfMagic is the first bytes of every PDF file.
var pdfMagic = []byte("%PDF-")

// ErrNotPDF is returned when a download does not start with the PDF header.
var ErrNotPDF = errors.New("response is not a PDF")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Fetcher downloads PDFs into Dir.
type Fetcher struct {
	Client    *http.Client
	Dir       string
	UserAgent string

	// MaxRetries bounds retries on 429/503 responses. 0 uses the
	// httputil default.
	MaxRetries int
}

// IsRemote reports whether arg is an http or https URL.
func IsRemote(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// Slug derives a file name from the last path segment of rawURL, keeping
// only characters safe on every file system, or from the host when the path
// has nothing usable. The result always ends in ".pdf".
func Slug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = strings.Trim(unsafeChars.ReplaceAllString(u.Hostname(), "-"), "-.")
	}
	if base == "" {
		return "", fmt.Errorf("cannot derive a file name from %q", rawURL)
	}
	return base + ".pdf", nil
}

// Resolve returns a local path for every argument, downloading URLs first.
// Local paths are returned unchanged. Failed downloads are reported to w,
// left out of the result and counted.
func (f *Fetcher) Resolve(ctx context.Context, args []string, w io.Writer) ([]string, int) {
	var (
		paths  []string
		failed int
	)
	for _, arg := range args {
		if !IsRemote(arg) {
			paths = append(paths, arg)
			continue
		}
		p, skipped, err := f.Fetch(ctx, arg)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:    %s (%v)\n", arg, err)
			failed++
		case skipped:
			fmt.Fprintf(w, "skipped:   %s (%s exists)\n", arg, p)
			paths = append(paths, p)
		default:
			fmt.Fprintf(w, "fetched:   %s -> %s\n", arg, p)
			paths = append(paths, p)
		}
	}
	return paths, failed
}

// Fetch downloads rawURL into f.Dir. When the target file already exists the
// download is skipped and skipped is true.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (dest string, skipped bool, err error) {
	name, err := Slug(rawURL)
	if err != nil {
		return "", false, err
	}
	dest = filepath.Join(f.Dir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, true, nil
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", f.Dir, err)
	}
	if err := f.download(ctx, rawURL, dest); err != nil {
		return "", false, err
	}
	return dest, false, nil
}

// download fetches rawURL to destPath through a temporary file so a failed
// transfer never leaves a partial PDF behind.
func (f *Fetcher) download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, f.MaxRetries, nil)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	head := make([]byte, len(pdfMagic))
	n, _ := io.ReadFull(resp.Body, head)
	if !bytes.Equal(head[:n], pdfMagic) {
		return fmt.Errorf("%s: %w", rawURL, ErrNotPDF)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(head[:n]), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
