// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakePDF = "%PDF-1.7\n%fake recording sheet\n"

func TestSlug(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://example.com/sheets/rec-2026-03.pdf", want: "rec-2026-03.pdf"},
		{url: "https://example.com/sheets/rec%20sheet.PDF?dl=1", want: "rec-sheet.pdf"},
		{url: "https://example.com/download?id=7", want: "download.pdf"},
		{url: "https://example.com/", want: "example.com.pdf"},
		{url: "https:///%E5%8F%8E%E9%8C%B2.pdf", wantErr: true},
		{url: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Slug(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://x/a.pdf"))
	assert.True(t, IsRemote("http://x/a.pdf"))
	assert.False(t, IsRemote("pdfs/a.pdf"))
	assert.False(t, IsRemote("ftp://x/a.pdf"))
}

func TestFetch(t *testing.T) {
	var ua, accept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(fakePDF))
	}))
	defer ts.Close()

	f := &Fetcher{Client: ts.Client(), Dir: filepath.Join(t.TempDir(), "pdfs"), UserAgent: "recsheet/test"}

	dest, skipped, err := f.Fetch(context.Background(), ts.URL+"/sheet.pdf")
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, filepath.Join(f.Dir, "sheet.pdf"), dest)
	assert.Equal(t, "recsheet/test", ua)
	assert.Equal(t, "application/pdf", accept)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))

	_, skipped, err = f.Fetch(context.Background(), ts.URL+"/sheet.pdf")
	require.NoError(t, err)
	assert.True(t, skipped)
}

func TestFetch_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.pdf":
			http.NotFound(w, r)
		case "/page.pdf":
			_, _ = w.Write([]byte("<html>login</html>"))
		}
	}))
	defer ts.Close()

	dir := t.TempDir()
	f := &Fetcher{Client: ts.Client(), Dir: dir}

	_, _, err := f.Fetch(context.Background(), ts.URL+"/missing.pdf")
	assert.ErrorContains(t, err, "HTTP 404")

	_, _, err = f.Fetch(context.Background(), ts.URL+"/page.pdf")
	assert.ErrorIs(t, err, ErrNotPDF)

	_, _, err = f.Fetch(context.Background(), ts.URL+"/empty.pdf")
	assert.ErrorIs(t, err, ErrNotPDF)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed downloads leave no files behind")
}

func TestResolve(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if strings.HasSuffix(r.URL.Path, "bad.pdf") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(fakePDF))
	}))
	defer ts.Close()

	dir := t.TempDir()
	f := &Fetcher{Client: ts.Client(), Dir: dir}

	var log strings.Builder
	paths, failed := f.Resolve(context.Background(), []string{"local.pdf", ts.URL + "/a.pdf", ts.URL + "/bad.pdf"}, &log)

	assert.Equal(t, []string{"local.pdf", filepath.Join(dir, "a.pdf")}, paths)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Contains(t, log.String(), "fetched:   "+ts.URL+"/a.pdf")
	assert.Contains(t, log.String(), "failed:    "+ts.URL+"/bad.pdf (HTTP 500")
}
