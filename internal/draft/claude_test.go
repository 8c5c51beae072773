package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recsheet/pkg/types"
)

// withClaudeServer points claudeAPIURL at a test server for one test.
func withClaudeServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	orig := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = orig
		ts.Close()
	})
	return ts
}

func writeClaudeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(claudeResponse{
		Content:    []claudeContent{{Type: "text", Text: text}},
		StopReason: "end_turn",
	})
}

func TestClaudeDrafter_Draft(t *testing.T) {
	var got claudeRequest
	var headers http.Header
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeClaudeText(w, draftedTable)
	})

	d := &ClaudeDrafter{
		APIKey:    "sk-test",
		UserAgent: "recsheet/test",
		Profile:   types.RecSheetProfile(),
		Client:    ts.Client(),
	}
	out, err := d.Draft(context.Background(), "PDF TEXT")
	require.NoError(t, err)
	assert.Equal(t, draftedTable, out)

	assert.Equal(t, "sk-test", headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, headers.Get("anthropic-version"))
	assert.Equal(t, "recsheet/test", headers.Get("User-Agent"))

	assert.Equal(t, defaultClaudeModel, got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, systemPrompt, got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "PDF TEXT")
	assert.Contains(t, got.Messages[0].Content, "楽曲名")
}

func TestClaudeDrafter_RetriesRateLimit(t *testing.T) {
	var calls int32
	ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeClaudeText(w, "| a |")
	})

	var log strings.Builder
	d := &ClaudeDrafter{APIKey: "k", Model: "claude-x", Client: ts.Client(), Log: &log}
	out, err := d.Draft(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "| a |", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Contains(t, log.String(), "HTTP 429")
	assert.Equal(t, "claude-x", d.ModelName())
}

func TestClaudeDrafter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
			},
			wantErr: "Claude API returned 400",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr: "decoding Claude response",
		},
		{
			name: "no text blocks",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{{Type: "tool_use"}}})
			},
			wantErr: "no text content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withClaudeServer(t, tt.handler)
			d := &ClaudeDrafter{APIKey: "k", Client: ts.Client()}
			_, err := d.Draft(context.Background(), "t")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaudeDrafter_TruncationWarning(t *testing.T) {
	ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(claudeResponse{
			Content:    []claudeContent{{Type: "text", Text: "| a |"}},
			StopReason: "max_tokens",
		})
	})

	var log strings.Builder
	d := &ClaudeDrafter{APIKey: "k", MaxTokens: 50, Client: ts.Client(), Log: &log}
	_, err := d.Draft(context.Background(), "t")
	require.NoError(t, err)
	assert.Contains(t, log.String(), "truncated at 50 tokens")
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("| a |"), genai.Text("|---|")}}},
		},
	}
	got, err := geminiText(resp)
	require.NoError(t, err)
	assert.Equal(t, "| a |\n|---|", got)

	_, err = geminiText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}
