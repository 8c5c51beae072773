// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/recsheet/internal/httputil"
	"github.com/pdiddy/recsheet/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	anthropicVersion   = "2023-06-01"
	defaultClaudeModel = "claude-sonnet-4-5-20250929"
	defaultMaxTokens   = 3000
)

// ClaudeDrafter drafts tables with the Claude Messages API.
type ClaudeDrafter struct {
	APIKey    string
	Model     string
	MaxTokens int
	UserAgent string
	Profile   types.ColumnProfile
	Client    *http.Client

	// Log receives HTTP retry notices. Nil discards them.
	Log io.Writer
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Backend implements Drafter.
func (c *ClaudeDrafter) Backend() types.DrafterBackend { return types.DrafterClaude }

// ModelName implements Drafter.
func (c *ClaudeDrafter) ModelName() string {
	if c.Model == "" {
		return defaultClaudeModel
	}
	return c.Model
}

// Draft sends text to Claude and returns the Markdown table it writes.
func (c *ClaudeDrafter) Draft(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(text, c.Profile)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:       c.ModelName(),
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Temperature: 0.5,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, c.Log)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var out bytes.Buffer
	for _, block := range cResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	if cResp.StopReason == "max_tokens" {
		fmt.Fprintf(logOrDiscard(c.Log), "warning:   Claude response truncated at %d tokens\n", maxTokens)
	}
	return out.String(), nil
}

func logOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
