package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/recsheet/pkg/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiDrafter drafts tables with the Gemini API.
type GeminiDrafter struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	profile types.ColumnProfile
}

// NewGeminiDrafter creates a Gemini client. Call Close when done.
func NewGeminiDrafter(ctx context.Context, cfg types.AIConfig, profile types.ColumnProfile) (*GeminiDrafter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	model := client.GenerativeModel(name)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	model.SetTemperature(0.5)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiDrafter{client: client, model: model, name: name, profile: profile}, nil
}

// Close releases the underlying client.
func (g *GeminiDrafter) Close() error { return g.client.Close() }

// Backend implements Drafter.
func (g *GeminiDrafter) Backend() types.DrafterBackend { return types.DrafterGemini }

// ModelName implements Drafter.
func (g *GeminiDrafter) ModelName() string { return g.name }

// Draft sends text to Gemini and joins the text parts of every candidate.
func (g *GeminiDrafter) Draft(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(text, g.profile)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	return geminiText(resp)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in Gemini API response")
	}
	return strings.Join(parts, "\n"), nil
}
