package analyzer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	// JSONMode asks the API for an application/json response body.
	JSONMode bool
}

// GeminiModel calls the Gemini API through google.golang.org/genai.
type GeminiModel struct {
	client *genai.Client
	cfg    GeminiConfig
}

func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiModel{client: client, cfg: cfg}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.cfg.Temperature),
	}
	if m.cfg.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.cfg.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content (model: %s): %w", m.cfg.Model, err)
	}

	text := responseText(resp)
	if text == "" {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty response from model %s", m.cfg.Model)
	}

	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		// Only the first candidate with content is used.
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
