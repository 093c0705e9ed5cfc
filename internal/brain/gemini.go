// Package brain turns resolved content into reply text.
//
// This file implements the Gemini backends over the google.golang.org/genai
// SDK. One client is shared across every Gemini model in the cascade.
package brain

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend serves one Gemini model through a shared API client.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates the shared Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key must be provided")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiBackend creates a cascade backend for one Gemini model.
func NewGeminiBackend(client *genai.Client, model string) *GeminiBackend {
	return &GeminiBackend{client: client, model: model}
}

// Name identifies the backend by its model id.
func (b *GeminiBackend) Name() string { return b.model }

// Generate runs one generation call against the model.
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	var config *genai.GenerateContentConfig
	if req.EnableSearch || req.SystemInstruction != "" {
		config = &genai.GenerateContentConfig{}
		if req.EnableSearch {
			config.Tools = []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			}
		}
		if req.SystemInstruction != "" {
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: req.SystemInstruction}},
			}
		}
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s returned no candidates", b.model)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
