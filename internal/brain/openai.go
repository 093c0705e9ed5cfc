// Package brain turns resolved content into reply text.
//
// This file implements the OpenAI last-resort backend. It has no search
// tool, so it only ever serves requests after capability rewriting.
package brain

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIBackend serves one OpenAI chat model.
type OpenAIBackend struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIBackend creates the OpenAI backend.
func NewOpenAIBackend(apiKey, model string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key must be provided")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}, nil
}

// Name identifies the backend by its model id.
func (b *OpenAIBackend) Name() string { return string(b.model) }

// Generate runs one chat completion. Search requests are ignored; the
// cascade strips them before calling.
func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    b.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
