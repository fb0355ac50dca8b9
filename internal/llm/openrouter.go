package llm

import (
	"context"
	"fmt"

	"ai-date-planner/internal/config"
	"ai-date-planner/internal/shared"

	openai "github.com/sashabaranov/go-openai"
)

// openRouterClient talks to an OpenAI-compatible chat completion API.
// The base URL defaults to OpenRouter so free-tier models can run the pipeline.
type openRouterClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenRouterClient creates an OpenAI-compatible TextGenerator. Model and
// base URL come from the config; temperature is per agent.
func NewOpenRouterClient(cfg *config.Config, temperature float32) TextGenerator {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientCfg.BaseURL = cfg.OpenAIBaseURL
	return &openRouterClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.OpenAIModel,
		temperature: temperature,
	}
}

// GenerateContent sends a prompt as a single user message and returns the
// generated text along with token usage.
func (c *openRouterClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Model:            model,
		},
	}, nil
}
