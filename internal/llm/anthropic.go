package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client for Claude models
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Claude client. Extra request options are applied after the API key.
func NewAnthropicClient(config *Config, apiKey string, opts ...anthropicoption.RequestOption) (*AnthropicClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts = append([]anthropicoption.RequestOption{anthropicoption.WithAPIKey(apiKey)}, opts...)
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// Generate sends the prompt as a single user message
func (a *AnthropicClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	modelName := a.config.GetModel(opts.Tier)
	if modelName == "" {
		return "", unavailable(ProviderAnthropic, "", fmt.Errorf("no model configured for tier %s", opts.Tier))
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   a.config.maxTokens(),
		Temperature: anthropic.Float(float64(opts.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", unavailable(ProviderAnthropic, modelName, err)
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String(), nil
}

// Close is a no-op; the SDK client holds no closable resources
func (a *AnthropicClient) Close() error {
	return nil
}
