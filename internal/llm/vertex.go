package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// VertexClient implements Client for Gemini models served through Vertex AI.
// Credentials come from Application Default Credentials.
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a Vertex AI client for config.VertexProject / VertexLocation
func NewVertexClient(ctx context.Context, config *Config) (*VertexClient, error) {
	project := strings.TrimSpace(config.VertexProject)
	location := strings.TrimSpace(config.VertexLocation)
	if project == "" || location == "" {
		return nil, errors.New("vertex project and location are required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &VertexClient{client: client, config: config}, nil
}

// Generate generates text content using the model of the requested tier
func (v *VertexClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	modelName := v.config.GetModel(opts.Tier)
	if modelName == "" {
		return "", unavailable(ProviderVertex, "", fmt.Errorf("no model configured for tier %s", opts.Tier))
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(opts.Temperature)}
	resp, err := v.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", unavailable(ProviderVertex, modelName, err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
		// Only the first candidate carries the reply
		break
	}

	return strings.TrimSpace(builder.String()), nil
}

// Close is a no-op; the genai client holds no closable resources
func (v *VertexClient) Close() error {
	return nil
}
