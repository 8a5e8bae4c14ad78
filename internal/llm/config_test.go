package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	// Empty config should return empty string
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	// New config should have custom model
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))

	// Other tiers should be copied
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
}

func TestDefaultConfigFor(t *testing.T) {
	tests := []struct {
		provider Provider
		want     Provider
		model    string
	}{
		{provider: ProviderGemini, want: ProviderGemini, model: "gemini-2.5-flash"},
		{provider: ProviderVertex, want: ProviderVertex, model: "gemini-2.5-flash"},
		{provider: ProviderAnthropic, want: ProviderAnthropic, model: "claude-3-7-sonnet-latest"},
		{provider: "", want: ProviderGemini, model: "gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			cfg := DefaultConfigFor(tt.provider)
			assert.Equal(t, tt.want, cfg.Provider)
			assert.Equal(t, tt.model, cfg.GetModel(TierStandard))
		})
	}
}

func TestWithModel_KeepsProviderSettings(t *testing.T) {
	cfg := DefaultVertexConfig("proj", "us-central1").WithModel(TierLite, "gemini-2.0-flash")

	assert.Equal(t, ProviderVertex, cfg.Provider)
	assert.Equal(t, "proj", cfg.VertexProject)
	assert.Equal(t, "us-central1", cfg.VertexLocation)
	assert.Equal(t, "gemini-2.0-flash", cfg.GetModel(TierLite))
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, int64(DefaultMaxTokens), (&Config{}).maxTokens())
	assert.Equal(t, int64(1024), (&Config{MaxTokens: 1024}).maxTokens())
}
