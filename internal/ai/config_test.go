package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigAppliesDefaultsAndOrder(t *testing.T) {
	cfg, err := NewConfig("", []ProviderConfig{
		{ID: "mistral", APIKey: "m", Enabled: true},
		{ID: "OpenAI", APIKey: "o", Enabled: true, Temperature: temperature(0.2)},
		{ID: "gemini", APIKey: "", Enabled: true},
		{ID: "cohere", APIKey: "c", Enabled: false},
	})
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)
	require.Equal(t, "openai", cfg.Default)

	openai, ok := cfg.Provider("openai")
	require.True(t, ok)
	require.Equal(t, "https://api.openai.com/v1", openai.BaseURL)
	require.Equal(t, "gpt-3.5-turbo", openai.Model)
	require.Equal(t, 0.2, *openai.Temperature)
	require.Equal(t, 2000, openai.MaxTokens)

	mistral, _ := cfg.Provider("mistral")
	require.Equal(t, "Mistral AI", mistral.Name)
	require.Equal(t, 0.7, *mistral.Temperature)
	require.Equal(t, []string{"openai", "mistral"}, cfg.FallbackOrder())
}

func temperature(v float64) *float64 { return &v }

func TestNewConfigKeepsExplicitZeroTemperature(t *testing.T) {
	cfg, err := NewConfig("", []ProviderConfig{{ID: "openai", APIKey: "o", Enabled: true, Temperature: temperature(0)}})
	require.NoError(t, err)
	openai, _ := cfg.Provider("openai")
	require.NotNil(t, openai.Temperature)
	require.Zero(t, *openai.Temperature)

	parsed, err := ParseSettings([]byte(`{"providers":{"gemini":{"apiKey":"g","isEnabled":true,"temperature":0}}}`))
	require.NoError(t, err)
	gemini, _ := parsed.Provider("gemini")
	require.Zero(t, *gemini.Temperature)
}

func TestNewConfigHonoursDefaultProvider(t *testing.T) {
	cfg, err := NewConfig("anthropic", []ProviderConfig{
		{ID: "openai", APIKey: "o", Enabled: true},
		{ID: "anthropic", APIKey: "a", Enabled: true},
	})
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.Default)
	require.Equal(t, []string{"anthropic", "openai"}, cfg.FallbackOrder())

	cfg, err = NewConfig("cohere", []ProviderConfig{{ID: "glm", APIKey: "g", Enabled: true}})
	require.NoError(t, err)
	require.Equal(t, "glm", cfg.Default)
}

func TestNewConfigRejectsInvalidProvider(t *testing.T) {
	_, err := NewConfig("", []ProviderConfig{{ID: "openai", APIKey: "o", Enabled: true, Temperature: temperature(5)}})
	require.Error(t, err)

	_, err = NewConfig("", []ProviderConfig{{ID: "unknown", APIKey: "x", Enabled: true, BaseURL: "https://example.com"}})
	require.Error(t, err)
}

func TestParseSettings(t *testing.T) {
	raw := []byte(`{"defaultProvider":"gemini","providers":{
		"openai":{"apiKey":"o","isEnabled":true,"model":"gpt-4o"},
		"gemini":{"apiKey":"g","isEnabled":true},
		"glm":{"apiKey":"z","isEnabled":false}
	}}`)
	cfg, err := ParseSettings(raw)
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.Default)
	require.Len(t, cfg.Providers, 2)
	openai, _ := cfg.Provider("openai")
	require.Equal(t, "gpt-4o", openai.Model)

	cfg, err = ParseSettings(nil)
	require.NoError(t, err)
	require.False(t, cfg.HasProviders())
	require.Nil(t, cfg.FallbackOrder())

	_, err = ParseSettings([]byte("{"))
	require.Error(t, err)
}
