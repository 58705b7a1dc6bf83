// Package ai forwards prompts to hosted LLM providers with a rule-based
// fallback for inventory insights.
package ai

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Supported provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderGLM       = "glm"
	ProviderAnthropic = "anthropic"
	ProviderCohere    = "cohere"
	ProviderMistral   = "mistral"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// providerOrder fixes iteration order for fallback and default selection.
var providerOrder = []string{ProviderOpenAI, ProviderGemini, ProviderGLM, ProviderAnthropic, ProviderCohere, ProviderMistral}

type providerDefaults struct {
	name    string
	baseURL string
	model   string
}

var defaults = map[string]providerDefaults{
	ProviderOpenAI:    {"OpenAI", "https://api.openai.com/v1", "gpt-3.5-turbo"},
	ProviderGemini:    {"Google Gemini", "https://generativelanguage.googleapis.com/v1", "gemini-pro"},
	ProviderGLM:       {"GLM", "https://open.bigmodel.cn/api/paas/v4", "glm-4"},
	ProviderAnthropic: {"Anthropic Claude", "https://api.anthropic.com/v1", "claude-3-haiku"},
	ProviderCohere:    {"Cohere", "https://api.cohere.ai/v1", "command"},
	ProviderMistral:   {"Mistral AI", "https://api.mistral.ai/v1", "mistral-small"},
}

// ProviderConfig describes one configured LLM provider.
type ProviderConfig struct {
	ID     string `json:"id" validate:"required,oneof=openai gemini glm anthropic cohere mistral"`
	Name   string `json:"name"`
	APIKey string `json:"apiKey" validate:"required"`
	Model  string `json:"model" validate:"required"`
	// Temperature is nil when unset; an explicit 0 is kept.
	Temperature *float64 `json:"temperature" validate:"required,gte=0,lte=2"`
	MaxTokens   int      `json:"maxTokens" validate:"gte=1"`
	BaseURL     string   `json:"baseUrl" validate:"required,url"`
	Enabled     bool     `json:"isEnabled"`
}

// Config is the set of usable providers plus the one tried first.
type Config struct {
	Default   string
	Providers []ProviderConfig
}

var validate = validator.New()

// NewConfig keeps enabled providers with an API key, fills in defaults and
// orders them by the canonical provider order. defaultID falls back to the
// first usable provider when empty or unusable.
func NewConfig(defaultID string, providers []ProviderConfig) (Config, error) {
	byID := make(map[string]ProviderConfig, len(providers))
	for _, p := range providers {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		if !p.Enabled || strings.TrimSpace(p.APIKey) == "" {
			continue
		}
		p = p.withDefaults()
		if err := validate.Struct(p); err != nil {
			return Config{}, fmt.Errorf("ai: provider %q: %w", p.ID, err)
		}
		byID[p.ID] = p
	}

	cfg := Config{}
	for _, id := range providerOrder {
		if p, ok := byID[id]; ok {
			cfg.Providers = append(cfg.Providers, p)
		}
	}
	if _, ok := byID[defaultID]; ok {
		cfg.Default = defaultID
	} else if len(cfg.Providers) > 0 {
		cfg.Default = cfg.Providers[0].ID
	}
	return cfg, nil
}

func (p ProviderConfig) temperature() float64 {
	if p.Temperature == nil {
		return defaultTemperature
	}
	return *p.Temperature
}

func (p ProviderConfig) withDefaults() ProviderConfig {
	d := defaults[p.ID]
	if p.Name == "" {
		p.Name = d.name
		if p.Name == "" {
			p.Name = p.ID
		}
	}
	if p.BaseURL == "" {
		p.BaseURL = d.baseURL
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	if p.Model == "" {
		p.Model = d.model
	}
	if p.Temperature == nil {
		t := defaultTemperature
		p.Temperature = &t
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = defaultMaxTokens
	}
	return p
}

// HasProviders reports whether any provider is usable.
func (c Config) HasProviders() bool { return len(c.Providers) > 0 }

// Provider returns the configuration for id.
func (c Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// FallbackOrder lists the default provider first, then the rest.
func (c Config) FallbackOrder() []string {
	if !c.HasProviders() {
		return nil
	}
	out := []string{c.Default}
	for _, p := range c.Providers {
		if p.ID != c.Default {
			out = append(out, p.ID)
		}
	}
	return out
}
