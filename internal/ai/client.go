package ai

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Fixed replies returned by Query.
const (
	MsgNotConfigured = "AI features are not configured. Please set up API keys in Settings > AI Configuration to enable AI-powered insights."
	MsgQueryFailed   = "I apologize, but I'm unable to process your request at the moment. Please check your AI configuration or try again later."
)

const defaultQuerySystemPrompt = "You are a helpful AI assistant for inventory management. Provide clear, concise, and actionable responses."

// Client forwards prompts to the configured providers.
type Client struct {
	loader ConfigLoader
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a Client. A zero timeout leaves the HTTP client unbounded.
func NewClient(loader ConfigLoader, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{loader: loader, http: &http.Client{Timeout: timeout}, logger: logger}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) config(ctx context.Context) Config {
	if c.loader == nil {
		return Config{}
	}
	cfg, err := c.loader.Load(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "ai configuration unavailable", slog.Any("error", err))
		return Config{}
	}
	return cfg
}

// Query sends prompt to the default provider. systemPrompt overrides the
// default system prompt when non-empty.
func (c *Client) Query(ctx context.Context, prompt, systemPrompt string) string {
	cfg := c.config(ctx)
	if !cfg.HasProviders() {
		return MsgNotConfigured
	}
	if systemPrompt == "" {
		systemPrompt = defaultQuerySystemPrompt
	}
	p, _ := cfg.Provider(cfg.Default)
	resp, err := c.call(ctx, p, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "ai query failed", slog.String("provider", p.ID), slog.Any("error", err))
		return MsgQueryFailed
	}
	return resp.Content
}

// Insight is the outcome of InventoryInsights.
type Insight struct {
	Content   string `json:"content"`
	Provider  string `json:"provider,omitempty"`
	RuleBased bool   `json:"ruleBased"`
}

// InventoryInsights asks each provider in fallback order and falls back to
// rule-based insights when none answers.
func (c *Client) InventoryInsights(ctx context.Context, req InsightRequest) Insight {
	cfg := c.config(ctx)
	if !cfg.HasProviders() {
		return Insight{Content: RuleBasedInsights(req), RuleBased: true}
	}
	messages := []Message{
		{Role: "system", Content: insightsSystemPrompt},
		{Role: "user", Content: FormatInventoryPrompt(req)},
	}
	for _, id := range cfg.FallbackOrder() {
		p, _ := cfg.Provider(id)
		resp, err := c.call(ctx, p, messages)
		if err != nil {
			c.logger.WarnContext(ctx, "ai provider failed, trying next", slog.String("provider", id), slog.Any("error", err))
			continue
		}
		return Insight{Content: resp.Content, Provider: resp.Provider}
	}
	c.logger.WarnContext(ctx, "all ai providers failed, using rule-based insights")
	return Insight{Content: RuleBasedInsights(req), RuleBased: true}
}
