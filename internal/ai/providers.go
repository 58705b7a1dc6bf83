package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a provider completion.
type Response struct {
	Content  string
	Usage    *Usage
	Provider string
}

const anthropicVersion = "2023-06-01"

var errEmptyCompletion = errors.New("ai: provider returned no content")

func (c *Client) call(ctx context.Context, p ProviderConfig, messages []Message) (Response, error) {
	switch p.ID {
	case ProviderOpenAI, ProviderGLM, ProviderMistral:
		return c.callChatCompletions(ctx, p, messages)
	case ProviderGemini:
		return c.callGemini(ctx, p, messages)
	case ProviderAnthropic:
		return c.callAnthropic(ctx, p, messages)
	case ProviderCohere:
		return c.callCohere(ctx, p, messages)
	default:
		return Response{}, fmt.Errorf("ai: unsupported provider %q", p.ID)
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// callChatCompletions serves the OpenAI-compatible APIs.
func (c *Client) callChatCompletions(ctx context.Context, p ProviderConfig, messages []Message) (Response, error) {
	var out chatCompletionResponse
	err := c.post(ctx, p, p.BaseURL+"/chat/completions", bearer(p.APIKey), chatCompletionRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: p.temperature(),
		MaxTokens:   p.MaxTokens,
	}, &out)
	if err != nil {
		return Response{}, err
	}
	if len(out.Choices) == 0 {
		return Response{}, errEmptyCompletion
	}
	return Response{Content: out.Choices[0].Message.Content, Usage: out.Usage, Provider: p.ID}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) callGemini(ctx context.Context, p ProviderConfig, messages []Message) (Response, error) {
	req := geminiRequest{}
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	req.GenerationConfig.Temperature = p.temperature()
	req.GenerationConfig.MaxOutputTokens = p.MaxTokens

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.BaseURL, url.PathEscape(p.Model), url.QueryEscape(p.APIKey))
	var out geminiResponse
	if err := c.post(ctx, p, endpoint, nil, req, &out); err != nil {
		return Response{}, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Response{}, errEmptyCompletion
	}
	return Response{Content: out.Candidates[0].Content.Parts[0].Text, Provider: p.ID}, nil
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *Client) callAnthropic(ctx context.Context, p ProviderConfig, messages []Message) (Response, error) {
	req := anthropicRequest{Model: p.Model, MaxTokens: p.MaxTokens, Temperature: p.temperature()}
	for _, m := range messages {
		if m.Role == "system" {
			if req.System == "" {
				req.System = m.Content
			}
			continue
		}
		req.Messages = append(req.Messages, m)
	}
	headers := map[string]string{"x-api-key": p.APIKey, "anthropic-version": anthropicVersion}

	var out anthropicResponse
	if err := c.post(ctx, p, p.BaseURL+"/messages", headers, req, &out); err != nil {
		return Response{}, err
	}
	if len(out.Content) == 0 {
		return Response{}, errEmptyCompletion
	}
	resp := Response{Content: out.Content[0].Text, Provider: p.ID}
	if out.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
			TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
		}
	}
	return resp, nil
}

type cohereTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereRequest struct {
	Model       string       `json:"model"`
	Message     string       `json:"message"`
	ChatHistory []cohereTurn `json:"chat_history"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type cohereResponse struct {
	Text string `json:"text"`
}

func (c *Client) callCohere(ctx context.Context, p ProviderConfig, messages []Message) (Response, error) {
	if len(messages) == 0 {
		return Response{}, errors.New("ai: cohere requires at least one message")
	}
	history := make([]cohereTurn, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role := "USER"
		if m.Role == "assistant" {
			role = "CHATBOT"
		}
		history = append(history, cohereTurn{Role: role, Message: m.Content})
	}
	req := cohereRequest{
		Model:       p.Model,
		Message:     messages[len(messages)-1].Content,
		ChatHistory: history,
		Temperature: p.temperature(),
		MaxTokens:   p.MaxTokens,
	}
	var out cohereResponse
	if err := c.post(ctx, p, p.BaseURL+"/chat", bearer(p.APIKey), req, &out); err != nil {
		return Response{}, err
	}
	return Response{Content: out.Text, Provider: p.ID}, nil
}

func bearer(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

func (c *Client) post(ctx context.Context, p ProviderConfig, endpoint string, headers map[string]string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s api: %w", p.Name, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s api error %d: %s", p.Name, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%s api: decode response: %w", p.Name, err)
	}
	return nil
}
