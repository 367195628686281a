package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type DeepSeekConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// DeepSeekClient talks to the OpenAI-compatible chat completions endpoint.
type DeepSeekClient struct {
	cfg    DeepSeekConfig
	client *http.Client
}

func NewDeepSeekClient(cfg DeepSeekConfig, httpClient *http.Client) *DeepSeekClient {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "deepseek-chat"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &DeepSeekClient{cfg: cfg, client: httpClient}
}

func (c *DeepSeekClient) Provider() string { return "deepseek" }

func (c *DeepSeekClient) Model() string { return c.cfg.Model }

// GenerateText implements LLMClient.
func (c *DeepSeekClient) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("deepseek api key missing")
	}

	payload := deepseekRequest{
		Model:       c.cfg.Model,
		Temperature: temperature,
		MaxTokens:   2048,
		Messages: []deepseekMessage{
			{Role: "system", Content: "You are an experienced technical interviewer. Answer with JSON only when asked for JSON."},
			{Role: "user", Content: prompt},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("deepseek http %d", resp.StatusCode)
	}

	var body deepseekResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode deepseek response: %w", err)
	}

	if len(body.Choices) == 0 || strings.TrimSpace(body.Choices[0].Message.Content) == "" {
		return "", errors.New("deepseek response empty")
	}

	return strings.TrimSpace(body.Choices[0].Message.Content), nil
}

type deepseekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepseekMessage `json:"messages"`
	Temperature float32           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
